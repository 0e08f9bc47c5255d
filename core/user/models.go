package user

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/ilmhub/ilm/core"
)

// Roles
const (
	// Admin
	RoleAdmin      = "admin:"
	RoleAdminOwner = "admin:owner"

	// Content
	RoleEditor = "editor:"
	RoleAuthor = "author:"

	// Forum
	RoleScholar = "scholar:"

	RoleMember = "member:"
)

var (
	AdminRoles = []string{RoleAdmin, RoleAdminOwner}
	AllRoles   = []string{RoleAdminOwner, RoleAdmin, RoleEditor, RoleScholar, RoleAuthor, RoleMember}

	rolePriorities = map[string]int{
		// Admins: 30 - 21
		RoleAdminOwner: 30,
		RoleAdmin:      21,

		// Staff: 20 - 2
		RoleEditor:  15,
		RoleScholar: 12,
		RoleAuthor:  8,

		RoleMember: 1,
	}

	Roles = []Role{
		{Name: "Member", Value: RoleMember},
		{Name: "Author", Value: RoleAuthor},
		{Name: "Scholar", Value: RoleScholar},
		{Name: "Editor", Value: RoleEditor},
		{Name: "Admin", Value: RoleAdmin},
		{Name: "Admin Owner", Value: RoleAdminOwner},
	}
)

func RolePriority(role string) int {
	return rolePriorities[role]
}

func MaxRolePriority(roles []string) int {
	var max int
	for _, role := range roles {
		if RolePriority(role) > max {
			max = RolePriority(role)
		}
	}
	return max
}

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// User is a profile of the platform.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Bio          string    `json:"bio"`
	AvatarURL    string    `json:"avatar_url"`
	IsActive     bool      `json:"is_active"`
	Roles        []string  `json:"roles"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
	LastLogin    time.Time `json:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u User) RoleStartsWith(prefix string) bool {
	for _, role := range u.Roles {
		if strings.HasPrefix(role, prefix) {
			return true
		}
	}
	return false
}

func (u User) IsAdmin() bool {
	return u.RoleStartsWith(RoleAdmin)
}

// IsEditor reports whether the user may review content.
func (u User) IsEditor() bool {
	return u.IsAdmin() || u.RoleStartsWith(RoleEditor)
}

func (u User) IsScholar() bool {
	return u.IsAdmin() || u.RoleStartsWith(RoleScholar)
}

// IsAuthor reports whether the user may write content: any role at or above author.
func (u User) IsAuthor() bool {
	return MaxRolePriority(u.Roles) >= RolePriority(RoleAuthor)
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name            string   `json:"name" validate:"required"`
	Username        string   `json:"username" validate:"omitempty,min=3,max=50,alphanum_"`
	Email           string   `json:"email" validate:"omitempty,email"`
	Bio             string   `json:"bio" validate:"max=2000"`
	AvatarURL       string   `json:"avatar_url" validate:"omitempty,url"`
	Password        string   `json:"password" validate:"required"`
	PasswordConfirm string   `json:"password_confirm" validate:"required,eqfield=Password"`
	Roles           []string `json:"roles" validate:"omitempty,allroles"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Bio = core.CleanString(nu.Bio)
	nu.AvatarURL = core.CleanString(nu.AvatarURL)
	nu.Roles = core.CleanStrings(nu.Roles)
	return validate.Struct(nu)
}

// UpdateUser defines what information may be provided to modify an existing User.
type UpdateUser struct {
	Name            string   `json:"name"`
	Username        string   `json:"username" validate:"omitempty,min=3,max=50,alphanum_"`
	Email           string   `json:"email" validate:"omitempty,email"`
	Bio             *string  `json:"bio" validate:"omitempty,max=2000"`
	AvatarURL       *string  `json:"avatar_url" validate:"omitempty"`
	IsActive        *bool    `json:"is_active"`
	Roles           []string `json:"roles" validate:"omitempty,allroles"`
	Password        string   `json:"password" validate:"omitempty"`
	PasswordConfirm string   `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`
}

// Validate fills blank fields from origUsr before validating.
func (uu *UpdateUser) Validate(origUsr User, validate *validator.Validate) error {
	if name := core.CleanString(uu.Name); name != "" {
		uu.Name = name
	} else {
		uu.Name = origUsr.Name
	}

	if uname := core.CleanString(uu.Username, true /* lower */); uname != "" {
		uu.Username = uname
	} else {
		uu.Username = origUsr.Username
	}

	if email := core.CleanString(uu.Email, true /* lower */); email != "" {
		uu.Email = email
	} else {
		uu.Email = origUsr.Email
	}

	if uu.Roles != nil {
		uu.Roles = core.CleanStrings(uu.Roles)
	}
	return validate.Struct(uu)
}

// GetFilter selects a single User. The first non-empty field wins.
type GetFilter struct {
	ID              string
	Username        string
	Email           string
	UsernameOrEmail string
}

type QueryFilter struct {
	Search      string
	Roles       []string
	IsActive    *bool
	CreatedFrom time.Time
	CreatedTo   time.Time
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Roles = core.CleanStrings(qf.Roles)
}

// Orderable columns.
var OrderingFields = []string{"name", "username", "email", "created_at", "updated_at", "last_login"}
