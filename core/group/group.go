package group

import (
	"context"
	"regexp"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/ilmhub/ilm/core"
	"github.com/ilmhub/ilm/core/user"
)

var (
	ErrNotFound   = core.NewNotFoundError("group")
	ErrLinkExists = errors.New("a group with this invite link already exists")

	inviteLinkRegex = regexp.MustCompile(`^https://chat\.whatsapp\.com/[A-Za-z0-9]{10,32}$`)
	inviteLinkTag   = "whatsapplink"
	inviteLinkText  = "must be a https://chat.whatsapp.com/ invite link"
)

// Group is a row of whatsapp_groups.
type Group struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	InviteLink  string    `json:"invite_link"`
	Language    string    `json:"language"`
	City        string    `json:"city"`
	MemberCount int       `json:"member_count"`
	IsActive    bool      `json:"is_active"`
	IsVerified  bool      `json:"is_verified"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type NewGroup struct {
	Name        string `json:"name" validate:"required,notblank,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Category    string `json:"category" validate:"max=100"`
	InviteLink  string `json:"invite_link" validate:"required,whatsapplink"`
	Language    string `json:"language" validate:"omitempty,max=10"`
	City        string `json:"city" validate:"max=100"`
	MemberCount int    `json:"member_count" validate:"min=0"`
	IsVerified  bool   `json:"is_verified"`
}

func (ng *NewGroup) Validate(validate *validator.Validate) error {
	ng.Name = core.CleanString(ng.Name)
	ng.Description = core.CleanString(ng.Description)
	ng.Category = core.CleanString(ng.Category, true /* lower */)
	ng.InviteLink = core.CleanString(ng.InviteLink)
	ng.Language = core.CleanString(ng.Language, true /* lower */)
	ng.City = core.CleanString(ng.City)
	if ng.Language == "" {
		ng.Language = "ar"
	}
	return validate.Struct(ng)
}

// UpdateGroup holds the fields to change. Nil fields are left untouched.
type UpdateGroup struct {
	Name        *string `json:"name" validate:"omitempty,notblank,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Category    *string `json:"category" validate:"omitempty,max=100"`
	InviteLink  *string `json:"invite_link" validate:"omitempty,whatsapplink"`
	Language    *string `json:"language" validate:"omitempty,max=10"`
	City        *string `json:"city" validate:"omitempty,max=100"`
	MemberCount *int    `json:"member_count" validate:"omitempty,min=0"`
	IsActive    *bool   `json:"is_active"`
	IsVerified  *bool   `json:"is_verified"`
}

func (ug *UpdateGroup) Validate(validate *validator.Validate) error {
	if ug.InviteLink != nil {
		link := core.CleanString(*ug.InviteLink)
		ug.InviteLink = &link
	}
	return validate.Struct(ug)
}

func (ug UpdateGroup) apply(g *Group) {
	set := func(dst *string, src *string, lower ...bool) {
		if src != nil {
			*dst = core.CleanString(*src, lower...)
		}
	}
	set(&g.Name, ug.Name)
	set(&g.Description, ug.Description)
	set(&g.Category, ug.Category, true)
	set(&g.InviteLink, ug.InviteLink)
	set(&g.Language, ug.Language, true)
	set(&g.City, ug.City)
	if ug.MemberCount != nil {
		g.MemberCount = *ug.MemberCount
	}
	if ug.IsActive != nil {
		g.IsActive = *ug.IsActive
	}
	if ug.IsVerified != nil {
		g.IsVerified = *ug.IsVerified
	}
}

type QueryFilter struct {
	Search     string
	Category   string
	Language   string
	IsActive   *bool
	IsVerified *bool
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Category = core.CleanString(qf.Category, true /* lower */)
	qf.Language = core.CleanString(qf.Language, true /* lower */)
}

var OrderingFields = []string{"name", "member_count", "city", "created_at"}

type (
	Repository interface {
		// CheckInviteLinkUniqueness returns ErrLinkExists if another group uses link.
		CheckInviteLinkUniqueness(ctx context.Context, link string, excludedID string) error
		CreateGroup(ctx context.Context, g Group) (Group, error)
		// QueryGroups applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of name, description or city.
		QueryGroups(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Page) ([]Group, error)
		GetGroup(ctx context.Context, id string) (Group, error)
		UpdateGroup(ctx context.Context, g Group) (Group, error)
		DeleteGroupsByID(ctx context.Context, ids ...string) error
	}

	Service interface {
		Create(ctx context.Context, ng NewGroup, by user.User) (Group, error)
		Get(ctx context.Context, id string) (Group, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Page) ([]Group, error)
		Update(ctx context.Context, g Group, ug UpdateGroup) (Group, error)
		Delete(ctx context.Context, ids ...string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(inviteLinkTag, func(fl validator.FieldLevel) bool {
		return inviteLinkRegex.MatchString(fl.Field().String())
	})
	core.RegisterCustomTranslation(validate, translator, inviteLinkTag, inviteLinkText)
}

func (svc *service) checkLink(ctx context.Context, link, excludedID string) error {
	if err := svc.repo.CheckInviteLinkUniqueness(ctx, link, excludedID); err != nil {
		if errors.Cause(err) == ErrLinkExists {
			return core.NewValidationError(err, core.FieldError{Field: "invite_link", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Create(ctx context.Context, ng NewGroup, by user.User) (Group, error) {
	if err := svc.checkLink(ctx, ng.InviteLink, ""); err != nil {
		return Group{}, err
	}
	now := core.NowFunc()
	return svc.repo.CreateGroup(ctx, Group{
		Name:        ng.Name,
		Description: ng.Description,
		Category:    ng.Category,
		InviteLink:  ng.InviteLink,
		Language:    ng.Language,
		City:        ng.City,
		MemberCount: ng.MemberCount,
		IsActive:    true,
		IsVerified:  ng.IsVerified,
		CreatedBy:   by.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (svc *service) Get(ctx context.Context, id string) (Group, error) {
	return svc.repo.GetGroup(ctx, id)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Page) ([]Group, error) {
	if filter != nil {
		filter.Clean()
	}
	ordering = core.CleanOrderings(ordering, OrderingFields...)
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "member_count"}, {Field: "name", Ascending: true}}
	}
	return svc.repo.QueryGroups(ctx, filter, ordering, page)
}

func (svc *service) Update(ctx context.Context, g Group, ug UpdateGroup) (Group, error) {
	if ug.InviteLink != nil && *ug.InviteLink != g.InviteLink {
		if err := svc.checkLink(ctx, *ug.InviteLink, g.ID); err != nil {
			return Group{}, err
		}
	}
	ug.apply(&g)
	g.UpdatedAt = core.NowFunc()
	return svc.repo.UpdateGroup(ctx, g)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	return svc.repo.DeleteGroupsByID(ctx, ids...)
}
