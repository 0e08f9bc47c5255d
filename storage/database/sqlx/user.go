package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/ilmhub/ilm/core"
	"github.com/ilmhub/ilm/core/user"
)

const profilesTable = "profiles"

type userRow struct {
	ID           string         `db:"id"`
	Name         string         `db:"name"`
	Username     null.String    `db:"username"`
	Email        null.String    `db:"email"`
	Bio          string         `db:"bio"`
	AvatarURL    string         `db:"avatar_url"`
	IsActive     bool           `db:"is_active"`
	Roles        pq.StringArray `db:"roles"`
	PasswordHash []byte         `db:"password_hash"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	LastLogin    null.Time      `db:"last_login"`
}

func (r userRow) toUser() user.User {
	return user.User{
		ID:           r.ID,
		Name:         r.Name,
		Username:     r.Username.String,
		Email:        r.Email.String,
		Bio:          r.Bio,
		AvatarURL:    r.AvatarURL,
		IsActive:     r.IsActive,
		Roles:        []string(r.Roles),
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
		LastLogin:    r.LastLogin.Time.UTC(),
	}
}

func userValues(usr user.User) map[string]interface{} {
	roles := usr.Roles
	if roles == nil {
		roles = []string{}
	}
	return map[string]interface{}{
		"id":            usr.ID,
		"name":          usr.Name,
		"username":      null.NewString(usr.Username, usr.Username != ""),
		"email":         null.NewString(usr.Email, usr.Email != ""),
		"bio":           usr.Bio,
		"avatar_url":    usr.AvatarURL,
		"is_active":     usr.IsActive,
		"roles":         pq.StringArray(roles),
		"password_hash": usr.PasswordHash,
		"created_at":    usr.CreatedAt.UTC(),
		"updated_at":    usr.UpdatedAt.UTC(),
		"last_login":    null.NewTime(usr.LastLogin.UTC(), !usr.LastLogin.IsZero()),
	}
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	check := func(col, val string, errExists error) error {
		if val == "" {
			return nil
		}
		b := psql.Select("COUNT(*)").From(profilesTable).Where(sq.Eq{col: val})
		if len(excludedUsers) > 0 {
			ids := make([]string, 0, len(excludedUsers))
			for _, u := range excludedUsers {
				ids = append(ids, u.ID)
			}
			b = b.Where(sq.NotEq{"id": validIDs(ids)})
		}
		var n int
		if err := selectOne(ctx, repo.db, &n, b); err != nil {
			return errors.Wrap(err, "checking user uniqueness")
		}
		if n > 0 {
			return errExists
		}
		return nil
	}

	if err := check("username", username, user.ErrUsernameExists); err != nil {
		return err
	}
	return check("email", email, user.ErrEmailExists)
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	if err := insert(ctx, repo.db, profilesTable, userValues(usr)); err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, ordering []core.DBOrdering, page core.Page) ([]user.User, error) {
	b := psql.Select("*").From(profilesTable)

	if filter != nil {
		if filter.Search != "" {
			b = b.Where(searchAny(filter.Search, "name", "username", "email"))
		}
		// users with any role that starts with any of the provided roles
		if len(filter.Roles) > 0 {
			roles := make(sq.Or, 0, len(filter.Roles))
			for _, role := range filter.Roles {
				roles = append(roles, sq.Expr("EXISTS (SELECT 1 FROM UNNEST(roles) user_role WHERE user_role LIKE ?)", role+"%"))
			}
			b = b.Where(roles)
		}
		if filter.IsActive != nil {
			b = b.Where(sq.Eq{"is_active": *filter.IsActive})
		}
		if !filter.CreatedFrom.IsZero() {
			b = b.Where(sq.GtOrEq{"created_at": filter.CreatedFrom.UTC()})
		}
		if !filter.CreatedTo.IsZero() {
			b = b.Where(sq.LtOrEq{"created_at": filter.CreatedTo.UTC()})
		}
	}
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "created_at"}}
	}

	var rows []userRow
	if err := selectAll(ctx, repo.db, &rows, paginate(b, ordering, page)); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	users := make([]user.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, r.toUser())
	}
	return users, nil
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	b := psql.Select("*").From(profilesTable).Limit(1)
	switch {
	case filter.ID != "":
		if !isUUID(filter.ID) {
			return user.User{}, user.ErrNotFound
		}
		b = b.Where(sq.Eq{"id": filter.ID})
	case filter.Username != "":
		b = b.Where(sq.Eq{"username": filter.Username})
	case filter.Email != "":
		b = b.Where(sq.Eq{"email": filter.Email})
	case filter.UsernameOrEmail != "":
		b = b.Where(sq.Or{sq.Eq{"username": filter.UsernameOrEmail}, sq.Eq{"email": filter.UsernameOrEmail}})
	default:
		return user.User{}, user.ErrNotFound
	}

	var r userRow
	if err := selectOne(ctx, repo.db, &r, b); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "finding user")
	}
	return r.toUser(), nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	found, err := update(ctx, repo.db, profilesTable, usr.ID, userValues(usr))
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if !found {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids ...string) error {
	return errors.Wrap(deleteByID(ctx, repo.db, profilesTable, ids), "deleting users")
}
