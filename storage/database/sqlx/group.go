package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/ilmhub/ilm/core"
	"github.com/ilmhub/ilm/core/group"
)

const groupsTable = "whatsapp_groups"

type groupRow struct {
	ID          string      `db:"id"`
	Name        string      `db:"name"`
	Description string      `db:"description"`
	Category    string      `db:"category"`
	InviteLink  string      `db:"invite_link"`
	Language    string      `db:"language"`
	City        string      `db:"city"`
	MemberCount int         `db:"member_count"`
	IsActive    bool        `db:"is_active"`
	IsVerified  bool        `db:"is_verified"`
	CreatedBy   null.String `db:"created_by"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

func (r groupRow) toGroup() group.Group {
	return group.Group{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Category:    r.Category,
		InviteLink:  r.InviteLink,
		Language:    r.Language,
		City:        r.City,
		MemberCount: r.MemberCount,
		IsActive:    r.IsActive,
		IsVerified:  r.IsVerified,
		CreatedBy:   r.CreatedBy.String,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

func groupValues(g group.Group) map[string]interface{} {
	return map[string]interface{}{
		"id":           g.ID,
		"name":         g.Name,
		"description":  g.Description,
		"category":     g.Category,
		"invite_link":  g.InviteLink,
		"language":     g.Language,
		"city":         g.City,
		"member_count": g.MemberCount,
		"is_active":    g.IsActive,
		"is_verified":  g.IsVerified,
		"created_by":   nullableID(g.CreatedBy),
		"created_at":   g.CreatedAt.UTC(),
		"updated_at":   g.UpdatedAt.UTC(),
	}
}

type groupRepository struct {
	db *sqlx.DB
}

var _ group.Repository = (*groupRepository)(nil)

func NewGroupRepository(db *sqlx.DB) group.Repository {
	return &groupRepository{db: db}
}

func (repo *groupRepository) CheckInviteLinkUniqueness(ctx context.Context, link string, excludedID string) error {
	b := psql.Select("COUNT(*)").From(groupsTable).Where(sq.Eq{"invite_link": link})
	if isUUID(excludedID) {
		b = b.Where(sq.NotEq{"id": excludedID})
	}
	var n int
	if err := selectOne(ctx, repo.db, &n, b); err != nil {
		return errors.Wrap(err, "checking invite link uniqueness")
	}
	if n > 0 {
		return group.ErrLinkExists
	}
	return nil
}

func (repo *groupRepository) CreateGroup(ctx context.Context, g group.Group) (group.Group, error) {
	g.ID = uuid.New().String()
	if err := insert(ctx, repo.db, groupsTable, groupValues(g)); err != nil {
		if isUniqueViolation(err) {
			return group.Group{}, group.ErrLinkExists
		}
		return group.Group{}, errors.Wrap(err, "inserting group")
	}
	return g, nil
}

func (repo *groupRepository) QueryGroups(ctx context.Context, filter *group.QueryFilter, ordering []core.DBOrdering, page core.Page) ([]group.Group, error) {
	b := psql.Select("*").From(groupsTable)
	if filter != nil {
		if filter.Search != "" {
			b = b.Where(searchAny(filter.Search, "name", "description", "city"))
		}
		if filter.Category != "" {
			b = b.Where(sq.Eq{"category": filter.Category})
		}
		if filter.Language != "" {
			b = b.Where(sq.Eq{"language": filter.Language})
		}
		if filter.IsActive != nil {
			b = b.Where(sq.Eq{"is_active": *filter.IsActive})
		}
		if filter.IsVerified != nil {
			b = b.Where(sq.Eq{"is_verified": *filter.IsVerified})
		}
	}

	var rows []groupRow
	if err := selectAll(ctx, repo.db, &rows, paginate(b, ordering, page)); err != nil {
		return nil, errors.Wrap(err, "querying groups")
	}
	groups := make([]group.Group, 0, len(rows))
	for _, r := range rows {
		groups = append(groups, r.toGroup())
	}
	return groups, nil
}

func (repo *groupRepository) GetGroup(ctx context.Context, id string) (group.Group, error) {
	if !isUUID(id) {
		return group.Group{}, group.ErrNotFound
	}
	var r groupRow
	if err := selectOne(ctx, repo.db, &r, psql.Select("*").From(groupsTable).Where(sq.Eq{"id": id})); err != nil {
		return group.Group{}, trapNoRowsErr(err, group.ErrNotFound, "finding group")
	}
	return r.toGroup(), nil
}

func (repo *groupRepository) UpdateGroup(ctx context.Context, g group.Group) (group.Group, error) {
	found, err := update(ctx, repo.db, groupsTable, g.ID, groupValues(g))
	if err != nil {
		if isUniqueViolation(err) {
			return group.Group{}, group.ErrLinkExists
		}
		return group.Group{}, errors.Wrap(err, "updating group")
	}
	if !found {
		return group.Group{}, group.ErrNotFound
	}
	return g, nil
}

func (repo *groupRepository) DeleteGroupsByID(ctx context.Context, ids ...string) error {
	return errors.Wrap(deleteByID(ctx, repo.db, groupsTable, ids), "deleting groups")
}
