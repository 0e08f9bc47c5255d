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
	"github.com/ilmhub/ilm/core/activity"
)

const activitiesTable = "user_activities"

type activityRow struct {
	ID           string    `db:"id"`
	UserID       string    `db:"user_id"`
	ActivityType string    `db:"activity_type"`
	TargetType   string    `db:"target_type"`
	TargetID     string    `db:"target_id"`
	Metadata     null.JSON `db:"metadata"`
	CreatedAt    time.Time `db:"created_at"`
}

func (r activityRow) toActivity() activity.Activity {
	return activity.Activity{
		ID:           r.ID,
		UserID:       r.UserID,
		ActivityType: r.ActivityType,
		TargetType:   r.TargetType,
		TargetID:     r.TargetID,
		Metadata:     r.Metadata,
		CreatedAt:    r.CreatedAt.UTC(),
	}
}

type activityRepository struct {
	db *sqlx.DB
}

var _ activity.Repository = (*activityRepository)(nil)

func NewActivityRepository(db *sqlx.DB) activity.Repository {
	return &activityRepository{db: db}
}

func (repo *activityRepository) CreateActivity(ctx context.Context, a activity.Activity) (activity.Activity, error) {
	a.ID = uuid.New().String()
	err := insert(ctx, repo.db, activitiesTable, map[string]interface{}{
		"id":            a.ID,
		"user_id":       a.UserID,
		"activity_type": a.ActivityType,
		"target_type":   a.TargetType,
		"target_id":     a.TargetID,
		"metadata":      a.Metadata,
		"created_at":    a.CreatedAt.UTC(),
	})
	if err != nil {
		if a.ActivityType == activity.TypeBookmark && isUniqueViolation(err) {
			return activity.Activity{}, activity.ErrAlreadyBookmarked
		}
		return activity.Activity{}, errors.Wrap(err, "inserting activity")
	}
	return a, nil
}

func activityWhere(b sq.SelectBuilder, filter activity.QueryFilter) sq.SelectBuilder {
	if filter.UserID != "" {
		b = b.Where(sq.Eq{"user_id": filter.UserID})
	}
	if filter.ActivityType != "" {
		b = b.Where(sq.Eq{"activity_type": filter.ActivityType})
	}
	if filter.TargetType != "" {
		b = b.Where(sq.Eq{"target_type": filter.TargetType})
	}
	if filter.TargetID != "" {
		b = b.Where(sq.Eq{"target_id": filter.TargetID})
	}
	return b.OrderBy("created_at DESC")
}

func (repo *activityRepository) FindActivity(ctx context.Context, filter activity.QueryFilter) (activity.Activity, error) {
	if filter.UserID != "" && !isUUID(filter.UserID) {
		return activity.Activity{}, activity.ErrNotFound
	}
	var r activityRow
	b := activityWhere(psql.Select("*").From(activitiesTable), filter).Limit(1)
	if err := selectOne(ctx, repo.db, &r, b); err != nil {
		return activity.Activity{}, trapNoRowsErr(err, activity.ErrNotFound, "finding activity")
	}
	return r.toActivity(), nil
}

func (repo *activityRepository) QueryActivities(ctx context.Context, filter activity.QueryFilter, page core.Page) ([]activity.Activity, error) {
	if filter.UserID != "" && !isUUID(filter.UserID) {
		return []activity.Activity{}, nil
	}
	var rows []activityRow
	b := paginate(activityWhere(psql.Select("*").From(activitiesTable), filter), nil, page)
	if err := selectAll(ctx, repo.db, &rows, b); err != nil {
		return nil, errors.Wrap(err, "querying activities")
	}
	acts := make([]activity.Activity, 0, len(rows))
	for _, r := range rows {
		acts = append(acts, r.toActivity())
	}
	return acts, nil
}

func (repo *activityRepository) DeleteActivity(ctx context.Context, id string) error {
	return errors.Wrap(deleteByID(ctx, repo.db, activitiesTable, []string{id}), "deleting activity")
}
