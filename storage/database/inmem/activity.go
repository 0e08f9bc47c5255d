package inmemdb

import (
	"context"

	"github.com/ilmhub/ilm/core"
	"github.com/ilmhub/ilm/core/activity"
)

type activityRepository struct {
	db *table[activity.Activity]
}

var _ activity.Repository = (*activityRepository)(nil)

func NewActivityRepository(db *DB) activity.Repository {
	return &activityRepository{db: db.activities}
}

func (repo *activityRepository) CreateActivity(_ context.Context, a activity.Activity) (activity.Activity, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if a.ActivityType == activity.TypeBookmark {
		dup := repo.matching(activity.QueryFilter{
			UserID:       a.UserID,
			ActivityType: activity.TypeBookmark,
			TargetType:   a.TargetType,
			TargetID:     a.TargetID,
		})
		if len(dup) > 0 {
			return activity.Activity{}, activity.ErrAlreadyBookmarked
		}
	}
	a.ID = newID()
	repo.db.insert(a.ID, a)
	return a, nil
}

// matching returns the activities matching filter, newest first.
func (repo *activityRepository) matching(filter activity.QueryFilter) []activity.Activity {
	all := repo.db.all()
	acts := make([]activity.Activity, 0)
	for i := len(all) - 1; i >= 0; i-- {
		a := all[i]
		switch {
		case filter.UserID != "" && a.UserID != filter.UserID,
			filter.ActivityType != "" && a.ActivityType != filter.ActivityType,
			filter.TargetType != "" && a.TargetType != filter.TargetType,
			filter.TargetID != "" && a.TargetID != filter.TargetID:
			continue
		}
		acts = append(acts, a)
	}
	sortRows(acts, []core.DBOrdering{{Field: "created_at"}}, func(a, b activity.Activity, _ string) int {
		return compareTimes(a.CreatedAt, b.CreatedAt)
	})
	return acts
}

func (repo *activityRepository) FindActivity(_ context.Context, filter activity.QueryFilter) (activity.Activity, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if acts := repo.matching(filter); len(acts) > 0 {
		return acts[0], nil
	}
	return activity.Activity{}, activity.ErrNotFound
}

func (repo *activityRepository) QueryActivities(_ context.Context, filter activity.QueryFilter, page core.Page) ([]activity.Activity, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return pageRows(repo.matching(filter), page), nil
}

func (repo *activityRepository) DeleteActivity(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.remove(id)
	return nil
}
