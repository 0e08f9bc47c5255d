package inmemdb

import (
	"context"
	"time"

	"github.com/ilmhub/ilm/core"
	"github.com/ilmhub/ilm/core/job"
)

type jobRepository struct {
	db *table[job.Job]
}

var _ job.Repository = (*jobRepository)(nil)

func NewJobRepository(db *DB) job.Repository {
	return &jobRepository{db: db.jobs}
}

func (repo *jobRepository) CreateJob(_ context.Context, j job.Job) (job.Job, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	j.ID = newID()
	j.Requirements = copyStrings(j.Requirements)
	repo.db.insert(j.ID, j)
	return j, nil
}

func compareJobs(a, b job.Job, field string) int {
	switch field {
	case "title":
		return compareStrings(a.Title, b.Title)
	case "organization":
		return compareStrings(a.Organization, b.Organization)
	case "deadline":
		return compareNullTimes(a.Deadline, b.Deadline)
	case "created_at":
		return compareTimes(a.CreatedAt, b.CreatedAt)
	}
	return 0
}

func (repo *jobRepository) QueryJobs(_ context.Context, filter *job.QueryFilter, ordering []core.DBOrdering, page core.Page) ([]job.Job, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	jobs := make([]job.Job, 0)
	for _, j := range repo.db.all() {
		if filter != nil {
			if filter.Search != "" && !matchesAny(filter.Search, j.Title, j.Organization, j.Description) {
				continue
			}
			if filter.Location != "" && !containsFold(j.Location, filter.Location) {
				continue
			}
			if filter.JobType != "" && j.JobType != filter.JobType {
				continue
			}
			if filter.Category != "" && j.Category != filter.Category {
				continue
			}
			if filter.IsActive != nil && j.IsActive != *filter.IsActive {
				continue
			}
		}
		jobs = append(jobs, j)
	}
	sortRows(jobs, ordering, compareJobs)
	return pageRows(jobs, page), nil
}

func (repo *jobRepository) GetJob(_ context.Context, id string) (job.Job, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if j, ok := repo.db.get(id); ok {
		return j, nil
	}
	return job.Job{}, job.ErrNotFound
}

func (repo *jobRepository) UpdateJob(_ context.Context, j job.Job) (job.Job, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	j.Requirements = copyStrings(j.Requirements)
	if !repo.db.put(j.ID, j) {
		return job.Job{}, job.ErrNotFound
	}
	return j, nil
}

func (repo *jobRepository) DeleteJobsByID(_ context.Context, ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.remove(ids...)
	return nil
}

func (repo *jobRepository) DeactivateExpired(_ context.Context, now time.Time) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var n int
	for _, j := range repo.db.all() {
		if j.IsActive && j.IsExpired(now) {
			j.IsActive = false
			j.UpdatedAt = now
			repo.db.put(j.ID, j)
			n++
		}
	}
	return n, nil
}
