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
	"github.com/ilmhub/ilm/core/job"
)

const jobsTable = "job_openings"

type jobRow struct {
	ID             string         `db:"id"`
	Title          string         `db:"title"`
	Organization   string         `db:"organization"`
	Description    string         `db:"description"`
	Location       string         `db:"location"`
	JobType        string         `db:"job_type"`
	Category       string         `db:"category"`
	SalaryRange    string         `db:"salary_range"`
	ContactEmail   string         `db:"contact_email"`
	ApplicationURL string         `db:"application_url"`
	Requirements   pq.StringArray `db:"requirements"`
	IsActive       bool           `db:"is_active"`
	Deadline       null.Time      `db:"deadline"`
	PostedBy       null.String    `db:"posted_by"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

func (r jobRow) toJob() job.Job {
	j := job.Job{
		ID:             r.ID,
		Title:          r.Title,
		Organization:   r.Organization,
		Description:    r.Description,
		Location:       r.Location,
		JobType:        r.JobType,
		Category:       r.Category,
		SalaryRange:    r.SalaryRange,
		ContactEmail:   r.ContactEmail,
		ApplicationURL: r.ApplicationURL,
		Requirements:   []string(r.Requirements),
		IsActive:       r.IsActive,
		Deadline:       r.Deadline,
		PostedBy:       r.PostedBy.String,
		CreatedAt:      r.CreatedAt.UTC(),
		UpdatedAt:      r.UpdatedAt.UTC(),
	}
	if j.Deadline.Valid {
		j.Deadline.Time = j.Deadline.Time.UTC()
	}
	return j
}

func jobValues(j job.Job) map[string]interface{} {
	reqs := j.Requirements
	if reqs == nil {
		reqs = []string{}
	}
	return map[string]interface{}{
		"id":              j.ID,
		"title":           j.Title,
		"organization":    j.Organization,
		"description":     j.Description,
		"location":        j.Location,
		"job_type":        j.JobType,
		"category":        j.Category,
		"salary_range":    j.SalaryRange,
		"contact_email":   j.ContactEmail,
		"application_url": j.ApplicationURL,
		"requirements":    pq.StringArray(reqs),
		"is_active":       j.IsActive,
		"deadline":        j.Deadline,
		"posted_by":       nullableID(j.PostedBy),
		"created_at":      j.CreatedAt.UTC(),
		"updated_at":      j.UpdatedAt.UTC(),
	}
}

type jobRepository struct {
	db *sqlx.DB
}

var _ job.Repository = (*jobRepository)(nil)

func NewJobRepository(db *sqlx.DB) job.Repository {
	return &jobRepository{db: db}
}

func (repo *jobRepository) CreateJob(ctx context.Context, j job.Job) (job.Job, error) {
	j.ID = uuid.New().String()
	if err := insert(ctx, repo.db, jobsTable, jobValues(j)); err != nil {
		return job.Job{}, errors.Wrap(err, "inserting job")
	}
	return j, nil
}

func (repo *jobRepository) QueryJobs(ctx context.Context, filter *job.QueryFilter, ordering []core.DBOrdering, page core.Page) ([]job.Job, error) {
	b := psql.Select("*").From(jobsTable)
	if filter != nil {
		if filter.Search != "" {
			b = b.Where(searchAny(filter.Search, "title", "organization", "description"))
		}
		if filter.Location != "" {
			b = b.Where(sq.ILike{"location": contains(filter.Location)})
		}
		if filter.JobType != "" {
			b = b.Where(sq.Eq{"job_type": filter.JobType})
		}
		if filter.Category != "" {
			b = b.Where(sq.Eq{"category": filter.Category})
		}
		if filter.IsActive != nil {
			b = b.Where(sq.Eq{"is_active": *filter.IsActive})
		}
	}

	var rows []jobRow
	if err := selectAll(ctx, repo.db, &rows, paginate(b, ordering, page)); err != nil {
		return nil, errors.Wrap(err, "querying jobs")
	}
	jobs := make([]job.Job, 0, len(rows))
	for _, r := range rows {
		jobs = append(jobs, r.toJob())
	}
	return jobs, nil
}

func (repo *jobRepository) GetJob(ctx context.Context, id string) (job.Job, error) {
	if !isUUID(id) {
		return job.Job{}, job.ErrNotFound
	}
	var r jobRow
	if err := selectOne(ctx, repo.db, &r, psql.Select("*").From(jobsTable).Where(sq.Eq{"id": id})); err != nil {
		return job.Job{}, trapNoRowsErr(err, job.ErrNotFound, "finding job")
	}
	return r.toJob(), nil
}

func (repo *jobRepository) UpdateJob(ctx context.Context, j job.Job) (job.Job, error) {
	found, err := update(ctx, repo.db, jobsTable, j.ID, jobValues(j))
	if err != nil {
		return job.Job{}, errors.Wrap(err, "updating job")
	}
	if !found {
		return job.Job{}, job.ErrNotFound
	}
	return j, nil
}

func (repo *jobRepository) DeleteJobsByID(ctx context.Context, ids ...string) error {
	return errors.Wrap(deleteByID(ctx, repo.db, jobsTable, ids), "deleting jobs")
}

func (repo *jobRepository) DeactivateExpired(ctx context.Context, now time.Time) (int, error) {
	b := psql.Update(jobsTable).
		Set("is_active", false).
		Set("updated_at", now.UTC()).
		Where(sq.Eq{"is_active": true}).
		Where(sq.Lt{"deadline": now.UTC()})
	n, err := execute(ctx, repo.db, b)
	if err != nil {
		return 0, errors.Wrap(err, "deactivating expired jobs")
	}
	return n, nil
}
