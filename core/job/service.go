package job

import (
	"context"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/ilmhub/ilm/core"
	"github.com/ilmhub/ilm/core/user"
)

var ErrNotFound = core.NewNotFoundError("job")

type (
	Repository interface {
		CreateJob(ctx context.Context, j Job) (Job, error)
		// QueryJobs applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of title, organization or description.
		// QueryFilter.Location is a case-insensitive substring match.
		QueryJobs(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Page) ([]Job, error)
		GetJob(ctx context.Context, id string) (Job, error)
		UpdateJob(ctx context.Context, j Job) (Job, error)
		DeleteJobsByID(ctx context.Context, ids ...string) error
		// DeactivateExpired flags active jobs with a deadline before `now` as inactive and returns how many changed.
		DeactivateExpired(ctx context.Context, now time.Time) (int, error)
	}

	Service interface {
		Create(ctx context.Context, nj NewJob, by user.User) (Job, error)
		Get(ctx context.Context, id string) (Job, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Page) ([]Job, error)
		Update(ctx context.Context, j Job, uj UpdateJob) (Job, error)
		Delete(ctx context.Context, ids ...string) error
		ExpirePastDeadline(ctx context.Context, now time.Time) (int, error)
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
	core.RegisterOneOf(validate, translator, "jobtype", "invalid job type", Types)
}

func (svc *service) Create(ctx context.Context, nj NewJob, by user.User) (Job, error) {
	now := core.NowFunc()
	j := Job{
		Title:          nj.Title,
		Organization:   nj.Organization,
		Description:    nj.Description,
		Location:       nj.Location,
		JobType:        nj.JobType,
		Category:       nj.Category,
		SalaryRange:    nj.SalaryRange,
		ContactEmail:   nj.ContactEmail,
		ApplicationURL: nj.ApplicationURL,
		Requirements:   nj.Requirements,
		IsActive:       true,
		Deadline:       nj.Deadline,
		PostedBy:       by.ID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if j.Requirements == nil {
		j.Requirements = []string{}
	}
	return svc.repo.CreateJob(ctx, j)
}

func (svc *service) Get(ctx context.Context, id string) (Job, error) {
	return svc.repo.GetJob(ctx, id)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Page) ([]Job, error) {
	if filter != nil {
		filter.Clean()
	}
	ordering = core.CleanOrderings(ordering, OrderingFields...)
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "created_at"}}
	}
	return svc.repo.QueryJobs(ctx, filter, ordering, page)
}

func (svc *service) Update(ctx context.Context, j Job, uj UpdateJob) (Job, error) {
	uj.apply(&j)
	j.UpdatedAt = core.NowFunc()
	return svc.repo.UpdateJob(ctx, j)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	return svc.repo.DeleteJobsByID(ctx, ids...)
}

func (svc *service) ExpirePastDeadline(ctx context.Context, now time.Time) (int, error) {
	return svc.repo.DeactivateExpired(ctx, now.UTC())
}
