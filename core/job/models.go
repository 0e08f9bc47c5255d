package job

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/ilmhub/ilm/core"
)

// Job types
const (
	TypeFullTime  = "full_time"
	TypePartTime  = "part_time"
	TypeContract  = "contract"
	TypeVolunteer = "volunteer"
	TypeRemote    = "remote"
)

var Types = []string{TypeFullTime, TypePartTime, TypeContract, TypeVolunteer, TypeRemote}

// Job is a row of job_openings.
type Job struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Organization   string    `json:"organization"`
	Description    string    `json:"description"`
	Location       string    `json:"location"`
	JobType        string    `json:"job_type"`
	Category       string    `json:"category"`
	SalaryRange    string    `json:"salary_range"`
	ContactEmail   string    `json:"contact_email"`
	ApplicationURL string    `json:"application_url"`
	Requirements   []string  `json:"requirements"`
	IsActive       bool      `json:"is_active"`
	Deadline       null.Time `json:"deadline"`
	PostedBy       string    `json:"posted_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// IsExpired reports whether the application deadline has passed at `now`.
func (j Job) IsExpired(now time.Time) bool {
	return j.Deadline.Valid && j.Deadline.Time.Before(now)
}

type NewJob struct {
	Title          string    `json:"title" validate:"required,notblank,max=200"`
	Organization   string    `json:"organization" validate:"required,notblank,max=200"`
	Description    string    `json:"description" validate:"required,notblank"`
	Location       string    `json:"location" validate:"max=200"`
	JobType        string    `json:"job_type" validate:"required,jobtype"`
	Category       string    `json:"category" validate:"max=100"`
	SalaryRange    string    `json:"salary_range" validate:"max=100"`
	ContactEmail   string    `json:"contact_email" validate:"omitempty,email"`
	ApplicationURL string    `json:"application_url" validate:"omitempty,url"`
	Requirements   []string  `json:"requirements" validate:"max=30,dive,max=300"`
	Deadline       null.Time `json:"deadline"`
}

func (nj *NewJob) Validate(validate *validator.Validate) error {
	nj.Title = core.CleanString(nj.Title)
	nj.Organization = core.CleanString(nj.Organization)
	nj.Description = core.CleanString(nj.Description)
	nj.Location = core.CleanString(nj.Location)
	nj.JobType = core.CleanString(nj.JobType, true /* lower */)
	nj.Category = core.CleanString(nj.Category, true /* lower */)
	nj.SalaryRange = core.CleanString(nj.SalaryRange)
	nj.ContactEmail = core.CleanString(nj.ContactEmail, true /* lower */)
	nj.ApplicationURL = core.CleanString(nj.ApplicationURL)
	nj.Requirements = core.CleanStrings(nj.Requirements)
	return validate.Struct(nj)
}

// UpdateJob holds the fields to change. Nil fields are left untouched.
type UpdateJob struct {
	Title          *string    `json:"title" validate:"omitempty,notblank,max=200"`
	Organization   *string    `json:"organization" validate:"omitempty,notblank,max=200"`
	Description    *string    `json:"description" validate:"omitempty,notblank"`
	Location       *string    `json:"location" validate:"omitempty,max=200"`
	JobType        *string    `json:"job_type" validate:"omitempty,jobtype"`
	Category       *string    `json:"category" validate:"omitempty,max=100"`
	SalaryRange    *string    `json:"salary_range" validate:"omitempty,max=100"`
	ContactEmail   *string    `json:"contact_email" validate:"omitempty,email"`
	ApplicationURL *string    `json:"application_url" validate:"omitempty,url"`
	Requirements   []string   `json:"requirements" validate:"omitempty,max=30,dive,max=300"`
	IsActive       *bool      `json:"is_active"`
	Deadline       *null.Time `json:"deadline"`
}

func (uj *UpdateJob) Validate(validate *validator.Validate) error {
	if uj.JobType != nil {
		jt := core.CleanString(*uj.JobType, true /* lower */)
		uj.JobType = &jt
	}
	if uj.ContactEmail != nil {
		email := core.CleanString(*uj.ContactEmail, true /* lower */)
		uj.ContactEmail = &email
	}
	return validate.Struct(uj)
}

func (uj UpdateJob) apply(j *Job) {
	set := func(dst *string, src *string, lower ...bool) {
		if src != nil {
			*dst = core.CleanString(*src, lower...)
		}
	}
	set(&j.Title, uj.Title)
	set(&j.Organization, uj.Organization)
	set(&j.Description, uj.Description)
	set(&j.Location, uj.Location)
	set(&j.JobType, uj.JobType, true)
	set(&j.Category, uj.Category, true)
	set(&j.SalaryRange, uj.SalaryRange)
	set(&j.ContactEmail, uj.ContactEmail, true)
	set(&j.ApplicationURL, uj.ApplicationURL)
	if uj.Requirements != nil {
		j.Requirements = core.CleanStrings(uj.Requirements)
	}
	if uj.IsActive != nil {
		j.IsActive = *uj.IsActive
	}
	if uj.Deadline != nil {
		j.Deadline = *uj.Deadline
	}
}

type QueryFilter struct {
	Search   string
	Location string
	JobType  string
	Category string
	IsActive *bool
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Location = core.CleanString(qf.Location)
	qf.JobType = core.CleanString(qf.JobType, true /* lower */)
	qf.Category = core.CleanString(qf.Category, true /* lower */)
}

var OrderingFields = []string{"title", "organization", "deadline", "created_at"}
