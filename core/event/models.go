package event

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/ilmhub/ilm/core"
	"github.com/ilmhub/ilm/core/calendar"
)

// Categories
const (
	CategoryReligious   = "religious"
	CategoryEducational = "educational"
	CategoryCommunity   = "community"
	CategoryCharity     = "charity"
)

var Categories = []string{CategoryReligious, CategoryEducational, CategoryCommunity, CategoryCharity}

// Event is a row of islamic_events.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      null.Time `json:"ends_at"`
	Location    string    `json:"location"`
	// IsRecurring events come back every year on the same Hijri day.
	IsRecurring bool      `json:"is_recurring"`
	HijriDate   string    `json:"hijri_date"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type NewEvent struct {
	Title       string    `json:"title" validate:"required,notblank,max=200"`
	Description string    `json:"description" validate:"max=5000"`
	Category    string    `json:"category" validate:"required,eventcategory"`
	StartsAt    time.Time `json:"starts_at" validate:"required"`
	EndsAt      null.Time `json:"ends_at"`
	Location    string    `json:"location" validate:"max=300"`
	IsRecurring bool      `json:"is_recurring"`
}

func (ne *NewEvent) Validate(validate *validator.Validate) error {
	ne.Title = core.CleanString(ne.Title)
	ne.Description = core.CleanString(ne.Description)
	ne.Category = core.CleanString(ne.Category, true /* lower */)
	ne.Location = core.CleanString(ne.Location)
	return validate.Struct(ne)
}

// UpdateEvent holds the fields to change. Nil fields are left untouched.
type UpdateEvent struct {
	Title       *string    `json:"title" validate:"omitempty,notblank,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	Category    *string    `json:"category" validate:"omitempty,eventcategory"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *null.Time `json:"ends_at"`
	Location    *string    `json:"location" validate:"omitempty,max=300"`
	IsRecurring *bool      `json:"is_recurring"`
}

// Validate checks the update against the event it applies to.
func (ue *UpdateEvent) Validate(orig Event, validate *validator.Validate) error {
	if err := validate.Struct(ue); err != nil {
		return err
	}
	merged := orig
	ue.apply(&merged)
	return checkPeriod(merged.StartsAt, merged.EndsAt)
}

func (ue UpdateEvent) apply(ev *Event) {
	if ue.Title != nil {
		ev.Title = core.CleanString(*ue.Title)
	}
	if ue.Description != nil {
		ev.Description = core.CleanString(*ue.Description)
	}
	if ue.Category != nil {
		ev.Category = core.CleanString(*ue.Category, true /* lower */)
	}
	if ue.StartsAt != nil {
		ev.StartsAt = ue.StartsAt.UTC()
	}
	if ue.EndsAt != nil {
		ev.EndsAt = *ue.EndsAt
	}
	if ue.Location != nil {
		ev.Location = core.CleanString(*ue.Location)
	}
	if ue.IsRecurring != nil {
		ev.IsRecurring = *ue.IsRecurring
	}
}

type QueryFilter struct {
	Search    string
	Category  string
	From      time.Time
	To        time.Time
	Recurring *bool
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Category = core.CleanString(qf.Category, true /* lower */)
}

var OrderingFields = []string{"title", "category", "starts_at", "created_at"}

// UpcomingItem is either a stored Event or a calendar occasion.
type UpcomingItem struct {
	Kind      string                 `json:"kind"` // "event" | "occasion"
	Title     string                 `json:"title"`
	Gregorian time.Time              `json:"gregorian"`
	Hijri     calendar.Date          `json:"hijri"`
	HijriText string                 `json:"hijri_text"`
	Event     *Event                 `json:"event,omitempty"`
	Occasion  *calendar.OccasionDate `json:"occasion,omitempty"`
}
