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
	"github.com/ilmhub/ilm/core/event"
)

const eventsTable = "islamic_events"

type eventRow struct {
	ID          string      `db:"id"`
	Title       string      `db:"title"`
	Description string      `db:"description"`
	Category    string      `db:"category"`
	StartsAt    time.Time   `db:"starts_at"`
	EndsAt      null.Time   `db:"ends_at"`
	Location    string      `db:"location"`
	IsRecurring bool        `db:"is_recurring"`
	HijriDate   string      `db:"hijri_date"`
	CreatedBy   null.String `db:"created_by"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

func (r eventRow) toEvent() event.Event {
	ev := event.Event{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		StartsAt:    r.StartsAt.UTC(),
		EndsAt:      r.EndsAt,
		Location:    r.Location,
		IsRecurring: r.IsRecurring,
		HijriDate:   r.HijriDate,
		CreatedBy:   r.CreatedBy.String,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
	if ev.EndsAt.Valid {
		ev.EndsAt.Time = ev.EndsAt.Time.UTC()
	}
	return ev
}

func eventValues(ev event.Event) map[string]interface{} {
	return map[string]interface{}{
		"id":           ev.ID,
		"title":        ev.Title,
		"description":  ev.Description,
		"category":     ev.Category,
		"starts_at":    ev.StartsAt.UTC(),
		"ends_at":      ev.EndsAt,
		"location":     ev.Location,
		"is_recurring": ev.IsRecurring,
		"hijri_date":   ev.HijriDate,
		"created_by":   nullableID(ev.CreatedBy),
		"created_at":   ev.CreatedAt.UTC(),
		"updated_at":   ev.UpdatedAt.UTC(),
	}
}

type eventRepository struct {
	db *sqlx.DB
}

var _ event.Repository = (*eventRepository)(nil)

func NewEventRepository(db *sqlx.DB) event.Repository {
	return &eventRepository{db: db}
}

func (repo *eventRepository) CreateEvent(ctx context.Context, ev event.Event) (event.Event, error) {
	ev.ID = uuid.New().String()
	if err := insert(ctx, repo.db, eventsTable, eventValues(ev)); err != nil {
		return event.Event{}, errors.Wrap(err, "inserting event")
	}
	return ev, nil
}

func (repo *eventRepository) QueryEvents(ctx context.Context, filter *event.QueryFilter, ordering []core.DBOrdering, page core.Page) ([]event.Event, error) {
	b := psql.Select("*").From(eventsTable)
	if filter != nil {
		if filter.Search != "" {
			b = b.Where(searchAny(filter.Search, "title", "description", "location"))
		}
		if filter.Category != "" {
			b = b.Where(sq.Eq{"category": filter.Category})
		}
		if !filter.From.IsZero() {
			b = b.Where(sq.GtOrEq{"starts_at": filter.From.UTC()})
		}
		if !filter.To.IsZero() {
			b = b.Where(sq.LtOrEq{"starts_at": filter.To.UTC()})
		}
		if filter.Recurring != nil {
			b = b.Where(sq.Eq{"is_recurring": *filter.Recurring})
		}
	}

	var rows []eventRow
	if err := selectAll(ctx, repo.db, &rows, paginate(b, ordering, page)); err != nil {
		return nil, errors.Wrap(err, "querying events")
	}
	events := make([]event.Event, 0, len(rows))
	for _, r := range rows {
		events = append(events, r.toEvent())
	}
	return events, nil
}

func (repo *eventRepository) GetEvent(ctx context.Context, id string) (event.Event, error) {
	if !isUUID(id) {
		return event.Event{}, event.ErrNotFound
	}
	var r eventRow
	if err := selectOne(ctx, repo.db, &r, psql.Select("*").From(eventsTable).Where(sq.Eq{"id": id})); err != nil {
		return event.Event{}, trapNoRowsErr(err, event.ErrNotFound, "finding event")
	}
	return r.toEvent(), nil
}

func (repo *eventRepository) UpdateEvent(ctx context.Context, ev event.Event) (event.Event, error) {
	found, err := update(ctx, repo.db, eventsTable, ev.ID, eventValues(ev))
	if err != nil {
		return event.Event{}, errors.Wrap(err, "updating event")
	}
	if !found {
		return event.Event{}, event.ErrNotFound
	}
	return ev, nil
}

func (repo *eventRepository) DeleteEventsByID(ctx context.Context, ids ...string) error {
	return errors.Wrap(deleteByID(ctx, repo.db, eventsTable, ids), "deleting events")
}
