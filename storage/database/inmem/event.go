package inmemdb

import (
	"context"

	"github.com/ilmhub/ilm/core"
	"github.com/ilmhub/ilm/core/event"
)

type eventRepository struct {
	db *table[event.Event]
}

var _ event.Repository = (*eventRepository)(nil)

func NewEventRepository(db *DB) event.Repository {
	return &eventRepository{db: db.events}
}

func (repo *eventRepository) CreateEvent(_ context.Context, ev event.Event) (event.Event, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	ev.ID = newID()
	repo.db.insert(ev.ID, ev)
	return ev, nil
}

func compareEvents(a, b event.Event, field string) int {
	switch field {
	case "title":
		return compareStrings(a.Title, b.Title)
	case "category":
		return compareStrings(a.Category, b.Category)
	case "starts_at":
		return compareTimes(a.StartsAt, b.StartsAt)
	case "created_at":
		return compareTimes(a.CreatedAt, b.CreatedAt)
	}
	return 0
}

func (repo *eventRepository) QueryEvents(_ context.Context, filter *event.QueryFilter, ordering []core.DBOrdering, page core.Page) ([]event.Event, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	events := make([]event.Event, 0)
	for _, ev := range repo.db.all() {
		if filter != nil {
			if filter.Search != "" && !matchesAny(filter.Search, ev.Title, ev.Description, ev.Location) {
				continue
			}
			if filter.Category != "" && ev.Category != filter.Category {
				continue
			}
			if !filter.From.IsZero() && ev.StartsAt.Before(filter.From) {
				continue
			}
			if !filter.To.IsZero() && ev.StartsAt.After(filter.To) {
				continue
			}
			if filter.Recurring != nil && ev.IsRecurring != *filter.Recurring {
				continue
			}
		}
		events = append(events, ev)
	}
	sortRows(events, ordering, compareEvents)
	return pageRows(events, page), nil
}

func (repo *eventRepository) GetEvent(_ context.Context, id string) (event.Event, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if ev, ok := repo.db.get(id); ok {
		return ev, nil
	}
	return event.Event{}, event.ErrNotFound
}

func (repo *eventRepository) UpdateEvent(_ context.Context, ev event.Event) (event.Event, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if !repo.db.put(ev.ID, ev) {
		return event.Event{}, event.ErrNotFound
	}
	return ev, nil
}

func (repo *eventRepository) DeleteEventsByID(_ context.Context, ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.remove(ids...)
	return nil
}
