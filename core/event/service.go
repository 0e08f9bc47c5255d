package event

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/ilmhub/ilm/core"
	"github.com/ilmhub/ilm/core/calendar"
	"github.com/ilmhub/ilm/core/user"
)

var ErrNotFound = core.NewNotFoundError("event")

type (
	Repository interface {
		CreateEvent(ctx context.Context, ev Event) (Event, error)
		// QueryEvents applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of title, description or location.
		QueryEvents(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Page) ([]Event, error)
		GetEvent(ctx context.Context, id string) (Event, error)
		UpdateEvent(ctx context.Context, ev Event) (Event, error)
		DeleteEventsByID(ctx context.Context, ids ...string) error
	}

	Service interface {
		Create(ctx context.Context, ne NewEvent, by user.User) (Event, error)
		Get(ctx context.Context, id string) (Event, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Page) ([]Event, error)
		Update(ctx context.Context, ev Event, ue UpdateEvent) (Event, error)
		Delete(ctx context.Context, ids ...string) error
		// Upcoming merges stored events with the calendar occasions, soonest first.
		Upcoming(ctx context.Context, from time.Time, n int) ([]UpcomingItem, error)
	}

	service struct {
		repo Repository
		conv calendar.Converter
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, conv calendar.Converter) Service {
	return &service{repo: repo, conv: conv}
}

func (svc *service) hijriDate(t time.Time) string {
	d, err := svc.conv.FromGregorian(t)
	if err != nil {
		return ""
	}
	return d.Format()
}

func (svc *service) Create(ctx context.Context, ne NewEvent, by user.User) (Event, error) {
	now := core.NowFunc()
	ev := Event{
		Title:       ne.Title,
		Description: ne.Description,
		Category:    ne.Category,
		StartsAt:    ne.StartsAt.UTC(),
		EndsAt:      ne.EndsAt,
		Location:    ne.Location,
		IsRecurring: ne.IsRecurring,
		CreatedBy:   by.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if ev.EndsAt.Valid {
		ev.EndsAt.Time = ev.EndsAt.Time.UTC()
	}
	ev.HijriDate = svc.hijriDate(ev.StartsAt)
	return svc.repo.CreateEvent(ctx, ev)
}

func (svc *service) Get(ctx context.Context, id string) (Event, error) {
	return svc.repo.GetEvent(ctx, id)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Page) ([]Event, error) {
	if filter != nil {
		filter.Clean()
	}
	ordering = core.CleanOrderings(ordering, OrderingFields...)
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "starts_at", Ascending: true}}
	}
	return svc.repo.QueryEvents(ctx, filter, ordering, page)
}

func (svc *service) Update(ctx context.Context, ev Event, ue UpdateEvent) (Event, error) {
	ue.apply(&ev)
	ev.HijriDate = svc.hijriDate(ev.StartsAt)
	ev.UpdatedAt = core.NowFunc()
	return svc.repo.UpdateEvent(ctx, ev)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	return svc.repo.DeleteEventsByID(ctx, ids...)
}

func (svc *service) Upcoming(ctx context.Context, from time.Time, n int) ([]UpcomingItem, error) {
	if n <= 0 {
		return []UpcomingItem{}, nil
	}
	from = from.UTC()
	fromDay := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	page := core.NewPage(n, 0)
	asc := []core.DBOrdering{{Field: "starts_at", Ascending: true}}

	oneOff, err := svc.repo.QueryEvents(ctx, &QueryFilter{From: fromDay, Recurring: core.BoolPtr(false)}, asc, page)
	if err != nil {
		return nil, errors.Wrap(err, "querying upcoming events")
	}
	recurring, err := svc.allRecurring(ctx)
	if err != nil {
		return nil, err
	}
	occasions, err := svc.conv.UpcomingOccasions(fromDay, n)
	if err != nil {
		return nil, errors.Wrap(err, "computing occasions")
	}

	items := make([]UpcomingItem, 0, len(oneOff)+len(recurring)+len(occasions))
	for i := range oneOff {
		ev := oneOff[i]
		items = append(items, svc.eventItem(ev, ev.StartsAt))
	}
	for i := range recurring {
		ev := recurring[i]
		if next, ok := svc.nextOccurrence(ev, fromDay); ok {
			items = append(items, svc.eventItem(ev, next))
		}
	}
	for i := range occasions {
		od := occasions[i]
		items = append(items, UpcomingItem{
			Kind:      "occasion",
			Title:     od.Name,
			Gregorian: od.Gregorian,
			Hijri:     od.Hijri,
			HijriText: od.Hijri.String(),
			Occasion:  &od,
		})
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].Gregorian.Before(items[j].Gregorian) })
	if len(items) > n {
		items = items[:n]
	}
	return items, nil
}

// allRecurring pages through every recurring event.
func (svc *service) allRecurring(ctx context.Context) ([]Event, error) {
	filter := &QueryFilter{Recurring: core.BoolPtr(true)}
	ordering := []core.DBOrdering{{Field: "starts_at", Ascending: true}, {Field: "created_at", Ascending: true}}
	var all []Event
	for offset := 0; ; offset += core.MaxPageLimit {
		evs, err := svc.repo.QueryEvents(ctx, filter, ordering, core.NewPage(core.MaxPageLimit, offset))
		if err != nil {
			return nil, errors.Wrap(err, "querying recurring events")
		}
		all = append(all, evs...)
		if len(evs) < core.MaxPageLimit {
			return all, nil
		}
	}
}

func (svc *service) eventItem(ev Event, at time.Time) UpcomingItem {
	hd, _ := svc.conv.FromGregorian(at)
	return UpcomingItem{
		Kind:      "event",
		Title:     ev.Title,
		Gregorian: at,
		Hijri:     hd,
		HijriText: hd.String(),
		Event:     &ev,
	}
}

// nextOccurrence finds the first yearly repeat of a recurring event on or after fromDay.
func (svc *service) nextOccurrence(ev Event, fromDay time.Time) (time.Time, bool) {
	orig, err := svc.conv.FromGregorian(ev.StartsAt)
	if err != nil {
		return time.Time{}, false
	}
	today, err := svc.conv.FromGregorian(fromDay)
	if err != nil {
		return time.Time{}, false
	}
	clock := ev.StartsAt.Sub(time.Date(ev.StartsAt.Year(), ev.StartsAt.Month(), ev.StartsAt.Day(), 0, 0, 0, 0, time.UTC))
	for y := today.Year; y <= today.Year+1; y++ {
		if y < orig.Year {
			continue
		}
		day := orig.Day
		if last := calendar.DaysInMonth(y, orig.Month); day > last {
			day = last // 30 Dhu al-Hijjah falls back to the 29th in common years
		}
		g, err := svc.conv.ToGregorian(calendar.Date{Year: y, Month: orig.Month, Day: day})
		if err != nil {
			continue
		}
		if !g.Before(fromDay) {
			return g.Add(clock), true
		}
	}
	return time.Time{}, false
}
