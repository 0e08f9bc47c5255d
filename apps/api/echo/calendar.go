package echoapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ilmhub/ilm/core"
	"github.com/ilmhub/ilm/core/calendar"
)

// CalendarDay is a day expressed in both calendars.
type CalendarDay struct {
	Hijri          calendar.Date `json:"hijri"`
	HijriFormatted string        `json:"hijri_formatted"`
	HijriText      string        `json:"hijri_text"`
	MonthNameEn    string        `json:"month_name_en"`
	Gregorian      string        `json:"gregorian"`
	Weekday        string        `json:"weekday"`
}

func newCalendarDay(d calendar.Date, g time.Time) CalendarDay {
	return CalendarDay{
		Hijri:          d,
		HijriFormatted: d.Format(),
		HijriText:      d.String(),
		MonthNameEn:    d.MonthNameEn(),
		Gregorian:      g.Format("2006-01-02"),
		Weekday:        g.Weekday().String(),
	}
}

type calendarAPI struct {
	conv calendar.Converter
}

func registerCalendarAPI(g *echo.Group, conv calendar.Converter) {
	api := calendarAPI{conv: conv}

	cg := g.Group("/calendar")
	cg.GET("/today", api.today)
	cg.GET("/convert", api.convert)
	cg.GET("/month", api.month)
	cg.GET("/occasions", api.occasions)
}

func dateError(field string, err error) error {
	return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
}

func (api *calendarAPI) today(ctx echo.Context) error {
	now := core.NowFunc().UTC()
	d, err := api.conv.FromGregorian(now)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, newCalendarDay(d, now))
}

// convert handles ?date=YYYY-MM-DD (gregorian) or ?hijri=YYYY-MM-DD.
func (api *calendarAPI) convert(ctx echo.Context) error {
	if h := strings.TrimSpace(ctx.QueryParam("hijri")); h != "" {
		d, err := calendar.ParseDate(h)
		if err != nil {
			return dateError("hijri", err)
		}
		g, err := api.conv.ToGregorian(d)
		if err != nil {
			return dateError("hijri", err)
		}
		return ctx.JSON(http.StatusOK, newCalendarDay(d, g))
	}

	g, err := queryTime(ctx, "date")
	if err != nil {
		return err
	}
	if g.IsZero() {
		return core.NewValidationError(nil, core.FieldError{Field: "date", Error: "date or hijri is required"})
	}
	d, err := api.conv.FromGregorian(g)
	if err != nil {
		return dateError("date", err)
	}
	return ctx.JSON(http.StatusOK, newCalendarDay(d, g))
}

func (api *calendarAPI) month(ctx echo.Context) error {
	today, err := api.conv.FromGregorian(core.NowFunc())
	if err != nil {
		return err
	}
	y := queryInt(ctx, "year", today.Year)
	m := queryInt(ctx, "month", today.Month)

	days, err := api.conv.MonthGrid(y, m)
	if err != nil {
		return dateError("month", err)
	}
	return ctx.JSON(http.StatusOK, days)
}

// occasions lists the occasions of ?year=, or the next ?limit= ones.
func (api *calendarAPI) occasions(ctx echo.Context) error {
	if y := queryInt(ctx, "year", 0); y > 0 {
		occs, err := api.conv.OccasionsInYear(y)
		if err != nil {
			return dateError("year", err)
		}
		return ctx.JSON(http.StatusOK, occs)
	}

	limit := queryInt(ctx, "limit", 5)
	if limit < 1 || limit > len(calendar.Occasions) {
		limit = len(calendar.Occasions)
	}
	occs, err := api.conv.UpcomingOccasions(core.NowFunc(), limit)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, occs)
}
