package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ilmhub/ilm/core"
	"github.com/ilmhub/ilm/core/event"
)

const defaultUpcoming = 10

type eventAPI struct {
	svc      event.Service
	auth     *authenticator
	validate *validator.Validate
}

func registerEventAPI(g *echo.Group, mw middlewares, svc event.Service, validate *validator.Validate) {
	api := eventAPI{svc: svc, auth: mw.auth, validate: validate}

	eg := g.Group("/events")
	eg.GET("", api.query)
	eg.GET("/upcoming", api.upcoming)
	eg.GET("/:id", api.retrieve)
	eg.POST("", api.create, mw.admin()...)
	eg.PUT("/:id", api.update, mw.admin()...)
	eg.DELETE("/:id", api.destroy, mw.admin()...)
}

func (api *eventAPI) query(ctx echo.Context) error {
	filter := &event.QueryFilter{
		Search:    ctx.QueryParam("search"),
		Category:  ctx.QueryParam("category"),
		Recurring: queryBool(ctx, "recurring"),
	}
	var err error
	if filter.From, err = queryTime(ctx, "from"); err != nil {
		return err
	}
	if filter.To, err = queryTime(ctx, "to"); err != nil {
		return err
	}

	events, err := api.svc.Query(ctx.Request().Context(), filter, bindOrdering(ctx), bindPage(ctx))
	if err != nil {
		return errors.Wrap(err, "querying events")
	}
	return ctx.JSON(http.StatusOK, events)
}

func (api *eventAPI) upcoming(ctx echo.Context) error {
	from, err := queryTime(ctx, "from")
	if err != nil {
		return err
	}
	if from.IsZero() {
		from = core.NowFunc()
	}
	n := queryInt(ctx, "limit", defaultUpcoming)
	if n > core.MaxPageLimit {
		n = core.MaxPageLimit
	}

	items, err := api.svc.Upcoming(ctx.Request().Context(), from, n)
	if err != nil {
		return errors.Wrap(err, "listing upcoming events")
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *eventAPI) retrieve(ctx echo.Context) error {
	ev, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ev)
}

func (api *eventAPI) create(ctx echo.Context) error {
	var data event.NewEvent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEvent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return err
	}

	ev, err := api.svc.Create(ctx.Request().Context(), data, usr)
	if err != nil {
		return errors.Wrap(err, "creating event")
	}
	return ctx.JSON(http.StatusCreated, ev)
}

func (api *eventAPI) update(ctx echo.Context) error {
	ev, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}

	var data event.UpdateEvent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateEvent")
	}
	if err := data.Validate(ev, api.validate); err != nil {
		return err
	}

	ev, err = api.svc.Update(ctx.Request().Context(), ev, data)
	if err != nil {
		return errors.Wrap(err, "updating event")
	}
	return ctx.JSON(http.StatusOK, ev)
}

func (api *eventAPI) destroy(ctx echo.Context) error {
	if _, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting event")
	}
	return ctx.NoContent(http.StatusNoContent)
}
