package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ilmhub/ilm/core/activity"
)

type activityAPI struct {
	svc  activity.Service
	auth *authenticator
}

func registerActivityAPI(g *echo.Group, mw middlewares, svc activity.Service) {
	api := activityAPI{svc: svc, auth: mw.auth}

	ag := g.Group("/activities/me", mw.jwt, mw.requireUser())
	ag.GET("", api.mine)
	ag.GET("/bookmarks", api.bookmarks)
}

func (api *activityAPI) list(ctx echo.Context, filter activity.QueryFilter) error {
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return err
	}
	acts, err := api.svc.ListByUser(ctx.Request().Context(), usr.ID, filter, bindPage(ctx))
	if err != nil {
		return errors.Wrap(err, "listing activities")
	}
	return ctx.JSON(http.StatusOK, acts)
}

func (api *activityAPI) mine(ctx echo.Context) error {
	return api.list(ctx, activity.QueryFilter{
		ActivityType: ctx.QueryParam("type"),
		TargetType:   ctx.QueryParam("target_type"),
	})
}

func (api *activityAPI) bookmarks(ctx echo.Context) error {
	return api.list(ctx, activity.QueryFilter{
		ActivityType: activity.TypeBookmark,
		TargetType:   ctx.QueryParam("target_type"),
	})
}
