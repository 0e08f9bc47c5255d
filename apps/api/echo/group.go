package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ilmhub/ilm/core/group"
)

type groupAPI struct {
	svc      group.Service
	auth     *authenticator
	validate *validator.Validate
}

func registerGroupAPI(g *echo.Group, mw middlewares, svc group.Service, validate *validator.Validate) {
	api := groupAPI{svc: svc, auth: mw.auth, validate: validate}

	gg := g.Group("/groups")
	gg.GET("", api.query)
	gg.GET("/:id", api.retrieve)
	gg.POST("", api.create, mw.admin()...)
	gg.PUT("/:id", api.update, mw.admin()...)
	gg.DELETE("/:id", api.destroy, mw.admin()...)
}

func (api *groupAPI) query(ctx echo.Context) error {
	filter := &group.QueryFilter{
		Search:     ctx.QueryParam("search"),
		Category:   ctx.QueryParam("category"),
		Language:   ctx.QueryParam("language"),
		IsActive:   queryBool(ctx, "is_active"),
		IsVerified: queryBool(ctx, "is_verified"),
	}
	groups, err := api.svc.Query(ctx.Request().Context(), filter, bindOrdering(ctx), bindPage(ctx))
	if err != nil {
		return errors.Wrap(err, "querying groups")
	}
	return ctx.JSON(http.StatusOK, groups)
}

func (api *groupAPI) retrieve(ctx echo.Context) error {
	grp, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, grp)
}

func (api *groupAPI) create(ctx echo.Context) error {
	var data group.NewGroup
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGroup")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return err
	}

	grp, err := api.svc.Create(ctx.Request().Context(), data, usr)
	if err != nil {
		return errors.Wrap(err, "creating group")
	}
	return ctx.JSON(http.StatusCreated, grp)
}

func (api *groupAPI) update(ctx echo.Context) error {
	grp, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}

	var data group.UpdateGroup
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateGroup")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	grp, err = api.svc.Update(ctx.Request().Context(), grp, data)
	if err != nil {
		return errors.Wrap(err, "updating group")
	}
	return ctx.JSON(http.StatusOK, grp)
}

func (api *groupAPI) destroy(ctx echo.Context) error {
	if _, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting group")
	}
	return ctx.NoContent(http.StatusNoContent)
}
