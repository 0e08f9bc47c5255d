package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ilmhub/ilm/core/job"
)

type jobAPI struct {
	svc      job.Service
	auth     *authenticator
	validate *validator.Validate
}

func registerJobAPI(g *echo.Group, mw middlewares, svc job.Service, validate *validator.Validate) {
	api := jobAPI{svc: svc, auth: mw.auth, validate: validate}

	jg := g.Group("/jobs")
	jg.GET("", api.query, mw.optionalJWT)
	jg.GET("/:id", api.retrieve, mw.optionalJWT)
	jg.POST("", api.create, mw.admin()...)
	jg.PUT("/:id", api.update, mw.admin()...)
	jg.DELETE("/:id", api.destroy, mw.admin()...)
}

func isAdminRequest(ctx echo.Context) bool {
	claims, err := getContextClaims(ctx)
	return err == nil && claims.IsAdmin
}

func (api *jobAPI) query(ctx echo.Context) error {
	filter := &job.QueryFilter{
		Search:   ctx.QueryParam("search"),
		Location: ctx.QueryParam("location"),
		JobType:  ctx.QueryParam("job_type"),
		Category: ctx.QueryParam("category"),
		IsActive: queryBool(ctx, "is_active"),
	}
	if !isAdminRequest(ctx) {
		active := true
		filter.IsActive = &active
	}

	jobs, err := api.svc.Query(ctx.Request().Context(), filter, bindOrdering(ctx), bindPage(ctx))
	if err != nil {
		return errors.Wrap(err, "querying jobs")
	}
	return ctx.JSON(http.StatusOK, jobs)
}

func (api *jobAPI) retrieve(ctx echo.Context) error {
	j, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	if !j.IsActive && !isAdminRequest(ctx) {
		return job.ErrNotFound
	}
	return ctx.JSON(http.StatusOK, j)
}

func (api *jobAPI) create(ctx echo.Context) error {
	var data job.NewJob
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewJob")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return err
	}

	j, err := api.svc.Create(ctx.Request().Context(), data, usr)
	if err != nil {
		return errors.Wrap(err, "creating job")
	}
	return ctx.JSON(http.StatusCreated, j)
}

func (api *jobAPI) update(ctx echo.Context) error {
	j, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}

	var data job.UpdateJob
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateJob")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	j, err = api.svc.Update(ctx.Request().Context(), j, data)
	if err != nil {
		return errors.Wrap(err, "updating job")
	}
	return ctx.JSON(http.StatusOK, j)
}

func (api *jobAPI) destroy(ctx echo.Context) error {
	if _, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting job")
	}
	return ctx.NoContent(http.StatusNoContent)
}
