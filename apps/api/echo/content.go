package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ilmhub/ilm/core/content"
	"github.com/ilmhub/ilm/core/user"
)

type contentAPI struct {
	svc      content.Service
	auth     *authenticator
	validate *validator.Validate
}

func registerContentAPI(g *echo.Group, mw middlewares, svc content.Service, validate *validator.Validate) {
	api := contentAPI{svc: svc, auth: mw.auth, validate: validate}

	cg := g.Group("/content")
	cg.GET("", api.query, mw.optionalJWT)
	cg.GET("/:id", api.retrieve, mw.optionalJWT)
	cg.POST("", api.create, mw.member(user.User.IsAuthor)...)
	cg.PUT("/:id", api.update, mw.member()...)
	cg.POST("/:id/bookmark", api.bookmark, mw.member()...)
	cg.POST("/:id/:action", api.transition, mw.member()...)
	cg.DELETE("/:id", api.destroy, mw.admin()...)
}

func (api *contentAPI) query(ctx echo.Context) error {
	viewer, err := api.auth.viewer(ctx)
	if err != nil {
		return err
	}
	filter := &content.QueryFilter{
		Search:      ctx.QueryParam("search"),
		ContentType: ctx.QueryParam("content_type"),
		Category:    ctx.QueryParam("category"),
		Tag:         ctx.QueryParam("tag"),
		Language:    ctx.QueryParam("language"),
		Status:      ctx.QueryParam("status"),
		AuthorID:    ctx.QueryParam("author"),
	}
	items, err := api.svc.Query(ctx.Request().Context(), filter, viewer, bindOrdering(ctx), bindPage(ctx))
	if err != nil {
		return errors.Wrap(err, "querying content")
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *contentAPI) retrieve(ctx echo.Context) error {
	viewer, err := api.auth.viewer(ctx)
	if err != nil {
		return err
	}
	it, err := api.svc.View(ctx.Request().Context(), ctx.Param("id"), viewer)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, it)
}

func (api *contentAPI) create(ctx echo.Context) error {
	var data content.NewItem
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewItem")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return err
	}

	it, err := api.svc.Create(ctx.Request().Context(), data, usr)
	if err != nil {
		return errors.Wrap(err, "creating content")
	}
	return ctx.JSON(http.StatusCreated, it)
}

func (api *contentAPI) update(ctx echo.Context) error {
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return err
	}
	it, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"), &usr)
	if err != nil {
		return err
	}

	var data content.UpdateItem
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateItem")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	it, err = api.svc.Update(ctx.Request().Context(), it, data, usr)
	if err != nil {
		return errors.Wrap(err, "updating content")
	}
	return ctx.JSON(http.StatusOK, it)
}

func (api *contentAPI) transition(ctx echo.Context) error {
	action, ok := content.ParseAction(ctx.Param("action"))
	if !ok {
		return errHttpNotFound
	}
	var data TransitionRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TransitionRequest")
	}
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return err
	}

	it, err := api.svc.Transition(ctx.Request().Context(), ctx.Param("id"), action, usr, data.Notes)
	if err != nil {
		return errors.Wrapf(err, "applying %s", action)
	}
	return ctx.JSON(http.StatusOK, it)
}

func (api *contentAPI) bookmark(ctx echo.Context) error {
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return err
	}
	bookmarked, err := api.svc.ToggleBookmark(ctx.Request().Context(), ctx.Param("id"), usr)
	if err != nil {
		return errors.Wrap(err, "toggling bookmark")
	}
	return ctx.JSON(http.StatusOK, BookmarkResponse{Bookmarked: bookmarked})
}

func (api *contentAPI) destroy(ctx echo.Context) error {
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return err
	}
	if _, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"), &usr); err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting content")
	}
	return ctx.NoContent(http.StatusNoContent)
}
