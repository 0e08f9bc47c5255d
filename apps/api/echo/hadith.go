package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ilmhub/ilm/core/activity"
	"github.com/ilmhub/ilm/core/hadith"
)

type hadithAPI struct {
	svc         hadith.Service
	activitySvc activity.Service
	auth        *authenticator
	validate    *validator.Validate
}

func registerHadithAPI(g *echo.Group, mw middlewares, svc hadith.Service, activitySvc activity.Service, validate *validator.Validate) {
	api := hadithAPI{svc: svc, activitySvc: activitySvc, auth: mw.auth, validate: validate}

	hg := g.Group("/hadiths")
	hg.GET("", api.search, mw.limiter)
	hg.GET("/:id", api.retrieve)
	hg.POST("/:id/bookmark", api.bookmark, mw.member()...)
	hg.POST("", api.create, mw.admin()...)
	hg.POST("/import", api.importMany, mw.admin()...)
	hg.PUT("/:id", api.update, mw.admin()...)
	hg.DELETE("/:id", api.destroy, mw.admin()...)
}

func (api *hadithAPI) search(ctx echo.Context) error {
	filter := &hadith.QueryFilter{
		Q:          ctx.QueryParam("q"),
		Collection: ctx.QueryParam("collection"),
		Grade:      ctx.QueryParam("grade"),
		Narrator:   ctx.QueryParam("narrator"),
	}
	hs, err := api.svc.Search(ctx.Request().Context(), filter, bindOrdering(ctx), bindPage(ctx))
	if err != nil {
		return errors.Wrap(err, "searching hadiths")
	}
	return ctx.JSON(http.StatusOK, hs)
}

func (api *hadithAPI) retrieve(ctx echo.Context) error {
	h, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, h)
}

func (api *hadithAPI) bookmark(ctx echo.Context) error {
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return err
	}
	h, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	bookmarked, err := api.activitySvc.ToggleBookmark(ctx.Request().Context(), usr.ID, activity.TargetHadith, h.ID)
	if err != nil {
		return errors.Wrap(err, "toggling bookmark")
	}
	return ctx.JSON(http.StatusOK, BookmarkResponse{Bookmarked: bookmarked})
}

func (api *hadithAPI) create(ctx echo.Context) error {
	var data hadith.NewHadith
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewHadith")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	h, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating hadith")
	}
	return ctx.JSON(http.StatusCreated, h)
}

type importResponse struct {
	Imported int `json:"imported"`
}

func (api *hadithAPI) importMany(ctx echo.Context) error {
	var data []hadith.NewHadith
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to []NewHadith")
	}

	n, err := api.svc.Import(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, importResponse{Imported: n})
}

func (api *hadithAPI) update(ctx echo.Context) error {
	var data hadith.UpdateHadith
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateHadith")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	h, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating hadith")
	}
	return ctx.JSON(http.StatusOK, h)
}

func (api *hadithAPI) destroy(ctx echo.Context) error {
	id := ctx.Param("id")
	if _, err := api.svc.Get(ctx.Request().Context(), id); err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting hadith")
	}
	return ctx.NoContent(http.StatusNoContent)
}
