package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ilmhub/ilm/core/forum"
)

type forumAPI struct {
	svc      forum.Service
	auth     *authenticator
	validate *validator.Validate
}

func registerForumAPI(g *echo.Group, mw middlewares, svc forum.Service, validate *validator.Validate) {
	api := forumAPI{svc: svc, auth: mw.auth, validate: validate}

	fg := g.Group("/forum/questions")
	fg.GET("", api.query)
	fg.GET("/:id", api.retrieve)
	fg.POST("", api.ask, mw.member()...)
	fg.POST("/:id/answers", api.answer, mw.member()...)
	fg.POST("/:id/answers/:aid/accept", api.accept, mw.member()...)
	fg.POST("/:id/close", api.close, mw.member()...)
	fg.DELETE("/:id", api.destroy, mw.admin()...)
}

func (api *forumAPI) query(ctx echo.Context) error {
	filter := &forum.QueryFilter{
		Search:   ctx.QueryParam("search"),
		Category: ctx.QueryParam("category"),
		Status:   ctx.QueryParam("status"),
		AuthorID: ctx.QueryParam("author"),
	}
	qs, err := api.svc.Query(ctx.Request().Context(), filter, bindOrdering(ctx), bindPage(ctx))
	if err != nil {
		return errors.Wrap(err, "querying questions")
	}
	return ctx.JSON(http.StatusOK, qs)
}

func (api *forumAPI) retrieve(ctx echo.Context) error {
	q, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, q)
}

func (api *forumAPI) ask(ctx echo.Context) error {
	var data forum.NewQuestion
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewQuestion")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return err
	}

	q, err := api.svc.Ask(ctx.Request().Context(), data, usr)
	if err != nil {
		return errors.Wrap(err, "asking question")
	}
	return ctx.JSON(http.StatusCreated, q)
}

func (api *forumAPI) answer(ctx echo.Context) error {
	var data forum.NewAnswer
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAnswer")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return err
	}

	a, err := api.svc.Answer(ctx.Request().Context(), ctx.Param("id"), data, usr)
	if err != nil {
		return errors.Wrap(err, "answering question")
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *forumAPI) accept(ctx echo.Context) error {
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return err
	}
	a, err := api.svc.Accept(ctx.Request().Context(), ctx.Param("id"), ctx.Param("aid"), usr)
	if err != nil {
		return errors.Wrap(err, "accepting answer")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *forumAPI) close(ctx echo.Context) error {
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return err
	}
	q, err := api.svc.Close(ctx.Request().Context(), ctx.Param("id"), usr)
	if err != nil {
		return errors.Wrap(err, "closing question")
	}
	return ctx.JSON(http.StatusOK, q)
}

func (api *forumAPI) destroy(ctx echo.Context) error {
	id := ctx.Param("id")
	if _, err := api.svc.Get(ctx.Request().Context(), id); err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting question")
	}
	return ctx.NoContent(http.StatusNoContent)
}
