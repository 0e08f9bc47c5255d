package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ilmhub/ilm/core/quiz"
)

type quizAPI struct {
	svc      quiz.Service
	auth     *authenticator
	validate *validator.Validate
}

func registerQuizAPI(g *echo.Group, mw middlewares, svc quiz.Service, validate *validator.Validate) {
	api := quizAPI{svc: svc, auth: mw.auth, validate: validate}

	qg := g.Group("/quizzes")
	qg.GET("", api.query, mw.optionalJWT)
	qg.GET("/:id", api.retrieve, mw.optionalJWT)
	qg.POST("/:id/submit", api.submit, mw.member()...)

	qg.POST("", api.create, mw.admin()...)
	qg.PUT("/:id", api.update, mw.admin()...)
	qg.DELETE("/:id", api.destroy, mw.admin()...)
	qg.POST("/:id/questions", api.addQuestion, mw.admin()...)
	qg.PUT("/:id/questions/:qid", api.updateQuestion, mw.admin()...)
	qg.DELETE("/:id/questions/:qid", api.deleteQuestion, mw.admin()...)
}

func (api *quizAPI) query(ctx echo.Context) error {
	viewer, err := api.auth.viewer(ctx)
	if err != nil {
		return err
	}
	filter := &quiz.QueryFilter{
		Search:     ctx.QueryParam("search"),
		Category:   ctx.QueryParam("category"),
		Difficulty: ctx.QueryParam("difficulty"),
		Published:  queryBool(ctx, "is_published"),
	}
	quizzes, err := api.svc.Query(ctx.Request().Context(), filter, viewer, bindOrdering(ctx), bindPage(ctx))
	if err != nil {
		return errors.Wrap(err, "querying quizzes")
	}
	return ctx.JSON(http.StatusOK, quizzes)
}

func (api *quizAPI) retrieve(ctx echo.Context) error {
	viewer, err := api.auth.viewer(ctx)
	if err != nil {
		return err
	}
	q, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"), viewer)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, q)
}

func (api *quizAPI) submit(ctx echo.Context) error {
	var data SubmitQuizRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SubmitQuizRequest")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return err
	}

	res, err := api.svc.Submit(ctx.Request().Context(), ctx.Param("id"), data.Answers, usr)
	if err != nil {
		return errors.Wrap(err, "submitting quiz")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *quizAPI) create(ctx echo.Context) error {
	var data quiz.NewQuiz
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewQuiz")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return err
	}

	q, err := api.svc.Create(ctx.Request().Context(), data, usr)
	if err != nil {
		return errors.Wrap(err, "creating quiz")
	}
	return ctx.JSON(http.StatusCreated, q)
}

func (api *quizAPI) update(ctx echo.Context) error {
	var data quiz.UpdateQuiz
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateQuiz")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	q, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating quiz")
	}
	return ctx.JSON(http.StatusOK, q)
}

func (api *quizAPI) destroy(ctx echo.Context) error {
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return err
	}
	if _, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"), &usr); err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting quiz")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *quizAPI) addQuestion(ctx echo.Context) error {
	var data quiz.NewQuestion
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewQuestion")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	qu, err := api.svc.AddQuestion(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "adding question")
	}
	return ctx.JSON(http.StatusCreated, qu)
}

func (api *quizAPI) updateQuestion(ctx echo.Context) error {
	var data quiz.NewQuestion
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewQuestion")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	qu, err := api.svc.UpdateQuestion(ctx.Request().Context(), ctx.Param("id"), ctx.Param("qid"), data)
	if err != nil {
		return errors.Wrap(err, "updating question")
	}
	return ctx.JSON(http.StatusOK, qu)
}

func (api *quizAPI) deleteQuestion(ctx echo.Context) error {
	if err := api.svc.DeleteQuestion(ctx.Request().Context(), ctx.Param("id"), ctx.Param("qid")); err != nil {
		return errors.Wrap(err, "deleting question")
	}
	return ctx.NoContent(http.StatusNoContent)
}
