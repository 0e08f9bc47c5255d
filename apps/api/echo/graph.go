package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ilmhub/ilm/core/graph"
)

func registerGraphAPI(g *echo.Group, mw middlewares, svc graph.Service) {
	g.GET("/knowledge-graph", func(ctx echo.Context) error {
		gr, err := svc.Get(ctx.Request().Context(), ctx.QueryParam("category"))
		if err != nil {
			return errors.Wrap(err, "building knowledge graph")
		}
		return ctx.JSON(http.StatusOK, gr)
	}, mw.limiter)
}
