package echoapi

import (
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ilmhub/ilm/core"
)

const orderingParam = "ordering"

type (
	LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}

	TransitionRequest struct {
		Notes string `json:"notes"`
	}

	BookmarkResponse struct {
		Bookmarked bool `json:"bookmarked"`
	}

	SubmitQuizRequest struct {
		// Answers maps question ids to the chosen option index.
		Answers map[string]int `json:"answers" validate:"required"`
	}
)

func bindOrdering(ctx echo.Context) []core.DBOrdering {
	return core.ParseOrderings(ctx.QueryParam(orderingParam))
}

func bindPage(ctx echo.Context) core.Page {
	return core.ParsePage(ctx.QueryParams())
}

// queryBool returns nil when the parameter is missing or not a boolean.
func queryBool(ctx echo.Context, name string) *bool {
	v, err := strconv.ParseBool(ctx.QueryParam(name))
	if err != nil {
		return nil
	}
	return &v
}

// queryTime accepts RFC 3339 timestamps and YYYY-MM-DD days.
func queryTime(ctx echo.Context, name string) (time.Time, error) {
	val := strings.TrimSpace(ctx.QueryParam(name))
	if val == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", val)
	if err != nil {
		return time.Time{}, core.NewValidationError(err, core.FieldError{Field: name, Error: "invalid date"})
	}
	return t, nil
}

func queryInt(ctx echo.Context, name string, def int) int {
	n, err := strconv.Atoi(ctx.QueryParam(name))
	if err != nil {
		return def
	}
	return n
}
