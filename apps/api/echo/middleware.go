package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ilmhub/ilm/core/user"
)

// middlewares are shared by every API group.
type middlewares struct {
	jwt         echo.MiddlewareFunc // token required
	optionalJWT echo.MiddlewareFunc // token read when present
	limiter     echo.MiddlewareFunc
	auth        *authenticator
}

// adminMiddleware lets admins through, optionally only those holding one of roles.
func adminMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.IsAdmin && contextHasAnyRole(claims, roles) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

func contextHasAnyRole(claims Claims, roles []string) bool {
	if len(roles) == 0 {
		return true
	}
	for _, role := range roles {
		for _, has := range claims.Roles {
			if role == has {
				return true
			}
		}
	}
	return false
}

// requireUser loads the token's user into the context, rejecting deactivated accounts.
func (mw middlewares) requireUser(check ...func(user.User) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := mw.auth.contextUser(ctx)
			if err != nil {
				return err
			}
			for _, ok := range check {
				if !ok(usr) {
					return errHttpForbidden
				}
			}
			return next(ctx)
		}
	}
}

// admin chains token auth with the admin check.
func (mw middlewares) admin(roles ...string) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{mw.jwt, adminMiddleware(roles...)}
}

// member chains token auth with requireUser.
func (mw middlewares) member(check ...func(user.User) bool) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{mw.jwt, mw.requireUser(check...)}
}
