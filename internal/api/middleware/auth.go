package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/tasktracker/task-api/internal/core/ports"
)

// Context keys set by Auth for downstream handlers.
const (
	CtxAccountID = "account_id"
	CtxEmail     = "email"
)

// Auth admits requests whose Authorization header carries a valid token and
// injects the account identity into the context. The header holds the raw
// token; a "Bearer " prefix is accepted too.
func Auth(authorizer ports.Authorizer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := TokenFromHeader(c.Request().Header.Get(echo.HeaderAuthorization))

			claims, err := authorizer.Authorize(c.Request().Context(), token)
			if err != nil {
				return err
			}

			c.Set(CtxAccountID, claims.AccountID)
			c.Set(CtxEmail, claims.Email)

			return next(c)
		}
	}
}

// TokenFromHeader strips an optional case-insensitive "Bearer " scheme.
func TokenFromHeader(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}
