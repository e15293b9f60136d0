package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tasktracker/task-api/internal/api/middleware"
)

// ctxAccount returns the identity the Auth middleware admitted. A missing id
// means the route was registered without the middleware.
func ctxAccount(c echo.Context) (id int64, email string, err error) {
	id, ok := c.Get(middleware.CtxAccountID).(int64)
	if !ok {
		return 0, "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	email, _ = c.Get(middleware.CtxEmail).(string)
	return id, email, nil
}
