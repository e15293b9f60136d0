// Package httperr renders every API failure as the same JSON envelope.
package httperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/tasktracker/task-api/internal/core/domain"
)

// Response is the canonical error envelope: {"error":{"message":...,"status":...}}.
type Response struct {
	Error Body `json:"error"`
}

type Body struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// kinds maps each domain error kind to its HTTP status.
var kinds = []struct {
	kind error
	code int
}{
	{domain.ErrValidation, http.StatusBadRequest},
	{domain.ErrConflict, http.StatusConflict},
	{domain.ErrUnauthorized, http.StatusUnauthorized},
	{domain.ErrNotFound, http.StatusNotFound},
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - maps domain error kinds to HTTP status codes,
//   - logs store faults and unexpected errors without leaking them,
//   - renders Response for echo's own errors too.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := Resolve(err)
		if code >= http.StatusInternalServerError {
			log.Error().
				Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Msg("unhandled error")
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, Response{Error: Body{Message: msg, Status: code}})
	}
}

// Resolve picks the status code and client-facing message for err.
func Resolve(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Internal != nil && he.Code >= http.StatusInternalServerError {
			return he.Code, http.StatusText(he.Code)
		}
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	for _, k := range kinds {
		if errors.Is(err, k.kind) {
			return k.code, strings.TrimPrefix(err.Error(), k.kind.Error()+": ")
		}
	}

	return http.StatusInternalServerError, "internal server error"
}
