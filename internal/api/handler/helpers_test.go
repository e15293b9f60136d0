package handler

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/tasktracker/task-api/internal/api/httperr"
	"github.com/tasktracker/task-api/internal/api/middleware"
)

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	e.HTTPErrorHandler = httperr.NewHTTPErrorHandler(zerolog.Nop())
	return e
}

// call runs h on a fresh context and renders any returned error the way the
// router would.
func call(e *echo.Echo, method, target string, body io.Reader, h echo.HandlerFunc, setup func(echo.Context)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if setup != nil {
		setup(c)
	}
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) httperr.Body {
	t.Helper()
	var resp httperr.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v (%s)", err, rec.Body.String())
	}
	return resp.Error
}

func authenticated(id int64, email string) func(echo.Context) {
	return func(c echo.Context) {
		c.Set(middleware.CtxAccountID, id)
		c.Set(middleware.CtxEmail, email)
	}
}
