package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/tasktracker/task-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	log         zerolog.Logger
}

func NewAuthHandler(authService ports.AuthService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, log: log}
}

// Signup creates a new account.
//
// @Summary      Register a new account
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        body  body      credentialsRequest  true  "Email and password"
// @Success      201   {object}  accountResponse
// @Failure      400   {object}  httperr.Response
// @Failure      409   {object}  httperr.Response
// @Failure      500   {object}  httperr.Response
// @Router       /user/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	creds, err := bindCredentials(c)
	if err != nil {
		return err
	}

	account, err := h.authService.Register(c.Request().Context(), creds.Email, creds.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toAccountResponse(account))
}

// Login authenticates an account and returns a bearer token. It also serves
// /user/signin; both answer a uniform 401 on any credential failure.
//
// @Summary      Login
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        body  body      credentialsRequest  true  "Email and password"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  httperr.Response
// @Failure      401   {object}  httperr.Response
// @Failure      500   {object}  httperr.Response
// @Router       /user/login [post]
// @Router       /user/signin [post]
func (h *AuthHandler) Login(c echo.Context) error {
	creds, err := bindCredentials(c)
	if err != nil {
		return err
	}

	token, account, err := h.authService.Authenticate(c.Request().Context(), creds.Email, creds.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toSessionResponse(account, token))
}

// Logout acknowledges a logout. Tokens are stateless and stay valid until
// they expire.
//
// @Summary      Logout
// @Tags         user
// @Produce      json
// @Security     TokenAuth
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  httperr.Response
// @Router       /user/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	id, _, err := ctxAccount(c)
	if err != nil {
		return err
	}

	h.log.Info().Int64("account_id", id).Msg("logout")
	return c.JSON(http.StatusOK, messageResponse{Message: "logged out"})
}

func bindCredentials(c echo.Context) (*credentials, error) {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return nil, err
	}
	return req.User, nil
}
