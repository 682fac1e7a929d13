package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/moneykrishna/taskdesk/internal/api/metrics"
	"github.com/moneykrishna/taskdesk/internal/core/domain"
	"github.com/moneykrishna/taskdesk/internal/core/ports"
)

type AuthHandler struct {
	sessions ports.SessionService
}

func NewAuthHandler(sessions ports.SessionService) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

// Login authenticates against the backend and starts a session for this client.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  sessionResponse
// @Failure      401   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	clientID, err := ctxClient(c)
	if err != nil {
		return err
	}
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	res, err := h.sessions.Login(c.Request().Context(), clientID, ports.Credentials{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	metrics.SessionEventsTotal.WithLabelValues("login").Inc()
	return c.JSON(http.StatusOK, newSessionResponse(res.Session))
}

// Signup registers an account and logs it in.
//
// @Summary      Sign up
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "Registration details"
// @Success      201   {object}  sessionResponse
// @Failure      422   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	clientID, err := ctxClient(c)
	if err != nil {
		return err
	}
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	res, err := h.sessions.Signup(c.Request().Context(), clientID, ports.SignupInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		Password2: req.Password2,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		UserType:  req.UserType,
	})
	if err != nil {
		return err
	}
	metrics.SessionEventsTotal.WithLabelValues("signup").Inc()
	return c.JSON(http.StatusCreated, newSessionResponse(res.Session))
}

// Logout clears the session and all client state.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  redirectResponse
// @Router       /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	clientID, err := ctxClient(c)
	if err != nil {
		return err
	}
	if err := h.sessions.Logout(c.Request().Context(), clientID); err != nil {
		return err
	}
	metrics.SessionEventsTotal.WithLabelValues("logout").Inc()
	return c.JSON(http.StatusOK, redirectResponse{Redirect: domain.LoginPath})
}

// Session reports who is logged in on this client.
//
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Failure      401  {object}  map[string]string
// @Router       /session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newSessionResponse(s))
}
