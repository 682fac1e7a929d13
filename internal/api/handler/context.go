package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/moneykrishna/taskdesk/internal/api/middleware"
	"github.com/moneykrishna/taskdesk/internal/core/domain"
)

// ctxClient returns the client id set by the ClientID middleware. A missing
// id means the middleware chain is misconfigured.
func ctxClient(c echo.Context) (string, error) {
	id := middleware.ClientIDFrom(c)
	if id == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "missing client identity")
	}
	return id, nil
}

// ctxSession returns the session restored by the Session middleware, or
// domain.ErrNoSession.
func ctxSession(c echo.Context) (*domain.Session, error) {
	s := middleware.SessionFrom(c)
	if s == nil {
		return nil, domain.ErrNoSession
	}
	return s, nil
}

// pathID parses a positive integer path parameter.
func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

// bindAndValidate decodes the request body and runs the registered validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return c.Validate(req)
}
