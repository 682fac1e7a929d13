package middleware

import (
	"errors"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/moneykrishna/taskdesk/internal/api/metrics"
	"github.com/moneykrishna/taskdesk/internal/core/domain"
	"github.com/moneykrishna/taskdesk/internal/core/ports"
)

// Session restores the client's session, refreshing an expired access token
// first, and binds the token to the request context for backend calls.
// Requests without a session pass through unauthenticated.
func Session(sessions ports.SessionService, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			clientID := ClientIDFrom(c)
			if clientID == "" {
				return next(c)
			}
			ctx := c.Request().Context()

			sess, err := sessions.Current(ctx, clientID)
			if err != nil {
				if !errors.Is(err, domain.ErrNoSession) {
					return err
				}
				return next(c)
			}

			if sess.AccessExpired(time.Now()) && sess.CanRefresh() {
				refreshed, rerr := sessions.Refresh(ctx, clientID)
				switch {
				case rerr == nil:
					metrics.SessionEventsTotal.WithLabelValues("refresh").Inc()
					sess = refreshed
				case errors.Is(rerr, domain.ErrNoSession):
					metrics.SessionEventsTotal.WithLabelValues("refresh_failed").Inc()
					return next(c)
				default:
					// Keep the expired token; the backend answers for it.
					metrics.SessionEventsTotal.WithLabelValues("refresh_failed").Inc()
					log.Warn().Err(rerr).Str("client_id", clientID).Msg("token refresh failed")
				}
			}

			c.Set(keySession, sess)
			c.SetRequest(c.Request().WithContext(ports.WithAccessToken(ctx, sess.AccessToken())))
			return next(c)
		}
	}
}

// SessionFrom returns the session set by Session, or nil.
func SessionFrom(c echo.Context) *domain.Session {
	s, _ := c.Get(keySession).(*domain.Session)
	return s
}
