package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/moneykrishna/taskdesk/internal/api/metrics"
	"github.com/moneykrishna/taskdesk/internal/core/domain"
	"github.com/moneykrishna/taskdesk/internal/core/service"
)

// RequireRole admits only sessions allowed into the role's section. Everyone
// else is sent elsewhere with 303 See Other before any handler runs.
func RequireRole(role domain.Role, log zerolog.Logger) echo.MiddlewareFunc {
	section := string(role)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			d := service.Decide(role, SessionFrom(c))
			if d.Allowed {
				metrics.GuardDecisionsTotal.WithLabelValues(section, "allowed").Inc()
				return next(c)
			}

			result := "home"
			if d.Redirect == domain.LoginPath {
				result = "login"
			}
			metrics.GuardDecisionsTotal.WithLabelValues(section, result).Inc()
			log.Debug().
				Str("client_id", ClientIDFrom(c)).
				Str("section", section).
				Str("redirect", d.Redirect).
				Str("reason", d.Reason).
				Msg("access denied")
			return c.Redirect(http.StatusSeeOther, d.Redirect)
		}
	}
}
