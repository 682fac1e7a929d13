package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	// ClientCookie identifies the browser whose state the server holds.
	ClientCookie = "taskdesk_client"

	clientCookieMaxAge = 365 * 24 * time.Hour

	keyClientID = "client_id"
	keySession  = "session"
)

// ClientID reads the client cookie, issuing a fresh UUID when it is missing
// or malformed, and stores the id in the echo context.
func ClientID(secure bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := ""
			if ck, err := c.Cookie(ClientCookie); err == nil {
				if parsed, err := uuid.Parse(ck.Value); err == nil {
					id = parsed.String()
				}
			}
			if id == "" {
				id = uuid.NewString()
				c.SetCookie(&http.Cookie{
					Name:     ClientCookie,
					Value:    id,
					Path:     "/",
					MaxAge:   int(clientCookieMaxAge.Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			c.Set(keyClientID, id)
			return next(c)
		}
	}
}

// ClientIDFrom returns the id set by ClientID, or "".
func ClientIDFrom(c echo.Context) string {
	id, _ := c.Get(keyClientID).(string)
	return id
}
