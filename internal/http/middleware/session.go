// README: Anonymous browsing session carried in a cookie; bookings are scoped to it.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	SessionCookie = "rental_sid"
	sessionKey    = "session_id"
)

// Session makes sure every request has a session id, issuing a cookie when
// the client has none (or sends one that is not a uuid).
func Session(maxAgeSeconds int, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(SessionCookie)
		if err != nil || uuid.Validate(sid) != nil {
			sid = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookie, sid, maxAgeSeconds, "/", "", secure, true)
		}
		c.Set(sessionKey, sid)
		c.Next()
	}
}

func GetSessionID(c *gin.Context) string {
	return c.GetString(sessionKey)
}
