package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/raid-scout/backend/internal/admin"
	"github.com/raid-scout/backend/pkg/response"
)

// ContextSession is the gin context key holding the validated admin session.
const ContextSession = "admin_session"

// AdminSession returns a middleware that requires a valid admin session
// cookie: 401 when none is presented, 403 when it is unknown or expired.
func AdminSession(authority *admin.Authority) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(admin.SessionCookie)
		session, err := authority.Validate(c.Request.Context(), token)
		if err != nil {
			response.AbortError(c, err)
			return
		}
		c.Set(ContextSession, session)
		c.Next()
	}
}
