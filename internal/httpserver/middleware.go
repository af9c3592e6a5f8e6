package httpserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"cartsync/internal/session"
)

type ctxKey string

const sessionCtxKey ctxKey = "session"

// sessionMiddleware validates the bearer token and places the resolved
// Session in the request context. Every cart route runs behind it.
func sessionMiddleware(sessions SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const prefix = "Bearer "
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, prefix) {
			respondError(c, http.StatusUnauthorized, "missing bearer token")
			c.Abort()
			return
		}
		sess, err := sessions.Validate(strings.TrimSpace(header[len(prefix):]))
		if err != nil {
			respondError(c, http.StatusUnauthorized, "invalid session token")
			c.Abort()
			return
		}
		ctx := context.WithValue(c.Request.Context(), sessionCtxKey, sess)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func sessionFrom(c *gin.Context) (session.Session, bool) {
	sess, ok := c.Request.Context().Value(sessionCtxKey).(session.Session)
	return sess, ok
}
