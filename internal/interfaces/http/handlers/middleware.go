package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/driftchat/driftchat/internal/infrastructure/cache"
)

// SessionCookie is the name of the browser cookie carrying the opaque
// session token.
const SessionCookie = "session"

// AuthRequired resolves the session cookie to a user id and stores it in
// the request context. Requests without a valid session get a 401.
func AuthRequired(sessions *cache.SessionStore, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		uid, err := sessions.Resolve(c.Request.Context(), token)
		if err != nil {
			logger.Error("Session lookup failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		if uid == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set(ContextUserID, uid)
		c.Next()
	}
}
