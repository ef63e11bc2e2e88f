package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/driftchat/driftchat/pkg/errors"
)

// ContextUserID is the gin context key under which the auth middleware
// stores the authenticated user's id.
const ContextUserID = "userID"

func userID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

// respondError maps application errors to HTTP statuses. Internal causes are
// logged but never leaked to the client.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case apperrors.IsUnauthorized(err):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case apperrors.IsForbidden(err):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case apperrors.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case apperrors.IsInvalidInput(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case apperrors.IsConflict(err):
		c.JSON(http.StatusConflict, gin.H{"error": "conflict"})
	default:
		logger.Error("Request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
