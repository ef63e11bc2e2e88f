package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/driftchat/driftchat/internal/replicache"
)

// ReplicacheHandler exposes the sync protocol endpoints.
type ReplicacheHandler struct {
	puller *replicache.Puller
	pusher *replicache.Pusher
	logger *zap.Logger
}

func NewReplicacheHandler(puller *replicache.Puller, pusher *replicache.Pusher, logger *zap.Logger) *ReplicacheHandler {
	return &ReplicacheHandler{
		puller: puller,
		pusher: pusher,
		logger: logger.With(zap.String("handler", "replicache")),
	}
}

// Pull handles POST /api/replicache/pull.
func (h *ReplicacheHandler) Pull(c *gin.Context) {
	var req replicache.PullRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.ClientGroupID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "clientGroupID is required"})
		return
	}

	resp, err := h.puller.Pull(c.Request.Context(), userID(c), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Push handles POST /api/replicache/push.
func (h *ReplicacheHandler) Push(c *gin.Context) {
	var req replicache.PushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.ClientGroupID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "clientGroupID is required"})
		return
	}

	resp, err := h.pusher.Push(c.Request.Context(), userID(c), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
