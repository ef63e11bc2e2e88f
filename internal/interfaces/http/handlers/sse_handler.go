package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/driftchat/driftchat/internal/sse"
)

const keepAliveInterval = 15 * time.Second

// SSEHandler streams hub events to one browser tab per connection.
type SSEHandler struct {
	hub    *sse.Hub
	logger *zap.Logger
}

func NewSSEHandler(hub *sse.Hub, logger *zap.Logger) *SSEHandler {
	return &SSEHandler{
		hub:    hub,
		logger: logger.With(zap.String("handler", "sse")),
	}
}

// Stream handles GET /api/sse. The connection first replays any backlog for
// streams still in flight, then forwards live events until the client
// disconnects.
func (h *SSEHandler) Stream(c *gin.Context) {
	uid := userID(c)

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming unsupported"})
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)

	clientID, events, backlog := h.hub.AddClient(uid)
	defer h.hub.RemoveClient(uid, clientID)

	for _, ev := range backlog {
		h.write(c, ev)
	}
	flusher.Flush()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			h.write(c, ev)
			flusher.Flush()
		case <-keepAlive.C:
			fmt.Fprint(c.Writer, ": keepalive\n\n")
			flusher.Flush()
		}
	}
}

func (h *SSEHandler) write(c *gin.Context, ev sse.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("Event marshal failed", zap.Error(err))
		return
	}
	fmt.Fprintf(c.Writer, "data: %s\n\n", data)
}
