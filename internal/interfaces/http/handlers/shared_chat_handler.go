package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/driftchat/driftchat/internal/domain/dto"
	"github.com/driftchat/driftchat/internal/domain/service"
	"github.com/driftchat/driftchat/internal/infrastructure/persistence/models"
)

// SharedChatHandler publishes and serves public chat snapshots.
type SharedChatHandler struct {
	db     *gorm.DB
	shared *service.SharedChatService
	logger *zap.Logger
}

func NewSharedChatHandler(db *gorm.DB, shared *service.SharedChatService, logger *zap.Logger) *SharedChatHandler {
	return &SharedChatHandler{
		db:     db,
		shared: shared,
		logger: logger.With(zap.String("handler", "shared_chat")),
	}
}

// Share handles POST /api/chats/:chatId/share.
func (h *SharedChatHandler) Share(c *gin.Context) {
	chatID := c.Param("chatId")

	var snapshot *models.SharedChat
	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var err error
		snapshot, err = h.shared.Share(tx, userID(c), chatID)
		return err
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.Info("Chat shared",
		zap.String("chat_id", chatID),
		zap.String("shared_id", snapshot.ID))
	c.JSON(http.StatusCreated, dto.SharedChatFromModel(snapshot))
}

// Get handles GET /api/shared/:id. Unauthenticated: the snapshot id is the
// only credential.
func (h *SharedChatHandler) Get(c *gin.Context) {
	var out *dto.SharedChatWithMessages
	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var err error
		out, err = h.shared.Get(tx, c.Param("id"))
		return err
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// Delete handles DELETE /api/shared/:id.
func (h *SharedChatHandler) Delete(c *gin.Context) {
	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		return h.shared.Unshare(tx, userID(c), c.Param("id"))
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
