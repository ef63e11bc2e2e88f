package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/driftchat/driftchat/internal/domain/dto"
	"github.com/driftchat/driftchat/internal/domain/service"
	"github.com/driftchat/driftchat/internal/infrastructure/persistence/models"
)

// ApiKeyHandler manages stored provider credentials. Responses never carry
// key material.
type ApiKeyHandler struct {
	db      *gorm.DB
	apiKeys *service.ApiKeyService
	logger  *zap.Logger
}

func NewApiKeyHandler(db *gorm.DB, apiKeys *service.ApiKeyService, logger *zap.Logger) *ApiKeyHandler {
	return &ApiKeyHandler{
		db:      db,
		apiKeys: apiKeys,
		logger:  logger.With(zap.String("handler", "api_key")),
	}
}

type createApiKeyRequest struct {
	Provider string `json:"provider" binding:"required"`
	Key      string `json:"key" binding:"required"`
}

// Create handles POST /api/api-keys.
func (h *ApiKeyHandler) Create(c *gin.Context) {
	var req createApiKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var key *models.ApiKey
	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var err error
		key, err = h.apiKeys.Create(tx, userID(c), req.Provider, req.Key)
		return err
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ApiKeyFromModel(key))
}

// List handles GET /api/api-keys.
func (h *ApiKeyHandler) List(c *gin.Context) {
	var keys []models.ApiKey
	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var err error
		keys, err = h.apiKeys.List(tx, userID(c))
		return err
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	out := make([]dto.ApiKey, 0, len(keys))
	for i := range keys {
		out = append(out, dto.ApiKeyFromModel(&keys[i]))
	}
	c.JSON(http.StatusOK, out)
}

// Delete handles DELETE /api/api-keys/:id.
func (h *ApiKeyHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid key id"})
		return
	}

	err = h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		return h.apiKeys.Delete(tx, uint(id), userID(c))
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
