package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/driftchat/driftchat/internal/domain/dto"
	"github.com/driftchat/driftchat/internal/infrastructure/cache"
	"github.com/driftchat/driftchat/internal/infrastructure/persistence"
	"github.com/driftchat/driftchat/internal/infrastructure/persistence/models"
	apperrors "github.com/driftchat/driftchat/pkg/errors"
)

// Session cookies live as long as the redis session entry.
const sessionCookieMaxAge = 30 * 24 * 60 * 60

// AuthHandler implements cookie-session registration, login and logout.
type AuthHandler struct {
	db       *gorm.DB
	users    persistence.UserRepository
	sessions *cache.SessionStore
	logger   *zap.Logger
}

func NewAuthHandler(db *gorm.DB, sessions *cache.SessionStore, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		db:       db,
		sessions: sessions,
		logger:   logger.With(zap.String("handler", "auth")),
	}
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Password) < 8 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password must be at least 8 characters"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: string(hash),
	}
	err = h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		return h.users.Create(tx, user)
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if err := h.startSession(c, user.ID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.Info("User registered", zap.String("user_id", user.ID))
	c.JSON(http.StatusCreated, dto.UserFromModel(user))
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user *models.User
	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var err error
		user, err = h.users.FindByEmail(tx, req.Email)
		return err
	})
	if err != nil {
		// A wrong email and a wrong password are indistinguishable.
		if apperrors.IsNotFound(err) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		respondError(c, h.logger, err)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	if err := h.startSession(c, user.ID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.UserFromModel(user))
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(SessionCookie); err == nil && token != "" {
		if err := h.sessions.Delete(c.Request.Context(), token); err != nil {
			h.logger.Warn("Session delete failed", zap.Error(err))
		}
	}
	c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
	c.Status(http.StatusNoContent)
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	var user *models.User
	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var err error
		user, err = h.users.FindByID(tx, userID(c))
		return err
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.UserFromModel(user))
}

func (h *AuthHandler) startSession(c *gin.Context, uid string) error {
	token, err := h.sessions.Create(c.Request.Context(), uid)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, sessionCookieMaxAge, "/", "", false, true)
	return nil
}
