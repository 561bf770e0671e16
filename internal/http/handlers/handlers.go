package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/support-qa/backend/internal/auth"
	"github.com/support-qa/backend/internal/db"
	"github.com/support-qa/backend/internal/sentiment"
)

type Handler struct {
	Store     *db.Store
	Sentiment sentiment.Adapter
	Auth      *auth.Service
	Validator *validator.Validate
	Logger    zerolog.Logger
	// Hours east of UTC for interpreting calendar-date filters.
	TZOffsetHours int
}

func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		writeError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// @Summary Log in
// @Description Exchange email/password for a session token
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 401 {object} map[string]any
// @Router /api/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	accountID, hash, err := h.Store.GetAccountByEmail(c.Request.Context(), req.Email)
	if err != nil || !auth.CheckPassword(hash, req.Password) {
		writeError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid email or password", nil)
		return
	}

	user, err := h.Store.GetUser(c.Request.Context(), accountID)
	if err != nil {
		writeError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid email or password", nil)
		return
	}
	if !user.IsActive {
		writeError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Account is deactivated", nil)
		return
	}

	token, err := h.Auth.IssueToken(user)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "TOKEN_ERROR", "Failed to issue session", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
