package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/support-qa/backend/internal/auth"
	"github.com/support-qa/backend/internal/models"
)

func (h *Handler) UsersList(c *gin.Context) {
	var (
		users []models.User
		err   error
	)
	if c.Query("include_inactive") == "1" {
		users, err = h.Store.ListUsers(c.Request.Context())
	} else {
		users, err = h.Store.ListActiveUsers(c.Request.Context())
	}
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list users", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": users})
}

type CreateUserRequest struct {
	Name         string  `json:"name" validate:"required"`
	Email        string  `json:"email" validate:"required,email"`
	Password     string  `json:"password" validate:"required,min=8"`
	Role         string  `json:"role" validate:"required,oneof=agent team_leader"`
	TeamLeaderID *string `json:"team_leader_id"`
}

// @Summary Create user
// @Description Create credentials and a dashboard profile for an agent or team leader
// @Tags users
// @Accept json
// @Produce json
// @Success 201 {object} models.User
// @Failure 400 {object} map[string]any
// @Router /api/users [post]
func (h *Handler) UserCreate(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	tlID, err := h.resolveTeamLeaderRef(c, req.Role, req.TeamLeaderID)
	if err != nil {
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "HASH_ERROR", "Failed to hash password", err.Error())
		return
	}

	user := models.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        strings.ToLower(req.Email),
		Role:         req.Role,
		TeamLeaderID: tlID,
		IsActive:     true,
	}

	// Credentials first, then the profile row. When the profile insert fails
	// the credential is removed again, best effort.
	if err := h.Store.CreateAccount(c.Request.Context(), user.ID, user.Email, hash); err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to create credentials", err.Error())
		return
	}
	if err := h.Store.InsertUser(c.Request.Context(), user); err != nil {
		if delErr := h.Store.DeleteAccount(c.Request.Context(), user.ID); delErr != nil {
			h.Logger.Error().Err(delErr).Str("account_id", user.ID).Msg("failed to clean up orphaned account")
		}
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to save user", err.Error())
		return
	}
	c.JSON(http.StatusCreated, user)
}

type UpdateUserRequest struct {
	Name         string  `json:"name" validate:"required"`
	Role         string  `json:"role" validate:"required,oneof=agent team_leader"`
	TeamLeaderID *string `json:"team_leader_id"`
}

func (h *Handler) UserUpdate(c *gin.Context) {
	id := c.Param("id")
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	tlID, err := h.resolveTeamLeaderRef(c, req.Role, req.TeamLeaderID)
	if err != nil {
		return
	}

	if err := h.Store.UpdateUser(c.Request.Context(), id, req.Name, req.Role, tlID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "User not found", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to update user", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type SetStatusRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// UserSetStatus soft-toggles the lifecycle flag; user rows are never deleted.
func (h *Handler) UserSetStatus(c *gin.Context) {
	id := c.Param("id")
	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	if err := h.Store.SetUserActive(c.Request.Context(), id, *req.IsActive); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "User not found", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to update status", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "is_active": *req.IsActive})
}

// resolveTeamLeaderRef enforces the roster invariant: an agent must reference
// an active team leader, a team leader never carries a reference. Writes the
// error response itself and returns a non-nil error to stop the caller.
func (h *Handler) resolveTeamLeaderRef(c *gin.Context, role string, tlID *string) (*string, error) {
	if role != models.RoleAgent {
		return nil, nil
	}
	if tlID == nil || *tlID == "" {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Team leader is required for agents", nil)
		return nil, errors.New("missing team leader")
	}
	tl, err := h.Store.GetUser(c.Request.Context(), *tlID)
	if err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Team leader not found", nil)
		return nil, err
	}
	if tl.Role != models.RoleTeamLeader {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Referenced user is not a team leader", nil)
		return nil, errors.New("not a team leader")
	}
	return tlID, nil
}
