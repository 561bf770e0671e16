package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/support-qa/backend/internal/db"
	"github.com/support-qa/backend/internal/export"
	"github.com/support-qa/backend/internal/models"
	"github.com/support-qa/backend/internal/service"
)

// resolveEvaluationFilter turns the query string into a store filter. The
// second return reports whether the subject resolved to an empty team; the
// caller must then answer with zero rows without querying, since an empty
// in-set filter is ambiguous downstream.
func (h *Handler) resolveEvaluationFilter(c *gin.Context, roster []models.User) (db.EvaluationFilter, bool, error) {
	f := db.EvaluationFilter{
		TicketID:   strings.TrimSpace(c.Query("ticketId")),
		ScoreRange: c.Query("scoreRange"),
		SortBy:     c.DefaultQuery("sortBy", "created_at"),
		Order:      c.DefaultQuery("order", "desc"),
	}

	agentID := c.Query("agent")
	tlID := c.Query("tl")
	ids, err := service.ResolveAgents(agentID, tlID, roster)
	if err != nil {
		return f, false, err
	}
	if tlID != "" && agentID == "" && len(ids) == 0 {
		return f, true, nil
	}
	f.AgentIDs = ids

	// An unparsable date means "filter omitted", never a failure.
	if start, ok := service.DayStart(c.Query("startDate"), h.TZOffsetHours); ok {
		f.Start = &start
	}
	if end, ok := service.DayEnd(c.Query("endDate"), h.TZOffsetHours); ok {
		f.End = &end
	}
	return f, false, nil
}

// @Summary List evaluations
// @Description Filter evaluations by agent/team leader, date range, ticket and score bucket
// @Tags evaluations
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/evaluations [get]
func (h *Handler) EvaluationsList(c *gin.Context) {
	roster, err := h.Store.ListActiveUsers(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load users", err.Error())
		return
	}

	filter, emptyTeam, err := h.resolveEvaluationFilter(c, roster)
	if err != nil {
		if errors.Is(err, service.ErrHierarchyMismatch) {
			writeError(c, http.StatusBadRequest, "HIERARCHY_MISMATCH", "Selected agent does not report to the selected team leader", nil)
			return
		}
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid filters", err.Error())
		return
	}
	if emptyTeam {
		c.JSON(http.StatusOK, gin.H{"items": []models.EvaluationWithAgent{}})
		return
	}

	items, err := h.Store.ListEvaluations(c.Request.Context(), filter)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list evaluations", err.Error())
		return
	}
	if items == nil {
		items = []models.EvaluationWithAgent{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type CreateEvaluationRequest struct {
	TicketID    string   `json:"ticket_id" validate:"required"`
	AgentID     string   `json:"agent_id" validate:"required"`
	ManualScore *float64 `json:"manual_score" validate:"omitempty,gte=1,lte=5"`
	AIScore     *float64 `json:"ai_score" validate:"omitempty,gte=1,lte=5"`
	KPICategory []string `json:"qa_kpi_category"`
	Notes       *string  `json:"notes"`
}

// @Summary Record evaluation
// @Description Store a ticket evaluation; accuracy is derived from the manual/AI score pair
// @Tags evaluations
// @Accept json
// @Produce json
// @Success 201 {object} models.Evaluation
// @Failure 400 {object} map[string]any
// @Router /api/evaluations [post]
func (h *Handler) EvaluationCreate(c *gin.Context) {
	var req CreateEvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	eval := models.Evaluation{
		ID:          uuid.NewString(),
		TicketID:    req.TicketID,
		AgentID:     req.AgentID,
		ManualScore: req.ManualScore,
		AIScore:     req.AIScore,
		KPICategory: req.KPICategory,
		Notes:       req.Notes,
	}
	if pct := service.AccuracyPercent(req.ManualScore, req.AIScore); pct != nil {
		frac := service.FractionFromPercent(*pct)
		eval.Accuracy = &frac
	}

	if err := h.Store.InsertEvaluation(c.Request.Context(), eval); err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to save evaluation", err.Error())
		return
	}
	c.JSON(http.StatusCreated, eval)
}

// EvaluationsExport streams the filtered evaluations as a spreadsheet.
func (h *Handler) EvaluationsExport(c *gin.Context) {
	roster, err := h.Store.ListActiveUsers(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load users", err.Error())
		return
	}

	filter, emptyTeam, err := h.resolveEvaluationFilter(c, roster)
	if err != nil {
		if errors.Is(err, service.ErrHierarchyMismatch) {
			writeError(c, http.StatusBadRequest, "HIERARCHY_MISMATCH", "Selected agent does not report to the selected team leader", nil)
			return
		}
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid filters", err.Error())
		return
	}

	var items []models.EvaluationWithAgent
	if !emptyTeam {
		items, err = h.Store.ListEvaluations(c.Request.Context(), filter)
		if err != nil {
			writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list evaluations", err.Error())
			return
		}
	}

	wb, err := export.Workbook(items)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "EXPORT_ERROR", "Failed to build spreadsheet", err.Error())
		return
	}

	var agentName string
	if agentID := c.Query("agent"); agentID != "" {
		for _, u := range roster {
			if u.ID == agentID {
				agentName = u.Name
				break
			}
		}
	}

	c.Header("Content-Disposition", `attachment; filename="`+export.Filename(filter, agentName)+`"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := wb.Write(c.Writer); err != nil {
		h.Logger.Error().Err(err).Msg("failed to stream export")
	}
}
