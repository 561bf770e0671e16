package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/support-qa/backend/internal/db"
	"github.com/support-qa/backend/internal/models"
	"github.com/support-qa/backend/internal/service"
)

// recentReviewsLimit caps the recent-reviews panel of the sentiment
// statistics dashboard.
const recentReviewsLimit = 5

// @Summary Aggregate metrics
// @Description Mean manual score, per-agent ranking and KPI adjustment frequency for an agent or a team leader's team
// @Tags metrics
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/metrics [get]
func (h *Handler) Metrics(c *gin.Context) {
	agentID := c.Query("agent")
	tlID := c.Query("tl")
	if agentID == "" && tlID == "" {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Select an agent or a team leader", nil)
		return
	}

	roster, err := h.Store.ListActiveUsers(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load users", err.Error())
		return
	}

	agentIDs, err := service.ResolveAgents(agentID, tlID, roster)
	if err != nil {
		if errors.Is(err, service.ErrHierarchyMismatch) {
			writeError(c, http.StatusBadRequest, "HIERARCHY_MISMATCH", "Selected agent does not report to the selected team leader", nil)
			return
		}
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid subject", err.Error())
		return
	}

	target := targetName(agentID, tlID, roster)

	// A team leader with no agents yields zero results without touching the
	// store; an empty in-set query is ambiguous.
	if len(agentIDs) == 0 {
		c.JSON(http.StatusOK, emptyMetricsResponse(target))
		return
	}

	var start, end *time.Time
	if s, ok := service.DayStart(c.Query("startDate"), h.TZOffsetHours); ok {
		start = &s
	}
	if e, ok := service.DayEnd(c.Query("endDate"), h.TZOffsetHours); ok {
		end = &e
	}

	evals, err := h.Store.ListEvaluationScores(c.Request.Context(), agentIDs, start, end)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load evaluations", err.Error())
		return
	}

	report := service.Aggregate(evals, roster)
	kpis := service.CountKPIs(evals).Sorted()

	resp := gin.H{
		"target":          target,
		"evaluations":     len(evals),
		"overall_average": report.OverallAverage,
		"scored":          report.Scored,
		"per_agent":       report.PerAgent,
		"kpi_frequency":   kpis,
	}
	// Manual scores render on a 0-5 dial; domain and gauge range coincide, so
	// the needle value is the average itself.
	if report.OverallAverage != nil {
		resp["gauge_value"] = *report.OverallAverage
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Sentiment statistics
// @Description Per-label counts and shares, mean confidence and the most recent processed reviews
// @Tags metrics
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/metrics/sentiment [get]
func (h *Handler) SentimentMetrics(c *gin.Context) {
	scores, err := h.Store.ListSentimentScores(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load sentiment results", err.Error())
		return
	}
	stats := service.AggregateSentiment(scores)

	processed := true
	recent, err := h.Store.ListReviews(c.Request.Context(), db.ReviewFilter{Processed: &processed, Limit: recentReviewsLimit})
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load recent reviews", err.Error())
		return
	}
	if recent == nil {
		recent = []models.ReviewWithSentiment{}
	}

	c.JSON(http.StatusOK, gin.H{
		"stats":          stats,
		"recent_reviews": recent,
	})
}

func emptyMetricsResponse(target string) gin.H {
	return gin.H{
		"target":          target,
		"evaluations":     0,
		"overall_average": nil,
		"scored":          0,
		"per_agent":       []service.AgentMetric{},
		"kpi_frequency":   []service.KPICount{},
	}
}

func targetName(agentID, tlID string, roster []models.User) string {
	lookup := func(id string) (string, bool) {
		for _, u := range roster {
			if u.ID == id {
				return u.Name, true
			}
		}
		return "", false
	}
	if agentID != "" {
		if name, ok := lookup(agentID); ok {
			return name
		}
		return "Agent " + agentID
	}
	if name, ok := lookup(tlID); ok {
		return "Team: " + name
	}
	return "Team leader " + tlID
}
