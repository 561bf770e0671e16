package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/support-qa/backend/internal/db"
	"github.com/support-qa/backend/internal/models"
	"github.com/support-qa/backend/internal/sentiment"
	"github.com/support-qa/backend/internal/service"
)

var reviewSources = map[string]bool{
	"email":          true,
	"contact_form":   true,
	"support_ticket": true,
	"review":         true,
	"social_media":   true,
	"other":          true,
}

func (h *Handler) ReviewsList(c *gin.Context) {
	f := db.ReviewFilter{
		Source:    c.Query("source"),
		Sentiment: c.Query("sentiment"),
		Search:    strings.TrimSpace(c.Query("q")),
	}
	if start, ok := service.DayStart(c.Query("startDate"), h.TZOffsetHours); ok {
		f.Start = &start
	}
	if end, ok := service.DayEnd(c.Query("endDate"), h.TZOffsetHours); ok {
		f.End = &end
	}
	if v := c.Query("processed"); v != "" {
		if processed, err := strconv.ParseBool(v); err == nil {
			f.Processed = &processed
		}
	}
	if v := c.Query("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil && limit > 0 {
			f.Limit = limit
		}
	}

	items, err := h.Store.ListReviews(c.Request.Context(), f)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list reviews", err.Error())
		return
	}
	if items == nil {
		items = []models.ReviewWithSentiment{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type CreateReviewRequest struct {
	Content     string  `json:"content" validate:"required"`
	Source      string  `json:"source" validate:"required"`
	ContactInfo *string `json:"contact_info"`
	// Analyze runs the sentiment model before saving, so the review lands
	// already processed with its result attached.
	Analyze bool `json:"analyze"`
}

// @Summary Record customer review
// @Tags reviews
// @Accept json
// @Produce json
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/reviews [post]
func (h *Handler) ReviewCreate(c *gin.Context) {
	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	if !reviewSources[req.Source] {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown review source", req.Source)
		return
	}

	review := models.CustomerReview{
		ID:          uuid.NewString(),
		Content:     req.Content,
		Source:      req.Source,
		ContactInfo: req.ContactInfo,
	}

	var result *models.SentimentResult
	if req.Analyze {
		res, err := h.Sentiment.Analyze(c.Request.Context(), req.Content)
		if err != nil {
			h.writeInferenceError(c, err)
			return
		}
		review.Processed = true
		result = sentimentRow(review.ID, res)
	}

	if err := h.Store.CreateReviewWithSentiment(c.Request.Context(), review, result); err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to save review", err.Error())
		return
	}

	resp := gin.H{"review": review}
	if result != nil {
		resp["sentiment"] = result
		resp["gauge_value"] = service.SentimentGauge(result.SentimentLabel, result.SentimentScore)
	}
	c.JSON(http.StatusCreated, resp)
}

type AnalyzeRequest struct {
	Text     string `json:"text" validate:"required"`
	ReviewID string `json:"review_id"`
}

// @Summary Analyze sentiment
// @Description Run the sentiment model over a text; with review_id the result is attached to the review
// @Tags sentiment
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 502 {object} map[string]any
// @Router /api/sentiment [post]
func (h *Handler) SentimentAnalyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	res, err := h.Sentiment.Analyze(c.Request.Context(), req.Text)
	if err != nil {
		h.writeInferenceError(c, err)
		return
	}

	resp := gin.H{
		"sentiment_label": res.Label,
		"sentiment_score": res.Score,
		"scores":          res.Scores,
		"gauge_value":     service.SentimentGauge(res.Label, res.Score),
	}

	if req.ReviewID != "" {
		if _, err := h.Store.GetReview(c.Request.Context(), req.ReviewID); err != nil {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "Review not found", nil)
			return
		}
		row := sentimentRow(req.ReviewID, res)
		if err := h.Store.AttachSentiment(c.Request.Context(), *row); err != nil {
			writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to attach sentiment", err.Error())
			return
		}
		resp["review_id"] = req.ReviewID
	}
	c.JSON(http.StatusOK, resp)
}

type BatchAnalyzeRequest struct {
	Texts []string `json:"texts" validate:"required,min=1,dive,required"`
}

// @Summary Analyze sentiment in batch
// @Description Concurrent, all-or-nothing analysis of several texts
// @Tags sentiment
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 502 {object} map[string]any
// @Router /api/sentiment/batch [post]
func (h *Handler) SentimentBatch(c *gin.Context) {
	var req BatchAnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	results, err := sentiment.AnalyzeBatch(c.Request.Context(), h.Sentiment, req.Texts)
	if err != nil {
		h.writeInferenceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": results})
}

// writeInferenceError surfaces a failed model call. The result is never
// replaced with a default label; that would quietly skew the statistics.
func (h *Handler) writeInferenceError(c *gin.Context, err error) {
	var infErr *sentiment.InferenceError
	if errors.As(err, &infErr) {
		writeError(c, http.StatusBadGateway, "INFERENCE_ERROR", "Sentiment analysis failed", infErr.Error())
		return
	}
	writeError(c, http.StatusBadGateway, "INFERENCE_ERROR", "Sentiment analysis failed", err.Error())
}

func sentimentRow(reviewID string, res sentiment.Result) *models.SentimentResult {
	return &models.SentimentResult{
		ID:             uuid.NewString(),
		ReviewID:       reviewID,
		SentimentLabel: res.Label,
		SentimentScore: res.Score,
		NegativeScore:  res.Scores.Negative,
		PositiveScore:  res.Scores.Positive,
		NeutralScore:   res.Scores.Neutral,
	}
}
