package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/support-qa/backend/internal/models"
	"github.com/support-qa/backend/internal/sentiment"
)

type fakeAdapter struct {
	result sentiment.Result
	err    error
}

func (f fakeAdapter) Analyze(ctx context.Context, text string) (sentiment.Result, error) {
	if f.err != nil {
		return sentiment.Result{}, f.err
	}
	return f.result, nil
}

func newTestHandler(adapter sentiment.Adapter) *Handler {
	return &Handler{
		Sentiment:     adapter,
		Validator:     validator.New(),
		Logger:        zerolog.Nop(),
		TZOffsetHours: 3,
	}
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSentimentAnalyzeReturnsGaugeValue(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newTestHandler(fakeAdapter{result: sentiment.Result{
		Label:  models.SentimentPositive,
		Score:  0.5,
		Scores: sentiment.Scores{Positive: 0.5, Negative: 0.2, Neutral: 0.3},
	}})

	r := gin.New()
	r.POST("/api/sentiment", h.SentimentAnalyze)

	w := postJSON(t, r, "/api/sentiment", gin.H{"text": "good service"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp["sentiment_label"] != models.SentimentPositive {
		t.Fatalf("unexpected label %v", resp["sentiment_label"])
	}
	if resp["gauge_value"].(float64) != 80 {
		t.Fatalf("expected gauge 80, got %v", resp["gauge_value"])
	}
}

func TestSentimentAnalyzeRequiresText(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newTestHandler(fakeAdapter{})
	r := gin.New()
	r.POST("/api/sentiment", h.SentimentAnalyze)

	w := postJSON(t, r, "/api/sentiment", gin.H{"text": ""})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestSentimentBatchSurfacesInferenceError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newTestHandler(fakeAdapter{err: &sentiment.InferenceError{Reason: "model down"}})
	r := gin.New()
	r.POST("/api/sentiment/batch", h.SentimentBatch)

	w := postJSON(t, r, "/api/sentiment/batch", gin.H{"texts": []string{"a", "b"}})
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp["error"]["code"] != "INFERENCE_ERROR" {
		t.Fatalf("unexpected error payload %v", resp)
	}
}

func TestSentimentBatchReturnsAllResults(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newTestHandler(fakeAdapter{result: sentiment.Result{Label: models.SentimentNeutral, Score: 0.6}})
	r := gin.New()
	r.POST("/api/sentiment/batch", h.SentimentBatch)

	w := postJSON(t, r, "/api/sentiment/batch", gin.H{"texts": []string{"a", "b", "c"}})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Items []sentiment.Result `json:"items"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Items) != 3 {
		t.Fatalf("expected 3 results, got %d", len(resp.Items))
	}
}
