package sentiment

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/support-qa/backend/internal/models"
)

func TestNormalize(t *testing.T) {
	res, err := Normalize([]ClassScore{
		{Label: "LABEL_0", Score: 0.1},
		{Label: "LABEL_1", Score: 0.7},
		{Label: "LABEL_2", Score: 0.2},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Label != models.SentimentPositive || res.Score != 0.7 {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Scores.Negative != 0.1 || res.Scores.Positive != 0.7 || res.Scores.Neutral != 0.2 {
		t.Fatalf("unexpected scores %+v", res.Scores)
	}
}

func TestNormalizeTieBreaksOnInputOrder(t *testing.T) {
	res, err := Normalize([]ClassScore{
		{Label: "LABEL_2", Score: 0.5},
		{Label: "LABEL_1", Score: 0.5},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Label != models.SentimentNeutral {
		t.Fatalf("expected first-encountered maximal class, got %s", res.Label)
	}
}

func TestNormalizeOmittedClassDefaultsToZero(t *testing.T) {
	res, err := Normalize([]ClassScore{{Label: "LABEL_0", Score: 0.9}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Scores.Positive != 0 || res.Scores.Neutral != 0 {
		t.Fatalf("expected omitted classes to stay 0, got %+v", res.Scores)
	}
}

func TestNormalizeRejectsUnrecognizablePayload(t *testing.T) {
	var infErr *InferenceError
	if _, err := Normalize(nil); !errors.As(err, &infErr) {
		t.Fatalf("expected InferenceError, got %v", err)
	}
	if _, err := Normalize([]ClassScore{{Label: "LABEL_9", Score: 1}}); !errors.As(err, &infErr) {
		t.Fatalf("expected InferenceError for unknown classes, got %v", err)
	}
}

func TestHTTPAdapterAnalyze(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer key-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`[[{"label":"LABEL_0","score":0.05},{"label":"LABEL_1","score":0.85},{"label":"LABEL_2","score":0.10}]]`))
	}))
	defer srv.Close()

	adapter := HTTPAdapter{URL: srv.URL, APIKey: "key-1"}
	res, err := adapter.Analyze(context.Background(), "great support, thanks")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Label != models.SentimentPositive || res.Score != 0.85 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestHTTPAdapterSurfacesModelFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	adapter := HTTPAdapter{URL: srv.URL}
	var infErr *InferenceError
	if _, err := adapter.Analyze(context.Background(), "x"); !errors.As(err, &infErr) {
		t.Fatalf("expected InferenceError, got %v", err)
	}
}

type scriptedAdapter struct {
	calls  atomic.Int64
	failOn string
}

func (s *scriptedAdapter) Analyze(ctx context.Context, text string) (Result, error) {
	s.calls.Add(1)
	if text == s.failOn {
		return Result{}, &InferenceError{Reason: "scripted failure"}
	}
	return Result{Label: models.SentimentPositive, Score: 0.9}, nil
}

func TestAnalyzeBatch(t *testing.T) {
	adapter := &scriptedAdapter{}
	results, err := AnalyzeBatch(context.Background(), adapter, []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
}

func TestAnalyzeBatchIsAllOrNothing(t *testing.T) {
	adapter := &scriptedAdapter{failOn: "b"}
	results, err := AnalyzeBatch(context.Background(), adapter, []string{"a", "b", "c"})
	if err == nil {
		t.Fatalf("expected failure to surface")
	}
	if results != nil {
		t.Fatalf("expected partial results to be discarded, got %v", results)
	}
	// siblings run to completion even when one fails
	if got := adapter.calls.Load(); got != 3 {
		t.Fatalf("expected all 3 calls, got %d", got)
	}
}

func TestMockAdapterDeterministic(t *testing.T) {
	m := MockAdapter{}
	a, _ := m.Analyze(context.Background(), "the agent was rude")
	b, _ := m.Analyze(context.Background(), "the agent was rude")
	if a != b {
		t.Fatalf("expected deterministic mock output")
	}
	if a.Score < 0 || a.Score > 1 {
		t.Fatalf("score out of range: %v", a.Score)
	}
}
