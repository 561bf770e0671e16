package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// HTTPAdapter calls a hosted inference endpoint that accepts {"inputs": text}
// and answers with a nested array whose first element lists the per-class
// scores.
type HTTPAdapter struct {
	URL    string
	APIKey string
	Client *http.Client
}

type inferenceRequest struct {
	Inputs string `json:"inputs"`
}

func (h HTTPAdapter) Analyze(ctx context.Context, text string) (Result, error) {
	if h.Client == nil {
		h.Client = &http.Client{Timeout: 15 * time.Second}
	}

	b, _ := json.Marshal(inferenceRequest{Inputs: text})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.URL, bytes.NewReader(b))
	if err != nil {
		return Result{}, &InferenceError{Reason: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if h.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.APIKey)
	}

	resp, err := h.Client.Do(req)
	if err != nil {
		return Result{}, &InferenceError{Reason: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, &InferenceError{Reason: "model returned " + resp.Status}
	}

	var payload [][]ClassScore
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Result{}, &InferenceError{Reason: "malformed response", Err: err}
	}
	if len(payload) == 0 || len(payload[0]) == 0 {
		return Result{}, &InferenceError{Reason: "empty model response"}
	}
	return Normalize(payload[0])
}
