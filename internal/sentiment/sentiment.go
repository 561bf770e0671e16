package sentiment

import (
	"context"
	"fmt"
)

type Scores struct {
	Negative float64 `json:"negative"`
	Positive float64 `json:"positive"`
	Neutral  float64 `json:"neutral"`
}

// Result is the internal three-way view of a model response. Score is the
// arg-max class probability; Scores holds all three and is not required to
// sum to 1, the upstream model may not normalize.
type Result struct {
	Label  string  `json:"sentiment_label"`
	Score  float64 `json:"sentiment_score"`
	Scores Scores  `json:"scores"`
}

type Adapter interface {
	Analyze(ctx context.Context, text string) (Result, error)
}

// InferenceError marks a failed or malformed model response. Callers surface
// it to the user; substituting a default label would corrupt the statistics.
type InferenceError struct {
	Reason string
	Err    error
}

func (e *InferenceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("sentiment inference: %s: %v", e.Reason, e.Err)
	}
	return "sentiment inference: " + e.Reason
}

func (e *InferenceError) Unwrap() error { return e.Err }
