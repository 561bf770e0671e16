package sentiment

import (
	"context"
	"hash/fnv"

	"github.com/support-qa/backend/internal/models"
)

// MockAdapter returns deterministic labels derived from the input text, for
// local runs without a model endpoint.
type MockAdapter struct{}

func (MockAdapter) Analyze(ctx context.Context, text string) (Result, error) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	sum := h.Sum64()

	labels := []string{models.SentimentNegative, models.SentimentPositive, models.SentimentNeutral}
	label := labels[int(sum%3)]
	score := 0.55 + float64(sum%40)/100

	res := Result{Label: label, Score: score}
	rest := (1 - score) / 2
	switch label {
	case models.SentimentNegative:
		res.Scores = Scores{Negative: score, Positive: rest, Neutral: rest}
	case models.SentimentPositive:
		res.Scores = Scores{Negative: rest, Positive: score, Neutral: rest}
	default:
		res.Scores = Scores{Negative: rest, Positive: rest, Neutral: score}
	}
	return res, nil
}
