package sentiment

import "github.com/support-qa/backend/internal/models"

// ClassScore is one entry of the model's per-class output.
type ClassScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// The model emits three fixed classes as LABEL_n.
var classLabels = map[string]string{
	"LABEL_0": models.SentimentNegative,
	"LABEL_1": models.SentimentPositive,
	"LABEL_2": models.SentimentNeutral,
}

// Normalize maps the raw class list onto the internal label/score/scores
// structure. Omitted classes keep a 0 probability. The reported label is the
// strictly greatest probability; on ties the first-encountered maximal class
// wins. A payload with no recognizable class is an InferenceError.
func Normalize(classes []ClassScore) (Result, error) {
	var res Result
	best := -1.0
	for _, c := range classes {
		label, ok := classLabels[c.Label]
		if !ok {
			continue
		}
		switch label {
		case models.SentimentNegative:
			res.Scores.Negative = c.Score
		case models.SentimentPositive:
			res.Scores.Positive = c.Score
		case models.SentimentNeutral:
			res.Scores.Neutral = c.Score
		}
		if c.Score > best {
			best = c.Score
			res.Label = label
			res.Score = c.Score
		}
	}
	if res.Label == "" {
		return Result{}, &InferenceError{Reason: "no recognizable class in model response"}
	}
	return res, nil
}
