package models

import "time"

const (
	RoleAgent      = "agent"
	RoleTeamLeader = "team_leader"
)

const (
	SentimentNegative = "Negative"
	SentimentPositive = "Positive"
	SentimentNeutral  = "Neutral"
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	TeamLeaderID *string   `json:"team_leader_id,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

type Evaluation struct {
	ID          string    `json:"id"`
	TicketID    string    `json:"ticket_id"`
	AgentID     string    `json:"agent_id"`
	ManualScore *float64  `json:"manual_score"`
	AIScore     *float64  `json:"ai_score"`
	Accuracy    *float64  `json:"accuracy"`
	KPICategory []string  `json:"qa_kpi_category"`
	Notes       *string   `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// EvaluationWithAgent is the list/export projection joined with the owning
// agent's profile.
type EvaluationWithAgent struct {
	Evaluation
	AgentName    *string `json:"agent_name"`
	TeamLeaderID *string `json:"agent_team_leader_id,omitempty"`
}

// EvaluationScore is the minimal projection the metrics pipeline folds over.
type EvaluationScore struct {
	AgentID     string   `json:"agent_id"`
	ManualScore *float64 `json:"manual_score"`
	KPICategory []string `json:"qa_kpi_category"`
}

type CustomerReview struct {
	ID          string    `json:"id"`
	Content     string    `json:"content"`
	Source      string    `json:"source"`
	ContactInfo *string   `json:"contact_info,omitempty"`
	Processed   bool      `json:"processed"`
	CreatedAt   time.Time `json:"created_at"`
}

type SentimentResult struct {
	ID             string    `json:"id"`
	ReviewID       string    `json:"review_id"`
	SentimentLabel string    `json:"sentiment_label"`
	SentimentScore float64   `json:"sentiment_score"`
	NegativeScore  float64   `json:"negative_score"`
	PositiveScore  float64   `json:"positive_score"`
	NeutralScore   float64   `json:"neutral_score"`
	CreatedAt      time.Time `json:"created_at"`
}

// SentimentScore is the minimal projection the sentiment statistics fold
// over.
type SentimentScore struct {
	SentimentLabel string  `json:"sentiment_label"`
	SentimentScore float64 `json:"sentiment_score"`
}

// ReviewWithSentiment joins a review with its one-to-one sentiment result,
// when one has been attached.
type ReviewWithSentiment struct {
	CustomerReview
	Sentiment *SentimentResult `json:"sentiment,omitempty"`
}
