package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/support-qa/backend/internal/models"
)

type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// --- accounts (login credentials, kept apart from the user profile rows) ---

func (s *Store) CreateAccount(ctx context.Context, id, email, passwordHash string) error {
	_, err := s.Pool.Exec(ctx, `INSERT INTO auth_accounts (id, email, password_hash, created_at) VALUES ($1, $2, $3, NOW())`, id, email, passwordHash)
	return err
}

// DeleteAccount is the compensating step when the profile insert of a
// two-step user create fails midway.
func (s *Store) DeleteAccount(ctx context.Context, id string) error {
	_, err := s.Pool.Exec(ctx, `DELETE FROM auth_accounts WHERE id = $1`, id)
	return err
}

func (s *Store) GetAccountByEmail(ctx context.Context, email string) (id string, passwordHash string, err error) {
	err = s.Pool.QueryRow(ctx, `SELECT id, password_hash FROM auth_accounts WHERE email = $1`, email).Scan(&id, &passwordHash)
	return id, passwordHash, err
}

// --- users ---

const userColumns = `id, name, email, role, team_leader_id, is_active, created_at`

func scanUser(row pgx.Row) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.TeamLeaderID, &u.IsActive, &u.CreatedAt)
	return u, err
}

func (s *Store) InsertUser(ctx context.Context, u models.User) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO users (id, name, email, role, team_leader_id, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`, u.ID, u.Name, u.Email, u.Role, u.TeamLeaderID, u.IsActive)
	return err
}

func (s *Store) UpdateUser(ctx context.Context, id string, name string, role string, teamLeaderID *string) error {
	tag, err := s.Pool.Exec(ctx, `UPDATE users SET name = $1, role = $2, team_leader_id = $3 WHERE id = $4`, name, role, teamLeaderID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// SetUserActive soft-deletes or restores a user; rows are never removed.
func (s *Store) SetUserActive(ctx context.Context, id string, active bool) error {
	tag, err := s.Pool.Exec(ctx, `UPDATE users SET is_active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (models.User, error) {
	return scanUser(s.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// ListActiveUsers returns the roster the filter dropdowns and the hierarchy
// resolver work from.
func (s *Store) ListActiveUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.Pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE is_active = TRUE ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.Pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// --- evaluations ---

// EvaluationFilter carries the resolved list-query filters. Zero values mean
// "filter omitted"; AgentIDs of length zero means no subject restriction.
type EvaluationFilter struct {
	AgentIDs   []string
	Start      *time.Time
	End        *time.Time
	TicketID   string
	ScoreRange string
	SortBy     string
	Order      string
}

var evaluationSortColumns = map[string]string{
	"created_at":   "e.created_at",
	"manual_score": "e.manual_score",
	"ai_score":     "e.ai_score",
	"accuracy":     "e.accuracy",
	"ticket_id":    "e.ticket_id",
}

func buildEvaluationWhere(f EvaluationFilter) (string, []any) {
	var args []any
	var wheres []string
	if len(f.AgentIDs) > 0 {
		args = append(args, f.AgentIDs)
		wheres = append(wheres, fmt.Sprintf("e.agent_id = ANY($%d)", len(args)))
	}
	if f.Start != nil {
		args = append(args, *f.Start)
		wheres = append(wheres, fmt.Sprintf("e.created_at >= $%d", len(args)))
	}
	if f.End != nil {
		args = append(args, *f.End)
		wheres = append(wheres, fmt.Sprintf("e.created_at <= $%d", len(args)))
	}
	if f.TicketID != "" {
		args = append(args, "%"+f.TicketID+"%")
		wheres = append(wheres, fmt.Sprintf("e.ticket_id ILIKE $%d", len(args)))
	}
	switch f.ScoreRange {
	case "low":
		wheres = append(wheres, "e.manual_score >= 1.0 AND e.manual_score < 3.0")
	case "medium":
		wheres = append(wheres, "e.manual_score >= 3.0 AND e.manual_score < 4.0")
	case "high":
		wheres = append(wheres, "e.manual_score >= 4.0 AND e.manual_score <= 5.0")
	}
	if len(wheres) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(wheres, " AND "), args
}

func (s *Store) ListEvaluations(ctx context.Context, f EvaluationFilter) ([]models.EvaluationWithAgent, error) {
	query := `SELECT e.id, e.ticket_id, e.agent_id, e.manual_score, e.ai_score, e.accuracy,
		e.qa_kpi_category, e.notes, e.created_at, u.name, u.team_leader_id
		FROM qa_evaluations e
		LEFT JOIN users u ON u.id = e.agent_id`

	where, args := buildEvaluationWhere(f)
	query += where

	sortCol, ok := evaluationSortColumns[f.SortBy]
	if !ok {
		sortCol = "e.created_at"
	}
	dir := "DESC"
	if strings.EqualFold(f.Order, "asc") {
		dir = "ASC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s NULLS LAST", sortCol, dir)

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.EvaluationWithAgent
	for rows.Next() {
		var e models.EvaluationWithAgent
		if err := rows.Scan(&e.ID, &e.TicketID, &e.AgentID, &e.ManualScore, &e.AIScore, &e.Accuracy,
			&e.KPICategory, &e.Notes, &e.CreatedAt, &e.AgentName, &e.TeamLeaderID); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListEvaluationScores is the lean projection the metrics pipeline folds over.
func (s *Store) ListEvaluationScores(ctx context.Context, agentIDs []string, start, end *time.Time) ([]models.EvaluationScore, error) {
	f := EvaluationFilter{AgentIDs: agentIDs, Start: start, End: end}
	where, args := buildEvaluationWhere(f)
	query := `SELECT e.agent_id, e.manual_score, e.qa_kpi_category FROM qa_evaluations e` + where

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.EvaluationScore
	for rows.Next() {
		var e models.EvaluationScore
		if err := rows.Scan(&e.AgentID, &e.ManualScore, &e.KPICategory); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) InsertEvaluation(ctx context.Context, e models.Evaluation) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO qa_evaluations (id, ticket_id, agent_id, manual_score, ai_score, accuracy, qa_kpi_category, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	`, e.ID, e.TicketID, e.AgentID, e.ManualScore, e.AIScore, e.Accuracy, e.KPICategory, e.Notes)
	return err
}

// --- customer reviews + sentiment ---

// ReviewFilter carries the review list filters. Limit of 0 means unbounded.
type ReviewFilter struct {
	Start     *time.Time
	End       *time.Time
	Source    string
	Sentiment string
	Processed *bool
	Search    string
	Limit     int
}

func (s *Store) ListReviews(ctx context.Context, f ReviewFilter) ([]models.ReviewWithSentiment, error) {
	query := `SELECT r.id, r.content, r.source, r.contact_info, r.processed, r.created_at,
		sa.id, sa.sentiment_label, sa.sentiment_score, sa.negative_score, sa.positive_score, sa.neutral_score, sa.created_at
		FROM customer_reviews r
		LEFT JOIN sentiment_analysis sa ON sa.review_id = r.id`

	var args []any
	var wheres []string
	if f.Start != nil {
		args = append(args, *f.Start)
		wheres = append(wheres, fmt.Sprintf("r.created_at >= $%d", len(args)))
	}
	if f.End != nil {
		args = append(args, *f.End)
		wheres = append(wheres, fmt.Sprintf("r.created_at <= $%d", len(args)))
	}
	if f.Source != "" {
		args = append(args, f.Source)
		wheres = append(wheres, fmt.Sprintf("r.source = $%d", len(args)))
	}
	if f.Sentiment != "" {
		args = append(args, f.Sentiment)
		wheres = append(wheres, fmt.Sprintf("sa.sentiment_label = $%d", len(args)))
	}
	if f.Processed != nil {
		args = append(args, *f.Processed)
		wheres = append(wheres, fmt.Sprintf("r.processed = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		wheres = append(wheres, fmt.Sprintf("r.content ILIKE $%d", len(args)))
	}
	if len(wheres) > 0 {
		query += " WHERE " + strings.Join(wheres, " AND ")
	}
	query += " ORDER BY r.created_at DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ReviewWithSentiment
	for rows.Next() {
		var r models.ReviewWithSentiment
		var (
			saID      *string
			label     *string
			score     *float64
			negScore  *float64
			posScore  *float64
			neutScore *float64
			saCreated *time.Time
		)
		if err := rows.Scan(&r.ID, &r.Content, &r.Source, &r.ContactInfo, &r.Processed, &r.CreatedAt,
			&saID, &label, &score, &negScore, &posScore, &neutScore, &saCreated); err != nil {
			return nil, err
		}
		if saID != nil {
			r.Sentiment = &models.SentimentResult{
				ID:             *saID,
				ReviewID:       r.ID,
				SentimentLabel: *label,
				SentimentScore: *score,
				NegativeScore:  *negScore,
				PositiveScore:  *posScore,
				NeutralScore:   *neutScore,
				CreatedAt:      *saCreated,
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListSentimentScores is the lean projection the sentiment statistics fold
// over.
func (s *Store) ListSentimentScores(ctx context.Context) ([]models.SentimentScore, error) {
	rows, err := s.Pool.Query(ctx, `SELECT sentiment_label, sentiment_score FROM sentiment_analysis`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.SentimentScore
	for rows.Next() {
		var sc models.SentimentScore
		if err := rows.Scan(&sc.SentimentLabel, &sc.SentimentScore); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

func (s *Store) GetReview(ctx context.Context, id string) (models.CustomerReview, error) {
	var r models.CustomerReview
	err := s.Pool.QueryRow(ctx, `
		SELECT id, content, source, contact_info, processed, created_at FROM customer_reviews WHERE id = $1
	`, id).Scan(&r.ID, &r.Content, &r.Source, &r.ContactInfo, &r.Processed, &r.CreatedAt)
	return r, err
}

func (s *Store) InsertReview(ctx context.Context, r models.CustomerReview) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO customer_reviews (id, content, source, contact_info, processed, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`, r.ID, r.Content, r.Source, r.ContactInfo, r.Processed)
	return err
}

func insertSentiment(ctx context.Context, tx pgx.Tx, res models.SentimentResult) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO sentiment_analysis (id, review_id, sentiment_label, sentiment_score, negative_score, positive_score, neutral_score, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`, res.ID, res.ReviewID, res.SentimentLabel, res.SentimentScore, res.NegativeScore, res.PositiveScore, res.NeutralScore)
	return err
}

// AttachSentiment stores a result against its review and flips the processed
// flag in one transaction. A review gets exactly one result; the result is
// immutable afterwards.
func (s *Store) AttachSentiment(ctx context.Context, res models.SentimentResult) error {
	return s.WithTx(ctx, func(tx pgx.Tx) error {
		if err := insertSentiment(ctx, tx, res); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `UPDATE customer_reviews SET processed = TRUE WHERE id = $1`, res.ReviewID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		return nil
	})
}

// CreateReviewWithSentiment inserts a review and, when the submitter already
// ran the analysis, its sentiment row in the same transaction.
func (s *Store) CreateReviewWithSentiment(ctx context.Context, r models.CustomerReview, res *models.SentimentResult) error {
	return s.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO customer_reviews (id, content, source, contact_info, processed, created_at)
			VALUES ($1, $2, $3, $4, $5, NOW())
		`, r.ID, r.Content, r.Source, r.ContactInfo, r.Processed)
		if err != nil {
			return err
		}
		if res == nil {
			return nil
		}
		return insertSentiment(ctx, tx, *res)
	})
}
