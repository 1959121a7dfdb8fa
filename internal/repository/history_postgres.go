package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/futig/career-console/internal/entity"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// HistoryRepository stores evaluated interview attempts
type HistoryRepository interface {
	RecordAttempt(ctx context.Context, attempt *entity.EvaluationAttempt) error
	ListAttempts(ctx context.Context, sessionID string) ([]*entity.EvaluationAttempt, error)
}

var (
	_ HistoryRepository = &HistoryPostgres{}
	_ HistoryRepository = NoopHistory{}
)

const (
	insertAttemptQuery = `
INSERT INTO evaluation_attempts (
    id, session_id, question_index, question, answer, answer_mode, score, verdict, evaluation, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	listAttemptsQuery = `
SELECT id, session_id, question_index, question, answer, answer_mode, score::float8, verdict, evaluation, created_at
FROM evaluation_attempts
WHERE session_id = $1
ORDER BY created_at, question_index`
)

// HistoryPostgres implements HistoryRepository using PostgreSQL
type HistoryPostgres struct {
	db *pgxpool.Pool
}

func NewHistoryPostgres(db *pgxpool.Pool) *HistoryPostgres {
	return &HistoryPostgres{db: db}
}

func (r *HistoryPostgres) RecordAttempt(ctx context.Context, attempt *entity.EvaluationAttempt) error {
	id, err := uuid.Parse(attempt.ID)
	if err != nil {
		return fmt.Errorf("invalid attempt ID: %w", err)
	}

	evaluation, err := json.Marshal(attempt.Evaluation)
	if err != nil {
		return fmt.Errorf("marshal evaluation: %w", err)
	}

	_, err = r.db.Exec(ctx, insertAttemptQuery,
		pgtype.UUID{Bytes: id, Valid: true},
		attempt.SessionID,
		attempt.QuestionIndex,
		attempt.Question,
		attempt.Answer,
		string(attempt.AnswerMode),
		attempt.Score,
		attempt.Verdict,
		evaluation,
		pgtype.Timestamptz{Time: attempt.CreatedAt, Valid: true},
	)
	if err != nil {
		return fmt.Errorf("insert evaluation attempt: %w", err)
	}

	return nil
}

func (r *HistoryPostgres) ListAttempts(ctx context.Context, sessionID string) ([]*entity.EvaluationAttempt, error) {
	rows, err := r.db.Query(ctx, listAttemptsQuery, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query evaluation attempts: %w", err)
	}

	attempts, err := pgx.CollectRows(rows, scanAttempt)
	if err != nil {
		return nil, fmt.Errorf("scan evaluation attempts: %w", err)
	}

	return attempts, nil
}

func scanAttempt(row pgx.CollectableRow) (*entity.EvaluationAttempt, error) {
	var (
		id         pgtype.UUID
		mode       string
		evaluation []byte
		createdAt  pgtype.Timestamptz
		a          entity.EvaluationAttempt
	)

	err := row.Scan(&id, &a.SessionID, &a.QuestionIndex, &a.Question, &a.Answer,
		&mode, &a.Score, &a.Verdict, &evaluation, &createdAt)
	if err != nil {
		return nil, err
	}

	a.ID = uuid.UUID(id.Bytes).String()
	a.AnswerMode = entity.AnswerMode(mode)
	a.CreatedAt = createdAt.Time
	if len(evaluation) > 0 {
		a.Evaluation = &entity.Evaluation{}
		if err := json.Unmarshal(evaluation, a.Evaluation); err != nil {
			return nil, fmt.Errorf("unmarshal evaluation: %w", err)
		}
	}

	return &a, nil
}

// NoopHistory is used when no database is configured
type NoopHistory struct{}

func (NoopHistory) RecordAttempt(context.Context, *entity.EvaluationAttempt) error {
	return nil
}

func (NoopHistory) ListAttempts(context.Context, string) ([]*entity.EvaluationAttempt, error) {
	return []*entity.EvaluationAttempt{}, nil
}
