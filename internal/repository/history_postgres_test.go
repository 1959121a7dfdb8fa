package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/futig/career-console/internal/entity"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopHistory(t *testing.T) {
	var h NoopHistory

	require.NoError(t, h.RecordAttempt(context.Background(), &entity.EvaluationAttempt{}))
	list, err := h.ListAttempts(context.Background(), "s1")
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestEmbeddedMigrations(t *testing.T) {
	up, err := migrationFiles.ReadFile("migrations/000001_evaluation_attempts.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(up), "evaluation_attempts")

	_, err = migrationFiles.ReadFile("migrations/000001_evaluation_attempts.down.sql")
	require.NoError(t, err)
}

// Runs only against a real database: TEST_DATABASE_URL=postgres://...
func TestHistoryPostgres_RoundTrip(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	require.NoError(t, RunMigrations(dsn))

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	repo := NewHistoryPostgres(pool)
	sessionID := uuid.NewString()[:8]

	attempt := &entity.EvaluationAttempt{
		ID:            uuid.NewString(),
		SessionID:     sessionID,
		QuestionIndex: 1,
		Question:      "Explain closures",
		Answer:        "A function with captured variables",
		AnswerMode:    entity.AnswerModeText,
		Score:         7.5,
		Verdict:       "Good",
		Evaluation:    &entity.Evaluation{Score: 7.5, Verdict: "Good", Strengths: []string{"concise"}},
		CreatedAt:     time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, repo.RecordAttempt(ctx, attempt))

	list, err := repo.ListAttempts(ctx, sessionID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, attempt.ID, list[0].ID)
	assert.Equal(t, 7.5, list[0].Score)
	assert.Equal(t, []string{"concise"}, list[0].Evaluation.Strengths)
	assert.True(t, attempt.CreatedAt.Equal(list[0].CreatedAt))
}
