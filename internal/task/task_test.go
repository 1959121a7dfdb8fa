package task

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/futig/career-console/internal/entity"
	"github.com/futig/career-console/internal/usecase/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGate struct {
	ticket *session.Ticket
	valid  atomic.Bool
}

func activeGate() *fakeGate {
	g := &fakeGate{ticket: &session.Ticket{SessionID: "ab12cd34", Generation: 1}}
	g.valid.Store(true)
	return g
}

func (g *fakeGate) RequireTicket() (session.Ticket, error) {
	if g.ticket == nil {
		return session.Ticket{}, entity.ErrBlocked
	}
	return *g.ticket, nil
}

func (g *fakeGate) Valid(session.Ticket) bool { return g.valid.Load() }

func TestRun_BlockedWithoutSession(t *testing.T) {
	var calls atomic.Int32
	task := New("projects", &fakeGate{}, func(ctx context.Context, sid string, _ struct{}) ([]string, error) {
		calls.Add(1)
		return nil, nil
	})

	_, err := task.Run(context.Background(), struct{}{})

	require.ErrorIs(t, err, entity.ErrBlocked)
	assert.Zero(t, calls.Load())
	assert.Equal(t, StatusIdle, task.Snapshot().Status)
}

func TestRun_Done(t *testing.T) {
	task := New("tailor", activeGate(), func(ctx context.Context, sid string, jd string) (string, error) {
		assert.Equal(t, "ab12cd34", sid)
		return "tailored for " + jd, nil
	})

	out, err := task.Run(context.Background(), "SRE")
	require.NoError(t, err)
	assert.Equal(t, "tailored for SRE", out)

	snap := task.Snapshot()
	assert.Equal(t, StatusDone, snap.Status)
	assert.Equal(t, "tailored for SRE", snap.Result)
	assert.True(t, snap.Loaded)
	assert.Empty(t, snap.Error)
}

func TestRun_FailedKeepsRawMessage(t *testing.T) {
	task := New("schedule", activeGate(), func(ctx context.Context, sid string, _ struct{}) (*entity.SchedulePlan, error) {
		return nil, fmt.Errorf("generate schedule: %w: %w", entity.ErrTransportFailure, rawErr("Session not found."))
	})

	_, err := task.Run(context.Background(), struct{}{})
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrGenerationFailed)
	assert.ErrorIs(t, err, entity.ErrTransportFailure)

	snap := task.Snapshot()
	assert.Equal(t, StatusFailed, snap.Status)
	assert.Equal(t, "Session not found.", snap.Error)
	assert.Nil(t, snap.Result)
	assert.False(t, snap.Loaded)
}

func TestRun_EmptyResultIsLoaded(t *testing.T) {
	task := New("jobs", activeGate(), func(ctx context.Context, sid string, _ int) ([]entity.Job, error) {
		return []entity.Job{}, nil
	})
	assert.False(t, task.Snapshot().Loaded)

	_, err := task.Run(context.Background(), 5)
	require.NoError(t, err)

	snap := task.Snapshot()
	assert.True(t, snap.Loaded)
	assert.Empty(t, snap.Result)
}

func TestRun_ValidatorRunsBeforeStateChange(t *testing.T) {
	var calls atomic.Int32
	task := New("tailor", activeGate(),
		func(ctx context.Context, sid string, jd string) (string, error) {
			calls.Add(1)
			return jd, nil
		},
		WithValidator[string, string](func(jd *string) error {
			if *jd == "" {
				return entity.ErrMissingField
			}
			return nil
		}),
	)

	_, err := task.Run(context.Background(), "")
	require.ErrorIs(t, err, entity.ErrMissingField)
	assert.Equal(t, StatusIdle, task.Snapshot().Status)
	assert.Zero(t, calls.Load())
}

func TestRun_LatestRunWins(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 2)

	task := New("projects", activeGate(), func(ctx context.Context, sid string, label string) (string, error) {
		started <- struct{}{}
		if label == "first" {
			<-release
		}
		return label, nil
	})

	firstErr := make(chan error, 1)
	go func() {
		_, err := task.Run(context.Background(), "first")
		firstErr <- err
	}()
	<-started

	out, err := task.Run(context.Background(), "second")
	require.NoError(t, err)
	assert.Equal(t, "second", out)

	close(release)
	assert.ErrorIs(t, <-firstErr, entity.ErrStaleResult)
	assert.Equal(t, "second", task.Snapshot().Result)
}

func TestRun_ResultDroppedAfterSessionReset(t *testing.T) {
	gate := activeGate()
	task := New("schedule", gate, func(ctx context.Context, sid string, _ struct{}) (string, error) {
		gate.valid.Store(false)
		return "plan", nil
	})

	_, err := task.Run(context.Background(), struct{}{})
	require.ErrorIs(t, err, entity.ErrStaleResult)
	assert.Equal(t, StatusRunning, task.Snapshot().Status)
}

func TestRun_Timeout(t *testing.T) {
	task := New("jobs", activeGate(),
		func(ctx context.Context, sid string, _ struct{}) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
		WithTimeout[struct{}, string](10*time.Millisecond),
	)

	_, err := task.Run(context.Background(), struct{}{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, StatusFailed, task.Snapshot().Status)
}

func TestRun_OnFinish(t *testing.T) {
	var got Snapshot[string]
	task := New("tailor", activeGate(),
		func(ctx context.Context, sid string, jd string) (string, error) { return "ok", nil },
		WithOnFinish[string, string](func(ctx context.Context, snap Snapshot[string]) { got = snap }),
	)

	_, err := task.Run(context.Background(), "jd")
	require.NoError(t, err)
	assert.Equal(t, StatusDone, got.Status)
	assert.Equal(t, "ok", got.Result)
}

func TestReset(t *testing.T) {
	task := New("tailor", activeGate(), func(ctx context.Context, sid string, jd string) (string, error) {
		return "ok", nil
	})
	_, err := task.Run(context.Background(), "jd")
	require.NoError(t, err)

	task.Reset()

	snap := task.Snapshot()
	assert.Equal(t, StatusIdle, snap.Status)
	assert.Empty(t, snap.Result)
	assert.False(t, snap.Loaded)
}

type rawErr string

func (e rawErr) Error() string      { return "http error: " + string(e) }
func (e rawErr) RawMessage() string { return string(e) }
