package task

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/futig/career-console/internal/entity"
	"github.com/futig/career-console/internal/usecase/session"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Status string

const (
	StatusIdle    Status = "idle"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Gate supplies the session ticket every run is bound to
type Gate interface {
	RequireTicket() (session.Ticket, error)
	Valid(t session.Ticket) bool
}

// Func performs one feature call for the given session
type Func[In, Out any] func(ctx context.Context, sessionID string, in In) (Out, error)

// Snapshot is the observable state of a task
type Snapshot[Out any] struct {
	Status Status
	Result Out
	Error  string
	Loaded bool
}

type Option[In, Out any] func(*Task[In, Out])

// WithValidator rejects bad input before the task changes state
func WithValidator[In, Out any](fn func(in *In) error) Option[In, Out] {
	return func(t *Task[In, Out]) {
		t.validate = fn
	}
}

func WithTimeout[In, Out any](d time.Duration) Option[In, Out] {
	return func(t *Task[In, Out]) {
		t.timeout = d
	}
}

// WithOnFinish registers a hook called after a run's result is applied
func WithOnFinish[In, Out any](fn func(ctx context.Context, snap Snapshot[Out])) Option[In, Out] {
	return func(t *Task[In, Out]) {
		t.onFinish = fn
	}
}

// Task is the idle/running/done/failed lifecycle around one feature call.
// Runs are independent; a newer run supersedes the result of an older one.
type Task[In, Out any] struct {
	name     string
	gate     Gate
	fn       Func[In, Out]
	validate func(in *In) error
	timeout  time.Duration
	onFinish func(ctx context.Context, snap Snapshot[Out])

	mu     sync.Mutex
	status Status
	result Out
	errMsg string
	loaded bool
	run    uint64
}

func New[In, Out any](name string, gate Gate, fn Func[In, Out], opts ...Option[In, Out]) *Task[In, Out] {
	t := &Task[In, Out]{
		name:   name,
		gate:   gate,
		fn:     fn,
		status: StatusIdle,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Task[In, Out]) Name() string {
	return t.name
}

// Run executes the feature call and blocks until it completes.
// Without a session it returns entity.ErrBlocked and leaves the task untouched.
func (t *Task[In, Out]) Run(ctx context.Context, in In) (Out, error) {
	var zero Out

	ticket, err := t.gate.RequireTicket()
	if err != nil {
		return zero, err
	}

	if t.validate != nil {
		if err := t.validate(&in); err != nil {
			return zero, err
		}
	}

	t.mu.Lock()
	t.run++
	run := t.run
	t.status = StatusRunning
	t.result = zero
	t.errMsg = ""
	t.mu.Unlock()

	callCtx := ctx
	if t.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	start := time.Now()
	out, callErr := t.fn(callCtx, ticket.SessionID, in)
	if callErr != nil {
		callErr = asFeatureError(t.name, callErr)
	}

	t.mu.Lock()
	if run != t.run || !t.gate.Valid(ticket) {
		t.mu.Unlock()
		ctxzap.Debug(ctx, "dropping superseded task result",
			zap.String("feature", t.name),
			zap.Uint64("run", run),
		)
		if callErr != nil {
			return zero, callErr
		}
		return zero, entity.ErrStaleResult
	}

	if callErr != nil {
		t.status = StatusFailed
		t.errMsg = entity.RawMessage(callErr)
	} else {
		t.status = StatusDone
		t.result = out
		t.loaded = true
	}
	snap := t.snapshotLocked()
	t.mu.Unlock()

	ctxzap.Info(ctx, "feature task finished",
		zap.String("feature", t.name),
		zap.String("status", string(snap.Status)),
		zap.Duration("duration", time.Since(start)),
	)

	if t.onFinish != nil {
		t.onFinish(ctx, snap)
	}

	if callErr != nil {
		return zero, callErr
	}
	return out, nil
}

// Reset returns the task to idle and drops any in-flight result
func (t *Task[In, Out]) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	var zero Out
	t.run++
	t.status = StatusIdle
	t.result = zero
	t.errMsg = ""
	t.loaded = false
}

func (t *Task[In, Out]) Snapshot() Snapshot[Out] {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.snapshotLocked()
}

func (t *Task[In, Out]) snapshotLocked() Snapshot[Out] {
	return Snapshot[Out]{
		Status: t.status,
		Result: t.result,
		Error:  t.errMsg,
		Loaded: t.loaded,
	}
}

func asFeatureError(feature string, err error) error {
	var ferr *entity.FeatureError
	if errors.As(err, &ferr) {
		return err
	}
	return &entity.FeatureError{Feature: feature, Kind: entity.ErrGenerationFailed, Err: err}
}
