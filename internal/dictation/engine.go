package dictation

import (
	"context"
	"strings"
	"sync"

	"github.com/futig/career-console/internal/entity"
	"go.uber.org/zap"
)

type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseListening Phase = "listening"
)

// Event is one recognition update: newly finalized segments plus the
// current non-final guess, if any.
type Event struct {
	Final   []string
	Interim string
}

// Sink receives the events of one capture stream
type Sink interface {
	Result(ev Event)
	End()
	Fail(code string)
}

// Capture is a speech-to-text source. At most one stream is open at a time.
type Capture interface {
	Available() bool
	Start(ctx context.Context, sink Sink) error
	Stop() error
}

// State is a snapshot of the engine
type State struct {
	Phase           Phase
	FinalTranscript string
	InterimPreview  string
	LastError       *Error
}

// Engine turns a capture stream into a durable transcript and an
// ephemeral interim preview.
type Engine struct {
	mu       sync.Mutex
	capture  Capture
	logger   *zap.Logger
	state    State
	stream   uint64
	idle     chan struct{}
	observer func(State)
}

func NewEngine(capture Capture, logger *zap.Logger) *Engine {
	idle := make(chan struct{})
	close(idle)

	return &Engine{
		capture: capture,
		logger:  logger,
		state:   State{Phase: PhaseIdle},
		idle:    idle,
	}
}

// SetCapture swaps the capture collaborator, stopping the current stream first
func (e *Engine) SetCapture(c Capture) {
	e.Stop()

	e.mu.Lock()
	e.capture = c
	e.mu.Unlock()
}

// DetachCapture removes c and the observer if c is still the active capture
func (e *Engine) DetachCapture(c Capture) {
	e.mu.Lock()
	current := e.capture == c
	e.mu.Unlock()
	if !current {
		return
	}

	e.Stop()

	e.mu.Lock()
	if e.capture == c {
		e.capture = nil
		e.observer = nil
	}
	e.mu.Unlock()
}

// Observe registers fn to be called with a snapshot after every change.
// fn runs under the engine lock and must not call back into the engine.
func (e *Engine) Observe(fn func(State)) {
	e.mu.Lock()
	e.observer = fn
	e.mu.Unlock()
}

// Start opens a new listening session. It is a no-op while listening.
// The returned error is the classified start failure, also kept in LastError.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.state.Phase == PhaseListening {
		e.mu.Unlock()
		return nil
	}

	capture := e.capture
	if capture == nil || !capture.Available() {
		e.state.LastError = &Error{Kind: Unsupported, Code: "unsupported"}
		err := e.state.LastError
		e.notifyLocked()
		e.mu.Unlock()
		return err
	}

	e.stream++
	gen := e.stream
	e.state = State{Phase: PhaseListening}
	e.idle = make(chan struct{})
	e.notifyLocked()
	e.mu.Unlock()

	e.logger.Debug("dictation started", zap.Uint64("stream", gen))

	if err := capture.Start(ctx, &streamSink{engine: e, stream: gen}); err != nil {
		derr := classifyStartError(err)
		e.logger.Warn("capture failed to start", zap.Error(err))

		e.mu.Lock()
		defer e.mu.Unlock()
		if e.stream == gen && e.state.Phase == PhaseListening {
			e.toIdleLocked(derr)
		}
		return derr
	}

	return nil
}

// Stop ends the current listening session, keeping the transcript
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.state.Phase != PhaseListening {
		e.mu.Unlock()
		return
	}
	capture := e.capture
	e.toIdleLocked(nil)
	e.mu.Unlock()

	if capture != nil {
		if err := capture.Stop(); err != nil {
			e.logger.Warn("failed to stop capture", zap.Error(err))
		}
	}
}

// Clear empties transcript and preview without changing phase
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state.FinalTranscript = ""
	e.state.InterimPreview = ""
	e.notifyLocked()
}

// Reset stops capture and returns the engine to an empty idle state
func (e *Engine) Reset() {
	e.Stop()

	e.mu.Lock()
	defer e.mu.Unlock()

	e.state = State{Phase: PhaseIdle}
	e.notifyLocked()
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.state
}

// Transcript returns the finalized transcript at this moment
func (e *Engine) Transcript() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.state.FinalTranscript
}

// AwaitIdle blocks until the engine is idle or ctx is done
func (e *Engine) AwaitIdle(ctx context.Context) (State, error) {
	e.mu.Lock()
	idle := e.idle
	e.mu.Unlock()

	select {
	case <-idle:
		return e.State(), nil
	case <-ctx.Done():
		return e.State(), ctx.Err()
	}
}

func (e *Engine) apply(stream uint64, ev Event) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.currentLocked(stream) {
		return
	}

	var b strings.Builder
	b.WriteString(e.state.FinalTranscript)
	for _, seg := range ev.Final {
		seg = strings.TrimRight(seg, " \t\r\n")
		if seg == "" {
			continue
		}
		b.WriteString(seg)
		b.WriteByte(' ')
	}
	e.state.FinalTranscript = b.String()
	e.state.InterimPreview = ev.Interim
	e.notifyLocked()
}

func (e *Engine) end(stream uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.currentLocked(stream) {
		return
	}
	e.toIdleLocked(nil)
	e.logger.Debug("dictation ended", zap.Uint64("stream", stream))
}

func (e *Engine) fail(stream uint64, code string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.currentLocked(stream) {
		return
	}
	derr := Classify(code)
	e.toIdleLocked(derr)
	e.logger.Info("dictation failed",
		zap.Uint64("stream", stream),
		zap.String("code", code),
		zap.String("kind", string(derr.Kind)),
	)
}

func (e *Engine) currentLocked(stream uint64) bool {
	return e.stream == stream && e.state.Phase == PhaseListening
}

func (e *Engine) toIdleLocked(err *Error) {
	e.state.Phase = PhaseIdle
	e.state.InterimPreview = ""
	if err != nil {
		e.state.LastError = err
	}
	close(e.idle)
	e.notifyLocked()
}

func (e *Engine) notifyLocked() {
	if e.observer != nil {
		e.observer(e.state)
	}
}

// streamSink binds events to the stream they were opened for
type streamSink struct {
	engine *Engine
	stream uint64
}

func (s *streamSink) Result(ev Event) { s.engine.apply(s.stream, ev) }

func (s *streamSink) End() { s.engine.end(s.stream) }

func (s *streamSink) Fail(code string) { s.engine.fail(s.stream, code) }

// DTO converts the snapshot to its wire form
func (s State) DTO() entity.DictationStateDTO {
	dto := entity.DictationStateDTO{
		Phase:           string(s.Phase),
		FinalTranscript: s.FinalTranscript,
		InterimPreview:  s.InterimPreview,
	}
	if s.LastError != nil {
		dto.LastError = string(s.LastError.Kind)
		dto.LastErrorText = s.LastError.Message()
	}
	return dto
}
