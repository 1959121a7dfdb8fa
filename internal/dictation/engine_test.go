package dictation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCapture struct {
	mu        sync.Mutex
	available bool
	startErr  error
	sinks     []Sink
	starts    int
	stops     int
}

func (f *fakeCapture) Available() bool { return f.available }

func (f *fakeCapture) Start(_ context.Context, sink Sink) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.starts++
	if f.startErr != nil {
		return f.startErr
	}
	f.sinks = append(f.sinks, sink)
	return nil
}

func (f *fakeCapture) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.stops++
	return nil
}

func (f *fakeCapture) sink(t *testing.T) Sink {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()

	require.NotEmpty(t, f.sinks)
	return f.sinks[len(f.sinks)-1]
}

func newListening(t *testing.T) (*Engine, *fakeCapture) {
	t.Helper()

	capture := &fakeCapture{available: true}
	e := NewEngine(capture, zap.NewNop())
	require.NoError(t, e.Start(context.Background()))
	require.Equal(t, PhaseListening, e.State().Phase)

	return e, capture
}

func TestEngine_TranscriptFollowsArrivalOrder(t *testing.T) {
	e, capture := newListening(t)
	sink := capture.sink(t)

	events := []Event{
		{Final: []string{"hello"}, Interim: "wor"},
		{Final: []string{"world", "again"}},
		{Interim: "and th"},
		{Final: []string{"then"}, Interim: "mo"},
	}

	for _, ev := range events {
		sink.Result(ev)
		assert.Equal(t, ev.Interim, e.State().InterimPreview)
	}

	assert.Equal(t, "hello world again then ", e.State().FinalTranscript)
}

func TestEngine_InterimNeverPersisted(t *testing.T) {
	e, capture := newListening(t)
	sink := capture.sink(t)

	sink.Result(Event{Final: []string{"I have three years "}})
	sink.Result(Event{Interim: "in Reac"})
	assert.Equal(t, "in Reac", e.State().InterimPreview)

	sink.Result(Event{Final: []string{"in React development "}})

	st := e.State()
	assert.Equal(t, "I have three years in React development ", st.FinalTranscript)
	assert.Empty(t, st.InterimPreview)
}

func TestEngine_StartWhileListeningIsNoop(t *testing.T) {
	e, capture := newListening(t)
	capture.sink(t).Result(Event{Final: []string{"keep me"}, Interim: "pending"})
	before := e.State()

	require.NoError(t, e.Start(context.Background()))

	assert.Equal(t, before, e.State())
	assert.Equal(t, 1, capture.starts)
}

func TestEngine_ErrorReturnsToIdle(t *testing.T) {
	cases := []struct {
		code string
		kind ErrorKind
	}{
		{"not-allowed", PermissionDenied},
		{"no-speech", NoSpeechDetected},
		{"audio-capture", DeviceBusy},
		{"language-not-supported", Unsupported},
		{"network", Other},
	}

	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			e, capture := newListening(t)
			sink := capture.sink(t)
			sink.Result(Event{Final: []string{"partial answer"}, Interim: "and"})

			sink.Fail(tc.code)

			st := e.State()
			assert.Equal(t, PhaseIdle, st.Phase)
			assert.Empty(t, st.InterimPreview)
			assert.Equal(t, "partial answer ", st.FinalTranscript)
			require.NotNil(t, st.LastError)
			assert.Equal(t, tc.kind, st.LastError.Kind)
		})
	}
}

func TestEngine_UnsupportedCapture(t *testing.T) {
	capture := &fakeCapture{available: false}
	e := NewEngine(capture, zap.NewNop())

	err := e.Start(context.Background())

	var derr *Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, Unsupported, derr.Kind)

	st := e.State()
	assert.Equal(t, PhaseIdle, st.Phase)
	require.NotNil(t, st.LastError)
	assert.Equal(t, Unsupported, st.LastError.Kind)
	assert.Zero(t, capture.starts)
}

func TestEngine_NilCaptureIsUnsupported(t *testing.T) {
	e := NewEngine(nil, zap.NewNop())

	require.Error(t, e.Start(context.Background()))
	assert.Equal(t, Unsupported, e.State().LastError.Kind)
}

func TestEngine_StartFailureClassified(t *testing.T) {
	capture := &fakeCapture{available: true, startErr: ErrDeviceBusy}
	e := NewEngine(capture, zap.NewNop())

	err := e.Start(context.Background())

	var derr *Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, DeviceBusy, derr.Kind)
	assert.Equal(t, PhaseIdle, e.State().Phase)
}

func TestEngine_StopKeepsTranscript(t *testing.T) {
	e, capture := newListening(t)
	sink := capture.sink(t)
	sink.Result(Event{Final: []string{"done"}, Interim: "almost"})

	e.Stop()

	st := e.State()
	assert.Equal(t, PhaseIdle, st.Phase)
	assert.Equal(t, "done ", st.FinalTranscript)
	assert.Empty(t, st.InterimPreview)
	assert.Equal(t, 1, capture.stops)

	sink.Result(Event{Final: []string{"late"}})
	assert.Equal(t, "done ", e.State().FinalTranscript)
}

func TestEngine_StaleStreamIgnored(t *testing.T) {
	e, capture := newListening(t)
	old := capture.sink(t)
	old.End()

	require.NoError(t, e.Start(context.Background()))
	old.Result(Event{Final: []string{"ghost"}})
	old.Fail("no-speech")

	st := e.State()
	assert.Equal(t, PhaseListening, st.Phase)
	assert.Empty(t, st.FinalTranscript)
	assert.Nil(t, st.LastError)
}

func TestEngine_StartClearsPreviousSession(t *testing.T) {
	e, capture := newListening(t)
	capture.sink(t).Fail("no-speech")
	require.NotNil(t, e.State().LastError)

	require.NoError(t, e.Start(context.Background()))

	st := e.State()
	assert.Empty(t, st.FinalTranscript)
	assert.Nil(t, st.LastError)
}

func TestEngine_ClearKeepsPhase(t *testing.T) {
	e, capture := newListening(t)
	capture.sink(t).Result(Event{Final: []string{"answer one"}, Interim: "x"})

	e.Clear()

	st := e.State()
	assert.Equal(t, PhaseListening, st.Phase)
	assert.Empty(t, st.FinalTranscript)
	assert.Empty(t, st.InterimPreview)
}

func TestEngine_AwaitIdle(t *testing.T) {
	e, capture := newListening(t)
	sink := capture.sink(t)

	go func() {
		sink.Result(Event{Final: []string{"from a clip"}})
		sink.End()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	st, err := e.AwaitIdle(ctx)
	require.NoError(t, err)
	assert.Equal(t, PhaseIdle, st.Phase)
	assert.Equal(t, "from a clip ", st.FinalTranscript)
}

func TestEngine_AwaitIdleTimeout(t *testing.T) {
	e, _ := newListening(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := e.AwaitIdle(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestEngine_Observer(t *testing.T) {
	capture := &fakeCapture{available: true}
	e := NewEngine(capture, zap.NewNop())

	var phases []Phase
	e.Observe(func(st State) { phases = append(phases, st.Phase) })

	require.NoError(t, e.Start(context.Background()))
	capture.sink(t).Result(Event{Interim: "hi"})
	e.Stop()

	assert.Equal(t, []Phase{PhaseListening, PhaseListening, PhaseIdle}, phases)
}

func TestClassify_Messages(t *testing.T) {
	assert.Equal(t, "No speech detected. Please try again.", Classify("no-speech").Message())
	assert.Equal(t, "Speech recognition error: aborted", Classify("aborted").Message())
	assert.Equal(t, Other, Classify("").Kind)
}

func TestEngine_DetachCapture(t *testing.T) {
	e, capture := newListening(t)
	other := &fakeCapture{available: true}

	e.DetachCapture(other)
	assert.Equal(t, PhaseListening, e.State().Phase)

	e.DetachCapture(capture)
	assert.Equal(t, PhaseIdle, e.State().Phase)
	assert.Equal(t, 1, capture.stops)

	err := e.Start(context.Background())
	require.Error(t, err)
	assert.Equal(t, Unsupported, e.State().LastError.Kind)
}
