package capture

import (
	"context"
	"sync"

	"github.com/futig/career-console/internal/dictation"
	"go.uber.org/zap"
)

type Transcriber interface {
	TranscribeBytes(ctx context.Context, audioData []byte, filename string) (string, error)
}

// ClipCapture feeds one recorded voice clip through speech recognition.
// The transcription arrives as a single finalized segment followed by end.
type ClipCapture struct {
	transcriber Transcriber
	filename    string
	data        []byte
	logger      *zap.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	running uint64
}

func NewClipCapture(transcriber Transcriber, filename string, data []byte, logger *zap.Logger) *ClipCapture {
	return &ClipCapture{
		transcriber: transcriber,
		filename:    filename,
		data:        data,
		logger:      logger,
	}
}

func (c *ClipCapture) Available() bool {
	return c.transcriber != nil && len(c.data) > 0
}

func (c *ClipCapture) Start(ctx context.Context, sink dictation.Sink) error {
	if !c.Available() {
		return dictation.ErrCaptureUnavailable
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.mu.Lock()
	if c.cancel != nil {
		c.mu.Unlock()
		cancel()
		return dictation.ErrDeviceBusy
	}
	c.cancel = cancel
	c.running++
	run := c.running
	c.mu.Unlock()

	go func() {
		defer c.finish(run)

		text, err := c.transcriber.TranscribeBytes(runCtx, c.data, c.filename)
		if runCtx.Err() != nil {
			return
		}

		switch {
		case err != nil:
			c.logger.Warn("voice clip transcription failed", zap.Error(err))
			sink.Fail("transcription-failed")
		case text == "":
			sink.Fail("no-speech")
		default:
			sink.Result(dictation.Event{Final: []string{text}})
			sink.End()
		}
	}()

	return nil
}

func (c *ClipCapture) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	return nil
}

func (c *ClipCapture) finish(run uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running == run && c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}
