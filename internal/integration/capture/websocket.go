package capture

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/futig/career-console/internal/dictation"
	"github.com/futig/career-console/internal/entity"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 5 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 << 10
	outboxSize     = 64
)

type clientFrame struct {
	Type      string   `json:"type"`
	Supported bool     `json:"supported,omitempty"`
	Final     []string `json:"final,omitempty"`
	Interim   string   `json:"interim,omitempty"`
	Code      string   `json:"code,omitempty"`
}

type serverFrame struct {
	Type  string                    `json:"type"`
	State *entity.DictationStateDTO `json:"state,omitempty"`
}

// WebSocketCapture relays speech recognition running in the browser.
// The browser reports capability with a hello frame and streams
// result, end and error frames while a capture is active.
type WebSocketCapture struct {
	conn   *websocket.Conn
	logger *zap.Logger
	outbox chan serverFrame

	mu        sync.Mutex
	supported bool
	closed    bool
	sink      dictation.Sink
}

func NewWebSocketCapture(conn *websocket.Conn, logger *zap.Logger) *WebSocketCapture {
	return &WebSocketCapture{
		conn:   conn,
		logger: logger,
		outbox: make(chan serverFrame, outboxSize),
	}
}

func (w *WebSocketCapture) Available() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.supported && !w.closed
}

func (w *WebSocketCapture) Start(_ context.Context, sink dictation.Sink) error {
	w.mu.Lock()
	if !w.supported || w.closed {
		w.mu.Unlock()
		return dictation.ErrCaptureUnavailable
	}
	w.sink = sink
	w.mu.Unlock()

	if !w.enqueue(serverFrame{Type: "start"}) {
		return dictation.ErrDeviceBusy
	}
	return nil
}

func (w *WebSocketCapture) Stop() error {
	w.mu.Lock()
	w.sink = nil
	closed := w.closed
	w.mu.Unlock()

	if !closed {
		w.enqueue(serverFrame{Type: "stop"})
	}
	return nil
}

// PushState sends the dictation state to the browser; it never blocks
func (w *WebSocketCapture) PushState(st dictation.State) {
	dto := st.DTO()
	w.enqueue(serverFrame{Type: "state", State: &dto})
}

func (w *WebSocketCapture) enqueue(f serverFrame) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return false
	}
	select {
	case w.outbox <- f:
		return true
	default:
		w.logger.Warn("dictation websocket outbox full, dropping frame", zap.String("type", f.Type))
		return false
	}
}

// Serve runs the read and write loops until the client disconnects or ctx is done
func (w *WebSocketCapture) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	writeErr := make(chan error, 1)
	go func() {
		writeErr <- w.writeLoop(ctx)
		cancel()
	}()

	go func() {
		<-ctx.Done()
		w.conn.Close()
	}()

	err := w.readLoop()

	w.mu.Lock()
	w.closed = true
	sink := w.sink
	w.sink = nil
	w.mu.Unlock()

	cancel()
	if sink != nil {
		sink.Fail("network")
	}

	if werr := <-writeErr; werr != nil && err == nil {
		err = werr
	}
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (w *WebSocketCapture) readLoop() error {
	w.conn.SetReadLimit(maxMessageSize)
	_ = w.conn.SetReadDeadline(time.Now().Add(pongWait))
	w.conn.SetPongHandler(func(string) error {
		return w.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var f clientFrame
		if err := w.conn.ReadJSON(&f); err != nil {
			return err
		}
		w.handle(f)
	}
}

func (w *WebSocketCapture) handle(f clientFrame) {
	w.mu.Lock()
	if f.Type == "hello" {
		w.supported = f.Supported
		w.mu.Unlock()
		w.logger.Debug("dictation client attached", zap.Bool("supported", f.Supported))
		return
	}
	sink := w.sink
	if f.Type == "end" || f.Type == "error" {
		w.sink = nil
	}
	w.mu.Unlock()

	if sink == nil {
		return
	}

	switch f.Type {
	case "result":
		sink.Result(dictation.Event{Final: f.Final, Interim: f.Interim})
	case "end":
		sink.End()
	case "error":
		sink.Fail(f.Code)
	default:
		w.logger.Debug("ignoring unknown dictation frame", zap.String("type", f.Type))
	}
}

func (w *WebSocketCapture) writeLoop(ctx context.Context) error {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = w.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return nil
		case f := <-w.outbox:
			_ = w.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := w.conn.WriteJSON(f); err != nil {
				return err
			}
		case <-ticker.C:
			if err := w.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return err
			}
		}
	}
}
