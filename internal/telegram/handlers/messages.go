package handlers

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/futig/career-console/internal/console"
	"github.com/futig/career-console/internal/entity"
	"github.com/futig/career-console/internal/integration/capture"
	"github.com/futig/career-console/internal/pkg/logger"
	"github.com/futig/career-console/internal/telegram/render"
	"github.com/futig/career-console/internal/telegram/state"
	"github.com/futig/career-console/internal/usecase/session"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const voiceFilename = "voice.wav"

// HandleMessage routes a non-command message by its content and the chat mode
func (h *Handler) HandleMessage(ctx context.Context, msg *Message) {
	c, ctx := h.console(ctx, msg)

	switch {
	case msg.Document != nil:
		h.handleResume(logger.WithAction(ctx, "resume_upload"), c, msg)
	case msg.Voice != nil:
		h.handleVoice(logger.WithAction(ctx, "voice_message"), c, msg)
	case strings.TrimSpace(msg.Text) != "":
		h.handleText(ctx, c, msg, msg.Text)
	default:
		h.send(msg.ChatID, render.MsgUnsupported, nil)
	}
}

// handleResume keeps the PDF until the user names the target role
func (h *Handler) handleResume(ctx context.Context, c *console.Console, msg *Message) {
	doc := msg.Document
	if doc.MimeType != "application/pdf" && !strings.EqualFold(filepath.Ext(doc.FileName), ".pdf") {
		h.send(msg.ChatID, render.ErrNotPDF, nil)
		return
	}
	if c.Session.Current() != nil {
		h.HandleError(ctx, msg.ChatID, entity.ErrSessionActive)
		return
	}

	data, err := h.files.Download(ctx, doc.FileID)
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return
	}

	filename := doc.FileName
	if filename == "" {
		filename = "resume.pdf"
	}

	_, err = h.states.Update(ctx, msg.UserID, func(st *state.ChatState) {
		st.Mode = state.ModeAwaitRole
		st.Resume = &state.PendingResume{Filename: filename, Data: data}
	})
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return
	}

	ctxzap.Info(ctx, "resume received", zap.String("filename", filename), zap.Int("size", len(data)))
	h.send(msg.ChatID, render.MsgAskRole, nil)
}

func (h *Handler) handleText(ctx context.Context, c *console.Console, msg *Message, text string) {
	st, err := h.states.Get(ctx, msg.UserID)
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return
	}

	switch st.Mode {
	case state.ModeAwaitRole:
		h.createSession(logger.WithAction(ctx, "create_session"), c, msg, st, text)
	case state.ModeAwaitJD:
		h.tailor(logger.WithAction(ctx, "tailor"), c, msg, text)
	case state.ModeInterview:
		h.answerTyped(logger.WithAction(ctx, "typed_answer"), c, msg, text)
	default:
		h.chat(logger.WithAction(ctx, "mentor_chat"), c, msg, text)
	}
}

func (h *Handler) createSession(ctx context.Context, c *console.Console, msg *Message, st *state.ChatState, role string) {
	if st.Resume == nil {
		h.setMode(ctx, msg.UserID, state.ModeIdle)
		h.send(msg.ChatID, render.MsgSendResume, nil)
		return
	}

	h.send(msg.ChatID, render.MsgAnalyzing, nil)

	typing := startTyping(ctx, h.sender, msg.ChatID)
	s, err := c.CreateSession(ctx,
		session.Resume{Filename: st.Resume.Filename, Data: st.Resume.Data},
		entity.Preferences{TargetRole: strings.TrimSpace(role)},
	)
	typing.Stop()
	if err != nil {
		// the résumé stays pending so the user can retry with another role
		h.HandleError(ctx, msg.ChatID, err)
		return
	}

	h.setMode(ctx, msg.UserID, state.ModeIdle)
	h.send(msg.ChatID, render.AnalysisCard(s), h.keyboard.MainMenuKeyboard())

	if greeting := c.Mentor.Snapshot().Messages; len(greeting) > 0 {
		h.send(msg.ChatID, greeting[0].Content, nil)
	}
}

// answerTyped records text as the answer to the active question and evaluates it
func (h *Handler) answerTyped(ctx context.Context, c *console.Console, msg *Message, text string) {
	q, ok := c.Interview.Active()
	if !ok {
		h.setMode(ctx, msg.UserID, state.ModeIdle)
		h.send(msg.ChatID, render.MsgNoInterview, nil)
		return
	}

	if err := c.Interview.Validate(q.Index, text); err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return
	}

	ans := entity.Answer{Mode: entity.AnswerModeText, Content: text}
	h.evaluate(ctx, c, msg, q.Index, func(ctx context.Context) (*entity.Evaluation, error) {
		return c.Interview.SubmitAnswer(ctx, q.Index, ans)
	})
}

// handleVoice transcribes a voice note through the dictation engine. In an
// interview it answers the active question; otherwise the transcript is
// treated like typed text.
func (h *Handler) handleVoice(ctx context.Context, c *console.Console, msg *Message) {
	transcript, err := h.transcribe(ctx, c, msg)
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return
	}

	st, err := h.states.Get(ctx, msg.UserID)
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return
	}

	h.send(msg.ChatID, "🗣 "+transcript, nil)

	q, ok := c.Interview.Active()
	if st.Mode != state.ModeInterview || !ok {
		h.handleText(ctx, c, msg, transcript)
		return
	}

	h.evaluate(ctx, c, msg, q.Index, func(ctx context.Context) (*entity.Evaluation, error) {
		return c.Interview.SubmitAnswer(ctx, q.Index, entity.Answer{Mode: entity.AnswerModeVoice, Content: transcript})
	})
}

// transcribe plays the voice note into the console's dictation engine as a
// fresh transcript and waits for the stream to end
func (h *Handler) transcribe(ctx context.Context, c *console.Console, msg *Message) (string, error) {
	ctxzap.Debug(ctx, "voice note received", zap.Int("duration", msg.Voice.Duration))

	typing := StartTyping(ctx, h.sender, msg.ChatID, tgbotapi.ChatRecordVoice)
	defer typing.Stop()

	raw, err := h.files.Download(ctx, msg.Voice.FileID)
	if err != nil {
		return "", err
	}
	audio, err := h.convertAudio(ctx, raw)
	if err != nil {
		return "", err
	}

	clip := capture.NewClipCapture(h.transcriber, voiceFilename, audio, h.logger)
	c.Dictation.SetCapture(clip)
	defer c.Dictation.DetachCapture(clip)

	c.Dictation.Clear()
	if err := c.Dictation.Start(ctx); err != nil {
		return "", err
	}

	st, err := c.Dictation.AwaitIdle(ctx)
	if err != nil {
		c.Dictation.Stop()
		return "", err
	}
	if st.LastError != nil {
		return "", st.LastError
	}

	transcript := strings.TrimSpace(st.FinalTranscript)
	if transcript == "" {
		return "", entity.ErrEmptyAnswer
	}
	return transcript, nil
}

func (h *Handler) evaluate(
	ctx context.Context,
	c *console.Console,
	msg *Message,
	index int,
	submit func(ctx context.Context) (*entity.Evaluation, error),
) {
	h.send(msg.ChatID, render.MsgEvaluating, nil)

	typing := startTyping(ctx, h.sender, msg.ChatID)
	ev, err := submit(ctx)
	typing.Stop()
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return
	}

	total := len(c.Interview.Snapshot().Questions)
	h.send(msg.ChatID, render.EvaluationCard(ev), h.keyboard.EvaluationKeyboard(index, total))
}

func (h *Handler) chat(ctx context.Context, c *console.Console, msg *Message, text string) {
	typing := startTyping(ctx, h.sender, msg.ChatID)
	reply, err := c.Mentor.Send(ctx, text)
	typing.Stop()
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return
	}

	h.send(msg.ChatID, reply.Content, nil)
}
