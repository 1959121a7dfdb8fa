package mentor

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/futig/career-console/internal/entity"
	"github.com/futig/career-console/internal/usecase/session"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const Feature = "chat"

// QuickQuestions are the one-tap prompts offered next to the chat
var QuickQuestions = []string{
	"What's my biggest skill gap?",
	"Which course should I start first?",
	"How long to be job-ready?",
	"Suggest 3 projects I can build now",
	"How to improve my resume?",
}

type Gateway interface {
	Chat(ctx context.Context, req *entity.ChatRequest) (*entity.ChatResponse, error)
}

type SessionGate interface {
	RequireTicket() (session.Ticket, error)
	Valid(t session.Ticket) bool
}

// Mentor is the chat with the AI career mentor. History order matches call order.
type Mentor struct {
	gateway Gateway
	gate    SessionGate

	mu       sync.Mutex
	messages []entity.ChatMessage
	pending  bool
	errMsg   string
	epoch    uint64
}

func New(gateway Gateway, gate SessionGate) *Mentor {
	return &Mentor{
		gateway: gateway,
		gate:    gate,
	}
}

// Greeting is the first assistant message after an analysis
func Greeting(s *entity.Session) string {
	name := "there"
	if s.Profile != nil {
		if fields := strings.Fields(s.Profile.Name); len(fields) > 0 {
			name = fields[0]
		}
	}

	var score int
	var summary string
	if s.Analysis != nil {
		score = s.Analysis.MatchScore
		summary = s.Analysis.Summary
	}

	return fmt.Sprintf(
		"Hey %s! 👋 I've analyzed your resume for **%s** roles.\n\nYour match score is **%d%%**. %s\n\nAsk me anything: skill gaps, salary tips, interview prep, or project ideas!",
		name, s.Preferences.TargetRole, score, summary,
	)
}

// Seed replaces the history with a single assistant greeting
func (m *Mentor) Seed(greeting string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.messages = []entity.ChatMessage{{
		Role:      entity.ChatRoleAssistant,
		Content:   greeting,
		CreatedAt: time.Now().UTC(),
	}}
	m.errMsg = ""
}

// Send records the user message, asks the mentor and records the reply
func (m *Mentor) Send(ctx context.Context, message string) (*entity.ChatMessage, error) {
	ticket, err := m.gate.RequireTicket()
	if err != nil {
		return nil, err
	}

	message = strings.TrimSpace(message)
	if message == "" {
		return nil, entity.ErrEmptyMessage
	}

	m.mu.Lock()
	if m.pending {
		m.mu.Unlock()
		return nil, entity.ErrChatBusy
	}
	m.pending = true
	m.errMsg = ""
	epoch := m.epoch
	m.messages = append(m.messages, entity.ChatMessage{
		Role:      entity.ChatRoleUser,
		Content:   message,
		CreatedAt: time.Now().UTC(),
	})
	m.mu.Unlock()

	resp, err := m.gateway.Chat(ctx, &entity.ChatRequest{
		SessionID: ticket.SessionID,
		Message:   message,
	})

	m.mu.Lock()
	defer m.mu.Unlock()

	if epoch != m.epoch {
		ctxzap.Debug(ctx, "dropping chat reply for discarded session")
		return nil, entity.ErrStaleResult
	}
	m.pending = false
	if !m.gate.Valid(ticket) {
		return nil, entity.ErrStaleResult
	}

	if err != nil {
		ferr := &entity.FeatureError{Feature: Feature, Kind: entity.ErrGenerationFailed, Err: err}
		m.errMsg = entity.RawMessage(err)
		ctxzap.Warn(ctx, "mentor chat failed", zap.Error(err))
		return nil, ferr
	}

	reply := entity.ChatMessage{
		Role:      entity.ChatRoleAssistant,
		Content:   resp.Reply,
		CreatedAt: time.Now().UTC(),
	}
	m.messages = append(m.messages, reply)

	return &reply, nil
}

// Reset clears the history; a reply still in flight is dropped
func (m *Mentor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.epoch++
	m.messages = nil
	m.pending = false
	m.errMsg = ""
}

func (m *Mentor) Snapshot() entity.MentorStateDTO {
	m.mu.Lock()
	defer m.mu.Unlock()

	messages := slices.Clone(m.messages)
	if messages == nil {
		messages = []entity.ChatMessage{}
	}

	return entity.MentorStateDTO{
		Messages:       messages,
		Pending:        m.pending,
		Error:          m.errMsg,
		QuickQuestions: slices.Clone(QuickQuestions),
	}
}
