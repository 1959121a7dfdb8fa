package interview

import (
	"context"

	"github.com/futig/career-console/internal/entity"
	"github.com/futig/career-console/internal/usecase/session"
)

type Gateway interface {
	GenerateQuestions(ctx context.Context, req *entity.GenerateQuestionsRequest) (*entity.GenerateQuestionsResponse, error)
	EvaluateAnswer(ctx context.Context, req *entity.EvaluateAnswerRequest) (*entity.Evaluation, error)
}

type SessionGate interface {
	RequireTicket() (session.Ticket, error)
	Valid(t session.Ticket) bool
}

// Dictation is the part of the dictation engine the coordinator drives
type Dictation interface {
	Reset()
	Clear()
	Transcript() string
}

// HistoryRecorder stores successful evaluations as practice history
type HistoryRecorder interface {
	RecordAttempt(ctx context.Context, attempt *entity.EvaluationAttempt) error
}
