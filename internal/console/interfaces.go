package console

import (
	"context"

	"github.com/futig/career-console/internal/entity"
)

// Gateway is the full career API surface a console uses
type Gateway interface {
	Upload(ctx context.Context, filename string, data []byte) (*entity.UploadResumeResponse, error)
	Analyze(ctx context.Context, req *entity.AnalyzeRequest) (*entity.AnalyzeResponse, error)
	Chat(ctx context.Context, req *entity.ChatRequest) (*entity.ChatResponse, error)
	Tailor(ctx context.Context, req *entity.TailorRequest) (*entity.TailorResult, error)
	GenerateQuestions(ctx context.Context, req *entity.GenerateQuestionsRequest) (*entity.GenerateQuestionsResponse, error)
	EvaluateAnswer(ctx context.Context, req *entity.EvaluateAnswerRequest) (*entity.Evaluation, error)
	GenerateProjects(ctx context.Context, req *entity.SessionRequest) (*entity.GenerateProjectsResponse, error)
	GenerateSchedule(ctx context.Context, req *entity.SessionRequest) (*entity.SchedulePlan, error)
	FindJobs(ctx context.Context, req *entity.FindJobsRequest) (*entity.JobSearch, error)
	Health(ctx context.Context) (*entity.HealthResponse, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

type Validator interface {
	ValidateResume(filename string, data []byte) error
	ValidatePreferences(prefs *entity.Preferences) error
	ValidateJobDescription(jd string) error
	NormalizeJobSearch(req *entity.JobsTaskRequest) error
}

type HistoryRepository interface {
	RecordAttempt(ctx context.Context, attempt *entity.EvaluationAttempt) error
	ListAttempts(ctx context.Context, sessionID string) ([]*entity.EvaluationAttempt, error)
}

// Notifier pushes console events to a client callback URL
type Notifier interface {
	SendSessionCreated(ctx context.Context, callbackURL string, consoleID string, session *entity.Session)
	SendSessionReset(ctx context.Context, callbackURL string, consoleID string)
	SendTaskFinished(ctx context.Context, callbackURL string, consoleID string, data *entity.CallbackTaskData)
	SendEvaluation(ctx context.Context, callbackURL string, consoleID string, data *entity.CallbackEvaluationData)
}
