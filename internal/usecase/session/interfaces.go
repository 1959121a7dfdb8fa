package session

import (
	"context"

	"github.com/futig/career-console/internal/entity"
)

type Gateway interface {
	Upload(ctx context.Context, filename string, data []byte) (*entity.UploadResumeResponse, error)
	Analyze(ctx context.Context, req *entity.AnalyzeRequest) (*entity.AnalyzeResponse, error)
	DeleteSession(ctx context.Context, sessionID string) error
	Health(ctx context.Context) (*entity.HealthResponse, error)
}

type Validator interface {
	ValidateResume(filename string, data []byte) error
	ValidatePreferences(prefs *entity.Preferences) error
}
