package gateway

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/futig/career-console/internal/config"
	"github.com/futig/career-console/internal/entity"
	"github.com/futig/career-console/internal/integration/common"
	pkghttp "github.com/futig/career-console/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	uploadEndpoint            = "/upload-resume"
	analyzeEndpoint           = "/analyze"
	chatEndpoint              = "/chat"
	tailorEndpoint            = "/tailor-resume"
	generateQuestionsEndpoint = "/generate-questions"
	evaluateAnswerEndpoint    = "/evaluate-answer"
	generateProjectsEndpoint  = "/generate-projects"
	generateScheduleEndpoint  = "/generate-schedule"
	findJobsEndpoint          = "/find-jobs"
	healthEndpoint            = "/health"
	sessionEndpoint           = "/session/"
)

// Connector is a stateless wrapper over the career API.
// Calls are never retried and failures are returned verbatim.
type Connector struct {
	config    config.GatewayConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.GatewayConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

func transportError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, entity.ErrTransportFailure, err)
}

// Upload sends the résumé PDF and returns the new server session id
func (c *Connector) Upload(ctx context.Context, filename string, data []byte) (*entity.UploadResumeResponse, error) {
	ctxzap.Info(ctx, "uploading resume",
		zap.String("filename", filename),
		zap.Int("size", len(data)),
	)

	prepareBody := func(writer *multipart.Writer) error {
		part, err := writer.CreateFormFile("file", filename)
		if err != nil {
			return fmt.Errorf("create form file: %w", err)
		}

		if _, err := part.Write(data); err != nil {
			return fmt.Errorf("write file content: %w", err)
		}

		return nil
	}

	var resp entity.UploadResumeResponse
	if err := c.connector.DoMultipartRequest(ctx, http.MethodPost, uploadEndpoint, prepareBody, &resp); err != nil {
		return nil, transportError("upload resume", err)
	}

	if resp.SessionID == "" {
		return nil, transportError("upload resume", fmt.Errorf("response has no session_id"))
	}

	ctxzap.Info(ctx, "resume uploaded",
		zap.String("session_id", resp.SessionID),
		zap.Int("chars", resp.Chars),
	)

	return &resp, nil
}

func (c *Connector) Analyze(ctx context.Context, req *entity.AnalyzeRequest) (*entity.AnalyzeResponse, error) {
	ctxzap.Info(ctx, "analyzing resume",
		zap.String("session_id", req.SessionID),
		zap.String("target_role", req.TargetRole),
	)

	var resp entity.AnalyzeResponse
	if err := c.connector.DoRequest(ctx, http.MethodPost, analyzeEndpoint, req, &resp); err != nil {
		return nil, transportError("analyze", err)
	}

	if resp.GapAnalysis == nil {
		return nil, transportError("analyze", fmt.Errorf("response has no gap_analysis"))
	}

	ctxzap.Info(ctx, "resume analyzed", zap.Int("match_score", resp.GapAnalysis.MatchScore))

	return &resp, nil
}

func (c *Connector) Chat(ctx context.Context, req *entity.ChatRequest) (*entity.ChatResponse, error) {
	ctxzap.Debug(ctx, "sending chat message", zap.String("session_id", req.SessionID))

	var resp entity.ChatResponse
	if err := c.connector.DoRequest(ctx, http.MethodPost, chatEndpoint, req, &resp); err != nil {
		return nil, transportError("chat", err)
	}

	return &resp, nil
}

func (c *Connector) Tailor(ctx context.Context, req *entity.TailorRequest) (*entity.TailorResult, error) {
	ctxzap.Info(ctx, "tailoring resume",
		zap.String("session_id", req.SessionID),
		zap.Int("job_description_length", len(req.JobDescription)),
	)

	var resp entity.TailorResult
	if err := c.connector.DoRequest(ctx, http.MethodPost, tailorEndpoint, req, &resp); err != nil {
		return nil, transportError("tailor resume", err)
	}

	return &resp, nil
}

func (c *Connector) GenerateQuestions(ctx context.Context, req *entity.GenerateQuestionsRequest) (*entity.GenerateQuestionsResponse, error) {
	ctxzap.Info(ctx, "generating interview questions",
		zap.String("session_id", req.SessionID),
		zap.Int("num_questions", req.NumQuestions),
	)

	var resp entity.GenerateQuestionsResponse
	if err := c.connector.DoRequest(ctx, http.MethodPost, generateQuestionsEndpoint, req, &resp); err != nil {
		return nil, transportError("generate questions", err)
	}

	ctxzap.Info(ctx, "interview questions generated", zap.Int("count", len(resp.Questions)))

	return &resp, nil
}

func (c *Connector) EvaluateAnswer(ctx context.Context, req *entity.EvaluateAnswerRequest) (*entity.Evaluation, error) {
	ctxzap.Info(ctx, "evaluating answer",
		zap.String("session_id", req.SessionID),
		zap.Int("answer_length", len(req.Answer)),
	)

	var resp entity.Evaluation
	if err := c.connector.DoRequest(ctx, http.MethodPost, evaluateAnswerEndpoint, req, &resp); err != nil {
		return nil, transportError("evaluate answer", err)
	}

	ctxzap.Info(ctx, "answer evaluated", zap.Float64("score", resp.Score))

	return &resp, nil
}

func (c *Connector) GenerateProjects(ctx context.Context, req *entity.SessionRequest) (*entity.GenerateProjectsResponse, error) {
	ctxzap.Info(ctx, "generating portfolio projects", zap.String("session_id", req.SessionID))

	var resp entity.GenerateProjectsResponse
	if err := c.connector.DoRequest(ctx, http.MethodPost, generateProjectsEndpoint, req, &resp); err != nil {
		return nil, transportError("generate projects", err)
	}

	return &resp, nil
}

func (c *Connector) GenerateSchedule(ctx context.Context, req *entity.SessionRequest) (*entity.SchedulePlan, error) {
	ctxzap.Info(ctx, "generating study schedule", zap.String("session_id", req.SessionID))

	var resp entity.SchedulePlan
	if err := c.connector.DoRequest(ctx, http.MethodPost, generateScheduleEndpoint, req, &resp); err != nil {
		return nil, transportError("generate schedule", err)
	}

	return &resp, nil
}

func (c *Connector) FindJobs(ctx context.Context, req *entity.FindJobsRequest) (*entity.JobSearch, error) {
	ctxzap.Info(ctx, "searching jobs",
		zap.String("session_id", req.SessionID),
		zap.String("location", req.Location),
		zap.Int("num_results", req.NumResults),
	)

	var resp entity.JobSearch
	if err := c.connector.DoRequest(ctx, http.MethodPost, findJobsEndpoint, req, &resp); err != nil {
		return nil, transportError("find jobs", err)
	}

	ctxzap.Info(ctx, "jobs found",
		zap.Int("count", len(resp.Jobs)),
		zap.String("source", resp.Source),
	)

	return &resp, nil
}

func (c *Connector) Health(ctx context.Context) (*entity.HealthResponse, error) {
	var resp entity.HealthResponse
	if err := c.connector.DoRequest(ctx, http.MethodGet, healthEndpoint, nil, &resp); err != nil {
		return nil, transportError("health", err)
	}

	return &resp, nil
}

func (c *Connector) GetSession(ctx context.Context, sessionID string) (*entity.RemoteSession, error) {
	var resp entity.RemoteSession
	if err := c.connector.DoRequest(ctx, http.MethodGet, sessionEndpoint+url.PathEscape(sessionID), nil, &resp); err != nil {
		return nil, transportError("get session", err)
	}

	return &resp, nil
}

func (c *Connector) DeleteSession(ctx context.Context, sessionID string) error {
	var resp entity.DeleteSessionResponse
	if err := c.connector.DoRequest(ctx, http.MethodDelete, sessionEndpoint+url.PathEscape(sessionID), nil, &resp); err != nil {
		return transportError("delete session", err)
	}

	ctxzap.Debug(ctx, "remote session deleted",
		zap.String("session_id", sessionID),
		zap.String("message", resp.Message),
	)

	return nil
}

// Probe checks /health with the configured startup retry policy.
// It is used by the health command and at startup, never by feature calls.
func (c *Connector) Probe(ctx context.Context) (*entity.HealthResponse, error) {
	var resp *entity.HealthResponse
	err := c.config.HealthRetry.Do(ctx, func(ctx context.Context) error {
		var err error
		resp, err = c.Health(ctx)
		if err != nil {
			ctxzap.Warn(ctx, "career API health probe failed", zap.Error(err))
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	return resp, nil
}
