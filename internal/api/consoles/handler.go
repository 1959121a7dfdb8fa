package consoles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/futig/career-console/internal/config"
	"github.com/futig/career-console/internal/console"
	"github.com/futig/career-console/internal/entity"
	"github.com/futig/career-console/internal/integration/capture"
	"github.com/futig/career-console/internal/pkg/formatter"
	"github.com/futig/career-console/internal/pkg/logger"
	"github.com/futig/career-console/internal/pkg/response"
	"github.com/futig/career-console/internal/pkg/validator"
	"github.com/futig/career-console/internal/task"
	"github.com/futig/career-console/internal/usecase/interview"
	"github.com/futig/career-console/internal/usecase/session"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// multipart headers and preference fields on top of the résumé itself
const formOverhead = 1 << 20

type Handler struct {
	registry  Registry
	validator *validator.Validator
	formats   *formatter.Factory
	notifier  ErrorNotifier
	cfg       config.ConsoleConfig
	upgrader  websocket.Upgrader
}

func NewHandler(
	registry Registry,
	validator *validator.Validator,
	formats *formatter.Factory,
	notifier ErrorNotifier,
	cfg config.ConsoleConfig,
) *Handler {
	h := &Handler{
		registry:  registry,
		validator: validator,
		formats:   formats,
		notifier:  notifier,
		cfg:       cfg,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// CreateConsole handles POST /consoles
func (h *Handler) CreateConsole(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "CreateConsole")

	var req entity.CreateConsoleRequest
	if err := decodeJSON(r, &req, true); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		h.handleError(ctx, w, err)
		return
	}

	c := h.registry.Create(req.CallbackURL)
	ctxzap.Info(ctx, "console created", zap.String("console_id", c.ID), zap.Bool("callback", req.CallbackURL != ""))

	response.Created(w, entity.CreateConsoleResponse{ID: c.ID})
}

// GetConsole handles GET /consoles/{id}
func (h *Handler) GetConsole(w http.ResponseWriter, r *http.Request) {
	c, _, ok := h.console(w, r, "GetConsole")
	if !ok {
		return
	}

	response.Success(w, c.State())
}

// DeleteConsole handles DELETE /consoles/{id}
func (h *Handler) DeleteConsole(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(logger.WithConsole(r.Context(), chi.URLParam(r, "id")), "DeleteConsole")

	if err := h.registry.Delete(chi.URLParam(r, "id")); err != nil {
		h.handleError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "console deleted")
	response.NoContent(w)
}

// CreateSession handles POST /consoles/{id}/session - upload and analyze a résumé
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	c, ctx, ok := h.console(w, r, "CreateSession")
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxResumeSize+formOverhead)
	if err := r.ParseMultipartForm(h.cfg.MaxResumeSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.respondError(ctx, w, http.StatusRequestEntityTooLarge, "resume file is too large", err)
			return
		}
		h.respondError(ctx, w, http.StatusBadRequest, "invalid multipart form", err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.handleError(ctx, w, fmt.Errorf("%w: file", entity.ErrMissingField))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "failed to read resume", err)
		return
	}

	prefs := preferencesFromForm(r)
	ctxzap.Info(ctx, "creating session",
		zap.String("filename", header.Filename),
		zap.Int("size", len(data)),
		zap.String("target_role", prefs.TargetRole),
	)

	s, err := c.CreateSession(ctx, session.Resume{Filename: header.Filename, Data: data}, prefs)
	if err != nil {
		h.handleError(ctx, w, err)
		return
	}

	response.Created(w, s)
}

// ResetSession handles DELETE /consoles/{id}/session - start over
func (h *Handler) ResetSession(w http.ResponseWriter, r *http.Request) {
	c, ctx, ok := h.console(w, r, "ResetSession")
	if !ok {
		return
	}

	c.Reset(ctx)
	response.NoContent(w)
}

// SendChat handles POST /consoles/{id}/chat
func (h *Handler) SendChat(w http.ResponseWriter, r *http.Request) {
	c, ctx, ok := h.console(w, r, "SendChat")
	if !ok {
		return
	}

	var req entity.SendChatRequest
	if err := decodeJSON(r, &req, false); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	reply, err := c.Mentor.Send(ctx, req.Message)
	if err != nil {
		h.handleError(ctx, w, err)
		return
	}

	response.Success(w, reply)
}

// RunTailor handles POST /consoles/{id}/tailor
func (h *Handler) RunTailor(w http.ResponseWriter, r *http.Request) {
	c, ctx, ok := h.console(w, r, "RunTailor")
	if !ok {
		return
	}

	var req entity.TailorTaskRequest
	if err := decodeJSON(r, &req, false); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := h.precheck(c, func() error { return h.validator.ValidateJobDescription(req.JobDescription) }); err != nil {
		h.handleError(ctx, w, err)
		return
	}

	bgCtx := background(ctx, "RunTailor")
	go func() {
		_, err := c.Tailor.Run(bgCtx, req.JobDescription)
		logAsync(bgCtx, err)
	}()

	response.Accepted(w, console.FeatureTailor)
}

// RunQuestions handles POST /consoles/{id}/questions
func (h *Handler) RunQuestions(w http.ResponseWriter, r *http.Request) {
	c, ctx, ok := h.console(w, r, "RunQuestions")
	if !ok {
		return
	}

	var req entity.QuestionsTaskRequest
	if err := decodeJSON(r, &req, true); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	var count int
	err := h.precheck(c, func() error {
		n, err := h.validator.ValidateQuestionCount(req.NumQuestions)
		count = n
		return err
	})
	if err != nil {
		h.handleError(ctx, w, err)
		return
	}

	bgCtx := background(ctx, "RunQuestions")
	go func() {
		_, err := c.Questions.Run(bgCtx, count)
		logAsync(bgCtx, err)
	}()

	response.Accepted(w, console.FeatureQuestions)
}

// RunProjects handles POST /consoles/{id}/projects
func (h *Handler) RunProjects(w http.ResponseWriter, r *http.Request) {
	c, ctx, ok := h.console(w, r, "RunProjects")
	if !ok {
		return
	}
	if err := h.precheck(c, nil); err != nil {
		h.handleError(ctx, w, err)
		return
	}

	bgCtx := background(ctx, "RunProjects")
	go func() {
		_, err := c.Projects.Run(bgCtx, struct{}{})
		logAsync(bgCtx, err)
	}()

	response.Accepted(w, console.FeatureProjects)
}

// RunSchedule handles POST /consoles/{id}/schedule
func (h *Handler) RunSchedule(w http.ResponseWriter, r *http.Request) {
	c, ctx, ok := h.console(w, r, "RunSchedule")
	if !ok {
		return
	}
	if err := h.precheck(c, nil); err != nil {
		h.handleError(ctx, w, err)
		return
	}

	bgCtx := background(ctx, "RunSchedule")
	go func() {
		_, err := c.Schedule.Run(bgCtx, struct{}{})
		logAsync(bgCtx, err)
	}()

	response.Accepted(w, console.FeatureSchedule)
}

// DownloadSchedule handles GET /consoles/{id}/schedule.ics. The calendar text
// is served exactly as the career API produced it.
func (h *Handler) DownloadSchedule(w http.ResponseWriter, r *http.Request) {
	c, ctx, ok := h.console(w, r, "DownloadSchedule")
	if !ok {
		return
	}

	snap := c.Schedule.Snapshot()
	if snap.Status != task.StatusDone || snap.Result == nil || snap.Result.ICSDownload == "" {
		h.respondError(ctx, w, http.StatusNotFound, "no schedule generated yet", nil)
		return
	}

	response.Attachment(w, "text/calendar; charset=utf-8", "study-schedule.ics", []byte(snap.Result.ICSDownload))
}

// RunJobs handles POST /consoles/{id}/jobs
func (h *Handler) RunJobs(w http.ResponseWriter, r *http.Request) {
	c, ctx, ok := h.console(w, r, "RunJobs")
	if !ok {
		return
	}

	var req entity.JobsTaskRequest
	if err := decodeJSON(r, &req, true); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := h.precheck(c, func() error { return h.validator.NormalizeJobSearch(&req) }); err != nil {
		h.handleError(ctx, w, err)
		return
	}

	bgCtx := background(ctx, "RunJobs")
	go func() {
		_, err := c.Jobs.Run(bgCtx, req)
		logAsync(bgCtx, err)
	}()

	response.Accepted(w, console.FeatureJobs)
}

// SelectQuestion handles PUT /consoles/{id}/interview/active
func (h *Handler) SelectQuestion(w http.ResponseWriter, r *http.Request) {
	c, ctx, ok := h.console(w, r, "SelectQuestion")
	if !ok {
		return
	}

	var req entity.SelectQuestionRequest
	if err := decodeJSON(r, &req, false); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := c.Interview.SelectQuestion(req.Index); err != nil {
		h.handleError(ctx, w, err)
		return
	}

	response.Success(w, c.Interview.Snapshot())
}

// RecordAnswer handles PUT /consoles/{id}/interview/answers/{index}
func (h *Handler) RecordAnswer(w http.ResponseWriter, r *http.Request) {
	c, ctx, ok := h.console(w, r, "RecordAnswer")
	if !ok {
		return
	}

	index, err := indexParam(r)
	if err != nil {
		h.handleError(ctx, w, err)
		return
	}

	var req entity.RecordAnswerRequest
	if err := decodeJSON(r, &req, false); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := c.Interview.RecordTypedAnswer(index, req.Text); err != nil {
		h.handleError(ctx, w, err)
		return
	}

	response.Success(w, c.Interview.Snapshot())
}

// Evaluate handles POST /consoles/{id}/interview/answers/{index}/evaluate.
// Voice mode stops dictation and evaluates the transcript; text mode evaluates
// the given answer or, without one, the stored typed answer.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	c, ctx, ok := h.console(w, r, "Evaluate")
	if !ok {
		return
	}

	index, err := indexParam(r)
	if err != nil {
		h.handleError(ctx, w, err)
		return
	}
	ctx = logger.AddFields(ctx, zap.Int("question_index", index))

	var req entity.EvaluateRequest
	if err := decodeJSON(r, &req, true); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Mode == "" {
		req.Mode = entity.AnswerModeText
	}

	ans := entity.Answer{Mode: req.Mode}
	switch req.Mode {
	case entity.AnswerModeVoice:
		c.Dictation.Stop()
		ans.Content = c.Dictation.Transcript()
	case entity.AnswerModeText:
		if req.Answer != nil {
			ans.Content = *req.Answer
		} else if stored, ok := c.Interview.Answer(index); ok && stored.Mode == entity.AnswerModeText {
			ans.Content = stored.Content
		}
	default:
		h.handleError(ctx, w, fmt.Errorf("%w: mode %q", entity.ErrInvalidParameter, req.Mode))
		return
	}

	if err := c.Interview.Validate(index, ans.Content); err != nil {
		h.handleError(ctx, w, err)
		return
	}
	if err := c.Interview.RecordAnswer(index, ans); err != nil {
		h.handleError(ctx, w, err)
		return
	}

	// ans is fixed here; edits or a new dictation after the 202 do not change what is evaluated
	bgCtx := background(ctx, "Evaluate")
	go func() {
		_, err := c.Interview.EvaluateAnswer(bgCtx, index, ans)
		logAsync(bgCtx, err)

		if err != nil && !errors.Is(err, entity.ErrStaleResult) && c.CallbackURL != "" && h.notifier != nil {
			h.notifier.SendError(bgCtx, c.CallbackURL, c.ID, "evaluation failed", map[string]any{
				"feature":        interview.FeatureEvaluation,
				"question_index": index,
				"error":          entity.RawMessage(err),
			})
		}
	}()

	response.Accepted(w, interview.FeatureEvaluation)
}

// GetCompanies handles GET /consoles/{id}/companies
func (h *Handler) GetCompanies(w http.ResponseWriter, r *http.Request) {
	c, ctx, ok := h.console(w, r, "GetCompanies")
	if !ok {
		return
	}

	list, err := c.Companies()
	if err != nil {
		h.handleError(ctx, w, err)
		return
	}

	response.Success(w, list)
}

// GetReport handles GET /consoles/{id}/report?format=markdown|docx|pdf
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	c, ctx, ok := h.console(w, r, "GetReport")
	if !ok {
		return
	}

	format := entity.ResultFormat(r.URL.Query().Get("format"))
	if format == "" {
		format = entity.FormatMarkdown
	}

	f, err := h.formats.Create(format)
	if err != nil {
		h.handleError(ctx, w, err)
		return
	}

	report, err := c.Report()
	if err != nil {
		h.handleError(ctx, w, err)
		return
	}

	data, err := f.Format(report)
	if err != nil {
		h.respondError(ctx, w, http.StatusInternalServerError, "failed to render report", err)
		return
	}

	response.Attachment(w, f.ContentType(), "interview-report"+f.FileExtension(), data)
}

// GetHistory handles GET /consoles/{id}/history
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	c, ctx, ok := h.console(w, r, "GetHistory")
	if !ok {
		return
	}

	attempts, err := c.History(ctx)
	if err != nil {
		h.handleError(ctx, w, err)
		return
	}

	response.Success(w, attempts)
}

// DictationCommand handles POST /consoles/{id}/dictation/{start|stop|clear}
func (h *Handler) DictationCommand(w http.ResponseWriter, r *http.Request) {
	c, ctx, ok := h.console(w, r, "DictationCommand")
	if !ok {
		return
	}

	switch chi.URLParam(r, "command") {
	case "start":
		if err := c.Dictation.Start(ctx); err != nil {
			h.handleError(ctx, w, err)
			return
		}
	case "stop":
		c.Dictation.Stop()
	case "clear":
		c.Dictation.Clear()
	default:
		h.respondError(ctx, w, http.StatusNotFound, "unknown dictation command", nil)
		return
	}

	response.Success(w, c.Dictation.State().DTO())
}

// DictationStream handles GET /consoles/{id}/dictation/stream. The browser
// runs speech recognition and relays it over the socket; while connected it
// is the console's capture.
func (h *Handler) DictationStream(w http.ResponseWriter, r *http.Request) {
	c, ctx, ok := h.console(w, r, "DictationStream")
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		ctxzap.Warn(ctx, "websocket upgrade failed", zap.Error(err))
		return
	}

	ws := capture.NewWebSocketCapture(conn, ctxzap.Extract(ctx))
	c.Dictation.SetCapture(ws)
	c.Dictation.Observe(ws.PushState)
	ws.PushState(c.Dictation.State())

	ctxzap.Info(ctx, "dictation stream attached")
	if err := ws.Serve(ctx); err != nil {
		ctxzap.Debug(ctx, "dictation stream closed with error", zap.Error(err))
	}

	c.Dictation.DetachCapture(ws)
	ctxzap.Info(ctx, "dictation stream detached")
}

func (h *Handler) console(w http.ResponseWriter, r *http.Request, action string) (*console.Console, context.Context, bool) {
	id := chi.URLParam(r, "id")
	ctx := logger.WithAction(logger.WithConsole(r.Context(), id), action)

	c, err := h.registry.Get(id)
	if err != nil {
		h.handleError(ctx, w, err)
		return nil, ctx, false
	}

	return c, ctx, true
}

// precheck reports synchronously what a background run would fail with first
func (h *Handler) precheck(c *console.Console, validate func() error) error {
	if _, err := c.Session.RequireTicket(); err != nil {
		return err
	}
	if validate != nil {
		return validate()
	}
	return nil
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if len(h.cfg.AllowedOrigins) == 0 {
		return true
	}
	return slices.Contains(h.cfg.AllowedOrigins, r.Header.Get("Origin"))
}

func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	if status >= http.StatusInternalServerError {
		ctxzap.Error(ctx, message, zap.Error(err))
	} else {
		ctxzap.Info(ctx, message, zap.Int("status", status), zap.Error(err))
	}
	response.Error(w, status, message)
}

// background detaches the request logger for work that outlives the request
func background(ctx context.Context, action string) context.Context {
	return logger.WithAction(ctxzap.ToContext(context.Background(), ctxzap.Extract(ctx)), action+"-async")
}

func logAsync(ctx context.Context, err error) {
	switch {
	case err == nil:
		ctxzap.Info(ctx, "background run finished")
	case errors.Is(err, entity.ErrStaleResult):
		ctxzap.Debug(ctx, "background result discarded", zap.Error(err))
	default:
		ctxzap.Warn(ctx, "background run failed", zap.Error(err))
	}
}

func decodeJSON(r *http.Request, v any, optional bool) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if optional && errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func indexParam(r *http.Request) (int, error) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		return 0, fmt.Errorf("%w: question index %q", entity.ErrInvalidParameter, chi.URLParam(r, "index"))
	}
	return index, nil
}

func preferencesFromForm(r *http.Request) entity.Preferences {
	var jobTypes []string
	for _, v := range r.Form["job_types"] {
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				jobTypes = append(jobTypes, t)
			}
		}
	}

	return entity.Preferences{
		TargetRole:        r.FormValue("target_role"),
		ExperienceLevel:   r.FormValue("experience_level"),
		CareerField:       r.FormValue("career_field"),
		JobTypes:          jobTypes,
		PreferredLocation: r.FormValue("preferred_location"),
		SalaryRange:       r.FormValue("salary_range"),
		CareerGoal:        r.FormValue("career_goal"),
	}
}
