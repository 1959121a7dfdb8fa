package consoles

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/futig/career-console/internal/config"
	"github.com/futig/career-console/internal/console"
	"github.com/futig/career-console/internal/entity"
	"github.com/futig/career-console/internal/integration/gateway"
	"github.com/futig/career-console/internal/pkg/formatter"
	"github.com/futig/career-console/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type detailError struct{ detail string }

func (e *detailError) Error() string      { return "career API 422: " + e.detail }
func (e *detailError) RawMessage() string { return e.detail }

type failingAnalyze struct {
	*gateway.MockConnector
}

func (failingAnalyze) Analyze(context.Context, *entity.AnalyzeRequest) (*entity.AnalyzeResponse, error) {
	return nil, fmt.Errorf("analyze: %w: %w", entity.ErrTransportFailure, &detailError{detail: "Resume text too short"})
}

type gatedEvaluate struct {
	*gateway.MockConnector
	release chan struct{}
	started chan string
}

func (g *gatedEvaluate) EvaluateAnswer(ctx context.Context, req *entity.EvaluateAnswerRequest) (*entity.Evaluation, error) {
	g.started <- req.Answer
	<-g.release
	return g.MockConnector.EvaluateAnswer(ctx, req)
}

type testServer struct {
	*httptest.Server
	registry *console.Registry
}

func newTestServer(t *testing.T, gw console.Gateway) *testServer {
	t.Helper()

	cfg := config.ConsoleConfig{
		TaskTimeout:    5 * time.Second,
		RequestTimeout: 10 * time.Second,
		MaxResumeSize:  1 << 20,
		MaxQuestions:   10,
		MaxJobResults:  20,
	}
	if gw == nil {
		gw = gateway.NewMockConnector(zap.NewNop())
	}

	v := validator.New(cfg)
	registry := console.NewRegistry(console.Deps{
		Gateway:      gw,
		Validator:    v,
		Logger:       zap.NewNop(),
		TaskTimeout:  cfg.TaskTimeout,
		MaxQuestions: cfg.MaxQuestions,
	}, time.Hour, time.Hour)
	t.Cleanup(registry.Close)

	h := NewHandler(registry, v, formatter.NewFactory(), nil, cfg)
	r := chi.NewRouter()
	RegisterRoutes(r, h, cfg.RequestTimeout)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &testServer{Server: srv, registry: registry}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, s.URL+path, rd)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (s *testServer) createConsole(t *testing.T) string {
	t.Helper()

	resp := s.do(t, http.MethodPost, "/consoles", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out entity.CreateConsoleResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out.ID)
	return out.ID
}

func (s *testServer) uploadResume(t *testing.T, id, filename string, data []byte, role string) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("target_role", role))
	require.NoError(t, mw.WriteField("job_types", "Full-time, Remote"))
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, s.URL+"/consoles/"+id+"/session", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (s *testServer) state(t *testing.T, id string) entity.ConsoleStateDTO {
	t.Helper()

	resp := s.do(t, http.MethodGet, "/consoles/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var st entity.ConsoleStateDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	return st
}

func samplePDF(t *testing.T) []byte {
	t.Helper()

	doc := gofpdf.New("P", "mm", "A4", "")
	doc.AddPage()
	doc.SetFont("Arial", "", 12)
	doc.Cell(40, 10, "Asha Rao - Full Stack Developer")

	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	return buf.Bytes()
}

func decodeError(t *testing.T, resp *http.Response) entity.ErrorResponse {
	t.Helper()

	var e entity.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	return e
}

func TestConsoleNotFound(t *testing.T) {
	s := newTestServer(t, nil)

	resp := s.do(t, http.MethodGet, "/consoles/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateConsole_InvalidCallback(t *testing.T) {
	s := newTestServer(t, nil)

	resp := s.do(t, http.MethodPost, "/consoles", map[string]string{"callback_url": "not a url"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFeaturesBlockedWithoutSession(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.createConsole(t)

	cases := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodPost, "/chat", map[string]string{"message": "hi"}},
		{http.MethodPost, "/tailor", map[string]string{"job_description": "Go developer"}},
		{http.MethodPost, "/questions", map[string]int{"num_questions": 3}},
		{http.MethodPost, "/projects", nil},
		{http.MethodPost, "/schedule", nil},
		{http.MethodPost, "/jobs", nil},
		{http.MethodGet, "/companies", nil},
		{http.MethodGet, "/report", nil},
		{http.MethodGet, "/history", nil},
	}

	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			resp := s.do(t, tc.method, "/consoles/"+id+tc.path, tc.body)
			assert.Equal(t, http.StatusConflict, resp.StatusCode)
		})
	}
}

func TestCreateSession_RejectsNonPDF(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.createConsole(t)

	resp := s.uploadResume(t, id, "cv.docx", []byte("PK..."), "Full Stack Developer")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Nil(t, s.state(t, id).Session)
}

func TestCreateSession_AnalysisFailureShowsRawMessage(t *testing.T) {
	s := newTestServer(t, failingAnalyze{gateway.NewMockConnector(zap.NewNop())})
	id := s.createConsole(t)

	resp := s.uploadResume(t, id, "cv.pdf", samplePDF(t), "Full Stack Developer")
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "Resume text too short", decodeError(t, resp).Message)
	assert.Nil(t, s.state(t, id).Session)
}

func TestSessionFlow(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.createConsole(t)

	resp := s.uploadResume(t, id, "cv.pdf", samplePDF(t), "Full Stack Developer")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var sess entity.Session
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sess))
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, entity.DefaultExperienceLevel, sess.Preferences.ExperienceLevel)
	assert.Equal(t, []string{"Full-time", "Remote"}, sess.Preferences.JobTypes)

	resp = s.uploadResume(t, id, "cv.pdf", samplePDF(t), "Data Scientist")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	st := s.state(t, id)
	require.Len(t, st.Mentor.Messages, 1)

	resp = s.do(t, http.MethodPost, "/consoles/"+id+"/chat", map[string]string{"message": "How do I start?"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/consoles/"+id+"/questions", map[string]int{"num_questions": 2})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	require.Eventually(t, func() bool {
		return len(s.state(t, id).Interview.Questions) == 2
	}, 2*time.Second, 20*time.Millisecond)

	resp = s.do(t, http.MethodPost, "/consoles/"+id+"/interview/answers/0/evaluate", map[string]string{"mode": "text"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "no stored answer")

	resp = s.do(t, http.MethodPost, "/consoles/"+id+"/interview/answers/5/evaluate",
		map[string]string{"mode": "text", "answer": "x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/consoles/"+id+"/interview/answers/1/evaluate",
		map[string]string{"mode": "text", "answer": "I would use a hash map"})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	require.Eventually(t, func() bool {
		return s.state(t, id).Interview.Evaluations[1] != nil
	}, 2*time.Second, 20*time.Millisecond)

	st = s.state(t, id)
	assert.Equal(t, entity.AnswerModeText, st.Interview.Answers[1].Mode)
	assert.Nil(t, st.Interview.Evaluations[0])

	resp = s.do(t, http.MethodGet, "/consoles/"+id+"/report?format=markdown", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "I would use a hash map")

	resp = s.do(t, http.MethodGet, "/consoles/"+id+"/report?format=odt", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/consoles/"+id+"/companies", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var companies []entity.Company
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&companies))
	require.NotEmpty(t, companies)
	for i := 1; i < len(companies); i++ {
		assert.GreaterOrEqual(t, companies[i-1].FitScore, companies[i].FitScore)
	}
}

func TestEvaluate_UsesAnswerCapturedAtSubmit(t *testing.T) {
	gw := &gatedEvaluate{
		MockConnector: gateway.NewMockConnector(zap.NewNop()),
		release:       make(chan struct{}),
		started:       make(chan string, 1),
	}
	s := newTestServer(t, gw)
	id := s.createConsole(t)
	require.Equal(t, http.StatusCreated, s.uploadResume(t, id, "cv.pdf", samplePDF(t), "Full Stack Developer").StatusCode)

	resp := s.do(t, http.MethodPost, "/consoles/"+id+"/questions", map[string]int{"num_questions": 1})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	require.Eventually(t, func() bool {
		return len(s.state(t, id).Interview.Questions) == 1
	}, 2*time.Second, 20*time.Millisecond)

	resp = s.do(t, http.MethodPost, "/consoles/"+id+"/interview/answers/0/evaluate",
		map[string]string{"mode": "text", "answer": "SUBMITTED"})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, "SUBMITTED", s.state(t, id).Interview.Answers[0].Content)

	c, err := s.registry.Get(id)
	require.NoError(t, err)
	require.NoError(t, c.Interview.RecordTypedAnswer(0, "EDITED AFTER SUBMIT"))

	var sent string
	select {
	case sent = <-gw.started:
	case <-time.After(2 * time.Second):
		t.Fatal("evaluation was not issued")
	}
	close(gw.release)

	assert.Equal(t, "SUBMITTED", sent)
	require.Eventually(t, func() bool {
		return s.state(t, id).Interview.Evaluations[0] != nil
	}, 2*time.Second, 20*time.Millisecond)
	assert.Equal(t, "EDITED AFTER SUBMIT", s.state(t, id).Interview.Answers[0].Content)
}

func TestScheduleCalendarPassThrough(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.createConsole(t)
	require.Equal(t, http.StatusCreated, s.uploadResume(t, id, "cv.pdf", samplePDF(t), "Full Stack Developer").StatusCode)

	resp := s.do(t, http.MethodGet, "/consoles/"+id+"/schedule.ics", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/consoles/"+id+"/schedule", nil)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	require.Eventually(t, func() bool {
		return s.state(t, id).Tasks[console.FeatureSchedule].Status == "done"
	}, 2*time.Second, 20*time.Millisecond)

	c, err := s.registry.Get(id)
	require.NoError(t, err)
	want := c.Schedule.Snapshot().Result.ICSDownload

	resp = s.do(t, http.MethodGet, "/consoles/"+id+"/schedule.ics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/calendar")
	got, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, want, string(got))
}

func TestResetSessionClearsDependents(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.createConsole(t)
	require.Equal(t, http.StatusCreated, s.uploadResume(t, id, "cv.pdf", samplePDF(t), "Full Stack Developer").StatusCode)

	resp := s.do(t, http.MethodPost, "/consoles/"+id+"/jobs", map[string]any{"location": "Pune"})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	require.Eventually(t, func() bool {
		return s.state(t, id).Tasks[console.FeatureJobs].Status == "done"
	}, 2*time.Second, 20*time.Millisecond)

	resp = s.do(t, http.MethodDelete, "/consoles/"+id+"/session", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	st := s.state(t, id)
	assert.Nil(t, st.Session)
	assert.Empty(t, st.Mentor.Messages)
	assert.Equal(t, "idle", st.Tasks[console.FeatureJobs].Status)
}

func TestJobs_OutOfRange(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.createConsole(t)
	require.Equal(t, http.StatusCreated, s.uploadResume(t, id, "cv.pdf", samplePDF(t), "Full Stack Developer").StatusCode)

	resp := s.do(t, http.MethodPost, "/consoles/"+id+"/jobs", map[string]any{"num_results": 500})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDictationCommands(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.createConsole(t)

	resp := s.do(t, http.MethodPost, "/consoles/"+id+"/dictation/start", nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, decodeError(t, resp).Message, "doesn't support voice recognition")

	resp = s.do(t, http.MethodPost, "/consoles/"+id+"/dictation/clear", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var st entity.DictationStateDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	assert.Equal(t, "idle", st.Phase)

	resp = s.do(t, http.MethodPost, "/consoles/"+id+"/dictation/pause", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteConsole(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.createConsole(t)

	resp := s.do(t, http.MethodDelete, "/consoles/"+id, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/consoles/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
