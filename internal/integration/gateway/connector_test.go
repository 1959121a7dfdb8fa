package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/futig/career-console/internal/config"
	"github.com/futig/career-console/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestConnector(t *testing.T, handler http.HandlerFunc) *Connector {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewConnector(config.GatewayConfig{
		HTTPClientConfig: config.HTTPClientConfig{Url: srv.URL},
	}, zap.NewNop())
}

func TestUpload(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/upload-resume", r.URL.Path)
		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		assert.Equal(t, "cv.pdf", header.Filename)

		w.Write([]byte(`{"session_id":"ab12cd34","chars":2048}`))
	})

	resp, err := c.Upload(context.Background(), "cv.pdf", []byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, "ab12cd34", resp.SessionID)
	assert.Equal(t, 2048, resp.Chars)
}

func TestUpload_RejectedByServer(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail":"Could not extract text from PDF."}`))
	})

	_, err := c.Upload(context.Background(), "cv.pdf", []byte("%PDF-1.4"))
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrTransportFailure)
	assert.Equal(t, "Could not extract text from PDF.", entity.RawMessage(err))
}

func TestUpload_MissingSessionID(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chars":10}`))
	})

	_, err := c.Upload(context.Background(), "cv.pdf", []byte("%PDF-1.4"))
	assert.ErrorIs(t, err, entity.ErrTransportFailure)
}

func TestAnalyze(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/analyze", r.URL.Path)

		var req entity.AnalyzeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ab12cd34", req.SessionID)
		assert.Equal(t, "Data Scientist", req.TargetRole)
		assert.Equal(t, []string{"Remote"}, req.JobTypes)

		w.Write([]byte(`{
			"session_id":"ab12cd34",
			"profile":{"name":"Asha","skills":["Python"]},
			"gap_analysis":{"matchScore":82,"summary":"Strong fit",
				"skillBars":[{"name":"Python","percentage":90}],
				"gaps":[{"skill":"Spark","severity":"critical","reason":"Big data"}]}
		}`))
	})

	resp, err := c.Analyze(context.Background(), &entity.AnalyzeRequest{
		SessionID:  "ab12cd34",
		TargetRole: "Data Scientist",
		JobTypes:   []string{"Remote"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Asha", resp.Profile.Name)
	assert.Equal(t, 82, resp.GapAnalysis.MatchScore)
	require.Len(t, resp.GapAnalysis.Gaps, 1)
	assert.Equal(t, entity.GapSeverityCritical, resp.GapAnalysis.Gaps[0].Severity)
	assert.Equal(t, 90, resp.GapAnalysis.SkillBars[0].Percentage)
}

func TestAnalyze_MissingGapAnalysis(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"session_id":"ab12cd34"}`))
	})

	_, err := c.Analyze(context.Background(), &entity.AnalyzeRequest{SessionID: "ab12cd34"})
	assert.ErrorIs(t, err, entity.ErrTransportFailure)
}

func TestEvaluateAnswer(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/evaluate-answer", r.URL.Path)

		var req entity.EvaluateAnswerRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "What is a closure?", req.Question)
		assert.Equal(t, "A function with its environment", req.Answer)

		w.Write([]byte(`{"score":7.5,"verdict":"Good Answer",
			"score_breakdown":{"technical_accuracy":8,"communication":7,"depth":6},
			"strengths":["Clear"],"improvements":["Example"]}`))
	})

	eval, err := c.EvaluateAnswer(context.Background(), &entity.EvaluateAnswerRequest{
		SessionID: "ab12cd34",
		Question:  "What is a closure?",
		Answer:    "A function with its environment",
	})
	require.NoError(t, err)
	assert.Equal(t, 7.5, eval.Score)
	assert.Equal(t, "Good Answer", eval.Verdict)
	require.NotNil(t, eval.Breakdown)
	assert.Equal(t, 8.0, eval.Breakdown.TechnicalAccuracy)
}

func TestGenerateSchedule_KeepsICSVerbatim(t *testing.T) {
	const ics = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nEND:VCALENDAR\r\n"

	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"schedule":     map[string]any{"title": "Plan", "total_hours": 40},
			"ics_download": ics,
		})
	})

	plan, err := c.GenerateSchedule(context.Background(), &entity.SessionRequest{SessionID: "ab12cd34"})
	require.NoError(t, err)
	assert.Equal(t, ics, plan.ICSDownload)
	assert.Equal(t, "Plan", plan.Schedule.Title)
}

func TestFindJobs(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		var req entity.FindJobsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Bangalore", req.Location)
		assert.Equal(t, 5, req.NumResults)

		w.Write([]byte(`{"jobs":[],"source":"adzuna","role":"SDE","location":"Bangalore"}`))
	})

	res, err := c.FindJobs(context.Background(), &entity.FindJobsRequest{
		SessionID:  "ab12cd34",
		Location:   "Bangalore",
		NumResults: 5,
	})
	require.NoError(t, err)
	assert.Empty(t, res.Jobs)
	assert.Equal(t, "adzuna", res.Source)
}

func TestChat_SessionNotFound(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"Session not found. Upload resume first."}`))
	})

	_, err := c.Chat(context.Background(), &entity.ChatRequest{SessionID: "gone", Message: "hi"})
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrTransportFailure)
	assert.Equal(t, "Session not found. Upload resume first.", entity.RawMessage(err))
}

func TestHealth(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/health", r.URL.Path)
		w.Write([]byte(`{"status":"online","groq_configured":true,"model":"llama"}`))
	})

	resp, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "online", resp.Status)
	assert.True(t, resp.GroqConfigured)
}

func TestDeleteSession(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/session/ab12cd34", r.URL.Path)
		w.Write([]byte(`{"message":"Cleared."}`))
	})

	require.NoError(t, c.DeleteSession(context.Background(), "ab12cd34"))
}

func TestMockConnector_RejectsNonPDF(t *testing.T) {
	m := NewMockConnector(zap.NewNop())

	_, err := m.Upload(context.Background(), "cv.docx", []byte("PK"))
	assert.ErrorIs(t, err, entity.ErrTransportFailure)

	resp, err := m.Upload(context.Background(), "cv.pdf", []byte("%PDF"))
	require.NoError(t, err)
	assert.Len(t, resp.SessionID, 8)
}
