package console

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/futig/career-console/internal/entity"
	"github.com/futig/career-console/internal/integration/gateway"
	"github.com/futig/career-console/internal/task"
	"github.com/futig/career-console/internal/usecase/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingGateway struct {
	*gateway.MockConnector
	calls atomic.Int32
}

func (g *countingGateway) Tailor(ctx context.Context, req *entity.TailorRequest) (*entity.TailorResult, error) {
	g.calls.Add(1)
	return g.MockConnector.Tailor(ctx, req)
}

func (g *countingGateway) GenerateQuestions(ctx context.Context, req *entity.GenerateQuestionsRequest) (*entity.GenerateQuestionsResponse, error) {
	g.calls.Add(1)
	return g.MockConnector.GenerateQuestions(ctx, req)
}

func (g *countingGateway) EvaluateAnswer(ctx context.Context, req *entity.EvaluateAnswerRequest) (*entity.Evaluation, error) {
	g.calls.Add(1)
	return g.MockConnector.EvaluateAnswer(ctx, req)
}

func (g *countingGateway) GenerateProjects(ctx context.Context, req *entity.SessionRequest) (*entity.GenerateProjectsResponse, error) {
	g.calls.Add(1)
	return g.MockConnector.GenerateProjects(ctx, req)
}

func (g *countingGateway) GenerateSchedule(ctx context.Context, req *entity.SessionRequest) (*entity.SchedulePlan, error) {
	g.calls.Add(1)
	return g.MockConnector.GenerateSchedule(ctx, req)
}

func (g *countingGateway) FindJobs(ctx context.Context, req *entity.FindJobsRequest) (*entity.JobSearch, error) {
	g.calls.Add(1)
	return g.MockConnector.FindJobs(ctx, req)
}

func (g *countingGateway) Chat(ctx context.Context, req *entity.ChatRequest) (*entity.ChatResponse, error) {
	g.calls.Add(1)
	return g.MockConnector.Chat(ctx, req)
}

type fakeValidator struct{}

func (fakeValidator) ValidateResume(string, []byte) error { return nil }

func (fakeValidator) ValidatePreferences(p *entity.Preferences) error {
	if p.TargetRole == "" {
		return entity.ErrMissingField
	}
	return nil
}

func (fakeValidator) ValidateJobDescription(jd string) error {
	if jd == "" {
		return entity.ErrMissingField
	}
	return nil
}

func (fakeValidator) NormalizeJobSearch(req *entity.JobsTaskRequest) error {
	if req.Location == "" {
		req.Location = "India"
	}
	if req.NumResults == 0 {
		req.NumResults = 5
	}
	return nil
}

type memHistory struct {
	mu       sync.Mutex
	attempts []*entity.EvaluationAttempt
}

func (h *memHistory) RecordAttempt(_ context.Context, a *entity.EvaluationAttempt) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.attempts = append(h.attempts, a)
	return nil
}

func (h *memHistory) ListAttempts(_ context.Context, sessionID string) ([]*entity.EvaluationAttempt, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var out []*entity.EvaluationAttempt
	for _, a := range h.attempts {
		if a.SessionID == sessionID {
			out = append(out, a)
		}
	}
	return out, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) add(e string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.events = append(n.events, e)
}

func (n *recordingNotifier) SendSessionCreated(context.Context, string, string, *entity.Session) {
	n.add("sessionCreated")
}

func (n *recordingNotifier) SendSessionReset(context.Context, string, string) {
	n.add("sessionReset")
}

func (n *recordingNotifier) SendTaskFinished(_ context.Context, _ string, _ string, d *entity.CallbackTaskData) {
	n.add("taskFinished:" + d.Feature + ":" + d.Status)
}

func (n *recordingNotifier) SendEvaluation(context.Context, string, string, *entity.CallbackEvaluationData) {
	n.add("evaluation")
}

func testDeps() (Deps, *countingGateway, *memHistory, *recordingNotifier) {
	gw := &countingGateway{MockConnector: gateway.NewMockConnector(zap.NewNop())}
	history := &memHistory{}
	notifier := &recordingNotifier{}

	return Deps{
		Gateway:      gw,
		Validator:    fakeValidator{},
		History:      history,
		Notifier:     notifier,
		Logger:       zap.NewNop(),
		TaskTimeout:  time.Second,
		MaxQuestions: 10,
	}, gw, history, notifier
}

var testResume = session.Resume{Filename: "cv.pdf", Data: []byte("%PDF-1.4")}

func TestConsole_EverythingBlockedWithoutSession(t *testing.T) {
	deps, gw, _, _ := testDeps()
	c := New("c1", "", deps)
	ctx := context.Background()

	_, err := c.Tailor.Run(ctx, "job description")
	assert.ErrorIs(t, err, entity.ErrBlocked)
	_, err = c.Questions.Run(ctx, 3)
	assert.ErrorIs(t, err, entity.ErrBlocked)
	_, err = c.Projects.Run(ctx, struct{}{})
	assert.ErrorIs(t, err, entity.ErrBlocked)
	_, err = c.Schedule.Run(ctx, struct{}{})
	assert.ErrorIs(t, err, entity.ErrBlocked)
	_, err = c.Jobs.Run(ctx, entity.JobsTaskRequest{})
	assert.ErrorIs(t, err, entity.ErrBlocked)
	_, err = c.Interview.SubmitEvaluation(ctx, 0, "answer")
	assert.ErrorIs(t, err, entity.ErrBlocked)
	_, err = c.Mentor.Send(ctx, "hi")
	assert.ErrorIs(t, err, entity.ErrBlocked)
	_, err = c.Companies()
	assert.ErrorIs(t, err, entity.ErrBlocked)

	assert.Zero(t, gw.calls.Load())
	for name, ts := range c.State().Tasks {
		assert.Equal(t, string(task.StatusIdle), ts.Status, name)
	}
}

func TestConsole_SessionFlow(t *testing.T) {
	deps, _, history, notifier := testDeps()
	c := New("c1", "https://hooks.example.com", deps)
	ctx := context.Background()

	s, err := c.CreateSession(ctx, testResume, entity.Preferences{TargetRole: "Full Stack Developer"})
	require.NoError(t, err)
	assert.Len(t, s.ID, 8)

	msgs := c.Mentor.Snapshot().Messages
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Content, "**Full Stack Developer** roles")

	qs, err := c.Questions.Run(ctx, 3)
	require.NoError(t, err)
	require.Len(t, qs, 3)

	_, err = c.Interview.SubmitEvaluation(ctx, 0, "I would use REST resources")
	require.NoError(t, err)

	jobs, err := c.Jobs.Run(ctx, entity.JobsTaskRequest{Location: "Pune", NumResults: 1})
	require.NoError(t, err)
	assert.Len(t, jobs.Jobs, 1)

	st := c.State()
	assert.Equal(t, "done", st.Tasks[FeatureQuestions].Status)
	assert.True(t, st.Tasks[FeatureJobs].Loaded)
	assert.Contains(t, st.Interview.Evaluations, 0)

	attempts, err := c.History(ctx)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Len(t, history.attempts, 1)

	companies, err := c.Companies()
	require.NoError(t, err)
	assert.Equal(t, 92, companies[0].FitScore)

	report, err := c.Report()
	require.NoError(t, err)
	assert.Len(t, report.Items, 3)
	assert.NotNil(t, report.Items[0].Evaluation)
	assert.Nil(t, report.Items[1].Answer)

	assert.Equal(t, []string{
		"sessionCreated",
		"taskFinished:questions:done",
		"evaluation",
		"taskFinished:jobs:done",
	}, notifier.events)
}

func TestConsole_ResetCascades(t *testing.T) {
	deps, _, _, notifier := testDeps()
	c := New("c1", "https://hooks.example.com", deps)
	ctx := context.Background()

	_, err := c.CreateSession(ctx, testResume, entity.Preferences{TargetRole: "Data Scientist"})
	require.NoError(t, err)
	_, err = c.Questions.Run(ctx, 2)
	require.NoError(t, err)
	_, err = c.Projects.Run(ctx, struct{}{})
	require.NoError(t, err)

	c.Reset(ctx)

	st := c.State()
	assert.Nil(t, st.Session)
	assert.Empty(t, st.Interview.Questions)
	assert.Empty(t, st.Mentor.Messages)
	assert.Equal(t, "idle", st.Dictation.Phase)
	for name, ts := range st.Tasks {
		assert.Equal(t, "idle", ts.Status, name)
		assert.Nil(t, ts.Result, name)
	}
	assert.Contains(t, notifier.events, "sessionReset")

	_, err = c.CreateSession(ctx, testResume, entity.Preferences{TargetRole: "Data Scientist"})
	require.NoError(t, err)
}

func TestConsole_CreateSessionTwice(t *testing.T) {
	deps, _, _, _ := testDeps()
	c := New("c1", "", deps)

	_, err := c.CreateSession(context.Background(), testResume, entity.Preferences{TargetRole: "SRE"})
	require.NoError(t, err)
	_, err = c.CreateSession(context.Background(), testResume, entity.Preferences{TargetRole: "SRE"})
	assert.ErrorIs(t, err, entity.ErrSessionActive)
}

func TestConsole_DictationUnsupportedWithoutCapture(t *testing.T) {
	deps, _, _, _ := testDeps()
	c := New("c1", "", deps)

	require.Error(t, c.Dictation.Start(context.Background()))

	st := c.State()
	assert.Equal(t, "idle", st.Dictation.Phase)
	assert.Equal(t, "unsupported", st.Dictation.LastError)
	assert.Contains(t, st.Dictation.LastErrorText, "doesn't support voice recognition")
}
