package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/futig/career-console/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeGateway struct {
	mu         sync.Mutex
	uploadErr  error
	analyzeErr error
	uploads    int
	analyzes   int
	deleted    []string
	lastReq    *entity.AnalyzeRequest
	beforeDone func()
}

func (f *fakeGateway) Upload(_ context.Context, _ string, _ []byte) (*entity.UploadResumeResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.uploads++
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return &entity.UploadResumeResponse{SessionID: "ab12cd34", Chars: 900}, nil
}

func (f *fakeGateway) Analyze(_ context.Context, req *entity.AnalyzeRequest) (*entity.AnalyzeResponse, error) {
	f.mu.Lock()
	f.analyzes++
	f.lastReq = req
	hook := f.beforeDone
	err := f.analyzeErr
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	if err != nil {
		return nil, err
	}
	return &entity.AnalyzeResponse{
		SessionID:   req.SessionID,
		Profile:     &entity.Profile{Name: "Asha"},
		GapAnalysis: &entity.GapAnalysis{MatchScore: 82},
	}, nil
}

func (f *fakeGateway) DeleteSession(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deleted = append(f.deleted, sessionID)
	return nil
}

func (f *fakeGateway) Health(context.Context) (*entity.HealthResponse, error) {
	return &entity.HealthResponse{Status: "online"}, nil
}

type fakeValidator struct{}

func (fakeValidator) ValidateResume(filename string, data []byte) error {
	if filename != "cv.pdf" {
		return fmt.Errorf("%w: only PDF files accepted", entity.ErrInvalidResume)
	}
	return nil
}

func (fakeValidator) ValidatePreferences(prefs *entity.Preferences) error {
	if prefs.TargetRole == "" {
		return fmt.Errorf("%w: target_role", entity.ErrMissingField)
	}
	return nil
}

var (
	testResume = Resume{Filename: "cv.pdf", Data: []byte("%PDF-1.4")}
	testPrefs  = entity.Preferences{TargetRole: "Data Scientist", JobTypes: []string{"Remote"}}
)

func newTestStore(gw *fakeGateway) *Store {
	return NewStore(gw, fakeValidator{}, zap.NewNop())
}

func TestCreateSession(t *testing.T) {
	gw := &fakeGateway{}
	s := newTestStore(gw)

	_, err := s.RequireTicket()
	require.ErrorIs(t, err, entity.ErrBlocked)

	sess, err := s.CreateSession(context.Background(), testResume, testPrefs)
	require.NoError(t, err)

	assert.Equal(t, "ab12cd34", sess.ID)
	assert.Equal(t, 82, sess.Analysis.MatchScore)
	assert.Equal(t, "Data Scientist", sess.Preferences.TargetRole)
	assert.Equal(t, 900, sess.ResumeChars)
	assert.Equal(t, []string{"Remote"}, gw.lastReq.JobTypes)

	ticket, err := s.RequireTicket()
	require.NoError(t, err)
	assert.Equal(t, "ab12cd34", ticket.SessionID)
	assert.True(t, s.Valid(ticket))
}

func TestCreateSession_InvalidResumeMakesNoCalls(t *testing.T) {
	gw := &fakeGateway{}
	s := newTestStore(gw)

	_, err := s.CreateSession(context.Background(), Resume{Filename: "cv.docx"}, testPrefs)
	require.ErrorIs(t, err, entity.ErrInvalidResume)

	_, err = s.CreateSession(context.Background(), testResume, entity.Preferences{})
	require.ErrorIs(t, err, entity.ErrMissingField)

	assert.Zero(t, gw.uploads)
	assert.Nil(t, s.Current())
}

func TestCreateSession_UploadFailureAborts(t *testing.T) {
	gw := &fakeGateway{uploadErr: fmt.Errorf("upload resume: %w", entity.ErrTransportFailure)}
	s := newTestStore(gw)

	_, err := s.CreateSession(context.Background(), testResume, testPrefs)

	var aerr *entity.AnalysisError
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, entity.AnalysisStepUpload, aerr.Step)
	assert.ErrorIs(t, err, entity.ErrAnalysisFailed)
	assert.Zero(t, gw.analyzes)
	assert.Nil(t, s.Current())
}

func TestCreateSession_AnalyzeFailureAborts(t *testing.T) {
	gw := &fakeGateway{analyzeErr: errors.New("Groq API error")}
	s := newTestStore(gw)

	_, err := s.CreateSession(context.Background(), testResume, testPrefs)

	var aerr *entity.AnalysisError
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, entity.AnalysisStepAnalyze, aerr.Step)
	assert.Equal(t, "Groq API error", err.Error())
	assert.Equal(t, 1, gw.uploads)

	_, ok := s.Ticket()
	assert.False(t, ok)
}

func TestCreateSession_RejectsWhileActive(t *testing.T) {
	s := newTestStore(&fakeGateway{})

	_, err := s.CreateSession(context.Background(), testResume, testPrefs)
	require.NoError(t, err)

	_, err = s.CreateSession(context.Background(), testResume, testPrefs)
	assert.ErrorIs(t, err, entity.ErrSessionActive)
}

func TestCreateSession_ResetDuringCreateIsStale(t *testing.T) {
	gw := &fakeGateway{}
	s := newTestStore(gw)
	gw.beforeDone = func() { s.Reset(context.Background()) }

	_, err := s.CreateSession(context.Background(), testResume, testPrefs)
	require.ErrorIs(t, err, entity.ErrStaleResult)

	assert.Nil(t, s.Current())
	assert.Equal(t, []string{"ab12cd34"}, gw.deleted)
}

func TestReset(t *testing.T) {
	gw := &fakeGateway{}
	s := newTestStore(gw)

	var order []string
	s.OnReset(func() { order = append(order, "dictation") })
	s.OnReset(func() { order = append(order, "interview") })

	_, err := s.CreateSession(context.Background(), testResume, testPrefs)
	require.NoError(t, err)
	ticket, _ := s.Ticket()

	s.Reset(context.Background())

	assert.Equal(t, []string{"dictation", "interview"}, order)
	assert.False(t, s.Valid(ticket))
	assert.Nil(t, s.Current())
	assert.Equal(t, []string{"ab12cd34"}, gw.deleted)

	_, err = s.CreateSession(context.Background(), testResume, testPrefs)
	require.NoError(t, err)
	fresh, _ := s.Ticket()
	assert.False(t, s.Valid(ticket))
	assert.True(t, s.Valid(fresh))
}
