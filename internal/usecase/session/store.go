package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/futig/career-console/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Resume is an uploaded résumé file
type Resume struct {
	Filename string
	Data     []byte
}

// Ticket identifies the session an async operation started under.
// A result may only be applied while its ticket is still valid.
type Ticket struct {
	SessionID  string
	Generation uint64
}

// Store holds the single analysis session of one console and gates every
// dependent feature on it.
type Store struct {
	gateway   Gateway
	validator Validator
	logger    *zap.Logger

	mu         sync.RWMutex
	session    *entity.Session
	generation uint64
	creating   bool
	listeners  []func()
}

func NewStore(gateway Gateway, validator Validator, logger *zap.Logger) *Store {
	return &Store{
		gateway:   gateway,
		validator: validator,
		logger:    logger,
	}
}

// OnReset registers fn to run on every Reset, in registration order
func (s *Store) OnReset(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listeners = append(s.listeners, fn)
}

// CreateSession uploads the résumé and analyzes it. Either step failing
// aborts the whole sequence with a single *entity.AnalysisError.
func (s *Store) CreateSession(ctx context.Context, resume Resume, prefs entity.Preferences) (*entity.Session, error) {
	if err := s.validator.ValidateResume(resume.Filename, resume.Data); err != nil {
		return nil, err
	}
	if err := s.validator.ValidatePreferences(&prefs); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.session != nil {
		s.mu.Unlock()
		return nil, entity.ErrSessionActive
	}
	if s.creating {
		s.mu.Unlock()
		return nil, entity.ErrSessionCreating
	}
	s.creating = true
	gen := s.generation
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.creating = false
		s.mu.Unlock()
	}()

	uploaded, err := s.gateway.Upload(ctx, resume.Filename, resume.Data)
	if err != nil {
		ctxzap.Warn(ctx, "resume upload failed", zap.Error(err))
		return nil, &entity.AnalysisError{Step: entity.AnalysisStepUpload, Err: err}
	}

	analyzed, err := s.gateway.Analyze(ctx, &entity.AnalyzeRequest{
		SessionID:         uploaded.SessionID,
		TargetRole:        prefs.TargetRole,
		ExperienceLevel:   prefs.ExperienceLevel,
		CareerField:       prefs.CareerField,
		JobTypes:          prefs.JobTypes,
		PreferredLocation: prefs.PreferredLocation,
		SalaryRange:       prefs.SalaryRange,
		CareerGoal:        prefs.CareerGoal,
	})
	if err != nil {
		ctxzap.Warn(ctx, "resume analysis failed",
			zap.String("session_id", uploaded.SessionID),
			zap.Error(err),
		)
		return nil, &entity.AnalysisError{Step: entity.AnalysisStepAnalyze, Err: err}
	}

	session := &entity.Session{
		ID:          uploaded.SessionID,
		Preferences: prefs,
		Analysis:    analyzed.GapAnalysis,
		Profile:     analyzed.Profile,
		ResumeChars: uploaded.Chars,
		CreatedAt:   time.Now().UTC(),
	}

	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		ctxzap.Info(ctx, "discarding session created after reset", zap.String("session_id", session.ID))
		s.deleteRemote(ctx, session.ID)
		return nil, entity.ErrStaleResult
	}
	s.session = session
	s.mu.Unlock()

	ctxzap.Info(ctx, "session created",
		zap.String("session_id", session.ID),
		zap.Int("match_score", session.Analysis.MatchScore),
	)

	out := *session
	return &out, nil
}

// Reset discards the session and everything that depends on it
func (s *Store) Reset(ctx context.Context) {
	s.mu.Lock()
	var sessionID string
	if s.session != nil {
		sessionID = s.session.ID
	}
	s.session = nil
	s.generation++
	listeners := make([]func(), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}

	if sessionID != "" {
		ctxzap.Info(ctx, "session reset", zap.String("session_id", sessionID))
		s.deleteRemote(ctx, sessionID)
	}
}

// Current returns a copy of the session, or nil when there is none
func (s *Store) Current() *entity.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.session == nil {
		return nil
	}
	out := *s.session
	return &out
}

func (s *Store) Ticket() (Ticket, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.session == nil {
		return Ticket{}, false
	}
	return Ticket{SessionID: s.session.ID, Generation: s.generation}, true
}

// RequireTicket returns entity.ErrBlocked when there is no session
func (s *Store) RequireTicket() (Ticket, error) {
	t, ok := s.Ticket()
	if !ok {
		return Ticket{}, entity.ErrBlocked
	}
	return t, nil
}

// Valid reports whether t still names the current session
func (s *Store) Valid(t Ticket) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.session != nil && s.session.ID == t.SessionID && s.generation == t.Generation
}

func (s *Store) Health(ctx context.Context) (*entity.HealthResponse, error) {
	resp, err := s.gateway.Health(ctx)
	if err != nil {
		return nil, fmt.Errorf("health: %w", err)
	}
	return resp, nil
}

// deleteRemote frees the server-side session; failures are only logged
func (s *Store) deleteRemote(ctx context.Context, sessionID string) {
	if err := s.gateway.DeleteSession(context.WithoutCancel(ctx), sessionID); err != nil {
		ctxzap.Warn(ctx, "failed to delete remote session",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
	}
}
