package entity

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	// Session errors
	ErrBlocked         = errors.New("no active session")
	ErrSessionActive   = errors.New("session already active, start over first")
	ErrSessionCreating = errors.New("session creation already in progress")
	ErrStaleResult     = errors.New("result belongs to a discarded session")
	ErrAnalysisFailed  = errors.New("analysis failed")
	ErrSessionNotFound = errors.New("session not found")
	ErrConsoleNotFound = errors.New("console not found")

	// Resume errors
	ErrInvalidResume = errors.New("invalid resume")

	// Feature errors
	ErrGenerationFailed = errors.New("generation failed")
	ErrEvaluationFailed = errors.New("evaluation failed")
	ErrTransportFailure = errors.New("transport failure")

	// Interview errors
	ErrEmptyAnswer        = errors.New("answer is empty")
	ErrQuestionOutOfRange = errors.New("question index out of range")

	// Mentor errors
	ErrEmptyMessage = errors.New("message is empty")
	ErrChatBusy     = errors.New("previous message is still pending")

	// Validation errors
	ErrInvalidInput     = errors.New("invalid input")
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidFormat    = errors.New("invalid format")
	ErrInvalidParameter = errors.New("invalid parameter")
)

// AnalysisStep names the step of session creation that failed
type AnalysisStep string

const (
	AnalysisStepUpload  AnalysisStep = "upload"
	AnalysisStepAnalyze AnalysisStep = "analyze"
)

// AnalysisError is the single error produced by a failed upload+analyze sequence
type AnalysisError struct {
	Step AnalysisStep
	Err  error
}

func (e *AnalysisError) Error() string {
	return RawMessage(e.Err)
}

func (e *AnalysisError) Is(target error) bool {
	return target == ErrAnalysisFailed
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// FeatureError is a failure of one feature call, owned by that feature's error slot
type FeatureError struct {
	Feature string
	Kind    error
	Err     error
}

func (e *FeatureError) Error() string {
	return fmt.Sprintf("%s: %s", e.Feature, RawMessage(e.Err))
}

func (e *FeatureError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// rawMessager is implemented by transport errors that carry a server-provided message
type rawMessager interface {
	RawMessage() string
}

// RawMessage returns the server-provided message when err carries one,
// falling back to err.Error().
func RawMessage(err error) string {
	if err == nil {
		return ""
	}
	var rm rawMessager
	if errors.As(err, &rm) {
		return rm.RawMessage()
	}
	return err.Error()
}
