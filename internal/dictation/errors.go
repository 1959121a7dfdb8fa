package dictation

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a capture failure
type ErrorKind string

const (
	PermissionDenied ErrorKind = "permission_denied"
	NoSpeechDetected ErrorKind = "no_speech"
	DeviceBusy       ErrorKind = "device_busy"
	Unsupported      ErrorKind = "unsupported"
	Other            ErrorKind = "other"
)

// Errors a Capture may return from Start
var (
	ErrDeviceBusy         = errors.New("capture device busy")
	ErrCaptureUnavailable = errors.New("capture unavailable")
)

// Error is the last dictation failure; Code keeps the collaborator's raw code
type Error struct {
	Kind ErrorKind
	Code string
}

func (e *Error) Error() string {
	return e.Message()
}

// Message is the fixed user-facing text of the error kind
func (e *Error) Message() string {
	switch e.Kind {
	case PermissionDenied:
		return "Microphone permission denied. Please allow mic access in your browser settings."
	case NoSpeechDetected:
		return "No speech detected. Please try again."
	case DeviceBusy:
		return "Could not start microphone. Is another tab using it?"
	case Unsupported:
		return "Your browser doesn't support voice recognition. Try Chrome or Edge."
	default:
		return fmt.Sprintf("Speech recognition error: %s", e.Code)
	}
}

// Classify maps a capture error code to an Error. Unknown codes are Other.
func Classify(code string) *Error {
	var kind ErrorKind
	switch code {
	case "not-allowed", "service-not-allowed", "permission-denied":
		kind = PermissionDenied
	case "no-speech":
		kind = NoSpeechDetected
	case "audio-capture", "busy", "device-busy":
		kind = DeviceBusy
	case "unsupported", "language-not-supported":
		kind = Unsupported
	default:
		kind = Other
	}

	return &Error{Kind: kind, Code: code}
}

func classifyStartError(err error) *Error {
	switch {
	case errors.Is(err, ErrDeviceBusy):
		return &Error{Kind: DeviceBusy, Code: "device-busy"}
	case errors.Is(err, ErrCaptureUnavailable):
		return &Error{Kind: Unsupported, Code: "unsupported"}
	default:
		return &Error{Kind: Other, Code: err.Error()}
	}
}
