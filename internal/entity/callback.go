package entity

// CallbackEventType represents the type of callback event
type CallbackEventType string

const (
	CallbackEventTypeSessionCreated CallbackEventType = "sessionCreated"
	CallbackEventTypeTaskFinished   CallbackEventType = "taskFinished"
	CallbackEventTypeEvaluation     CallbackEventType = "evaluation"
	CallbackEventTypeSessionReset   CallbackEventType = "sessionReset"
	CallbackEventTypeError          CallbackEventType = "error"
)

// CallbackEvent represents a callback event
type CallbackEvent struct {
	Event     CallbackEventType `json:"event"`
	ConsoleID string            `json:"console_id"`
	Timestamp string            `json:"timestamp"` // ISO-8601 UTC
	Data      any               `json:"data"`
}

// CallbackTaskData reports the final status of one feature task run
type CallbackTaskData struct {
	Feature string `json:"feature"`
	Status  string `json:"status"`
	Result  any    `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
}

// CallbackEvaluationData reports a stored interview evaluation
type CallbackEvaluationData struct {
	QuestionIndex int         `json:"question_index"`
	Evaluation    *Evaluation `json:"evaluation"`
}

// CallbackErrorData represents data for error event
type CallbackErrorData struct {
	Error CallbackErrorDetails `json:"error"`
}

// CallbackErrorDetails contains error information
type CallbackErrorDetails struct {
	Message string         `json:"message"`
	Details map[string]any `json:"details"` // Context like feature, question index
}
