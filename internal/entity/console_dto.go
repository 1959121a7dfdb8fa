package entity

import "time"

type ResultFormat string

const (
	FormatMarkdown ResultFormat = "markdown"
	FormatDOCX     ResultFormat = "docx"
	FormatPDF      ResultFormat = "pdf"
)

func (f ResultFormat) IsValid() bool {
	switch f {
	case FormatMarkdown, FormatDOCX, FormatPDF:
		return true
	default:
		return false
	}
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// DictationStateDTO is the wire form of the dictation engine state
type DictationStateDTO struct {
	Phase           string `json:"phase"`
	FinalTranscript string `json:"final_transcript"`
	InterimPreview  string `json:"interim_preview"`
	LastError       string `json:"last_error,omitempty"`
	LastErrorText   string `json:"last_error_message,omitempty"`
}

// TaskStateDTO is the wire form of one feature task
type TaskStateDTO struct {
	Status string `json:"status"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
	Loaded bool   `json:"loaded"`
}

// InterviewStateDTO is the wire form of the interview coordinator
type InterviewStateDTO struct {
	Questions   []Question          `json:"questions"`
	ActiveIndex int                 `json:"active_index"`
	Answers     map[int]Answer      `json:"answers"`
	Evaluations map[int]*Evaluation `json:"evaluations"`
	InFlight    []int               `json:"in_flight"`
}

// MentorStateDTO is the wire form of the mentor chat
type MentorStateDTO struct {
	Messages       []ChatMessage `json:"messages"`
	Pending        bool          `json:"pending"`
	Error          string        `json:"error,omitempty"`
	QuickQuestions []string      `json:"quick_questions"`
}

// ConsoleStateDTO is a full snapshot of one console
type ConsoleStateDTO struct {
	ID        string                  `json:"id"`
	Session   *Session                `json:"session"`
	Dictation DictationStateDTO       `json:"dictation"`
	Interview InterviewStateDTO       `json:"interview"`
	Mentor    MentorStateDTO          `json:"mentor"`
	Tasks     map[string]TaskStateDTO `json:"tasks"`
	UpdatedAt time.Time               `json:"updated_at"`
}

type CreateConsoleRequest struct {
	CallbackURL string `json:"callback_url" validate:"omitempty,url"`
}

type CreateConsoleResponse struct {
	ID string `json:"id"`
}

type SendChatRequest struct {
	Message string `json:"message"`
}

type TailorTaskRequest struct {
	JobDescription string `json:"job_description"`
}

type QuestionsTaskRequest struct {
	NumQuestions int `json:"num_questions"`
}

type JobsTaskRequest struct {
	Location   string `json:"location"`
	NumResults int    `json:"num_results"`
}

type SelectQuestionRequest struct {
	Index int `json:"index"`
}

type RecordAnswerRequest struct {
	Text string `json:"text"`
}

type EvaluateRequest struct {
	Mode   AnswerMode `json:"mode"`
	Answer *string    `json:"answer,omitempty"`
}
