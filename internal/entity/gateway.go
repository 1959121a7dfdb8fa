package entity

// Request and response payloads of the career API.

type UploadResumeResponse struct {
	SessionID string `json:"session_id"`
	Chars     int    `json:"chars"`
}

type AnalyzeRequest struct {
	SessionID         string   `json:"session_id"`
	TargetRole        string   `json:"target_role"`
	ExperienceLevel   string   `json:"experience_level"`
	CareerField       string   `json:"career_field"`
	JobTypes          []string `json:"job_types"`
	PreferredLocation string   `json:"preferred_location"`
	SalaryRange       string   `json:"salary_range"`
	CareerGoal        string   `json:"career_goal"`
}

type AnalyzeResponse struct {
	SessionID   string       `json:"session_id"`
	Profile     *Profile     `json:"profile"`
	GapAnalysis *GapAnalysis `json:"gap_analysis"`
}

type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type ChatResponse struct {
	Reply string `json:"reply"`
	Model string `json:"model,omitempty"`
}

type TailorRequest struct {
	SessionID      string `json:"session_id"`
	JobDescription string `json:"job_description"`
}

type GenerateQuestionsRequest struct {
	SessionID    string `json:"session_id"`
	NumQuestions int    `json:"num_questions"`
}

type GenerateQuestionsResponse struct {
	Questions []Question `json:"questions"`
	Role      string     `json:"role,omitempty"`
}

type EvaluateAnswerRequest struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
}

type SessionRequest struct {
	SessionID string `json:"session_id"`
}

type GenerateProjectsResponse struct {
	Projects []Project `json:"projects"`
}

type FindJobsRequest struct {
	SessionID  string `json:"session_id"`
	Location   string `json:"location"`
	NumResults int    `json:"num_results"`
}

type HealthResponse struct {
	Status           string `json:"status"`
	GroqConfigured   bool   `json:"groq_configured"`
	Model            string `json:"model,omitempty"`
	AdzunaConfigured bool   `json:"adzuna_configured"`
}

type RemoteSession struct {
	Profile    *Profile     `json:"profile"`
	Gap        *GapAnalysis `json:"gap"`
	TargetRole string       `json:"target_role"`
}

type DeleteSessionResponse struct {
	Message string `json:"message"`
}

// ASRTranscribeResponse is the response of the speech recognition service
type ASRTranscribeResponse struct {
	Transcriptions string `json:"transcriptions"`
}
