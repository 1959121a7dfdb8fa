package entity

import (
	"time"
)

// Preferences are the targeting preferences entered before analysis.
// They are echoed back into the Session once the analysis succeeds.
type Preferences struct {
	TargetRole        string   `json:"target_role" validate:"required,max=120"`
	ExperienceLevel   string   `json:"experience_level" validate:"max=40"`
	CareerField       string   `json:"career_field" validate:"max=120"`
	JobTypes          []string `json:"job_types" validate:"dive,max=60"`
	PreferredLocation string   `json:"preferred_location" validate:"max=120"`
	SalaryRange       string   `json:"salary_range" validate:"max=60"`
	CareerGoal        string   `json:"career_goal" validate:"max=2000"`
}

const DefaultExperienceLevel = "fresher"

// Session is the server-correlated analysis session held by a console
type Session struct {
	ID          string       `json:"id"`
	Preferences Preferences  `json:"preferences"`
	Analysis    *GapAnalysis `json:"analysis"`
	Profile     *Profile     `json:"profile,omitempty"`
	ResumeChars int          `json:"resume_chars"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Profile is the candidate profile extracted from the résumé by the remote API
type Profile struct {
	Name       string           `json:"name"`
	Email      string           `json:"email"`
	Phone      string           `json:"phone"`
	Skills     []string         `json:"skills"`
	Education  []EducationEntry `json:"education"`
	Experience []ExperienceItem `json:"experience"`
}

type EducationEntry struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
}

type ExperienceItem struct {
	Title   string `json:"title"`
	Company string `json:"company"`
}

// GapSeverity is the severity of a skill gap
type GapSeverity string

const (
	GapSeverityCritical GapSeverity = "critical"
	GapSeverityModerate GapSeverity = "moderate"
	GapSeverityMinor    GapSeverity = "minor"
)

// GapAnalysis is immutable once received; a new analyze call replaces it wholesale
type GapAnalysis struct {
	MatchScore    int           `json:"matchScore"`
	Summary       string        `json:"summary"`
	Strengths     []string      `json:"strengths"`
	Gaps          []Gap         `json:"gaps"`
	SkillBars     []SkillBar    `json:"skillBars"`
	Roadmap       []RoadmapStep `json:"roadmap"`
	Courses       []Course      `json:"courses"`
	MissingSkills []string      `json:"missing_skills"`
}

type Gap struct {
	Skill    string      `json:"skill"`
	Severity GapSeverity `json:"severity"`
	Reason   string      `json:"reason"`
}

type SkillBar struct {
	Name       string `json:"name"`
	Percentage int    `json:"percentage"`
}

type RoadmapStep struct {
	Step        int    `json:"step"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Timeframe   string `json:"timeframe"`
	Type        string `json:"type,omitempty"`
}

type Course struct {
	Title    string `json:"title"`
	Platform string `json:"platform"`
	Duration string `json:"duration"`
	Why      string `json:"why"`
	URL      string `json:"url,omitempty"`
}

// Question is one interview question; Index is stable within its batch
type Question struct {
	Index      int      `json:"index"`
	ID         int      `json:"id,omitempty"`
	Text       string   `json:"question"`
	Type       string   `json:"type"`
	Difficulty string   `json:"difficulty"`
	TestsWhat  string   `json:"what_they_test,omitempty"`
	Hints      []string `json:"good_answer_hints"`
}

// AnswerMode is how an interview answer was captured
type AnswerMode string

const (
	AnswerModeVoice AnswerMode = "voice"
	AnswerModeText  AnswerMode = "text"
)

type Answer struct {
	Mode    AnswerMode `json:"mode"`
	Content string     `json:"content"`
}

// Evaluation is the scored feedback for one interview answer
type Evaluation struct {
	Score              float64         `json:"score"`
	Breakdown          *ScoreBreakdown `json:"score_breakdown,omitempty"`
	Verdict            string          `json:"verdict"`
	Strengths          []string        `json:"strengths"`
	Improvements       []string        `json:"improvements"`
	IdealAnswerSummary string          `json:"ideal_answer_summary,omitempty"`
	FollowUpQuestion   string          `json:"follow_up_question,omitempty"`
}

type ScoreBreakdown struct {
	TechnicalAccuracy float64 `json:"technical_accuracy"`
	Communication     float64 `json:"communication"`
	Depth             float64 `json:"depth"`
	Structure         float64 `json:"structure,omitempty"`
}

// TailorResult is the résumé tailoring output
type TailorResult struct {
	ATSScoreBefore   int      `json:"ats_score_before"`
	ATSScoreAfter    int      `json:"ats_score_after"`
	KeyMatches       []string `json:"key_matches"`
	MissingKeywords  []string `json:"missing_keywords"`
	SummaryStatement string   `json:"summary_statement"`
	TailoredBullets  []string `json:"tailored_bullets"`
	Tips             []string `json:"tips"`
}

type Project struct {
	Title           string   `json:"title"`
	Tagline         string   `json:"tagline"`
	Difficulty      string   `json:"difficulty"`
	TimeToBuild     string   `json:"time_to_build"`
	TechStack       []string `json:"tech_stack"`
	WhyImpressive   string   `json:"why_impressive"`
	GapItCloses     string   `json:"gap_it_closes"`
	Steps           []string `json:"steps"`
	BonusFeatures   []string `json:"bonus_features"`
	GithubReadmeTip string   `json:"github_readme_tip"`
}

type Schedule struct {
	Title      string      `json:"title"`
	TotalHours float64     `json:"total_hours"`
	Weeks      []Week      `json:"weeks"`
	Milestones []Milestone `json:"milestones"`
}

type Week struct {
	Week       int         `json:"week"`
	Theme      string      `json:"theme"`
	Focus      string      `json:"focus"`
	DailyHours float64     `json:"daily_hours"`
	Tasks      []StudyTask `json:"tasks"`
}

type StudyTask struct {
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	DayOffset     int     `json:"day_offset"`
	DurationHours float64 `json:"duration_hours"`
	Type          string  `json:"type"`
}

type Milestone struct {
	Week int    `json:"week"`
	Goal string `json:"goal"`
}

// SchedulePlan is a generated schedule plus its calendar text, passed through verbatim
type SchedulePlan struct {
	Schedule    Schedule `json:"schedule"`
	ICSDownload string   `json:"ics_download"`
}

type Job struct {
	Title         string   `json:"title"`
	Company       string   `json:"company"`
	Location      string   `json:"location"`
	Salary        string   `json:"salary"`
	Type          string   `json:"type"`
	Logo          string   `json:"logo"`
	ApplyURL      string   `json:"apply_url"`
	Posted        string   `json:"posted"`
	Description   string   `json:"description"`
	Match         int      `json:"match"`
	Source        string   `json:"source"`
	SkillsMatched []string `json:"skills_matched,omitempty"`
}

// JobSearch is the result of one job search
type JobSearch struct {
	Jobs     []Job  `json:"jobs"`
	Source   string `json:"source"`
	Role     string `json:"role"`
	Location string `json:"location"`
	Tip      string `json:"tip,omitempty"`
}

// ChatRole identifies the author of a mentor chat message
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

type ChatMessage struct {
	Role      ChatRole  `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// FitLevel is a company's declared fit for a role
type FitLevel string

const (
	FitHigh   FitLevel = "high"
	FitMedium FitLevel = "medium"
)

type Company struct {
	Name     string   `json:"name"`
	Logo     string   `json:"logo"`
	Type     string   `json:"type"`
	Fit      FitLevel `json:"fit"`
	Why      string   `json:"why"`
	Hiring   string   `json:"hiring"`
	Salary   string   `json:"salary"`
	FitScore int      `json:"fit_score"`
}

// EvaluationAttempt is one recorded interview evaluation
type EvaluationAttempt struct {
	ID            string      `json:"id"`
	SessionID     string      `json:"session_id"`
	QuestionIndex int         `json:"question_index"`
	Question      string      `json:"question"`
	Answer        string      `json:"answer"`
	AnswerMode    AnswerMode  `json:"answer_mode"`
	Score         float64     `json:"score"`
	Verdict       string      `json:"verdict"`
	Evaluation    *Evaluation `json:"evaluation"`
	CreatedAt     time.Time   `json:"created_at"`
}

// InterviewReport is the exportable summary of one mock interview
type InterviewReport struct {
	TargetRole  string
	MatchScore  int
	GeneratedAt time.Time
	Items       []ReportItem
}

type ReportItem struct {
	Question   Question
	Answer     *Answer
	Evaluation *Evaluation
}
