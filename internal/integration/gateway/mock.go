package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/futig/career-console/internal/entity"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector - мок-реализация карьерного API для локального запуска
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) Upload(ctx context.Context, filename string, data []byte) (*entity.UploadResumeResponse, error) {
	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return nil, transportError("upload resume", fmt.Errorf("Only PDF files accepted."))
	}

	sid := uuid.NewString()[:8]
	ctxzap.Info(ctx, "[MOCK] resume uploaded",
		zap.String("session_id", sid),
		zap.Int("size", len(data)),
	)

	return &entity.UploadResumeResponse{SessionID: sid, Chars: len(data)}, nil
}

func (m *MockConnector) Analyze(ctx context.Context, req *entity.AnalyzeRequest) (*entity.AnalyzeResponse, error) {
	ctxzap.Info(ctx, "[MOCK] analyzing resume", zap.String("target_role", req.TargetRole))

	role := req.TargetRole
	return &entity.AnalyzeResponse{
		SessionID: req.SessionID,
		Profile: &entity.Profile{
			Name:   "Demo Candidate",
			Email:  "demo@example.com",
			Skills: []string{"Python", "JavaScript", "React", "SQL", "Git"},
			Education: []entity.EducationEntry{
				{Degree: "B.Tech Computer Science"},
			},
			Experience: []entity.ExperienceItem{
				{Title: "Software Engineer Intern"},
			},
		},
		GapAnalysis: &entity.GapAnalysis{
			MatchScore: 64,
			Summary:    fmt.Sprintf("Good potential for %s. Python, React are valuable. Close 2 critical gaps to boost your chances.", role),
			Strengths:  []string{"Python", "React", "SQL"},
			Gaps: []entity.Gap{
				{Skill: "Node.js", Severity: entity.GapSeverityCritical, Reason: fmt.Sprintf("Core requirement for %s", role)},
				{Skill: "Docker", Severity: entity.GapSeverityModerate, Reason: fmt.Sprintf("Highly preferred for %s roles", role)},
				{Skill: "Kubernetes", Severity: entity.GapSeverityMinor, Reason: "Nice-to-have that boosts your profile"},
			},
			SkillBars: []entity.SkillBar{
				{Name: "Python", Percentage: 75},
				{Name: "React", Percentage: 78},
				{Name: "SQL", Percentage: 61},
			},
			Roadmap: []entity.RoadmapStep{
				{Step: 1, Title: "Close Critical Gaps", Description: "Focus on Node.js. Spend 2-3 hours daily.", Timeframe: "0-1 month", Type: "immediate"},
				{Step: 2, Title: "Build Real Projects", Description: "Create 2-3 portfolio projects using Python, React. Push to GitHub.", Timeframe: "1-3 months", Type: "short"},
				{Step: 3, Title: "Apply & Network", Description: fmt.Sprintf("Apply to 10 %s positions/week.", role), Timeframe: "3-6 months", Type: "long"},
			},
			Courses: []entity.Course{
				{Title: "Full Stack Open", Platform: "University of Helsinki (Free)", Duration: "13 weeks", Why: "Modern React + Node + TypeScript", URL: "https://fullstackopen.com"},
			},
			MissingSkills: []string{"Node.js"},
		},
	}, nil
}

func (m *MockConnector) Chat(ctx context.Context, req *entity.ChatRequest) (*entity.ChatResponse, error) {
	ctxzap.Info(ctx, "[MOCK] chat", zap.Int("message_length", len(req.Message)))

	return &entity.ChatResponse{
		Reply: "Focus on learning **Node.js** first. Start with a structured course this week.",
		Model: "mock",
	}, nil
}

func (m *MockConnector) Tailor(ctx context.Context, req *entity.TailorRequest) (*entity.TailorResult, error) {
	ctxzap.Info(ctx, "[MOCK] tailoring resume")

	return &entity.TailorResult{
		ATSScoreBefore:   50,
		ATSScoreAfter:    75,
		KeyMatches:       []string{"Python", "React", "SQL"},
		MissingKeywords:  []string{"Docker", "CI/CD"},
		SummaryStatement: "Engineer with hands-on experience building web applications.",
		TailoredBullets: []string{
			"• Built scalable REST APIs serving 50K+ daily requests",
			"• Engineered a React dashboard reducing page load time by 40%",
		},
		Tips: []string{"Mirror the job description keywords", "Quantify impact"},
	}, nil
}

func (m *MockConnector) GenerateQuestions(ctx context.Context, req *entity.GenerateQuestionsRequest) (*entity.GenerateQuestionsResponse, error) {
	ctxzap.Info(ctx, "[MOCK] generating questions", zap.Int("num_questions", req.NumQuestions))

	templates := []entity.Question{
		{Type: "technical", Difficulty: "medium", Text: "Explain how you would design a REST API for a job board.", TestsWhat: "API design", Hints: []string{"Resources", "Pagination", "Errors"}},
		{Type: "behavioral", Difficulty: "easy", Text: "Tell me about a project you are proud of.", TestsWhat: "Ownership + communication", Hints: []string{"Be specific", "Quantify impact"}},
		{Type: "technical", Difficulty: "hard", Text: "How would you scale a service to 10x traffic?", TestsWhat: "System design", Hints: []string{"Caching", "Horizontal scaling", "Trade-offs"}},
	}

	questions := make([]entity.Question, 0, req.NumQuestions)
	for i := 0; i < req.NumQuestions; i++ {
		q := templates[i%len(templates)]
		q.ID = i + 1
		questions = append(questions, q)
	}

	return &entity.GenerateQuestionsResponse{Questions: questions, Role: "Software Engineer"}, nil
}

func (m *MockConnector) EvaluateAnswer(ctx context.Context, req *entity.EvaluateAnswerRequest) (*entity.Evaluation, error) {
	ctxzap.Info(ctx, "[MOCK] evaluating answer", zap.Int("answer_length", len(req.Answer)))

	return &entity.Evaluation{
		Score:              6,
		Verdict:            "Decent Answer",
		Strengths:          []string{"Showed understanding of the concept"},
		Improvements:       []string{"Add more specific examples", "Mention trade-offs and alternatives"},
		IdealAnswerSummary: "A strong answer includes specific technical details with real examples.",
		FollowUpQuestion:   "Can you elaborate with a real project example?",
		Breakdown: &entity.ScoreBreakdown{
			TechnicalAccuracy: 6,
			Communication:     7,
			Depth:             5,
			Structure:         6,
		},
	}, nil
}

func (m *MockConnector) GenerateProjects(ctx context.Context, req *entity.SessionRequest) (*entity.GenerateProjectsResponse, error) {
	ctxzap.Info(ctx, "[MOCK] generating projects")

	return &entity.GenerateProjectsResponse{Projects: []entity.Project{{
		Title:           "Portfolio App",
		Tagline:         "Showcase your skills",
		Difficulty:      "Intermediate",
		TimeToBuild:     "3 weeks",
		TechStack:       []string{"Python", "React"},
		WhyImpressive:   "Demonstrates your full skill set to employers",
		GapItCloses:     "Node.js",
		Steps:           []string{"Plan architecture", "Build backend API", "Create frontend", "Add tests", "Deploy publicly"},
		BonusFeatures:   []string{"Add authentication", "Write documentation"},
		GithubReadmeTip: "Include a live demo link and screenshots",
	}}}, nil
}

func (m *MockConnector) GenerateSchedule(ctx context.Context, req *entity.SessionRequest) (*entity.SchedulePlan, error) {
	ctxzap.Info(ctx, "[MOCK] generating schedule")

	focus := []string{"Node.js", "Docker", "Kubernetes", "Practice"}
	weeks := make([]entity.Week, 0, len(focus))
	for i, f := range focus {
		weeks = append(weeks, entity.Week{
			Week:       i + 1,
			Theme:      fmt.Sprintf("Week %d", i+1),
			Focus:      f,
			DailyHours: 2,
			Tasks: []entity.StudyTask{{
				Title:         "Study " + f,
				Description:   "Structured learning",
				DayOffset:     i*7 + 1,
				DurationHours: 2,
				Type:          "course",
			}},
		})
	}

	return &entity.SchedulePlan{
		Schedule: entity.Schedule{
			Title:      "4-Week Roadmap",
			TotalHours: 40,
			Weeks:      weeks,
			Milestones: []entity.Milestone{{Week: 2, Goal: "Complete first course"}, {Week: 4, Goal: "Apply to 5 jobs"}},
		},
		ICSDownload: "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//career-console//mock//EN\r\nEND:VCALENDAR\r\n",
	}, nil
}

func (m *MockConnector) FindJobs(ctx context.Context, req *entity.FindJobsRequest) (*entity.JobSearch, error) {
	ctxzap.Info(ctx, "[MOCK] searching jobs", zap.String("location", req.Location))

	jobs := []entity.Job{
		{Title: "Software Engineer", Company: "Razorpay", Location: req.Location, Salary: "₹18–35 LPA", Type: "Full-time", Logo: "🟣", ApplyURL: "#", Posted: "2 days ago", Match: 82, Source: "mock"},
		{Title: "Backend Developer", Company: "Swiggy", Location: req.Location, Salary: "₹15–30 LPA", Type: "Full-time", Logo: "🟠", ApplyURL: "#", Posted: "1 week ago", Match: 74, Source: "mock"},
	}
	if req.NumResults < len(jobs) {
		jobs = jobs[:req.NumResults]
	}

	return &entity.JobSearch{
		Jobs:     jobs,
		Source:   "mock",
		Role:     "Software Engineer",
		Location: req.Location,
		Tip:      "Configure the career API for live job data",
	}, nil
}

func (m *MockConnector) Health(ctx context.Context) (*entity.HealthResponse, error) {
	return &entity.HealthResponse{Status: "online", Model: "mock"}, nil
}

func (m *MockConnector) Probe(ctx context.Context) (*entity.HealthResponse, error) {
	return m.Health(ctx)
}

func (m *MockConnector) GetSession(ctx context.Context, sessionID string) (*entity.RemoteSession, error) {
	return nil, transportError("get session", fmt.Errorf("Not found."))
}

func (m *MockConnector) DeleteSession(ctx context.Context, sessionID string) error {
	ctxzap.Info(ctx, "[MOCK] deleting session", zap.String("session_id", sessionID))
	return nil
}
