package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/futig/career-console/internal/entity"
)

// Telegram rejects messages longer than this many characters
const maxMessageLen = 4096

const (
	MsgWelcome = `👋 Hi! I'm your career coach.

Send me your résumé as a PDF and tell me the role you are aiming for. I will:
• Score how well you match the role and show your skill gaps
• Tailor your résumé to a job description
• Run a mock interview and grade your answers (text or voice)
• Suggest portfolio projects, a study plan, jobs and companies

Type /help to see all commands.`

	MsgHelp = `🤖 Commands:

/start - Welcome message
/new - Discard the current analysis and start over
/tailor - Tailor your résumé to a job description
/interview - Start a mock interview (3 questions)
/next, /prev - Move between interview questions
/projects - Portfolio project ideas
/schedule - Study plan with a calendar file
/jobs [location] - Matching job openings
/companies - Companies hiring for your role
/report - Export the interview report
/cancel - Cancel the current input

Any other message goes to your AI mentor.`

	MsgSendResume     = `📄 Send me your résumé as a PDF file to get started.`
	MsgAskRole        = `🎯 Got it. What role are you targeting? For example: "Backend Developer".`
	MsgAnalyzing      = `⏳ Analyzing your résumé. This can take up to a minute...`
	MsgAskJD          = `📋 Paste the job description you want your résumé tailored to.`
	MsgConfirmNew     = `⚠️ This discards your current analysis, interview and chat. Continue?`
	MsgNewSession     = `🔄 Started over. Send a new résumé PDF when you are ready.`
	MsgCancelled      = `👌 Cancelled.`
	MsgNoInterview    = `🎤 No interview yet. Start one with /interview.`
	MsgTranscribing   = `🎧 Transcribing your answer...`
	MsgEvaluating     = `🧮 Evaluating your answer...`
	MsgChooseFormat   = `📄 Choose a report format:`
	MsgNoCalendar     = `📅 The study plan came without a calendar file.`
	MsgUnknownCommand = `❌ Unknown command. Type /help for the list.`
	MsgUnsupported    = `🤔 I can read text, voice notes and PDF résumés.`
)

const (
	ErrGeneric        = `❌ Something went wrong. Please try again or send /start`
	ErrNoSession      = `📄 Analyze a résumé first: send me a PDF.`
	ErrSessionActive  = `⚠️ You already have an analysis. Send /new to start over.`
	ErrBusy           = `⏳ Still working on your previous request. Please wait.`
	ErrNotPDF         = `❌ Only PDF résumés are supported.`
	ErrFileTooLarge   = `❌ The file is too large.`
	ErrEmptyAnswer    = `✍️ Your answer is empty. Type it or send a voice note.`
	ErrTranscription  = `❌ Could not transcribe the voice note. Try again or type your answer.`
	ErrTimeout        = `❌ The operation took too long. Please try again.`
	ErrServiceFailure = `❌ The career service failed: %s`
	ErrInvalidInput   = `❌ %s`
)

// Truncate cuts text to the Telegram message limit
func Truncate(text string) string {
	if utf8.RuneCountInString(text) <= maxMessageLen {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxMessageLen-1]) + "…"
}

// AnalysisCard summarizes a fresh gap analysis
func AnalysisCard(s *entity.Session) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "🎯 %s\n", s.Preferences.TargetRole)
	if s.Analysis == nil {
		return sb.String()
	}
	a := s.Analysis

	fmt.Fprintf(&sb, "Match score: %d%%\n\n%s\n", a.MatchScore, a.Summary)

	if len(a.Strengths) > 0 {
		sb.WriteString("\n💪 Strengths\n")
		for _, st := range a.Strengths {
			fmt.Fprintf(&sb, "• %s\n", st)
		}
	}

	if len(a.Gaps) > 0 {
		sb.WriteString("\n🧩 Skill gaps\n")
		for _, g := range a.Gaps {
			fmt.Fprintf(&sb, "%s %s: %s\n", severityIcon(g.Severity), g.Skill, g.Reason)
		}
	}

	if len(a.Roadmap) > 0 {
		sb.WriteString("\n🗺 Roadmap\n")
		for _, step := range a.Roadmap {
			fmt.Fprintf(&sb, "%d. %s (%s)\n", step.Step, step.Title, step.Timeframe)
		}
	}

	if len(a.Courses) > 0 {
		sb.WriteString("\n📚 Courses\n")
		for _, c := range a.Courses {
			fmt.Fprintf(&sb, "• %s, %s", c.Title, c.Platform)
			if c.Duration != "" {
				fmt.Fprintf(&sb, " (%s)", c.Duration)
			}
			sb.WriteString("\n")
		}
	}

	return Truncate(sb.String())
}

func severityIcon(s entity.GapSeverity) string {
	switch s {
	case entity.GapSeverityCritical:
		return "🔴"
	case entity.GapSeverityModerate:
		return "🟠"
	default:
		return "🟡"
	}
}

// QuestionCard shows one interview question
func QuestionCard(q entity.Question, total int) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "❓ Question %d of %d", q.Index+1, total)
	if q.Type != "" || q.Difficulty != "" {
		fmt.Fprintf(&sb, " · %s", strings.Trim(q.Type+" / "+q.Difficulty, " /"))
	}
	fmt.Fprintf(&sb, "\n\n%s\n", q.Text)
	if q.TestsWhat != "" {
		fmt.Fprintf(&sb, "\n🔍 Tests: %s\n", q.TestsWhat)
	}
	sb.WriteString("\nType your answer or send a voice note.")

	return Truncate(sb.String())
}

// EvaluationCard shows the scored feedback of one answer
func EvaluationCard(ev *entity.Evaluation) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "📊 Score: %.1f/10", ev.Score)
	if ev.Verdict != "" {
		fmt.Fprintf(&sb, " · %s", ev.Verdict)
	}
	sb.WriteString("\n")

	if b := ev.Breakdown; b != nil {
		fmt.Fprintf(&sb, "Technical %.1f · Communication %.1f · Depth %.1f\n",
			b.TechnicalAccuracy, b.Communication, b.Depth)
	}

	writeList(&sb, "✅ Strengths", ev.Strengths)
	writeList(&sb, "🔧 Improve", ev.Improvements)

	if ev.IdealAnswerSummary != "" {
		fmt.Fprintf(&sb, "\n💡 A strong answer: %s\n", ev.IdealAnswerSummary)
	}
	if ev.FollowUpQuestion != "" {
		fmt.Fprintf(&sb, "\n➡️ Follow-up: %s\n", ev.FollowUpQuestion)
	}

	return Truncate(sb.String())
}

// TailorCard shows the résumé tailoring result
func TailorCard(r *entity.TailorResult) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "✂️ ATS score: %d → %d\n", r.ATSScoreBefore, r.ATSScoreAfter)
	if r.SummaryStatement != "" {
		fmt.Fprintf(&sb, "\n%s\n", r.SummaryStatement)
	}
	writeList(&sb, "🔑 Matched keywords", r.KeyMatches)
	writeList(&sb, "❗ Missing keywords", r.MissingKeywords)
	writeList(&sb, "📝 Tailored bullets", r.TailoredBullets)
	writeList(&sb, "💡 Tips", r.Tips)

	return Truncate(sb.String())
}

// ProjectsCard lists portfolio project ideas
func ProjectsCard(projects []entity.Project) string {
	if len(projects) == 0 {
		return "🛠 No project ideas this time. Try again later."
	}

	var sb strings.Builder
	sb.WriteString("🛠 Portfolio projects\n")
	for i, p := range projects {
		fmt.Fprintf(&sb, "\n%d. %s (%s, %s)\n%s\n", i+1, p.Title, p.Difficulty, p.TimeToBuild, p.Tagline)
		if len(p.TechStack) > 0 {
			fmt.Fprintf(&sb, "Stack: %s\n", strings.Join(p.TechStack, ", "))
		}
		if p.GapItCloses != "" {
			fmt.Fprintf(&sb, "Closes: %s\n", p.GapItCloses)
		}
	}

	return Truncate(sb.String())
}

// ScheduleCard summarizes a study plan week by week
func ScheduleCard(plan *entity.SchedulePlan) string {
	s := plan.Schedule

	var sb strings.Builder
	fmt.Fprintf(&sb, "📅 %s\n%.0f hours in total\n", s.Title, s.TotalHours)
	for _, w := range s.Weeks {
		fmt.Fprintf(&sb, "\nWeek %d: %s", w.Week, w.Theme)
		if w.DailyHours > 0 {
			fmt.Fprintf(&sb, " (%.1fh/day)", w.DailyHours)
		}
		sb.WriteString("\n")
		for _, task := range w.Tasks {
			fmt.Fprintf(&sb, "• %s\n", task.Title)
		}
	}
	if len(s.Milestones) > 0 {
		sb.WriteString("\n🏁 Milestones\n")
		for _, m := range s.Milestones {
			fmt.Fprintf(&sb, "Week %d: %s\n", m.Week, m.Goal)
		}
	}

	return Truncate(sb.String())
}

// JobsCard lists job openings
func JobsCard(search *entity.JobSearch) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "💼 %s jobs in %s\n", search.Role, search.Location)
	if len(search.Jobs) == 0 {
		sb.WriteString("\nNo openings found.\n")
	}
	for i, j := range search.Jobs {
		fmt.Fprintf(&sb, "\n%d. %s at %s (%d%% match)\n%s", i+1, j.Title, j.Company, j.Match, j.Location)
		if j.Salary != "" {
			fmt.Fprintf(&sb, " · %s", j.Salary)
		}
		sb.WriteString("\n")
		if j.ApplyURL != "" {
			fmt.Fprintf(&sb, "%s\n", j.ApplyURL)
		}
	}
	if search.Tip != "" {
		fmt.Fprintf(&sb, "\n💡 %s\n", search.Tip)
	}

	return Truncate(sb.String())
}

// CompaniesCard lists employers ranked by fit
func CompaniesCard(companies []entity.Company) string {
	var sb strings.Builder

	sb.WriteString("🏢 Companies hiring for your role\n")
	for _, c := range companies {
		fmt.Fprintf(&sb, "\n%s %s · fit %d%%\n%s · %s\n%s\n", c.Logo, c.Name, c.FitScore, c.Type, c.Salary, c.Why)
	}

	return Truncate(sb.String())
}

func writeList(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "\n%s\n", title)
	for _, it := range items {
		fmt.Fprintf(sb, "• %s\n", it)
	}
}
