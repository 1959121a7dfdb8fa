package formatter

import (
	"fmt"
	"strings"

	"github.com/futig/career-console/internal/entity"
)

const baseTitle = "Mock Interview Report"

type Formatter interface {
	Format(report *entity.InterviewReport) ([]byte, error)
	ContentType() string
	FileExtension() string
}

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Create(format entity.ResultFormat) (Formatter, error) {
	switch format {
	case entity.FormatMarkdown:
		return NewMarkdownFormatter(), nil
	case entity.FormatDOCX:
		return NewDOCXFormatter(), nil
	case entity.FormatPDF:
		return NewPDFFormatter(), nil
	default:
		return nil, fmt.Errorf("%w: unsupported format: %s", entity.ErrInvalidFormat, format)
	}
}

// section is one block of a report, shared by the document formatters
type section struct {
	heading string
	lines   []string
}

func subtitle(r *entity.InterviewReport) string {
	return fmt.Sprintf("Role: %s · Match score: %d%% · %s",
		r.TargetRole, r.MatchScore, r.GeneratedAt.Format("2006-01-02 15:04 MST"))
}

func sections(r *entity.InterviewReport) []section {
	out := make([]section, 0, len(r.Items))
	for _, item := range r.Items {
		q := item.Question
		s := section{
			heading: fmt.Sprintf("Q%d. %s", q.Index+1, q.Text),
			lines:   []string{fmt.Sprintf("Type: %s, difficulty: %s", q.Type, q.Difficulty)},
		}

		if item.Answer != nil && strings.TrimSpace(item.Answer.Content) != "" {
			s.lines = append(s.lines, fmt.Sprintf("Answer (%s): %s", item.Answer.Mode, strings.TrimSpace(item.Answer.Content)))
		} else {
			s.lines = append(s.lines, "Answer: not answered")
		}

		if ev := item.Evaluation; ev != nil {
			s.lines = append(s.lines, fmt.Sprintf("Score: %.1f/10 (%s)", ev.Score, ev.Verdict))
			if b := ev.Breakdown; b != nil {
				s.lines = append(s.lines, fmt.Sprintf("Technical %.0f · Communication %.0f · Depth %.0f",
					b.TechnicalAccuracy, b.Communication, b.Depth))
			}
			for _, st := range ev.Strengths {
				s.lines = append(s.lines, "+ "+st)
			}
			for _, im := range ev.Improvements {
				s.lines = append(s.lines, "- "+im)
			}
			if ev.IdealAnswerSummary != "" {
				s.lines = append(s.lines, "Ideal answer: "+ev.IdealAnswerSummary)
			}
			if ev.FollowUpQuestion != "" {
				s.lines = append(s.lines, "Follow-up: "+ev.FollowUpQuestion)
			}
		}

		out = append(out, s)
	}
	return out
}

// AverageScore is the mean score over evaluated questions, 0 when none
func AverageScore(r *entity.InterviewReport) (float64, int) {
	var sum float64
	var n int
	for _, item := range r.Items {
		if item.Evaluation != nil {
			sum += item.Evaluation.Score
			n++
		}
	}
	if n == 0 {
		return 0, 0
	}
	return sum / float64(n), n
}
