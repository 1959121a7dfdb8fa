package formatter

import (
	"bytes"
	"fmt"

	"github.com/futig/career-console/internal/entity"
)

const (
	markdownContentType   = "text/markdown; charset=utf-8"
	markdownFileExtension = ".md"
)

type MarkdownFormatter struct{}

func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

func (mf *MarkdownFormatter) Format(report *entity.InterviewReport) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n\n_%s_\n\n", baseTitle, subtitle(report))

	if avg, n := AverageScore(report); n > 0 {
		fmt.Fprintf(&buf, "**Average score:** %.1f/10 over %d evaluated answers\n\n", avg, n)
	}

	for _, s := range sections(report) {
		fmt.Fprintf(&buf, "## %s\n\n", s.heading)
		for _, line := range s.lines {
			fmt.Fprintf(&buf, "%s\n\n", line)
		}
	}

	return buf.Bytes(), nil
}

func (mf *MarkdownFormatter) ContentType() string {
	return markdownContentType
}

func (mf *MarkdownFormatter) FileExtension() string {
	return markdownFileExtension
}
