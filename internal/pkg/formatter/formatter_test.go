package formatter

import (
	"bytes"
	"testing"
	"time"

	"github.com/futig/career-console/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *entity.InterviewReport {
	return &entity.InterviewReport{
		TargetRole:  "Backend Developer",
		MatchScore:  64,
		GeneratedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		Items: []entity.ReportItem{
			{
				Question: entity.Question{Index: 0, Text: "What is a goroutine?", Type: "technical", Difficulty: "easy"},
				Answer:   &entity.Answer{Mode: entity.AnswerModeVoice, Content: "A lightweight thread "},
				Evaluation: &entity.Evaluation{
					Score:        8,
					Verdict:      "Good Answer",
					Breakdown:    &entity.ScoreBreakdown{TechnicalAccuracy: 8, Communication: 7, Depth: 6},
					Strengths:    []string{"Concise"},
					Improvements: []string{"Mention the scheduler"},
				},
			},
			{
				Question: entity.Question{Index: 1, Text: "Tell me about a conflict.", Type: "behavioral", Difficulty: "medium"},
			},
		},
	}
}

func TestMarkdownFormatter(t *testing.T) {
	out, err := NewMarkdownFormatter().Format(sampleReport())
	require.NoError(t, err)

	md := string(out)
	assert.Contains(t, md, "# Mock Interview Report")
	assert.Contains(t, md, "Role: Backend Developer")
	assert.Contains(t, md, "**Average score:** 8.0/10 over 1 evaluated answers")
	assert.Contains(t, md, "## Q1. What is a goroutine?")
	assert.Contains(t, md, "Answer (voice): A lightweight thread\n")
	assert.Contains(t, md, "Score: 8.0/10 (Good Answer)")
	assert.Contains(t, md, "- Mention the scheduler")
	assert.Contains(t, md, "## Q2. Tell me about a conflict.")
	assert.Contains(t, md, "Answer: not answered")
}

func TestDocumentFormatters(t *testing.T) {
	f := NewFactory()

	docx, err := f.Create(entity.FormatDOCX)
	require.NoError(t, err)
	out, err := docx.Format(sampleReport())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("PK")))
	assert.Equal(t, ".docx", docx.FileExtension())

	pdf, err := f.Create(entity.FormatPDF)
	require.NoError(t, err)
	out, err = pdf.Format(sampleReport())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Equal(t, "application/pdf", pdf.ContentType())
}

func TestFactory_Unsupported(t *testing.T) {
	_, err := NewFactory().Create("html")
	assert.ErrorIs(t, err, entity.ErrInvalidFormat)
}

func TestAverageScore_NoEvaluations(t *testing.T) {
	avg, n := AverageScore(&entity.InterviewReport{})
	assert.Zero(t, avg)
	assert.Zero(t, n)
}
