package formatter

import (
	"bytes"
	"fmt"

	"github.com/futig/career-console/internal/entity"
	"github.com/unidoc/unioffice/document"
)

const (
	docxContentType   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	docxFileExtension = ".docx"
)

type DOCXFormatter struct{}

func NewDOCXFormatter() *DOCXFormatter {
	return &DOCXFormatter{}
}

func (df *DOCXFormatter) Format(report *entity.InterviewReport) ([]byte, error) {
	doc := document.New()
	defer doc.Close()

	titlePar := doc.AddParagraph()
	titlePar.SetStyle("Heading1")
	titlePar.AddRun().AddText(baseTitle)

	subPar := doc.AddParagraph()
	subRun := subPar.AddRun()
	subRun.Properties().SetItalic(true)
	subRun.AddText(subtitle(report))

	if avg, n := AverageScore(report); n > 0 {
		avgRun := doc.AddParagraph().AddRun()
		avgRun.Properties().SetBold(true)
		avgRun.AddText(fmt.Sprintf("Average score: %.1f/10 over %d evaluated answers", avg, n))
	}

	for _, s := range sections(report) {
		headPar := doc.AddParagraph()
		headPar.SetStyle("Heading2")
		headPar.AddRun().AddText(s.heading)

		for _, line := range s.lines {
			doc.AddParagraph().AddRun().AddText(line)
		}
	}

	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (df *DOCXFormatter) ContentType() string {
	return docxContentType
}

func (df *DOCXFormatter) FileExtension() string {
	return docxFileExtension
}
