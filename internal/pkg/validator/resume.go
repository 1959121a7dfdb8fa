package validator

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/futig/career-console/internal/entity"
	"github.com/ledongthuc/pdf"
)

var pdfMagic = []byte("%PDF-")

// ValidateResume rejects anything that is not a readable PDF before any network call
func (v *Validator) ValidateResume(filename string, data []byte) error {
	if filename == "" || len(data) == 0 {
		return fmt.Errorf("%w: file", entity.ErrMissingField)
	}

	if ext := strings.ToLower(filepath.Ext(filename)); ext != ".pdf" {
		return fmt.Errorf("%w: only PDF files accepted, got %q", entity.ErrInvalidResume, ext)
	}

	if v.cfg.MaxResumeSize > 0 && int64(len(data)) > v.cfg.MaxResumeSize {
		return fmt.Errorf("%w: file '%s' is %d bytes (max %d)", entity.ErrInvalidResume, filename, len(data), v.cfg.MaxResumeSize)
	}

	if !bytes.HasPrefix(data, pdfMagic) {
		return fmt.Errorf("%w: %s is not a PDF document", entity.ErrInvalidResume, filename)
	}

	pages, err := countPages(data)
	if err != nil {
		return fmt.Errorf("%w: %s could not be parsed: %v", entity.ErrInvalidResume, filename, err)
	}
	if pages == 0 {
		return fmt.Errorf("%w: %s has no pages", entity.ErrInvalidResume, filename)
	}

	return nil
}

// countPages recovers from panics in the PDF reader, which it raises on malformed input
func countPages(data []byte) (pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, err
	}

	return r.NumPage(), nil
}

// SanitizeFilename sanitizes a filename for logs and multipart headers
func SanitizeFilename(filename string) string {
	filename = filepath.Base(filename)
	replacer := strings.NewReplacer(
		" ", "_",
		"(", "",
		")", "",
		"[", "",
		"]", "",
		"{", "",
		"}", "",
		"\"", "",
	)
	return replacer.Replace(filename)
}
