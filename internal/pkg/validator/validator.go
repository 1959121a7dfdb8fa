package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/futig/career-console/internal/config"
	"github.com/futig/career-console/internal/entity"
	"github.com/go-playground/validator/v10"
)

// Validator checks user input before anything reaches the career API
type Validator struct {
	cfg      config.ConsoleConfig
	validate *validator.Validate
}

func New(cfg config.ConsoleConfig) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{
		cfg:      cfg,
		validate: v,
	}
}

// Struct validates tagged request structs and maps the first failure to a domain error
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", entity.ErrInvalidInput, err)
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%w: %s", entity.ErrMissingField, fe.Field())
	case "url":
		return fmt.Errorf("%w: %s must be a valid URL", entity.ErrInvalidFormat, fe.Field())
	case "max":
		return fmt.Errorf("%w: %s is longer than %s", entity.ErrInvalidInput, fe.Field(), fe.Param())
	default:
		return fmt.Errorf("%w: %s failed %q", entity.ErrInvalidInput, fe.Field(), fe.Tag())
	}
}

// ValidatePreferences trims the preferences in place and validates them
func (v *Validator) ValidatePreferences(prefs *entity.Preferences) error {
	prefs.TargetRole = strings.TrimSpace(prefs.TargetRole)
	prefs.ExperienceLevel = strings.TrimSpace(prefs.ExperienceLevel)
	prefs.CareerField = strings.TrimSpace(prefs.CareerField)
	prefs.PreferredLocation = strings.TrimSpace(prefs.PreferredLocation)
	prefs.SalaryRange = strings.TrimSpace(prefs.SalaryRange)
	prefs.CareerGoal = strings.TrimSpace(prefs.CareerGoal)

	if prefs.ExperienceLevel == "" {
		prefs.ExperienceLevel = entity.DefaultExperienceLevel
	}

	return v.Struct(prefs)
}

func (v *Validator) ValidateJobDescription(jd string) error {
	if strings.TrimSpace(jd) == "" {
		return fmt.Errorf("%w: job_description", entity.ErrMissingField)
	}
	return nil
}

// ValidateQuestionCount returns the count to request, defaulting to 3
func (v *Validator) ValidateQuestionCount(n int) (int, error) {
	if n == 0 {
		return 3, nil
	}
	if n < 1 || n > v.cfg.MaxQuestions {
		return 0, fmt.Errorf("%w: num_questions must be between 1 and %d, got %d", entity.ErrInvalidParameter, v.cfg.MaxQuestions, n)
	}
	return n, nil
}

// NormalizeJobSearch fills defaults ("India", 5 results) and checks bounds
func (v *Validator) NormalizeJobSearch(req *entity.JobsTaskRequest) error {
	req.Location = strings.TrimSpace(req.Location)
	if req.Location == "" {
		req.Location = "India"
	}

	if req.NumResults == 0 {
		req.NumResults = 5
	}
	if req.NumResults < 1 || req.NumResults > v.cfg.MaxJobResults {
		return fmt.Errorf("%w: num_results must be between 1 and %d, got %d", entity.ErrInvalidParameter, v.cfg.MaxJobResults, req.NumResults)
	}

	return nil
}
