package keyboard

import (
	"fmt"
	"strings"
)

// Callback actions
const (
	ActionFeature   = "feat"   // value: tailor, interview, projects, schedule, jobs, companies
	ActionQuestion  = "q"      // value: prev, next, retry
	ActionReport    = "report" // value: markdown, docx, pdf
	ActionNewSearch = "new"    // value: confirm
)

// CallbackData represents parsed callback data
type CallbackData struct {
	Action string
	Value  string
}

// ParseCallback parses callback data string
func ParseCallback(data string) (*CallbackData, error) {
	action, value, ok := strings.Cut(data, ":")
	if !ok || action == "" {
		return nil, fmt.Errorf("invalid callback format: %s", data)
	}

	return &CallbackData{
		Action: action,
		Value:  value,
	}, nil
}

// EncodeCallback creates callback data string
func EncodeCallback(action, value string) string {
	return action + ":" + value
}
