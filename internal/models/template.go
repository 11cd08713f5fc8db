package models

import (
	"encoding/json"
	"strings"
)

type TemplateStatus string

const (
	TemplateEnabled  TemplateStatus = "enabled"
	TemplateDisabled TemplateStatus = "disabled"
)

// Template is a reusable message design. Content holds the serialized
// editor design and is only populated by detail fetches.
type Template struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Status      TemplateStatus `json:"status"`
	Content     string         `json:"content,omitempty"`
	CreatedDate Timestamp      `json:"createdDate"`
}

type TemplateDraft struct {
	Title   string `json:"title"`
	Content string `json:"content,omitempty"`
}

func (d TemplateDraft) Validate() error {
	var errs ValidationErrors
	if strings.TrimSpace(d.Title) == "" {
		errs = append(errs, "template title is required")
	}
	if d.Content != "" && ValidateContent(d.Content) != nil {
		errs = append(errs, errInvalidContent)
	}
	return errs.orNil()
}

const errInvalidContent = "template content must be a JSON design"

// ValidateContent checks a serialized editor design
func ValidateContent(content string) error {
	if !json.Valid([]byte(content)) {
		return ValidationErrors{errInvalidContent}
	}
	return nil
}
