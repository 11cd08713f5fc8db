package store

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/foxzi/campaign-console/internal/models"
)

// UnknownFilterError is returned by SetFilter for a field the store does
// not filter on
type UnknownFilterError struct {
	Store string
	Field string
}

func (e *UnknownFilterError) Error() string {
	return fmt.Sprintf("%s cannot be filtered by %q", e.Store, e.Field)
}

// NoFilter is used by collections the backend does not filter
type NoFilter struct{}

func (NoFilter) With(field, _ string) (NoFilter, error) {
	return NoFilter{}, &UnknownFilterError{Store: "collection", Field: field}
}

// ListItemFilter scopes list items to one list
type ListItemFilter struct {
	ListID int64
}

func (f ListItemFilter) With(field, value string) (ListItemFilter, error) {
	switch field {
	case "list", "list_id":
		id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil || id < 1 {
			return f, fmt.Errorf("invalid list id %q", value)
		}
		f.ListID = id
		return f, nil
	}
	return f, &UnknownFilterError{Store: "list items", Field: field}
}

// Reset keeps the list: it is the collection's scope, not a view filter.
func (f ListItemFilter) Reset() ListItemFilter {
	return ListItemFilter{ListID: f.ListID}
}

// TemplateFilter filters templates by title substring and status
type TemplateFilter struct {
	Title  string
	Status models.TemplateStatus
}

func (f TemplateFilter) With(field, value string) (TemplateFilter, error) {
	value = strings.TrimSpace(value)
	switch field {
	case "title":
		f.Title = value
		return f, nil
	case "status":
		status := models.TemplateStatus(strings.ToLower(value))
		switch status {
		case "", models.TemplateEnabled, models.TemplateDisabled:
			f.Status = status
			return f, nil
		}
		return f, fmt.Errorf("invalid template status %q", value)
	}
	return f, &UnknownFilterError{Store: "templates", Field: field}
}

// CampaignFilter filters campaigns by name
type CampaignFilter struct {
	Name string
}

func (f CampaignFilter) With(field, value string) (CampaignFilter, error) {
	if field != "name" {
		return f, &UnknownFilterError{Store: "campaigns", Field: field}
	}
	f.Name = strings.TrimSpace(value)
	return f, nil
}
