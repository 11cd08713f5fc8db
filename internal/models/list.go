package models

import "strings"

// List is a named audience of list items
type List struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	AudienceCount int       `json:"audienceCount"`
	CreatedDate   Timestamp `json:"createdDate"`
}

// ListDraft is the payload for creating or renaming a list
type ListDraft struct {
	Name string `json:"name"`
}

func (d ListDraft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ValidationErrors{"list name is required"}
	}
	return nil
}

// ItemStatus classifies a list item's email address
type ItemStatus string

const (
	ItemValid     ItemStatus = "valid"
	ItemInvalid   ItemStatus = "invalid"
	ItemDuplicate ItemStatus = "duplicate"
)

// ListItem is a single recipient in a list
type ListItem struct {
	ID          int64             `json:"id"`
	ListID      int64             `json:"listId"`
	Email       string            `json:"email"`
	Name        string            `json:"name,omitempty"`
	Status      ItemStatus        `json:"status"`
	Variables   map[string]string `json:"variables,omitempty"`
	CreatedDate Timestamp         `json:"createdDate"`
}

// ListItemDraft is a recipient row ready for upload
type ListItemDraft struct {
	Email     string            `json:"email"`
	Name      string            `json:"name,omitempty"`
	Variables map[string]string `json:"variables,omitempty"`
}
