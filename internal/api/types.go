package api

import "github.com/foxzi/campaign-console/internal/models"

// ErrorResponse is the error body returned by the backend. Older
// endpoints use "error" instead of "message".
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// PageRequest is the body of the unfiltered list endpoints
type PageRequest struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// LoginResponse is returned by POST /auth/login
type LoginResponse struct {
	Token string              `json:"token"`
	User  models.UserIdentity `json:"user"`
}

// UsersResponse is returned by POST /user/list
type UsersResponse struct {
	Users []models.User `json:"users"`
	Total int           `json:"total"`
	Page  int           `json:"page,omitempty"`
	Limit int           `json:"limit"`
}

// ListsResponse is returned by POST /list/filter
type ListsResponse struct {
	Lists []models.List `json:"lists"`
	Total int           `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// ListItemFilterRequest is the body of POST /list/item/filter
type ListItemFilterRequest struct {
	ListID int64 `json:"list_id"`
	Page   int   `json:"page"`
	Limit  int   `json:"limit"`
}

// ListItemsResponse is returned by POST /list/item/filter
type ListItemsResponse struct {
	Items []models.ListItem `json:"items"`
	Total int               `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

// UploadRequest is the body of POST /list/item/upload
type UploadRequest struct {
	ListID int64                  `json:"list_id"`
	Items  []models.ListItemDraft `json:"items"`
}

// UploadResponse reports what the server stored. The server may skip rows
// that already exist in the list.
type UploadResponse struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
}

// TemplateFilterRequest is the body of POST /template/filter
type TemplateFilterRequest struct {
	Page   int    `json:"page"`
	Limit  int    `json:"limit"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

// TemplatesResponse is returned by POST /template/filter
type TemplatesResponse struct {
	Templates []models.Template `json:"templates"`
	Total     int               `json:"total"`
	Page      int               `json:"page,omitempty"`
	Limit     int               `json:"limit,omitempty"`
}

// TemplateUpdateRequest is the body of PUT /template/update/:id
type TemplateUpdateRequest struct {
	Content string `json:"content"`
}

// ToggleResponse is returned by PUT /template/toggle/:id
type ToggleResponse struct {
	Status models.TemplateStatus `json:"status"`
}

// CampaignFilterRequest is the body of POST /campaign/list
type CampaignFilterRequest struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Name  string `json:"name"`
}

// CampaignsResponse is returned by POST /campaign/list
type CampaignsResponse struct {
	Campaigns []models.Campaign `json:"campaigns"`
	Total     int               `json:"total"`
	Page      int               `json:"page,omitempty"`
	Limit     int               `json:"limit,omitempty"`
}
