package store

import (
	"context"
	"log/slog"

	"github.com/foxzi/campaign-console/internal/api"
	"github.com/foxzi/campaign-console/internal/models"
)

// TemplateAPI is the part of the backend the templates store needs
type TemplateAPI interface {
	FilterTemplates(ctx context.Context, req api.TemplateFilterRequest) (*api.TemplatesResponse, error)
	GetTemplate(ctx context.Context, id int64) (*models.Template, error)
	AddTemplate(ctx context.Context, draft models.TemplateDraft) (*models.Template, error)
	UpdateTemplate(ctx context.Context, id int64, content string) error
	ToggleTemplate(ctx context.Context, id int64) (*api.ToggleResponse, error)
}

type Templates struct {
	*Collection[models.Template, TemplateFilter]
	api TemplateAPI
}

func NewTemplates(client TemplateAPI, limit int, logger *slog.Logger) *Templates {
	fetch := func(ctx context.Context, q Query[TemplateFilter]) (*Page[models.Template], error) {
		resp, err := client.FilterTemplates(ctx, api.TemplateFilterRequest{
			Page:   q.Page,
			Limit:  q.Limit,
			Title:  q.Filter.Title,
			Status: string(q.Filter.Status),
		})
		if err != nil {
			return nil, err
		}
		return &Page[models.Template]{Items: resp.Templates, Total: resp.Total, Page: resp.Page, Limit: resp.Limit}, nil
	}
	return &Templates{
		Collection: NewCollection("templates", limit, fetch, logger),
		api:        client,
	}
}

// Get loads one template including its content
func (s *Templates) Get(ctx context.Context, id int64) (*models.Template, error) {
	return s.api.GetTemplate(ctx, id)
}

// Add creates a template and returns it with its server assigned id
func (s *Templates) Add(ctx context.Context, draft models.TemplateDraft) (*models.Template, error) {
	var created *models.Template
	err := s.Mutate(ctx, "add", func(ctx context.Context) error {
		if err := draft.Validate(); err != nil {
			return err
		}
		var err error
		created, err = s.api.AddTemplate(ctx, draft)
		return err
	})
	return created, err
}

// UpdateContent saves a new design. Only the cached item's content is
// patched since membership and total cannot change.
func (s *Templates) UpdateContent(ctx context.Context, id int64, content string) error {
	err := s.write(ctx, "update", func(ctx context.Context) error {
		if err := models.ValidateContent(content); err != nil {
			return err
		}
		return s.api.UpdateTemplate(ctx, id, content)
	})
	if err != nil {
		return err
	}
	s.PatchLocal(
		func(t models.Template) bool { return t.ID == id },
		func(t *models.Template) { t.Content = content },
	)
	return nil
}

// Toggle flips a template between enabled and disabled. The page is
// refetched because the item may leave a status-filtered view.
func (s *Templates) Toggle(ctx context.Context, id int64) (models.TemplateStatus, error) {
	var status models.TemplateStatus
	err := s.Mutate(ctx, "toggle", func(ctx context.Context) error {
		resp, err := s.api.ToggleTemplate(ctx, id)
		if err != nil {
			return err
		}
		status = resp.Status
		return nil
	})
	return status, err
}
