package store

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/foxzi/campaign-console/internal/api"
	"github.com/foxzi/campaign-console/internal/models"
)

// formOptionsLimit is the number of lists and templates offered by the
// campaign form
const formOptionsLimit = 100

// FormOptions are the choices offered when creating a campaign
type FormOptions struct {
	Lists     []models.List
	Templates []models.Template
}

// OptionsAPI is the part of the backend the campaign form needs
type OptionsAPI interface {
	FilterLists(ctx context.Context, req api.PageRequest) (*api.ListsResponse, error)
	FilterTemplates(ctx context.Context, req api.TemplateFilterRequest) (*api.TemplatesResponse, error)
}

// LoadFormOptions fetches the first lists and templates concurrently. The
// lists and templates stores are left alone.
func LoadFormOptions(ctx context.Context, client OptionsAPI) (*FormOptions, error) {
	var opts FormOptions
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		resp, err := client.FilterLists(ctx, api.PageRequest{Page: 1, Limit: formOptionsLimit})
		if err != nil {
			return err
		}
		opts.Lists = resp.Lists
		return nil
	})
	g.Go(func() error {
		resp, err := client.FilterTemplates(ctx, api.TemplateFilterRequest{Page: 1, Limit: formOptionsLimit})
		if err != nil {
			return err
		}
		opts.Templates = resp.Templates
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &opts, nil
}
