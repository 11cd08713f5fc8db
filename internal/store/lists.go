package store

import (
	"context"
	"log/slog"

	"github.com/foxzi/campaign-console/internal/api"
	"github.com/foxzi/campaign-console/internal/models"
)

// ListAPI is the part of the backend the lists store needs
type ListAPI interface {
	FilterLists(ctx context.Context, req api.PageRequest) (*api.ListsResponse, error)
	GetList(ctx context.Context, id int64) (*models.List, error)
	AddList(ctx context.Context, draft models.ListDraft) error
	UpdateList(ctx context.Context, id int64, draft models.ListDraft) error
	DeleteList(ctx context.Context, id int64) error
}

type Lists struct {
	*Collection[models.List, NoFilter]
	api ListAPI
}

func NewLists(client ListAPI, limit int, logger *slog.Logger) *Lists {
	fetch := func(ctx context.Context, q Query[NoFilter]) (*Page[models.List], error) {
		resp, err := client.FilterLists(ctx, api.PageRequest{Page: q.Page, Limit: q.Limit})
		if err != nil {
			return nil, err
		}
		return &Page[models.List]{Items: resp.Lists, Total: resp.Total, Page: resp.Page, Limit: resp.Limit}, nil
	}
	return &Lists{
		Collection: NewCollection("lists", limit, fetch, logger),
		api:        client,
	}
}

// Get loads one list without touching the collection
func (s *Lists) Get(ctx context.Context, id int64) (*models.List, error) {
	return s.api.GetList(ctx, id)
}

func (s *Lists) Add(ctx context.Context, draft models.ListDraft) error {
	return s.Mutate(ctx, "add", func(ctx context.Context) error {
		if err := draft.Validate(); err != nil {
			return err
		}
		return s.api.AddList(ctx, draft)
	})
}

func (s *Lists) Rename(ctx context.Context, id int64, draft models.ListDraft) error {
	return s.Mutate(ctx, "update", func(ctx context.Context) error {
		if err := draft.Validate(); err != nil {
			return err
		}
		return s.api.UpdateList(ctx, id, draft)
	})
}

func (s *Lists) Delete(ctx context.Context, id int64) error {
	return s.Mutate(ctx, "delete", func(ctx context.Context) error {
		return s.api.DeleteList(ctx, id)
	})
}
