package store

import (
	"context"
	"log/slog"

	"github.com/foxzi/campaign-console/internal/api"
	"github.com/foxzi/campaign-console/internal/models"
)

// UserAPI is the part of the backend the users store needs
type UserAPI interface {
	ListUsers(ctx context.Context, req api.PageRequest) (*api.UsersResponse, error)
	AddUser(ctx context.Context, draft models.UserDraft) error
	DeleteUser(ctx context.Context, id int64) error
}

type Users struct {
	*Collection[models.User, NoFilter]
	api UserAPI
}

func NewUsers(client UserAPI, limit int, logger *slog.Logger) *Users {
	fetch := func(ctx context.Context, q Query[NoFilter]) (*Page[models.User], error) {
		resp, err := client.ListUsers(ctx, api.PageRequest{Page: q.Page, Limit: q.Limit})
		if err != nil {
			return nil, err
		}
		return &Page[models.User]{Items: resp.Users, Total: resp.Total, Page: resp.Page, Limit: resp.Limit}, nil
	}
	return &Users{
		Collection: NewCollection("users", limit, fetch, logger),
		api:        client,
	}
}

func (s *Users) Add(ctx context.Context, draft models.UserDraft) error {
	return s.Mutate(ctx, "add", func(ctx context.Context) error {
		if err := draft.Validate(); err != nil {
			return err
		}
		return s.api.AddUser(ctx, draft)
	})
}

func (s *Users) Delete(ctx context.Context, id int64) error {
	return s.Mutate(ctx, "delete", func(ctx context.Context) error {
		return s.api.DeleteUser(ctx, id)
	})
}
