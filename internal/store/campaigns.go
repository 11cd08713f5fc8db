package store

import (
	"context"
	"log/slog"

	"github.com/foxzi/campaign-console/internal/api"
	"github.com/foxzi/campaign-console/internal/models"
)

// CampaignAPI is the part of the backend the campaigns store needs
type CampaignAPI interface {
	ListCampaigns(ctx context.Context, req api.CampaignFilterRequest) (*api.CampaignsResponse, error)
	CreateCampaign(ctx context.Context, payload models.CampaignPayload) error
	CopyCampaign(ctx context.Context, id int64) error
	DeleteCampaign(ctx context.Context, id int64) error
}

type Campaigns struct {
	*Collection[models.Campaign, CampaignFilter]
	api CampaignAPI
}

func NewCampaigns(client CampaignAPI, limit int, logger *slog.Logger) *Campaigns {
	fetch := func(ctx context.Context, q Query[CampaignFilter]) (*Page[models.Campaign], error) {
		resp, err := client.ListCampaigns(ctx, api.CampaignFilterRequest{
			Page:  q.Page,
			Limit: q.Limit,
			Name:  q.Filter.Name,
		})
		if err != nil {
			return nil, err
		}
		return &Page[models.Campaign]{Items: resp.Campaigns, Total: resp.Total, Page: resp.Page, Limit: resp.Limit}, nil
	}
	return &Campaigns{
		Collection: NewCollection("campaigns", limit, fetch, logger),
		api:        client,
	}
}

// Create validates the wizard draft and submits it
func (s *Campaigns) Create(ctx context.Context, draft models.CampaignDraft) error {
	return s.Mutate(ctx, "create", func(ctx context.Context) error {
		if err := draft.Validate(); err != nil {
			return err
		}
		return s.api.CreateCampaign(ctx, draft.Payload())
	})
}

func (s *Campaigns) Copy(ctx context.Context, id int64) error {
	return s.Mutate(ctx, "copy", func(ctx context.Context) error {
		return s.api.CopyCampaign(ctx, id)
	})
}

func (s *Campaigns) Delete(ctx context.Context, id int64) error {
	return s.Mutate(ctx, "delete", func(ctx context.Context) error {
		return s.api.DeleteCampaign(ctx, id)
	})
}
