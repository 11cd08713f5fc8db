package apitest

import (
	"fmt"
	"slices"

	"github.com/foxzi/campaign-console/internal/models"
)

// SeedUsers adds n users named user-1..user-n
func (s *Server) SeedUsers(n int) []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 1; i <= n; i++ {
		s.users = append(s.users, models.User{
			ID:    s.id(),
			Name:  fmt.Sprintf("user-%d", i),
			Email: fmt.Sprintf("user-%d@example.com", i),
			Role:  "editor",
		})
	}
	return slices.Clone(s.users)
}

// SeedList adds a list with n items and returns it
func (s *Server) SeedList(name string, n int) models.List {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := models.List{ID: s.id(), Name: name}
	s.lists = append(s.lists, l)
	for i := 1; i <= n; i++ {
		s.items = append(s.items, models.ListItem{
			ID:     s.id(),
			ListID: l.ID,
			Email:  fmt.Sprintf("member-%d@example.com", i),
			Status: models.ItemValid,
		})
	}
	s.recount(l.ID)
	return s.lists[len(s.lists)-1]
}

// SeedTemplates adds templates with the given titles, alternating
// enabled and disabled starting with enabled
func (s *Server) SeedTemplates(titles ...string) []models.Template {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, title := range titles {
		status := models.TemplateEnabled
		if i%2 == 1 {
			status = models.TemplateDisabled
		}
		s.templates = append(s.templates, models.Template{
			ID:      s.id(),
			Title:   title,
			Status:  status,
			Content: `{"body":{"rows":[]}}`,
		})
	}
	return slices.Clone(s.templates)
}

// SeedCampaigns adds draft email campaigns with the given names
func (s *Server) SeedCampaigns(names ...string) []models.Campaign {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, name := range names {
		s.campaigns = append(s.campaigns, models.Campaign{
			ID:      s.id(),
			Name:    name,
			Channel: models.ChannelEmail,
			Status:  models.CampaignStatusDraft,
		})
	}
	return slices.Clone(s.campaigns)
}

// Items returns the stored items of a list
func (s *Server) Items(listID int64) []models.ListItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listItems(listID)
}

// Campaigns returns every stored campaign
func (s *Server) Campaigns() []models.Campaign {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.campaigns)
}

// Templates returns every stored template, content included
func (s *Server) Templates() []models.Template {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.templates)
}
