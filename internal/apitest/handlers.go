package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/foxzi/campaign-console/internal/api"
	"github.com/foxzi/campaign-console/internal/email"
	"github.com/foxzi/campaign-console/internal/models"
)

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid JSON body"})
		return false
	}
	return true
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if !decode(w, r, &creds) {
		return
	}
	if creds.Mobile != Mobile || creds.Password != Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
		return
	}
	writeJSON(w, http.StatusOK, api.LoginResponse{
		Token: Token,
		User:  models.UserIdentity{ID: 1, Name: "Admin", Mobile: Mobile, Role: "admin"},
	})
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	var req api.PageRequest
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, api.UsersResponse{
		Users: paginate(s.users, req.Page, req.Limit),
		Total: len(s.users),
		Limit: req.Limit,
	})
}

func (s *Server) addUser(w http.ResponseWriter, r *http.Request) {
	var draft models.UserDraft
	if !decode(w, r, &draft) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := models.User{
		ID:                s.id(),
		Name:              draft.Name,
		Email:             draft.Email,
		MobileCountryCode: draft.MobileCountryCode,
		Mobile:            draft.Mobile,
		Role:              draft.Role,
	}
	s.users = append(s.users, u)
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.users)
	s.users = slices.DeleteFunc(s.users, func(u models.User) bool { return u.ID == id })
	if len(s.users) == n {
		notFound(w, "user")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) filterLists(w http.ResponseWriter, r *http.Request) {
	var req api.PageRequest
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, api.ListsResponse{
		Lists: paginate(s.lists, req.Page, req.Limit),
		Total: len(s.lists),
		Page:  req.Page,
		Limit: req.Limit,
	})
}

func (s *Server) addList(w http.ResponseWriter, r *http.Request) {
	var draft models.ListDraft
	if !decode(w, r, &draft) {
		return
	}
	if draft.Name == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "List name is required"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	l := models.List{ID: s.id(), Name: draft.Name, CreatedDate: models.Timestamp{Time: time.Now().UTC()}}
	s.lists = append(s.lists, l)
	writeJSON(w, http.StatusCreated, l)
}

func (s *Server) updateList(w http.ResponseWriter, r *http.Request) {
	var draft models.ListDraft
	if !decode(w, r, &draft) {
		return
	}
	id := pathID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.lists, func(l models.List) bool { return l.ID == id })
	if i < 0 {
		notFound(w, "list")
		return
	}
	s.lists[i].Name = draft.Name
	writeJSON(w, http.StatusOK, s.lists[i])
}

func (s *Server) getList(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.lists, func(l models.List) bool { return l.ID == id })
	if i < 0 {
		notFound(w, "list")
		return
	}
	writeJSON(w, http.StatusOK, s.lists[i])
}

func (s *Server) deleteList(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.lists)
	s.lists = slices.DeleteFunc(s.lists, func(l models.List) bool { return l.ID == id })
	if len(s.lists) == n {
		notFound(w, "list")
		return
	}
	s.items = slices.DeleteFunc(s.items, func(it models.ListItem) bool { return it.ListID == id })
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listItems(listID int64) []models.ListItem {
	var out []models.ListItem
	for _, it := range s.items {
		if it.ListID == listID {
			out = append(out, it)
		}
	}
	return out
}

func (s *Server) recount(listID int64) {
	for i := range s.lists {
		if s.lists[i].ID == listID {
			s.lists[i].AudienceCount = len(s.listItems(listID))
		}
	}
}

func (s *Server) filterItems(w http.ResponseWriter, r *http.Request) {
	var req api.ListItemFilterRequest
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.listItems(req.ListID)
	writeJSON(w, http.StatusOK, api.ListItemsResponse{
		Items: paginate(items, req.Page, req.Limit),
		Total: len(items),
		Page:  req.Page,
		Limit: req.Limit,
	})
}

// uploadItems skips addresses already in the list, which is the server
// side half of duplicate handling.
func (s *Server) uploadItems(w http.ResponseWriter, r *http.Request) {
	var req api.UploadRequest
	if !decode(w, r, &req) {
		return
	}
	if len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "No items to upload"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool)
	for _, it := range s.listItems(req.ListID) {
		seen[email.Key(it.Email)] = true
	}

	var resp api.UploadResponse
	for _, draft := range req.Items {
		key := email.Key(draft.Email)
		if seen[key] {
			resp.Skipped++
			continue
		}
		seen[key] = true
		s.items = append(s.items, models.ListItem{
			ID:          s.id(),
			ListID:      req.ListID,
			Email:       draft.Email,
			Name:        draft.Name,
			Status:      models.ItemValid,
			Variables:   draft.Variables,
			CreatedDate: models.Timestamp{Time: time.Now().UTC()},
		})
		resp.Inserted++
	}
	s.recount(req.ListID)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) deleteItem(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.items, func(it models.ListItem) bool { return it.ID == id })
	if i < 0 {
		notFound(w, "list item")
		return
	}
	listID := s.items[i].ListID
	s.items = slices.Delete(s.items, i, i+1)
	s.recount(listID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) filterTemplates(w http.ResponseWriter, r *http.Request) {
	var req api.TemplateFilterRequest
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []models.Template
	for _, t := range s.templates {
		if req.Title != "" && !containsFold(t.Title, req.Title) {
			continue
		}
		if req.Status != "" && string(t.Status) != req.Status {
			continue
		}
		t.Content = ""
		matched = append(matched, t)
	}
	writeJSON(w, http.StatusOK, api.TemplatesResponse{
		Templates: paginate(matched, req.Page, req.Limit),
		Total:     len(matched),
	})
}

func (s *Server) addTemplate(w http.ResponseWriter, r *http.Request) {
	var draft models.TemplateDraft
	if !decode(w, r, &draft) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t := models.Template{
		ID:          s.id(),
		Title:       draft.Title,
		Status:      models.TemplateEnabled,
		Content:     draft.Content,
		CreatedDate: models.Timestamp{Time: time.Now().UTC()},
	}
	s.templates = append(s.templates, t)
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) templateIndex(w http.ResponseWriter, r *http.Request) int {
	id := pathID(r)
	i := slices.IndexFunc(s.templates, func(t models.Template) bool { return t.ID == id })
	if i < 0 {
		notFound(w, "template")
	}
	return i
}

func (s *Server) updateTemplate(w http.ResponseWriter, r *http.Request) {
	var req api.TemplateUpdateRequest
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.templateIndex(w, r); i >= 0 {
		s.templates[i].Content = req.Content
		writeJSON(w, http.StatusOK, s.templates[i])
	}
}

func (s *Server) toggleTemplate(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.templateIndex(w, r); i >= 0 {
		if s.templates[i].Status == models.TemplateEnabled {
			s.templates[i].Status = models.TemplateDisabled
		} else {
			s.templates[i].Status = models.TemplateEnabled
		}
		writeJSON(w, http.StatusOK, api.ToggleResponse{Status: s.templates[i].Status})
	}
}

func (s *Server) getTemplate(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.templateIndex(w, r); i >= 0 {
		writeJSON(w, http.StatusOK, s.templates[i])
	}
}

func (s *Server) listCampaigns(w http.ResponseWriter, r *http.Request) {
	var req api.CampaignFilterRequest
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []models.Campaign
	for _, c := range s.campaigns {
		if req.Name != "" && !containsFold(c.Name, req.Name) {
			continue
		}
		matched = append(matched, c)
	}
	writeJSON(w, http.StatusOK, api.CampaignsResponse{
		Campaigns: paginate(matched, req.Page, req.Limit),
		Total:     len(matched),
	})
}

func (s *Server) createCampaign(w http.ResponseWriter, r *http.Request) {
	var p models.CampaignPayload
	if !decode(w, r, &p) {
		return
	}
	start, err := time.Parse(time.RFC3339, p.StartDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid start date"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := models.Timestamp{Time: time.Now().UTC()}
	c := models.Campaign{
		ID:              s.id(),
		Name:            p.Name,
		Channel:         p.Channel,
		Status:          p.Status,
		StartDate:       models.Timestamp{Time: start},
		Repeat:          p.Repeat,
		RepeatFrequency: p.RepeatFrequency,
		RepeatEndsOn:    p.RepeatEndsOn,
		RepeatEndDate:   p.RepeatEndDate,
		Recipients:      p.Recipients,
		TemplateID:      p.TemplateID,
		AudienceListID:  p.AudienceListID,
		EmailFrom:       p.EmailFrom,
		CreatedAt:       now,
		ModifiedAt:      now,
	}
	s.campaigns = append(s.campaigns, c)
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) copyCampaign(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.campaigns, func(c models.Campaign) bool { return c.ID == id })
	if i < 0 {
		notFound(w, "campaign")
		return
	}
	c := s.campaigns[i]
	c.ID = s.id()
	c.Name = fmt.Sprintf("%s (copy)", c.Name)
	c.Status = models.CampaignStatusDraft
	s.campaigns = append(s.campaigns, c)
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) deleteCampaign(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.campaigns)
	s.campaigns = slices.DeleteFunc(s.campaigns, func(c models.Campaign) bool { return c.ID == id })
	if len(s.campaigns) == n {
		notFound(w, "campaign")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
