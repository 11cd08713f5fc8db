package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/foxzi/campaign-console/internal/api"
	"github.com/foxzi/campaign-console/internal/apitest"
	"github.com/foxzi/campaign-console/internal/models"
)

func newClient(srv *apitest.Server, token string) *api.Client {
	return api.NewClient(srv.URL, api.TokenFunc(func() string { return token }))
}

func TestClient_Login(t *testing.T) {
	srv := apitest.New(t)
	client := api.NewClient(srv.URL, nil)
	ctx := context.Background()

	resp, err := client.Login(ctx, models.Credentials{Mobile: apitest.Mobile, Password: apitest.Password})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if resp.Token != apitest.Token {
		t.Errorf("Token = %q, want %q", resp.Token, apitest.Token)
	}
	if resp.User.Name != "Admin" {
		t.Errorf("User.Name = %q, want Admin", resp.User.Name)
	}

	reqs := srv.Requests("POST /auth/login")
	if len(reqs) != 1 {
		t.Fatalf("expected 1 login request, got %d", len(reqs))
	}
	if reqs[0].Authorization != "" {
		t.Errorf("login should not carry a token, got %q", reqs[0].Authorization)
	}

	_, err = client.Login(ctx, models.Credentials{Mobile: apitest.Mobile, Password: "wrong"})
	if !api.IsKind(err, api.KindValidation) {
		t.Fatalf("Login() with bad password error = %v, want validation error", err)
	}
	if got := api.Message(err, ""); got != "Invalid credentials" {
		t.Errorf("Message() = %q, want Invalid credentials", got)
	}
}

func TestClient_BearerToken(t *testing.T) {
	srv := apitest.New(t)
	srv.SeedCampaigns("alpha")

	token := ""
	client := api.NewClient(srv.URL, api.TokenFunc(func() string { return token }))
	ctx := context.Background()

	_, err := client.ListCampaigns(ctx, api.CampaignFilterRequest{Page: 1, Limit: 10})
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("ListCampaigns() without token error = %v, want 401", err)
	}

	// The token is read per request, so setting it later is enough
	token = apitest.Token
	resp, err := client.ListCampaigns(ctx, api.CampaignFilterRequest{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("ListCampaigns() error = %v", err)
	}
	if resp.Total != 1 || resp.Campaigns[0].Name != "alpha" {
		t.Errorf("ListCampaigns() = %+v", resp)
	}

	reqs := srv.Requests("POST /campaign/list")
	if got := reqs[len(reqs)-1].Authorization; got != "Bearer "+apitest.Token {
		t.Errorf("Authorization = %q", got)
	}
}

func TestClient_ErrorKinds(t *testing.T) {
	srv := apitest.New(t)
	client := newClient(srv, apitest.Token)
	ctx := context.Background()

	srv.Fail("POST /list/filter", http.StatusInternalServerError, "database unavailable")
	_, err := client.FilterLists(ctx, api.PageRequest{Page: 1, Limit: 10})
	if !api.IsKind(err, api.KindServer) {
		t.Errorf("5xx error = %v, want server kind", err)
	}
	if got := api.Message(err, "fallback"); got != "database unavailable" {
		t.Errorf("Message() = %q", got)
	}

	srv.Fail("POST /list/add", http.StatusUnprocessableEntity, "List name is required")
	err = client.AddList(ctx, models.ListDraft{})
	if !api.IsKind(err, api.KindValidation) {
		t.Errorf("4xx error = %v, want validation kind", err)
	}

	err = client.DeleteCampaign(ctx, 999)
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("DeleteCampaign(999) error = %v, want 404", err)
	}

	dead := api.NewClient("http://127.0.0.1:1", nil)
	_, err = dead.FilterLists(ctx, api.PageRequest{Page: 1, Limit: 10})
	if !api.IsKind(err, api.KindNetwork) {
		t.Errorf("unreachable server error = %v, want network kind", err)
	}
	if !strings.HasPrefix(api.Message(err, ""), "cannot reach server") {
		t.Errorf("network Message() = %q", api.Message(err, ""))
	}
}

func TestClient_NonJSONError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer ts.Close()

	client := api.NewClient(ts.URL, nil)
	err := client.CopyCampaign(context.Background(), 1)
	if !api.IsKind(err, api.KindServer) {
		t.Fatalf("error = %v, want server kind", err)
	}
	if got := api.Message(err, ""); got != "Request failed with status code 502" {
		t.Errorf("Message() = %q", got)
	}
}

func TestClient_LegacyErrorField(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "bad page"})
	}))
	defer ts.Close()

	client := api.NewClient(ts.URL, nil)
	_, err := client.ListUsers(context.Background(), api.PageRequest{Page: 0})
	if got := api.Message(err, ""); got != "bad page" {
		t.Errorf("Message() = %q, want bad page", got)
	}
}

func TestClient_InvalidSuccessBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	}))
	defer ts.Close()

	client := api.NewClient(ts.URL, nil)
	_, err := client.FilterTemplates(context.Background(), api.TemplateFilterRequest{Page: 1, Limit: 10})
	if !api.IsKind(err, api.KindServer) {
		t.Fatalf("error = %v, want server kind", err)
	}
}

func TestClient_RequestHeaders(t *testing.T) {
	var got http.Header
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	client := api.NewClient(ts.URL+"/", api.TokenFunc(func() string { return "abc" }), api.WithUserAgent("campaign-console/test"))
	if err := client.DeleteListItem(context.Background(), 5); err != nil {
		t.Fatalf("DeleteListItem() error = %v", err)
	}

	if got.Get("Authorization") != "Bearer abc" {
		t.Errorf("Authorization = %q", got.Get("Authorization"))
	}
	if got.Get("X-Request-ID") == "" {
		t.Error("X-Request-ID not set")
	}
	if got.Get("User-Agent") != "campaign-console/test" {
		t.Errorf("User-Agent = %q", got.Get("User-Agent"))
	}
	if got.Get("Content-Type") != "" {
		t.Errorf("bodiless request should not set Content-Type, got %q", got.Get("Content-Type"))
	}
}

func TestClient_Endpoints(t *testing.T) {
	srv := apitest.New(t)
	client := newClient(srv, apitest.Token)
	ctx := context.Background()

	list := srv.SeedList("newsletter", 3)
	srv.SeedTemplates("Welcome", "Promo")

	got, err := client.GetList(ctx, list.ID)
	if err != nil {
		t.Fatalf("GetList() error = %v", err)
	}
	if got.AudienceCount != 3 {
		t.Errorf("AudienceCount = %d, want 3", got.AudienceCount)
	}

	items, err := client.FilterListItems(ctx, api.ListItemFilterRequest{ListID: list.ID, Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("FilterListItems() error = %v", err)
	}
	if len(items.Items) != 2 || items.Total != 3 {
		t.Errorf("FilterListItems() items=%d total=%d", len(items.Items), items.Total)
	}

	up, err := client.UploadListItems(ctx, list.ID, []models.ListItemDraft{
		{Email: "new@example.com"},
		{Email: "MEMBER-1@example.com"},
	})
	if err != nil {
		t.Fatalf("UploadListItems() error = %v", err)
	}
	if up.Inserted != 1 || up.Skipped != 1 {
		t.Errorf("UploadListItems() = %+v", up)
	}

	templates, err := client.FilterTemplates(ctx, api.TemplateFilterRequest{Page: 1, Limit: 10, Status: "disabled"})
	if err != nil {
		t.Fatalf("FilterTemplates() error = %v", err)
	}
	if templates.Total != 1 || templates.Templates[0].Title != "Promo" {
		t.Errorf("FilterTemplates(disabled) = %+v", templates)
	}

	toggled, err := client.ToggleTemplate(ctx, templates.Templates[0].ID)
	if err != nil {
		t.Fatalf("ToggleTemplate() error = %v", err)
	}
	if toggled.Status != models.TemplateEnabled {
		t.Errorf("ToggleTemplate() status = %q", toggled.Status)
	}

	if err := client.UpdateTemplate(ctx, templates.Templates[0].ID, `{"body":1}`); err != nil {
		t.Fatalf("UpdateTemplate() error = %v", err)
	}
	tpl, err := client.GetTemplate(ctx, templates.Templates[0].ID)
	if err != nil {
		t.Fatalf("GetTemplate() error = %v", err)
	}
	if tpl.Content != `{"body":1}` {
		t.Errorf("Content = %q", tpl.Content)
	}
}
