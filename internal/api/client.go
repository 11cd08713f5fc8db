// Package api is the HTTP adapter between the console and the campaign
// backend. Every request is a single attempt: no retries, no backoff, and
// no timeout beyond the caller's context.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/foxzi/campaign-console/internal/metrics"
	"github.com/foxzi/campaign-console/internal/models"
)

const maxErrorBody = 1 << 20

// TokenSource supplies the bearer token. It is read on every request, so
// a login or logout takes effect on the next call.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// Client is a campaign backend API client
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	userAgent  string
	logger     *slog.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient creates a new API client. tokens may be nil for an
// unauthenticated client.
func NewClient(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
		httpClient: &http.Client{Transport: metrics.InstrumentTransport(http.DefaultTransport)},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "api")
	return c
}

// request performs an HTTP request to the backend API
func (c *Client) request(ctx context.Context, method, path string, body any, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.IncAPIErrors(KindNetwork.String())
		c.logger.Debug("request failed",
			"method", method, "path", path, "request_id", requestID, "error", err)
		return &Error{
			Kind:    KindNetwork,
			Message: "cannot reach server: " + rootCause(err),
			Err:     err,
		}
	}
	defer resp.Body.Close()

	elapsed := time.Since(start)
	c.logger.Debug("request completed",
		"method", method, "path", path, "status", resp.StatusCode,
		"duration", elapsed, "request_id", requestID)

	if resp.StatusCode >= 400 {
		apiErr := decodeError(resp)
		metrics.IncAPIErrors(apiErr.Kind.String())
		return apiErr
	}

	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: KindNetwork, Message: "response interrupted: " + rootCause(err), Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, result); err != nil {
		metrics.IncAPIErrors(KindServer.String())
		return &Error{
			Kind:       KindServer,
			StatusCode: resp.StatusCode,
			Message:    "invalid response from server",
			Err:        fmt.Errorf("decode response: %w", err),
		}
	}

	return nil
}

// decodeError extracts the backend's message from an error response,
// falling back to a generic one when the body is not JSON.
func decodeError(resp *http.Response) *Error {
	kind := KindValidation
	if resp.StatusCode >= 500 {
		kind = KindServer
	}

	msg := fmt.Sprintf("Request failed with status code %d", resp.StatusCode)

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var errResp ErrorResponse
	if err := json.Unmarshal(data, &errResp); err == nil {
		switch {
		case errResp.Message != "":
			msg = errResp.Message
		case errResp.Error != "":
			msg = errResp.Error
		}
	}

	return &Error{Kind: kind, StatusCode: resp.StatusCode, Message: msg}
}

func rootCause(err error) string {
	for {
		next, ok := err.(interface{ Unwrap() error })
		if !ok || next.Unwrap() == nil {
			return err.Error()
		}
		err = next.Unwrap()
	}
}

func idPath(prefix string, id int64) string {
	return prefix + strconv.FormatInt(id, 10)
}

// Login exchanges credentials for a token. It is the only call that does
// not need a token.
func (c *Client) Login(ctx context.Context, creds models.Credentials) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.request(ctx, http.MethodPost, "/auth/login", creds, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, &Error{Kind: KindServer, Message: "login response did not include a token"}
	}
	return &resp, nil
}

// ListUsers lists users
func (c *Client) ListUsers(ctx context.Context, req PageRequest) (*UsersResponse, error) {
	var resp UsersResponse
	if err := c.request(ctx, http.MethodPost, "/user/list", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AddUser creates a user
func (c *Client) AddUser(ctx context.Context, draft models.UserDraft) error {
	return c.request(ctx, http.MethodPost, "/user/add", draft, nil)
}

// DeleteUser deletes a user
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.request(ctx, http.MethodDelete, idPath("/user/", id), nil, nil)
}

// FilterLists lists contact lists
func (c *Client) FilterLists(ctx context.Context, req PageRequest) (*ListsResponse, error) {
	var resp ListsResponse
	if err := c.request(ctx, http.MethodPost, "/list/filter", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetList gets list metadata by ID
func (c *Client) GetList(ctx context.Context, id int64) (*models.List, error) {
	var resp models.List
	if err := c.request(ctx, http.MethodGet, idPath("/list/", id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AddList creates a list
func (c *Client) AddList(ctx context.Context, draft models.ListDraft) error {
	return c.request(ctx, http.MethodPost, "/list/add", draft, nil)
}

// UpdateList renames a list
func (c *Client) UpdateList(ctx context.Context, id int64, draft models.ListDraft) error {
	return c.request(ctx, http.MethodPut, idPath("/list/add/", id), draft, nil)
}

// DeleteList deletes a list and its items
func (c *Client) DeleteList(ctx context.Context, id int64) error {
	return c.request(ctx, http.MethodDelete, idPath("/list/", id), nil, nil)
}

// FilterListItems lists the items of one list
func (c *Client) FilterListItems(ctx context.Context, req ListItemFilterRequest) (*ListItemsResponse, error) {
	var resp ListItemsResponse
	if err := c.request(ctx, http.MethodPost, "/list/item/filter", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UploadListItems submits a batch of validated rows to a list
func (c *Client) UploadListItems(ctx context.Context, listID int64, items []models.ListItemDraft) (*UploadResponse, error) {
	var resp UploadResponse
	req := UploadRequest{ListID: listID, Items: items}
	if err := c.request(ctx, http.MethodPost, "/list/item/upload", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteListItem deletes a single list item
func (c *Client) DeleteListItem(ctx context.Context, id int64) error {
	return c.request(ctx, http.MethodDelete, idPath("/list/item/", id), nil, nil)
}

// FilterTemplates lists templates by title and status
func (c *Client) FilterTemplates(ctx context.Context, req TemplateFilterRequest) (*TemplatesResponse, error) {
	var resp TemplatesResponse
	if err := c.request(ctx, http.MethodPost, "/template/filter", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetTemplate gets a template with its content
func (c *Client) GetTemplate(ctx context.Context, id int64) (*models.Template, error) {
	var resp models.Template
	if err := c.request(ctx, http.MethodGet, idPath("/template/", id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AddTemplate creates a template
func (c *Client) AddTemplate(ctx context.Context, draft models.TemplateDraft) (*models.Template, error) {
	var resp models.Template
	if err := c.request(ctx, http.MethodPost, "/template/add", draft, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateTemplate saves a template's design content
func (c *Client) UpdateTemplate(ctx context.Context, id int64, content string) error {
	req := TemplateUpdateRequest{Content: content}
	return c.request(ctx, http.MethodPut, idPath("/template/update/", id), req, nil)
}

// ToggleTemplate flips a template between enabled and disabled
func (c *Client) ToggleTemplate(ctx context.Context, id int64) (*ToggleResponse, error) {
	var resp ToggleResponse
	if err := c.request(ctx, http.MethodPut, idPath("/template/toggle/", id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListCampaigns lists campaigns by name
func (c *Client) ListCampaigns(ctx context.Context, req CampaignFilterRequest) (*CampaignsResponse, error) {
	var resp CampaignsResponse
	if err := c.request(ctx, http.MethodPost, "/campaign/list", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateCampaign creates a campaign as draft or published
func (c *Client) CreateCampaign(ctx context.Context, payload models.CampaignPayload) error {
	return c.request(ctx, http.MethodPost, "/campaign/create", payload, nil)
}

// CopyCampaign duplicates a campaign on the server
func (c *Client) CopyCampaign(ctx context.Context, id int64) error {
	return c.request(ctx, http.MethodPost, idPath("/campaign/copy/", id), nil, nil)
}

// DeleteCampaign deletes a campaign
func (c *Client) DeleteCampaign(ctx context.Context, id int64) error {
	return c.request(ctx, http.MethodDelete, idPath("/campaign/delete/", id), nil, nil)
}
