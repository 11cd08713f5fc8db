// Package app wires configuration, session, API client and stores into
// one console instance.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/foxzi/campaign-console/internal/api"
	"github.com/foxzi/campaign-console/internal/config"
	"github.com/foxzi/campaign-console/internal/metrics"
	"github.com/foxzi/campaign-console/internal/models"
	"github.com/foxzi/campaign-console/internal/session"
	"github.com/foxzi/campaign-console/internal/store"
)

// App is the console application
type App struct {
	config  *config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics
	storage *session.BoltStorage

	Session   *session.Store
	Client    *api.Client
	Users     *store.Users
	Lists     *store.Lists
	Items     *store.ListItems
	Templates *store.Templates
	Campaigns *store.Campaigns
}

// New creates a new application. Logs are written to stderr so that
// command output on stdout stays parseable.
func New(cfg *config.Config) (*App, error) {
	return NewWithLogger(cfg, SetupLogger(cfg.Logging, os.Stderr))
}

// NewWithLogger creates an application that logs to logger
func NewWithLogger(cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{
		config: cfg,
		logger: logger,
	}

	if cfg.Metrics.Enabled {
		a.metrics = metrics.New()
		metrics.SetGlobal(a.metrics)
	}

	storage, err := session.OpenBoltStorage(cfg.Session.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create session storage: %w", err)
	}
	a.storage = storage

	a.Session, err = session.New(storage, logger)
	if err != nil {
		storage.Close()
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}

	a.Client = api.NewClient(cfg.API.BaseURL, a.Session,
		api.WithLogger(logger),
		api.WithUserAgent(cfg.API.UserAgent),
	)

	limit := cfg.Store.PageSize
	a.Users = store.NewUsers(a.Client, limit, logger)
	a.Lists = store.NewLists(a.Client, limit, logger)
	a.Items = store.NewListItems(a.Client, limit, logger)
	a.Templates = store.NewTemplates(a.Client, limit, logger)
	a.Campaigns = store.NewCampaigns(a.Client, limit, logger)

	return a, nil
}

// Logger returns the application logger
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Login authenticates against the backend and persists the session
func (a *App) Login(ctx context.Context, creds models.Credentials) error {
	return a.Session.Login(ctx, a.Client, creds)
}

func (a *App) Logout() error {
	return a.Session.Logout()
}

// RequireLogin returns session.ErrNotLoggedIn when no token is held
func (a *App) RequireLogin() error {
	if !a.Session.LoggedIn() {
		return session.ErrNotLoggedIn
	}
	return nil
}

// FormOptions loads the lists and templates offered by the campaign form
func (a *App) FormOptions(ctx context.Context) (*store.FormOptions, error) {
	return store.LoadFormOptions(ctx, a.Client)
}

// Close writes the metrics textfile, if configured, and closes the
// session storage
func (a *App) Close() error {
	if a.metrics != nil {
		if path := a.config.Metrics.Textfile; path != "" {
			if err := a.metrics.WriteTextfile(path); err != nil {
				a.logger.Error("failed to write metrics textfile", "path", path, "error", err)
			}
		}
		metrics.SetGlobal(nil)
	}
	return a.storage.Close()
}

// SetupLogger builds the slog logger described by cfg
func SetupLogger(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: ParseLevel(cfg.Level),
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// ParseLevel maps a config level name to a slog level, defaulting to info
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
