// Package session holds the authentication token and user identity and
// keeps them in durable storage between runs.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/foxzi/campaign-console/internal/api"
	"github.com/foxzi/campaign-console/internal/metrics"
	"github.com/foxzi/campaign-console/internal/models"
)

// Durable storage keys
const (
	KeyToken = "token"
	KeyUser  = "user"
)

var ErrNotLoggedIn = errors.New("not logged in")

type Status int

const (
	StatusLoggedOut Status = iota
	StatusLoggingIn
	StatusLoggedIn
)

func (s Status) String() string {
	switch s {
	case StatusLoggingIn:
		return "logging in"
	case StatusLoggedIn:
		return "logged in"
	default:
		return "logged out"
	}
}

// Authenticator performs the login request
type Authenticator interface {
	Login(ctx context.Context, creds models.Credentials) (*api.LoginResponse, error)
}

// State is a snapshot of the session
type State struct {
	Token     string
	User      *models.UserIdentity
	Status    Status
	Err       string
	ExpiresAt time.Time // zero when the token carries no exp claim
}

// Store is the session store. It implements api.TokenSource.
type Store struct {
	mu      sync.RWMutex
	storage Storage
	logger  *slog.Logger
	now     func() time.Time
	state   State
}

// New restores a persisted session from storage. A persisted token whose
// exp claim has passed is discarded.
func New(storage Storage, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		storage: storage,
		logger:  logger.With("component", "session"),
		now:     time.Now,
	}
	if err := s.restore(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) restore() error {
	token, err := s.storage.Get(KeyToken)
	if err != nil {
		return fmt.Errorf("failed to read session token: %w", err)
	}
	if len(token) == 0 {
		return nil
	}

	expiresAt := tokenExpiry(string(token))
	if !expiresAt.IsZero() && !expiresAt.After(s.now()) {
		s.logger.Warn("persisted session expired", "expired_at", expiresAt)
		if err := s.storage.Delete(KeyToken, KeyUser); err != nil {
			return fmt.Errorf("failed to clear expired session: %w", err)
		}
		return nil
	}

	var user *models.UserIdentity
	if raw, err := s.storage.Get(KeyUser); err != nil {
		return fmt.Errorf("failed to read session user: %w", err)
	} else if len(raw) > 0 {
		user = &models.UserIdentity{}
		if err := json.Unmarshal(raw, user); err != nil {
			s.logger.Warn("ignoring unreadable session user", "error", err)
			user = nil
		}
	}

	s.state = State{
		Token:     string(token),
		User:      user,
		Status:    StatusLoggedIn,
		ExpiresAt: expiresAt,
	}
	return nil
}

// Token returns the current bearer token, "" when logged out
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}

func (s *Store) LoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token != ""
}

// Login authenticates and persists the token and user. On failure the
// error message is kept in State.Err and the returned error carries the
// detail.
func (s *Store) Login(ctx context.Context, auth Authenticator, creds models.Credentials) error {
	if err := creds.Validate(); err != nil {
		s.fail(err, "Login failed")
		return err
	}

	s.mu.Lock()
	s.state.Status = StatusLoggingIn
	s.state.Err = ""
	s.mu.Unlock()

	resp, err := auth.Login(ctx, creds)
	if err != nil {
		metrics.IncLogin("failure")
		s.fail(err, "Login failed")
		return err
	}

	user, err := json.Marshal(resp.User)
	if err != nil {
		s.fail(err, "Login failed")
		return fmt.Errorf("marshal user: %w", err)
	}
	if err := s.storage.Put(KeyToken, []byte(resp.Token)); err != nil {
		s.fail(err, "Could not save session")
		return fmt.Errorf("failed to persist token: %w", err)
	}
	if err := s.storage.Put(KeyUser, user); err != nil {
		s.fail(err, "Could not save session")
		return fmt.Errorf("failed to persist user: %w", err)
	}

	identity := resp.User
	s.mu.Lock()
	s.state = State{
		Token:     resp.Token,
		User:      &identity,
		Status:    StatusLoggedIn,
		ExpiresAt: tokenExpiry(resp.Token),
	}
	s.mu.Unlock()

	metrics.IncLogin("success")
	s.logger.Info("logged in", "user_id", identity.ID, "user", identity.Name)
	return nil
}

// Logout clears the session from memory and storage. Memory is cleared
// even when storage fails.
func (s *Store) Logout() error {
	s.mu.Lock()
	s.state = State{Status: StatusLoggedOut}
	s.mu.Unlock()

	if err := s.storage.Delete(KeyToken, KeyUser); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	s.logger.Info("logged out")
	return nil
}

// fail records a login failure. A session that was already held stays
// logged in.
func (s *Store) fail(err error, fallback string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Err = api.Message(err, fallback)
	if s.state.Token != "" {
		s.state.Status = StatusLoggedIn
	} else {
		s.state.Status = StatusLoggedOut
	}
}

// tokenExpiry reads the exp claim without verifying the signature; the
// console cannot verify it and only uses it to drop stale sessions. Opaque
// tokens have no expiry.
func tokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
