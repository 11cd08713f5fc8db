package session

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/foxzi/campaign-console/internal/api"
	"github.com/foxzi/campaign-console/internal/models"
)

type fakeAuth struct {
	resp  *api.LoginResponse
	err   error
	calls int
}

func (f *fakeAuth) Login(ctx context.Context, creds models.Credentials) (*api.LoginResponse, error) {
	f.calls++
	return f.resp, f.err
}

func setupStorage(t *testing.T) (*BoltStorage, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "session.db")
	storage, err := OpenBoltStorage(path)
	if err != nil {
		t.Fatalf("OpenBoltStorage() error = %v", err)
	}
	return storage, path
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}
	return token
}

var creds = models.Credentials{Mobile: "5550100", Password: "secret"}

func TestStore_LoginPersists(t *testing.T) {
	storage, path := setupStorage(t)

	store, err := New(storage, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if store.LoggedIn() {
		t.Fatal("fresh store should be logged out")
	}

	auth := &fakeAuth{resp: &api.LoginResponse{
		Token: "opaque-token",
		User:  models.UserIdentity{ID: 7, Name: "Ann"},
	}}
	if err := store.Login(context.Background(), auth, creds); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	st := store.State()
	if st.Status != StatusLoggedIn {
		t.Errorf("Status = %v, want logged in", st.Status)
	}
	if store.Token() != "opaque-token" {
		t.Errorf("Token() = %q", store.Token())
	}
	if st.User == nil || st.User.Name != "Ann" {
		t.Errorf("User = %+v", st.User)
	}
	if !st.ExpiresAt.IsZero() {
		t.Errorf("opaque token should have no expiry, got %v", st.ExpiresAt)
	}

	// Reopen as if the process restarted
	storage.Close()
	storage, err = OpenBoltStorage(path)
	if err != nil {
		t.Fatalf("OpenBoltStorage() error = %v", err)
	}
	defer storage.Close()

	restored, err := New(storage, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if restored.Token() != "opaque-token" {
		t.Errorf("restored Token() = %q", restored.Token())
	}
	if u := restored.State().User; u == nil || u.ID != 7 {
		t.Errorf("restored User = %+v", u)
	}
}

func TestStore_LoginFailure(t *testing.T) {
	storage, _ := setupStorage(t)
	defer storage.Close()

	store, err := New(storage, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	auth := &fakeAuth{err: &api.Error{Kind: api.KindValidation, StatusCode: http.StatusUnauthorized, Message: "Invalid credentials"}}
	err = store.Login(context.Background(), auth, creds)
	if !api.IsKind(err, api.KindValidation) {
		t.Fatalf("Login() error = %v, want validation error", err)
	}

	st := store.State()
	if st.Status != StatusLoggedOut {
		t.Errorf("Status = %v, want logged out", st.Status)
	}
	if st.Err != "Invalid credentials" {
		t.Errorf("Err = %q", st.Err)
	}

	if v, _ := storage.Get(KeyToken); v != nil {
		t.Errorf("token persisted after failed login: %q", v)
	}
}

func TestStore_LoginValidatesCredentials(t *testing.T) {
	storage, _ := setupStorage(t)
	defer storage.Close()

	store, _ := New(storage, nil)
	auth := &fakeAuth{}

	err := store.Login(context.Background(), auth, models.Credentials{Password: "x"})
	var verrs models.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("Login() error = %v, want ValidationErrors", err)
	}
	if auth.calls != 0 {
		t.Error("invalid credentials should not reach the server")
	}
	if store.State().Err == "" {
		t.Error("Err should be set")
	}
}

func TestStore_Logout(t *testing.T) {
	storage, _ := setupStorage(t)
	defer storage.Close()

	store, _ := New(storage, nil)
	auth := &fakeAuth{resp: &api.LoginResponse{Token: "t", User: models.UserIdentity{ID: 1}}}
	if err := store.Login(context.Background(), auth, creds); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if err := store.Logout(); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if store.LoggedIn() || store.Token() != "" {
		t.Error("store still holds a token after Logout")
	}
	if store.State().User != nil {
		t.Error("store still holds a user after Logout")
	}
	for _, key := range []string{KeyToken, KeyUser} {
		if v, _ := storage.Get(key); v != nil {
			t.Errorf("%s still persisted after Logout", key)
		}
	}
}

func TestStore_ExpiredTokenDropped(t *testing.T) {
	storage, _ := setupStorage(t)
	defer storage.Close()

	storage.Put(KeyToken, []byte(signedToken(t, time.Now().Add(-time.Hour))))
	storage.Put(KeyUser, []byte(`{"id":1,"name":"Ann"}`))

	store, err := New(storage, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if store.LoggedIn() {
		t.Error("expired session should not be restored")
	}
	if v, _ := storage.Get(KeyToken); v != nil {
		t.Error("expired token should be removed from storage")
	}
}

func TestStore_JWTExpiry(t *testing.T) {
	storage, _ := setupStorage(t)
	defer storage.Close()

	exp := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	storage.Put(KeyToken, []byte(signedToken(t, exp)))

	store, err := New(storage, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	st := store.State()
	if st.Status != StatusLoggedIn {
		t.Fatalf("Status = %v, want logged in", st.Status)
	}
	if !st.ExpiresAt.Equal(exp) {
		t.Errorf("ExpiresAt = %v, want %v", st.ExpiresAt, exp)
	}
	if st.User != nil {
		t.Errorf("User = %+v, want nil when not persisted", st.User)
	}
}

func TestStore_FailedReloginKeepsSession(t *testing.T) {
	storage, _ := setupStorage(t)
	defer storage.Close()

	store, _ := New(storage, nil)
	ok := &fakeAuth{resp: &api.LoginResponse{Token: "t1", User: models.UserIdentity{ID: 1}}}
	store.Login(context.Background(), ok, creds)

	bad := &fakeAuth{err: &api.Error{Kind: api.KindNetwork, Message: "cannot reach server: connection refused"}}
	if err := store.Login(context.Background(), bad, creds); err == nil {
		t.Fatal("Login() expected error")
	}

	st := store.State()
	if st.Status != StatusLoggedIn || st.Token != "t1" {
		t.Errorf("State = %+v, want previous session kept", st)
	}
	if st.Err == "" {
		t.Error("Err should describe the failed attempt")
	}
}

func TestStatus_String(t *testing.T) {
	tests := map[Status]string{
		StatusLoggedOut: "logged out",
		StatusLoggingIn: "logging in",
		StatusLoggedIn:  "logged in",
	}
	for status, want := range tests {
		if got := status.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", status, got, want)
		}
	}
}
