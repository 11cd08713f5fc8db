// Package apitest runs an in-memory campaign backend for tests. It serves
// the same routes as the real API, checks bearer tokens, records every
// request and can be told to fail or stall specific routes.
package apitest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/foxzi/campaign-console/internal/models"
)

const (
	Token    = "test-token"
	Mobile   = "5550100"
	Password = "secret"
)

// Request is a recorded call. Route is the chi pattern, e.g.
// "DELETE /campaign/delete/{id}".
type Request struct {
	Route         string
	Authorization string
	Body          []byte
}

type failure struct {
	status  int
	message string
}

// Gate stalls the next request on a route until released
type Gate struct {
	arrived chan struct{}
	release chan struct{}
	once    sync.Once
}

// Wait blocks until the stalled request has reached the server
func (g *Gate) Wait() {
	<-g.arrived
}

func (g *Gate) Release() {
	g.once.Do(func() { close(g.release) })
}

type Server struct {
	*httptest.Server

	mu        sync.Mutex
	users     []models.User
	lists     []models.List
	items     []models.ListItem
	templates []models.Template
	campaigns []models.Campaign
	nextID    int64
	requests  []Request
	failures  map[string]failure
	gates     map[string]*Gate
}

// New starts a server that is closed when the test ends
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		nextID:   100,
		failures: make(map[string]failure),
		gates:    make(map[string]*Gate),
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Post("/auth/login", s.open(s.login))

	r.Post("/user/list", s.authed(s.listUsers))
	r.Post("/user/add", s.authed(s.addUser))
	r.Delete("/user/{id}", s.authed(s.deleteUser))

	r.Post("/list/filter", s.authed(s.filterLists))
	r.Post("/list/add", s.authed(s.addList))
	r.Put("/list/add/{id}", s.authed(s.updateList))
	r.Get("/list/{id}", s.authed(s.getList))
	r.Delete("/list/{id}", s.authed(s.deleteList))

	r.Post("/list/item/filter", s.authed(s.filterItems))
	r.Post("/list/item/upload", s.authed(s.uploadItems))
	r.Delete("/list/item/{id}", s.authed(s.deleteItem))

	r.Post("/template/filter", s.authed(s.filterTemplates))
	r.Post("/template/add", s.authed(s.addTemplate))
	r.Put("/template/update/{id}", s.authed(s.updateTemplate))
	r.Put("/template/toggle/{id}", s.authed(s.toggleTemplate))
	r.Get("/template/{id}", s.authed(s.getTemplate))

	r.Post("/campaign/list", s.authed(s.listCampaigns))
	r.Post("/campaign/create", s.authed(s.createCampaign))
	r.Post("/campaign/copy/{id}", s.authed(s.copyCampaign))
	r.Delete("/campaign/delete/{id}", s.authed(s.deleteCampaign))

	return r
}

// Fail makes every request on route answer with status and message until
// cleared with Recover.
func (s *Server) Fail(route string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = failure{status: status, message: message}
}

func (s *Server) Recover(route string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, route)
}

// Block stalls the next request on route
func (s *Server) Block(route string) *Gate {
	g := &Gate{arrived: make(chan struct{}), release: make(chan struct{})}
	s.mu.Lock()
	s.gates[route] = g
	s.mu.Unlock()
	return g
}

// Requests returns the recorded requests, optionally only those on route
func (s *Server) Requests(route string) []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	if route == "" {
		return slices.Clone(s.requests)
	}
	var out []Request
	for _, req := range s.requests {
		if req.Route == route {
			out = append(out, req)
		}
	}
	return out
}

// open wraps a handler that needs no token. Wrapping happens at the
// handler so the chi route pattern is already resolved.
func (s *Server) open(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.intercept(w, r) {
			return
		}
		h(w, r)
	}
}

func (s *Server) authed(h http.HandlerFunc) http.HandlerFunc {
	return s.open(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+Token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
			return
		}
		h(w, r)
	})
}

func (s *Server) intercept(w http.ResponseWriter, r *http.Request) bool {
	route := r.Method + " " + chi.RouteContext(r.Context()).RoutePattern()

	var body []byte
	if r.Body != nil {
		body, _ = io.ReadAll(r.Body)
	}

	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Route:         route,
		Authorization: r.Header.Get("Authorization"),
		Body:          body,
	})
	gate := s.gates[route]
	delete(s.gates, route)
	fail, failing := s.failures[route]
	s.mu.Unlock()

	if gate != nil {
		close(gate.arrived)
		select {
		case <-gate.release:
		case <-r.Context().Done():
			return true
		case <-time.After(10 * time.Second):
		}
	}

	if failing {
		writeJSON(w, fail.status, map[string]string{"message": fail.message})
		return true
	}

	r.Body = io.NopCloser(bytes.NewReader(body))
	return false
}

func (s *Server) id() int64 {
	s.nextID++
	return s.nextID
}

func paginate[T any](all []T, page, limit int) []T {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	start := (page - 1) * limit
	if start >= len(all) {
		return []T{}
	}
	end := min(start+limit, len(all))
	return slices.Clone(all[start:end])
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func notFound(w http.ResponseWriter, what string) {
	writeJSON(w, http.StatusNotFound, map[string]string{"message": what + " not found"})
}
