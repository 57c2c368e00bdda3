// Package backendtest runs an in-process fake of the gallery backend for
// tests. It speaks the same cookie-session HTTP contract as the real service
// and lets tests inject failures and hold requests to control completion
// order.
package backendtest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/dmitrijs2005/capgallery/internal/client/config"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// Route names accepted by Fail, Hold and Calls.
const (
	RouteCurrentUser = "auth.user"
	RouteLogin       = "auth.login"
	RouteRegister    = "auth.register"
	RouteAllPosts    = "posts.all"
	RouteMyPosts     = "posts.my"
	RouteCreatePost  = "posts.create"
)

const cookieName = "token"

// Post is the stored form of a post, serialised with a Mongo-style "_id"
// like the production backend does.
type Post struct {
	ID      string  `json:"_id"`
	Owner   string  `json:"-"`
	Image   string  `json:"image"`
	Caption *string `json:"caption"`
}

// Upload records the last multipart part received by posts/create.
type Upload struct {
	FieldName   string
	FileName    string
	ContentType string
	Data        []byte
}

type Server struct {
	*httptest.Server

	// Captioner produces the caption for an uploaded image.
	Captioner func(fileName string, data []byte) string

	mu         sync.Mutex
	users      map[string]string
	sessions   map[string]string
	posts      []Post
	nextID     int
	calls      map[string]int
	failures   map[string]int
	holds      map[string]*hold
	lastUpload *Upload
}

func New() *Server {
	s := &Server{
		Captioner: func(fileName string, _ []byte) string { return "a photo named " + fileName },
		users:     make(map[string]string),
		sessions:  make(map[string]string),
		calls:     make(map[string]int),
		failures:  make(map[string]int),
		holds:     make(map[string]*hold),
	}

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.Handle("/auth/user", s.route(RouteCurrentUser, s.currentUser)).Methods(http.MethodGet)
	api.Handle("/auth/login", s.route(RouteLogin, s.login)).Methods(http.MethodPost)
	api.Handle("/auth/register", s.route(RouteRegister, s.register)).Methods(http.MethodPost)
	api.Handle("/posts/all", s.route(RouteAllPosts, s.allPosts)).Methods(http.MethodGet)
	api.Handle("/posts/my", s.route(RouteMyPosts, s.myPosts)).Methods(http.MethodGet)
	api.Handle("/posts/create", s.route(RouteCreatePost, s.createPost)).Methods(http.MethodPost)

	s.Server = httptest.NewServer(r)
	return s
}

// Config returns a client config pointing at this server.
func (s *Server) Config() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.APIBaseURL = s.URL + "/api"
	return cfg
}

func (s *Server) AddUser(username, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[username] = password
}

// Seed prepends posts owned by owner, keeping the given order at the front.
func (s *Server) Seed(owner string, posts ...Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range posts {
		posts[i].Owner = owner
	}
	s.posts = append(append([]Post{}, posts...), s.posts...)
}

// Fail makes route answer with status until ClearFailure is called.
func (s *Server) Fail(route string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = status
}

func (s *Server) ClearFailure(route string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, route)
}

type hold struct {
	ch   chan struct{}
	once sync.Once
}

func (h *hold) release() {
	h.once.Do(func() { close(h.ch) })
}

// Hold blocks requests to route after they are counted, until release is
// called. release is idempotent.
func (s *Server) Hold(route string) (release func()) {
	h := &hold{ch: make(chan struct{})}
	s.mu.Lock()
	s.holds[route] = h
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		if s.holds[route] == h {
			delete(s.holds, route)
		}
		s.mu.Unlock()
		h.release()
	}
}

// Close releases every held request and shuts the server down.
func (s *Server) Close() {
	s.mu.Lock()
	for route, h := range s.holds {
		h.release()
		delete(s.holds, route)
	}
	s.mu.Unlock()
	s.Server.Close()
}

func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// ExpireSessions drops every session so later cookies are rejected.
func (s *Server) ExpireSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[string]string)
}

func (s *Server) LastUpload() *Upload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUpload
}

// Login creates a session for username directly and returns its cookie.
func (s *Server) Login(username string) *http.Cookie {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.newSessionLocked(username)
}

func (s *Server) newSessionLocked(username string) *http.Cookie {
	token := uuid.NewString()
	s.sessions[token] = username
	return &http.Cookie{Name: cookieName, Value: token, Path: "/", HttpOnly: true}
}

func (s *Server) route(name string, h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[name]++
		held := s.holds[name]
		s.mu.Unlock()

		if held != nil {
			select {
			case <-held.ch:
			case <-r.Context().Done():
				return
			}
		}

		s.mu.Lock()
		status, failing := s.failures[name]
		s.mu.Unlock()
		if failing {
			http.Error(w, http.StatusText(status), status)
			return
		}
		h(w, r)
	})
}

func (s *Server) sessionUser(r *http.Request) string {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[c.Value]
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) {
	user := s.sessionUser(r)
	if user == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "not authenticated"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": map[string]string{"username": user}})
}

type credentials struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad json"})
		return
	}

	s.mu.Lock()
	pass, ok := s.users[c.Username]
	if !ok || pass != c.Password {
		s.mu.Unlock()
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid credentials"})
		return
	}
	cookie := s.newSessionLocked(c.Username)
	s.mu.Unlock()

	http.SetCookie(w, cookie)
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged in"})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil || c.Username == "" || c.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad request"})
		return
	}

	s.mu.Lock()
	if _, exists := s.users[c.Username]; exists {
		s.mu.Unlock()
		writeJSON(w, http.StatusConflict, map[string]string{"message": "user exists"})
		return
	}
	s.users[c.Username] = c.Password
	cookie := s.newSessionLocked(c.Username)
	s.mu.Unlock()

	http.SetCookie(w, cookie)
	writeJSON(w, http.StatusCreated, map[string]string{"message": "registered"})
}

func (s *Server) allPosts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := append([]Post{}, s.posts...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) myPosts(w http.ResponseWriter, r *http.Request) {
	user := s.sessionUser(r)
	if user == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "not authenticated"})
		return
	}

	s.mu.Lock()
	out := make([]Post, 0)
	for _, p := range s.posts {
		if p.Owner == user {
			out = append(out, p)
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createPost(w http.ResponseWriter, r *http.Request) {
	user := s.sessionUser(r)
	if user == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "not authenticated"})
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "image is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "read failed"})
		return
	}

	caption := s.Captioner(header.Filename, data)

	s.mu.Lock()
	s.nextID++
	post := Post{
		ID:      fmt.Sprintf("p%d", s.nextID),
		Owner:   user,
		Caption: &caption,
	}
	post.Image = s.URL + "/images/" + post.ID
	s.posts = append([]Post{post}, s.posts...)
	s.lastUpload = &Upload{
		FieldName:   "image",
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, post)
}

// WaitForCalls blocks until route has been hit at least n times or ctx ends.
func (s *Server) WaitForCalls(ctx context.Context, route string, n int) error {
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	for s.Calls(route) < n {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}
