// Package fakestrapi is an in-memory stand-in for the content backend. It
// implements the HTTP surface the client consumes (local auth, CRUD on any
// model, uploads and file metadata) and records every request it receives,
// so tests can assert on headers and paths.
//
// Typical use:
//
//	srv := fakestrapi.New(fakestrapi.Options{RequireAuth: true})
//	ts := httptest.NewServer(srv)
//	defer ts.Close()
package fakestrapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Options configures a Server.
type Options struct {
	// RequireAuth rejects model and upload requests without a valid token.
	RequireAuth bool
	// Secret signs issued tokens. A fixed test secret is used when empty.
	Secret []byte
	// TokenTTL is the lifetime of issued tokens. Defaults to one hour.
	TokenTTL time.Duration
}

// RecordedRequest is what the server saw of one request.
type RecordedRequest struct {
	Method string
	Path   string
	Query  string
	Header http.Header
}

type user struct {
	id       int
	username string
	email    string
	password string
}

// Server is an http.Handler implementing the backend.
type Server struct {
	opts Options
	mux  *http.ServeMux

	mu          sync.Mutex
	requests    []RecordedRequest
	users       []*user
	collections map[string]*collection
	files       *collection
}

// New returns an empty backend.
func New(opts Options) *Server {
	if len(opts.Secret) == 0 {
		opts.Secret = []byte("fakestrapi-secret")
	}
	if opts.TokenTTL == 0 {
		opts.TokenTTL = time.Hour
	}

	s := &Server{
		opts:        opts,
		mux:         http.NewServeMux(),
		collections: make(map[string]*collection),
		files:       newCollection(),
	}

	s.mux.HandleFunc("POST /auth/local/register", s.handleRegister)
	s.mux.HandleFunc("POST /auth/local", s.handleLogin)

	s.mux.HandleFunc("POST /upload", s.authorized(s.handleUpload))
	s.mux.HandleFunc("GET /upload/files", s.authorized(s.handleFiles))
	s.mux.HandleFunc("GET /upload/files/{id}", s.authorized(s.handleFile))

	for _, m := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete} {
		s.mux.HandleFunc(m+" /_redirect", s.handleRedirect)
	}

	s.mux.HandleFunc("GET /{model}", s.authorized(s.handleList))
	s.mux.HandleFunc("POST /{model}", s.authorized(s.handleCreate))
	s.mux.HandleFunc("GET /{model}/{id}", s.authorized(s.handleGet))
	s.mux.HandleFunc("PUT /{model}/{id}", s.authorized(s.handleUpdate))
	s.mux.HandleFunc("DELETE /{model}/{id}", s.authorized(s.handleDelete))

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, RecordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Header: r.Header.Clone(),
	})
	s.mu.Unlock()

	s.mux.ServeHTTP(w, r)
}

// Requests returns a copy of every request received so far.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

// LastRequest returns the most recent request, if any.
func (s *Server) LastRequest() (RecordedRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return RecordedRequest{}, false
	}
	return s.requests[len(s.requests)-1], true
}

// Seed stores records in model directly, bypassing auth. Ids are assigned
// in order.
func (s *Server) Seed(model string, records ...map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.collection(model)
	for _, r := range records {
		c.insert(r)
	}
}

func (s *Server) collection(model string) *collection {
	c, ok := s.collections[model]
	if !ok {
		c = newCollection()
		s.collections[model] = c
	}
	return c
}

// authorized wraps h with bearer token verification when RequireAuth is set.
func (s *Server) authorized(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.opts.RequireAuth {
			h(w, r)
			return
		}
		auth := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusForbidden, "Forbidden")
			return
		}
		if _, err := s.verifyToken(token); err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid token.")
			return
		}
		h(w, r)
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	params, err := readParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	username, email, password := str(params["username"]), str(params["email"]), str(params["password"])
	if username == "" || email == "" || password == "" {
		writeError(w, http.StatusBadRequest, "Missing username, email or password")
		return
	}

	s.mu.Lock()
	for _, u := range s.users {
		if u.username == username || strings.EqualFold(u.email, email) {
			s.mu.Unlock()
			writeError(w, http.StatusBadRequest, "Email or Username are already taken")
			return
		}
	}
	u := &user{id: len(s.users) + 1, username: username, email: email, password: password}
	s.users = append(s.users, u)
	s.mu.Unlock()

	s.writeAuth(w, u)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	params, err := readParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	identifier, password := str(params["identifier"]), str(params["password"])

	s.mu.Lock()
	var found *user
	for _, u := range s.users {
		if (u.username == identifier || strings.EqualFold(u.email, identifier)) && u.password == password {
			found = u
			break
		}
	}
	s.mu.Unlock()

	if found == nil {
		writeError(w, http.StatusBadRequest, "Identifier or password invalid.")
		return
	}
	s.writeAuth(w, found)
}

func (s *Server) writeAuth(w http.ResponseWriter, u *user) {
	token, err := s.issueToken(u.id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"jwt": token,
		"user": map[string]any{
			"id":       u.id,
			"username": u.username,
			"email":    u.email,
		},
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	list := s.collection(r.PathValue("model")).list()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	params, err := readParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	rec := s.collection(r.PathValue("model")).insert(params)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	s.withRecord(w, r, func(c *collection, id int) (map[string]any, bool) {
		return c.get(id)
	})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	params, err := readParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.withRecord(w, r, func(c *collection, id int) (map[string]any, bool) {
		return c.update(id, params)
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	s.withRecord(w, r, func(c *collection, id int) (map[string]any, bool) {
		return c.remove(id)
	})
}

func (s *Server) withRecord(w http.ResponseWriter, r *http.Request, fn func(*collection, int) (map[string]any, bool)) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}
	s.mu.Lock()
	rec, ok := fn(s.collection(r.PathValue("model")), id)
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, "Files are empty")
		return
	}

	out := make([]map[string]any, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		hash := strings.ReplaceAll(uuid.NewString(), "-", "")
		ext := ""
		if i := strings.LastIndexByte(fh.Filename, '.'); i >= 0 {
			ext = fh.Filename[i:]
		}

		s.mu.Lock()
		rec := s.files.insert(map[string]any{
			"name": fh.Filename,
			"hash": hash,
			"ext":  ext,
			"mime": fh.Header.Get("Content-Type"),
			"size": float64(len(data)) / 1000,
			"url":  "/uploads/" + hash + ext,
		})
		s.mu.Unlock()
		out = append(out, rec)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	list := s.files.list()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}
	s.mu.Lock()
	rec, ok := s.files.get(id)
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleRedirect answers with 307 to the path in the "to" query parameter,
// keeping method and body.
func (s *Server) handleRedirect(w http.ResponseWriter, r *http.Request) {
	to := r.URL.Query().Get("to")
	if !strings.HasPrefix(to, "/") {
		writeError(w, http.StatusBadRequest, "redirect target must be a path")
		return
	}
	http.Redirect(w, r, to, http.StatusTemporaryRedirect)
}

// readParams accepts JSON and form encoded bodies.
func readParams(r *http.Request) (map[string]any, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch ct {
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
		params := make(map[string]any, len(r.PostForm))
		for k := range r.PostForm {
			params[k] = r.PostForm.Get(k)
		}
		return params, nil
	default:
		params := map[string]any{}
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			if errors.Is(err, io.EOF) {
				return params, nil
			}
			return nil, fmt.Errorf("invalid JSON body: %w", err)
		}
		return params, nil
	}
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{
		"data": nil,
		"error": map[string]any{
			"status":  code,
			"name":    http.StatusText(code),
			"message": msg,
		},
	})
}
