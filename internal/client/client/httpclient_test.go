package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gostrapi/internal/fakestrapi"
)

func newTestClient(t *testing.T, opts fakestrapi.Options) (*HTTPClient, *fakestrapi.Server) {
	t.Helper()
	srv := fakestrapi.New(opts)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	c, err := NewHTTPClient(ts.URL + "/")
	require.NoError(t, err)
	return c, srv
}

// stubServer answers every request with code and body and records the
// requests it saw.
type stubServer struct {
	mu       sync.Mutex
	requests []*http.Request
	bodies   [][]byte
	code     int
	body     string
}

func newStub(t *testing.T, code int, body string) (*stubServer, *httptest.Server) {
	t.Helper()
	s := &stubServer{code: code, body: body}
	ts := httptest.NewServer(s)
	t.Cleanup(ts.Close)
	return s, ts
}

func (s *stubServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	s.mu.Lock()
	s.requests = append(s.requests, r.Clone(context.Background()))
	s.bodies = append(s.bodies, b)
	s.mu.Unlock()
	w.WriteHeader(s.code)
	_, _ = io.WriteString(w, s.body)
}

func (s *stubServer) last() (*http.Request, []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[len(s.requests)-1], s.bodies[len(s.bodies)-1]
}

func TestNewHTTPClient_RejectsRelativeURL(t *testing.T) {
	for _, u := range []string{"", "localhost:1337", "/api", "ftp://host", "http://"} {
		_, err := NewHTTPClient(u)
		assert.Error(t, err, u)
	}
}

func TestLogin_InstallsBearerForLaterRequests(t *testing.T) {
	mux := http.NewServeMux()
	var loginBody map[string]any
	var createAuth, createAccept string
	mux.HandleFunc("POST /auth/local", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&loginBody)
		_, _ = io.WriteString(w, `{"jwt":"tok1","user":{"id":1}}`)
	})
	mux.HandleFunc("POST /articles", func(w http.ResponseWriter, r *http.Request) {
		createAuth = r.Header.Get("Authorization")
		createAccept = r.Header.Get("Accept")
		_, _ = io.WriteString(w, `{"id":5,"title":"x"}`)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	c, err := NewHTTPClient(ts.URL)
	require.NoError(t, err)

	res, err := c.Login(context.Background(), "a@b.com", "pw")
	require.NoError(t, err)
	require.Equal(t, "tok1", res.JWT)
	require.Equal(t, Record{"id": float64(1)}, res.User)
	require.Equal(t, map[string]any{"identifier": "a@b.com", "password": "pw"}, loginBody)

	created, err := c.Create(context.Background(), "articles", Record{"title": "x"})
	require.NoError(t, err)
	require.Equal(t, "x", created["title"])
	require.Equal(t, "Bearer tok1", createAuth)
	require.Equal(t, "application/json", createAccept)
}

func TestRegister_ThenLogout_DropsAuthorization(t *testing.T) {
	c, srv := newTestClient(t, fakestrapi.Options{})
	ctx := context.Background()

	res, err := c.Register(ctx, "alice", "alice@example.com", "secret")
	require.NoError(t, err)
	require.Equal(t, "alice", res.User["username"])
	require.True(t, c.Session().Authenticated())

	_, err = c.All(ctx, "articles")
	require.NoError(t, err)
	last, _ := srv.LastRequest()
	require.Equal(t, "Bearer "+res.JWT, last.Header.Get("Authorization"))

	c.Logout()
	c.Logout()
	require.False(t, c.Session().Authenticated())

	_, err = c.All(ctx, "articles")
	require.NoError(t, err)
	last, _ = srv.LastRequest()
	require.Empty(t, last.Header.Values("Authorization"))
}

func TestLogin_RejectedKeepsSessionEmpty(t *testing.T) {
	c, _ := newTestClient(t, fakestrapi.Options{})

	_, err := c.Login(context.Background(), "nobody", "pw")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	require.Equal(t, http.StatusBadRequest, se.Code)
	require.Equal(t, "Identifier or password invalid.", se.Message())
	require.False(t, c.Session().Authenticated())
}

func TestAuth_MissingFieldsIsMalformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "no jwt", body: `{"user":{"id":1}}`},
		{name: "jwt not a string", body: `{"jwt":5,"user":{"id":1}}`},
		{name: "no user", body: `{"jwt":"t"}`},
		{name: "user not an object", body: `{"jwt":"t","user":[1]}`},
		{name: "array", body: `[]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ts := newStub(t, http.StatusOK, tt.body)
			c, err := NewHTTPClient(ts.URL)
			require.NoError(t, err)

			_, err = c.Login(context.Background(), "a", "b")
			require.ErrorIs(t, err, ErrMalformedResponse)
			require.False(t, c.Session().Authenticated())
		})
	}
}

func TestRedirect_PreservesHeaders(t *testing.T) {
	c, srv := newTestClient(t, fakestrapi.Options{RequireAuth: true})
	tok, err := srv.IssueToken(1)
	require.NoError(t, err)
	srv.Seed("articles", map[string]any{"title": "a"})
	c.SetToken(tok)

	list, err := dispatch[[]Record](context.Background(), c, c.Session(), http.MethodGet, c.BaseURL()+"/_redirect?to=/articles", nil)
	require.NoError(t, err)
	require.Len(t, list, 1)

	reqs := srv.Requests()
	require.Len(t, reqs, 2)
	for _, r := range reqs {
		assert.Equal(t, []string{"Bearer " + tok}, r.Header.Values("Authorization"), r.Path)
		assert.Equal(t, []string{"application/json"}, r.Header.Values("Accept"), r.Path)
	}
}

func TestRedirect_CrossHostKeepsAuthorization(t *testing.T) {
	target, targetTS := newStub(t, http.StatusOK, `{"ok":true}`)
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, targetTS.URL+r.URL.Path, http.StatusFound)
	}))
	defer origin.Close()

	c, err := NewHTTPClient(origin.URL, WithToken("tok2"))
	require.NoError(t, err)

	rec, err := c.Get(context.Background(), "articles", "1")
	require.NoError(t, err)
	require.Equal(t, true, rec["ok"])

	r, _ := target.last()
	require.Equal(t, "/articles/1", r.URL.Path)
	require.Equal(t, "Bearer tok2", r.Header.Get("Authorization"))
	require.Equal(t, "application/json", r.Header.Get("Accept"))
}

func TestRedirect_Limit(t *testing.T) {
	var ts *httptest.Server
	ts = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, ts.URL+"/loop", http.StatusFound)
	}))
	defer ts.Close()

	c, err := NewHTTPClient(ts.URL, WithMaxRedirects(2))
	require.NoError(t, err)
	_, err = c.All(context.Background(), "loop")
	require.ErrorIs(t, err, ErrUnavailable)
	require.ErrorContains(t, err, "stopped after 2 redirects")
}

func TestAll_PreservesOrder(t *testing.T) {
	c, srv := newTestClient(t, fakestrapi.Options{})
	srv.Seed("articles",
		map[string]any{"title": "first"},
		map[string]any{"title": "second"},
		map[string]any{"title": "third"},
	)

	list, err := c.All(context.Background(), "articles")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "first", list[0]["title"])
	assert.Equal(t, "second", list[1]["title"])
	assert.Equal(t, "third", list[2]["title"])
}

func TestCRUD_RoundTrip(t *testing.T) {
	c, srv := newTestClient(t, fakestrapi.Options{RequireAuth: true})
	ctx := context.Background()

	_, err := c.Register(ctx, "bob", "bob@example.com", "pw")
	require.NoError(t, err)

	created, err := c.Create(ctx, "articles", Record{"title": "x", "tags": []any{"a", "b"}})
	require.NoError(t, err)
	id := fmt.Sprint(created["id"])

	got, err := c.Get(ctx, "articles", id)
	require.NoError(t, err)
	require.Equal(t, []any{"a", "b"}, got["tags"])

	updated, err := c.Update(ctx, "articles", id, Record{"title": "y"})
	require.NoError(t, err)
	require.Equal(t, "y", updated["title"])

	deleted, err := c.Delete(ctx, "articles", id)
	require.NoError(t, err)
	require.Equal(t, "y", deleted["title"])

	_, err = c.Get(ctx, "articles", id)
	require.ErrorIs(t, err, ErrNotFound)

	methods := []string{}
	for _, r := range srv.Requests() {
		methods = append(methods, r.Method+" "+r.Path)
	}
	require.Equal(t, []string{
		"POST /auth/local/register",
		"POST /articles",
		"GET /articles/1",
		"PUT /articles/1",
		"DELETE /articles/1",
		"GET /articles/1",
	}, methods)
}

func TestGet_NotFoundScenario(t *testing.T) {
	_, ts := newStub(t, http.StatusNotFound, `{"statusCode":404,"error":"Not Found","message":"Not Found"}`)
	c, err := NewHTTPClient(ts.URL)
	require.NoError(t, err)

	_, err = c.Get(context.Background(), "articles", "42")

	var se *StatusError
	require.ErrorAs(t, err, &se)
	require.Equal(t, 404, se.Code)
	require.Equal(t, http.MethodGet, se.Method)
	require.Equal(t, ts.URL+"/articles/42", se.URL)
	require.ErrorIs(t, err, ErrNotFound)
	require.Contains(t, string(se.Body), "Not Found")
}

func TestStatus_OnlyExactly200Succeeds(t *testing.T) {
	for _, code := range []int{201, 204, 301, 400, 401, 403, 500, 503} {
		t.Run(http.StatusText(code), func(t *testing.T) {
			_, ts := newStub(t, code, `{"id":1}`)
			c, err := NewHTTPClient(ts.URL, WithMaxRedirects(1))
			require.NoError(t, err)

			_, err = c.Create(context.Background(), "articles", Record{"a": 1})
			var se *StatusError
			require.ErrorAs(t, err, &se)
			require.Equal(t, code, se.Code)
		})
	}
}

func TestStatusError_SentinelMapping(t *testing.T) {
	tests := []struct {
		code   int
		target error
		want   bool
	}{
		{401, ErrUnauthorized, true},
		{403, ErrUnauthorized, true},
		{404, ErrNotFound, true},
		{503, ErrUnavailable, true},
		{502, ErrUnavailable, true},
		{500, ErrUnavailable, false},
		{400, ErrNotFound, false},
	}
	for _, tt := range tests {
		err := error(&StatusError{Code: tt.code})
		assert.Equal(t, tt.want, errors.Is(err, tt.target), "%d vs %v", tt.code, tt.target)
	}
}

func TestStatusError_Message(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"error":{"status":400,"message":"Invalid identifier"}}`, "Invalid identifier"},
		{`{"statusCode":400,"error":"Bad Request","message":"Email is already taken"}`, "Email is already taken"},
		{`{"message":[{"messages":[{"id":"x","message":"y"}]}]}`, `[{"messages":[{"id":"x","message":"y"}]}]`},
		{`not json`, ""},
		{``, ""},
	}
	for _, tt := range tests {
		se := &StatusError{Code: 400, Body: []byte(tt.body)}
		assert.Equal(t, tt.want, se.Message(), tt.body)
	}
}

func TestMalformedResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
		call func(c *HTTPClient) error
	}{
		{"object expected, got array", `[{"id":1}]`, func(c *HTTPClient) error {
			_, err := c.Get(context.Background(), "articles", "1")
			return err
		}},
		{"array expected, got object", `{"id":1}`, func(c *HTTPClient) error {
			_, err := c.All(context.Background(), "articles")
			return err
		}},
		{"array of non-objects", `[1,2]`, func(c *HTTPClient) error {
			_, err := c.Files(context.Background())
			return err
		}},
		{"not json", `<html>`, func(c *HTTPClient) error {
			_, err := c.File(context.Background(), "1")
			return err
		}},
		{"empty body", ``, func(c *HTTPClient) error {
			_, err := c.Delete(context.Background(), "articles", "1")
			return err
		}},
		{"null", `null`, func(c *HTTPClient) error {
			_, err := c.Update(context.Background(), "articles", "1", Record{})
			return err
		}},
		{"trailing data", `{"id":1}{"id":2}`, func(c *HTTPClient) error {
			_, err := c.Get(context.Background(), "articles", "1")
			return err
		}},
		{"stray closing bracket", `{"id":1}]`, func(c *HTTPClient) error {
			_, err := c.Get(context.Background(), "articles", "1")
			return err
		}},
		{"stray closing braces", `[{"id":1}]}}}`, func(c *HTTPClient) error {
			_, err := c.All(context.Background(), "articles")
			return err
		}},
		{"trailing garbage", `[{"id":1}] x`, func(c *HTTPClient) error {
			_, err := c.Files(context.Background())
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ts := newStub(t, http.StatusOK, tt.body)
			c, err := NewHTTPClient(ts.URL)
			require.NoError(t, err)

			err = tt.call(c)
			require.ErrorIs(t, err, ErrMalformedResponse)
			var me *MalformedResponseError
			require.ErrorAs(t, err, &me)
		})
	}
}

func TestTransportError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	c, err := NewHTTPClient(url)
	require.NoError(t, err)

	_, err = c.Files(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
	var te *TransportError
	require.ErrorAs(t, err, &te)
	require.Equal(t, http.MethodGet, te.Method)
}

func TestContextCancelled(t *testing.T) {
	_, ts := newStub(t, http.StatusOK, `[]`)
	c, err := NewHTTPClient(ts.URL)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.All(ctx, "articles")
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestPathSegmentsAreEscaped(t *testing.T) {
	stub, ts := newStub(t, http.StatusOK, `{}`)
	c, err := NewHTTPClient(ts.URL)
	require.NoError(t, err)

	_, err = c.Get(context.Background(), "my articles", "a/b")
	require.NoError(t, err)

	r, _ := stub.last()
	require.Equal(t, "/my%20articles/a%2Fb", r.URL.EscapedPath())
}

func TestRequestBodiesAreJSON(t *testing.T) {
	stub, ts := newStub(t, http.StatusOK, `{}`)
	c, err := NewHTTPClient(ts.URL)
	require.NoError(t, err)

	_, err = c.Update(context.Background(), "articles", "1", Record{"nested": map[string]any{"n": 1}})
	require.NoError(t, err)

	r, body := stub.last()
	require.Equal(t, http.MethodPut, r.Method)
	require.Equal(t, "application/json", r.Header.Get("Content-Type"))
	require.JSONEq(t, `{"nested":{"n":1}}`, string(body))
}

func TestEncodingFailure_NoRequestSent(t *testing.T) {
	stub, ts := newStub(t, http.StatusOK, `{}`)
	c, err := NewHTTPClient(ts.URL)
	require.NoError(t, err)

	_, err = c.Create(context.Background(), "articles", Record{"bad": make(chan int)})
	require.ErrorIs(t, err, ErrEncoding)
	stub.mu.Lock()
	defer stub.mu.Unlock()
	require.Empty(t, stub.requests)
}

func TestSessionSwap_RequestsNeverMixHeaders(t *testing.T) {
	c, srv := newTestClient(t, fakestrapi.Options{})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_, _ = c.All(ctx, "articles")
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 50; j++ {
			if j%2 == 0 {
				c.SetToken(fmt.Sprintf("tok-%d", j))
			} else {
				c.Logout()
			}
		}
	}()
	wg.Wait()

	for _, r := range srv.Requests() {
		auth := r.Header.Values("Authorization")
		accept := r.Header.Values("Accept")
		if len(auth) == 0 {
			continue
		}
		require.Len(t, auth, 1)
		require.Equal(t, []string{"application/json"}, accept)
	}
}
