package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/gostrapi/internal/logging"
)

// Backend paths.
const (
	pathRegister  = "/auth/local/register"
	pathLogin     = "/auth/local"
	pathUpload    = "/upload"
	pathFiles     = "/upload/files"
	shapeAuthResp = "object with jwt and user"
)

// HTTPClient talks to the content backend over HTTP/JSON. It is safe for
// concurrent use; the current Session is swapped atomically on login and
// logout.
type HTTPClient struct {
	baseURL   string
	transport TransportOptions
	logger    logging.Logger
	session   atomic.Pointer[Session]
}

var _ Client = (*HTTPClient)(nil)

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPTransport sets the round tripper requests are sent through.
func WithHTTPTransport(rt http.RoundTripper) Option {
	return func(c *HTTPClient) { c.transport.Base = rt }
}

// WithTimeout bounds every request, redirects included.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.transport.Timeout = d }
}

// WithMaxRedirects sets how many redirects are followed.
func WithMaxRedirects(n int) Option {
	return func(c *HTTPClient) { c.transport.MaxRedirects = n }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.logger = l }
}

// WithToken starts the client with an authenticated session.
func WithToken(token string) Option {
	return func(c *HTTPClient) { c.session.Store(newSession(token, c.transport)) }
}

// NewHTTPClient creates a client for the backend at baseURL. The URL must be
// absolute; a trailing slash is ignored.
func NewHTTPClient(baseURL string, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: must be absolute http(s)", baseURL)
	}

	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logging.Nop(),
	}
	c.session.Store(newSession("", c.transport))
	for _, opt := range opts {
		opt(c)
	}
	// options may have changed the transport after the initial session was built
	token, _ := c.Session().Token()
	c.session.Store(newSession(token, c.transport))
	return c, nil
}

// BaseURL returns the backend address the client was created with.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// Session returns the current session snapshot.
func (c *HTTPClient) Session() *Session {
	return c.session.Load()
}

// SetToken replaces the session with one authenticated by token. An empty
// token is the same as Logout.
func (c *HTTPClient) SetToken(token string) {
	c.session.Store(newSession(token, c.transport))
}

// Logout drops the token. It never fails and may be called repeatedly.
func (c *HTTPClient) Logout() {
	c.session.Store(newSession("", c.transport))
}

func (c *HTTPClient) url(segments ...string) string {
	var b strings.Builder
	b.WriteString(c.baseURL)
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

// Register creates a user and installs the returned token.
func (c *HTTPClient) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	return c.authenticate(ctx, c.baseURL+pathRegister, map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
}

// Login exchanges credentials for a token and installs it. identifier is
// either the username or the email.
func (c *HTTPClient) Login(ctx context.Context, identifier, password string) (*AuthResult, error) {
	return c.authenticate(ctx, c.baseURL+pathLogin, map[string]string{
		"identifier": identifier,
		"password":   password,
	})
}

func (c *HTTPClient) authenticate(ctx context.Context, endpoint string, params map[string]string) (*AuthResult, error) {
	body, err := jsonBody(params)
	if err != nil {
		return nil, err
	}

	data, err := dispatch[Record](ctx, c, c.Session(), http.MethodPost, endpoint, body)
	if err != nil {
		return nil, err
	}

	jwt, ok := data["jwt"].(string)
	if !ok || jwt == "" {
		return nil, &MalformedResponseError{URL: endpoint, Expected: shapeAuthResp, Err: fmt.Errorf("missing jwt")}
	}
	user, ok := data["user"].(map[string]any)
	if !ok {
		return nil, &MalformedResponseError{URL: endpoint, Expected: shapeAuthResp, Err: fmt.Errorf("missing user")}
	}

	c.SetToken(jwt)
	c.logger.Info(ctx, "session authenticated", "endpoint", endpoint)

	return &AuthResult{JWT: jwt, User: user}, nil
}

// Create posts a new entry to the model collection.
func (c *HTTPClient) Create(ctx context.Context, model string, params Record) (Record, error) {
	body, err := jsonBody(params)
	if err != nil {
		return nil, err
	}
	return dispatch[Record](ctx, c, c.Session(), http.MethodPost, c.url(model), body)
}

// All lists the entries of a model collection in backend order.
func (c *HTTPClient) All(ctx context.Context, model string) ([]Record, error) {
	return dispatch[[]Record](ctx, c, c.Session(), http.MethodGet, c.url(model), nil)
}

// Get fetches one entry by id.
func (c *HTTPClient) Get(ctx context.Context, model, id string) (Record, error) {
	return dispatch[Record](ctx, c, c.Session(), http.MethodGet, c.url(model, id), nil)
}

// Update replaces the given fields of an entry.
func (c *HTTPClient) Update(ctx context.Context, model, id string, params Record) (Record, error) {
	body, err := jsonBody(params)
	if err != nil {
		return nil, err
	}
	return dispatch[Record](ctx, c, c.Session(), http.MethodPut, c.url(model, id), body)
}

// Delete removes an entry and returns it as the backend last saw it.
func (c *HTTPClient) Delete(ctx context.Context, model, id string) (Record, error) {
	return dispatch[Record](ctx, c, c.Session(), http.MethodDelete, c.url(model, id), nil)
}

// Files lists the metadata of every uploaded file.
func (c *HTTPClient) Files(ctx context.Context) ([]Record, error) {
	return dispatch[[]Record](ctx, c, c.Session(), http.MethodGet, c.baseURL+pathFiles, nil)
}

// File fetches the metadata of one uploaded file.
func (c *HTTPClient) File(ctx context.Context, id string) (Record, error) {
	return dispatch[Record](ctx, c, c.Session(), http.MethodGet, c.baseURL+pathFiles+"/"+url.PathEscape(id), nil)
}
