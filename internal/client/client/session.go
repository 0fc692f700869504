package client

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/gostrapi/internal/common"
)

// Session is an immutable snapshot of the authentication state together
// with the transport built for it. A request started with one Session uses
// it until the response is read, so a concurrent login or logout never
// produces a request with mixed headers.
type Session struct {
	token  string
	header http.Header
	http   *http.Client
}

// TransportOptions configures the http.Client every Session is built on.
type TransportOptions struct {
	// Base performs the actual round trips. Defaults to http.DefaultTransport.
	Base http.RoundTripper
	// Timeout bounds a whole request including redirects. Zero means none.
	Timeout time.Duration
	// MaxRedirects is the number of redirects followed before giving up.
	MaxRedirects int
}

const defaultMaxRedirects = 10

// newSession builds a session for token. An empty token yields the
// unauthenticated session, which sends neither Accept nor Authorization
// headers of its own.
func newSession(token string, opts TransportOptions) *Session {
	header := http.Header{}
	if token != "" {
		header.Set(common.AcceptHeaderName, common.ContentTypeJSON)
		header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	base := opts.Base
	if base == nil {
		base = http.DefaultTransport
	}
	maxRedirects := opts.MaxRedirects
	if maxRedirects <= 0 {
		maxRedirects = defaultMaxRedirects
	}

	s := &Session{token: token, header: header}
	s.http = &http.Client{
		Transport: &headerTransport{base: base, header: header},
		Timeout:   opts.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			s.applyHeaders(req)
			return nil
		},
	}
	return s
}

// applyHeaders rewrites the session headers onto req, replacing whatever the
// redirect machinery copied or dropped. Without a token any Authorization
// header is removed.
func (s *Session) applyHeaders(req *http.Request) {
	if s.token == "" {
		req.Header.Del(common.AuthorizationHeaderName)
		return
	}
	for k, v := range s.header {
		req.Header[k] = append([]string(nil), v...)
	}
}

// Token returns the bearer token and whether one is set.
func (s *Session) Token() (string, bool) {
	return s.token, s.token != ""
}

// Authenticated reports whether the session carries a bearer token.
func (s *Session) Authenticated() bool {
	return s.token != ""
}

// Header returns a copy of the headers added to every request.
func (s *Session) Header() http.Header {
	return s.header.Clone()
}

// Claims decodes the token payload without verifying its signature. The
// backend is the only party able to verify it; the client uses the claims
// for display (subject, expiry) only.
func (s *Session) Claims() (jwt.MapClaims, error) {
	if s.token == "" {
		return nil, ErrUnauthorized
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.token, claims); err != nil {
		return nil, errors.Join(ErrTokenNotJWT, err)
	}
	return claims, nil
}

// ExpiresAt returns the exp claim of the token, if present.
func (s *Session) ExpiresAt() (time.Time, bool) {
	claims, err := s.Claims()
	if err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// headerTransport sets the session headers on every outgoing request,
// including the ones issued while following redirects.
type headerTransport struct {
	base   http.RoundTripper
	header http.Header
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if len(t.header) == 0 {
		return t.base.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	for k, v := range t.header {
		r.Header[k] = append([]string(nil), v...)
	}
	return t.base.RoundTrip(r)
}
