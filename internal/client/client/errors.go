package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrUnavailable       = errors.New("server unavailable")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrNotFound          = errors.New("not found")
	ErrMalformedResponse = errors.New("malformed response")
	ErrEncoding          = errors.New("request encoding failed")
	ErrEmptyUpload       = errors.New("nothing to upload")
	ErrTokenNotJWT       = errors.New("token is not a JWT")
)

// TransportError reports a request that never produced an HTTP response:
// network, DNS or TLS failures and context cancellation.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: transport error: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrUnavailable }

// StatusError reports a response whose status code was not 200.
// Body holds the raw response body for callers that want to inspect it.
type StatusError struct {
	Method string
	URL    string
	Code   int
	Body   []byte
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: unexpected status %d %s", e.Method, e.URL, e.Code, http.StatusText(e.Code))
	if m := e.Message(); m != "" {
		msg += ": " + m
	}
	return msg
}

// Is maps well-known status codes onto the package sentinels so callers can
// use errors.Is without type assertions.
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Code == http.StatusUnauthorized || e.Code == http.StatusForbidden
	case ErrNotFound:
		return e.Code == http.StatusNotFound
	case ErrUnavailable:
		return e.Code == http.StatusBadGateway || e.Code == http.StatusServiceUnavailable || e.Code == http.StatusGatewayTimeout
	}
	return false
}

// Message extracts the server supplied error message, if any. Both the
// {"error":{"message":...}} and the older {"message":...} envelopes are
// recognised.
func (e *StatusError) Message() string {
	if len(e.Body) == 0 {
		return ""
	}
	var env struct {
		Error   json.RawMessage `json:"error"`
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(e.Body, &env); err != nil {
		return ""
	}
	if len(env.Error) > 0 {
		var nested struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(env.Error, &nested) == nil && nested.Message != "" {
			return nested.Message
		}
	}
	if len(env.Message) > 0 {
		var s string
		if json.Unmarshal(env.Message, &s) == nil {
			return s
		}
		// some versions send message as a list of {messages:[{id,message}]}
		return strings.TrimSpace(string(env.Message))
	}
	return ""
}

// MalformedResponseError reports a 200 response whose body could not be
// decoded into the shape the operation expects.
type MalformedResponseError struct {
	URL      string
	Expected string
	Err      error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s: malformed response, expected %s: %v", e.URL, e.Expected, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

func (e *MalformedResponseError) Is(target error) bool { return target == ErrMalformedResponse }
