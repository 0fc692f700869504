package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gostrapi/internal/common"
)

// requestBody is what the dispatcher sends: a reader plus its content type.
// A nil requestBody sends no body.
type requestBody struct {
	reader      io.Reader
	contentType string
	length      int64
	// getBody replays the body when a redirect has to resend it.
	getBody func() (io.ReadCloser, error)
}

func jsonBody(v any) (*requestBody, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	return &requestBody{reader: bytes.NewReader(b), contentType: common.ContentTypeJSON, length: int64(len(b))}, nil
}

// shapeName describes the decoding target for error messages.
func shapeName[T any]() string {
	var zero T
	switch any(zero).(type) {
	case Record:
		return "object"
	case []Record:
		return "array of objects"
	default:
		return fmt.Sprintf("%T", zero)
	}
}

// dispatch issues one request with session s and decodes a 200 response into
// T. Any other status becomes a *StatusError, a body that does not decode
// into T becomes a *MalformedResponseError.
func dispatch[T any](ctx context.Context, c *HTTPClient, s *Session, method, url string, body *requestBody) (T, error) {
	var zero T

	raw, err := c.do(ctx, s, method, url, body)
	if err != nil {
		return zero, err
	}

	var out T
	if err := decodeStrict(raw, &out); err != nil {
		return zero, &MalformedResponseError{URL: url, Expected: shapeName[T](), Err: err}
	}
	return out, nil
}

// decodeStrict decodes a whole JSON document and refuses null where an
// object or array was expected.
func decodeStrict(raw []byte, out any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return errors.New("empty body")
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return errors.New("null body")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(out); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("trailing data after JSON document")
	}
	return nil
}

// do performs the round trip and returns the body of a 200 response.
func (c *HTTPClient) do(ctx context.Context, s *Session, method, url string, body *requestBody) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = body.reader
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	if body != nil {
		req.Header.Set(common.ContentTypeHeaderName, body.contentType)
		if body.length > 0 {
			req.ContentLength = body.length
		}
		if body.getBody != nil {
			req.GetBody = body.getBody
		}
	}

	start := time.Now()
	resp, err := s.http.Do(req)
	if err != nil {
		c.logger.Warn(ctx, "request failed", "method", method, "url", url, "error", err)
		return nil, &TransportError{Method: method, URL: url, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: method, URL: url, Err: err}
	}

	c.logger.Debug(ctx, "request done",
		"method", method,
		"url", url,
		"status", resp.StatusCode,
		"authenticated", s.Authenticated(),
		"duration", time.Since(start),
	)

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Method: method, URL: url, Code: resp.StatusCode, Body: raw}
	}
	return raw, nil
}
