package client

import (
	"context"
)

// Record is an untyped JSON object as returned by the backend. Its schema is
// defined by the backend content type and is never inspected here.
type Record = map[string]any

// AuthResult is the payload of a successful register or login call.
type AuthResult struct {
	JWT  string
	User Record
}

// ProgressFunc receives the fraction of the upload body sent so far.
type ProgressFunc func(fraction float64)

// Client is the transport-agnostic contract for talking to the content
// backend. HTTPClient is the implementation used by the services and the CLI.
type Client interface {
	Register(ctx context.Context, username, email, password string) (*AuthResult, error)
	Login(ctx context.Context, identifier, password string) (*AuthResult, error)
	Logout()
	SetToken(token string)
	Session() *Session
	BaseURL() string

	Create(ctx context.Context, model string, params Record) (Record, error)
	All(ctx context.Context, model string) ([]Record, error)
	Get(ctx context.Context, model, id string) (Record, error)
	Update(ctx context.Context, model, id string, params Record) (Record, error)
	Delete(ctx context.Context, model, id string) (Record, error)

	Files(ctx context.Context) ([]Record, error)
	File(ctx context.Context, id string) (Record, error)
	Upload(ctx context.Context, items []UploadItem, progress ProgressFunc) ([]Record, error)
}
