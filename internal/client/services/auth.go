// Package services contains the application services the CLI is built on.
// This file defines the authentication service: register and login against
// the backend, persistence of the resulting session in the local state
// database, restore on startup, logout and status reporting.
package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gostrapi/internal/client/client"
	"github.com/dmitrijs2005/gostrapi/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gostrapi/internal/client/state"
	"github.com/dmitrijs2005/gostrapi/internal/common"
	"github.com/dmitrijs2005/gostrapi/internal/logging"
)

// Metadata keys of the persisted session.
const (
	keyToken   = "jwt"
	keyUser    = "user"
	keyBaseURL = "base_url"
)

// Status describes the current session.
type Status struct {
	Authenticated bool
	BaseURL       string
	User          client.Record
	// ExpiresAt is zero when the token carries no exp claim.
	ExpiresAt time.Time
}

// Username returns the username of the persisted user record, if any.
func (s *Status) Username() string {
	if s.User == nil {
		return ""
	}
	u, _ := s.User["username"].(string)
	return u
}

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Register, Login: authenticate against the backend and persist the session.
//   - Logout: drop the client session and the persisted one.
//   - Restore: install a previously persisted session into the client.
//   - Status: report the session currently installed.
//
// Passwords are wiped once sent.
type AuthService interface {
	Register(ctx context.Context, username, email string, password []byte) (*client.AuthResult, error)
	Login(ctx context.Context, identifier string, password []byte) (*client.AuthResult, error)
	Logout(ctx context.Context) error
	Restore(ctx context.Context) (bool, error)
	Status(ctx context.Context) (*Status, error)
}

type authService struct {
	client client.Client
	db     *sql.DB
	logger logging.Logger
	now    func() time.Time
}

// NewAuthService constructs an AuthService bound to the given client and
// state database.
func NewAuthService(c client.Client, db *sql.DB, logger logging.Logger) AuthService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &authService{client: c, db: db, logger: logger, now: time.Now}
}

func (a *authService) metadataRepo() metadata.Repository {
	return metadata.NewSQLiteRepository(a.db)
}

func (a *authService) Register(ctx context.Context, username, email string, password []byte) (*client.AuthResult, error) {
	defer common.WipeByteArray(password)
	if username == "" || email == "" || len(password) == 0 {
		return nil, fmt.Errorf("%w: username, email and password are required", ErrInvalidInput)
	}

	res, err := a.client.Register(ctx, username, email, string(password))
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if err := a.save(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (a *authService) Login(ctx context.Context, identifier string, password []byte) (*client.AuthResult, error) {
	defer common.WipeByteArray(password)
	if identifier == "" || len(password) == 0 {
		return nil, fmt.Errorf("%w: identifier and password are required", ErrInvalidInput)
	}

	res, err := a.client.Login(ctx, identifier, string(password))
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if err := a.save(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

// save persists token, user and backend address in one transaction.
func (a *authService) save(ctx context.Context, res *client.AuthResult) error {
	user, err := json.Marshal(res.User)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	err = state.WithTx(ctx, a.db, func(ctx context.Context, tx state.DBTX) error {
		return metadata.NewSQLiteRepository(tx).SetMany(ctx, map[string][]byte{
			keyToken:   []byte(res.JWT),
			keyUser:    user,
			keyBaseURL: []byte(a.client.BaseURL()),
		})
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (a *authService) Logout(ctx context.Context) error {
	a.client.Logout()
	if err := a.metadataRepo().Delete(ctx, keyToken, keyUser, keyBaseURL); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Restore installs the persisted token into the client. It reports false
// when nothing usable is stored: no token, a token issued by another
// backend, or an expired one. Expired sessions are removed.
func (a *authService) Restore(ctx context.Context) (bool, error) {
	repo := a.metadataRepo()

	token, err := repo.Get(ctx, keyToken)
	if err != nil {
		return false, fmt.Errorf("restore: %w", err)
	}
	if len(token) == 0 {
		return false, nil
	}

	baseURL, err := repo.Get(ctx, keyBaseURL)
	if err != nil {
		return false, fmt.Errorf("restore: %w", err)
	}
	if string(baseURL) != a.client.BaseURL() {
		a.logger.Debug(ctx, "stored session belongs to another backend", "stored", string(baseURL))
		return false, nil
	}

	a.client.SetToken(string(token))
	if exp, ok := a.client.Session().ExpiresAt(); ok && !exp.After(a.now()) {
		a.logger.Info(ctx, "stored session expired", "expired_at", exp)
		if err := a.Logout(ctx); err != nil {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

func (a *authService) Status(ctx context.Context) (*Status, error) {
	sess := a.client.Session()
	st := &Status{
		Authenticated: sess.Authenticated(),
		BaseURL:       a.client.BaseURL(),
	}
	if !st.Authenticated {
		return st, nil
	}

	if exp, ok := sess.ExpiresAt(); ok {
		st.ExpiresAt = exp
	}

	raw, err := a.metadataRepo().Get(ctx, keyUser)
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	if len(raw) > 0 {
		var user client.Record
		if err := json.Unmarshal(raw, &user); err != nil {
			a.logger.Warn(ctx, "stored user record is unreadable", "error", err)
		} else {
			st.User = user
		}
	}
	return st, nil
}
