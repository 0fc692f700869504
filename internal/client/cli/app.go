package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/dmitrijs2005/gostrapi/internal/client/client"
	"github.com/dmitrijs2005/gostrapi/internal/client/config"
	"github.com/dmitrijs2005/gostrapi/internal/client/services"
	"github.com/dmitrijs2005/gostrapi/internal/client/state"
	"github.com/dmitrijs2005/gostrapi/internal/filex"
	"github.com/dmitrijs2005/gostrapi/internal/logging"
)

// App holds what one command invocation works with.
type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	client *client.HTTPClient

	authService  services.AuthService
	entryService services.EntryService
	fileService  services.FileService

	reader *bufio.Reader
	out    io.Writer
	errOut io.Writer
}

// NewApp opens the state database, builds the HTTP client and the services,
// and restores a persisted session if there is one.
func NewApp(ctx context.Context, cfg *config.Config, in io.Reader, out, errOut io.Writer) (*App, error) {
	logger, err := logging.New(cfg.LogFormat, cfg.LogLevel, errOut)
	if err != nil {
		return nil, err
	}

	if cfg.StateDSN != state.MemoryDSN {
		if err := filex.EnsureParentDir(cfg.StateDSN); err != nil {
			return nil, fmt.Errorf("state directory: %w", err)
		}
	}
	db, err := state.InitDatabase(ctx, cfg.StateDSN)
	if err != nil {
		return nil, err
	}

	c, err := client.NewHTTPClient(cfg.BaseURL,
		client.WithTimeout(cfg.Timeout),
		client.WithMaxRedirects(cfg.MaxRedirects),
		client.WithLogger(logger.With("component", "client")),
	)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	a := &App{
		config:       cfg,
		logger:       logger,
		db:           db,
		client:       c,
		authService:  services.NewAuthService(c, db, logger.With("component", "auth")),
		entryService: services.NewEntryService(c),
		fileService:  services.NewFileService(c),
		reader:       bufio.NewReader(in),
		out:          out,
		errOut:       errOut,
	}

	restored, err := a.authService.Restore(ctx)
	if err != nil {
		a.logger.Warn(ctx, "could not restore session", "error", err)
	} else if restored {
		a.logger.Debug(ctx, "session restored")
	}
	return a, nil
}

// Close releases the state database.
func (a *App) Close() error {
	return a.db.Close()
}
