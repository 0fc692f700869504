package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/gostrapi/internal/logging"
)

// Config holds runtime settings for the strapi CLI.
//
// Fields:
//   - BaseURL: absolute http(s) address of the backend, e.g. http://localhost:1337.
//   - Timeout: bound for one request including redirects; 0 disables it.
//   - MaxRedirects: redirects followed before a request fails.
//   - StateDSN: SQLite database holding the persisted session.
//   - LogLevel, LogFormat: see logging.New.
type Config struct {
	BaseURL      string
	Timeout      time.Duration
	MaxRedirects int
	StateDSN     string
	LogLevel     string
	LogFormat    string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BaseURL = "http://localhost:1337"
	c.Timeout = 30 * time.Second
	c.MaxRedirects = 10
	c.StateDSN = defaultStateDSN()
	c.LogLevel = "warn"
	c.LogFormat = logging.FormatConsole
}

// defaultStateDSN places the state database in the user's config directory,
// falling back to the working directory.
func defaultStateDSN() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, appDir, "state.db")
	}
	return filepath.Join("."+appDir, "state.db")
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.BaseURL)
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("base_url: %w", err))
	case (u.Scheme != "http" && u.Scheme != "https") || u.Host == "":
		errs = append(errs, fmt.Errorf("base_url %q: must be an absolute http(s) URL", c.BaseURL))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout %s: must not be negative", c.Timeout))
	}
	if c.MaxRedirects < 0 {
		errs = append(errs, fmt.Errorf("max_redirects %d: must not be negative", c.MaxRedirects))
	}
	if c.StateDSN == "" {
		errs = append(errs, errors.New("state_dsn: must not be empty"))
	}
	if _, err := logging.New(c.LogFormat, c.LogLevel, io.Discard); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}

	return errors.Join(errs...)
}
