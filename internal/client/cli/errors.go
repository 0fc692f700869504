package cli

import (
	"errors"

	"github.com/dmitrijs2005/gostrapi/internal/client/client"
	"github.com/dmitrijs2005/gostrapi/internal/client/services"
)

// Exit codes.
const (
	ExitOK     = 0
	ExitUser   = 1
	ExitSystem = 2
)

// errUsage marks mistakes in the command line itself.
var errUsage = errors.New("usage error")

// ExitCode maps a command error onto the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var se *client.StatusError
	switch {
	case errors.Is(err, errUsage),
		errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, client.ErrMalformedResponse),
		errors.Is(err, client.ErrEncoding),
		errors.Is(err, client.ErrEmptyUpload):
		return ExitUser
	case errors.As(err, &se):
		if errors.Is(err, client.ErrUnavailable) {
			return ExitSystem
		}
		return ExitUser
	default:
		return ExitSystem
	}
}
