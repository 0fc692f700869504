package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/gostrapi/internal/client/client"
	"github.com/dmitrijs2005/gostrapi/internal/common"
)

// readPasswordFlag returns the --password value, or prompts for one.
func (a *App) readPasswordFlag(cmd *cobra.Command) ([]byte, error) {
	if cmd.Flags().Changed("password") {
		pw, _ := cmd.Flags().GetString("password")
		return []byte(pw), nil
	}
	return GetPassword(a.reader, a.errOut)
}

// authOutput is what register and login print. The token is omitted unless
// asked for.
type authOutput struct {
	User client.Record `json:"user"`
	JWT  string        `json:"jwt,omitempty"`
}

func newRegisterCommand(app func() *App) *cobra.Command {
	var showToken bool
	cmd := &cobra.Command{
		Use:   "register <username> <email>",
		Short: "Create an account and log in",
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			password, err := a.readPasswordFlag(cmd)
			if err != nil {
				return err
			}
			defer common.WipeByteArray(password)

			res, err := a.authService.Register(cmd.Context(), args[0], args[1], password)
			if err != nil {
				return err
			}
			return a.printAuth(res, showToken)
		},
	}
	cmd.Flags().String("password", "", "password (prompted for when omitted)")
	cmd.Flags().BoolVar(&showToken, "show-token", false, "include the JWT in the output")
	return cmd
}

func newLoginCommand(app func() *App) *cobra.Command {
	var showToken bool
	cmd := &cobra.Command{
		Use:   "login <username-or-email>",
		Short: "Log in and remember the session",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			password, err := a.readPasswordFlag(cmd)
			if err != nil {
				return err
			}
			defer common.WipeByteArray(password)

			res, err := a.authService.Login(cmd.Context(), args[0], password)
			if err != nil {
				return err
			}
			return a.printAuth(res, showToken)
		},
	}
	cmd.Flags().String("password", "", "password (prompted for when omitted)")
	cmd.Flags().BoolVar(&showToken, "show-token", false, "include the JWT in the output")
	return cmd
}

func (a *App) printAuth(res *client.AuthResult, showToken bool) error {
	out := authOutput{User: res.User}
	if showToken {
		out.JWT = res.JWT
	}
	return printJSON(a.out, out)
}

func newLogoutCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			if err := a.authService.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.errOut, "Logged out.")
			return nil
		},
	}
}

type whoamiOutput struct {
	Authenticated bool          `json:"authenticated"`
	BaseURL       string        `json:"base_url"`
	Username      string        `json:"username,omitempty"`
	User          client.Record `json:"user,omitempty"`
	ExpiresAt     *time.Time    `json:"expires_at,omitempty"`
}

func newWhoamiCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			st, err := a.authService.Status(cmd.Context())
			if err != nil {
				return err
			}
			out := whoamiOutput{
				Authenticated: st.Authenticated,
				BaseURL:       st.BaseURL,
				Username:      st.Username(),
				User:          st.User,
			}
			if !st.ExpiresAt.IsZero() {
				exp := st.ExpiresAt.UTC()
				out.ExpiresAt = &exp
			}
			return printJSON(a.out, out)
		},
	}
}
