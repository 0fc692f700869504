package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/gostrapi/internal/client/config"
)

// Execute runs the command line args and returns the exit code.
func Execute(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	cmd, closeApp := newRootCommand(in, out, errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if cerr := closeApp(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintln(errOut, "Error:", err)
	}
	return ExitCode(err)
}

// newRootCommand builds the command tree. The App is created in
// PersistentPreRunE, after flags are parsed; the returned func closes it.
func newRootCommand(in io.Reader, out, errOut io.Writer) (*cobra.Command, func() error) {
	var (
		configFile string
		app        *App
	)

	root := &cobra.Command{
		Use:           "strapi",
		Short:         "Command-line client for a Strapi content backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if skipsApp(cmd) {
				return nil
			}
			cfg, err := config.LoadConfig(cmd.Flags(), configFile)
			if err != nil {
				return err
			}
			app, err = NewApp(cmd.Context(), cfg, in, out, errOut)
			return err
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", errUsage, err)
	})

	root.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: ./config.yaml or <user config dir>/gostrapi/config.yaml)")
	config.RegisterFlags(root.PersistentFlags())

	// commands reach the App through this getter; it is set by the time RunE runs
	get := func() *App { return app }

	root.AddCommand(
		newRegisterCommand(get),
		newLoginCommand(get),
		newLogoutCommand(get),
		newWhoamiCommand(get),
		newCreateCommand(get),
		newListCommand(get),
		newGetCommand(get),
		newUpdateCommand(get),
		newDeleteCommand(get),
		newFilesCommand(get),
		newFileCommand(get),
		newUploadCommand(get),
		newVersionCommand(),
	)

	closeApp := func() error {
		if app == nil {
			return nil
		}
		return app.Close()
	}
	return root, closeApp
}

// exactArgs is cobra.ExactArgs with the error marked as a usage error.
func exactArgs(n int) cobra.PositionalArgs {
	return wrapArgs(cobra.ExactArgs(n))
}

func rangeArgs(min, max int) cobra.PositionalArgs {
	return wrapArgs(cobra.RangeArgs(min, max))
}

func minimumArgs(n int) cobra.PositionalArgs {
	return wrapArgs(cobra.MinimumNArgs(n))
}

func wrapArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return fmt.Errorf("%w: %w", errUsage, err)
		}
		return nil
	}
}

// skipsApp reports whether cmd, or any command above it, runs without
// config or state: version, help and cobra's completion commands.
func skipsApp(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "version", "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return true
		}
	}
	return false
}
