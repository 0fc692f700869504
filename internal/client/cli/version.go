package cli

import (
	"fmt"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/gostrapi/internal/buildinfo"
)

const appName = "gostrapi"

func newVersionCommand() *cobra.Command {
	var short bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if short {
				fmt.Fprintln(w, buildinfo.Version)
				return nil
			}
			fmt.Fprintln(w, figure.NewFigure(appName, "cybermedium", true).String())
			buildinfo.PrintBuildData(w)
			return nil
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "print the version number only")
	return cmd
}
