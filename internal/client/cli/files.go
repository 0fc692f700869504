package cli

import (
	"github.com/spf13/cobra"
)

func newFilesCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "files",
		Short: "List uploaded files",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			list, err := a.fileService.List(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(a.out, list)
		},
	}
}

func newFileCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "file <id>",
		Short: "Show the metadata of an uploaded file",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			rec, err := a.fileService.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(a.out, rec)
		},
	}
}

func newUploadCommand(app func() *App) *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "upload <path>...",
		Short: "Upload files in one request",
		Args:  minimumArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			var progress func(float64)
			if !quiet {
				progress = newProgressPrinter(a.errOut).update
			}
			records, err := a.fileService.UploadPaths(cmd.Context(), args, progress)
			if err != nil {
				return err
			}
			return printJSON(a.out, records)
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not report progress")
	return cmd
}
