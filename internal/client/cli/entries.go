package cli

import (
	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/gostrapi/internal/client/client"
)

// recordArg parses the optional JSON argument at index i, or reads
// name=value lines when it is absent.
func (a *App) recordArg(args []string, i int) (client.Record, error) {
	if len(args) > i {
		return parseRecord(args[i])
	}
	return GetFields(a.reader, a.errOut)
}

func newCreateCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:     "create <model> [json]",
		Short:   "Create an entry",
		Example: `  strapi create articles '{"title":"Hello"}'`,
		Args:    rangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			params, err := a.recordArg(args, 1)
			if err != nil {
				return err
			}
			rec, err := a.entryService.Create(cmd.Context(), args[0], params)
			if err != nil {
				return err
			}
			return printJSON(a.out, rec)
		},
	}
}

func newListCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list <model>",
		Short: "List the entries of a model",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			list, err := a.entryService.List(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(a.out, list)
		},
	}
}

func newGetCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "get <model> <id>",
		Short: "Show one entry",
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			rec, err := a.entryService.Get(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(a.out, rec)
		},
	}
}

func newUpdateCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:     "update <model> <id> [json]",
		Short:   "Update fields of an entry",
		Example: `  strapi update articles 3 '{"title":"Renamed"}'`,
		Args:    rangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			params, err := a.recordArg(args, 2)
			if err != nil {
				return err
			}
			rec, err := a.entryService.Update(cmd.Context(), args[0], args[1], params)
			if err != nil {
				return err
			}
			return printJSON(a.out, rec)
		},
	}
}

func newDeleteCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <model> <id>",
		Short: "Delete an entry",
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			rec, err := a.entryService.Delete(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(a.out, rec)
		},
	}
}
