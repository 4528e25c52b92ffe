package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"jellyshift/internal/config"
	"jellyshift/internal/library"
	"jellyshift/internal/migrate"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "plan OLD_ROOT NEW_ROOT",
		Short: "Show what a migration would change without applying it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd, func(cfg *config.Config, store *library.Store, logger *slog.Logger) error {
				plan, err := migrate.New(cfg, store, logger).Plan(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(plan.Changes) == 0 {
					fmt.Fprintf(out, "Nothing to migrate (%d items already current)\n", plan.Unchanged)
					return nil
				}

				rows := make([][]string, 0, len(plan.Changes))
				for _, change := range plan.Changes {
					rows = append(rows, []string{
						shortType(change.Type),
						change.OldPath,
						change.NewPath,
						change.NewID.Hex(),
					})
				}
				writeTable(out, []string{"Type", "Old Path", "New Path", "New ID"}, rows)
				fmt.Fprintf(out, "%d items to migrate, %d already current\n",
					len(plan.Changes), plan.Unchanged)
				return nil
			})
		},
	}
}
