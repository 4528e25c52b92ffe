package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"jellyshift/internal/config"
	"jellyshift/internal/library"
	"jellyshift/internal/migrate"
)

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	var fix bool
	var kodiPath string
	var noVacuum bool

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check that every stored identifier matches its path",
		Long: `Check that every item's stored identifier equals the hash of its
current path and type. With --fix, mismatched items are re-keyed in
place — the remedy after the server's case sensitivity or program-data
mapping changed under media that never moved. Fixing applies the same
per-item update set as a migration, including metadata folder moves.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd, func(cfg *config.Config, store *library.Store, logger *slog.Logger) error {
				m := migrate.New(cfg, store, logger)
				out := cmd.OutOrStdout()

				if fix {
					plan, err := m.PlanRepair(cmd.Context())
					if err != nil {
						return err
					}
					if path := strings.TrimSpace(kodiPath); path != "" {
						if err := writeKodiScript(path, plan); err != nil {
							return err
						}
					}
					if len(plan.Changes) == 0 {
						fmt.Fprintf(out, "All item identifiers match their paths (%d items)\n", plan.Unchanged)
						return nil
					}
					result, err := m.Apply(cmd.Context(), plan, migrate.Options{Vacuum: !noVacuum})
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Re-keyed %d items in place, moved %d metadata folders\n",
						result.ItemsMigrated, result.FoldersMoved)
					return nil
				}

				mismatches, err := m.Verify(cmd.Context())
				if err != nil {
					return err
				}
				if len(mismatches) == 0 {
					fmt.Fprintln(out, "All item identifiers match their paths")
					return nil
				}

				rows := make([][]string, 0, len(mismatches))
				for _, mismatch := range mismatches {
					rows = append(rows, []string{
						shortType(mismatch.Type),
						mismatch.Path,
						mismatch.StoredID.Hex(),
						mismatch.WantID.Hex(),
					})
				}
				writeTable(out, []string{"Type", "Path", "Stored ID", "Expected ID"}, rows)
				return fmt.Errorf("%d items fail identifier verification", len(mismatches))
			})
		},
	}

	cmd.Flags().BoolVar(&fix, "fix", false, "Re-key mismatched items in place")
	cmd.Flags().StringVar(&kodiPath, "kodi-sql", "", "With --fix, write a Kodi database translation script to this file")
	cmd.Flags().BoolVar(&noVacuum, "no-vacuum", false, "Skip the vacuum after fixing")
	return cmd
}
