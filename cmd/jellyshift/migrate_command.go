package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"jellyshift/internal/config"
	"jellyshift/internal/kodi"
	"jellyshift/internal/library"
	"jellyshift/internal/migrate"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	var kodiPath string
	var dryRun bool
	var skipMetadata bool
	var noVacuum bool

	cmd := &cobra.Command{
		Use:   "migrate OLD_ROOT NEW_ROOT",
		Short: "Rewrite paths and recompute identifiers for a moved media root",
		Long: `Rewrite every database reference to media under OLD_ROOT so it points
at NEW_ROOT, recompute the deterministic item identifiers for the new
locations, and rename the identifier-keyed metadata folders to match.

Both roots are paths as the Jellyfin server sees them. The run is
one-shot and fail-fast: the first error aborts with the database left
at the last fully migrated item.

Examples:
  jellyshift migrate /media/old /media/new
  jellyshift migrate --kodi-sql kodi.sql /mnt/a /mnt/b
  jellyshift migrate --dry-run /media/old /media/new`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd, func(cfg *config.Config, store *library.Store, logger *slog.Logger) error {
				m := migrate.New(cfg, store, logger)
				plan, err := m.Plan(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}

				if path := strings.TrimSpace(kodiPath); path != "" {
					if err := writeKodiScript(path, plan); err != nil {
						return err
					}
				}

				out := cmd.OutOrStdout()
				if dryRun {
					fmt.Fprintf(out, "Would migrate %d items (%d already current)\n",
						len(plan.Changes), plan.Unchanged)
					return nil
				}

				result, err := m.Apply(cmd.Context(), plan, migrate.Options{
					SkipMetadata: skipMetadata,
					Vacuum:       !noVacuum,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Migrated %d items, moved %d metadata folders, rewrote %d collection files\n",
					result.ItemsMigrated, result.FoldersMoved, result.CollectionFiles)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&kodiPath, "kodi-sql", "", "Write a Kodi database translation script to this file")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Compute the plan without touching the database or filesystem")
	cmd.Flags().BoolVar(&skipMetadata, "skip-metadata", false, "Leave metadata folders in place")
	cmd.Flags().BoolVar(&noVacuum, "no-vacuum", false, "Skip the vacuum after a successful run")
	return cmd
}

func writeKodiScript(path string, plan *migrate.Plan) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create kodi script: %w", err)
	}
	if err := kodi.WriteScript(file, plan.Mapping()); err != nil {
		file.Close()
		return fmt.Errorf("write kodi script: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close kodi script: %w", err)
	}
	return nil
}
