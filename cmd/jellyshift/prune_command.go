package main

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"jellyshift/internal/config"
	"jellyshift/internal/library"
	"jellyshift/internal/prune"
)

func newPruneCommand(ctx *commandContext) *cobra.Command {
	var class string
	var keepFolders bool
	var noVacuum bool

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete all library items of a media class and their metadata",
		Long: `Delete every library row of a media class (for example all audio
entries), the virtual folders that exist only to contain them, and the
metadata folders keyed by the deleted identifiers.

Known classes: ` + strings.Join(prune.Classes(), ", ") + `.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd, func(cfg *config.Config, store *library.Store, logger *slog.Logger) error {
				result, err := prune.New(cfg, store, logger).Run(cmd.Context(), class, prune.Options{
					KeepFolders: keepFolders,
					Vacuum:      !noVacuum,
				})
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				typeNames := make([]string, 0, len(result.ItemsDeleted))
				for typeName := range result.ItemsDeleted {
					typeNames = append(typeNames, typeName)
				}
				sort.Strings(typeNames)
				for _, typeName := range typeNames {
					fmt.Fprintf(out, "Removed %d %s items\n", result.ItemsDeleted[typeName], shortType(typeName))
				}
				fmt.Fprintf(out, "Removed %d items total, %d metadata folders\n",
					result.Total(), result.FoldersRemoved)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&class, "class", "audio", "Media class to prune")
	cmd.Flags().BoolVar(&keepFolders, "keep-folders", false, "Leave metadata folders of deleted items on disk")
	cmd.Flags().BoolVar(&noVacuum, "no-vacuum", false, "Skip the vacuum after a successful run")
	return cmd
}
