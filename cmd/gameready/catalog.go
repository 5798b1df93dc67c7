package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/gameready/internal/catalog"
	"github.com/alexisbeaulieu97/gameready/internal/ui"
	"github.com/alexisbeaulieu97/gameready/pkg/diff"
	gameerrors "github.com/alexisbeaulieu97/gameready/pkg/errors"
)

var errDiffNeedsCatalog = errors.New("--diff needs --catalog <file>")

func newCatalogCmd(root *rootFlags) *cobra.Command {
	var showDiff bool

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the components gameready knows about",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			cat, err := catalog.LoadOrDefault(root.catalogPath)
			if err != nil {
				return err
			}
			if !showDiff {
				fmt.Fprint(out, ui.RenderCatalog(cat))
				return nil
			}

			if root.catalogPath == "" {
				return errDiffNeedsCatalog
			}
			custom, err := os.ReadFile(root.catalogPath)
			if err != nil {
				return gameerrors.NewParseError(root.catalogPath, 0, err)
			}
			rendered := diff.Unified(catalog.DefaultYAML(), custom, catalog.DefaultSource, root.catalogPath)
			if !diff.Changed(rendered) {
				fmt.Fprintln(out, "catalog matches the built-in catalog")
				return nil
			}
			fmt.Fprint(out, rendered)
			return nil
		},
	}

	cmd.Flags().BoolVar(&showDiff, "diff", false, "Show how --catalog differs from the built-in catalog")
	return cmd
}
