package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/gameready/internal/environment"
	"github.com/alexisbeaulieu97/gameready/internal/evidence"
	"github.com/alexisbeaulieu97/gameready/internal/ui"
)

type detectReport struct {
	environment.Verdict
	Bundle evidence.Bundle `json:"bundle"`
}

func newDetectCmd(root *rootFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Classify the virtualization and graphics environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newAppContext(cmd, root)
			if err != nil {
				return err
			}
			defer app.Close()

			bundle, verdict := app.Detect(cmd.Context())
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(detectReport{Verdict: verdict, Bundle: bundle})
			}
			fmt.Fprint(out, ui.RenderVerdict(bundle, verdict))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the verdict in JSON format")
	return cmd
}
