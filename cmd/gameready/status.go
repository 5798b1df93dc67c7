package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/gameready/internal/environment"
	"github.com/alexisbeaulieu97/gameready/internal/inspect"
	"github.com/alexisbeaulieu97/gameready/internal/ui"
)

type statusReport struct {
	Environment environment.Kind `json:"environment"`
	Rule        string           `json:"rule"`
	Components  []inspect.Report `json:"components"`
}

// inspectEnvironment classifies the host and inspects the applicable components.
func inspectEnvironment(ctx context.Context, app *AppContext) (environment.Verdict, []inspect.Report) {
	_, verdict := app.Detect(ctx)
	components := app.Catalog.ForEnvironment(verdict.Kind)
	reports := inspect.New(app.Runner, app.Log).InspectAll(ctx, components, app.Settings.Parallel)
	return verdict, reports
}

func newStatusCmd(root *rootFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show which components are installed for this environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newAppContext(cmd, root)
			if err != nil {
				return err
			}
			defer app.Close()

			verdict, reports := inspectEnvironment(cmd.Context(), app)
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(statusReport{Environment: verdict.Kind, Rule: verdict.Rule, Components: reports})
			}
			fmt.Fprint(out, ui.RenderStatus(verdict.Kind, reports))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the status in JSON format")
	return cmd
}
