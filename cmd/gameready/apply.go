package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/gameready/internal/installer"
	"github.com/alexisbeaulieu97/gameready/internal/reconcile"
	"github.com/alexisbeaulieu97/gameready/internal/ui"
)

type applyOptions struct {
	yes       bool
	no        bool
	reinstall bool
}

var (
	errNotRoot           = errors.New("apply must run as root (try sudo), or pass --dry-run")
	errReinstallNeedsYes = errors.New("--reinstall only applies together with --yes")

	requireRoot = func() error {
		if os.Geteuid() != 0 {
			return errNotRoot
		}
		return nil
	}
	interactive                                = ui.Interactive
	newHuhConfirmer func() reconcile.Confirmer = func() reconcile.Confirmer { return ui.NewHuhConfirmer() }
)

func newApplyCmd(root *rootFlags) *cobra.Command {
	opts := applyOptions{}

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Offer to install, update or reinstall each component",
		Long: `Apply detects the environment, inspects every applicable component and asks
whether to install, update or reinstall it. Confirmed actions are carried out with
apt-get and flatpak. Exits non-zero when any installer step fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd, root, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Answer yes to install and update questions")
	cmd.Flags().BoolVar(&opts.no, "no", false, "Answer no to every question")
	cmd.Flags().BoolVar(&opts.reinstall, "reinstall", false, "With --yes, also reinstall components that are up to date")
	cmd.MarkFlagsMutuallyExclusive("yes", "no")

	return cmd
}

func confirmerFor(cmd *cobra.Command, opts applyOptions) (reconcile.Confirmer, error) {
	switch {
	case opts.reinstall && !opts.yes:
		return nil, errReinstallNeedsYes
	case opts.yes:
		return ui.StaticConfirmer{Answer: true, Reinstall: opts.reinstall, Out: cmd.OutOrStdout()}, nil
	case opts.no:
		return ui.StaticConfirmer{Answer: false, Out: cmd.OutOrStdout()}, nil
	case interactive():
		return newHuhConfirmer(), nil
	default:
		return nil, ui.ErrNotInteractive
	}
}

func runApply(cmd *cobra.Command, root *rootFlags, opts applyOptions) error {
	if !root.dryRun {
		if err := requireRoot(); err != nil {
			return err
		}
	}

	confirmer, err := confirmerFor(cmd, opts)
	if err != nil {
		return err
	}

	app, err := newAppContext(cmd, root)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	verdict, reports := inspectEnvironment(ctx, app)
	fmt.Fprint(out, ui.RenderStatus(verdict.Kind, reports))

	decisions, err := reconcile.NewPlanner(confirmer, app.Log).Plan(ctx, reports)
	if err != nil {
		return err
	}

	builder := installer.NewBuilder(app.Settings.FlatpakRemote, app.Settings.FlatpakRemoteURL)
	steps := builder.Build(decisions)
	fmt.Fprint(out, ui.RenderPlan(steps))

	backend := installer.NewBackend(app.Settings.InstallTimeout, root.dryRun, out, app.Log)
	backend.Stream = streamFunc
	summary := backend.Run(ctx, steps)
	fmt.Fprintln(out, ui.RenderSummary(summary))

	if failed := summary.Failed(); len(failed) > 0 {
		return fmt.Errorf("%d of %d installer steps failed; see the log in %s", len(failed), len(summary.Results), app.Settings.LogDir)
	}
	return nil
}
