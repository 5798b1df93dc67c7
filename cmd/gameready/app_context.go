package main

import (
	"context"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/gameready/internal/catalog"
	"github.com/alexisbeaulieu97/gameready/internal/config"
	"github.com/alexisbeaulieu97/gameready/internal/environment"
	"github.com/alexisbeaulieu97/gameready/internal/evidence"
	"github.com/alexisbeaulieu97/gameready/internal/installer"
	"github.com/alexisbeaulieu97/gameready/internal/logger"
	"github.com/alexisbeaulieu97/gameready/internal/sysquery"
)

// Seams replaced in tests.
var (
	newRunner = func(timeout time.Duration) sysquery.Runner {
		return sysquery.NewExecRunner(timeout)
	}
	virtProbe  evidence.VirtProbe   = evidence.HostVirtProbe
	streamFunc installer.StreamFunc = sysquery.Stream
	now                             = time.Now
)

// AppContext bundles the services a command needs for one run.
type AppContext struct {
	Settings config.Settings
	Log      *logger.Logger
	Runner   sysquery.Runner
	Catalog  *catalog.Catalog

	logFile io.Closer
}

// newAppContext loads settings and the catalog, then opens the run log.
func newAppContext(cmd *cobra.Command, flags *rootFlags) (*AppContext, error) {
	settings, err := config.Load(flags.configPath, nil)
	if err != nil {
		return nil, err
	}
	if flags.catalogPath != "" {
		settings.CatalogPath = flags.catalogPath
	}
	if flags.verbose {
		settings.LogLevel = "debug"
	}

	app := &AppContext{Settings: settings}

	file, fileErr := logger.OpenFile(settings.LogDir, now(), settings.User)
	opts := logger.Options{Level: settings.LogLevel, HumanReadable: true, Writer: cmd.ErrOrStderr()}
	if fileErr == nil {
		opts.File = file
		app.logFile = file
	}
	log, err := logger.New(opts)
	if err != nil {
		if file != nil {
			_ = file.Close()
		}
		return nil, err
	}
	app.Log = log
	if fileErr != nil {
		log.Warn("run log disabled: " + fileErr.Error())
	}

	cat, err := catalog.LoadOrDefault(settings.CatalogPath)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Catalog = cat
	app.Runner = newRunner(settings.QueryTimeout)

	log.WithFields(map[string]any{
		"user":    settings.User,
		"log_dir": settings.LogDir,
		"catalog": cat.Version,
	}).Debug("run configured")

	return app, nil
}

// Close releases the run log.
func (a *AppContext) Close() {
	if a.logFile != nil {
		_ = a.logFile.Close()
		a.logFile = nil
	}
}

// Detect gathers evidence and classifies the environment.
func (a *AppContext) Detect(ctx context.Context) (evidence.Bundle, environment.Verdict) {
	collector := evidence.NewCollector(evidence.Options{
		Runner:        a.Runner,
		Logger:        a.Log,
		VirtProbe:     virtProbe,
		ScanKernelLog: a.Settings.ScanKernelLog,
	})
	bundle := collector.Collect(ctx)
	verdict := environment.Explain(bundle)

	a.Log.WithFields(map[string]any{
		"kind": verdict.Kind.String(),
		"rule": verdict.Rule,
	}).Info("environment classified")

	return bundle, verdict
}
