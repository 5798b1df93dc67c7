package installer

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alexisbeaulieu97/gameready/internal/logger"
	"github.com/alexisbeaulieu97/gameready/internal/sysquery"
	gameerrors "github.com/alexisbeaulieu97/gameready/pkg/errors"
)

// StreamFunc runs one command with its output streamed. sysquery.Stream is the
// production implementation.
type StreamFunc func(ctx context.Context, opts sysquery.StreamOptions, argv ...string) (sysquery.Result, error)

// StepResult is the outcome of one step.
type StepResult struct {
	Step     Step          `json:"step"`
	Err      error         `json:"-"`
	Output   string        `json:"output,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Succeeded reports whether every command of the step succeeded.
func (r StepResult) Succeeded() bool {
	return r.Err == nil
}

// Summary collects step results in execution order.
type Summary struct {
	Results []StepResult `json:"results"`
	DryRun  bool         `json:"dry_run"`
}

// Failed returns the failed steps.
func (s Summary) Failed() []StepResult {
	var out []StepResult
	for _, r := range s.Results {
		if !r.Succeeded() {
			out = append(out, r)
		}
	}
	return out
}

// OK reports whether no step failed.
func (s Summary) OK() bool {
	return len(s.Failed()) == 0
}

// Backend executes steps.
type Backend struct {
	Stream  StreamFunc
	Timeout time.Duration
	DryRun  bool
	// Out receives command output, or the commands themselves in dry-run mode.
	Out io.Writer
	Log *logger.Logger
}

// NewBackend returns a Backend that streams commands to out.
func NewBackend(timeout time.Duration, dryRun bool, out io.Writer, log *logger.Logger) *Backend {
	return &Backend{Stream: sysquery.Stream, Timeout: timeout, DryRun: dryRun, Out: out, Log: log}
}

// Run executes steps in order. A failed command ends its step with an
// ExecutionError; the remaining steps still run unless ctx is done.
func (b *Backend) Run(ctx context.Context, steps []Step) Summary {
	out := b.Out
	if out == nil {
		out = os.Stdout
	}
	stream := b.Stream
	if stream == nil {
		stream = sysquery.Stream
	}

	summary := Summary{DryRun: b.DryRun}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			summary.Results = append(summary.Results, StepResult{
				Step: step,
				Err:  gameerrors.NewExecutionError(string(step.ComponentID), err),
			})
			continue
		}

		start := time.Now()
		result := StepResult{Step: step}
		log := b.Log.WithFields(map[string]any{"component": string(step.ComponentID)})
		log.Info(step.Description)

		for _, argv := range step.Commands {
			if b.DryRun {
				fmt.Fprintf(out, "[dry-run] %s\n", strings.Join(argv, " "))
				continue
			}

			res, err := stream(ctx, sysquery.StreamOptions{Timeout: b.Timeout, Stdout: out, Stderr: out}, argv...)
			result.Output = sysquery.PrimaryOutput(res)
			if err != nil {
				result.Err = gameerrors.NewExecutionError(string(step.ComponentID), err)
				log.Error(err, "step failed")
				break
			}
		}

		result.Duration = time.Since(start)
		summary.Results = append(summary.Results, result)
	}
	return summary
}
