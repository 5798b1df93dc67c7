// Package sysquery is the single side-effecting boundary used to ask the host
// about itself. Every query runs under an explicit timeout and reports
// failures as *errors.QueryError so callers can absorb them.
package sysquery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	gameerrors "github.com/alexisbeaulieu97/gameready/pkg/errors"
)

// DefaultTimeout bounds a single host query when the runner has none configured.
const DefaultTimeout = 5 * time.Second

// Result captures the observable outcome of a query.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// OK reports whether the command exited cleanly.
func (r Result) OK() bool {
	return r.ExitCode == 0
}

// Lines returns the non-blank stdout lines with trailing whitespace removed.
func (r Result) Lines() []string {
	raw := strings.Split(r.Stdout, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimRight(line, " \t\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// Runner executes argv and returns its output. A missing tool, a timeout or a
// non-zero exit is reported as an error together with any captured output.
type Runner interface {
	Run(ctx context.Context, argv ...string) (Result, error)
}

// ExecRunner runs host commands through os/exec.
type ExecRunner struct {
	Timeout time.Duration
	Env     []string
}

// NewExecRunner builds a runner whose queries are bounded by timeout.
func NewExecRunner(timeout time.Duration) *ExecRunner {
	return &ExecRunner{Timeout: timeout}
}

var _ Runner = (*ExecRunner)(nil)

// Run executes argv under the runner timeout. Output is forced to the C locale
// so parsers can rely on untranslated field names such as "Candidate:".
func (r *ExecRunner) Run(ctx context.Context, argv ...string) (Result, error) {
	if len(argv) == 0 {
		return Result{ExitCode: -1}, gameerrors.NewQueryError(argv, -1, false, fmt.Errorf("empty command"))
	}
	if ctx == nil {
		ctx = context.Background()
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	queryCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(queryCtx, argv[0], argv[1:]...)
	cmd.Env = r.environ()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{
		ExitCode: exitCode(cmd),
		Stdout:   stdout.String(),
		Stderr:   strings.TrimSpace(stderr.String()),
	}
	if err != nil {
		timedOut := errors.Is(queryCtx.Err(), context.DeadlineExceeded)
		return res, gameerrors.NewQueryError(argv, res.ExitCode, timedOut, err)
	}
	return res, nil
}

func (r *ExecRunner) environ() []string {
	env := os.Environ()
	env = append(env, r.Env...)
	return append(env, "LC_ALL=C")
}

func exitCode(cmd *exec.Cmd) int {
	if cmd.ProcessState == nil {
		return -1
	}
	return cmd.ProcessState.ExitCode()
}
