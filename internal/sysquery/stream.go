package sysquery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	gameerrors "github.com/alexisbeaulieu97/gameready/pkg/errors"
)

// DefaultStreamTimeout bounds a single installer command.
const DefaultStreamTimeout = 5 * time.Minute

// StreamOptions configures a streaming command run.
type StreamOptions struct {
	Timeout time.Duration
	Stdout  io.Writer
	Stderr  io.Writer
	Env     []string
}

// Stream wires the command's stdout/stderr through to the supplied writers
// while collecting the output for later inspection.
func Stream(ctx context.Context, opts StreamOptions, argv ...string) (Result, error) {
	if len(argv) == 0 {
		return Result{ExitCode: -1}, gameerrors.NewQueryError(argv, -1, false, fmt.Errorf("empty command"))
	}
	if ctx == nil {
		ctx = context.Background()
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultStreamTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdoutBuf, stderrBuf bytes.Buffer

	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	cmd.Env = append(append(os.Environ(), "DEBIAN_FRONTEND=noninteractive"), opts.Env...)
	cmd.Stdout = io.MultiWriter(stdout, &stdoutBuf)
	cmd.Stderr = io.MultiWriter(stderr, &stderrBuf)

	err := cmd.Run()
	res := Result{
		ExitCode: exitCode(cmd),
		Stdout:   strings.TrimSpace(stdoutBuf.String()),
		Stderr:   strings.TrimSpace(stderrBuf.String()),
	}
	if err != nil {
		timedOut := errors.Is(runCtx.Err(), context.DeadlineExceeded)
		return res, gameerrors.NewQueryError(argv, res.ExitCode, timedOut, err)
	}
	return res, nil
}

// PrimaryOutput returns stderr if present, otherwise stdout.
func PrimaryOutput(res Result) string {
	if res.Stderr != "" {
		return res.Stderr
	}
	return res.Stdout
}
