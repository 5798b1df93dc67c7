package sysquery

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gameerrors "github.com/alexisbeaulieu97/gameready/pkg/errors"
)

func TestExecRunner_CapturesStdout(t *testing.T) {
	skipOnWindows(t)
	binDir := t.TempDir()
	writeScript(t, binDir, "systemd-detect-virt", `#!/bin/sh
echo "kvm"
exit 0
`)
	t.Setenv("PATH", binDir+":"+os.Getenv("PATH"))

	res, err := NewExecRunner(time.Second).Run(context.Background(), "systemd-detect-virt")
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.Equal(t, "kvm\n", res.Stdout)
	assert.Equal(t, []string{"kvm"}, res.Lines())
}

func TestExecRunner_NonZeroExitIsQueryError(t *testing.T) {
	skipOnWindows(t)
	binDir := t.TempDir()
	writeScript(t, binDir, "systemd-detect-virt", `#!/bin/sh
echo "none"
echo "not virtualized" >&2
exit 1
`)
	t.Setenv("PATH", binDir+":"+os.Getenv("PATH"))

	res, err := NewExecRunner(time.Second).Run(context.Background(), "systemd-detect-virt")
	require.Error(t, err)

	var queryErr *gameerrors.QueryError
	require.ErrorAs(t, err, &queryErr)
	assert.Equal(t, 1, queryErr.ExitCode)
	assert.False(t, queryErr.TimedOut)
	assert.Equal(t, 1, res.ExitCode)
	assert.Equal(t, "none\n", res.Stdout)
	assert.Equal(t, "not virtualized", res.Stderr)
}

func TestExecRunner_MissingToolIsQueryError(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	res, err := NewExecRunner(time.Second).Run(context.Background(), "glxinfo", "-B")
	require.Error(t, err)

	var queryErr *gameerrors.QueryError
	require.ErrorAs(t, err, &queryErr)
	assert.Equal(t, -1, res.ExitCode)
	assert.Equal(t, []string{"glxinfo", "-B"}, queryErr.Argv)
}

func TestExecRunner_TimeoutIsReported(t *testing.T) {
	skipOnWindows(t)
	binDir := t.TempDir()
	writeScript(t, binDir, "dmesg", `#!/bin/sh
exec sleep 5
`)
	t.Setenv("PATH", binDir+":"+os.Getenv("PATH"))

	start := time.Now()
	_, err := NewExecRunner(100*time.Millisecond).Run(context.Background(), "dmesg")
	require.Error(t, err)
	require.Less(t, time.Since(start), 4*time.Second)

	var queryErr *gameerrors.QueryError
	require.ErrorAs(t, err, &queryErr)
	assert.True(t, queryErr.TimedOut)
}

func TestExecRunner_ForcesCLocale(t *testing.T) {
	skipOnWindows(t)
	binDir := t.TempDir()
	writeScript(t, binDir, "apt-cache", `#!/bin/sh
echo "$LC_ALL"
`)
	t.Setenv("PATH", binDir+":"+os.Getenv("PATH"))

	res, err := NewExecRunner(time.Second).Run(context.Background(), "apt-cache", "policy", "steam")
	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, res.Lines())
}

func TestExecRunner_EmptyCommand(t *testing.T) {
	t.Parallel()

	_, err := NewExecRunner(0).Run(context.Background())
	require.Error(t, err)
}

func TestStream_TeesOutput(t *testing.T) {
	skipOnWindows(t)

	var stdout, stderr bytes.Buffer
	res, err := Stream(context.Background(), StreamOptions{Stdout: &stdout, Stderr: &stderr},
		"sh", "-c", "echo installing; echo warning >&2")
	require.NoError(t, err)
	assert.Equal(t, "installing", res.Stdout)
	assert.Equal(t, "warning", res.Stderr)
	assert.Equal(t, "installing\n", stdout.String())
	assert.Equal(t, "warning\n", stderr.String())
	assert.Equal(t, "warning", PrimaryOutput(res))
}

func TestStream_FailureKeepsOutput(t *testing.T) {
	skipOnWindows(t)

	var sink bytes.Buffer
	res, err := Stream(context.Background(), StreamOptions{Stdout: &sink, Stderr: &sink},
		"sh", "-c", "echo 'E: Unable to locate package' >&2; exit 100")
	require.Error(t, err)
	assert.Equal(t, 100, res.ExitCode)
	assert.Equal(t, "E: Unable to locate package", PrimaryOutput(res))
}

func TestStream_SetsNoninteractiveFrontend(t *testing.T) {
	skipOnWindows(t)

	var sink bytes.Buffer
	res, err := Stream(context.Background(), StreamOptions{Stdout: &sink, Stderr: &sink},
		"sh", "-c", "echo $DEBIAN_FRONTEND")
	require.NoError(t, err)
	assert.Equal(t, "noninteractive", res.Stdout)
}

func TestFake_ScriptsResponses(t *testing.T) {
	t.Parallel()

	fake := NewFake().
		Stdout("kvm\n", "systemd-detect-virt").
		Set(Result{ExitCode: 1, Stdout: "none\n"}, "dpkg", "-l", "steam").
		Timeout("glxinfo", "-B")

	res, err := fake.Run(context.Background(), "systemd-detect-virt")
	require.NoError(t, err)
	assert.Equal(t, "kvm\n", res.Stdout)

	res, err = fake.Run(context.Background(), "dpkg", "-l", "steam")
	require.Error(t, err)
	assert.Equal(t, 1, res.ExitCode)

	_, err = fake.Run(context.Background(), "glxinfo", "-B")
	var queryErr *gameerrors.QueryError
	require.ErrorAs(t, err, &queryErr)
	assert.True(t, queryErr.TimedOut)

	_, err = fake.Run(context.Background(), "lspci")
	require.Error(t, err)

	assert.Len(t, fake.Calls(), 4)
	assert.True(t, fake.Called("dpkg", "-l", "steam"))
	assert.False(t, fake.Called("flatpak", "list"))
}

func TestFake_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFake().Stdout("kvm", "systemd-detect-virt").Run(ctx, "systemd-detect-virt")
	require.Error(t, err)
}

func TestResultLinesSkipsBlanks(t *testing.T) {
	t.Parallel()

	res := Result{Stdout: "first\r\n\n   \nsecond  \n"}
	assert.Equal(t, []string{"first", "second"}, res.Lines())
}

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("POSIX shell assumptions do not hold on Windows")
	}
}

func writeScript(t *testing.T, dir, name, contents string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o755))
}
