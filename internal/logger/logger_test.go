package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type logEntry map[string]any

func TestLoggerInfoWithFields(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log, err := New(Options{Level: "info", HumanReadable: false, Writer: buf})
	require.NoError(t, err)

	log = log.WithFields(map[string]any{"component": "steam", "channel": "package"})
	log.Info("inspecting component")

	var entry logEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "inspecting component", entry["message"])
	require.Equal(t, "steam", entry["component"])
	require.Equal(t, "package", entry["channel"])
	require.Equal(t, "info", entry["level"])
}

func TestLoggerDebugRespectsLevel(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log, err := New(Options{Level: "info", HumanReadable: false, Writer: buf})
	require.NoError(t, err)

	log.Debug("this should not appear")
	require.Equal(t, "", strings.TrimSpace(buf.String()))
}

func TestLoggerErrorIncludesContext(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log, err := New(Options{Level: "debug", HumanReadable: false, Writer: buf})
	require.NoError(t, err)

	log = log.WithFields(map[string]any{"component": "wine-staging"})
	log.Error(errors.New("boom"), "install failed")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry logEntry
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	require.Equal(t, "install failed", entry["message"])
	require.Equal(t, "wine-staging", entry["component"])
	require.Equal(t, "boom", entry["error"])
}

func TestLoggerRejectsUnknownLevel(t *testing.T) {
	t.Parallel()

	_, err := New(Options{Level: "chatty"})
	require.Error(t, err)
}

func TestLoggerMirrorsEntriesToFile(t *testing.T) {
	t.Parallel()

	console := &bytes.Buffer{}
	file := &bytes.Buffer{}
	log, err := New(Options{Level: "info", HumanReadable: true, Writer: console, File: file})
	require.NoError(t, err)

	log.Warn("dmesg unavailable")

	require.Contains(t, console.String(), "dmesg unavailable")

	var entry logEntry
	require.NoError(t, json.Unmarshal(file.Bytes(), &entry))
	require.Equal(t, "warn", entry["level"])
	require.Equal(t, "dmesg unavailable", entry["message"])
}

func TestNilAndNopLoggersAreSafe(t *testing.T) {
	t.Parallel()

	var nilLogger *Logger
	require.NotPanics(t, func() {
		nilLogger.Info("ignored")
		nilLogger.Error(errors.New("ignored"), "ignored")
		require.Nil(t, nilLogger.WithFields(map[string]any{"a": 1}))
	})

	require.NotPanics(t, func() {
		Nop().WithFields(map[string]any{"a": 1}).Warn("ignored")
	})
}

func TestOpenFileCreatesTimestampedLog(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "logs")
	ts := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	f, err := OpenFile(dir, ts, "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	require.Equal(t, filepath.Join(dir, "gameready_20260304_050607.log"), f.Name())
	_, err = os.Stat(f.Name())
	require.NoError(t, err)

	_, err = OpenFile("  ", ts, "")
	require.Error(t, err)
}

type chownCall struct {
	path     string
	uid, gid int
}

func recordChown(t *testing.T) *[]chownCall {
	t.Helper()
	var calls []chownCall
	orig := chown
	t.Cleanup(func() { chown = orig })
	chown = func(path string, uid, gid int) error {
		calls = append(calls, chownCall{path, uid, gid})
		return nil
	}
	return &calls
}

func TestOpenFileHandsLogToOwner(t *testing.T) {
	account, err := user.Lookup("nobody")
	if err != nil {
		t.Skip("no nobody account")
	}
	uid, _ := strconv.Atoi(account.Uid)
	gid, _ := strconv.Atoi(account.Gid)
	if uid == os.Geteuid() {
		t.Skip("running as nobody")
	}
	calls := recordChown(t)
	ts := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	dir := filepath.Join(t.TempDir(), "logs")
	f, err := OpenFile(dir, ts, "nobody")
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	require.Equal(t, []chownCall{{dir, uid, gid}, {f.Name(), uid, gid}}, *calls)

	*calls = nil
	existing := t.TempDir()
	g, err := OpenFile(existing, ts, "nobody")
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Close() })
	require.Equal(t, []chownCall{{g.Name(), uid, gid}}, *calls, "a directory that already existed keeps its owner")
}

func TestOpenFileSkipsCurrentOrUnknownOwner(t *testing.T) {
	calls := recordChown(t)
	ts := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	f, err := OpenFile(t.TempDir(), ts, "gameready-no-such-account")
	require.NoError(t, err)
	_ = f.Close()

	current, err := user.Current()
	if err == nil && current.Gid == strconv.Itoa(os.Getegid()) {
		g, err := OpenFile(t.TempDir(), ts, current.Username)
		require.NoError(t, err)
		_ = g.Close()
	}
	require.Empty(t, *calls)
}

func TestOpenFileFailsWhenHandOverFails(t *testing.T) {
	account, err := user.Lookup("nobody")
	if err != nil || account.Uid == strconv.Itoa(os.Geteuid()) {
		t.Skip("no separate nobody account")
	}
	orig := chown
	t.Cleanup(func() { chown = orig })
	chown = func(string, int, int) error { return os.ErrPermission }

	_, err = OpenFile(t.TempDir(), time.Now(), "nobody")
	require.ErrorIs(t, err, os.ErrPermission)
}
