// Package inspect determines whether a component is installed, through which
// channel, and at which versions. Every query failure degrades to "absent" or
// "unknown version"; inspection itself never fails.
package inspect

import (
	"context"
	"strings"

	"github.com/alexisbeaulieu97/gameready/internal/logger"
	"github.com/alexisbeaulieu97/gameready/internal/model"
	"github.com/alexisbeaulieu97/gameready/internal/sysquery"
)

const (
	noCandidate  = "(none)"
	candidateKey = "Candidate:"
	versionKey   = "Version:"
)

// walkState is a position in the channel walk.
type walkState int

const (
	stateUnchecked walkState = iota
	statePackageChecked
	stateAppChecked
	statePresent
	stateAbsent
)

func (s walkState) String() string {
	switch s {
	case stateUnchecked:
		return "unchecked"
	case statePackageChecked:
		return "package-checked"
	case stateAppChecked:
		return "app-checked"
	case statePresent:
		return "present"
	default:
		return "absent"
	}
}

// Inspector queries the package manager and the app distributor.
type Inspector struct {
	runner sysquery.Runner
	log    *logger.Logger
}

// New builds an Inspector. A nil runner uses the host with the default query
// timeout.
func New(runner sysquery.Runner, log *logger.Logger) *Inspector {
	if runner == nil {
		runner = sysquery.NewExecRunner(sysquery.DefaultTimeout)
	}
	return &Inspector{runner: runner, log: log}
}

// Inspect walks the component's channels: every package channel in
// declaration order first, then app channels only when no package is present.
// The first present channel wins.
func (i *Inspector) Inspect(ctx context.Context, id model.ComponentID, channels []model.ChannelRef) model.InstallState {
	state := stateUnchecked
	result := model.Absent()

	for state != statePresent && state != stateAbsent {
		switch state {
		case stateUnchecked:
			if found, ok := i.firstPresent(ctx, channels, model.ChannelPackage); ok {
				result = found
				state = statePresent
				continue
			}
			state = statePackageChecked
		case statePackageChecked:
			if found, ok := i.firstPresent(ctx, channels, model.ChannelApp); ok {
				result = found
				state = statePresent
				continue
			}
			state = stateAppChecked
		case stateAppChecked:
			state = stateAbsent
		}
	}

	i.log.WithFields(map[string]any{
		"component": string(id),
		"state":     state.String(),
		"channel":   result.Channel.String(),
		"installed": string(result.InstalledVersion),
		"available": string(result.AvailableVersion),
	}).Debug("component inspected")

	return result
}

func (i *Inspector) firstPresent(ctx context.Context, channels []model.ChannelRef, kind model.ChannelKind) (model.InstallState, bool) {
	for _, ref := range channels {
		if ref.Kind != kind || ref.Name == "" {
			continue
		}
		switch kind {
		case model.ChannelPackage:
			if i.packageInstalled(ctx, ref.Name) {
				return model.InstallState{
					Present:          true,
					Channel:          ref,
					InstalledVersion: i.packageVersion(ctx, ref.Name),
					AvailableVersion: i.candidateVersion(ctx, ref.Name),
				}, true
			}
		case model.ChannelApp:
			if i.appInstalled(ctx, ref.Name) {
				return model.InstallState{
					Present:          true,
					Channel:          ref,
					InstalledVersion: i.appVersion(ctx, ref.Name),
				}, true
			}
		}
	}
	return model.InstallState{}, false
}

// query runs argv and reports its stdout, or false when the query failed for
// any reason.
func (i *Inspector) query(ctx context.Context, argv ...string) (sysquery.Result, bool) {
	res, err := i.runner.Run(ctx, argv...)
	if err != nil {
		i.log.WithFields(map[string]any{
			"command": strings.Join(argv, " "),
			"error":   err.Error(),
		}).Debug("channel query failed")
		return res, false
	}
	return res, true
}

// packageInstalled requires a row naming the package, with or without an
// architecture qualifier, whose status flag (the second character of the
// state column) is "i". The first character is the selection state, so held
// packages ("hi") count as installed.
func (i *Inspector) packageInstalled(ctx context.Context, name string) bool {
	res, ok := i.query(ctx, "dpkg", "-l", name)
	if !ok {
		return false
	}
	for _, line := range res.Lines() {
		fields := strings.Fields(line)
		if len(fields) < 2 || !installedStatus(fields[0]) {
			continue
		}
		if matchesPackage(fields[1], name) {
			return true
		}
	}
	return false
}

func installedStatus(state string) bool {
	return len(state) >= 2 && state[1] == 'i'
}

func matchesPackage(field, name string) bool {
	if field == name {
		return true
	}
	base, _, qualified := strings.Cut(field, ":")
	if !qualified {
		return false
	}
	// "libgamemode0:i386" may be asked for by its qualified name.
	if strings.Contains(name, ":") {
		return false
	}
	return base == name
}

func (i *Inspector) packageVersion(ctx context.Context, name string) model.Version {
	res, ok := i.query(ctx, "dpkg-query", "-W", "-f=${Version}", name)
	if !ok {
		return ""
	}
	return model.Version(strings.TrimSpace(res.Stdout))
}

func (i *Inspector) candidateVersion(ctx context.Context, name string) model.Version {
	res, ok := i.query(ctx, "apt-cache", "policy", name)
	if !ok {
		return ""
	}
	value := fieldValue(res.Lines(), candidateKey)
	if value == noCandidate {
		return ""
	}
	return model.Version(value)
}

func (i *Inspector) appInstalled(ctx context.Context, appID string) bool {
	res, ok := i.query(ctx, "flatpak", "list", "--app", "--columns=application")
	if !ok {
		return false
	}
	for _, line := range res.Lines() {
		if strings.TrimSpace(line) == appID {
			return true
		}
	}
	return false
}

func (i *Inspector) appVersion(ctx context.Context, appID string) model.Version {
	res, ok := i.query(ctx, "flatpak", "info", appID)
	if !ok {
		return ""
	}
	return model.Version(fieldValue(res.Lines(), versionKey))
}

// fieldValue returns the trimmed text after the first "key" line. Values may
// themselves contain colons, e.g. Debian epochs.
func fieldValue(lines []string, key string) string {
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if value, ok := strings.CutPrefix(trimmed, key); ok {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
