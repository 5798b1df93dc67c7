// Package installer turns reconciliation decisions into package-manager and
// Flatpak commands and runs them.
package installer

import (
	"strings"

	"github.com/alexisbeaulieu97/gameready/internal/catalog"
	"github.com/alexisbeaulieu97/gameready/internal/model"
	"github.com/alexisbeaulieu97/gameready/internal/reconcile"
)

// Prerequisite step ids. They run before any component step, in this order.
const (
	// ArchitectureStepID enables i386 packages for ":i386" extras.
	ArchitectureStepID model.ComponentID = "i386-architecture"
	// RefreshStepID refreshes the package lists.
	RefreshStepID model.ComponentID = "package-lists"
	// RemoteStepID installs Flatpak and registers its remote.
	RemoteStepID model.ComponentID = "flatpak-remote"
)

const foreignArch = "i386"

// Step is the ordered command list for one component.
type Step struct {
	ComponentID model.ComponentID `json:"component"`
	Description string            `json:"description"`
	Commands    [][]string        `json:"commands"`
}

// Builder renders commands against a Flatpak remote.
type Builder struct {
	Remote    string
	RemoteURL string
}

// NewBuilder returns a Builder for the named remote.
func NewBuilder(remote, remoteURL string) Builder {
	return Builder{Remote: remote, RemoteURL: remoteURL}
}

// Channel picks the channel an action applies to: the one the component was
// found in, otherwise its first declared channel.
func Channel(component catalog.Component, state model.InstallState) model.ChannelRef {
	if state.Present && !state.Channel.IsZero() {
		return state.Channel
	}
	if refs := component.Channels(); len(refs) > 0 {
		return refs[0]
	}
	return model.ChannelRef{}
}

// Commands returns the commands carrying out action for component.
func (b Builder) Commands(component catalog.Component, state model.InstallState, action reconcile.Action) [][]string {
	channel := Channel(component, state)
	switch channel.Kind {
	case model.ChannelPackage:
		return [][]string{packageCommand(channel.Name, component, action)}
	case model.ChannelApp:
		if argv := b.appCommand(channel.Name, action); argv != nil {
			return [][]string{argv}
		}
	}
	return nil
}

func packageCommand(name string, component catalog.Component, action reconcile.Action) []string {
	switch action.Kind {
	case reconcile.Install:
		argv := []string{"apt-get", "install", "-y", name}
		if name == component.Package {
			argv = append(argv, component.Extras...)
		}
		return argv
	case reconcile.Update:
		return []string{"apt-get", "install", "-y", "--only-upgrade", name}
	case reconcile.Reinstall:
		return []string{"apt-get", "install", "-y", "--reinstall", name}
	default:
		return nil
	}
}

func (b Builder) appCommand(appID string, action reconcile.Action) []string {
	switch action.Kind {
	case reconcile.Install:
		return []string{"flatpak", "install", "-y", b.Remote, appID}
	case reconcile.Update:
		return []string{"flatpak", "update", "-y", appID}
	case reconcile.Reinstall:
		return []string{"flatpak", "install", "-y", "--reinstall", b.Remote, appID}
	default:
		return nil
	}
}

// Build converts decisions into steps in decision order. Skipped decisions
// produce no step. Prerequisites come first: enabling i386 when a command
// names an ":i386" package, then refreshing the package lists, then installing
// Flatpak and registering the remote when any step uses it.
func (b Builder) Build(decisions []reconcile.Decision) []Step {
	var steps []Step
	needsRemote := false
	needsArch := false

	for _, d := range decisions {
		if d.Action.IsSkip() {
			continue
		}
		commands := b.Commands(d.Component, d.State, d.Action)
		if len(commands) == 0 {
			continue
		}
		if Channel(d.Component, d.State).Kind == model.ChannelApp {
			needsRemote = true
		}
		if namesForeignArch(commands) {
			needsArch = true
		}
		steps = append(steps, Step{
			ComponentID: d.Component.ID,
			Description: describe(d),
			Commands:    commands,
		})
	}
	if len(steps) == 0 {
		return nil
	}

	var prereqs []Step
	if needsArch {
		prereqs = append(prereqs, Step{
			ComponentID: ArchitectureStepID,
			Description: "Enable " + foreignArch + " packages",
			Commands:    [][]string{{"dpkg", "--add-architecture", foreignArch}},
		})
	}
	prereqs = append(prereqs, Step{
		ComponentID: RefreshStepID,
		Description: "Refresh package lists",
		Commands:    [][]string{{"apt-get", "update"}},
	})
	if needsRemote {
		prereqs = append(prereqs, Step{
			ComponentID: RemoteStepID,
			Description: "Set up Flatpak remote " + b.Remote,
			Commands: [][]string{
				{"apt-get", "install", "-y", "flatpak"},
				{"flatpak", "remote-add", "--if-not-exists", b.Remote, b.RemoteURL},
			},
		})
	}
	return append(prereqs, steps...)
}

func namesForeignArch(commands [][]string) bool {
	for _, argv := range commands {
		for _, arg := range argv {
			if strings.HasSuffix(arg, ":"+foreignArch) {
				return true
			}
		}
	}
	return false
}

func describe(d reconcile.Decision) string {
	name := d.Component.Name
	if name == "" {
		name = string(d.Component.ID)
	}
	switch d.Action.Kind {
	case reconcile.Update:
		return "Update " + name + " (" + string(d.Action.From) + " → " + string(d.Action.To) + ")"
	case reconcile.Reinstall:
		return "Reinstall " + name
	default:
		return "Install " + name
	}
}
