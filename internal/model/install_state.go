package model

// Version is an opaque version token. Versions are only ever compared for
// equality; the empty string means unknown.
type Version string

// Known reports whether the version was obtained.
func (v Version) Known() bool {
	return v != ""
}

// InstallState describes where, and at which version, a component is installed.
// It is derived fresh for each inspection.
type InstallState struct {
	Present          bool       `json:"present"`
	Channel          ChannelRef `json:"channel"`
	InstalledVersion Version    `json:"installed_version,omitempty"`
	AvailableVersion Version    `json:"available_version,omitempty"`
}

// Absent returns the state of a component found in no channel.
func Absent() InstallState {
	return InstallState{}
}

// Consistent checks the state invariants: a present component names its
// channel, and an absent one carries neither channel nor installed version.
func (s InstallState) Consistent() bool {
	if s.Present {
		return !s.Channel.IsZero()
	}
	return s.Channel.IsZero() && !s.InstalledVersion.Known()
}

// Stale reports whether a newer version than the installed one is offered.
func (s InstallState) Stale() bool {
	return s.Present &&
		s.InstalledVersion.Known() &&
		s.AvailableVersion.Known() &&
		s.InstalledVersion != s.AvailableVersion
}
