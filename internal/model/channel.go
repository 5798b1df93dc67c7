package model

import "fmt"

// ComponentID names a catalog entry, e.g. "steam" or "wine-staging".
type ComponentID string

// ChannelKind tags a ChannelRef.
type ChannelKind int

const (
	// ChannelNone marks an absent channel.
	ChannelNone ChannelKind = iota
	// ChannelPackage is the OS package manager (dpkg/apt).
	ChannelPackage
	// ChannelApp is the sandboxed application distributor (Flatpak).
	ChannelApp
)

// String returns the channel kind token.
func (k ChannelKind) String() string {
	switch k {
	case ChannelPackage:
		return "package"
	case ChannelApp:
		return "app"
	default:
		return "none"
	}
}

// ChannelRef points at a component inside one distribution channel: a package
// name for ChannelPackage, an application id for ChannelApp.
type ChannelRef struct {
	Kind ChannelKind `json:"kind"`
	Name string      `json:"name,omitempty"`
}

// PackageChannel references an OS package.
func PackageChannel(name string) ChannelRef {
	return ChannelRef{Kind: ChannelPackage, Name: name}
}

// AppChannel references a sandboxed application.
func AppChannel(appID string) ChannelRef {
	return ChannelRef{Kind: ChannelApp, Name: appID}
}

// IsZero reports whether the reference is absent.
func (c ChannelRef) IsZero() bool {
	return c.Kind == ChannelNone
}

func (c ChannelRef) String() string {
	if c.IsZero() {
		return "none"
	}
	return fmt.Sprintf("%s:%s", c.Kind, c.Name)
}

// MarshalText implements encoding.TextMarshaler for the kind token.
func (k ChannelKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}
