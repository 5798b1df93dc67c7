package evidence

import "encoding/json"

// Bundle is an immutable snapshot of the raw signals gathered from the host.
// Empty strings mean the signal was unavailable.
type Bundle struct {
	hypervisorHint string
	pciLines       []string
	glRenderer     string
}

// NewBundle copies its inputs so later mutation of the caller's slice cannot
// leak into the snapshot.
func NewBundle(hypervisorHint string, pciLines []string, glRenderer string) Bundle {
	return Bundle{
		hypervisorHint: hypervisorHint,
		pciLines:       append([]string(nil), pciLines...),
		glRenderer:     glRenderer,
	}
}

// HypervisorHint returns the hypervisor name reported by the host, if any.
func (b Bundle) HypervisorHint() string {
	return b.hypervisorHint
}

// PCILines returns a copy of every PCI device line, in listing order.
func (b Bundle) PCILines() []string {
	return append([]string(nil), b.pciLines...)
}

// GLRenderer returns the OpenGL renderer string, if any.
func (b Bundle) GLRenderer() string {
	return b.glRenderer
}

type bundleJSON struct {
	HypervisorHint string   `json:"hypervisor_hint,omitempty"`
	PCILines       []string `json:"pci_lines"`
	GLRenderer     string   `json:"gl_renderer,omitempty"`
}

// MarshalJSON renders the bundle for machine-readable output.
func (b Bundle) MarshalJSON() ([]byte, error) {
	lines := b.pciLines
	if lines == nil {
		lines = []string{}
	}
	return json.Marshal(bundleJSON{
		HypervisorHint: b.hypervisorHint,
		PCILines:       lines,
		GLRenderer:     b.glRenderer,
	})
}
