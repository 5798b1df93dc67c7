package environment

import (
	"fmt"
	"strings"
)

// Kind is the single verdict produced for a host.
type Kind int

const (
	Unknown Kind = iota
	VMware
	VirtualBox
	KVMQemu
	HyperV
	Xen
	OtherVM
	Nvidia
	AMD
	Intel
	GenericGPU
)

var kindTokens = map[Kind]string{
	Unknown:    "unknown",
	VMware:     "vmware",
	VirtualBox: "virtualbox",
	KVMQemu:    "kvm-qemu",
	HyperV:     "hyperv",
	Xen:        "xen",
	OtherVM:    "other-vm",
	Nvidia:     "nvidia",
	AMD:        "amd",
	Intel:      "intel",
	GenericGPU: "generic-gpu",
}

var kindLabels = map[Kind]string{
	Unknown:    "Unknown",
	VMware:     "VMware",
	VirtualBox: "VirtualBox",
	KVMQemu:    "KVM/QEMU",
	HyperV:     "Hyper-V",
	Xen:        "Xen",
	OtherVM:    "Other VM",
	Nvidia:     "NVIDIA",
	AMD:        "AMD",
	Intel:      "Intel",
	GenericGPU: "Generic GPU",
}

// Kinds lists every verdict in declaration order.
func Kinds() []Kind {
	return []Kind{Unknown, VMware, VirtualBox, KVMQemu, HyperV, Xen, OtherVM, Nvidia, AMD, Intel, GenericGPU}
}

// String returns the stable token used in catalogs and JSON output.
func (k Kind) String() string {
	if token, ok := kindTokens[k]; ok {
		return token
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Label returns a human-friendly name.
func (k Kind) Label() string {
	if label, ok := kindLabels[k]; ok {
		return label
	}
	return k.String()
}

// IsVirtual reports whether the verdict names a hypervisor.
func (k Kind) IsVirtual() bool {
	switch k {
	case VMware, VirtualBox, KVMQemu, HyperV, Xen, OtherVM:
		return true
	default:
		return false
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ParseKind is the inverse of Kind.String.
func ParseKind(token string) (Kind, error) {
	token = strings.ToLower(strings.TrimSpace(token))
	for kind, candidate := range kindTokens {
		if candidate == token {
			return kind, nil
		}
	}
	return Unknown, fmt.Errorf("unknown environment kind %q", token)
}
