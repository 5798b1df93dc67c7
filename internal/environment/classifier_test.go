package environment

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/gameready/internal/evidence"
)

const (
	nvidiaVGA   = "01:00.0 VGA compatible controller: NVIDIA Corporation GA104 [GeForce RTX 3070] (rev a1)"
	nvidia3D    = "01:00.0 3D controller: NVIDIA Corporation TU117M [GeForce GTX 1650 Mobile] (rev a1)"
	amdVGA      = "03:00.0 VGA compatible controller: Advanced Micro Devices, Inc. [AMD/ATI] Navi 21 [Radeon RX 6800/6800 XT / 6900 XT] (rev c1)"
	intelUHD    = "00:02.0 VGA compatible controller: Intel Corporation UHD Graphics"
	intelHD     = "00:02.0 VGA compatible controller: Intel Corporation HD Graphics 620 (rev 02)"
	intelBridge = "00:00.0 Host bridge: Intel Corporation 8th Gen Core Processor Host Bridge/DRAM Registers (rev 07)"
	intelNIC    = "00:1f.6 Ethernet controller: Intel Corporation Ethernet Connection (7) I219-V (rev 10)"
	qxlVGA      = "00:02.0 VGA compatible controller: Red Hat, Inc. QXL paravirtual graphic card (rev 05)"
	vmwareVGA   = "00:0f.0 VGA compatible controller: VMware SVGA II Adapter"
	matroxVGA   = "0b:00.0 VGA compatible controller: Matrox Electronics Systems Ltd. MGA G200eR2 (rev 01)"
	aspeedVGA   = "03:00.0 Display controller: ASPEED Technology, Inc. ASPEED Graphics Family (rev 41)"
)

func TestClassify_EndToEndScenarios(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		bundle evidence.Bundle
		want   Kind
	}{
		{"kvm hint", evidence.NewBundle("kvm", nil, ""), KVMQemu},
		{"nvidia vga line", evidence.NewBundle("", []string{"00:02.0 VGA compatible controller: NVIDIA Corporation ..."}, ""), Nvidia},
		{"intel uhd line", evidence.NewBundle("", []string{intelUHD}, ""), Intel},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Classify(tt.bundle))
		})
	}
}

func TestClassify_HypervisorTable(t *testing.T) {
	t.Parallel()

	tests := map[string]Kind{
		"vmware":     VMware,
		"VMware":     VMware,
		"kvm":        KVMQemu,
		"qemu":       KVMQemu,
		"KVM":        KVMQemu,
		"virtualbox": VirtualBox,
		"oracle":     VirtualBox,
		"vbox":       VirtualBox,
		"microsoft":  HyperV,
		"xen":        Xen,
		"bochs":      OtherVM,
		"parallels":  OtherVM,
		"docker":     OtherVM,
		"vm":         OtherVM,
	}

	for hint, want := range tests {
		assert.Equal(t, want, Classify(evidence.NewBundle(hint, nil, "")), "hint %q", hint)
	}
}

func TestClassify_HypervisorOutranksHardware(t *testing.T) {
	t.Parallel()

	bundle := evidence.NewBundle("vmware", []string{nvidiaVGA, amdVGA}, "NVIDIA GeForce RTX 3070/PCIe/SSE2")
	verdict := Explain(bundle)

	assert.Equal(t, VMware, verdict.Kind)
	assert.Equal(t, "hypervisor", verdict.Rule)
}

func TestClassify_NoneHintIsIgnored(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Nvidia, Classify(evidence.NewBundle("none", []string{nvidiaVGA}, "")))
	assert.Equal(t, Nvidia, Classify(evidence.NewBundle("  None\n", []string{nvidiaVGA}, "")))
	assert.Equal(t, Unknown, Classify(evidence.NewBundle("none", nil, "")))
}

func TestClassify_VirtualAdapterWithoutHint(t *testing.T) {
	t.Parallel()

	verdict := Explain(evidence.NewBundle("", []string{qxlVGA}, ""))
	assert.Equal(t, GenericGPU, verdict.Kind)
	assert.Equal(t, "virtual-adapter", verdict.Rule)

	assert.Equal(t, GenericGPU, Classify(evidence.NewBundle("", []string{vmwareVGA}, "")))
	assert.Equal(t, GenericGPU, Classify(evidence.NewBundle("", nil, "SVGA3D; build: RELEASE;  LLVM;")))
	assert.Equal(t, GenericGPU, Classify(evidence.NewBundle("", nil, "virgl (Virtio-GPU)")))
}

func TestClassify_VirtualMarkersOutrankVendors(t *testing.T) {
	t.Parallel()

	// A virtio GPU backed by an NVIDIA host card still reads as virtual.
	bundle := evidence.NewBundle("", []string{"00:02.0 VGA compatible controller: Red Hat, Inc. Virtio GPU (rev 01)"}, "virgl (NVIDIA GeForce RTX 3070)")
	assert.Equal(t, GenericGPU, Classify(bundle))
}

func TestClassify_VendorRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		lines    []string
		renderer string
		want     Kind
		rule     string
	}{
		{"nvidia 3d controller", []string{nvidia3D}, "", Nvidia, "nvidia"},
		{"nvidia beats intel on hybrid laptops", []string{intelUHD, nvidia3D}, "", Nvidia, "nvidia"},
		{"amd vga", []string{amdVGA}, "", AMD, "amd"},
		{"amd renderer only", nil, "AMD Radeon RX 6800 (radeonsi, navi21, LLVM 15.0.7)", AMD, "amd"},
		{"intel uhd", []string{intelUHD}, "", Intel, "intel"},
		{"intel hd", []string{intelHD}, "", Intel, "intel"},
		{"intel arc", []string{"03:00.0 VGA compatible controller: Intel Corporation DG2 [Arc A770] (rev 08)"}, "", Intel, "intel"},
		{"intel renderer", nil, "Mesa Intel(R) Iris(R) Xe Graphics (TGL GT2)", Intel, "intel"},
		{"unknown vendor", []string{matroxVGA}, "", GenericGPU, "display-present"},
		{"display controller class", []string{aspeedVGA}, "", GenericGPU, "display-present"},
		{"llvmpipe with no adapters", nil, "llvmpipe (LLVM 15.0.7, 256 bits)", Unknown, FallbackRule},
		{"nothing at all", nil, "", Unknown, FallbackRule},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			verdict := Explain(evidence.NewBundle("", tt.lines, tt.renderer))
			assert.Equal(t, tt.want, verdict.Kind)
			assert.Equal(t, tt.rule, verdict.Rule)
		})
	}
}

func TestClassify_NonDisplayIntelLinesAreIgnored(t *testing.T) {
	t.Parallel()

	bundle := evidence.NewBundle("", []string{intelBridge, intelNIC, "00:1f.3 Audio device: Intel Corporation Cannon Lake PCH cAVS (rev 10)"}, "")
	assert.NotEqual(t, Intel, Classify(bundle))
	assert.Equal(t, Unknown, Classify(bundle))
}

func TestClassify_CommonWordsDoNotLookLikeAMD(t *testing.T) {
	t.Parallel()

	// "compatible" and "Corporation" both contain "ati".
	assert.Equal(t, GenericGPU, Classify(evidence.NewBundle("", []string{"00:02.0 VGA compatible controller: Foo Corporation Unknown Device"}, "")))
}

func TestClassify_PCIAddressDoesNotActAsClass(t *testing.T) {
	t.Parallel()

	bundle := evidence.NewBundle("", []string{"3d:00.0 Ethernet controller: Intel Corporation Ethernet Controller X710 with HD support"}, "")
	assert.Equal(t, Unknown, Classify(bundle))
}

func TestClassify_IsTotal(t *testing.T) {
	t.Parallel()

	inputs := []evidence.Bundle{
		{},
		evidence.NewBundle("", []string{""}, ""),
		evidence.NewBundle("   ", []string{"garbage", ":", "::: ..."}, "   "),
		evidence.NewBundle("\x00", []string{"\xff\xfe"}, "\x00"),
	}
	for _, b := range inputs {
		require.NotPanics(t, func() {
			kind := Classify(b)
			assert.Contains(t, Kinds(), kind)
		})
	}
}

func TestClassifier_CustomRules(t *testing.T) {
	t.Parallel()

	always := Rule{Name: "always-xen", Match: func(Evidence) (Kind, bool) { return Xen, true }}
	c := NewClassifier(Rule{Name: "nil"}, always)

	verdict := c.Explain(evidence.NewBundle("", nil, ""))
	assert.Equal(t, Xen, verdict.Kind)
	assert.Equal(t, "always-xen", verdict.Rule)
}

func TestDefaultRules_Order(t *testing.T) {
	t.Parallel()

	var names []string
	for _, rule := range DefaultRules() {
		names = append(names, rule.Name)
	}
	assert.Equal(t, []string{"hypervisor", "virtual-adapter", "nvidia", "amd", "intel", "display-present"}, names)
}

func TestIsDisplayAdapterLine(t *testing.T) {
	t.Parallel()

	assert.True(t, IsDisplayAdapterLine(nvidiaVGA))
	assert.True(t, IsDisplayAdapterLine(nvidia3D))
	assert.True(t, IsDisplayAdapterLine(aspeedVGA))
	assert.True(t, IsDisplayAdapterLine("0000:00:02.0 VGA compatible controller: Intel Corporation UHD Graphics 630"))
	assert.False(t, IsDisplayAdapterLine(intelBridge))
	assert.False(t, IsDisplayAdapterLine(intelNIC))
	assert.False(t, IsDisplayAdapterLine(""))
}

func TestKind_TokensRoundTrip(t *testing.T) {
	t.Parallel()

	for _, kind := range Kinds() {
		parsed, err := ParseKind(kind.String())
		require.NoError(t, err)
		assert.Equal(t, kind, parsed)
		assert.NotEmpty(t, kind.Label())
	}

	_, err := ParseKind("amiga")
	require.Error(t, err)
}

func TestKind_IsVirtual(t *testing.T) {
	t.Parallel()

	assert.True(t, KVMQemu.IsVirtual())
	assert.True(t, OtherVM.IsVirtual())
	assert.False(t, GenericGPU.IsVirtual())
	assert.False(t, Unknown.IsVirtual())
}

func TestVerdict_JSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(Verdict{Kind: KVMQemu, Rule: "hypervisor"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"kvm-qemu","rule":"hypervisor"}`, string(data))
}
