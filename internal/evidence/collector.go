// Package evidence gathers raw, unjudged signals about virtualization and
// graphics hardware. Every source is optional: a missing tool, a timeout or a
// non-zero exit leaves the corresponding field empty.
package evidence

import (
	"context"
	"strings"

	"github.com/shirou/gopsutil/v3/host"

	"github.com/alexisbeaulieu97/gameready/internal/logger"
	"github.com/alexisbeaulieu97/gameready/internal/sysquery"
)

// NoneHint is the sentinel systemd-detect-virt prints on bare metal.
const NoneHint = "none"

const (
	rendererPrefix     = "opengl renderer string:"
	hypervisorDetected = "hypervisor detected:"
)

// VirtProbe reports the virtualization system and the host's role in it
// ("guest" or "host").
type VirtProbe func(ctx context.Context) (system, role string, err error)

// HostVirtProbe asks gopsutil which virtualization system the host belongs to.
func HostVirtProbe(ctx context.Context) (string, string, error) {
	return host.VirtualizationWithContext(ctx)
}

// Options configures a Collector.
type Options struct {
	Runner sysquery.Runner
	Logger *logger.Logger
	// VirtProbe defaults to HostVirtProbe.
	VirtProbe VirtProbe
	// DisableVirtProbe skips the gopsutil source entirely.
	DisableVirtProbe bool
	// ScanKernelLog enables the dmesg fallback for the hypervisor hint.
	ScanKernelLog bool
}

// Collector queries the host for classification evidence.
type Collector struct {
	runner        sysquery.Runner
	log           *logger.Logger
	probe         VirtProbe
	scanKernelLog bool
}

// NewCollector builds a Collector from opts.
func NewCollector(opts Options) *Collector {
	runner := opts.Runner
	if runner == nil {
		runner = sysquery.NewExecRunner(sysquery.DefaultTimeout)
	}
	probe := opts.VirtProbe
	if probe == nil {
		probe = HostVirtProbe
	}
	if opts.DisableVirtProbe {
		probe = nil
	}
	return &Collector{
		runner:        runner,
		log:           opts.Logger,
		probe:         probe,
		scanKernelLog: opts.ScanKernelLog,
	}
}

// Collect gathers a fresh evidence bundle. It never fails.
func (c *Collector) Collect(ctx context.Context) Bundle {
	hint := c.hypervisorHint(ctx)
	pci := c.pciLines(ctx)
	renderer := c.glRenderer(ctx)

	c.log.WithFields(map[string]any{
		"hypervisor_hint": hint,
		"pci_lines":       len(pci),
		"gl_renderer":     renderer,
	}).Debug("evidence collected")

	return NewBundle(hint, pci, renderer)
}

// hypervisorHint walks the hint sources in order. A "none" answer from
// systemd-detect-virt is remembered but does not stop the search.
func (c *Collector) hypervisorHint(ctx context.Context) string {
	fallback := ""

	if res, ok := c.query(ctx, "systemd-detect-virt"); ok {
		hint := strings.TrimSpace(res.Stdout)
		if hint != "" && !strings.EqualFold(hint, NoneHint) {
			return hint
		}
		fallback = hint
	}

	if hint := c.probeHint(ctx); hint != "" {
		return hint
	}

	if c.scanKernelLog {
		if res, ok := c.query(ctx, "dmesg"); ok {
			if hint := KernelLogHint(res.Lines()); hint != "" {
				return hint
			}
		}
	}

	return fallback
}

func (c *Collector) probeHint(ctx context.Context) string {
	if c.probe == nil {
		return ""
	}
	system, role, err := c.probe(ctx)
	if err != nil {
		c.log.WithFields(map[string]any{"source": "gopsutil"}).Debug("virtualization probe unavailable: " + err.Error())
		return ""
	}
	if !strings.EqualFold(role, "guest") {
		return ""
	}
	return strings.TrimSpace(system)
}

func (c *Collector) pciLines(ctx context.Context) []string {
	res, ok := c.query(ctx, "lspci")
	if !ok {
		return nil
	}
	lines := res.Lines()
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return lines
}

func (c *Collector) glRenderer(ctx context.Context) string {
	res, ok := c.query(ctx, "glxinfo", "-B")
	if !ok {
		return ""
	}
	return RendererFromGLXInfo(res.Lines())
}

func (c *Collector) query(ctx context.Context, argv ...string) (sysquery.Result, bool) {
	res, err := c.runner.Run(ctx, argv...)
	if err != nil {
		c.log.WithFields(map[string]any{"query": strings.Join(argv, " ")}).Debug("evidence unavailable: " + err.Error())
		return res, false
	}
	return res, true
}

// RendererFromGLXInfo extracts the renderer name from glxinfo output.
func RendererFromGLXInfo(lines []string) string {
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(strings.ToLower(trimmed), rendererPrefix) {
			return strings.TrimSpace(trimmed[len(rendererPrefix):])
		}
	}
	return ""
}

// KernelLogHint derives a hypervisor hint from kernel log lines: an explicit
// "Hypervisor detected: X" wins, then bare vmware/virtualbox mentions.
func KernelLogHint(lines []string) string {
	var sawVMware, sawVirtualBox bool
	for _, line := range lines {
		lower := strings.ToLower(line)
		if idx := strings.Index(lower, hypervisorDetected); idx >= 0 {
			if vendor := strings.TrimSpace(line[idx+len(hypervisorDetected):]); vendor != "" {
				return vendor
			}
			return "vm"
		}
		sawVMware = sawVMware || strings.Contains(lower, "vmware")
		sawVirtualBox = sawVirtualBox || strings.Contains(lower, "virtualbox")
	}
	switch {
	case sawVMware:
		return "vmware"
	case sawVirtualBox:
		return "virtualbox"
	default:
		return ""
	}
}
