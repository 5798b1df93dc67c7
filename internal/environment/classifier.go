// Package environment turns an evidence bundle into exactly one verdict by
// evaluating an ordered list of rules; the first rule that matches wins.
package environment

import (
	"github.com/alexisbeaulieu97/gameready/internal/evidence"
)

// Rule maps evidence to a verdict when it matches.
type Rule struct {
	Name  string
	Match func(Evidence) (Kind, bool)
}

// Verdict explains a classification.
type Verdict struct {
	Kind Kind `json:"kind"`
	// Rule is the name of the rule that fired, or "fallback".
	Rule string `json:"rule"`
	// Evidence is the search text the hardware rules ran against.
	Evidence string `json:"evidence,omitempty"`
}

// FallbackRule names the verdict produced when no rule matches.
const FallbackRule = "fallback"

var (
	virtualAdapterMarkers = []marker{sub("vmware"), sub("virtualbox"), sub("qxl"), sub("virtio"), sub("svga3d")}
	nvidiaMarkers         = []marker{sub("nvidia")}
	amdMarkers            = []marker{sub("radeon"), word("amd"), word("ati")}
	intelGPUMarkers       = []marker{sub("graphics"), sub("uhd"), sub("iris"), word("hd"), word("arc")}
)

// hypervisorTable is consulted top to bottom; unmatched hints become OtherVM.
var hypervisorTable = []struct {
	marker marker
	kind   Kind
}{
	{sub("vmware"), VMware},
	{sub("kvm"), KVMQemu},
	{sub("qemu"), KVMQemu},
	{sub("virtualbox"), VirtualBox},
	{sub("oracle"), VirtualBox},
	{word("vbox"), VirtualBox},
	{sub("microsoft"), HyperV},
	{sub("hyperv"), HyperV},
	{sub("hyper-v"), HyperV},
	{sub("xen"), Xen},
	{sub("bochs"), OtherVM},
	{sub("parallels"), OtherVM},
}

// HypervisorKind maps a normalized hint through the vendor table.
func HypervisorKind(hint string) Kind {
	for _, entry := range hypervisorTable {
		if entry.marker.in(hint) {
			return entry.kind
		}
	}
	return OtherVM
}

// DefaultRules returns the classification cascade in priority order.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "hypervisor", Match: func(e Evidence) (Kind, bool) {
			if e.Hint == "" || e.Hint == evidence.NoneHint {
				return Unknown, false
			}
			return HypervisorKind(e.Hint), true
		}},
		{Name: "virtual-adapter", Match: func(e Evidence) (Kind, bool) {
			return GenericGPU, anyMarker(e.Text, virtualAdapterMarkers)
		}},
		{Name: "nvidia", Match: func(e Evidence) (Kind, bool) {
			return Nvidia, anyMarker(e.Text, nvidiaMarkers)
		}},
		{Name: "amd", Match: func(e Evidence) (Kind, bool) {
			return AMD, anyMarker(e.Text, amdMarkers)
		}},
		{Name: "intel", Match: func(e Evidence) (Kind, bool) {
			return Intel, sub("intel").in(e.Text) && anyMarker(e.Text, intelGPUMarkers)
		}},
		{Name: "display-present", Match: func(e Evidence) (Kind, bool) {
			return GenericGPU, len(e.DisplayLines) > 0
		}},
	}
}

// Classifier evaluates rules in order.
type Classifier struct {
	rules []Rule
}

// NewClassifier builds a classifier; with no rules it uses DefaultRules.
func NewClassifier(rules ...Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Classifier{rules: rules}
}

// Explain classifies b and reports which rule fired.
func (c *Classifier) Explain(b evidence.Bundle) Verdict {
	ev := NewEvidence(b)
	for _, rule := range c.rules {
		if rule.Match == nil {
			continue
		}
		if kind, ok := rule.Match(ev); ok {
			return Verdict{Kind: kind, Rule: rule.Name, Evidence: ev.Text}
		}
	}
	return Verdict{Kind: Unknown, Rule: FallbackRule, Evidence: ev.Text}
}

// Classify returns the verdict for b.
func (c *Classifier) Classify(b evidence.Bundle) Kind {
	return c.Explain(b).Kind
}

var defaultClassifier = NewClassifier()

// Classify runs the default cascade.
func Classify(b evidence.Bundle) Kind {
	return defaultClassifier.Classify(b)
}

// Explain runs the default cascade and reports the rule that fired.
func Explain(b evidence.Bundle) Verdict {
	return defaultClassifier.Explain(b)
}
