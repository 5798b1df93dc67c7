package environment

import (
	"strings"

	"github.com/alexisbeaulieu97/gameready/internal/evidence"
)

// Evidence is the normalized, lowercased view of a bundle that rules match
// against.
type Evidence struct {
	// Hint is the trimmed, lowercased hypervisor hint.
	Hint string
	// DisplayLines holds only the display-adapter PCI lines.
	DisplayLines []string
	// Text joins DisplayLines and the GL renderer into one search string.
	Text string
}

// NewEvidence derives the rule view from a bundle.
func NewEvidence(b evidence.Bundle) Evidence {
	var display []string
	for _, line := range b.PCILines() {
		if IsDisplayAdapterLine(line) {
			display = append(display, strings.ToLower(strings.TrimSpace(line)))
		}
	}

	parts := append([]string(nil), display...)
	if renderer := strings.TrimSpace(b.GLRenderer()); renderer != "" {
		parts = append(parts, strings.ToLower(renderer))
	}

	return Evidence{
		Hint:         strings.ToLower(strings.TrimSpace(b.HypervisorHint())),
		DisplayLines: display,
		Text:         strings.Join(parts, " "),
	}
}

// IsDisplayAdapterLine reports whether an lspci line describes a VGA, 3D or
// display-class device. Only the device class is inspected so vendor text on
// unrelated devices (host bridges, NICs) cannot match.
func IsDisplayAdapterLine(line string) bool {
	class := strings.ToLower(deviceClass(line))
	return strings.Contains(class, "vga") ||
		strings.Contains(class, "3d") ||
		strings.Contains(class, "display")
}

func deviceClass(line string) string {
	text := strings.TrimSpace(line)
	if slot, rest, ok := strings.Cut(text, " "); ok && isPCISlot(slot) {
		text = strings.TrimSpace(rest)
	}
	if class, _, ok := strings.Cut(text, ": "); ok {
		return class
	}
	return text
}

// isPCISlot matches addresses such as "00:02.0" or "0000:3d:00.0".
func isPCISlot(token string) bool {
	if !strings.Contains(token, ":") || !strings.Contains(token, ".") {
		return false
	}
	for _, r := range strings.ToLower(token) {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r == ':', r == '.':
		default:
			return false
		}
	}
	return true
}

// marker is a case-insensitive needle. Word markers must sit on
// non-alphanumeric boundaries.
type marker struct {
	text string
	word bool
}

func sub(text string) marker  { return marker{text: text} }
func word(text string) marker { return marker{text: text, word: true} }

func (m marker) in(haystack string) bool {
	if !m.word {
		return strings.Contains(haystack, m.text)
	}
	return containsWord(haystack, m.text)
}

func anyMarker(haystack string, markers []marker) bool {
	for _, m := range markers {
		if m.in(haystack) {
			return true
		}
	}
	return false
}

func containsWord(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	offset := 0
	for {
		idx := strings.Index(haystack[offset:], needle)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(needle)
		if !isWordByte(haystack, start-1) && !isWordByte(haystack, end) {
			return true
		}
		offset = start + 1
	}
}

func isWordByte(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return false
	}
	c := s[i]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
