package ui

import (
	"fmt"
	"strings"

	"github.com/alexisbeaulieu97/gameready/internal/catalog"
	"github.com/alexisbeaulieu97/gameready/internal/environment"
	"github.com/alexisbeaulieu97/gameready/internal/evidence"
	"github.com/alexisbeaulieu97/gameready/internal/inspect"
	"github.com/alexisbeaulieu97/gameready/internal/installer"
	"github.com/alexisbeaulieu97/gameready/internal/model"
	"github.com/alexisbeaulieu97/gameready/internal/reconcile"
)

// MaxVersionWidth is the widest version string shown in tables.
const MaxVersionWidth = 30

var groupOrder = []struct {
	group catalog.Group
	title string
}{
	{catalog.GroupDrivers, "Graphics Drivers"},
	{catalog.GroupPlatforms, "Gaming Platforms"},
	{catalog.GroupCompatibility, "Windows Compatibility"},
	{catalog.GroupOptional, "Optional"},
}

// TruncateVersion shortens long versions to MaxVersionWidth.
func TruncateVersion(v model.Version) string {
	s := string(v)
	if len(s) > MaxVersionWidth {
		return s[:MaxVersionWidth-3] + "..."
	}
	return s
}

// RenderVerdict describes a classification and the evidence behind it.
func RenderVerdict(b evidence.Bundle, v environment.Verdict) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Environment: " + v.Kind.Label()))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "%s %s\n", labelStyle.Render("Rule:"), v.Rule)

	hint := b.HypervisorHint()
	if hint == "" {
		hint = "(unavailable)"
	}
	fmt.Fprintf(&sb, "%s %s\n", labelStyle.Render("Hypervisor hint:"), hint)

	renderer := b.GLRenderer()
	if renderer == "" {
		renderer = "(unavailable)"
	}
	fmt.Fprintf(&sb, "%s %s\n", labelStyle.Render("OpenGL renderer:"), renderer)

	var display []string
	for _, line := range b.PCILines() {
		if environment.IsDisplayAdapterLine(line) {
			display = append(display, line)
		}
	}
	sb.WriteString(labelStyle.Render("Display adapters:"))
	sb.WriteString("\n")
	if len(display) == 0 {
		sb.WriteString(pendingStyle.Render("  none found"))
		sb.WriteString("\n")
	}
	for _, line := range display {
		sb.WriteString("  " + line + "\n")
	}
	return sb.String()
}

// RenderStatus lists reports grouped like the catalog.
func RenderStatus(kind environment.Kind, reports []inspect.Report) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Status for " + kind.Label()))
	sb.WriteString("\n")

	for _, g := range groupOrder {
		var rows []string
		for _, r := range reports {
			if r.Component.Group == g.group {
				rows = append(rows, statusRow(r))
			}
		}
		if len(rows) == 0 {
			continue
		}
		sb.WriteString(sectionStyle.Render(g.title + ":"))
		sb.WriteString("\n")
		for _, row := range rows {
			sb.WriteString(row + "\n")
		}
	}
	return sb.String()
}

func statusRow(r inspect.Report) string {
	name := fmt.Sprintf("%-20s", r.Component.Name)
	state := r.State
	if !state.Present {
		return fmt.Sprintf("  %s %s %s", failureStyle.Render("✗"), name, skippedStyle.Render("not installed"))
	}

	version := TruncateVersion(state.InstalledVersion)
	if version == "" {
		version = "installed"
	}
	row := fmt.Sprintf("  %s %s %s %s", successStyle.Render("✓"), name, version, pendingStyle.Render("("+state.Channel.Kind.String()+")"))
	if state.Stale() {
		row += " " + updateStyle.Render("→ "+TruncateVersion(state.AvailableVersion))
	}
	return row
}

// RenderPlan lists the steps about to run.
func RenderPlan(steps []installer.Step) string {
	var sb strings.Builder
	sb.WriteString(sectionStyle.Render("Planned steps:"))
	sb.WriteString("\n")
	if len(steps) == 0 {
		sb.WriteString(skippedStyle.Render("  nothing to do"))
		sb.WriteString("\n")
		return sb.String()
	}
	for i, step := range steps {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, step.Description)
		for _, argv := range step.Commands {
			sb.WriteString(pendingStyle.Render("     $ "+strings.Join(argv, " ")) + "\n")
		}
	}
	return sb.String()
}

// RenderDecisions lists what was decided for each component.
func RenderDecisions(decisions []reconcile.Decision) string {
	var sb strings.Builder
	for _, d := range decisions {
		action := d.Action.Kind.String()
		if d.Action.IsSkip() {
			action = skippedStyle.Render(action)
		} else {
			action = successStyle.Render(action)
		}
		fmt.Fprintf(&sb, "  %-20s %s\n", d.Component.Name, action)
	}
	return sb.String()
}

// RenderSummary reports installer outcomes.
func RenderSummary(summary installer.Summary) string {
	var lines []string
	total := len(summary.Results)
	failed := summary.Failed()

	if total > 0 {
		lines = append(lines, NewProgress(total).View(total-len(failed)))
	}
	for _, r := range summary.Results {
		switch {
		case summary.DryRun:
			lines = append(lines, fmt.Sprintf("  %s %s", pendingStyle.Render("•"), r.Step.Description))
		case r.Succeeded():
			lines = append(lines, fmt.Sprintf("  %s %s", successStyle.Render("✓"), r.Step.Description))
		default:
			lines = append(lines, fmt.Sprintf("  %s %s: %v", failureStyle.Render("✗"), r.Step.Description, r.Err))
		}
	}

	switch {
	case total == 0:
		lines = append(lines, skippedStyle.Render("Nothing was installed"))
	case summary.DryRun:
		lines = append(lines, pendingStyle.Render("Dry run: no commands were executed"))
	case len(failed) == 0:
		lines = append(lines, successStyle.Render(fmt.Sprintf("All %d steps finished successfully", total)))
	default:
		lines = append(lines, failureStyle.Render(fmt.Sprintf("%d of %d steps failed", len(failed), total)))
	}
	return summaryStyle.Render(strings.Join(lines, "\n"))
}

// RenderCatalog lists catalog components with their channels.
func RenderCatalog(c *catalog.Catalog) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Catalog " + c.Version))
	sb.WriteString("\n")
	for _, g := range groupOrder {
		var rows []string
		for _, comp := range c.Components {
			if comp.Group != g.group {
				continue
			}
			var channels []string
			for _, ref := range comp.Channels() {
				channels = append(channels, ref.String())
			}
			envs := "all"
			if len(comp.Environments) > 0 {
				envs = strings.Join(comp.Environments, ",")
			}
			rows = append(rows, fmt.Sprintf("  %-18s %-28s %s %s", comp.ID, comp.Name, strings.Join(channels, " "), pendingStyle.Render("["+envs+"]")))
		}
		if len(rows) == 0 {
			continue
		}
		sb.WriteString(sectionStyle.Render(g.title + ":"))
		sb.WriteString("\n")
		sb.WriteString(strings.Join(rows, "\n"))
		sb.WriteString("\n")
	}
	return sb.String()
}
