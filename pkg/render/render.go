// Package render formats dependency check reports as terminal tables.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/plugdep/plugdep/pkg/checker"
)

// Status symbols for boolean cells.
const (
	checkMark = "✓"
	xMark     = "✗"
)

func symbol(v bool) string {
	if v {
		return checkMark
	}
	return xMark
}

func installedVersion(dep checker.Dependency) string {
	if dep.InstalledVersion == nil {
		return ""
	}
	return *dep.InstalledVersion
}

// notes derives the human-readable problem summary for a dependency row.
func notes(dep checker.Dependency, system bool) string {
	switch {
	case !dep.Installed:
		return "not installed"
	case !dep.Enabled && !system:
		return "disabled"
	case !dep.Valid:
		if dep.RequiredVersion != "" && installedVersion(dep) != "" {
			return fmt.Sprintf("version mismatch (%s vs %s)", installedVersion(dep), dep.RequiredVersion)
		}
		return "version mismatch"
	}
	return ""
}

func renderTable(title string, headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle()).
		StyleFunc(func(_, _ int) lipgloss.Style {
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...).
		Rows(rows...)

	return fmt.Sprintf("\n%s\n\n%s", title, t.String())
}

func pluginTable(title string, deps []checker.Dependency) string {
	if len(deps) == 0 {
		return ""
	}

	headers := []string{"plugin", "marketplace", "dependent", "version", "installed", "enabled", "version", "valid", "notes"}
	rows := make([][]string, 0, len(deps))
	for _, dep := range deps {
		rows = append(rows, []string{
			dep.Plugin,
			dep.Marketplace,
			dep.Dependent,
			dep.RequiredVersion,
			symbol(dep.Installed),
			symbol(dep.Enabled),
			installedVersion(dep),
			symbol(dep.Valid),
			notes(dep, false),
		})
	}
	return renderTable(title, headers, rows)
}

func systemTable(title string, deps []checker.Dependency) string {
	if len(deps) == 0 {
		return ""
	}

	headers := []string{"command", "dependent", "version", "installed", "version", "valid", "notes"}
	rows := make([][]string, 0, len(deps))
	for _, dep := range deps {
		rows = append(rows, []string{
			dep.Command,
			dep.Dependent,
			dep.RequiredVersion,
			symbol(dep.Installed),
			installedVersion(dep),
			symbol(dep.Valid),
			notes(dep, true),
		})
	}
	return renderTable(title, headers, rows)
}

// Report renders a full check report: a scope header followed by one
// table per non-empty dependency section.
func Report(r *checker.Report) string {
	var parts []string

	if r.CheckedPlugin != nil {
		parts = append(parts, fmt.Sprintf("Dependency check for plugin: %s", *r.CheckedPlugin))
	} else {
		parts = append(parts, fmt.Sprintf("Dependency check scope: %s", r.CheckedScope))
	}

	sections := []string{
		pluginTable("Required Plugin Dependencies", r.Dependencies),
		pluginTable("Optional Plugin Dependencies", r.OptionalDependencies),
		systemTable("Required System Dependencies", r.SystemDependencies),
		systemTable("Optional System Dependencies", r.OptionalSystemDependencies),
	}

	rendered := false
	for _, section := range sections {
		if section != "" {
			parts = append(parts, section)
			rendered = true
		}
	}

	if !rendered {
		parts = append(parts, "\nNo dependencies found for checked plugins.")
	}

	return strings.Join(parts, "\n")
}
