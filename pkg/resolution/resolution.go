// Package resolution turns dependency check reports into human-readable
// resolution steps: the commands a user runs to install, enable, or update
// whatever the check found missing.
package resolution

import (
	"fmt"
	"strings"

	"github.com/plugdep/plugdep/pkg/checker"
)

// Kind classifies a resolution step by the dependency section it came from.
type Kind string

// Step kinds.
const (
	KindRequired       Kind = "Required"
	KindOptional       Kind = "Optional"
	KindRequiredSystem Kind = "Required System"
	KindOptionalSystem Kind = "Optional System"
)

// Required reports whether steps of this kind fail the overall check.
func (k Kind) Required() bool {
	return k == KindRequired || k == KindRequiredSystem
}

// Step is a single resolution action for an unsatisfied dependency.
type Step struct {
	Kind       Kind
	Name       string // plugin or command name
	Dependent  string // plugin that requires the dependency
	Issue      string
	Resolution string
	HelpText   string // custom help, preferred over Resolution when set
}

// Steps generates resolution steps for every unsatisfied dependency in
// the report, in section order: required plugins, optional plugins,
// required system commands, optional system commands.
func Steps(report *checker.Report) []Step {
	var steps []Step

	for _, dep := range report.Dependencies {
		if step := pluginStep(dep, KindRequired); step != nil {
			steps = append(steps, *step)
		}
	}
	for _, dep := range report.OptionalDependencies {
		if step := pluginStep(dep, KindOptional); step != nil {
			steps = append(steps, *step)
		}
	}
	for _, dep := range report.SystemDependencies {
		if step := systemStep(dep, KindRequiredSystem); step != nil {
			steps = append(steps, *step)
		}
	}
	for _, dep := range report.OptionalSystemDependencies {
		if step := systemStep(dep, KindOptionalSystem); step != nil {
			steps = append(steps, *step)
		}
	}

	return steps
}

func pluginStep(dep checker.Dependency, kind Kind) *Step {
	if dep.Valid {
		return nil
	}

	step := &Step{
		Kind:      kind,
		Name:      dep.Plugin,
		Dependent: dependent(dep),
	}

	switch {
	case !dep.Installed:
		step.Issue = "Not installed"
		if dep.Help != "" && !strings.HasPrefix(dep.Help, "Plugin") {
			// A custom help message overrides the stock install command.
			step.Resolution = dep.Help
		} else if dep.Marketplace != "" {
			step.Resolution = fmt.Sprintf("/plugin install %s@%s", dep.Plugin, dep.Marketplace)
		} else {
			step.Resolution = fmt.Sprintf("/plugin install %s", dep.Plugin)
		}
	case !dep.Enabled:
		step.Issue = "Installed but not enabled"
		step.Resolution = "Enable via /plugin TUI"
	default:
		installed := ""
		if dep.InstalledVersion != nil {
			installed = *dep.InstalledVersion
		}
		step.Issue = fmt.Sprintf("Version mismatch: %s does not satisfy %s", installed, dep.RequiredVersion)
		if dep.Marketplace != "" {
			step.Resolution = fmt.Sprintf("/plugin update %s@%s", dep.Plugin, dep.Marketplace)
		} else {
			step.Resolution = fmt.Sprintf("/plugin update %s", dep.Plugin)
		}
		return step
	}

	if dep.Help != "" && !strings.HasPrefix(dep.Help, "Plugin") {
		step.HelpText = dep.Help
	}
	return step
}

func systemStep(dep checker.Dependency, kind Kind) *Step {
	if dep.Valid {
		return nil
	}

	step := &Step{
		Kind:      kind,
		Name:      dep.Command,
		Dependent: dependent(dep),
	}

	if !dep.Installed {
		step.Issue = "Not installed"
		if dep.Help != "" && !strings.HasPrefix(dep.Help, "Command") {
			step.Resolution = dep.Help
		} else {
			step.Resolution = fmt.Sprintf("Install %s", dep.Command)
		}
	} else {
		installed := ""
		if dep.InstalledVersion != nil {
			installed = *dep.InstalledVersion
		}
		step.Issue = fmt.Sprintf("Version mismatch: %s does not satisfy %s", installed, dep.RequiredVersion)
		if dep.Help != "" && !strings.HasPrefix(dep.Help, "Installed version") {
			step.Resolution = dep.Help
		} else {
			step.Resolution = fmt.Sprintf("Update %s to satisfy version %s", dep.Command, dep.RequiredVersion)
		}
	}

	if dep.Help != "" && !strings.HasPrefix(dep.Help, "Command") && !strings.HasPrefix(dep.Help, "Installed version") {
		step.HelpText = dep.Help
	}
	return step
}

func dependent(dep checker.Dependency) string {
	if dep.Dependent == "" {
		return "unknown"
	}
	return dep.Dependent
}

// Format renders steps as a numbered markdown list. With no steps it
// reports that all dependencies are satisfied.
func Format(steps []Step) string {
	if len(steps) == 0 {
		return "All dependencies satisfied."
	}

	plural := ""
	if len(steps) != 1 {
		plural = "s"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## Resolution Steps (%d issue%s)\n\n", len(steps), plural)

	for i, step := range steps {
		fmt.Fprintf(&b, "%d. [%s] %s (required by %s)\n", i+1, step.Kind, step.Name, step.Dependent)
		if step.HelpText != "" {
			fmt.Fprintf(&b, "   %s\n", step.HelpText)
		} else {
			fmt.Fprintf(&b, "   %s\n", step.Resolution)
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// HasRequired reports whether any step concerns a required dependency.
func HasRequired(steps []Step) bool {
	for _, step := range steps {
		if step.Kind.Required() {
			return true
		}
	}
	return false
}
