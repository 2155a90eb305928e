package checker

// Scope selects which plugins a check covers.
type Scope string

// Check scopes.
const (
	ScopeEnabled   Scope = "enabled"
	ScopeInstalled Scope = "installed"
	ScopeAll       Scope = "all"
)

// Dependency is the result of checking a single dependency. Plugin is set
// for plugin dependencies, Command for system dependencies.
type Dependency struct {
	Plugin           string  `json:"plugin,omitempty"`
	Command          string  `json:"command,omitempty"`
	Marketplace      string  `json:"marketplace,omitempty"`
	Dependent        string  `json:"dependent"`
	RequiredVersion  string  `json:"requiredVersion"`
	Installed        bool    `json:"installed"`
	Enabled          bool    `json:"enabled"`
	InstalledVersion *string `json:"installedVersion"`
	Valid            bool    `json:"valid"`
	Help             string  `json:"help"`
}

// Report is the overall result of a dependency check.
type Report struct {
	CheckedScope               Scope        `json:"checkedScope"`
	CheckedPlugin              *string      `json:"checkedPlugin"`
	Dependencies               []Dependency `json:"dependencies"`
	OptionalDependencies       []Dependency `json:"optionalDependencies"`
	SystemDependencies         []Dependency `json:"systemDependencies"`
	OptionalSystemDependencies []Dependency `json:"optionalSystemDependencies"`
}

func newReport(scope Scope, specificPlugin string) *Report {
	r := &Report{
		CheckedScope:               scope,
		Dependencies:               []Dependency{},
		OptionalDependencies:       []Dependency{},
		SystemDependencies:         []Dependency{},
		OptionalSystemDependencies: []Dependency{},
	}
	if specificPlugin != "" {
		r.CheckedPlugin = &specificPlugin
	}
	return r
}

// HasRequiredFailures reports whether any required plugin or system
// dependency failed validation. Optional dependencies never fail a check.
func (r *Report) HasRequiredFailures() bool {
	for _, d := range r.Dependencies {
		if !d.Valid {
			return true
		}
	}
	for _, d := range r.SystemDependencies {
		if !d.Valid {
			return true
		}
	}
	return false
}
