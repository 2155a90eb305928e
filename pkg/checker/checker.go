// Package checker verifies that plugin dependencies declared in
// extends-plugin.json manifests are satisfied on the host: required
// plugins installed, enabled, and at compatible versions, and required
// system commands available on PATH.
package checker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/plugdep/plugdep/pkg/logger"
	"github.com/plugdep/plugdep/pkg/manifest"
	"github.com/plugdep/plugdep/pkg/registry"
	"github.com/plugdep/plugdep/pkg/semver"
)

// Checker checks plugin dependencies against a host registry snapshot.
type Checker struct {
	reg    *registry.Registry
	prober CommandProber
}

// Option configures a Checker.
type Option func(*Checker)

// WithProber overrides the system command prober.
func WithProber(p CommandProber) Option {
	return func(c *Checker) {
		c.prober = p
	}
}

// New creates a Checker backed by the given registry snapshot.
func New(reg *registry.Registry, opts ...Option) *Checker {
	c := &Checker{
		reg:    reg,
		prober: NewExecProber(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// target is one plugin whose manifest will be checked.
type target struct {
	key         string
	installPath string
	marketplace string
}

// Check runs a dependency check. When specificPlugin is non-empty
// ("name" or "name@marketplace") it overrides the scope.
func (c *Checker) Check(ctx context.Context, scope Scope, specificPlugin string) (*Report, error) {
	report := newReport(scope, specificPlugin)

	for _, t := range c.targets(scope, specificPlugin) {
		if t.installPath == "" {
			continue
		}

		m, err := manifest.Load(t.installPath)
		if err != nil {
			logger.G(ctx).WithError(err).WithField("plugin", t.key).Warn("skipping plugin with unreadable manifest")
			continue
		}
		if m == nil {
			continue
		}

		for _, name := range sortedKeys(m.Dependencies) {
			report.Dependencies = append(report.Dependencies, c.checkPluginDependency(name, m.Dependencies[name], t.key))
		}
		for _, name := range sortedKeys(m.OptionalDependencies) {
			report.OptionalDependencies = append(report.OptionalDependencies, c.checkPluginDependency(name, m.OptionalDependencies[name], t.key))
		}
		for _, cmd := range sortedKeys(m.SystemDependencies) {
			report.SystemDependencies = append(report.SystemDependencies, c.checkSystemDependency(ctx, cmd, m.SystemDependencies[cmd], t.key))
		}
		for _, cmd := range sortedKeys(m.OptionalSystemDependencies) {
			report.OptionalSystemDependencies = append(report.OptionalSystemDependencies, c.checkSystemDependency(ctx, cmd, m.OptionalSystemDependencies[cmd], t.key))
		}
	}

	return report, nil
}

// targets resolves the list of plugins to check for a scope. Results are
// sorted by key so reports are deterministic.
func (c *Checker) targets(scope Scope, specificPlugin string) []target {
	var targets []target

	switch {
	case specificPlugin != "":
		targets = c.specificTarget(specificPlugin)
	case scope == ScopeEnabled:
		for key, enabled := range c.reg.Enabled {
			if !enabled {
				continue
			}
			name, marketplace := registry.ParseKey(key)
			if info := c.reg.LookupInstall(name, marketplace); info != nil {
				targets = append(targets, target{key: key, installPath: info.InstallPath, marketplace: marketplace})
			}
		}
	case scope == ScopeInstalled:
		targets = c.installedTargets()
	case scope == ScopeAll:
		targets = c.installedTargets()
		seen := make(map[string]bool, len(targets))
		for _, t := range targets {
			seen[t.key] = true
		}
		targets = append(targets, c.marketplaceTargets(seen)...)
	}

	sort.Slice(targets, func(i, j int) bool { return targets[i].key < targets[j].key })
	return targets
}

func (c *Checker) specificTarget(spec string) []target {
	name, marketplace := registry.ParseKey(spec)

	if marketplace != "" {
		if info := c.reg.LookupInstall(name, marketplace); info != nil {
			return []target{{key: spec, installPath: info.InstallPath, marketplace: marketplace}}
		}
		return nil
	}

	for _, key := range sortedKeys(c.reg.Installed) {
		n, mkt := registry.ParseKey(key)
		if n == name && len(c.reg.Installed[key]) > 0 {
			return []target{{key: key, installPath: c.reg.Installed[key][0].InstallPath, marketplace: mkt}}
		}
	}
	return nil
}

func (c *Checker) installedTargets() []target {
	var targets []target
	for key, installs := range c.reg.Installed {
		if len(installs) == 0 {
			continue
		}
		_, marketplace := registry.ParseKey(key)
		targets = append(targets, target{key: key, installPath: installs[0].InstallPath, marketplace: marketplace})
	}
	return targets
}

// marketplaceTargets finds uninstalled plugins by walking each known
// marketplace's plugins directory for plugin marker directories.
func (c *Checker) marketplaceTargets(seen map[string]bool) []target {
	var targets []target

	for mktName, mkt := range c.reg.Marketplaces {
		if mkt.InstallLocation == "" {
			continue
		}

		pluginsDir := filepath.Join(mkt.InstallLocation, "plugins")
		entries, err := os.ReadDir(pluginsDir)
		if err != nil {
			continue
		}

		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			pluginDir := filepath.Join(pluginsDir, entry.Name())
			if !manifest.IsPlugin(pluginDir) {
				continue
			}
			key := registry.Key(entry.Name(), mktName)
			if seen[key] {
				continue
			}
			targets = append(targets, target{key: key, installPath: pluginDir, marketplace: mktName})
		}
	}

	return targets
}

func (c *Checker) checkPluginDependency(depKey, requiredVersion, dependent string) Dependency {
	name, marketplace := registry.ParseKey(depKey)

	dep := Dependency{
		Plugin:          name,
		Marketplace:     marketplace,
		Dependent:       dependent,
		RequiredVersion: requiredVersion,
	}

	info := c.reg.LookupInstall(name, marketplace)
	if info == nil {
		if marketplace != "" {
			dep.Help = fmt.Sprintf("Plugin %s from %s is not installed. Install with: claude plugin install %s", name, marketplace, name)
		} else {
			dep.Help = fmt.Sprintf("Plugin %s is not installed. Install with: claude plugin install %s", name, name)
		}
		return dep
	}

	dep.Installed = true
	dep.Enabled = c.reg.IsEnabled(name, marketplace)
	if info.Version != "" {
		dep.InstalledVersion = &info.Version
		dep.Valid = semver.Satisfies(info.Version, requiredVersion)
	} else {
		// Nothing to compare against.
		dep.Valid = true
	}

	if !dep.Valid {
		dep.Help = fmt.Sprintf("Installed version %s does not satisfy required version %s", info.Version, requiredVersion)
	} else if !dep.Enabled {
		dep.Help = fmt.Sprintf("Plugin %s is installed but not enabled", name)
	}

	return dep
}

func (c *Checker) checkSystemDependency(ctx context.Context, command, requiredVersion, dependent string) Dependency {
	dep := Dependency{
		Command:         command,
		Dependent:       dependent,
		RequiredVersion: requiredVersion,
	}

	installed, version := c.prober.Probe(ctx, command)
	dep.Installed = installed
	// System commands are "enabled" whenever they are installed.
	dep.Enabled = installed
	if version != "" {
		dep.InstalledVersion = &version
	}

	if !installed {
		dep.Help = fmt.Sprintf("Command '%s' is not installed or not in PATH. Please install %s to use this plugin.", command, command)
		return dep
	}

	if version != "" && requiredVersion != "" && requiredVersion != "*" {
		dep.Valid = semver.Satisfies(version, requiredVersion)
		if !dep.Valid {
			dep.Help = fmt.Sprintf("Installed version %s does not satisfy required version %s", version, requiredVersion)
		}
	} else {
		dep.Valid = true
	}

	return dep
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
