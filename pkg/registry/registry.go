// Package registry reads the host plugin state that dependency checks run
// against: which plugins are installed, which are enabled, and which
// marketplaces are known. The state lives under the Claude configuration
// directory (~/.claude by default).
package registry

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/plugdep/plugdep/pkg/logger"
)

// File locations relative to the configuration root.
const (
	installedPluginsFile  = "plugins/installed_plugins.json"
	settingsFile          = "settings.json"
	knownMarketplacesFile = "plugins/known_marketplaces.json"
)

// InstallInfo describes one installation of a plugin.
type InstallInfo struct {
	Version     string `json:"version"`
	InstallPath string `json:"installPath"`
}

// Marketplace describes a known plugin marketplace.
type Marketplace struct {
	InstallLocation string `json:"installLocation"`
}

// Registry is a snapshot of the host's plugin state. Keys are plugin keys
// in "name@marketplace" form.
type Registry struct {
	Installed    map[string][]InstallInfo
	Enabled      map[string]bool
	Marketplaces map[string]Marketplace
}

// DefaultRoot returns the default configuration root, ~/.claude.
func DefaultRoot() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get user home directory")
	}
	return filepath.Join(homeDir, ".claude"), nil
}

// Load reads the host plugin state from the given configuration root.
// Missing or unreadable files yield empty state with a logged warning,
// matching how the host itself degrades.
func Load(ctx context.Context, root string) (*Registry, error) {
	r := &Registry{
		Installed:    map[string][]InstallInfo{},
		Enabled:      map[string]bool{},
		Marketplaces: map[string]Marketplace{},
	}

	var installed struct {
		Plugins map[string][]InstallInfo `json:"plugins"`
	}
	if ok := readJSON(ctx, filepath.Join(root, installedPluginsFile), &installed); ok && installed.Plugins != nil {
		r.Installed = installed.Plugins
	}

	var settings struct {
		EnabledPlugins map[string]bool `json:"enabledPlugins"`
	}
	if ok := readJSON(ctx, filepath.Join(root, settingsFile), &settings); ok && settings.EnabledPlugins != nil {
		r.Enabled = settings.EnabledPlugins
	}

	marketplaces := map[string]Marketplace{}
	if ok := readJSON(ctx, filepath.Join(root, knownMarketplacesFile), &marketplaces); ok {
		r.Marketplaces = marketplaces
	}

	return r, nil
}

func readJSON(ctx context.Context, path string, v any) bool {
	content, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.G(ctx).WithError(err).Warnf("failed to read %s", filepath.Base(path))
		}
		return false
	}
	if err := json.Unmarshal(content, v); err != nil {
		logger.G(ctx).WithError(err).Warnf("failed to parse %s", filepath.Base(path))
		return false
	}
	return true
}

// ParseKey splits a plugin key into name and marketplace. Keys without a
// marketplace return an empty marketplace. The split is on the last "@" so
// names containing "@" keep their prefix intact.
func ParseKey(key string) (name, marketplace string) {
	if idx := strings.LastIndex(key, "@"); idx != -1 {
		return key[:idx], key[idx+1:]
	}
	return key, ""
}

// Key joins a plugin name and marketplace into the standard key form.
func Key(name, marketplace string) string {
	return name + "@" + marketplace
}

// LookupInstall finds installation info for a plugin, preferring an exact
// name@marketplace match and falling back to a search by bare name. The
// first install entry wins.
func (r *Registry) LookupInstall(name, marketplace string) *InstallInfo {
	if marketplace != "" {
		if installs, ok := r.Installed[Key(name, marketplace)]; ok && len(installs) > 0 {
			return &installs[0]
		}
	}

	for key, installs := range r.Installed {
		n, _ := ParseKey(key)
		if n == name && len(installs) > 0 {
			return &installs[0]
		}
	}
	return nil
}

// IsEnabled reports whether a plugin is enabled, by exact key when the
// marketplace is known, otherwise by bare name.
func (r *Registry) IsEnabled(name, marketplace string) bool {
	if marketplace != "" {
		return r.Enabled[Key(name, marketplace)]
	}

	for key, enabled := range r.Enabled {
		n, _ := ParseKey(key)
		if n == name && enabled {
			return true
		}
	}
	return false
}
