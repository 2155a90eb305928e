// Package manifest loads and validates extends-plugin.json dependency
// manifests. A plugin declares its dependencies in
// <plugin>/.claude-plugin/extends-plugin.json as maps of plugin key or
// command name to a version constraint.
package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const (
	// MarkerDir is the metadata directory that identifies a plugin.
	MarkerDir = ".claude-plugin"
	// FileName is the dependency manifest file inside MarkerDir.
	FileName = "extends-plugin.json"
)

// Manifest is a plugin's declared dependencies. Plugin dependency keys are
// "name" or "name@marketplace"; system dependency keys are command names.
// Values are version constraints ("1.0.0", ">=1.0.0", "^1.0.0", "~1.0.0",
// "*").
type Manifest struct {
	Dependencies               map[string]string `json:"dependencies,omitempty"`
	OptionalDependencies       map[string]string `json:"optionalDependencies,omitempty"`
	SystemDependencies         map[string]string `json:"systemDependencies,omitempty"`
	OptionalSystemDependencies map[string]string `json:"optionalSystemDependencies,omitempty"`
}

// Path returns the manifest path for a plugin directory.
func Path(pluginDir string) string {
	return filepath.Join(pluginDir, MarkerDir, FileName)
}

// Load reads a plugin's dependency manifest. A missing manifest is not an
// error: plugins without declared dependencies return (nil, nil).
func Load(pluginDir string) (*Manifest, error) {
	content, err := os.ReadFile(Path(pluginDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to read dependency manifest")
	}

	var m Manifest
	if err := json.Unmarshal(content, &m); err != nil {
		return nil, errors.Wrapf(err, "malformed %s", FileName)
	}
	return &m, nil
}

// IsPlugin reports whether dir contains the plugin marker directory.
func IsPlugin(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, MarkerDir))
	return err == nil && info.IsDir()
}
