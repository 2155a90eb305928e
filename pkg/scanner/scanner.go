// Package scanner finds dependency-like references inside plugin trees by
// pattern-matching markdown, JSON, and script files. It reports where a
// plugin mentions skills, agents, system commands, tools, or other
// plugins, so undeclared dependencies can be surfaced.
package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gobwas/glob"
	"github.com/pkg/errors"

	"github.com/plugdep/plugdep/pkg/logger"
	"github.com/plugdep/plugdep/pkg/manifest"
	"github.com/plugdep/plugdep/pkg/registry"
)

// Match is a single reference found during scanning.
type Match struct {
	ScannedPlugin      string      `json:"scannedPlugin"`
	ScannedMarketplace string      `json:"scannedMarketplace"`
	Location           string      `json:"location"` // file:line:col
	Matched            string      `json:"matched"`
	Context            string      `json:"context"`
	Type               PatternType `json:"type"`
}

// contextSize is the number of characters of surrounding text captured on
// each side of a match.
const contextSize = 30

// filePatterns selects which files get scanned.
var filePatterns = []string{
	"**/*.md",
	"**/*.json",
	"**/*.py",
	"**/*.sh",
	"**/*.bash",
}

// skipDirPatterns are directory names excluded from scanning.
var skipDirPatterns = func() []glob.Glob {
	names := []string{
		".git", "node_modules", "__pycache__", ".venv", "venv",
		".mypy_cache", ".pytest_cache", ".ruff_cache",
		"dist", "build", ".eggs", "*.egg-info",
	}
	globs := make([]glob.Glob, 0, len(names))
	for _, name := range names {
		globs = append(globs, glob.MustCompile(name))
	}
	return globs
}()

func skipDir(name string) bool {
	for _, g := range skipDirPatterns {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// Scanner scans plugins for dependency references.
type Scanner struct {
	reg      *registry.Registry
	patterns []pattern
}

// New creates a Scanner backed by the given registry snapshot. The
// registry may be nil when only directory scans are used.
func New(reg *registry.Registry) *Scanner {
	return &Scanner{
		reg:      reg,
		patterns: buildPatterns(),
	}
}

// ScanEnabled scans every enabled plugin.
func (s *Scanner) ScanEnabled(ctx context.Context) ([]Match, error) {
	var all []Match

	for _, key := range sortedKeys(s.reg.Enabled) {
		if !s.reg.Enabled[key] {
			continue
		}
		name, marketplace := registry.ParseKey(key)
		installs, ok := s.reg.Installed[key]
		if !ok || len(installs) == 0 {
			continue
		}
		matches, err := s.ScanPluginDir(ctx, installs[0].InstallPath, name, marketplace)
		if err != nil {
			logger.G(ctx).WithError(err).WithField("plugin", key).Warn("skipping plugin")
			continue
		}
		all = append(all, matches...)
	}

	return all, nil
}

// ScanInstalled scans a specific installed plugin ("name" or
// "name@marketplace"). An unknown plugin is a warning, not an error, and
// yields no matches.
func (s *Scanner) ScanInstalled(ctx context.Context, spec string) ([]Match, error) {
	name, marketplace := registry.ParseKey(spec)

	for _, key := range sortedKeys(s.reg.Installed) {
		n, mkt := registry.ParseKey(key)
		if n != name || (marketplace != "" && mkt != marketplace) {
			continue
		}
		installs := s.reg.Installed[key]
		if len(installs) == 0 {
			continue
		}
		return s.ScanPluginDir(ctx, installs[0].InstallPath, name, mkt)
	}

	logger.G(ctx).WithField("plugin", spec).Warn("plugin not found")
	return nil, nil
}

// ScanMarketplace scans all plugins of a known marketplace. An unknown
// marketplace is a warning, not an error, and yields no matches.
func (s *Scanner) ScanMarketplace(ctx context.Context, name string) ([]Match, error) {
	mkt, ok := s.reg.Marketplaces[name]
	if !ok {
		logger.G(ctx).WithField("marketplace", name).Warn("marketplace not found")
		return nil, nil
	}
	if mkt.InstallLocation == "" {
		logger.G(ctx).WithField("marketplace", name).Warn("no install location for marketplace")
		return nil, nil
	}
	return s.ScanMarketplaceDir(ctx, mkt.InstallLocation, name)
}

// ScanMarketplaceDir scans every plugin under a marketplace directory's
// plugins/ subdirectory. A marketplace without plugins/ but with a plugin
// marker at its root is treated as a single-plugin marketplace.
func (s *Scanner) ScanMarketplaceDir(ctx context.Context, dir, marketplaceName string) ([]Match, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve marketplace directory")
	}
	if marketplaceName == "" {
		marketplaceName = filepath.Base(dir)
	}

	pluginsDir := filepath.Join(dir, "plugins")
	entries, err := os.ReadDir(pluginsDir)
	if err != nil {
		if manifest.IsPlugin(dir) {
			return s.ScanPluginDir(ctx, dir, filepath.Base(dir), marketplaceName)
		}
		return nil, errors.Errorf("no plugins directory found in: %s", dir)
	}

	var all []Match
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		pluginDir := filepath.Join(pluginsDir, entry.Name())
		if !manifest.IsPlugin(pluginDir) {
			continue
		}
		matches, err := s.ScanPluginDir(ctx, pluginDir, entry.Name(), marketplaceName)
		if err != nil {
			return nil, err
		}
		all = append(all, matches...)
	}

	return all, nil
}

// ScanPluginDir scans a single plugin directory. An empty marketplace
// name defaults to "local".
func (s *Scanner) ScanPluginDir(ctx context.Context, dir, pluginName, marketplaceName string) ([]Match, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve plugin directory")
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, errors.Wrapf(err, "plugin directory does not exist: %s", dir)
	}
	if pluginName == "" {
		pluginName = filepath.Base(dir)
	}
	if marketplaceName == "" {
		marketplaceName = "local"
	}

	var all []Match
	for _, file := range filesToScan(dir) {
		matches, err := s.scanFile(file, pluginName, marketplaceName)
		if err != nil {
			logger.G(ctx).WithError(err).WithField("file", file).Warn("could not read file")
			continue
		}
		all = append(all, matches...)
	}

	return all, nil
}

// filesToScan collects scannable files under root, skipping excluded
// directories.
func filesToScan(root string) []string {
	fsys := os.DirFS(root)
	seen := map[string]bool{}

	for _, filePattern := range filePatterns {
		paths, err := doublestar.Glob(fsys, filePattern)
		if err != nil {
			continue
		}
	next:
		for _, p := range paths {
			for _, segment := range strings.Split(filepath.Dir(p), "/") {
				if skipDir(segment) {
					continue next
				}
			}
			info, err := fs.Stat(fsys, p)
			if err != nil || info.IsDir() {
				continue
			}
			seen[filepath.Join(root, filepath.FromSlash(p))] = true
		}
	}

	files := make([]string, 0, len(seen))
	for f := range seen {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

func (s *Scanner) scanFile(path, pluginName, marketplaceName string) ([]Match, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	content := string(raw)

	type position struct {
		line, col int
		typ       PatternType
	}
	matched := map[position]bool{}

	var matches []Match
	for _, p := range s.patterns {
		for _, idx := range p.re.FindAllStringSubmatchIndex(content, -1) {
			start, end := idx[0], idx[1]
			// A capture group narrows the match to the reference itself.
			if len(idx) >= 4 && idx[2] != -1 {
				start, end = idx[2], idx[3]
			}

			line, col := lineColumn(content, start)
			pos := position{line: line, col: col, typ: p.typ}
			if matched[pos] {
				continue
			}
			matched[pos] = true

			matches = append(matches, Match{
				ScannedPlugin:      pluginName,
				ScannedMarketplace: marketplaceName,
				Location:           fmt.Sprintf("%s:%d:%d", path, line, col),
				Matched:            strings.TrimSpace(content[start:end]),
				Context:            extractContext(content, start, end),
				Type:               p.typ,
			})
		}
	}

	return matches, nil
}

// extractContext returns the text around a match with whitespace collapsed
// and ellipses marking truncation.
func extractContext(content string, start, end int) string {
	ctxStart := max(0, start-contextSize)
	ctxEnd := min(len(content), end+contextSize)

	context := strings.Join(strings.Fields(content[ctxStart:ctxEnd]), " ")
	if ctxStart > 0 {
		context = "..." + context
	}
	if ctxEnd < len(content) {
		context += "..."
	}
	return context
}

// lineColumn converts a byte offset into 1-indexed line and column
// numbers.
func lineColumn(content string, offset int) (line, col int) {
	line = 1
	col = 1
	for _, r := range content[:offset] {
		if r == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

// FilterByType keeps only matches of the given type. An empty type keeps
// everything.
func FilterByType(matches []Match, typ PatternType) []Match {
	if typ == "" {
		return matches
	}
	filtered := make([]Match, 0, len(matches))
	for _, m := range matches {
		if m.Type == typ {
			filtered = append(filtered, m)
		}
	}
	return filtered
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
