package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plugdep/plugdep/pkg/registry"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func matchesOfType(matches []Match, typ PatternType) []Match {
	var out []Match
	for _, m := range matches {
		if m.Type == typ {
			out = append(out, m)
		}
	}
	return out
}

func newPluginDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".claude-plugin"), 0o755))
	return dir
}

func TestScanPluginDir(t *testing.T) {
	dir := newPluginDir(t)
	writeFile(t, dir, "skills/review/SKILL.md", `---
name: review
description: Reviews code
---

Run the /utils:table-renderer skill to format output.
This skill depends on utils@my-market plugin.
Make sure `+"`gh`"+` is available, check with gh --version.
`)
	writeFile(t, dir, "scripts/setup.sh", "#!/usr/bin/env bash\nwhich jq\n")

	s := New(nil)
	matches, err := s.ScanPluginDir(context.Background(), dir, "devs", "")
	require.NoError(t, err)
	require.NotEmpty(t, matches)

	for _, m := range matches {
		assert.Equal(t, "devs", m.ScannedPlugin)
		assert.Equal(t, "local", m.ScannedMarketplace)
		assert.Regexp(t, `:\d+:\d+$`, m.Location)
		assert.NotEmpty(t, m.Matched)
		assert.NotEmpty(t, m.Context)
	}

	skillRefs := matchesOfType(matches, TypeSkillReference)
	require.NotEmpty(t, skillRefs)
	var foundSlash bool
	for _, m := range skillRefs {
		if m.Matched == "/utils:table-renderer" {
			foundSlash = true
		}
	}
	assert.True(t, foundSlash, "expected slash-command skill reference")

	systemRefs := matchesOfType(matches, TypeSystemCommand)
	require.NotEmpty(t, systemRefs)
	var foundShebang, foundWhich bool
	for _, m := range systemRefs {
		switch {
		case m.Matched == "#!/usr/bin/env bash":
			foundShebang = true
		case m.Matched == "which jq":
			foundWhich = true
		}
	}
	assert.True(t, foundShebang, "expected shebang match")
	assert.True(t, foundWhich, "expected which match")

	pluginRefs := matchesOfType(matches, TypePluginReference)
	require.NotEmpty(t, pluginRefs)
}

func TestScanSkipsExcludedDirectories(t *testing.T) {
	dir := newPluginDir(t)
	writeFile(t, dir, "node_modules/pkg/README.md", "depends on something plugin")
	writeFile(t, dir, ".git/notes.md", "install foo@bar")
	writeFile(t, dir, "docs/guide.md", "requires the utils plugin")

	s := New(nil)
	matches, err := s.ScanPluginDir(context.Background(), dir, "devs", "local")
	require.NoError(t, err)

	for _, m := range matches {
		assert.NotContains(t, m.Location, "node_modules")
		assert.NotContains(t, m.Location, ".git")
	}
	assert.NotEmpty(t, matches)
}

func TestScanDeduplicatesByPosition(t *testing.T) {
	dir := newPluginDir(t)
	// "utils plugin" matches more than one pluginReference expression at
	// the same position; only one match per (line, col, type) survives.
	writeFile(t, dir, "README.md", "utils plugin\n")

	s := New(nil)
	matches, err := s.ScanPluginDir(context.Background(), dir, "devs", "local")
	require.NoError(t, err)

	type pos struct {
		location string
		typ      PatternType
	}
	seen := map[pos]int{}
	for _, m := range matches {
		seen[pos{m.Location, m.Type}]++
	}
	for p, count := range seen {
		assert.Equal(t, 1, count, "duplicate match at %v", p)
	}
}

func TestScanContextWindow(t *testing.T) {
	dir := newPluginDir(t)
	long := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa which jq bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	writeFile(t, dir, "README.md", long)

	s := New(nil)
	matches, err := s.ScanPluginDir(context.Background(), dir, "devs", "local")
	require.NoError(t, err)

	var found bool
	for _, m := range matches {
		if m.Matched == "which jq" {
			found = true
			assert.True(t, len(m.Context) < len(long))
			assert.Contains(t, m.Context, "which jq")
			assert.Contains(t, m.Context, "...")
		}
	}
	assert.True(t, found)
}

func TestScanMarketplaceDir(t *testing.T) {
	mktDir := t.TempDir()

	pluginA := filepath.Join(mktDir, "plugins", "alpha")
	require.NoError(t, os.MkdirAll(filepath.Join(pluginA, ".claude-plugin"), 0o755))
	writeFile(t, pluginA, "README.md", "requires the core plugin")

	pluginB := filepath.Join(mktDir, "plugins", "beta")
	require.NoError(t, os.MkdirAll(filepath.Join(pluginB, ".claude-plugin"), 0o755))
	writeFile(t, pluginB, "README.md", "install beta@market")

	// Not a plugin: no marker directory.
	writeFile(t, filepath.Join(mktDir, "plugins", "stray"), "README.md", "some plugin")

	s := New(nil)
	matches, err := s.ScanMarketplaceDir(context.Background(), mktDir, "my-market")
	require.NoError(t, err)
	require.NotEmpty(t, matches)

	plugins := map[string]bool{}
	for _, m := range matches {
		assert.Equal(t, "my-market", m.ScannedMarketplace)
		plugins[m.ScannedPlugin] = true
	}
	assert.True(t, plugins["alpha"])
	assert.True(t, plugins["beta"])
	assert.False(t, plugins["stray"])
}

func TestScanMarketplaceDirSinglePlugin(t *testing.T) {
	dir := newPluginDir(t)
	writeFile(t, dir, "README.md", "requires the core plugin")

	s := New(nil)
	matches, err := s.ScanMarketplaceDir(context.Background(), dir, "")
	require.NoError(t, err)
	assert.NotEmpty(t, matches)
}

func TestScanEnabledAndInstalled(t *testing.T) {
	pluginDir := newPluginDir(t)
	writeFile(t, pluginDir, "README.md", "requires the core plugin")

	reg := &registry.Registry{
		Installed: map[string][]registry.InstallInfo{
			"devs@my-market": {{Version: "1.0.0", InstallPath: pluginDir}},
		},
		Enabled:      map[string]bool{"devs@my-market": true},
		Marketplaces: map[string]registry.Marketplace{},
	}

	s := New(reg)

	matches, err := s.ScanEnabled(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, matches)
	assert.Equal(t, "devs", matches[0].ScannedPlugin)
	assert.Equal(t, "my-market", matches[0].ScannedMarketplace)

	matches, err = s.ScanInstalled(context.Background(), "devs")
	require.NoError(t, err)
	assert.NotEmpty(t, matches)

	// Unknown plugins and marketplaces warn and yield no matches
	matches, err = s.ScanInstalled(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, matches)

	matches, err = s.ScanMarketplace(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFilterByType(t *testing.T) {
	matches := []Match{
		{Type: TypeSkillReference},
		{Type: TypeSystemCommand},
		{Type: TypeSkillReference},
	}

	assert.Len(t, FilterByType(matches, TypeSkillReference), 2)
	assert.Len(t, FilterByType(matches, TypeAgentReference), 0)
	assert.Len(t, FilterByType(matches, ""), 3)
}
