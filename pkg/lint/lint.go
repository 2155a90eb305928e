// Package lint checks plugin content quality: every skill has a SKILL.md
// with well-formed frontmatter, every relative file reference in the docs
// resolves, and the dependency manifest (when present) is valid.
package lint

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"

	"github.com/plugdep/plugdep/pkg/manifest"
)

const skillFileName = "SKILL.md"

// Finding is a single content problem, located by file path relative to
// the linted directory.
type Finding struct {
	Path    string
	Message string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: %s", f.Path, f.Message)
}

// Metadata is the YAML frontmatter expected at the top of SKILL.md files.
type Metadata struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// mdPathPattern matches markdown file paths mentioned in inline code
// spans, e.g. `reference/commands.md`.
var mdPathPattern = regexp.MustCompile(`^[\w.-]+(?:/[\w.-]+)+\.md$`)

// Linter checks plugin directories.
type Linter struct {
	md goldmark.Markdown
}

// New creates a Linter.
func New() *Linter {
	return &Linter{
		md: goldmark.New(goldmark.WithExtensions(meta.Meta)),
	}
}

// LintPath lints a plugin directory, or every plugin in a marketplace
// directory when the path has a plugins/ subdirectory instead of a plugin
// marker.
func (l *Linter) LintPath(dir string) ([]Finding, error) {
	if manifest.IsPlugin(dir) {
		return l.LintPlugin(dir)
	}

	pluginsDir := filepath.Join(dir, "plugins")
	entries, err := os.ReadDir(pluginsDir)
	if err != nil {
		return nil, errors.Errorf("%s is neither a plugin (no %s/) nor a marketplace (no plugins/)", dir, manifest.MarkerDir)
	}

	var findings []Finding
	var merr *multierror.Error
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		pluginDir := filepath.Join(pluginsDir, entry.Name())
		if !manifest.IsPlugin(pluginDir) {
			continue
		}
		pluginFindings, err := l.LintPlugin(pluginDir)
		if err != nil {
			merr = multierror.Append(merr, errors.Wrapf(err, "failed to lint %s", entry.Name()))
			continue
		}
		for _, f := range pluginFindings {
			f.Path = filepath.Join("plugins", entry.Name(), f.Path)
			findings = append(findings, f)
		}
	}

	return findings, merr.ErrorOrNil()
}

// LintPlugin lints a single plugin directory.
func (l *Linter) LintPlugin(dir string) ([]Finding, error) {
	var findings []Finding

	findings = append(findings, l.lintManifest(dir)...)

	skillFindings, err := l.lintSkills(dir)
	if err != nil {
		return nil, err
	}
	findings = append(findings, skillFindings...)

	linkFindings, err := l.lintMarkdownFiles(dir)
	if err != nil {
		return nil, err
	}
	findings = append(findings, linkFindings...)

	sort.Slice(findings, func(i, j int) bool {
		if findings[i].Path != findings[j].Path {
			return findings[i].Path < findings[j].Path
		}
		return findings[i].Message < findings[j].Message
	})
	return findings, nil
}

func (l *Linter) lintManifest(dir string) []Finding {
	path := manifest.Path(dir)
	content, err := os.ReadFile(path)
	if err != nil {
		// Manifests are optional.
		return nil
	}

	relPath := filepath.Join(manifest.MarkerDir, manifest.FileName)

	problems, err := manifest.ValidateBytes(content)
	if err != nil {
		return []Finding{{Path: relPath, Message: err.Error()}}
	}

	findings := make([]Finding, 0, len(problems))
	for _, p := range problems {
		findings = append(findings, Finding{Path: relPath, Message: p})
	}
	return findings
}

func (l *Linter) lintSkills(dir string) ([]Finding, error) {
	skillsDir := filepath.Join(dir, "skills")
	entries, err := os.ReadDir(skillsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to read skills directory")
	}

	var findings []Finding
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		skillRel := filepath.Join("skills", entry.Name(), skillFileName)
		skillPath := filepath.Join(skillsDir, entry.Name(), skillFileName)

		content, err := os.ReadFile(skillPath)
		if err != nil {
			findings = append(findings, Finding{Path: skillRel, Message: "missing SKILL.md"})
			continue
		}

		md, problem := parseSkillMetadata(content)
		if problem != "" {
			findings = append(findings, Finding{Path: skillRel, Message: problem})
			continue
		}

		if md.Name == "" {
			findings = append(findings, Finding{Path: skillRel, Message: "frontmatter is missing required field: name"})
		} else if md.Name != entry.Name() {
			findings = append(findings, Finding{
				Path:    skillRel,
				Message: fmt.Sprintf("frontmatter name %q does not match skill directory %q", md.Name, entry.Name()),
			})
		}
		if md.Description == "" {
			findings = append(findings, Finding{Path: skillRel, Message: "frontmatter is missing required field: description"})
		}
	}

	return findings, nil
}

// parseSkillMetadata extracts and decodes the YAML frontmatter of a
// SKILL.md file.
func parseSkillMetadata(content []byte) (*Metadata, string) {
	block := frontmatterBlock(string(content))
	if block == "" {
		return nil, "missing frontmatter"
	}

	var md Metadata
	if err := yaml.Unmarshal([]byte(block), &md); err != nil {
		return nil, fmt.Sprintf("malformed frontmatter: %v", err)
	}
	return &md, ""
}

// frontmatterBlock returns the YAML between the leading "---" fences, or
// an empty string when there is no frontmatter.
func frontmatterBlock(content string) string {
	if !strings.HasPrefix(content, "---") {
		return ""
	}

	lines := strings.Split(content, "\n")
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			return strings.Join(lines[1:i], "\n")
		}
	}
	return ""
}

// lintMarkdownFiles checks that every relative link, image, and inline
// markdown path mention in the plugin's docs resolves to an existing
// file.
func (l *Linter) lintMarkdownFiles(dir string) ([]Finding, error) {
	var findings []Finding

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return errors.Wrapf(err, "failed to read %s", path)
		}

		relPath, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		for _, ref := range l.fileReferences(content) {
			target := filepath.Join(filepath.Dir(path), filepath.FromSlash(ref))
			if _, err := os.Stat(target); err != nil {
				findings = append(findings, Finding{
					Path:    relPath,
					Message: fmt.Sprintf("broken reference: %s", ref),
				})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return findings, nil
}

// fileReferences extracts relative file references from a markdown
// document: link and image destinations plus markdown paths mentioned in
// inline code spans.
func (l *Linter) fileReferences(content []byte) []string {
	reader := text.NewReader(content)
	doc := l.md.Parser().Parse(reader, parser.WithContext(parser.NewContext()))

	var refs []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Link:
			if ref, ok := relativeRef(string(node.Destination)); ok {
				refs = append(refs, ref)
			}
		case *ast.Image:
			if ref, ok := relativeRef(string(node.Destination)); ok {
				refs = append(refs, ref)
			}
		case *ast.CodeSpan:
			span := string(node.Text(content))
			if mdPathPattern.MatchString(span) {
				refs = append(refs, span)
			}
		}
		return ast.WalkContinue, nil
	})

	return refs
}

// relativeRef reports whether a link destination is a relative file
// reference worth checking, with any fragment or query stripped.
func relativeRef(dest string) (string, bool) {
	if dest == "" || strings.Contains(dest, "://") {
		return "", false
	}
	if strings.HasPrefix(dest, "#") || strings.HasPrefix(dest, "/") || strings.HasPrefix(dest, "mailto:") {
		return "", false
	}

	if idx := strings.IndexAny(dest, "#?"); idx != -1 {
		dest = dest[:idx]
	}
	if dest == "" {
		return "", false
	}
	return dest, true
}
