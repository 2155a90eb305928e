// Package semver parses plugin versions and version constraints.
//
// Plugin versions follow semver but arrive from the wild: marketplace
// metadata may carry a leading "v", omit minor/patch parts, or contain a
// git commit SHA instead of a version. Parsing is backed by
// Masterminds/semver with the quirks handled here.
package semver

import (
	"regexp"
	"strings"

	mmsemver "github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"
)

// ErrGitSHA is returned when a version string is a git commit SHA rather
// than a semantic version.
var ErrGitSHA = errors.New("version string is a git commit SHA")

var gitSHAPattern = regexp.MustCompile(`^[0-9a-f]{12}$`)

// Version is a parsed semantic version.
type Version struct {
	v *mmsemver.Version
}

// Parse parses a version string. Leading whitespace and a "v" prefix are
// tolerated. Missing minor and patch parts default to zero. A 12-character
// hex string is treated as a git commit SHA, not a version.
func Parse(s string) (*Version, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "v"))
	if s == "" {
		return nil, errors.New("empty version string")
	}
	if gitSHAPattern.MatchString(s) {
		return nil, ErrGitSHA
	}

	v, err := mmsemver.NewVersion(s)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid version %q", s)
	}
	return &Version{v: v}, nil
}

// Major returns the major version component.
func (v *Version) Major() uint64 { return v.v.Major() }

// Minor returns the minor version component.
func (v *Version) Minor() uint64 { return v.v.Minor() }

// Patch returns the patch version component.
func (v *Version) Patch() uint64 { return v.v.Patch() }

// Prerelease returns the prerelease identifier, if any.
func (v *Version) Prerelease() string { return v.v.Prerelease() }

// Compare returns -1, 0, or 1 if v is less than, equal to, or greater
// than other. Build metadata is ignored; a prerelease sorts below the
// corresponding release, and prerelease identifiers compare as whole
// strings, lexicographically ("10" sorts before "9").
func (v *Version) Compare(other *Version) int {
	if c := compareUint(v.Major(), other.Major()); c != 0 {
		return c
	}
	if c := compareUint(v.Minor(), other.Minor()); c != 0 {
		return c
	}
	if c := compareUint(v.Patch(), other.Patch()); c != 0 {
		return c
	}

	switch {
	case v.Prerelease() == "" && other.Prerelease() == "":
		return 0
	case v.Prerelease() == "":
		return 1
	case other.Prerelease() == "":
		return -1
	default:
		return strings.Compare(v.Prerelease(), other.Prerelease())
	}
}

func compareUint(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (v *Version) String() string { return v.v.String() }
