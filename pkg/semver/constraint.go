package semver

import (
	"strings"

	"github.com/pkg/errors"
)

// Operator is a version constraint operator.
type Operator string

// Supported constraint operators. A bare version means exact match.
const (
	OpAny   Operator = "*"
	OpExact Operator = "="
	OpGTE   Operator = ">="
	OpLTE   Operator = "<="
	OpGT    Operator = ">"
	OpLT    Operator = "<"
	OpCaret Operator = "^"
	OpTilde Operator = "~"
)

// operator prefixes, longest first so ">=" wins over ">"
var operatorPrefixes = []Operator{OpGTE, OpLTE, OpGT, OpLT, OpCaret, OpTilde, OpExact}

// Constraint is a parsed version constraint such as ">=1.2.0" or "^1.0.0".
type Constraint struct {
	Op      Operator
	Version string // raw version part, empty for "*"
}

// ParseConstraint splits a constraint into its operator and version parts.
// The version part is kept raw; whether it parses is decided at check time
// so that permissive matching can apply.
func ParseConstraint(s string) (Constraint, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Constraint{}, errors.New("empty version constraint")
	}
	if s == string(OpAny) {
		return Constraint{Op: OpAny}, nil
	}

	for _, op := range operatorPrefixes {
		if strings.HasPrefix(s, string(op)) {
			return Constraint{Op: op, Version: strings.TrimSpace(s[len(op):])}, nil
		}
	}
	return Constraint{Op: OpExact, Version: s}, nil
}

func (c Constraint) String() string {
	if c.Op == OpAny {
		return string(OpAny)
	}
	if c.Op == OpExact {
		return c.Version
	}
	return string(c.Op) + c.Version
}

// Check reports whether the given version satisfies the constraint.
// An unparseable constraint version satisfies everything.
func (c Constraint) Check(v *Version) bool {
	if c.Op == OpAny {
		return true
	}

	want, err := Parse(c.Version)
	if err != nil {
		return true
	}

	switch c.Op {
	case OpExact:
		return v.Compare(want) == 0
	case OpGTE:
		return v.Compare(want) >= 0
	case OpLTE:
		return v.Compare(want) <= 0
	case OpGT:
		return v.Compare(want) > 0
	case OpLT:
		return v.Compare(want) < 0
	case OpCaret:
		return caretMatch(v, want)
	case OpTilde:
		return tildeMatch(v, want)
	}
	return true
}

// caretMatch allows changes that do not modify the left-most non-zero part:
// ^1.2.3 means >=1.2.3 <2.0.0, ^0.2.3 means >=0.2.3 <0.3.0, and
// ^0.0.3 means >=0.0.3 <0.0.4.
func caretMatch(v, want *Version) bool {
	if v.Compare(want) < 0 {
		return false
	}
	switch {
	case want.Major() != 0:
		return v.Major() == want.Major()
	case want.Minor() != 0:
		return v.Major() == 0 && v.Minor() == want.Minor()
	default:
		return v.Major() == 0 && v.Minor() == 0 && v.Patch() == want.Patch()
	}
}

// tildeMatch allows patch-level changes: ~1.2.3 means >=1.2.3 <1.3.0.
func tildeMatch(v, want *Version) bool {
	if v.Compare(want) < 0 {
		return false
	}
	return v.Major() == want.Major() && v.Minor() == want.Minor()
}

// Satisfies reports whether an installed version satisfies a constraint
// string. Matching is permissive: if the installed version cannot be
// parsed (a git SHA, for example) the dependency is present and cannot be
// validated further, so it counts as satisfied. The same applies to an
// unparseable constraint.
func Satisfies(installed, constraint string) bool {
	c, err := ParseConstraint(constraint)
	if err != nil || c.Op == OpAny {
		return true
	}

	v, err := Parse(installed)
	if err != nil {
		return true
	}

	return c.Check(v)
}
