package manifest

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"

	"github.com/plugdep/plugdep/pkg/semver"
)

//go:embed schema.json
var schemaJSON string

// ValidateBytes checks raw manifest JSON against the embedded schema and
// verifies every declared constraint parses. Returns one message per
// problem found, or an error when the document could not be checked at all.
func ValidateBytes(content []byte) ([]string, error) {
	schemaLoader := gojsonschema.NewStringLoader(schemaJSON)
	documentLoader := gojsonschema.NewBytesLoader(content)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, errors.Wrap(err, "schema validation failed")
	}

	var problems []string
	for _, e := range result.Errors() {
		problems = append(problems, e.String())
	}
	if len(problems) > 0 {
		// Constraint checks below assume the document decoded cleanly.
		return problems, nil
	}

	var m Manifest
	if err := decodeStrict(content, &m); err != nil {
		return nil, err
	}
	return append(problems, m.ConstraintProblems()...), nil
}

func decodeStrict(content []byte, m *Manifest) error {
	dec := json.NewDecoder(bytes.NewReader(content))
	dec.DisallowUnknownFields()
	if err := dec.Decode(m); err != nil {
		return errors.Wrap(err, "failed to decode manifest")
	}
	return nil
}

// ConstraintProblems verifies every constraint string in the manifest
// parses with the supported grammar.
func (m *Manifest) ConstraintProblems() []string {
	var problems []string

	sections := []struct {
		name string
		deps map[string]string
	}{
		{"dependencies", m.Dependencies},
		{"optionalDependencies", m.OptionalDependencies},
		{"systemDependencies", m.SystemDependencies},
		{"optionalSystemDependencies", m.OptionalSystemDependencies},
	}

	for _, section := range sections {
		keys := make([]string, 0, len(section.deps))
		for k := range section.deps {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			if _, err := semver.ParseConstraint(section.deps[k]); err != nil {
				problems = append(problems, fmt.Sprintf("%s.%s: invalid constraint %q", section.name, k, section.deps[k]))
			}
		}
	}

	return problems
}
