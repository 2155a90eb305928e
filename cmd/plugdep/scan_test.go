package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plugdep/plugdep/pkg/scanner"
)

func TestMarshalMatches(t *testing.T) {
	t.Run("no matches encodes as empty array", func(t *testing.T) {
		out, err := marshalMatches(nil, false)
		require.NoError(t, err)
		assert.Equal(t, "[]", out)

		out, err = marshalMatches(nil, true)
		require.NoError(t, err)
		assert.Equal(t, "[]", out)
	})

	t.Run("matches encode with original key names", func(t *testing.T) {
		matches := []scanner.Match{
			{
				ScannedPlugin:      "utils",
				ScannedMarketplace: "local",
				Location:           "SKILL.md:3:1",
				Matched:            "/utils:table-renderer",
				Context:            "see /utils:table-renderer for tables",
				Type:               scanner.TypeSkillReference,
			},
		}

		out, err := marshalMatches(matches, false)
		require.NoError(t, err)
		assert.Contains(t, out, `"scannedPlugin":"utils"`)
		assert.Contains(t, out, `"type":"skillReference"`)
	})
}
