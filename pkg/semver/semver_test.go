package semver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"full version", "1.2.3", "1.2.3", false},
		{"v prefix", "v1.2.3", "1.2.3", false},
		{"major only", "1", "1.0.0", false},
		{"major minor", "1.2", "1.2.0", false},
		{"prerelease", "1.2.3-beta.1", "1.2.3-beta.1", false},
		{"build metadata", "1.2.3+build.5", "1.2.3+build.5", false},
		{"whitespace", "  1.0.0  ", "1.0.0", false},
		{"empty", "", "", true},
		{"garbage", "not-a-version", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Parse(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.String())
		})
	}
}

func TestParseGitSHA(t *testing.T) {
	_, err := Parse("abcdef123456")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGitSHA)

	// 11 and 13 hex chars are not SHAs, just unparseable versions
	_, err = Parse("abcdef12345")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrGitSHA)
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"1.0.0", "1.0.1", -1},
		{"1.1.0", "1.0.9", 1},
		{"2.0.0", "1.9.9", 1},
		{"1.0.0-alpha", "1.0.0", -1},
		{"1.0.0-alpha", "1.0.0-beta", -1},
		{"1.0.0+build.1", "1.0.0+build.2", 0},
		// Prereleases compare as whole strings, so "10" sorts before "9"
		{"1.0.0-10", "1.0.0-9", -1},
		{"1.0.0-alpha.10", "1.0.0-alpha.9", -1},
	}

	for _, tt := range tests {
		t.Run(tt.a+" vs "+tt.b, func(t *testing.T) {
			a, err := Parse(tt.a)
			require.NoError(t, err)
			b, err := Parse(tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, a.Compare(b))
		})
	}
}
