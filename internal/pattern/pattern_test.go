package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		pattern     string
		patternType Type
		wantType    Type
		wantErr     bool
	}{
		{name: "glob", pattern: "tmp-*", patternType: Glob, wantType: Glob},
		{name: "regex", pattern: `^sku\d+$`, patternType: Regex, wantType: Regex},
		{name: "invalid regex", pattern: "[unclosed", patternType: Regex, wantErr: true},
		{name: "invalid glob", pattern: "[unclosed", patternType: Glob, wantErr: true},
		{name: "auto glob", pattern: "n/a", patternType: Auto, wantType: Glob},
		{name: "auto regex", pattern: `^-+$`, patternType: Auto, wantType: Regex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(tt.patternType, tt.pattern)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, m.Type())
			assert.Equal(t, tt.pattern, m.Pattern())
		})
	}
}

func TestMatch(t *testing.T) {
	glob := MustNew(Glob, "Sans*", &Options{CaseInsensitive: true})
	assert.True(t, glob.Match("sans nom"))
	assert.False(t, glob.Match("guitare"))

	anchored := MustNew(Regex, `\d+`, &Options{Anchored: true})
	assert.True(t, anchored.Match("123"))
	assert.False(t, anchored.Match("abc123"))
}

func TestSet(t *testing.T) {
	s, err := NewSet([]string{"a*", "b?"}, Glob)
	require.NoError(t, err)
	assert.True(t, s.Match("abc"))
	assert.True(t, s.Match("bx"))
	assert.False(t, s.Match("bxx"))
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []string{"a*", "b?"}, s.Patterns())

	var nilSet *Set
	assert.False(t, nilSet.Match("a"))
}

func TestPlaceholders(t *testing.T) {
	names := MustPlaceholders(DefaultPlaceholderNames)
	for _, v := range []string{"Sans Nom", "  produit   sans nom ", "N/A", "-", "---", "0", "???", "Untitled"} {
		assert.True(t, names.Match(v), v)
	}
	for _, v := range []string{"", "Guitare folk", "Capo 6 cordes", "Sans nom de marque"} {
		assert.False(t, names.Match(v), v)
	}

	skus := MustPlaceholders(DefaultPlaceholderSKUs)
	assert.True(t, skus.Match("TMP-0001"))
	assert.True(t, skus.Match("none"))
	assert.False(t, skus.Match("ABC123"))

	_, err := NewPlaceholders([]string{"(unclosed"})
	assert.Error(t, err)
}
