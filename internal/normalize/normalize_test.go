package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"trim and case", "  Marie Dupont ", "marie dupont"},
		{"accents", "Éloïse Gérard", "eloise gerard"},
		{"inner whitespace", "jean \t  pierre\nmartin", "jean pierre martin"},
		{"hyphen kept", "Marie-Dupont", "marie-dupont"},
		{"decomposed input", "Café", "cafe"},
		{"only spaces", "   ", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.in))
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{"", "  Marie Dupont ", "ÀÉÎÕÜ  ñ", "İstanbul", "Straße", "Ǆemal", "ä́b", "  x  y  "}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal("  marie dupont ", "Marie Dupont"))
	assert.True(t, Equal("Hélène", "helene"))
	assert.False(t, Equal("Marie-Dupont", "Marie Dupont"))
}

func TestFirstToken(t *testing.T) {
	assert.Equal(t, "alex", FirstToken("  Alex   Martin"))
	assert.Equal(t, "zoe", FirstToken("Zoé"))
	assert.Equal(t, "", FirstToken("   "))
}
