package annotation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEntitiesAndTokens(t *testing.T) {
	res := Parse("a [fish]{blue, swims} and a [tree]{tall}")

	assert.Equal(t, []string{"fish", "tree"}, res.Entities)
	assert.Equal(t, []string{"blue", "swims", "tall"}, res.Tokens)
	assert.Len(t, res.Annotations, 2)
	assert.Equal(t, "blue, swims", res.Annotations[0].Detail)
}

func TestParseTrimsAndCollapsesDuplicates(t *testing.T) {
	res := Parse("[ fish ]{ orange (polygon) } near [fish]{the polygon, with fins}")

	assert.Equal(t, []string{"fish"}, res.Entities)
	assert.Equal(t, []string{"orange", "polygon", "fins"}, res.Tokens)
}

func TestParseSkipsMalformedMarkup(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{name: "no detail", in: "a [fish] swims", want: nil},
		{name: "unclosed detail", in: "a [fish]{blue swims", want: nil},
		{name: "space before brace", in: "a [fish] {blue}", want: nil},
		{name: "nested bracket", in: "[a [fish]{blue}", want: []string{"fish"}},
		{name: "plain text", in: "just words", want: nil},
		{name: "empty entity", in: "[ ]{blue}", want: nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Parse(tc.in).Entities)
		})
	}
}

func TestDetailTokensDropsStopwords(t *testing.T) {
	got := DetailTokens("a circle with radius 5 and the fill of red")
	assert.Equal(t, []string{"circle", "radius", "5", "fill", "red"}, got)
}

func TestNormalizeBraces(t *testing.T) {
	assert.Equal(t, "[fish]{blue} [sea] {deep}", NormalizeBraces("[fish] {blue} [sea] {deep}"))
}
