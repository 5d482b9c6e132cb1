package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTwoLevels(t *testing.T) {
	res := Parse("$$$A@@@B@@@C$$$D$$$")

	assert.Equal(t, []string{"A@@@B@@@C", "D"}, res.Level1)
	assert.Equal(t, [][]string{{"A", "B", "C"}, {"D"}}, res.Level2)
	assert.Equal(t, []string{"A", "B", "C", "D"}, res.FlatLevel2())
}

func TestParseDropsNoise(t *testing.T) {
	res := Parse("$$$\n  \n$$$ $ @ $$$<svg>\n@@@\n@@@<rect/>\n$$$$")

	assert.Equal(t, []string{"<svg>\n@@@\n@@@<rect/>\n"}, res.Level1)
	assert.Equal(t, [][]string{{"<svg>\n", "<rect/>\n"}}, res.Level2)
}

func TestParseKeepsPieceText(t *testing.T) {
	res := Parse("  <div id=\"a\">  \n$$$\n$('#a').hide();\n")

	assert.Equal(t, []string{"  <div id=\"a\">  \n", "\n$('#a').hide();\n"}, res.Level1)
}

func TestUsable(t *testing.T) {
	assert.False(t, Parse("$$$A@@@B$$$C$$$").Usable())
	assert.True(t, Parse("A@@@B$$$C@@@D$$$E@@@F$$$G@@@H").Usable())
}

func TestParseEmpty(t *testing.T) {
	res := Parse("")
	assert.Empty(t, res.Level1)
	assert.Empty(t, res.Level2)
	assert.False(t, res.Usable())
}
