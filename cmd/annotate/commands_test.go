package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llmanim/internal/detail"
	"llmanim/internal/keyword"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestTreeFromStdin(t *testing.T) {
	out, err := run(t, "[fish]{orange fins}", "tree", "-")
	require.NoError(t, err)

	var ts keyword.Trees
	require.NoError(t, json.Unmarshal([]byte(out), &ts))
	require.Len(t, ts, 2)
	assert.Equal(t, "fish", ts[0].Keywords[0].Keyword)
	assert.Len(t, ts[1].Keywords, 2)
}

func TestHighlight(t *testing.T) {
	desc := writeFile(t, "desc.txt", "[fish]{orange}")
	segs := writeFile(t, "seg.txt", "<svg>\n$$$\n<circle id=\"fish\"/>\n@@@\n<rect/>\n$$$\n</svg>")
	code := writeFile(t, "code.html", "<svg>\n<circle id=\"fish\"/>\n<rect/>\n</svg>")

	out, err := run(t, "", "highlight", "--description", desc, "--segments", segs, "--code", code, "--word", "fish")
	require.NoError(t, err)
	assert.Contains(t, out, "1. <circle id=\"fish\"/>")
}

func TestDisplay(t *testing.T) {
	out, err := run(t, "A [fish]{orange} in the [sea]{blue}", "display", "-", "--show", "sea")
	require.NoError(t, err)

	var d detail.Display
	require.NoError(t, json.Unmarshal([]byte(out), &d))
	assert.Equal(t, "A [fish] in the [sea]{blue}", d.Plain)
	assert.Equal(t, []string{"orange", "blue"}, d.Hidden)
}

func TestLinkRequiresFlags(t *testing.T) {
	_, err := run(t, "", "link")
	assert.Error(t, err)
}
