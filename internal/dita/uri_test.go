package dita

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURI(t *testing.T) {
	assert.Nil(t, ParseURI(""))
	assert.Nil(t, ParseURI("://bad"))

	u := ParseURI("sub/a.dita#frag")
	require.NotNil(t, u)
	assert.Equal(t, "sub/a.dita", u.Path)
	assert.Equal(t, "frag", u.Fragment)
}

func TestResolve(t *testing.T) {
	base := FileURI("/src/root.ditamap")

	assert.Equal(t, "file:///src/a.dita", ResolveString(base, "a.dita").String())
	assert.Equal(t, "file:///src/sub/a.dita", ResolveString(base, "./sub/a.dita").String())
	assert.Equal(t, "file:///a.dita", ResolveString(base, "../a.dita").String())
	assert.Equal(t, "file:///src/a.dita#x", ResolveString(base, "a.dita#x").String())
	assert.Nil(t, ResolveString(base, ""))
}

func TestFragments(t *testing.T) {
	u := ParseURI("file:///src/a.dita#x")
	assert.Equal(t, "file:///src/a.dita", StripFragment(u).String())
	// The original is untouched.
	assert.Equal(t, "x", u.Fragment)

	assert.Equal(t, "file:///src/a.dita#y", SetFragment(StripFragment(u), "y").String())
	assert.Nil(t, StripFragment(nil))
	assert.Nil(t, SetFragment(nil, "y"))
}

func TestNames(t *testing.T) {
	u := ParseURI("file:///src/sub/root.ditamap")
	assert.Equal(t, "root.ditamap", BaseName(u))
	assert.Equal(t, "root", StripExtension(BaseName(u)))
	assert.Equal(t, "root.dita", ReplaceExtension(BaseName(u), ".dita"))
	assert.Equal(t, "noext.dita", ReplaceExtension("noext", ".dita"))
}

func TestRelativePath(t *testing.T) {
	tests := []struct {
		name   string
		base   string
		target string
		want   string
	}{
		{"same dir", "file:///src/stub.ditamap", "file:///src/a.dita", "a.dita"},
		{"subdir", "file:///src/stub.ditamap", "file:///src/sub/a.dita", "sub/a.dita"},
		{"parent", "file:///src/sub/stub.ditamap", "file:///src/a.dita", "../a.dita"},
		{"sibling tree", "file:///src/x/stub.ditamap", "file:///src/y/a.dita", "../y/a.dita"},
		{"fragment kept", "file:///src/stub.ditamap", "file:///src/a.dita#t1", "a.dita#t1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RelativePath(ParseURI(tt.base), ParseURI(tt.target))
			assert.Equal(t, tt.want, got.String())
		})
	}
}
