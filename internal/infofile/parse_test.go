package infofile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidsig/sidsig/internal/diag"
)

func parseInfo(t *testing.T, text string) (*Info, []diag.Diagnostic) {
	t.Helper()
	info, diags, err := Parse(strings.NewReader(text))
	require.NoError(t, err)
	return info, diags
}

func TestParseSingleSection(t *testing.T) {
	info, diags := parseInfo(t, "Mark_Cooksey\nNAME: Mark Cooksey\nAUTHOR: Unknown\n")
	require.Empty(t, diags)
	require.Len(t, info.Entries, 1)
	e, ok := info.ByName("Mark_Cooksey")
	require.True(t, ok)
	name, ok := e.Tag("NAME")
	require.True(t, ok)
	assert.Equal(t, "Mark Cooksey", name.Value)
}

func TestParseCommentContinuation(t *testing.T) {
	info, diags := parseInfo(t, "Foo\nCOMMENT: first line\n  second line\n  third line\n")
	require.Empty(t, diags)
	e, _ := info.ByName("Foo")
	c, ok := e.Tag("COMMENT")
	require.True(t, ok)
	assert.Equal(t, "first line\nsecond line\nthird line", c.Value)
}

// spec.md §4.D: "A blank line or a new section key ends the current
// section." An unindented line after a tag is a new section key, not a
// continuation, even without a blank line in between.
func TestParseUnindentedLineAfterTagStartsNewSection(t *testing.T) {
	info, diags := parseInfo(t, "Foo\nCOMMENT: first line\nBar\nNAME: Bar\n")
	require.Empty(t, diags)
	require.Len(t, info.Entries, 2)
	assert.Equal(t, "Foo", info.Entries[0].Name)
	c, ok := info.Entries[0].Tag("COMMENT")
	require.True(t, ok)
	assert.Equal(t, "first line", c.Value)
	assert.Equal(t, "Bar", info.Entries[1].Name)
}

func TestParseOutOfOrderTagFlagged(t *testing.T) {
	_, diags := parseInfo(t, "Foo\nAUTHOR: X\nNAME: Foo\n")
	require.NotEmpty(t, diags)
	ipe, ok := diags[0].(*diag.InfoParseError)
	require.True(t, ok)
	assert.Equal(t, diag.KindOutOfOrder, ipe.Kind)
}

func TestParseUnknownTagFlagged(t *testing.T) {
	_, diags := parseInfo(t, "Foo\nBOGUS: value\n")
	require.Len(t, diags, 1)
	ipe, ok := diags[0].(*diag.InfoParseError)
	require.True(t, ok)
	assert.Equal(t, diag.KindUnknownTag, ipe.Kind)
}

func TestParseTagLineBeforeAnySectionFlagged(t *testing.T) {
	_, diags := parseInfo(t, "NAME: orphan\n\nFoo\nNAME: Foo\n")
	require.NotEmpty(t, diags)
	ipe, ok := diags[0].(*diag.InfoParseError)
	require.True(t, ok)
	assert.Equal(t, diag.KindOrphanSection, ipe.Kind)
}

func TestParseMultipleSectionsBlankSeparated(t *testing.T) {
	info, diags := parseInfo(t, "Foo\nNAME: Foo\n\nBar\nNAME: Bar\n")
	require.Empty(t, diags)
	require.Len(t, info.Entries, 2)
	assert.Equal(t, "Foo", info.Entries[0].Name)
	assert.Equal(t, "Bar", info.Entries[1].Name)
}

func TestParseCommentsIgnored(t *testing.T) {
	info, diags := parseInfo(t, "; header comment\nFoo\n# another\nNAME: Foo\n")
	require.Empty(t, diags)
	require.Len(t, info.Entries, 1)
}

func TestParseDuplicateSectionNameKeepsFirst(t *testing.T) {
	info, _ := parseInfo(t, "Foo\nNAME: first\n\nFoo\nNAME: second\n")
	require.Len(t, info.Entries, 2)
	e, ok := info.ByName("Foo")
	require.True(t, ok)
	name, _ := e.Tag("NAME")
	assert.Equal(t, "first", name.Value)
}
