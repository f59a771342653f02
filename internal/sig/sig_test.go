package sig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidsig/sidsig/internal/diag"
)

func onePattern(tokens ...Token) []Pattern {
	return []Pattern{{Fragments: []Fragment{{Tokens: tokens}}}}
}

func TestNewSignatureRejectsEmptyName(t *testing.T) {
	_, err := NewSignature("", false, onePattern(ByteToken(0xAA)), 1)
	require.Error(t, err)
	cpe, ok := err.(*diag.ConfigParseError)
	require.True(t, ok)
	assert.Equal(t, diag.KindEmptyName, cpe.Kind)
}

func TestNewSignatureRejectsNameWithSpace(t *testing.T) {
	_, err := NewSignature("Mark Cooksey", false, onePattern(ByteToken(0xAA)), 1)
	require.Error(t, err)
	cpe, ok := err.(*diag.ConfigParseError)
	require.True(t, ok)
	assert.Equal(t, diag.KindNameContainsSpace, cpe.Kind)
}

func TestNewSignatureRejectsNoPatterns(t *testing.T) {
	_, err := NewSignature("Foo", false, nil, 1)
	require.Error(t, err)
}

func TestNewSignatureRejectsEmptyPattern(t *testing.T) {
	_, err := NewSignature("Foo", false, []Pattern{{}}, 1)
	require.Error(t, err)
	cpe, ok := err.(*diag.ConfigParseError)
	require.True(t, ok)
	assert.Equal(t, diag.KindGapAtBoundary, cpe.Kind)
}

func TestNewSignatureRejectsEmptyFragment(t *testing.T) {
	patterns := []Pattern{{Fragments: []Fragment{{}}}}
	_, err := NewSignature("Foo", false, patterns, 1)
	require.Error(t, err)
	cpe, ok := err.(*diag.ConfigParseError)
	require.True(t, ok)
	assert.Equal(t, diag.KindDoubleGap, cpe.Kind)
}

func TestNewSignatureAccepts(t *testing.T) {
	s, err := NewSignature("Foo", true, onePattern(ByteToken(0xAA), WildcardToken), 1)
	require.NoError(t, err)
	assert.Equal(t, "Foo", s.Name)
	assert.True(t, s.IsSub)
}

func TestEqualFoldASCIIOnly(t *testing.T) {
	assert.True(t, EqualFold("Mark_Cooksey", "mark_cooksey"))
	assert.True(t, EqualFold("MARK_COOKSEY", "mark_cooksey"))
	assert.False(t, EqualFold("Mark_Cooksey", "Mark_Cooksey2"))
	assert.False(t, EqualFold("Foo", "foo2"))
}

func TestDatabaseByNameGroupsDuplicates(t *testing.T) {
	s1, _ := NewSignature("G", false, onePattern(ByteToken(1)), 1)
	s2, _ := NewSignature("g", false, onePattern(ByteToken(2)), 2)
	db := &Database{Signatures: []*Signature{s1, s2}}
	assert.Len(t, db.ByName("G"), 2)
}

func TestTokenMatches(t *testing.T) {
	assert.True(t, WildcardToken.Matches(0x00))
	assert.True(t, WildcardToken.Matches(0xFF))
	assert.True(t, ByteToken(0x42).Matches(0x42))
	assert.False(t, ByteToken(0x42).Matches(0x41))
}
