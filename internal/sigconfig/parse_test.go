package sigconfig

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidsig/sidsig/internal/diag"
	"github.com/sidsig/sidsig/internal/sig"
)

func parseString(t *testing.T, text string) *sig.Database {
	t.Helper()
	db, err := Parse(strings.NewReader(text))
	require.NoError(t, err)
	return db
}

func fragmentBytes(f sig.Fragment) []byte {
	out := make([]byte, 0, len(f.Tokens))
	for _, tok := range f.Tokens {
		if tok.Kind == sig.KindWildcard {
			out = append(out, 0)
			continue
		}
		out = append(out, tok.Value)
	}
	return out
}

// scenario 1
func TestParseSingleLiteralPattern(t *testing.T) {
	db := parseString(t, "Foo\nAA BB CC\n")
	require.Len(t, db.Signatures, 1)
	s := db.Signatures[0]
	assert.Equal(t, "Foo", s.Name)
	require.Len(t, s.Patterns, 1)
	require.Len(t, s.Patterns[0].Fragments, 1)
	assert.Equal(t, []byte{0xAA, 0xBB, 0xCC}, fragmentBytes(s.Patterns[0].Fragments[0]))
}

// scenario 3
func TestParseMultiPatternOR(t *testing.T) {
	db := parseString(t, "Mark_Cooksey\n8E ?? ?? B1 ?? F0 ?? E8\nC8 B1 FB 9D ?? ?? C8\n")
	require.Len(t, db.Signatures, 1)
	assert.Len(t, db.Signatures[0].Patterns, 2)
}

// scenario 4
func TestParseGapAND(t *testing.T) {
	db := parseString(t, "P\nAA BB && CC DD\n")
	require.Len(t, db.Signatures, 1)
	p := db.Signatures[0].Patterns[0]
	require.Len(t, p.Fragments, 2)
	assert.Equal(t, []byte{0xAA, 0xBB}, fragmentBytes(p.Fragments[0]))
	assert.Equal(t, []byte{0xCC, 0xDD}, fragmentBytes(p.Fragments[1]))
	assert.Equal(t, int(V2), db.Version)
}

// scenario 5: two lines merge into one pattern because the second bears
// END; the following line (with no END before the next boundary) becomes
// its own, separate pattern.
func TestParseMultiLineWithEND(t *testing.T) {
	db := parseString(t, "G\n85 A2 A9\n9D 00 D4 END\nC8 B1\n")
	require.Len(t, db.Signatures, 1)
	require.Len(t, db.Signatures[0].Patterns, 2)

	p1 := db.Signatures[0].Patterns[0]
	require.Len(t, p1.Fragments, 1)
	assert.Equal(t, []byte{0x85, 0xA2, 0xA9, 0x9D, 0x00, 0xD4}, fragmentBytes(p1.Fragments[0]))

	p2 := db.Signatures[0].Patterns[1]
	require.Len(t, p2.Fragments, 1)
	assert.Equal(t, []byte{0xC8, 0xB1}, fragmentBytes(p2.Fragments[0]))
}

// scenario 6
func TestParseSubSignatureBracket(t *testing.T) {
	db := parseString(t, "(Rob_Hubbard_Digi)\n4A 4A 4A 4A\n")
	require.Len(t, db.Signatures, 1)
	s := db.Signatures[0]
	assert.Equal(t, "Rob_Hubbard_Digi", s.Name)
	assert.True(t, s.IsSub)
}

func TestParseTwoLinesNoBlankBetweenSignaturesStillSeparates(t *testing.T) {
	db := parseString(t, "A\nAA BB\nB\nCC DD\n")
	require.Len(t, db.Signatures, 2)
	assert.Equal(t, "A", db.Signatures[0].Name)
	assert.Equal(t, "B", db.Signatures[1].Name)
}

func TestParseCommentsAndBlankLinesIgnored(t *testing.T) {
	db := parseString(t, "; a comment\n\nFoo\n# another comment\nAA BB\n\n")
	require.Len(t, db.Signatures, 1)
	assert.Equal(t, "Foo", db.Signatures[0].Name)
}

func TestParseBadHexReportsDiagnostic(t *testing.T) {
	db := parseString(t, "Foo\nZZ BB\n")
	require.NotEmpty(t, db.Diagnostics)
}

func TestParseEmptyNameSkipsSignatureButKeepsGoing(t *testing.T) {
	db := parseString(t, " \nAA BB\nFoo\nCC DD\n")
	require.Len(t, db.Signatures, 1)
	assert.Equal(t, "Foo", db.Signatures[0].Name)
	assert.NotEmpty(t, db.Diagnostics)
}

func TestParseEndOutsideSignatureReportsDedicatedKind(t *testing.T) {
	db := parseString(t, " \nEND\nFoo\nAA BB\n")
	require.Len(t, db.Signatures, 1)
	assert.Equal(t, "Foo", db.Signatures[0].Name)
	require.NotEmpty(t, db.Diagnostics)
	cpe, ok := db.Diagnostics[0].(*diag.ConfigParseError)
	require.True(t, ok)
	assert.Equal(t, diag.KindEndOutsideSignature, cpe.Kind)
}

// round-trip: parse(write(db, V2)) reproduces the same signatures.
func TestRoundTripV2(t *testing.T) {
	db := parseString(t, "Foo\nAA BB CC\n\nP\nAA BB && CC DD\n")

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, db, V2))

	db2, err := Parse(&buf)
	require.NoError(t, err)
	require.Len(t, db2.Signatures, len(db.Signatures))
	for i, s := range db.Signatures {
		assert.Equal(t, s.Name, db2.Signatures[i].Name)
		assert.Equal(t, s.IsSub, db2.Signatures[i].IsSub)
		require.Len(t, db2.Signatures[i].Patterns, len(s.Patterns))
		for pi, p := range s.Patterns {
			require.Len(t, db2.Signatures[i].Patterns[pi].Fragments, len(p.Fragments))
			for fi, f := range p.Fragments {
				assert.Equal(t, fragmentBytes(f), fragmentBytes(db2.Signatures[i].Patterns[pi].Fragments[fi]))
			}
		}
	}
}

// down-convert: parse(write(db, V1)) is equivalent under AND/&& normalization.
func TestRoundTripV1Normalizes(t *testing.T) {
	db := parseString(t, "P\nAA BB && CC DD\n")

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, db, V1))
	assert.Contains(t, buf.String(), "AND")
	assert.Contains(t, buf.String(), "END")

	db2, err := Parse(&buf)
	require.NoError(t, err)
	require.Len(t, db2.Signatures, 1)
	p := db2.Signatures[0].Patterns[0]
	require.Len(t, p.Fragments, 2)
	assert.Equal(t, []byte{0xAA, 0xBB}, fragmentBytes(p.Fragments[0]))
	assert.Equal(t, []byte{0xCC, 0xDD}, fragmentBytes(p.Fragments[1]))
}

func TestWriteSubSignatureReproducesParens(t *testing.T) {
	db := parseString(t, "(Rob_Hubbard_Digi)\n4A 4A 4A 4A\n")
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, db, V2))
	assert.True(t, strings.HasPrefix(buf.String(), "(Rob_Hubbard_Digi)\n"))
}
