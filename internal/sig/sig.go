/*******************************************************************************
*
* Copyright 2015 Stefan Majewsky <majewsky@gmx.net>
*
* This file is part of Holo.
*
* Holo is free software: you can redistribute it and/or modify it under the
* terms of the GNU General Public License as published by the Free Software
* Foundation, either version 3 of the License, or (at your option) any later
* version.
*
* Holo is distributed in the hope that it will be useful, but WITHOUT ANY
* WARRANTY; without even the implied warranty of MERCHANTABILITY or FITNESS FOR
* A PARTICULAR PURPOSE. See the GNU General Public License for more details.
*
* You should have received a copy of the GNU General Public License along with
* Holo. If not, see <http://www.gnu.org/licenses/>.
*
*******************************************************************************/

// Package sig holds the in-memory representation of a player-identification
// signature: a name, an ordered list of OR-alternative Patterns, and for each
// Pattern an ordered list of gap-free Fragments. It also carries the
// precomputed form (see Fragment.Prepare) that the matcher searches against.
package sig

import (
	"fmt"
	"strings"

	"github.com/sidsig/sidsig/internal/diag"
)

// TokenKind distinguishes the two kinds of token that can appear inside a
// Fragment. The Gap token never appears here: it is a structural separator
// consumed by the parser while building Fragments, not part of one.
type TokenKind int

const (
	// KindByte is a literal byte value.
	KindByte TokenKind = iota
	// KindWildcard matches any single byte.
	KindWildcard
)

// Token is one element of a Fragment: either a literal byte or a wildcard.
type Token struct {
	Kind  TokenKind
	Value byte // only meaningful when Kind == KindByte
}

// ByteToken builds a literal-byte Token.
func ByteToken(v byte) Token { return Token{Kind: KindByte, Value: v} }

// WildcardToken is the single shared Wildcard token value.
var WildcardToken = Token{Kind: KindWildcard}

// Matches reports whether the token matches the given file byte.
func (t Token) Matches(b byte) bool {
	return t.Kind == KindWildcard || t.Value == b
}

// Fragment is a maximal run of Byte/Wildcard tokens with no Gap between them.
// It is the unit the Matcher searches for.
type Fragment struct {
	Tokens []Token

	prepared *PreparedFragment
}

// Len returns the fixed window length of the fragment.
func (f *Fragment) Len() int { return len(f.Tokens) }

// Pattern is one OR-alternative within a Signature: an ordered, non-empty
// list of Fragments that must be found in the file in order, non-overlapping,
// left to right (see Matcher in internal/matcher).
type Pattern struct {
	Fragments []Fragment
}

// Signature is a named collection of alternative byte Patterns identifying a
// player routine. See spec §3 for the data model invariants enforced by
// NewSignature.
type Signature struct {
	Name     string
	IsSub    bool
	Patterns []Pattern
}

// NewSignature constructs and validates a Signature, enforcing the
// invariants of spec §3: at least one pattern, every pattern has at least one
// fragment, every fragment has at least one token. Line is used only to
// annotate the returned error and may be 0 when there is no source line
// (e.g. in hand-built test fixtures).
func NewSignature(name string, isSub bool, patterns []Pattern, line int) (*Signature, error) {
	if name == "" {
		return nil, &diag.ConfigParseError{Line: line, Kind: diag.KindEmptyName, Message: "signature name must not be empty"}
	}
	if strings.ContainsAny(name, " \t") {
		return nil, &diag.ConfigParseError{Line: line, Kind: diag.KindNameContainsSpace, Message: fmt.Sprintf("signature name %q contains whitespace", name)}
	}
	if len(patterns) == 0 {
		return nil, &diag.ConfigParseError{Line: line, Kind: diag.KindEmptyName, Message: fmt.Sprintf("signature %q has no patterns", name)}
	}
	for _, p := range patterns {
		if len(p.Fragments) == 0 {
			return nil, &diag.ConfigParseError{Line: line, Kind: diag.KindGapAtBoundary, Message: fmt.Sprintf("signature %q has a pattern with no fragments", name)}
		}
		for _, f := range p.Fragments {
			if len(f.Tokens) == 0 {
				return nil, &diag.ConfigParseError{Line: line, Kind: diag.KindDoubleGap, Message: fmt.Sprintf("signature %q has an empty fragment", name)}
			}
		}
	}
	return &Signature{Name: name, IsSub: isSub, Patterns: patterns}, nil
}

// Database is the immutable, ordered result of parsing a signature config
// file: the Signatures in source order, plus the Diagnostics accumulated
// while parsing (component B never aborts on a malformed signature; it skips
// that signature and keeps going, per spec §4.B / §7).
type Database struct {
	Signatures []*Signature
	// Version reports which on-disk format the parser detected (see
	// sigconfig.Version); it is informational only.
	Version int
	// Diagnostics carries every ConfigParseError encountered while parsing,
	// in the order the parser found them (a gap error is found when its
	// pattern is closed, so it can follow diagnostics for later lines), even
	// for signatures that still parsed successfully
	// (e.g. a later duplicate-name check belongs to the verifier, not here).
	Diagnostics []diag.Diagnostic
}

// ByName returns every Signature carrying the given name (case-insensitive,
// ASCII-only fold per spec §9 "Name equality"), since spec §3 allows
// duplicate names ("report this name if any of the grouped signatures
// hits").
func (db *Database) ByName(name string) []*Signature {
	var out []*Signature
	for _, s := range db.Signatures {
		if EqualFold(s.Name, name) {
			out = append(out, s)
		}
	}
	return out
}

// EqualFold compares two signature names the way spec §9 mandates: ASCII
// case folding only, since the file encoding is a single-byte Latin page and
// not normalized Unicode.
func EqualFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		if asciiLower(a[i]) != asciiLower(b[i]) {
			return false
		}
	}
	return true
}

func asciiLower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}
