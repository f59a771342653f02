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

package sigconfig

import (
	"fmt"

	"github.com/sidsig/sidsig/internal/diag"
	"github.com/sidsig/sidsig/internal/sig"
)

// rawKind classifies one recognized pattern-token field. Gap is kept
// separate from sig.Token since it is a structural separator between
// Fragments, not a Fragment member.
type rawKind int

const (
	rawByte rawKind = iota
	rawWildcard
	rawGap
)

// rawToken is one field of a pattern-token line, tagged with the source line
// it came from so a violation that only becomes visible once several lines
// have been merged (see group.go) can still be reported precisely.
type rawToken struct {
	Kind  rawKind
	Value byte
	Line  int
}

func (t rawToken) toToken() sig.Token {
	if t.Kind == rawWildcard {
		return sig.WildcardToken
	}
	return sig.ByteToken(t.Value)
}

// isHex reports whether b is an ASCII hex digit.
func isHex(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func hexVal(b byte) byte {
	switch {
	case b >= '0' && b <= '9':
		return b - '0'
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10
	default:
		return b - 'A' + 10
	}
}

// lexField classifies a single whitespace-separated field of a pattern-token
// line. isEnd reports the literal "END" marker. usesDoubleAmp reports that
// the field was the V2 gap spelling "&&" (as opposed to V1's "AND"), which
// the caller uses to infer which Version the file is written in. err is
// non-nil, and tok the zero value, when field is not a recognized token.
func lexField(field string, line int) (tok rawToken, isEnd bool, usesDoubleAmp bool, err *diag.ConfigParseError) {
	switch field {
	case "??":
		return rawToken{Kind: rawWildcard, Line: line}, false, false, nil
	case "AND":
		return rawToken{Kind: rawGap, Line: line}, false, false, nil
	case "&&":
		return rawToken{Kind: rawGap, Line: line}, false, true, nil
	case "END":
		return rawToken{}, true, false, nil
	}
	if len(field) == 2 {
		if isHex(field[0]) && isHex(field[1]) {
			v := hexVal(field[0])<<4 | hexVal(field[1])
			return rawToken{Kind: rawByte, Value: v, Line: line}, false, false, nil
		}
		return rawToken{}, false, false, &diag.ConfigParseError{
			Line: line, Kind: diag.KindBadHex,
			Message: fmt.Sprintf("%q is not a valid hex byte", field),
		}
	}
	return rawToken{}, false, false, &diag.ConfigParseError{
		Line: line, Kind: diag.KindUnknownToken,
		Message: fmt.Sprintf("%q is not a recognized pattern token", field),
	}
}

// isPatternTokenField reports whether field has the shape of a pattern
// token (a 2-character field, or one of the keyword spellings), which is
// how the parser distinguishes a pattern-token line from a line that starts
// a new signature (spec.md §4.B grammar). This is a shape check, not a
// validity check: a malformed 2-character field like "ZZ" still counts as a
// token field here, so the line stays a pattern line and lexField reports
// bad_hex against that specific field instead of the whole line being
// misread as a new signature name.
func isPatternTokenField(field string) bool {
	switch field {
	case "??", "AND", "&&", "END":
		return true
	}
	return len(field) == 2
}
