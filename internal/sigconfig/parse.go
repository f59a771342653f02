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
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/sidsig/sidsig/internal/diag"
	"github.com/sidsig/sidsig/internal/sig"
)

// building tracks the signature currently being assembled by Parse.
type building struct {
	name      string
	isSub     bool
	startLine int
	builder   patternBuilder
	diagStart int // len(ec.Diagnostics) when this signature was started
}

// Parse reads a complete signature database from r and returns the parsed
// Signatures plus every diagnostic encountered (spec.md §4.B). Parse never
// aborts on a malformed signature: it skips just that signature and keeps
// going, so a single typo does not hide every other signature in the file.
// The returned error is non-nil only when r itself could not be read.
func Parse(r io.Reader) (*sig.Database, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	decoded, decErr := charmap.Windows1252.NewDecoder().Bytes(raw)
	if decErr != nil {
		decoded = raw
	}

	var ec diag.ErrorCollector
	var sigs []*sig.Signature
	var cur *building
	sawDoubleAmp := false

	finalize := func() {
		if cur == nil {
			return
		}
		patterns := cur.builder.finish(&ec, cur.name)
		s, err := sig.NewSignature(cur.name, cur.isSub, patterns, cur.startLine)
		if err != nil {
			if cpe, ok := err.(*diag.ConfigParseError); ok {
				ec.Add(cpe)
			}
		} else if len(ec.Diagnostics) == cur.diagStart {
			s.Prepare()
			sigs = append(sigs, s)
		}
		cur = nil
	}

	processTokenLine := func(lineNo int, fields []string) {
		var tokens []rawToken
		hasEnd := false
		for _, f := range fields {
			if hasEnd {
				ec.Add(&diag.ConfigParseError{Line: lineNo, Kind: diag.KindUnknownToken, Message: "tokens after END are not allowed"})
				continue
			}
			tok, isEnd, usesAmp, err := lexField(f, lineNo)
			if usesAmp {
				sawDoubleAmp = true
			}
			if err != nil {
				ec.Add(err)
				continue
			}
			if isEnd {
				hasEnd = true
				continue
			}
			tokens = append(tokens, tok)
		}
		cur.builder.addLine(lineNo, tokens, hasEnd, &ec, cur.name)
	}

	for lineNo, text := range splitLines(string(decoded)) {
		lineNo++ // 1-based
		trimmed := strings.TrimLeft(text, " \t")
		if trimmed == "" {
			finalize()
			continue
		}
		if strings.HasPrefix(trimmed, ";") || strings.HasPrefix(trimmed, "#") {
			continue
		}
		fields := strings.Fields(text)
		first := fields[0]
		if !isPatternTokenField(first) {
			finalize()
			name := first
			isSub := false
			if len(name) >= 2 && strings.HasPrefix(name, "(") && strings.HasSuffix(name, ")") {
				name = name[1 : len(name)-1]
				isSub = true
			}
			cur = &building{name: name, isSub: isSub, startLine: lineNo, diagStart: len(ec.Diagnostics)}
			if len(fields) > 1 {
				processTokenLine(lineNo, fields[1:])
			}
			continue
		}
		if cur == nil {
			if first == "END" {
				ec.Add(&diag.ConfigParseError{Line: lineNo, Kind: diag.KindEndOutsideSignature, Message: "END found outside any signature"})
			} else {
				ec.Add(&diag.ConfigParseError{Line: lineNo, Kind: diag.KindEmptyName, Message: "pattern tokens found before any signature name"})
			}
			continue
		}
		processTokenLine(lineNo, fields)
	}
	finalize()

	version := int(V1)
	if sawDoubleAmp {
		version = int(V2)
	}
	return &sig.Database{Signatures: sigs, Version: version, Diagnostics: ec.Diagnostics}, nil
}

// splitLines splits decoded file contents into lines, normalizing CRLF and
// stripping trailing whitespace the way a hand-rolled line scanner for a
// fixed text grammar does (no need for bufio.Scanner's token-size limits
// here, since a signature database's lines are short).
func splitLines(text string) []string {
	raw := strings.Split(text, "\n")
	out := make([]string, len(raw))
	for i, l := range raw {
		l = strings.TrimRight(l, "\r")
		out[i] = strings.TrimRight(l, " \t")
	}
	return out
}
