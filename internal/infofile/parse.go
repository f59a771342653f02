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

package infofile

import (
	"io"
	"regexp"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/sidsig/sidsig/internal/diag"
)

// tagLineRE recognizes "<TAG>: <value>" with optional leading indentation,
// per spec.md §4.D "`^ *<TAG>: <value>$`". The tag name itself is any run of
// letters/underscores so unrecognized tags are still parsed as tags (and
// flagged unknown_tag), rather than being mistaken for a signature name.
var tagLineRE = regexp.MustCompile(`^\s*([A-Za-z_]+):\s?(.*)$`)

// Parse reads a complete info file from r (spec.md §4.D). Parse never aborts
// on a malformed section: diagnostics accumulate and parsing continues, the
// same policy as sigconfig.Parse.
func Parse(r io.Reader) (*Info, []diag.Diagnostic, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, err
	}
	decoded, decErr := charmap.Windows1252.NewDecoder().Bytes(raw)
	if decErr != nil {
		decoded = raw
	}

	var diags []diag.Diagnostic
	info := &Info{byName: make(map[string]*Entry)}
	var cur *Entry
	highestRank := -1

	finalize := func() {
		if cur == nil {
			return
		}
		info.Entries = append(info.Entries, cur)
		if _, dup := info.byName[cur.Name]; !dup {
			info.byName[cur.Name] = cur
		}
		cur = nil
		highestRank = -1
	}

	lines := strings.Split(string(decoded), "\n")
	for i, raw := range lines {
		lineNo := i + 1
		text := strings.TrimRight(strings.TrimRight(raw, "\r"), " \t")
		trimmed := strings.TrimLeft(text, " \t")

		if trimmed == "" {
			finalize()
			continue
		}
		if strings.HasPrefix(trimmed, ";") || strings.HasPrefix(trimmed, "#") {
			continue
		}

		if m := tagLineRE.FindStringSubmatch(text); m != nil {
			tagName, value := m[1], m[2]
			if cur == nil {
				// A tag line with no open section documents nothing; report it
				// the same way the verifier reports a section with no
				// matching signature, since there is no signature name here
				// either.
				diags = append(diags, &diag.InfoParseError{Line: lineNo, Kind: diag.KindOrphanSection, Message: "tag line found before any section"})
				continue
			}
			rank, known := tagRank(tagName)
			if !known {
				diags = append(diags, &diag.InfoParseError{Line: lineNo, Kind: diag.KindUnknownTag, Message: "unrecognized tag " + tagName})
			} else {
				if rank < highestRank {
					diags = append(diags, &diag.InfoParseError{Line: lineNo, Kind: diag.KindOutOfOrder, Message: "tag " + tagName + " is out of canonical order"})
				}
				if rank > highestRank {
					highestRank = rank
				}
			}
			cur.Tags = append(cur.Tags, Tag{Name: tagName, Value: value, Line: lineNo})
			continue
		}

		indented := text != trimmed
		if cur != nil && len(cur.Tags) > 0 && indented {
			// Continuation line: no recognized "TAG:" prefix, its left margin
			// padded with spaces, appended to the value of whichever tag was
			// last opened (COMMENT in the common case, per spec.md §4.D). An
			// *unindented* line never continues a tag, even with open tags:
			// spec.md §4.D ends the section on "a blank line or a new section
			// key", and an unindented line is exactly a new section key.
			last := &cur.Tags[len(cur.Tags)-1]
			if last.Value == "" {
				last.Value = trimmed
			} else {
				last.Value += "\n" + trimmed
			}
			continue
		}

		// Neither a tag line nor an indented continuation: starts a new
		// section.
		finalize()
		cur = &Entry{Name: text, Line: lineNo}
	}
	finalize()

	return info, diags, nil
}
