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
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/sidsig/sidsig/internal/sig"
)

// Write serializes db in the given Version, one signature per block
// separated by a blank line, the structural inverse of Parse. V1 spells the
// gap token "AND" and closes every pattern with "END"; V2 spells it "&&" and
// omits "END", relying on one-pattern-per-line instead (spec.md §4.C).
//
// Write is lossless for a Database produced by Parse: every Pattern becomes
// exactly one line (merging the Fragments back together with the gap
// spelling), so round-tripping through Parse again reproduces the same
// Patterns, though not necessarily the original line breaks within a single
// merged pattern (spec.md §4.C "round-trip").
func Write(w io.Writer, db *sig.Database, version Version) error {
	for i, s := range db.Signatures {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := writeSignature(w, s, version); err != nil {
			return err
		}
	}
	return nil
}

func writeSignature(w io.Writer, s *sig.Signature, version Version) error {
	name := s.Name
	if s.IsSub {
		name = "(" + name + ")"
	}
	// Parse decodes names from Windows-1252, so encode them back the same way.
	name, err := charmap.Windows1252.NewEncoder().String(name)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, name); err != nil {
		return err
	}
	for _, p := range s.Patterns {
		line := writePatternLine(p, version)
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func writePatternLine(p sig.Pattern, version Version) string {
	gap := "AND"
	if version == V2 {
		gap = "&&"
	}
	var fields []string
	for i, f := range p.Fragments {
		if i > 0 {
			fields = append(fields, gap)
		}
		for _, t := range f.Tokens {
			fields = append(fields, tokenField(t))
		}
	}
	if version == V1 {
		fields = append(fields, "END")
	}
	return strings.Join(fields, " ")
}

func tokenField(t sig.Token) string {
	if t.Kind == sig.KindWildcard {
		return "??"
	}
	return fmt.Sprintf("%02X", t.Value)
}
