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

// Package verify runs the structural checks of spec.md §4.G across a parsed
// signature database and its optional companion info file.
package verify

import (
	"fmt"

	"github.com/sidsig/sidsig/internal/diag"
	"github.com/sidsig/sidsig/internal/infofile"
	"github.com/sidsig/sidsig/internal/sig"
)

// minRecommendedNameLength is the "at least three bytes recommended" rule of
// spec.md §3/§9: a shorter name is a notice, not an error (§9 Open
// Questions: the upstream documentation only recommends it).
const minRecommendedNameLength = 3

// Report is the outcome of one Verify call: every diagnostic collected while
// parsing the database and info file, plus those the checks below add.
type Report struct {
	Diagnostics []diag.Diagnostic
}

// HasErrors reports whether any collected diagnostic is SeverityError.
func (r Report) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Severity() == diag.SeverityError {
			return true
		}
	}
	return false
}

// ExitCode implements the exit-code mapping of spec.md §6: 1 if verification
// found any error-class diagnostic, 0 otherwise. The caller (cmd/sidsig)
// is responsible for exit code 2, which covers argument/I/O failures that
// never reach Verify.
func (r Report) ExitCode() int {
	if r.HasErrors() {
		return 1
	}
	return 0
}

// Verify checks db (and info, if not nil) per spec.md §4.G. It carries
// forward every diagnostic already collected while parsing db and info (bad
// hex, malformed tokens, unknown/out-of-order info tags) and adds its own:
// short names, duplicate names, and info sections with no matching
// signature. infoDiagnostics is whatever infofile.Parse returned alongside
// info; passing it through here (rather than discarding it) is what makes
// the unknown_tag/out_of_order_tag checks of spec.md §4.G reachable.
func Verify(db *sig.Database, info *infofile.Info, infoDiagnostics []diag.Diagnostic) Report {
	var ec diag.ErrorCollector
	for _, d := range db.Diagnostics {
		ec.Add(d)
	}
	for _, d := range infoDiagnostics {
		ec.Add(d)
	}

	checkNameLengths(db, &ec)
	checkDuplicateNames(db, &ec)

	if info != nil {
		checkOrphanSections(db, info, &ec)
	}

	return Report{Diagnostics: ec.Diagnostics}
}

func checkNameLengths(db *sig.Database, ec *diag.ErrorCollector) {
	for _, s := range db.Signatures {
		if len(s.Name) < minRecommendedNameLength {
			ec.Add(&shortNameNotice{Name: s.Name, Min: minRecommendedNameLength})
		}
	}
}

// shortNameNotice reports a signature name shorter than the recommended
// minimum. spec.md §9 Open Questions is explicit that the upstream
// documentation only *recommends* three bytes, so this is a notice like
// duplicateNameNotice, not a diag.ConfigParseError (which is always
// SeverityError and would wrongly fail verification over a recommendation).
type shortNameNotice struct {
	Name string
	Min  int
}

func (n *shortNameNotice) Error() string {
	return fmt.Sprintf("signature name %q is shorter than the recommended %d bytes", n.Name, n.Min)
}

func (n *shortNameNotice) Severity() diag.Severity { return diag.SeverityNotice }

// checkDuplicateNames reports every name shared by more than one signature,
// once per name, as a notice (spec.md §3: duplicates are permitted, the
// Verifier only warns).
func checkDuplicateNames(db *sig.Database, ec *diag.ErrorCollector) {
	seen := make(map[string]bool)
	reported := make(map[string]bool)
	for _, s := range db.Signatures {
		key := normalizedKey(s.Name)
		if seen[key] && !reported[key] {
			ec.Add(&duplicateNameNotice{Name: s.Name})
			reported[key] = true
		}
		seen[key] = true
	}
}

func normalizedKey(name string) string {
	buf := make([]byte, len(name))
	for i := 0; i < len(name); i++ {
		b := name[i]
		if b >= 'A' && b <= 'Z' {
			b += 'a' - 'A'
		}
		buf[i] = b
	}
	return string(buf)
}

// checkOrphanSections reports every info-file section whose name has no
// matching signature in db (spec.md §4.G "Info-file section keys with no
// matching signature"), as a warning (diag.KindOrphanSection).
func checkOrphanSections(db *sig.Database, info *infofile.Info, ec *diag.ErrorCollector) {
	names := make(map[string]bool, len(db.Signatures))
	for _, s := range db.Signatures {
		names[s.Name] = true
	}
	for _, e := range info.Entries {
		if !names[e.Name] {
			ec.Add(&diag.InfoParseError{
				Line:    e.Line,
				Kind:    diag.KindOrphanSection,
				Message: fmt.Sprintf("info section %q has no matching signature", e.Name),
			})
		}
	}
}

// duplicateNameNotice is a standalone Diagnostic (not one of diag's three
// named error kinds, since duplicate-name detection spans the whole
// database rather than one line) reporting that more than one signature
// shares a name.
type duplicateNameNotice struct {
	Name string
}

func (n *duplicateNameNotice) Error() string {
	return fmt.Sprintf("signature name %q is used by more than one signature", n.Name)
}

func (n *duplicateNameNotice) Severity() diag.Severity { return diag.SeverityNotice }
