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
	"github.com/sidsig/sidsig/internal/diag"
	"github.com/sidsig/sidsig/internal/sig"
)

// lineGroup is the unit the multi-line merging rule (spec.md §4.B
// "Multi-line semantics") operates on: the raw tokens contributed by one
// source line, kept separate from its neighbours until either an END token
// merges the group with the lines before it, or a signature/file boundary is
// reached and the group is closed on its own.
type lineGroup struct {
	Line   int
	Tokens []rawToken
}

// patternBuilder accumulates the lines of one signature, resolving the
// "absence of END separates lines, presence of END merges them" rule: a run
// of lines with no END stays as one lineGroup per line until either an
// END-bearing line arrives (the whole pending run plus that line become ONE
// pattern) or a boundary (blank line, new signature, EOF) arrives, at which
// point every still-pending lineGroup becomes its OWN one-line pattern.
type patternBuilder struct {
	pending  []lineGroup
	patterns []sig.Pattern
}

// addLine processes one pattern-token line (fields already lexed into raw
// tokens, END stripped from hasEnd). It never reports an error itself; gap
// placement is validated once a group's tokens are actually turned into a
// Pattern (see tokensToPattern), since a fragment boundary can only be judged once
// we know the full token run that will end up in one pattern.
func (b *patternBuilder) addLine(line int, tokens []rawToken, hasEnd bool, ec *diag.ErrorCollector, sigName string) {
	b.pending = append(b.pending, lineGroup{Line: line, Tokens: tokens})
	if hasEnd {
		b.flushMerged(ec, sigName)
	}
}

// flushMerged concatenates every still-pending lineGroup's tokens into a
// single Pattern (the "END merges lines" case) and clears the pending run.
func (b *patternBuilder) flushMerged(ec *diag.ErrorCollector, sigName string) {
	if len(b.pending) == 0 {
		return
	}
	var all []rawToken
	firstLine := b.pending[0].Line
	for _, g := range b.pending {
		all = append(all, g.Tokens...)
	}
	b.pending = nil
	if p, ok := tokensToPattern(all, firstLine, ec, sigName); ok {
		b.patterns = append(b.patterns, p)
	}
}

// flushSeparate closes out every still-pending lineGroup as its own
// one-line Pattern (the "absence of END separates lines" case), invoked when
// a blank line, a new signature, or EOF ends the run without ever seeing an
// END token.
func (b *patternBuilder) flushSeparate(ec *diag.ErrorCollector, sigName string) {
	for _, g := range b.pending {
		if p, ok := tokensToPattern(g.Tokens, g.Line, ec, sigName); ok {
			b.patterns = append(b.patterns, p)
		}
	}
	b.pending = nil
}

// finish closes any still-open run (always as separate one-line patterns,
// since reaching EOF/blank/new-signature without an END is exactly the
// separating case) and returns the accumulated patterns.
func (b *patternBuilder) finish(ec *diag.ErrorCollector, sigName string) []sig.Pattern {
	b.flushSeparate(ec, sigName)
	return b.patterns
}

// tokensToPattern splits a flat run of raw tokens into gap-free Fragments,
// reporting gap_at_boundary for a leading/trailing gap and double_gap for
// two adjacent gaps (spec.md §3 "no leading/trailing/doubled gap").
func tokensToPattern(tokens []rawToken, line int, ec *diag.ErrorCollector, sigName string) (sig.Pattern, bool) {
	if len(tokens) == 0 {
		return sig.Pattern{}, false
	}
	if tokens[0].Kind == rawGap {
		ec.Add(&diag.ConfigParseError{Line: tokens[0].Line, Kind: diag.KindGapAtBoundary, Message: "pattern cannot start with a gap"})
		return sig.Pattern{}, false
	}
	if tokens[len(tokens)-1].Kind == rawGap {
		last := tokens[len(tokens)-1]
		ec.Add(&diag.ConfigParseError{Line: last.Line, Kind: diag.KindGapAtBoundary, Message: "pattern cannot end with a gap"})
		return sig.Pattern{}, false
	}

	var fragments []sig.Fragment
	var cur []sig.Token
	for i, t := range tokens {
		if t.Kind == rawGap {
			if i > 0 && tokens[i-1].Kind == rawGap {
				ec.Add(&diag.ConfigParseError{Line: t.Line, Kind: diag.KindDoubleGap, Message: "two consecutive gaps are not allowed"})
				return sig.Pattern{}, false
			}
			fragments = append(fragments, sig.Fragment{Tokens: cur})
			cur = nil
			continue
		}
		cur = append(cur, t.toToken())
	}
	fragments = append(fragments, sig.Fragment{Tokens: cur})
	return sig.Pattern{Fragments: fragments}, true
}
