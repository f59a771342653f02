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

// Package matcher executes one prepared Signature against one file's bytes
// and reports the leftmost witness chain of fragment offsets, if any (spec
// §4.E). Single-fragment search uses BNDM (Backward Nondeterministic DAWG
// Matching) over a 64-bit mask per byte value; fragments longer than the
// machine word fall back to a direct scan.
package matcher

import "github.com/sidsig/sidsig/internal/sig"

// Result is the outcome of matching one Signature against one file.
type Result struct {
	// Matched is true if any of the signature's patterns matched.
	Matched bool
	// Pattern is the index (within Signature.Patterns) of the pattern that
	// matched, valid only when Matched.
	Pattern int
	// Offsets holds one leftmost match position per fragment of the winning
	// pattern, in fragment order, valid only when Matched.
	Offsets []int
}

// MatchSignature tries every pattern of s against data in source order and
// returns the first that matches (spec §4.E "Multi-pattern per signature").
func MatchSignature(s *sig.Signature, data []byte) Result {
	for pi := range s.Patterns {
		if offsets, ok := MatchPattern(&s.Patterns[pi], data); ok {
			return Result{Matched: true, Pattern: pi, Offsets: offsets}
		}
	}
	return Result{}
}

// MatchPattern finds, for each fragment of p in order, the leftmost
// occurrence starting at or after the end of the previous fragment's match
// (spec §4.E "Multi-fragment search"). It does not backtrack: if a later
// fragment fails to be found, the whole pattern fails, even if an earlier
// fragment had a later occurrence that might have allowed the chain to
// complete. This matches spec's stated contract: a signature is considered
// present if any occurrence chain exists, and the engine only needs one
// witness.
func MatchPattern(p *sig.Pattern, data []byte) ([]int, bool) {
	offsets := make([]int, len(p.Fragments))
	pos := 0
	for i := range p.Fragments {
		f := &p.Fragments[i]
		idx := findFragment(f, data, pos)
		if idx < 0 {
			return nil, false
		}
		offsets[i] = idx
		pos = idx + f.Len()
	}
	return offsets, true
}

// findFragment returns the leftmost index in data, at or after from, where f
// matches, or -1 if there is none.
func findFragment(f *sig.Fragment, data []byte, from int) int {
	prep := f.Prepare()
	if prep.Long {
		return findLinear(prep, data, from)
	}
	return findBNDM(prep, data, from)
}

// findBNDM implements Backward Nondeterministic DAWG Matching for a fragment
// of length m <= 64, searching data[from:] and returning the absolute index
// of the leftmost match, or -1.
func findBNDM(p *sig.PreparedFragment, data []byte, from int) int {
	m := p.Len
	n := len(data) - from
	if from < 0 || n < m {
		return -1
	}
	text := data[from:]

	var allOnes uint64
	if m == 64 {
		allOnes = ^uint64(0)
	} else {
		allOnes = (uint64(1) << uint(m)) - 1
	}
	topBit := uint64(1) << uint(m-1)

	pos := 0
	for pos <= n-m {
		j := m
		last := m
		d := allOnes
		for d != 0 && j > 0 {
			j--
			d &= p.Masks[text[pos+j]]
			if d&topBit != 0 {
				if j > 0 {
					last = j
				} else {
					return from + pos
				}
			}
			d <<= 1
		}
		pos += last
	}
	return -1
}

// findLinear is the fallback search for fragments longer than the machine
// word: a direct left-to-right scan checking every token at every candidate
// start position.
func findLinear(p *sig.PreparedFragment, data []byte, from int) int {
	m := p.Len
	n := len(data)
	for start := from; start+m <= n; start++ {
		if matchesAt(p.Tokens, data, start) {
			return start
		}
	}
	return -1
}

func matchesAt(tokens []sig.Token, data []byte, start int) bool {
	for i, t := range tokens {
		if !t.Matches(data[start+i]) {
			return false
		}
	}
	return true
}
