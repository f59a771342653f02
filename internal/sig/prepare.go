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

package sig

// maxBNDMWindow is the machine word size BNDM's bitmask state fits in. A
// fragment with more tokens than this falls back to a linear scan (spec §4.E
// "For fragments longer than the machine word... or linear scan").
const maxBNDMWindow = 64

// PreparedFragment is the matcher-facing precomputed form of a Fragment: for
// each possible byte value, a bitmask over the fragment's positions
// indicating where that byte value would extend a partial match. Built once
// at parse time (see Signature.Prepare), not in the scan hot loop, per spec
// §9 "Fragment prep".
type PreparedFragment struct {
	Len  int
	Long bool // true when Len > maxBNDMWindow; Masks is unset, matcher falls back to a direct scan

	// Masks[b] has bit (Len-1-i) set if the token at fragment position i
	// matches byte value b. Position 0 is the leftmost token of the
	// fragment. Only valid when !Long.
	Masks [256]uint64

	// Tokens is kept alongside Masks for the long-fragment fallback in
	// internal/matcher, which checks each candidate window token by token.
	// The BNDM path works from Masks alone.
	Tokens []Token
}

// Prepare computes and memoizes the PreparedFragment for f. It is idempotent:
// calling it twice returns the same (and not recomputed) result.
func (f *Fragment) Prepare() *PreparedFragment {
	if f.prepared != nil {
		return f.prepared
	}
	m := len(f.Tokens)
	p := &PreparedFragment{Len: m, Tokens: f.Tokens}
	if m > maxBNDMWindow {
		p.Long = true
		f.prepared = p
		return p
	}
	for i, tok := range f.Tokens {
		bit := uint64(1) << uint(m-1-i)
		if tok.Kind == KindWildcard {
			for c := 0; c < 256; c++ {
				p.Masks[c] |= bit
			}
			continue
		}
		p.Masks[tok.Value] |= bit
	}
	f.prepared = p
	return p
}

// Prepare computes the PreparedFragment for every fragment of every pattern
// of the signature. Calling it more than once is harmless (Fragment.Prepare
// memoizes).
func (s *Signature) Prepare() {
	for pi := range s.Patterns {
		frags := s.Patterns[pi].Fragments
		for fi := range frags {
			frags[fi].Prepare()
		}
	}
}
