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

// Package sigconfig reads and writes the on-disk signature database format
// described in spec.md §4.B/§4.C: a line-oriented grammar of signature names
// followed by one or more lines of hex/wildcard/gap pattern tokens.
package sigconfig

// Version identifies which spelling of the gap token and END convention a
// database uses. Parse detects it; Write is told which to emit.
type Version int

const (
	// V1 is the older format: gaps are spelled "AND" and every pattern,
	// including single-line ones, is closed with an explicit "END" token.
	V1 Version = 1
	// V2 is the newer format: gaps are spelled "&&" and "END" is omitted;
	// one line is one pattern unless merged (see Parse's multi-line rules).
	V2 Version = 2
)

func (v Version) String() string {
	switch v {
	case V1:
		return "v1"
	case V2:
		return "v2"
	default:
		return "unknown"
	}
}
