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

// Package infofile reads the companion metadata file that documents a
// signature database (spec.md §4.D): one section per signature name,
// followed by NAME/AUTHOR/RELEASED/REFERENCE/COMMENT tag lines.
package infofile

// Tag is one recorded "TAG: value" line (or, for COMMENT, the joined
// multi-line value) within a section.
type Tag struct {
	Name  string
	Value string
	Line  int
}

// Entry is one section of the info file: the signature name it documents,
// plus its tags in source order.
type Entry struct {
	Name string
	Tags []Tag
	Line int
}

// Tag looks up a tag by name (exact case) within the entry, returning ok =
// false if the entry carries none with that name.
func (e *Entry) Tag(name string) (Tag, bool) {
	for _, t := range e.Tags {
		if t.Name == name {
			return t, true
		}
	}
	return Tag{}, false
}

// Info is the ordered, indexed result of parsing an info file.
type Info struct {
	Entries []*Entry

	byName map[string]*Entry
}

// ByName looks up a section by its signature name, exact case (spec.md §3:
// "every section key must correspond to a signature name in the database
// (exact case)").
func (i *Info) ByName(name string) (*Entry, bool) {
	e, ok := i.byName[name]
	return e, ok
}

// canonicalTags is the recognized tag order for out-of-order detection.
var canonicalTags = []string{"NAME", "AUTHOR", "RELEASED", "REFERENCE", "COMMENT"}

func tagRank(name string) (int, bool) {
	for i, t := range canonicalTags {
		if t == name {
			return i, true
		}
	}
	return -1, false
}
