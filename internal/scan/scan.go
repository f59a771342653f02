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

// Package scan runs the parallel file scan of spec.md §4.F/§5: a fixed pool
// of workers pulls files from an atomically-indexed queue, matches every
// file against the signature database, and a single drainer goroutine
// emits results in input order through a write-once reorder buffer keyed by
// submission index — the same worker-pool/reorder shape as the sourcegraph
// searcher's concurrentFind, generalized from a mutex-guarded shared slice
// to one write-once cell per file so workers never wait on each other.
package scan

import (
	"os"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/sidsig/sidsig/internal/diag"
	"github.com/sidsig/sidsig/internal/matcher"
	"github.com/sidsig/sidsig/internal/sig"
)

// Mode selects whether a file's scan stops at the first matching signature
// or evaluates every signature in the database.
type Mode int

const (
	// ModeFirst stops at the first signature that matches (spec.md §4.F
	// "Stop at first hit if mode = first").
	ModeFirst Mode = iota
	// ModeAll evaluates every signature, deduping by name in the report.
	ModeAll
)

// Outcome classifies one file's scan result.
type Outcome int

const (
	// OutcomeIdentified means at least one signature matched.
	OutcomeIdentified Outcome = iota
	// OutcomeUnidentified means every (filtered) signature was tried and
	// none matched.
	OutcomeUnidentified
	// OutcomeIOError means the file could not be read.
	OutcomeIOError
	// OutcomeSkipped means the scan was cancelled before this file was
	// processed (spec.md §5 "an in-progress file is recorded as
	// scan_skipped").
	OutcomeSkipped
)

// Match is one signature that matched a file, with the offsets of the
// winning pattern's fragments (spec.md §4.E).
type Match struct {
	Name    string
	Offsets []int
}

// Result is the per-file record spec.md §4.F describes: `{path, outcome}`.
type Result struct {
	Path    string
	Outcome Outcome
	Matches []Match
	Err     error
}

// Options configures one Run call.
type Options struct {
	// Mode selects first-hit-stops vs. evaluate-everything (default ModeFirst).
	Mode Mode
	// Filter, when non-empty, restricts evaluation to signatures whose name
	// equals Filter under spec.md §9 ASCII case folding.
	Filter string
	// Workers is the worker pool size, clamped to [1, runtime.NumCPU()]; 0
	// defaults to runtime.NumCPU().
	Workers int
}

func (o Options) workers() int {
	n := o.Workers
	max := runtime.NumCPU()
	if n <= 0 {
		return max
	}
	if n > max {
		return max
	}
	return n
}

// Run scans every path in paths against db and returns one Result per path,
// in the same order as paths regardless of completion order (spec.md §4.F
// "Ordering"). cancel, if non-nil, is polled between files; once closed (or
// ready to receive), workers stop doing real work and the remaining files
// are recorded as OutcomeSkipped, preserving results already produced.
func Run(paths []string, db *sig.Database, opts Options, cancel <-chan struct{}) []Result {
	n := len(paths)
	results := make([]Result, n)
	slotDone := make([]chan struct{}, n)
	for i := range slotDone {
		slotDone[i] = make(chan struct{})
	}

	var next int64
	claim := func() int {
		idx := int(atomic.AddInt64(&next, 1) - 1)
		if idx >= n {
			return -1
		}
		return idx
	}
	cancelled := func() bool {
		if cancel == nil {
			return false
		}
		select {
		case <-cancel:
			return true
		default:
			return false
		}
	}

	var wg sync.WaitGroup
	for w := 0; w < opts.workers(); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				idx := claim()
				if idx < 0 {
					return
				}
				if cancelled() {
					results[idx] = Result{Path: paths[idx], Outcome: OutcomeSkipped}
				} else {
					results[idx] = scanOne(paths[idx], db, opts)
				}
				close(slotDone[idx])
			}
		}()
	}

	ordered := make([]Result, 0, n)
	drainerDone := make(chan struct{})
	go func() {
		defer close(drainerDone)
		for i := 0; i < n; i++ {
			<-slotDone[i]
			ordered = append(ordered, results[i])
		}
	}()

	wg.Wait()
	<-drainerDone
	return ordered
}

// scanOne reads path and matches it against every (filtered) signature in
// db, honoring Options.Mode's stop-at-first-hit / evaluate-all semantics
// and the duplicate-name dedup rule of spec.md §4.F.
func scanOne(path string, db *sig.Database, opts Options) Result {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{Path: path, Outcome: OutcomeIOError, Err: classifyIOError(path, err)}
	}

	var matches []Match
	reported := make(map[string]bool)
	for _, s := range db.Signatures {
		if opts.Filter != "" && !sig.EqualFold(s.Name, opts.Filter) {
			continue
		}
		key := foldKey(s.Name)
		if opts.Mode == ModeFirst && reported[key] {
			continue
		}
		res := matcher.MatchSignature(s, data)
		if !res.Matched {
			continue
		}
		if !reported[key] {
			matches = append(matches, Match{Name: s.Name, Offsets: res.Offsets})
			reported[key] = true
		}
		if opts.Mode == ModeFirst {
			break
		}
	}

	if len(matches) == 0 {
		return Result{Path: path, Outcome: OutcomeUnidentified}
	}
	return Result{Path: path, Outcome: OutcomeIdentified, Matches: matches}
}

func foldKey(name string) string {
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

func classifyIOError(path string, err error) *diag.FileIOError {
	kind := diag.KindReadFailed
	switch {
	case os.IsNotExist(err):
		kind = diag.KindNotFound
	case os.IsPermission(err):
		kind = diag.KindPermissionDenied
	}
	return &diag.FileIOError{Path: path, Kind: kind, Err: err}
}
