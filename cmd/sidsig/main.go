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

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ogier/pflag"

	"github.com/sidsig/sidsig/internal/diag"
	"github.com/sidsig/sidsig/internal/infofile"
	"github.com/sidsig/sidsig/internal/scan"
	"github.com/sidsig/sidsig/internal/sigconfig"
	"github.com/sidsig/sidsig/internal/verify"
)

const versionString = "sidsig 1.0.0"

type options struct {
	configPath string
	infoPath   string
	mode       scan.Mode
	filter     string
	workers    int
	offsets    bool
	verifyOnly bool
	paths      []string
}

func main() {
	opts, exitCode, done := parseArgs()
	if done {
		os.Exit(exitCode)
	}

	configFile, err := os.Open(opts.configPath)
	if err != nil {
		showError(fmt.Errorf("cannot open config file: %w", err))
		os.Exit(2)
	}
	db, err := sigconfig.Parse(configFile)
	configFile.Close()
	if err != nil {
		showError(fmt.Errorf("cannot read config file: %w", err))
		os.Exit(2)
	}

	var info *infofile.Info
	var infoDiagnostics []diag.Diagnostic
	if opts.infoPath != "" {
		infoFile, err := os.Open(opts.infoPath)
		if err != nil {
			showError(fmt.Errorf("cannot open info file: %w", err))
			os.Exit(2)
		}
		info, infoDiagnostics, err = infofile.Parse(infoFile)
		infoFile.Close()
		if err != nil {
			showError(fmt.Errorf("cannot read info file: %w", err))
			os.Exit(2)
		}
	}

	report := verify.Verify(db, info, infoDiagnostics)
	for _, d := range report.Diagnostics {
		printDiagnostic(opts.configPath, d)
	}

	exitCode = report.ExitCode()
	if opts.verifyOnly {
		os.Exit(exitCode)
	}

	files, err := expandPaths(opts.paths)
	if err != nil {
		showError(err)
		os.Exit(2)
	}

	results := scan.Run(files, db, scan.Options{
		Mode:    opts.mode,
		Filter:  opts.filter,
		Workers: opts.workers,
	}, nil)

	for _, r := range results {
		printResult(r, opts.offsets)
		if r.Outcome == scan.OutcomeIOError {
			if d, ok := r.Err.(diag.Diagnostic); ok {
				printDiagnostic(r.Path, d)
			}
		}
	}
	os.Exit(exitCode)
}

func parseArgs() (opts options, exitCode int, done bool) {
	configFlag := pflag.String("config", "", "path to the signature database")
	infoFlag := pflag.String("info", "", "path to the companion info file")
	modeFlag := pflag.String("mode", "first", "stop at the first matching signature (\"first\") or evaluate all (\"all\")")
	filterFlag := pflag.String("filter", "", "only evaluate the signature with this name")
	workersFlag := pflag.Int("workers", 0, "worker count (0 = number of CPUs)")
	offsetsFlag := pflag.Bool("offsets", false, "print match offsets")
	verifyOnlyFlag := pflag.Bool("verify-only", false, "verify the database and info file, then exit")
	versionFlag := pflag.Bool("version", false, "print the version and exit")
	pflag.Parse()

	if *versionFlag {
		fmt.Println(versionString)
		return opts, 0, true
	}

	opts.configPath = *configFlag
	if opts.configPath == "" {
		opts.configPath = os.Getenv("SIDSIG_CONFIG")
	}
	if opts.configPath == "" {
		showError(errors.New("no config file given (use --config or $SIDSIG_CONFIG)"))
		return opts, 2, true
	}

	opts.infoPath = *infoFlag
	if opts.infoPath == "" {
		opts.infoPath = os.Getenv("SIDSIG_INFO")
	}

	switch *modeFlag {
	case "first":
		opts.mode = scan.ModeFirst
	case "all":
		opts.mode = scan.ModeAll
	default:
		showError(fmt.Errorf("invalid --mode %q (want \"first\" or \"all\")", *modeFlag))
		return opts, 2, true
	}

	opts.filter = *filterFlag
	opts.workers = *workersFlag
	opts.offsets = *offsetsFlag
	opts.verifyOnly = *verifyOnlyFlag
	opts.paths = pflag.Args()

	if !opts.verifyOnly && len(opts.paths) == 0 {
		showError(errors.New("no input files given"))
		return opts, 2, true
	}

	return opts, 0, false
}

// expandPaths resolves each command-line argument to a list of regular
// files, recursing into directories with filepath.WalkDir (the directory
// enumeration spec.md §1 declares out of scope for the core).
func expandPaths(args []string) ([]string, error) {
	var out []string
	for _, a := range args {
		st, err := os.Stat(a)
		if err != nil {
			return nil, err
		}
		if !st.IsDir() {
			out = append(out, a)
			continue
		}
		err = filepath.WalkDir(a, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			out = append(out, p)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func printResult(r scan.Result, withOffsets bool) {
	label := resultLabel(r)
	fields := []string{r.Path, label}
	if withOffsets {
		for _, m := range r.Matches {
			for _, off := range m.Offsets {
				fields = append(fields, fmt.Sprintf("%X", off))
			}
		}
	}
	fmt.Println(strings.Join(fields, "\t"))
}

func resultLabel(r scan.Result) string {
	switch r.Outcome {
	case scan.OutcomeIdentified:
		names := make([]string, len(r.Matches))
		for i, m := range r.Matches {
			names[i] = m.Name
		}
		return strings.Join(names, ",")
	case scan.OutcomeIOError:
		return "io_error"
	case scan.OutcomeSkipped:
		return "scan_skipped"
	default:
		return "unidentified"
	}
}

// printDiagnostic renders one diagnostic using the teacher's ANSI-escape
// convention (main.go's showError), extended here to distinguish
// error/warning/notice severities by color.
func printDiagnostic(file string, d diag.Diagnostic) {
	line := 0
	if cpe, ok := d.(*diag.ConfigParseError); ok {
		line = cpe.Line
	} else if ipe, ok := d.(*diag.InfoParseError); ok {
		line = ipe.Line
	}
	msg := diag.Format(file, line, d)
	switch d.Severity() {
	case diag.SeverityWarning:
		fmt.Fprintf(os.Stderr, "\x1b[33m\x1b[1m>>\x1b[0m %s\n", msg)
	case diag.SeverityNotice:
		fmt.Fprintf(os.Stderr, "\x1b[2m..\x1b[0m %s\n", msg)
	default:
		fmt.Fprintf(os.Stderr, "\x1b[31m\x1b[1m!!\x1b[0m %s\n", msg)
	}
}

func showError(err error) {
	fmt.Fprintf(os.Stderr, "\x1b[31m\x1b[1m!!\x1b[0m %s\n", err.Error())
}
