package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"dbc/internal/diag"
	"dbc/internal/diagfmt"
	"dbc/internal/driver"
	"dbc/internal/instrument"
)

var errDiagnostics = errors.New("sources have errors")

var checkCmd = &cobra.Command{
	Use:   "check [file|dir...]",
	Short: "Check and instrument contract annotations",
	Long: `Parse every .dbc source under the given paths (or the project's
[build].sources), resolve the clauses of @Requires, @Ensures and @Invariant
and instrument the annotated methods. Diagnostics are printed; the command
fails when any of them is an error.`,
	RunE: runCheck,
}

func init() {
	addCheckFlags(checkCmd)
	checkCmd.Flags().String("format", "pretty", "diagnostics format (pretty|short|json)")
	checkCmd.Flags().Bool("disk-cache", false, "reuse results of unchanged sources across runs")
	checkCmd.Flags().Bool("watch", false, "re-check whenever a source changes")
	checkCmd.Flags().String("ui", "off", "progress UI (auto|on|off)")
}

func addCheckFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("with-notes", false, "include the informational notes of the pass")
	cmd.Flags().Int("jobs", 0, "parallel load/parse workers (0 = GOMAXPROCS)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd, args)
	if err != nil {
		return err
	}
	opts := driverOptions(s)
	if on, _ := cmd.Flags().GetBool("disk-cache"); on {
		cache, err := driver.OpenDiskCache("dbc")
		if err != nil {
			return err
		}
		opts.Cache = cache
	}
	uiFlag, _ := cmd.Flags().GetString("ui")
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return err
	}

	once := func(ctx context.Context) error {
		var res *driver.Result
		var err error
		if shouldUseTUI(mode) && s.format != "json" {
			res, err = runCheckWithUI(ctx, "dbc check", s.paths, opts)
		} else {
			res, err = driver.Check(ctx, s.paths, opts)
		}
		if err != nil {
			return err
		}
		return report(cmd.OutOrStdout(), cmd.ErrOrStderr(), res, s)
	}

	if watch, _ := cmd.Flags().GetBool("watch"); watch {
		return watchAndCheck(cmd.Context(), s.paths, cmd.ErrOrStderr(), once)
	}
	return once(cmd.Context())
}

func driverOptions(s *settings) driver.Options {
	return driver.Options{
		MaxDiagnostics: s.maxDiagnostics,
		Jobs:           s.jobs,
		Notes:          s.notes,
		Timings:        s.timings,
	}
}

// report prints the diagnostics of res and a one-line summary. The
// returned error is non-nil when res has errors.
func report(out, errOut io.Writer, res *driver.Result, s *settings) error {
	res.FileSet.SetBaseDir(s.baseDir())
	res.Bag.Sort()

	switch s.format {
	case "json":
		if err := diagfmt.JSON(out, res.Bag, res.FileSet, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         diagfmt.PathModeRelative,
			IncludeNotes:     s.notes,
		}); err != nil {
			return err
		}
	case "short":
		diagfmt.Short(out, res.Bag, res.FileSet, diagfmt.ShortOpts{PathMode: diagfmt.PathModeRelative, ShowNotes: s.notes})
	default:
		width := 0
		if f, ok := out.(*os.File); ok && isTerminal(f) {
			width = terminalWidth(f)
		}
		diagfmt.Pretty(out, res.Bag, res.FileSet, diagfmt.PrettyOpts{
			Color:     s.color,
			Context:   1,
			PathMode:  diagfmt.PathModeRelative,
			Width:     uint8(min(width, 255)), //nolint:gosec // clamped
			ShowNotes: s.notes,
		})
	}

	if !s.quiet && s.format != "json" {
		fmt.Fprintln(errOut, summaryLine(res))
	}
	if s.timings && res.Timing != nil {
		fmt.Fprint(errOut, res.Timing.Summary())
	}
	if !res.OK() {
		return &exitError{code: driver.ExitFailure, err: errDiagnostics, reported: true}
	}
	return nil
}

func summaryLine(res *driver.Result) string {
	line := fmt.Sprintf("checked %d files: %d instrumented, %d partially instrumented, %d skipped",
		len(res.Paths),
		res.Count(instrument.Instrumented),
		res.Count(instrument.PartiallyInstrumented),
		res.Count(instrument.Skipped))
	if res.Cached {
		line += " (cached)"
	}
	if n := countErrors(res); n > 0 {
		line += fmt.Sprintf(", %d errors", n)
	}
	return line
}

func countErrors(res *driver.Result) int {
	n := 0
	for _, d := range res.Bag.Items() {
		if d.Severity == diag.SevError {
			n++
		}
	}
	return n + res.Bag.Dropped()
}
