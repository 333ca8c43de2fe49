package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"dbc/internal/contract"
	"dbc/internal/driver"
	"dbc/internal/vm"
)

var runCmd = &cobra.Command{
	Use:   "run [file|dir...]",
	Short: "Check, instrument and run a static entry method",
	Long: `Run executes the static zero-argument method named by --entry (or
[run].main in dbc.toml) on the instrumented program. Exit code 3 means a
contract violation escaped the entry, 4 an internal engine error.`,
	RunE: runRun,
}

func init() {
	addCheckFlags(runCmd)
	runCmd.Flags().String("entry", "", "entry method as Class.method")
	runCmd.Flags().Int("max-depth", 1024, "call depth limit")
}

func runRun(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd, args)
	if err != nil {
		return err
	}
	if s.entry == "" {
		return errors.New("no entry method: pass --entry Class.method or set [run].main")
	}
	depth, _ := cmd.Flags().GetInt("max-depth")

	res, err := driver.Check(cmd.Context(), s.paths, driverOptions(s))
	if err != nil {
		return err
	}
	if !res.OK() {
		return report(cmd.OutOrStdout(), cmd.ErrOrStderr(), res, s)
	}

	v, err := driver.Run(cmd.Context(), res, s.entry, vm.Options{Out: cmd.OutOrStdout(), MaxDepth: depth})
	if err != nil {
		describeFailure(cmd.ErrOrStderr(), err, s.color)
		return &exitError{code: driver.ExitCode(err), err: err, reported: true}
	}
	if !s.quiet && v.Kind != vm.VKVoid {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s returned %s\n", s.entry, v)
	}
	return nil
}

// describeFailure prints the outcome of a failed run: violations with
// their kind and message, everything else as is.
func describeFailure(w io.Writer, err error, useColor bool) {
	red := color.New(color.FgRed, color.Bold)
	if useColor {
		red.EnableColor()
	} else {
		red.DisableColor()
	}
	var (
		violation *contract.ConditionViolation
		internal  *contract.InternalError
	)
	switch {
	case errors.As(err, &violation):
		fmt.Fprintf(w, "%s\n  %s\n", red.Sprint(violation.Kind.String()+" violation:"), violation.Message)
	case errors.As(err, &internal):
		fmt.Fprintf(w, "%s %s\n", red.Sprint("internal error:"), internal.Msg)
	default:
		fmt.Fprintf(w, "%s %v\n", red.Sprint("error:"), err)
	}
}
