package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"dbc/internal/driver"
	"dbc/internal/instrument"
	"dbc/internal/ir"
)

var instrumentCmd = &cobra.Command{
	Use:   "instrument [file|dir...]",
	Short: "Print the instrumented form of every contracted method",
	Args:  cobra.ArbitraryArgs,
	RunE:  runInstrument,
}

func init() {
	addCheckFlags(instrumentCmd)
	instrumentCmd.Flags().String("class", "", "only print methods of this class")
}

func runInstrument(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd, args)
	if err != nil {
		return err
	}
	class, _ := cmd.Flags().GetString("class")
	res, err := driver.Check(cmd.Context(), s.paths, driverOptions(s))
	if err != nil {
		return err
	}
	if !res.OK() {
		return report(cmd.OutOrStdout(), cmd.ErrOrStderr(), res, s)
	}
	printed := printInstrumented(cmd.OutOrStdout(), res.Instrumented, class)
	if class != "" && printed == 0 && !s.quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "no instrumented methods in class %s\n", class)
	}
	return report(io.Discard, cmd.ErrOrStderr(), res, s)
}

// printInstrumented writes every rewritten method, in pass order, and
// returns how many it wrote.
func printInstrumented(w io.Writer, res *instrument.Result, class string) int {
	n := 0
	for _, rec := range res.Records {
		if rec.State == instrument.Skipped || (class != "" && rec.Class != class) {
			continue
		}
		if n > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "// %s: %s (pre %d, post %d, inv %d)\n", rec.Name(), rec.State, rec.Pre, rec.Post, rec.Inv)
		fmt.Fprint(w, ir.PrintMethod(rec.Method))
		n++
	}
	return n
}
