package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"dbc/internal/project"
	"dbc/internal/version"
)

// settings are the effective options of one command: flags win over
// dbc.toml, which wins over the flag defaults.
type settings struct {
	manifest       *project.Manifest
	paths          []string
	maxDiagnostics int
	jobs           int
	notes          bool
	format         string
	color          bool
	quiet          bool
	timings        bool
	entry          string
}

func loadSettings(cmd *cobra.Command, args []string) (*settings, error) {
	start := "."
	if len(args) > 0 {
		start = args[0]
	}
	m, _, err := project.LoadManifest(start)
	if err != nil {
		return nil, err
	}
	if m != nil {
		if err := m.Config.CheckTool(version.Version); err != nil {
			return nil, err
		}
	}

	s := &settings{manifest: m, paths: args}
	if len(s.paths) == 0 {
		s.paths = m.SourcePaths()
	}
	if len(s.paths) == 0 {
		s.paths = []string{"."}
	}

	flags := cmd.Flags()
	if s.quiet, err = flags.GetBool("quiet"); err != nil {
		return nil, err
	}
	if s.timings, err = flags.GetBool("timings"); err != nil {
		return nil, err
	}
	if s.maxDiagnostics, err = flags.GetInt("max-diagnostics"); err != nil {
		return nil, err
	}
	if m != nil && !flags.Changed("max-diagnostics") && m.Config.Diagnostics.Max > 0 {
		s.maxDiagnostics = m.Config.Diagnostics.Max
	}
	if s.color, err = colorEnabled(cmd); err != nil {
		return nil, err
	}

	// command-local flags
	if f := flags.Lookup("jobs"); f != nil {
		s.jobs, _ = flags.GetInt("jobs")
	}
	if m != nil && !flags.Changed("jobs") {
		s.jobs = m.Config.Build.Jobs
	}
	if f := flags.Lookup("with-notes"); f != nil {
		s.notes, _ = flags.GetBool("with-notes")
	}
	if m != nil && !flags.Changed("with-notes") {
		s.notes = s.notes || m.Config.Diagnostics.Notes
	}
	s.format = "pretty"
	if m != nil && m.Config.Diagnostics.Format != "" {
		s.format = m.Config.Diagnostics.Format
	}
	if f := flags.Lookup("format"); f != nil && f.Changed {
		s.format = strings.ToLower(f.Value.String())
	}
	switch s.format {
	case "pretty", "short", "json":
	default:
		return nil, fmt.Errorf("invalid --format %q (expected pretty|short|json)", s.format)
	}
	if f := flags.Lookup("entry"); f != nil {
		s.entry = f.Value.String()
	}
	if s.entry == "" && m != nil {
		s.entry = m.Config.Run.Main
	}
	return s, nil
}

func colorEnabled(cmd *cobra.Command) (bool, error) {
	mode, err := cmd.Flags().GetString("color")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(mode) {
	case "on", "always":
		return true, nil
	case "off", "never":
		return false, nil
	case "auto", "":
		return isTerminal(os.Stdout) && !color.NoColor, nil
	}
	return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
}

// baseDir is where relative diagnostic paths start from.
func (s *settings) baseDir() string {
	if s.manifest != nil {
		return s.manifest.Root
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}
