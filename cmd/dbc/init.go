package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dbc/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create dbc.toml and an example contract source",
	Long: `Initialize a project in dir (default: the current directory) by
writing dbc.toml and src/stack.dbc. Existing files are never overwritten.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}
		name, _ := cmd.Flags().GetString("name")
		written, err := project.Init(dir, name)
		for _, p := range written {
			fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", p)
		}
		if err != nil {
			return err
		}
		if len(written) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "nothing to do: project files already exist")
		}
		return nil
	},
}

func init() {
	initCmd.Flags().String("name", "", "package name (default: directory name)")
}
