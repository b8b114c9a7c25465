package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X github.com/sergev/pivot/cmd.Version=...".
var Version = "dev"

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a program",
	Long: `Parses the program with the selected strategy and evaluates it. A
program that defines main runs it after the top-level statements.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProgram,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "pivot %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}
