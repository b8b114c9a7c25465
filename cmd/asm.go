package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sergev/pivot/codegen"
)

var asmOutput string

var asmCmd = &cobra.Command{
	Use:   "asm [file]",
	Short: "Emit ARM-style assembly",
	Long: `Parses the program and writes an assembly listing. Top-level function
definitions and main are emitted; main prints "." or "F" for every assert.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAsm,
}

func init() {
	rootCmd.AddCommand(asmCmd)

	asmCmd.Flags().StringVarP(&asmOutput, "output", "o", "", "output file (default: codegen.output from config, else stdout)")
}

func runAsm(cmd *cobra.Command, args []string) error {
	prog, name, err := parseSource(cmd, args)
	if err != nil {
		return err
	}
	path := asmOutput
	if path == "" {
		path = cfg.Codegen.Output
	}

	w, closeOutput, err := createOutput(cmd, path)
	if err != nil {
		return err
	}
	if err := codegen.Generate(w, prog); err != nil {
		closeOutput()
		return fmt.Errorf("%s: %w", name, err)
	}
	logger.Debug("assembly written", "file", name, "output", path)
	return closeOutput()
}
