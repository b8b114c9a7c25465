package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sergev/pivot/ast"
)

var (
	astFormat string
	astOutput string
)

var astCmd = &cobra.Command{
	Use:   "ast [file]",
	Short: "Print the syntax tree",
	Long: `Parses the program with the selected strategy and prints the typed
syntax tree, either as one s-expression per statement or as YAML.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAST,
}

func init() {
	rootCmd.AddCommand(astCmd)

	astCmd.Flags().StringVarP(&astFormat, "format", "f", "sexpr", "output format: sexpr or yaml")
	astCmd.Flags().StringVarP(&astOutput, "output", "o", "", "output file (default: stdout)")
}

func runAST(cmd *cobra.Command, args []string) error {
	if astFormat != "sexpr" && astFormat != "yaml" {
		return fmt.Errorf("unknown format %q", astFormat)
	}
	prog, _, err := parseSource(cmd, args)
	if err != nil {
		return err
	}

	w, closeOutput, err := createOutput(cmd, astOutput)
	if err != nil {
		return err
	}
	if astFormat == "yaml" {
		data, err := ast.MarshalYAML(prog)
		if err != nil {
			closeOutput()
			return err
		}
		if _, err := w.Write(data); err != nil {
			closeOutput()
			return err
		}
		return closeOutput()
	}
	for _, stmt := range prog.Stmts {
		if _, err := fmt.Fprintln(w, ast.Sprint(stmt)); err != nil {
			closeOutput()
			return err
		}
	}
	return closeOutput()
}
