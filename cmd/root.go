// Package cmd implements the pivot command line.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sergev/pivot/ast"
	"github.com/sergev/pivot/config"
	"github.com/sergev/pivot/frontend"
	"github.com/sergev/pivot/interp"
	"github.com/sergev/pivot/logging"
	"github.com/sergev/pivot/repl"
)

var (
	cfgFile      string
	verbose      bool
	strategyName string

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pivot [file]",
	Short: "Pivot - a small language with two parsers",
	Long: `Pivot parses a small C-like language with either a parser-combinator
grammar or a precedence-folding reducer, then runs it, prints its syntax
tree, or emits ARM-style assembly.

With a file argument the program is run; "-" reads the program from
standard input. Without arguments an interactive shell starts.`,
	Args:              cobra.MaximumNArgs(1),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
	RunE:              runRoot,
}

// Execute runs the command named by the process arguments.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $PIVOT_CONFIG, ./pivot.toml, ~/.config/pivot/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVarP(&strategyName, "strategy", "s", "", "parser strategy: combinator or reducer")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return err
	}
	if strategyName != "" {
		cfg.Parser.Strategy = strategyName
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	logger = logging.New(cfg.Log, cmd.ErrOrStderr())
	logger.Debug("configuration loaded", "file", cfgFile, "strategy", cfg.Parser.Strategy)
	return nil
}

func runRoot(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return runProgram(cmd, args)
	}
	opts := repl.OptionsFromConfig(cfg)
	opts.Logger = logger
	opts.Out = cmd.OutOrStdout()
	opts.Err = cmd.ErrOrStderr()
	return repl.New(opts).Run(cmd.InOrStdin())
}

func runProgram(cmd *cobra.Command, args []string) error {
	src, name, err := readSource(cmd, args)
	if err != nil {
		return err
	}
	logger.Debug("running program", "file", name, "strategy", cfg.Strategy())
	in := interp.New(cmd.OutOrStdout())
	if _, err := interp.EvaluateString(in, src, cfg.Strategy()); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// readSource returns the program named by args, or standard input when it
// is absent or "-".
func readSource(cmd *cobra.Command, args []string) (string, string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), "<stdin>", nil
	}
	src, err := frontend.ReadFile(args[0])
	if err != nil {
		return "", "", err
	}
	return src, args[0], nil
}

func parseSource(cmd *cobra.Command, args []string) (*ast.Block, string, error) {
	src, name, err := readSource(cmd, args)
	if err != nil {
		return nil, "", err
	}
	prog, err := frontend.Parse(src, cfg.Strategy())
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", name, err)
	}
	logger.Debug("parsed", "file", name, "strategy", cfg.Strategy(), "statements", len(prog.Stmts))
	return prog, name, nil
}

// createOutput opens path for writing; an empty path or "-" means the
// command's standard output.
func createOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
