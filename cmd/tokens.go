package cmd

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/sergev/pivot/lexer"
	"github.com/sergev/pivot/tree"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens [file]",
	Short: "Print the token stream as a table",
	Long: `Tokenizes the program and prints one row per token: its index, kind,
subkind, delimiter family, value, nesting level and source location.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)
}

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8B5CF6"))

func runTokens(cmd *cobra.Command, args []string) error {
	src, name, err := readSource(cmd, args)
	if err != nil {
		return err
	}
	tokens, err := lexer.Tokenize(src)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if leveled, depth, err := tree.AssignLevels(tokens); err != nil {
		logger.Warn("cannot assign nesting levels", "file", name, "error", err)
	} else {
		tokens = leveled
		logger.Debug("tokenized", "file", name, "tokens", len(tokens), "depth", depth)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "KIND", "SUBKIND", "FAMILY", "VALUE", "LEVEL", "AT").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle()
		})
	for _, tok := range tokens {
		t.Row(tokenRow(tok)...)
	}
	fmt.Fprintln(cmd.OutOrStdout(), t.Render())
	return nil
}

func tokenRow(tok lexer.Token) []string {
	value := tok.Value
	if tok.Kind == lexer.String {
		value = strconv.Quote(value)
	}
	family := ""
	if tok.Family != lexer.NoFamily {
		family = tok.Family.String()
	}
	subkind := ""
	if tok.Subkind != lexer.NoSubkind {
		subkind = tok.Subkind.String()
	}
	return []string{
		strconv.Itoa(tok.Position),
		tok.Kind.String(),
		subkind,
		family,
		value,
		strconv.Itoa(tok.Level),
		tok.Loc.String(),
	}
}
