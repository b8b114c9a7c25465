package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sergev/pivot/tree"
)

var treeCmd = &cobra.Command{
	Use:   "tree [file]",
	Short: "Print the reduced operator tree",
	Long: `Groups the tokens by delimiter nesting, folds every precedence pass of
the reducer and prints the resulting forest in prefix form, for example
"(+ 2 (* 3 4)) ;".`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTree,
}

func init() {
	rootCmd.AddCommand(treeCmd)
}

func runTree(cmd *cobra.Command, args []string) error {
	src, name, err := readSource(cmd, args)
	if err != nil {
		return err
	}
	nodes, err := tree.Parse(src)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.String()
	}
	fmt.Fprintln(cmd.OutOrStdout(), strings.Join(parts, " "))
	return nil
}
