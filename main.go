package main

import (
	"fmt"
	"os"

	"github.com/sergev/pivot/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "pivot: %v\n", err)
		os.Exit(1)
	}
}
