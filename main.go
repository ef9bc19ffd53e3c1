package main

import (
	"fmt"
	"os"

	"github.com/tatianab/orb-cult/internal/cli"
)

// Running the module root starts the console; see cmd/cultist for the
// full command set.
func main() {
	root := cli.NewRootCmd()
	if len(os.Args) < 2 {
		root.SetArgs([]string{"play"})
	}
	if err := root.Execute(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
