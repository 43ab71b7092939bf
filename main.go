// Rigforge - Graph-powered PC build compatibility and recommendation engine.
//
// Rigforge turns a raw part catalog into a typed compatibility graph and
// walks users through an ordered, budget-aware component selection where
// each choice narrows the feasible set for every later category.
package main

import (
	"fmt"
	"os"

	"github.com/rigforge/rigforge/cmd"
)

func main() {
	cli := cmd.NewCLI()

	if err := cli.Execute(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
