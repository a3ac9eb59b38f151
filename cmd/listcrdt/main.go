// Command listcrdt is the thin CLI wrapper spec.md explicitly treats as an
// external collaborator: it loads/saves the container format (package
// encoding) and drives a branch.Branch, but holds none of the CRDT logic
// itself.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "listcrdt: %v\n", err)
		os.Exit(1)
	}
}
