// Package main provides the keel CLI: lifecycle, belief, scar, verification,
// and export commands over the identity store.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUserError)
	}
}
