// Version command for the keel CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keelworks/keel/pkg/keel"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the keel version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("keel", keel.Version)
	},
}
