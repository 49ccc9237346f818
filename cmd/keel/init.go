// Init command: create and bootstrap the store.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keelworks/keel/pkg/types"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the identity store",
	Long: `Initialize the identity store in the data directory. An empty store
is seeded with one locked core anchor and a small set of illustrative scars
and effects. Running init against an existing store changes nothing.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			return err
		}
		defer backend.Detach()

		scars, err := backend.GetTable(types.ScarsTable)
		if err != nil {
			return err
		}
		scarRows, err := scars.Fetch(nil)
		if err != nil {
			return err
		}

		effects, err := backend.ActiveEffects()
		if err != nil {
			return err
		}

		if flagJSON {
			return printJSON(map[string]any{
				"scars":          len(scarRows),
				"active_effects": len(effects),
			})
		}
		fmt.Printf("store initialized: %d scars, %d active effects\n",
			len(scarRows), len(effects))
		return nil
	},
}
