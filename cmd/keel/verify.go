// Verify command: read-only diagnostic report over the store.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Run read-only sanity checks against the store",
	Long: `Open the store, enumerate tables, confirm required columns, and run
representative sanity queries. Verify never mutates the store; it is meant to
be run before deployment.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger()
		if err != nil {
			return err
		}
		defer log.Sync()

		backend, err := attachBackend()
		if err != nil {
			return err
		}
		defer backend.Detach()

		report, err := backend.Verify()
		if err != nil {
			return err
		}

		log.Info("verification complete",
			zap.Bool("ok", report.OK),
			zap.Int("tables", len(report.Tables)),
			zap.Int("current_beliefs", report.CurrentBeliefs))

		if flagJSON {
			return printJSON(report)
		}

		for _, tr := range report.Tables {
			fmt.Printf("%-24s %6d rows", tr.Name, tr.Rows)
			if len(tr.MissingColumns) > 0 {
				fmt.Printf("  MISSING: %v", tr.MissingColumns)
			}
			fmt.Println()
		}
		for _, name := range report.MissingTables {
			fmt.Printf("%-24s MISSING TABLE\n", name)
		}
		fmt.Printf("current beliefs: %d, active effects: %d, hard blocks: %d, capability caps: %d, formative scars: %d\n",
			report.CurrentBeliefs, report.ActiveEffects, report.HardBlocks,
			report.CapabilityCaps, report.FormativeScars)
		if !report.OK {
			return fmt.Errorf("verification failed")
		}
		fmt.Println("ok")
		return nil
	},
}
