// Export command: write the 3D belief space document.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keelworks/keel/internal/viz"
)

var flagExportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export active beliefs as a 3D belief space JSON document",
	Long: `Read all current beliefs that have embeddings, project them to three
dimensions with a variance-preserving linear projection, and write a JSON
document with per-belief coordinates and distance from origin.`,
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

		exporter := viz.NewExporter(backend, log)
		if err := exporter.Export(flagExportOut); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", flagExportOut)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&flagExportOut, "out", "o", "belief-space.json", "output file path")
}
