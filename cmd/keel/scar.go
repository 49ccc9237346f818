// Scar commands: add, list, status, accept, ack, activate.
package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/keelworks/keel/pkg/types"
)

var (
	flagScarType    string
	flagScarImpact  string
	flagScarContext string
)

var scarCmd = &cobra.Command{
	Use:   "scar",
	Short: "Manage identity scars",
	Long: `Manage identity scars. Scars are permanent: once created they can
never be deleted, and their type and behavioral impact can never change.
Integration status and acceptance level stay updatable.`,
}

var scarAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a new scar",
	Args:  cobra.NoArgs,
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
		id, err := scars.Set("", &types.IdentityScar{
			ScarType:         flagScarType,
			BehavioralImpact: flagScarImpact,
		})
		if err != nil {
			return err
		}

		if flagJSON {
			return printJSON(map[string]string{"scar_id": id})
		}
		fmt.Println(id)
		return nil
	},
}

var scarListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scars",
	Args:  cobra.NoArgs,
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
		rows, err := scars.Fetch(nil)
		if err != nil {
			return err
		}

		if flagJSON {
			return printJSON(rows)
		}
		for _, r := range rows {
			s := r.(*types.IdentityScar)
			fmt.Printf("%s  [%s]  %s (%.1f)  %s\n",
				s.ScarID, s.ScarType, s.IntegrationStatus, s.AcceptanceLevel, s.BehavioralImpact)
		}
		return nil
	},
}

var scarStatusCmd = &cobra.Command{
	Use:   "status <scar-id> <status>",
	Short: "Update a scar's integration status",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateScar(args[0], func(s *types.IdentityScar) error {
			return s.SetIntegrationStatus(args[1])
		})
	},
}

var scarAcceptCmd = &cobra.Command{
	Use:   "accept <scar-id> <level>",
	Short: "Update a scar's acceptance level (0.0-1.0)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("parse acceptance level: %w", err)
		}
		return updateScar(args[0], func(s *types.IdentityScar) error {
			return s.SetAcceptance(level)
		})
	},
}

var scarAckCmd = &cobra.Command{
	Use:   "ack <scar-id>",
	Short: "Record that the scar was consciously recognized",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			return err
		}
		defer backend.Detach()

		acks, err := backend.GetTable(types.AcksTable)
		if err != nil {
			return err
		}
		id, err := acks.Set("", &types.ScarAcknowledgement{
			ScarID:  args[0],
			Context: flagScarContext,
		})
		if err != nil {
			return err
		}
		fmt.Println(id)
		return nil
	},
}

var scarActivateCmd = &cobra.Command{
	Use:   "activate <scar-id>",
	Short: "Record that the scar was triggered",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			return err
		}
		defer backend.Detach()

		activations, err := backend.GetTable(types.ActivationsTable)
		if err != nil {
			return err
		}
		id, err := activations.Set("", &types.ScarActivation{
			ScarID:         args[0],
			TriggerContext: flagScarContext,
		})
		if err != nil {
			return err
		}
		fmt.Println(id)
		return nil
	},
}

// updateScar loads a scar, applies mutate, and writes it back through the
// guarded update path.
func updateScar(id string, mutate func(*types.IdentityScar) error) error {
	backend, err := attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()

	scars, err := backend.GetTable(types.ScarsTable)
	if err != nil {
		return err
	}
	got, err := scars.Get(id)
	if err != nil {
		return err
	}
	scar := got.(*types.IdentityScar)
	if err := mutate(scar); err != nil {
		return err
	}
	if _, err := scars.Set(id, scar); err != nil {
		return err
	}
	fmt.Println("ok")
	return nil
}

func init() {
	scarAddCmd.Flags().StringVar(&flagScarType, "type", "", "scar type (required)")
	scarAddCmd.Flags().StringVar(&flagScarImpact, "impact", "", "behavioral impact (required)")
	scarAddCmd.MarkFlagRequired("type")
	scarAddCmd.MarkFlagRequired("impact")
	scarAckCmd.Flags().StringVar(&flagScarContext, "context", "", "what prompted the acknowledgement")
	scarActivateCmd.Flags().StringVar(&flagScarContext, "context", "", "what triggered the scar")

	scarCmd.AddCommand(scarAddCmd)
	scarCmd.AddCommand(scarListCmd)
	scarCmd.AddCommand(scarStatusCmd)
	scarCmd.AddCommand(scarAcceptCmd)
	scarCmd.AddCommand(scarAckCmd)
	scarCmd.AddCommand(scarActivateCmd)
}
