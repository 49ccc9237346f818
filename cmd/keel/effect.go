// Effect commands: add, list, views.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keelworks/keel/pkg/types"
)

var (
	flagEffectClass     string
	flagEffectCap       string
	flagEffectCapValue  float64
	flagEffectPermanent bool
	flagEffectView      string
)

var effectCmd = &cobra.Command{
	Use:   "effect",
	Short: "Manage scar effects and query effect views",
}

var effectAddCmd = &cobra.Command{
	Use:   "add <scar-id> <description>",
	Short: "Attach a behavioral effect to a scar",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			return err
		}
		defer backend.Detach()

		effects, err := backend.GetTable(types.EffectsTable)
		if err != nil {
			return err
		}
		id, err := effects.Set("", &types.ScarEffect{
			ScarID:      args[0],
			Description: args[1],
			EffectClass: flagEffectClass,
			Capability:  flagEffectCap,
			CapValue:    flagEffectCapValue,
			IsPermanent: flagEffectPermanent,
			IsActive:    true,
		})
		if err != nil {
			return err
		}

		if flagJSON {
			return printJSON(map[string]string{"effect_id": id})
		}
		fmt.Println(id)
		return nil
	},
}

var effectViewCmd = &cobra.Command{
	Use:   "view",
	Short: "Show a derived effect view (active, blocks, caps, formative)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			return err
		}
		defer backend.Detach()

		switch flagEffectView {
		case "active":
			rows, err := backend.ActiveEffects()
			if err != nil {
				return err
			}
			return printEffectViews(rows)
		case "blocks":
			rows, err := backend.HardBlocks()
			if err != nil {
				return err
			}
			return printEffectViews(rows)
		case "caps":
			rows, err := backend.CapabilityCaps()
			if err != nil {
				return err
			}
			if flagJSON {
				return printJSON(rows)
			}
			for _, c := range rows {
				fmt.Printf("%-24s <= %.2f  (effect %s)\n", c.Capability, c.CapValue, c.EffectID)
			}
			return nil
		case "formative":
			rows, err := backend.FormativeScars()
			if err != nil {
				return err
			}
			if flagJSON {
				return printJSON(rows)
			}
			for _, f := range rows {
				fmt.Printf("%s  [%s]  %d event(s), earliest %s\n",
					f.ScarID, f.ScarType, f.EventCount, f.EarliestAt.Format("2006-01-02"))
			}
			return nil
		default:
			return fmt.Errorf("unknown view %q (want active, blocks, caps, or formative)", flagEffectView)
		}
	},
}

func printEffectViews(rows []types.EffectView) error {
	if flagJSON {
		return printJSON(rows)
	}
	for _, v := range rows {
		marker := " "
		if v.IsPermanent {
			marker = "*"
		}
		fmt.Printf("%s %s  [%s/%s]  %s\n", marker, v.EffectID, v.ScarType, v.EffectClass, v.Description)
	}
	return nil
}

func init() {
	effectAddCmd.Flags().StringVar(&flagEffectClass, "class", types.EffectClassBehavioral, "effect class (hard_block, capability_cap, behavioral)")
	effectAddCmd.Flags().StringVar(&flagEffectCap, "capability", "", "capability the effect constrains")
	effectAddCmd.Flags().Float64Var(&flagEffectCapValue, "cap-value", 0, "ceiling for capability_cap effects")
	effectAddCmd.Flags().BoolVar(&flagEffectPermanent, "permanent", false, "permanent effects can never be deactivated")
	effectViewCmd.Flags().StringVar(&flagEffectView, "name", "active", "view name (active, blocks, caps, formative)")

	effectCmd.AddCommand(effectAddCmd)
	effectCmd.AddCommand(effectViewCmd)
}
