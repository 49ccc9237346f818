// Belief commands: add, supersede, list.
package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keelworks/keel/internal/embedder"
	"github.com/keelworks/keel/internal/sqlite"
	"github.com/keelworks/keel/pkg/types"
)

var (
	flagBeliefType       string
	flagBeliefConviction int
	flagBeliefEmbed      bool
	flagBeliefCurrent    bool
)

var beliefCmd = &cobra.Command{
	Use:   "belief",
	Short: "Manage beliefs",
}

var beliefAddCmd = &cobra.Command{
	Use:   "add <statement>",
	Short: "Add a new belief",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			return err
		}
		defer backend.Detach()

		beliefs, err := backend.GetTable(types.BeliefsTable)
		if err != nil {
			return err
		}

		belief := &types.Belief{
			Statement:       args[0],
			BeliefType:      flagBeliefType,
			ConvictionScore: flagBeliefConviction,
		}
		id, err := beliefs.Set("", belief)
		if err != nil {
			return err
		}

		if flagBeliefEmbed {
			if err := embedBelief(cmd.Context(), backend, id, belief); err != nil {
				return fmt.Errorf("belief %s stored, embedding failed: %w", id, err)
			}
		}

		if flagJSON {
			return printJSON(map[string]string{"belief_id": id})
		}
		fmt.Println(id)
		return nil
	},
}

var beliefSupersedeCmd = &cobra.Command{
	Use:   "supersede <old-id> <statement>",
	Short: "Retire a belief and insert its replacement atomically",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			return err
		}
		defer backend.Detach()

		successor := &types.Belief{
			Statement:       args[1],
			BeliefType:      flagBeliefType,
			ConvictionScore: flagBeliefConviction,
		}
		id, err := backend.SupersedeBelief(args[0], successor)
		if err != nil {
			return err
		}

		if flagBeliefEmbed {
			if err := embedBelief(cmd.Context(), backend, id, successor); err != nil {
				return fmt.Errorf("belief %s stored, embedding failed: %w", id, err)
			}
		}

		if flagJSON {
			return printJSON(map[string]string{"belief_id": id, "superseded": args[0]})
		}
		fmt.Println(id)
		return nil
	},
}

var beliefListCmd = &cobra.Command{
	Use:   "list",
	Short: "List beliefs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			return err
		}
		defer backend.Detach()

		beliefs, err := backend.GetTable(types.BeliefsTable)
		if err != nil {
			return err
		}

		var filter map[string]any
		if flagBeliefCurrent {
			filter = map[string]any{"is_active": 1}
		}
		rows, err := beliefs.Fetch(filter)
		if err != nil {
			return err
		}

		if flagJSON {
			return printJSON(rows)
		}
		for _, r := range rows {
			b := r.(*types.Belief)
			state := "closed"
			if b.IsCurrent() {
				state = "current"
			}
			fmt.Printf("%s  [%s/%d]  %-7s  %s\n",
				b.BeliefID, b.BeliefType, b.ConvictionScore, state, b.Statement)
		}
		return nil
	},
}

// embedBelief fetches an embedding from the configured provider and stores it
// for the belief.
func embedBelief(ctx context.Context, backend *sqlite.Backend, id string, belief *types.Belief) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	client := embedder.NewClient(configEmbedderURL, log)
	emb, err := client.Embed(ctx, belief.Statement, belief.BeliefType)
	if err != nil {
		return err
	}

	embeddings, err := backend.GetTable(types.EmbeddingsTable)
	if err != nil {
		return err
	}
	_, err = embeddings.Set("", &types.BeliefEmbedding{
		BeliefID: id,
		Vector:   emb.Vector,
		Norm:     emb.Norm,
	})
	return err
}

func init() {
	beliefCmd.PersistentFlags().StringVar(&flagBeliefType, "type", types.BeliefTypeValue, "belief type (identity, value, principle, preference, fact, causal)")
	beliefCmd.PersistentFlags().IntVar(&flagBeliefConviction, "conviction", 50, "conviction score (0-100)")
	beliefCmd.PersistentFlags().BoolVar(&flagBeliefEmbed, "embed", false, "request an embedding from the provider")
	beliefListCmd.Flags().BoolVar(&flagBeliefCurrent, "current", false, "only current beliefs")

	beliefCmd.AddCommand(beliefAddCmd)
	beliefCmd.AddCommand(beliefSupersedeCmd)
	beliefCmd.AddCommand(beliefListCmd)
}
