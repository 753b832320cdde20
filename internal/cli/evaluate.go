package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/converseworks/convkit/internal/evaluation"
	"github.com/converseworks/convkit/internal/storage"
)

func newEvaluateCmd() *cobra.Command {
	var points float64
	var turnCost float64
	var required []string
	var penalty float64

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Compute offline metrics over exported dialogues",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			dialogues, err := storage.NewJSONStore(cfg.ExportDir).LoadAll(storage.Filter{})
			if err != nil {
				return fmt.Errorf("load dialogues: %w", err)
			}

			penalties := make(map[string]float64, len(required))
			for _, label := range required {
				penalties[label] = penalty
			}
			evaluator := evaluation.NewEvaluator(evaluation.RewardConfig{
				FullSetPoints: points,
				Penalties:     penalties,
				TurnCost:      turnCost,
			})

			metrics, err := evaluator.Evaluate(cmd.Context(), dialogues)
			if err != nil {
				return fmt.Errorf("evaluate dialogues: %w", err)
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(metrics)
		},
	}
	cmd.Flags().Float64Var(&points, "points", 10, "reward before deductions")
	cmd.Flags().Float64Var(&turnCost, "turn-cost", 0, "deduction per user turn")
	cmd.Flags().StringSliceVar(&required, "required", nil, "intent labels required for the full reward")
	cmd.Flags().Float64Var(&penalty, "penalty", 1, "deduction per missing required intent")
	return cmd
}
