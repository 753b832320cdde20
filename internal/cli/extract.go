package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/converseworks/convkit/internal/nlg"
	"github.com/converseworks/convkit/internal/storage"
	logx "github.com/converseworks/convkit/pkg/logger"
)

func newExtractCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract NLG templates from exported dialogues",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			dialogues, err := storage.NewJSONStore(cfg.ExportDir).LoadAll(storage.Filter{})
			if err != nil {
				return fmt.Errorf("load dialogues: %w", err)
			}

			store, err := nlg.ExtractTemplates(cmd.Context(), dialogues, nlg.ExtractionOptions{})
			if err != nil {
				return fmt.Errorf("extract templates: %w", err)
			}

			if err := nlg.NewTemplateNLG(store).DumpTemplates(out); err != nil {
				return err
			}
			logx.Info().Int("dialogues", len(dialogues)).Int("intents", store.Len()).
				Str("out", out).Msg("templates extracted")
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "templates.json", "output file for the template dump")
	return cmd
}
