package cli

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"

	"github.com/converseworks/convkit/internal/dialogue"
	"github.com/converseworks/convkit/internal/nlu"
	"github.com/converseworks/convkit/internal/nlu/cosine"
	"github.com/converseworks/convkit/internal/nlu/gemini"
	"github.com/converseworks/convkit/internal/nlu/rasa"
	"github.com/converseworks/convkit/internal/storage"
	logx "github.com/converseworks/convkit/pkg/logger"
)

func newTrainCmd() *cobra.Command {
	var backend string
	var modelDir string
	var participantName string

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train an intent classifier from exported dialogues",
		Long:  `Train reads the exported dialogues, uses the selected participant's utterance intents as labels and trains the chosen classifier backend (cosine, gemini or rasa).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			dialogues, err := storage.NewJSONStore(cfg.ExportDir).LoadAll(storage.Filter{})
			if err != nil {
				return fmt.Errorf("load dialogues: %w", err)
			}
			texts, intents := trainingPairs(dialogues, dialogue.Participant(participantName))
			if len(texts) == 0 {
				return fmt.Errorf("no labelled utterances for participant %s", participantName)
			}

			classifier, err := newClassifier(cmd, backend)
			if err != nil {
				return err
			}
			if err := classifier.Train(cmd.Context(), texts, intents); err != nil {
				return fmt.Errorf("train %s classifier: %w", backend, err)
			}
			if err := classifier.Save(modelDir); err != nil {
				return fmt.Errorf("save %s classifier: %w", backend, err)
			}
			logx.Info().Str("backend", backend).Int("examples", len(texts)).
				Str("model_dir", modelDir).Msg("classifier trained")
			return nil
		},
	}
	cmd.Flags().StringVar(&backend, "backend", "cosine", "classifier backend: cosine, gemini or rasa")
	cmd.Flags().StringVar(&modelDir, "model-dir", "models/intent_classifier", "directory for the saved model")
	cmd.Flags().StringVar(&participantName, "participant", string(dialogue.ParticipantUser), "participant whose utterances are training data")
	return cmd
}

func newClassifier(cmd *cobra.Command, backend string) (nlu.IntentClassifier, error) {
	switch backend {
	case "cosine":
		return cosine.NewClassifier(), nil
	case "gemini":
		var cfg gemini.Config
		if err := envconfig.Process("", &cfg); err != nil {
			return nil, fmt.Errorf("process gemini config: %w", err)
		}
		return gemini.NewClassifier(cmd.Context(), cfg)
	case "rasa":
		var cfg rasa.Config
		if err := envconfig.Process("", &cfg); err != nil {
			return nil, fmt.Errorf("process rasa config: %w", err)
		}
		return rasa.NewIntentClassifier(rasa.NewClient(cfg)), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
}

// trainingPairs collects the labelled utterances of one participant.
func trainingPairs(dialogues []*dialogue.Dialogue, p dialogue.Participant) ([]string, []*dialogue.Intent) {
	var texts []string
	var intents []*dialogue.Intent
	for _, d := range dialogues {
		for _, u := range d.Utterances() {
			if u.Participant() != p || u.Intent() == nil {
				continue
			}
			texts = append(texts, u.Text())
			intents = append(intents, u.Intent())
		}
	}
	return texts, intents
}
