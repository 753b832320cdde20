// Package nlu turns raw user text into dialogue acts. The package defines
// the classifier and annotator ports; concrete models live in subpackages
// (cosine, gemini, rasa) and in the lexicon annotator here.
package nlu

import (
	"context"

	"github.com/converseworks/convkit/internal/dialogue"
)

// IntentClassifier assigns one intent from a fixed inventory to a text.
type IntentClassifier interface {
	// Train fits the classifier on parallel texts and intents.
	Train(ctx context.Context, texts []string, intents []*dialogue.Intent) error
	// Classify returns the most likely intent for the text.
	Classify(ctx context.Context, text string) (*dialogue.Intent, error)
	// Save persists the trained model under the given directory.
	Save(path string) error
	// Load restores a previously saved model.
	Load(path string) error
}

// SlotValueAnnotator finds slot values in a text, with character offsets
// when the backing model provides them.
type SlotValueAnnotator interface {
	Annotate(ctx context.Context, text string) ([]dialogue.SlotValueAnnotation, error)
	Save(path string) error
	Load(path string) error
}

// DialogueActExtractor produces the dialogue acts of an utterance.
type DialogueActExtractor interface {
	Extract(ctx context.Context, u *dialogue.AnnotatedUtterance) ([]dialogue.DialogueAct, error)
	Save(path string) error
	Load(path string) error
}
