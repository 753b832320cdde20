package nlu

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	errx "github.com/converseworks/convkit/internal/core/error"
	"github.com/converseworks/convkit/internal/dialogue"
	logx "github.com/converseworks/convkit/pkg/logger"
)

const (
	classifierDir   = "intent_classifier"
	annotatorPrefix = "slot_value_annotator_"
)

// DisjointDialogueActExtractor composes an intent classifier with a list of
// independent slot-value annotators. The classifier and the annotators never
// see each other's output, so each can be trained and swapped in isolation.
type DisjointDialogueActExtractor struct {
	classifier IntentClassifier
	annotators []SlotValueAnnotator
}

var _ DialogueActExtractor = (*DisjointDialogueActExtractor)(nil)

// NewDisjointDialogueActExtractor creates an extractor over the given
// classifier and annotators.
func NewDisjointDialogueActExtractor(classifier IntentClassifier, annotators ...SlotValueAnnotator) *DisjointDialogueActExtractor {
	return &DisjointDialogueActExtractor{classifier: classifier, annotators: annotators}
}

// Extract classifies the utterance text and merges the annotations of every
// annotator into a single dialogue act. A nil intent from the classifier
// yields an empty act list, not an error.
func (e *DisjointDialogueActExtractor) Extract(ctx context.Context, u *dialogue.AnnotatedUtterance) ([]dialogue.DialogueAct, error) {
	intent, err := e.classifier.Classify(ctx, u.Text())
	if err != nil {
		return nil, fmt.Errorf("classify intent: %w", err)
	}
	if intent == nil {
		logx.Debug().Str("text", u.Text()).Msg("classifier produced no intent")
		return []dialogue.DialogueAct{}, nil
	}

	var annotations []dialogue.Annotation
	for _, a := range e.annotators {
		found, err := a.Annotate(ctx, u.Text())
		if err != nil {
			return nil, fmt.Errorf("annotate slot values: %w", err)
		}
		for _, sv := range found {
			annotations = append(annotations, sv.Annotation)
		}
	}
	return []dialogue.DialogueAct{dialogue.NewDialogueAct(intent, annotations...)}, nil
}

// Annotate runs Extract and records the resulting acts, the first act's
// intent and its annotations on the utterance itself.
func (e *DisjointDialogueActExtractor) Annotate(ctx context.Context, u *dialogue.AnnotatedUtterance) error {
	acts, err := e.Extract(ctx, u)
	if err != nil {
		return err
	}
	for _, act := range acts {
		u.AddDialogueAct(act)
	}
	if len(acts) > 0 {
		u.SetIntent(acts[0].Intent)
		u.ClearAnnotations()
		for _, a := range acts[0].Annotations {
			u.AddAnnotation(a)
		}
	}
	return nil
}

// Save writes the classifier and each annotator into its own subdirectory
// under path.
func (e *DisjointDialogueActExtractor) Save(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return errx.Fatal(err, "create extractor directory")
	}
	if err := e.classifier.Save(filepath.Join(path, classifierDir)); err != nil {
		return fmt.Errorf("save intent classifier: %w", err)
	}
	for i, a := range e.annotators {
		if err := a.Save(filepath.Join(path, fmt.Sprintf("%s%d", annotatorPrefix, i))); err != nil {
			return fmt.Errorf("save slot value annotator %d: %w", i, err)
		}
	}
	return nil
}

// Load restores the classifier and annotators from the layout written by
// Save. The annotator list must already hold instances of the right types.
func (e *DisjointDialogueActExtractor) Load(path string) error {
	if _, err := os.Stat(path); err != nil {
		return errx.NotFound("extractor directory %s: %v", path, err)
	}
	if err := e.classifier.Load(filepath.Join(path, classifierDir)); err != nil {
		return fmt.Errorf("load intent classifier: %w", err)
	}
	for i, a := range e.annotators {
		if err := a.Load(filepath.Join(path, fmt.Sprintf("%s%d", annotatorPrefix, i))); err != nil {
			return fmt.Errorf("load slot value annotator %d: %w", i, err)
		}
	}
	return nil
}
