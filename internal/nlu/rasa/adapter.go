package rasa

import (
	"context"

	errx "github.com/converseworks/convkit/internal/core/error"
	"github.com/converseworks/convkit/internal/dialogue"
	"github.com/converseworks/convkit/internal/nlu"
)

// IntentClassifier adapts a Client to the nlu.IntentClassifier port. The
// model lives on the server, so Save and Load are no-ops.
type IntentClassifier struct {
	client *Client
	// ConfidenceThreshold discards hypotheses below it; zero accepts all.
	ConfidenceThreshold float64

	intents map[string]*dialogue.Intent
}

var _ nlu.IntentClassifier = (*IntentClassifier)(nil)

// NewIntentClassifier creates a classifier over the client.
func NewIntentClassifier(client *Client) *IntentClassifier {
	return &IntentClassifier{client: client, intents: make(map[string]*dialogue.Intent)}
}

// Train uploads the examples and records the intent inventory so server
// answers can be mapped back onto the caller's intent objects.
func (c *IntentClassifier) Train(ctx context.Context, texts []string, intents []*dialogue.Intent) error {
	if len(texts) != len(intents) {
		return errx.Invalid("length mismatch: %d texts vs %d intents", len(texts), len(intents))
	}

	data := TrainingData{CommonExamples: make([]TrainingExample, 0, len(texts))}
	c.intents = make(map[string]*dialogue.Intent, len(intents))
	for i, intent := range intents {
		if intent == nil {
			return errx.Invalid("nil intent at index %d", i)
		}
		c.intents[intent.Label()] = intent
		data.CommonExamples = append(data.CommonExamples, TrainingExample{
			Text:   texts[i],
			Intent: intent.Label(),
		})
	}
	return c.client.Train(ctx, data)
}

// Classify parses the text on the server. Unknown or low-confidence intents
// yield nil.
func (c *IntentClassifier) Classify(ctx context.Context, text string) (*dialogue.Intent, error) {
	resp, err := c.client.Parse(ctx, text)
	if err != nil {
		return nil, err
	}
	if resp.Intent.Name == "" || resp.Intent.Confidence < c.ConfidenceThreshold {
		return nil, nil
	}
	if intent, ok := c.intents[resp.Intent.Name]; ok {
		return intent, nil
	}
	return dialogue.NewIntent(resp.Intent.Name), nil
}

// Save is a no-op; the trained model lives on the Rasa server.
func (c *IntentClassifier) Save(string) error { return nil }

// Load is a no-op; the trained model lives on the Rasa server.
func (c *IntentClassifier) Load(string) error { return nil }

// SlotValueAnnotator adapts a Client's entity extraction to the
// nlu.SlotValueAnnotator port.
type SlotValueAnnotator struct {
	client *Client
}

var _ nlu.SlotValueAnnotator = (*SlotValueAnnotator)(nil)

// NewSlotValueAnnotator creates an annotator over the client.
func NewSlotValueAnnotator(client *Client) *SlotValueAnnotator {
	return &SlotValueAnnotator{client: client}
}

// Annotate returns the server's entities as slot-value annotations with
// their character offsets.
func (a *SlotValueAnnotator) Annotate(ctx context.Context, text string) ([]dialogue.SlotValueAnnotation, error) {
	resp, err := a.client.Parse(ctx, text)
	if err != nil {
		return nil, err
	}
	annotations := make([]dialogue.SlotValueAnnotation, 0, len(resp.Entities))
	for _, e := range resp.Entities {
		annotations = append(annotations, dialogue.NewSlotValueAnnotation(e.Entity, e.Value, e.Start, e.End))
	}
	return annotations, nil
}

// Save is a no-op; the trained model lives on the Rasa server.
func (a *SlotValueAnnotator) Save(string) error { return nil }

// Load is a no-op; the trained model lives on the Rasa server.
func (a *SlotValueAnnotator) Load(string) error { return nil }
