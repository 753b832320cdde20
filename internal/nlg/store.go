// Package nlg generates agent utterances from intent-keyed template stores,
// with optional conditional selection over template metadata.
package nlg

import (
	"github.com/converseworks/convkit/internal/dialogue"
)

// TemplateStore maps intents to candidate utterance templates. A template's
// text may contain "{SLOT}" placeholders; its annotation list enumerates the
// slots required to instantiate it. Stores are built once and treated as
// read-only during generation.
type TemplateStore struct {
	intents   map[string]*dialogue.Intent
	templates map[string][]*dialogue.AnnotatedUtterance
}

// NewTemplateStore creates an empty store.
func NewTemplateStore() *TemplateStore {
	return &TemplateStore{
		intents:   make(map[string]*dialogue.Intent),
		templates: make(map[string][]*dialogue.AnnotatedUtterance),
	}
}

// Add appends a template for the intent, keeping insertion order.
func (s *TemplateStore) Add(intent *dialogue.Intent, template *dialogue.AnnotatedUtterance) {
	label := intent.Label()
	if _, ok := s.intents[label]; !ok {
		s.intents[label] = intent
	}
	s.templates[label] = append(s.templates[label], template)
}

// Get returns the templates registered for the intent, nil when unknown.
func (s *TemplateStore) Get(intent *dialogue.Intent) []*dialogue.AnnotatedUtterance {
	if intent == nil {
		return nil
	}
	return s.templates[intent.Label()]
}

// Intents returns the stored intents sorted by label.
func (s *TemplateStore) Intents() []*dialogue.Intent {
	out := make([]*dialogue.Intent, 0, len(s.intents))
	for _, intent := range s.intents {
		out = append(out, intent)
	}
	dialogue.SortIntentsByLabel(out)
	return out
}

// Len returns the number of intents with at least one template.
func (s *TemplateStore) Len() int {
	return len(s.templates)
}
