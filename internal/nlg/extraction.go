package nlg

import (
	"context"
	"strings"

	errx "github.com/converseworks/convkit/internal/core/error"
	"github.com/converseworks/convkit/internal/dialogue"
	logx "github.com/converseworks/convkit/pkg/logger"
)

// SatisfactionClassifier scores a stretch of dialogue text. It is an opaque
// pretrained model behind a narrow port; extraction only attaches its output
// as template metadata for later conditional selection.
type SatisfactionClassifier interface {
	Classify(ctx context.Context, text string) (int, error)
}

// ExtractionOptions steers template extraction from dialogue logs.
type ExtractionOptions struct {
	// Participant selects whose utterances become templates.
	Participant dialogue.Participant
	// Satisfaction, when set, is invoked per utterance and its score stored
	// under the "satisfaction" metadata key.
	Satisfaction SatisfactionClassifier
}

// ExtractTemplates builds a template store from recorded dialogues: slot
// values in the text are replaced with their "{SLOT}" placeholders, the
// results are grouped by intent and deduplicated preserving first-seen order.
// Utterances without an intent are skipped.
func ExtractTemplates(ctx context.Context, dialogues []*dialogue.Dialogue, opts ExtractionOptions) (*TemplateStore, error) {
	p := opts.Participant
	if p == "" {
		p = dialogue.ParticipantAgent
	}

	store := NewTemplateStore()
	seen := make(map[string]map[string]struct{})
	for _, d := range dialogues {
		for _, u := range d.Utterances() {
			if u.Participant() != p || u.Intent() == nil {
				continue
			}
			template := templatize(u)
			if opts.Satisfaction != nil {
				score, err := opts.Satisfaction.Classify(ctx, u.Text())
				if err != nil {
					return nil, err
				}
				template.SetMetadata("satisfaction", score)
			}
			addDeduplicated(store, seen, u.Intent(), template)
		}
	}
	logx.Debug().Int("intents", store.Len()).Msg("templates extracted from dialogues")
	return store, nil
}

// ExtractTemplatesFromUtterances builds a store from explicit utterances.
// A non-nil intents list overrides the utterances' own intents and must be
// of equal length. Utterances without an intent are skipped; duplicates by
// text are dropped per intent.
func ExtractTemplatesFromUtterances(utterances []*dialogue.AnnotatedUtterance, intents []*dialogue.Intent) (*TemplateStore, error) {
	if intents != nil && len(intents) != len(utterances) {
		return nil, errx.Invalid("length mismatch: %d utterances vs %d intents", len(utterances), len(intents))
	}

	store := NewTemplateStore()
	seen := make(map[string]map[string]struct{})
	for i, u := range utterances {
		intent := u.Intent()
		if intents != nil {
			intent = intents[i]
		}
		if intent == nil {
			continue
		}
		addDeduplicated(store, seen, intent, templatize(u))
	}
	return store, nil
}

// templatize copies the utterance and substitutes each annotated slot value
// back into its placeholder form. The template's annotation list keeps only
// the slot names, which is exactly the required-slot contract generation
// filters on.
func templatize(u *dialogue.AnnotatedUtterance) *dialogue.AnnotatedUtterance {
	text := u.Text()
	required := make([]dialogue.Annotation, 0, len(u.Annotations()))
	for _, a := range u.Annotations() {
		if a.Value != "" {
			text = strings.Replace(text, a.Value, "{"+a.Slot+"}", 1)
		}
		required = append(required, dialogue.NewAnnotation(a.Slot, ""))
	}

	template := u.Copy()
	template.SetText(text)
	template.ClearAnnotations()
	for _, r := range required {
		template.AddAnnotation(r)
	}
	return template
}

func addDeduplicated(store *TemplateStore, seen map[string]map[string]struct{}, intent *dialogue.Intent, template *dialogue.AnnotatedUtterance) {
	label := intent.Label()
	if seen[label] == nil {
		seen[label] = make(map[string]struct{})
	}
	if _, dup := seen[label][template.Text()]; dup {
		return
	}
	seen[label][template.Text()] = struct{}{}
	store.Add(intent, template)
}
