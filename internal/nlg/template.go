package nlg

import (
	"encoding/json"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	errx "github.com/converseworks/convkit/internal/core/error"
	"github.com/converseworks/convkit/internal/dialogue"
	logx "github.com/converseworks/convkit/pkg/logger"
)

// FallbackText is returned for intents the store knows nothing about. The
// missing-intent path never fails.
const FallbackText = "Sorry, I did not understand you."

// TemplateNLG instantiates stored templates: filter by the supplied
// annotations, pick one survivor at random, substitute placeholders.
type TemplateNLG struct {
	store *TemplateStore
	rng   *rand.Rand
}

// Option configures a TemplateNLG.
type Option func(*TemplateNLG)

// WithRand injects a deterministic random source.
func WithRand(rng *rand.Rand) Option {
	return func(g *TemplateNLG) { g.rng = rng }
}

// NewTemplateNLG creates a generator over the given store.
func NewTemplateNLG(store *TemplateStore, opts ...Option) *TemplateNLG {
	g := &TemplateNLG{store: store}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *TemplateNLG) intn(n int) int {
	if g.rng != nil {
		return g.rng.IntN(n)
	}
	return rand.IntN(n)
}

// GenerateUtterance produces an utterance for the intent. Unknown intents
// yield the fallback utterance. For known intents the candidates are filtered
// against the supplied annotations: a template survives iff its required
// slots are a subset of the supplied slot names; a template with no required
// slots is dropped only when forceAnnotation is set and annotations were
// supplied. An empty survivor set is a generation-failure error.
func (g *TemplateNLG) GenerateUtterance(intent *dialogue.Intent, annotations []dialogue.Annotation, forceAnnotation bool) (*dialogue.AnnotatedUtterance, error) {
	templates := g.store.Get(intent)
	if len(templates) == 0 {
		logx.Debug().Str("intent", intent.Label()).Msg("no templates for intent, using fallback")
		return dialogue.NewAnnotatedUtterance(FallbackText, dialogue.WithIntent(intent)), nil
	}

	survivors := filterTemplates(templates, annotations, forceAnnotation)
	if len(survivors) == 0 {
		return nil, errx.GenerationFailure("no template for intent %s satisfiable with %d annotation(s)",
			intent.Label(), len(annotations))
	}

	return instantiate(survivors[g.intn(len(survivors))], intent, annotations), nil
}

// DumpTemplates writes the store as a single JSON object mapping intent
// labels to their ordered template texts.
func (g *TemplateNLG) DumpTemplates(path string) error {
	out := make(map[string][]string, g.store.Len())
	for _, intent := range g.store.Intents() {
		templates := g.store.Get(intent)
		texts := make([]string, 0, len(templates))
		for _, t := range templates {
			texts = append(texts, t.Text())
		}
		out[intent.Label()] = texts
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errx.Fatal(err, "create template dump directory")
		}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return errx.Fatal(err, "encode templates")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errx.Fatal(err, "write template dump")
	}
	return nil
}

// filterTemplates keeps the templates whose required slots can all be filled
// from the supplied annotations.
func filterTemplates(templates []*dialogue.AnnotatedUtterance, annotations []dialogue.Annotation, forceAnnotation bool) []*dialogue.AnnotatedUtterance {
	supplied := make(map[string]struct{}, len(annotations))
	for _, a := range annotations {
		supplied[a.Slot] = struct{}{}
	}

	var survivors []*dialogue.AnnotatedUtterance
	for _, t := range templates {
		required := t.Annotations()
		if len(required) == 0 {
			if forceAnnotation && len(annotations) > 0 {
				continue
			}
			survivors = append(survivors, t)
			continue
		}
		ok := true
		for _, r := range required {
			if _, found := supplied[r.Slot]; !found {
				ok = false
				break
			}
		}
		if ok {
			survivors = append(survivors, t)
		}
	}
	return survivors
}

// instantiate copies the template and substitutes each supplied annotation
// into the first remaining occurrence of its "{SLOT}" placeholder; repeated
// slots are consumed in order. The supplied annotations replace the
// template's required-slot list on the output.
func instantiate(template *dialogue.AnnotatedUtterance, intent *dialogue.Intent, annotations []dialogue.Annotation) *dialogue.AnnotatedUtterance {
	out := template.Copy()
	out.ClearAnnotations()
	out.SetIntent(intent)

	text := out.Text()
	for _, a := range annotations {
		text = strings.Replace(text, "{"+a.Slot+"}", a.Value, 1)
		out.AddAnnotation(a)
	}
	out.SetText(text)
	return out
}
