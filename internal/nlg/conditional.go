package nlg

import (
	"math"

	errx "github.com/converseworks/convkit/internal/core/error"
	"github.com/converseworks/convkit/internal/dialogue"
	logx "github.com/converseworks/convkit/pkg/logger"
)

// ConditionalNLG specializes TemplateNLG: when a numeric target is supplied
// it selects among the surviving templates whose metadata value is closest to
// the target, instead of uniformly over all survivors.
type ConditionalNLG struct {
	TemplateNLG
}

// NewConditionalNLG creates a conditional generator over the given store.
func NewConditionalNLG(store *TemplateStore, opts ...Option) *ConditionalNLG {
	return &ConditionalNLG{TemplateNLG: *NewTemplateNLG(store, opts...)}
}

// GenerateConditionalUtterance behaves like GenerateUtterance but restricts
// the random pick to the survivors minimising |metadata[key] − target|.
// Templates lacking the metadata key are excluded from conditional ranking;
// when none carries it, selection falls back to uniform over all survivors.
func (g *ConditionalNLG) GenerateConditionalUtterance(
	intent *dialogue.Intent,
	annotations []dialogue.Annotation,
	forceAnnotation bool,
	metadataKey string,
	target float64,
) (*dialogue.AnnotatedUtterance, error) {
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

	candidates := closestByMetadata(survivors, metadataKey, target)
	if len(candidates) == 0 {
		candidates = survivors
	}
	return instantiate(candidates[g.intn(len(candidates))], intent, annotations), nil
}

// closestByMetadata returns the group of templates minimising the absolute
// difference between their metadata value and the target. Templates without
// a numeric value under the key are skipped.
func closestByMetadata(templates []*dialogue.AnnotatedUtterance, key string, target float64) []*dialogue.AnnotatedUtterance {
	const eps = 1e-9
	best := math.Inf(1)
	var group []*dialogue.AnnotatedUtterance
	for _, t := range templates {
		v, ok := numericMetadata(t, key)
		if !ok {
			continue
		}
		diff := math.Abs(v - target)
		switch {
		case diff < best-eps:
			best = diff
			group = group[:0]
			group = append(group, t)
		case math.Abs(diff-best) <= eps:
			group = append(group, t)
		}
	}
	return group
}

func numericMetadata(t *dialogue.AnnotatedUtterance, key string) (float64, bool) {
	raw, ok := t.Metadata()[key]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
