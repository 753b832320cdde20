package dialogue

import (
	errx "github.com/converseworks/convkit/internal/core/error"
)

// UserPreferences maps key/value pairs to preference scores in [-1, 1].
// Missing lookups return ok=false rather than a default score.
type UserPreferences struct {
	prefs map[string]map[string]float64
}

// NewUserPreferences creates an empty preference table.
func NewUserPreferences() *UserPreferences {
	return &UserPreferences{prefs: make(map[string]map[string]float64)}
}

// Set stores a preference score. Scores outside the closed interval [-1, 1]
// are rejected with an invalid-argument error.
func (p *UserPreferences) Set(key, value string, score float64) error {
	if score < -1 || score > 1 {
		return errx.Invalid("preference score %v for (%s, %s) outside [-1, 1]", score, key, value)
	}
	if p.prefs[key] == nil {
		p.prefs[key] = make(map[string]float64)
	}
	p.prefs[key][value] = score
	return nil
}

// Get returns the stored score for (key, value), if any.
func (p *UserPreferences) Get(key, value string) (float64, bool) {
	values, ok := p.prefs[key]
	if !ok {
		return 0, false
	}
	score, ok := values[value]
	return score, ok
}

// Keys returns the preference keys with at least one stored value.
func (p *UserPreferences) Keys() []string {
	keys := make([]string, 0, len(p.prefs))
	for k := range p.prefs {
		keys = append(keys, k)
	}
	return keys
}
