package nlg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errx "github.com/converseworks/convkit/internal/core/error"
	"github.com/converseworks/convkit/internal/dialogue"
)

func satisfactionStore(t *testing.T) (*TemplateStore, *dialogue.Intent) {
	t.Helper()
	farewell := dialogue.NewIntent("farewell")
	store := NewTemplateStore()
	add := func(text string, score int) {
		u := dialogue.NewAnnotatedUtterance(text)
		u.SetMetadata("satisfaction", score)
		store.Add(farewell, u)
	}
	add("Bye.", 1)
	add("Goodbye, have a nice day", 2)
	add("It was a pleasure, see you soon", 4)
	return store, farewell
}

func TestGenerateConditionalPicksClosestMetadata(t *testing.T) {
	store, farewell := satisfactionStore(t)
	gen := NewConditionalNLG(store, WithRand(seededRand()))

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		u, err := gen.GenerateConditionalUtterance(farewell, nil, false, "satisfaction", 3)
		require.NoError(t, err)
		seen[u.Text()] = true
	}
	// scores 2 and 4 tie at distance 1; score 1 is never eligible
	assert.True(t, seen["Goodbye, have a nice day"])
	assert.True(t, seen["It was a pleasure, see you soon"])
	assert.False(t, seen["Bye."])
}

func TestGenerateConditionalExactMatch(t *testing.T) {
	store, farewell := satisfactionStore(t)
	gen := NewConditionalNLG(store, WithRand(seededRand()))

	for i := 0; i < 20; i++ {
		u, err := gen.GenerateConditionalUtterance(farewell, nil, false, "satisfaction", 1)
		require.NoError(t, err)
		assert.Equal(t, "Bye.", u.Text())
	}
}

func TestGenerateConditionalMissingKeyFallsBackToUniform(t *testing.T) {
	farewell := dialogue.NewIntent("farewell")
	store := NewTemplateStore()
	store.Add(farewell, dialogue.NewAnnotatedUtterance("Bye"))
	store.Add(farewell, dialogue.NewAnnotatedUtterance("See you"))
	gen := NewConditionalNLG(store, WithRand(seededRand()))

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		u, err := gen.GenerateConditionalUtterance(farewell, nil, false, "satisfaction", 3)
		require.NoError(t, err)
		seen[u.Text()] = true
	}
	assert.Len(t, seen, 2)
}

func TestGenerateConditionalUnknownIntentFallsBack(t *testing.T) {
	store, _ := satisfactionStore(t)
	gen := NewConditionalNLG(store)

	unknown := dialogue.NewIntent("never_registered")
	u, err := gen.GenerateConditionalUtterance(unknown, nil, false, "satisfaction", 3)
	require.NoError(t, err)
	assert.Equal(t, FallbackText, u.Text())
}

func TestGenerateConditionalRespectsAnnotationFilter(t *testing.T) {
	inform := dialogue.NewIntent("inform_rating")
	store := NewTemplateStore()
	u := dialogue.NewAnnotatedUtterance(
		"{TITLE} is rated {RATING}",
		dialogue.WithAnnotations(dialogue.NewAnnotation("TITLE", ""), dialogue.NewAnnotation("RATING", "")),
	)
	u.SetMetadata("satisfaction", 3)
	store.Add(inform, u)
	gen := NewConditionalNLG(store, WithRand(seededRand()))

	out, err := gen.GenerateConditionalUtterance(inform, nil, false, "satisfaction", 3)
	assert.Nil(t, out)
	require.Error(t, err)
	assert.True(t, errx.IsKind(err, errx.KindGenerationFailure))

	out, err = gen.GenerateConditionalUtterance(inform, []dialogue.Annotation{
		dialogue.NewAnnotation("TITLE", "Alien"),
		dialogue.NewAnnotation("RATING", "R"),
	}, false, "satisfaction", 3)
	require.NoError(t, err)
	assert.Equal(t, "Alien is rated R", out.Text())
}
