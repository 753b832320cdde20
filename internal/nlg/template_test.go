package nlg

import (
	"encoding/json"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errx "github.com/converseworks/convkit/internal/core/error"
	"github.com/converseworks/convkit/internal/dialogue"
)

func seededRand() *rand.Rand {
	return rand.New(rand.NewPCG(7, 11))
}

func movieStore(t *testing.T) (*TemplateStore, *dialogue.Intent) {
	t.Helper()
	recommend := dialogue.NewIntent("recommend_movie")
	store := NewTemplateStore()
	store.Add(recommend, dialogue.NewAnnotatedUtterance(
		"You should watch something like the {TITLE}",
		dialogue.WithAnnotations(dialogue.NewAnnotation("TITLE", "")),
	))
	return store, recommend
}

func TestGenerateUtteranceSubstitutesSlotValues(t *testing.T) {
	store, recommend := movieStore(t)
	gen := NewTemplateNLG(store, WithRand(seededRand()))

	u, err := gen.GenerateUtterance(recommend,
		[]dialogue.Annotation{dialogue.NewAnnotation("TITLE", "A Test Movie Title")}, false)
	require.NoError(t, err)

	assert.Equal(t, "You should watch something like the A Test Movie Title", u.Text())
	assert.Equal(t, recommend, u.Intent())
	assert.Equal(t, []dialogue.Annotation{dialogue.NewAnnotation("TITLE", "A Test Movie Title")}, u.Annotations())
}

func TestGenerateUtteranceForceAnnotationDropsUnannotated(t *testing.T) {
	inform := dialogue.NewIntent("inform_director")
	store := NewTemplateStore()
	store.Add(inform, dialogue.NewAnnotatedUtterance("I do not know the director"))
	store.Add(inform, dialogue.NewAnnotatedUtterance(
		"The director is {DIRECTOR}",
		dialogue.WithAnnotations(dialogue.NewAnnotation("DIRECTOR", "")),
	))
	gen := NewTemplateNLG(store, WithRand(seededRand()))

	annotations := []dialogue.Annotation{dialogue.NewAnnotation("DIRECTOR", "X")}
	for i := 0; i < 20; i++ {
		u, err := gen.GenerateUtterance(inform, annotations, true)
		require.NoError(t, err)
		assert.Equal(t, "The director is X", u.Text())
	}
}

func TestGenerateUtteranceUnknownIntentFallsBack(t *testing.T) {
	store, _ := movieStore(t)
	gen := NewTemplateNLG(store)

	unknown := dialogue.NewIntent("never_registered")
	u, err := gen.GenerateUtterance(unknown, nil, false)
	require.NoError(t, err)
	assert.Equal(t, FallbackText, u.Text())
	assert.Equal(t, unknown, u.Intent())
}

func TestGenerateUtteranceNoSatisfiableTemplateFails(t *testing.T) {
	store, recommend := movieStore(t)
	gen := NewTemplateNLG(store)

	u, err := gen.GenerateUtterance(recommend, nil, false)
	assert.Nil(t, u)
	require.Error(t, err)
	assert.True(t, errx.IsKind(err, errx.KindGenerationFailure))
}

func TestGenerateUtteranceLeavesNoPlaceholders(t *testing.T) {
	greet := dialogue.NewIntent("greet")
	book := dialogue.NewIntent("book_table")
	store := NewTemplateStore()
	store.Add(greet, dialogue.NewAnnotatedUtterance("Hello there"))
	store.Add(book, dialogue.NewAnnotatedUtterance(
		"A table for {COUNT} at {TIME}, got it",
		dialogue.WithAnnotations(dialogue.NewAnnotation("COUNT", ""), dialogue.NewAnnotation("TIME", "")),
	))
	gen := NewTemplateNLG(store, WithRand(seededRand()))

	u, err := gen.GenerateUtterance(greet, nil, false)
	require.NoError(t, err)
	assert.NotContains(t, u.Text(), "{")

	u, err = gen.GenerateUtterance(book, []dialogue.Annotation{
		dialogue.NewAnnotation("COUNT", "four"),
		dialogue.NewAnnotation("TIME", "seven"),
	}, false)
	require.NoError(t, err)
	assert.Equal(t, "A table for four at seven, got it", u.Text())
	assert.NotContains(t, u.Text(), "{")
	assert.NotContains(t, u.Text(), "}")
}

func TestGenerateUtteranceDoesNotMutateTemplate(t *testing.T) {
	store, recommend := movieStore(t)
	gen := NewTemplateNLG(store, WithRand(seededRand()))

	_, err := gen.GenerateUtterance(recommend,
		[]dialogue.Annotation{dialogue.NewAnnotation("TITLE", "Alien")}, false)
	require.NoError(t, err)

	template := store.Get(recommend)[0]
	assert.Equal(t, "You should watch something like the {TITLE}", template.Text())
	assert.Equal(t, []dialogue.Annotation{dialogue.NewAnnotation("TITLE", "")}, template.Annotations())
}

func TestGenerateUtteranceSelectsUniformly(t *testing.T) {
	chitchat := dialogue.NewIntent("chitchat")
	store := NewTemplateStore()
	store.Add(chitchat, dialogue.NewAnnotatedUtterance("How is your day going?"))
	store.Add(chitchat, dialogue.NewAnnotatedUtterance("Nice weather today, right?"))
	gen := NewTemplateNLG(store, WithRand(seededRand()))

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		u, err := gen.GenerateUtterance(chitchat, nil, false)
		require.NoError(t, err)
		seen[u.Text()] = true
	}
	assert.Len(t, seen, 2)
}

func TestDumpTemplates(t *testing.T) {
	greet := dialogue.NewIntent("greet")
	recommend := dialogue.NewIntent("recommend_movie")
	store := NewTemplateStore()
	store.Add(greet, dialogue.NewAnnotatedUtterance("Hello"))
	store.Add(greet, dialogue.NewAnnotatedUtterance("Hi there"))
	store.Add(recommend, dialogue.NewAnnotatedUtterance(
		"Try {TITLE}",
		dialogue.WithAnnotations(dialogue.NewAnnotation("TITLE", "")),
	))
	gen := NewTemplateNLG(store)

	path := filepath.Join(t.TempDir(), "dump", "templates.json")
	require.NoError(t, gen.DumpTemplates(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var out map[string][]string
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, map[string][]string{
		"greet":           {"Hello", "Hi there"},
		"recommend_movie": {"Try {TITLE}"},
	}, out)
}

func TestRepeatedSlotConsumedInOrder(t *testing.T) {
	compare := dialogue.NewIntent("compare")
	store := NewTemplateStore()
	store.Add(compare, dialogue.NewAnnotatedUtterance(
		"{TITLE} is older than {TITLE}",
		dialogue.WithAnnotations(dialogue.NewAnnotation("TITLE", ""), dialogue.NewAnnotation("TITLE", "")),
	))
	gen := NewTemplateNLG(store, WithRand(seededRand()))

	u, err := gen.GenerateUtterance(compare, []dialogue.Annotation{
		dialogue.NewAnnotation("TITLE", "Alien"),
		dialogue.NewAnnotation("TITLE", "Aliens"),
	}, false)
	require.NoError(t, err)
	assert.Equal(t, "Alien is older than Aliens", u.Text())
	assert.False(t, strings.Contains(u.Text(), "{TITLE}"))
}
