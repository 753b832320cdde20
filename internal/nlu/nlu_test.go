package nlu

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errx "github.com/converseworks/convkit/internal/core/error"
	"github.com/converseworks/convkit/internal/dialogue"
)

type fixedClassifier struct {
	intent *dialogue.Intent
	saved  bool
	loaded bool
}

func (f *fixedClassifier) Train(context.Context, []string, []*dialogue.Intent) error { return nil }
func (f *fixedClassifier) Classify(context.Context, string) (*dialogue.Intent, error) {
	return f.intent, nil
}
func (f *fixedClassifier) Save(string) error { f.saved = true; return nil }
func (f *fixedClassifier) Load(string) error { f.loaded = true; return nil }

func TestLexiconAnnotatorFindsOffsets(t *testing.T) {
	annotator := NewLexiconAnnotator(map[string][]string{
		"TITLE":    {"Alien"},
		"DIRECTOR": {"Ridley Scott"},
	})

	found, err := annotator.Annotate(context.Background(), "Was Alien directed by Ridley Scott?")
	require.NoError(t, err)
	require.Len(t, found, 2)

	assert.Equal(t, "TITLE", found[0].Slot)
	assert.Equal(t, "Alien", found[0].Value)
	assert.Equal(t, 4, found[0].Start)
	assert.Equal(t, 9, found[0].End)

	assert.Equal(t, "DIRECTOR", found[1].Slot)
	assert.Equal(t, 22, found[1].Start)
	assert.Equal(t, 34, found[1].End)
	assert.True(t, found[1].HasSpan())
}

func TestLexiconAnnotatorCaseInsensitive(t *testing.T) {
	annotator := NewLexiconAnnotator(map[string][]string{"TITLE": {"Alien"}})

	found, err := annotator.Annotate(context.Background(), "have you seen ALIEN?")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Alien", found[0].Value)
	assert.Equal(t, 14, found[0].Start)
}

func TestLexiconAnnotatorRepeatedMatches(t *testing.T) {
	annotator := NewLexiconAnnotator(map[string][]string{"TITLE": {"Alien"}})

	found, err := annotator.Annotate(context.Background(), "Alien or Alien?")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, 0, found[0].Start)
	assert.Equal(t, 9, found[1].Start)
}

func TestLexiconSaveLoadRoundTrip(t *testing.T) {
	annotator := NewLexiconAnnotator(nil)
	annotator.AddEntry("TITLE", "Alien")

	dir := t.TempDir()
	require.NoError(t, annotator.Save(dir))

	restored := NewLexiconAnnotator(nil)
	require.NoError(t, restored.Load(dir))

	found, err := restored.Annotate(context.Background(), "watch Alien")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "TITLE", found[0].Slot)
}

func TestLexiconLoadMissing(t *testing.T) {
	err := NewLexiconAnnotator(nil).Load("/nonexistent/lexicon")
	require.Error(t, err)
	assert.True(t, errx.IsKind(err, errx.KindNotFound))
}

func TestDisjointExtractMergesClassifierAndAnnotators(t *testing.T) {
	request := dialogue.NewIntent("request_info")
	extractor := NewDisjointDialogueActExtractor(
		&fixedClassifier{intent: request},
		NewLexiconAnnotator(map[string][]string{"TITLE": {"Alien"}}),
	)

	u := dialogue.NewAnnotatedUtterance("tell me about Alien")
	acts, err := extractor.Extract(context.Background(), u)
	require.NoError(t, err)
	require.Len(t, acts, 1)
	assert.True(t, request.Equal(acts[0].Intent))
	assert.Equal(t, []dialogue.Annotation{dialogue.NewAnnotation("TITLE", "Alien")}, acts[0].Annotations)
}

func TestDisjointExtractNilIntentYieldsNoActs(t *testing.T) {
	extractor := NewDisjointDialogueActExtractor(&fixedClassifier{intent: nil})

	acts, err := extractor.Extract(context.Background(), dialogue.NewAnnotatedUtterance("gibberish"))
	require.NoError(t, err)
	assert.Empty(t, acts)
}

func TestDisjointAnnotateWritesBack(t *testing.T) {
	request := dialogue.NewIntent("request_info")
	extractor := NewDisjointDialogueActExtractor(
		&fixedClassifier{intent: request},
		NewLexiconAnnotator(map[string][]string{"TITLE": {"Alien"}}),
	)

	u := dialogue.NewAnnotatedUtterance("tell me about Alien")
	require.NoError(t, extractor.Annotate(context.Background(), u))

	assert.True(t, request.Equal(u.Intent()))
	assert.Equal(t, []dialogue.Annotation{dialogue.NewAnnotation("TITLE", "Alien")}, u.Annotations())
	require.Len(t, u.DialogueActs(), 1)
}

func TestDisjointSaveLoadLayout(t *testing.T) {
	classifier := &fixedClassifier{intent: dialogue.NewIntent("greet")}
	annotator := NewLexiconAnnotator(map[string][]string{"TITLE": {"Alien"}})
	extractor := NewDisjointDialogueActExtractor(classifier, annotator)

	dir := t.TempDir()
	require.NoError(t, extractor.Save(dir))
	assert.True(t, classifier.saved)

	require.NoError(t, extractor.Load(dir))
	assert.True(t, classifier.loaded)
}

func TestDisjointLoadMissingDirectory(t *testing.T) {
	extractor := NewDisjointDialogueActExtractor(&fixedClassifier{})
	err := extractor.Load("/nonexistent/extractor")
	require.Error(t, err)
	assert.True(t, errx.IsKind(err, errx.KindNotFound))
}
