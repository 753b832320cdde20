package cosine

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	errx "github.com/converseworks/convkit/internal/core/error"
	"github.com/converseworks/convkit/internal/dialogue"
	"github.com/converseworks/convkit/internal/nlu"
	logx "github.com/converseworks/convkit/pkg/logger"
)

const (
	matrixFile     = "matrix.json"
	vectorizerFile = "vectorizer.json"
	labelsFile     = "labels.json"
)

// Classifier is a nearest-neighbour intent classifier over TF-IDF vectors.
// Each training text keeps its own row; classification returns the intent of
// the most similar row.
type Classifier struct {
	vectorizer Vectorizer
	matrix     [][]float64
	labels     []string
	intents    map[string]*dialogue.Intent
}

var _ nlu.IntentClassifier = (*Classifier)(nil)

// NewClassifier creates an untrained classifier.
func NewClassifier() *Classifier {
	return &Classifier{intents: make(map[string]*dialogue.Intent)}
}

// Train fits the vectorizer on the texts and stores one vector per text
// together with its intent label. Texts and intents must be parallel.
func (c *Classifier) Train(_ context.Context, texts []string, intents []*dialogue.Intent) error {
	if len(texts) != len(intents) {
		return errx.Invalid("length mismatch: %d texts vs %d intents", len(texts), len(intents))
	}
	if len(texts) == 0 {
		return errx.Invalid("empty training set")
	}

	c.matrix = c.vectorizer.FitTransform(texts)
	c.labels = make([]string, len(intents))
	c.intents = make(map[string]*dialogue.Intent, len(intents))
	for i, intent := range intents {
		if intent == nil {
			return errx.Invalid("nil intent at index %d", i)
		}
		c.labels[i] = intent.Label()
		c.intents[intent.Label()] = intent
	}
	logx.Debug().Int("examples", len(texts)).Int("vocabulary", len(c.vectorizer.Vocabulary)).
		Msg("cosine classifier trained")
	return nil
}

// Classify returns the intent of the training example most similar to the
// text. A text sharing no vocabulary with the corpus yields a nil intent.
func (c *Classifier) Classify(_ context.Context, text string) (*dialogue.Intent, error) {
	if len(c.matrix) == 0 {
		return nil, errx.Invalid("classifier is not trained")
	}

	vec := c.vectorizer.Transform(text)
	best, bestScore := -1, 0.0
	for i, row := range c.matrix {
		if score := dot(vec, row); score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return nil, nil
	}
	return c.intents[c.labels[best]], nil
}

// Save writes the matrix, vectorizer and labels as sibling JSON artefacts
// under the given directory.
func (c *Classifier) Save(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return errx.Fatal(err, "create classifier directory")
	}
	artefacts := map[string]any{
		matrixFile:     c.matrix,
		vectorizerFile: c.vectorizer,
		labelsFile:     c.labels,
	}
	for name, value := range artefacts {
		data, err := json.Marshal(value)
		if err != nil {
			return errx.Fatal(err, "encode classifier artefact")
		}
		if err := os.WriteFile(filepath.Join(path, name), data, 0o644); err != nil {
			return errx.Fatal(err, "write classifier artefact")
		}
	}
	return nil
}

// Load restores a model written by Save. Intents are rebuilt as flat intents
// from the stored labels.
func (c *Classifier) Load(path string) error {
	if _, err := os.Stat(path); err != nil {
		return errx.NotFound("classifier at %s: %v", path, err)
	}
	if err := loadJSON(filepath.Join(path, matrixFile), &c.matrix); err != nil {
		return err
	}
	if err := loadJSON(filepath.Join(path, vectorizerFile), &c.vectorizer); err != nil {
		return err
	}
	if err := loadJSON(filepath.Join(path, labelsFile), &c.labels); err != nil {
		return err
	}
	c.intents = make(map[string]*dialogue.Intent, len(c.labels))
	for _, label := range c.labels {
		if _, ok := c.intents[label]; !ok {
			c.intents[label] = dialogue.NewIntent(label)
		}
	}
	return nil
}

func loadJSON(path string, into any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errx.NotFound("classifier artefact %s: %v", path, err)
		}
		return errx.Fatal(err, "read classifier artefact")
	}
	if err := json.Unmarshal(data, into); err != nil {
		return errx.Fatal(err, "decode classifier artefact")
	}
	return nil
}
