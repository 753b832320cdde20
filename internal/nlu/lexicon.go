package nlu

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	errx "github.com/converseworks/convkit/internal/core/error"
	"github.com/converseworks/convkit/internal/dialogue"
)

const lexiconFile = "lexicon.json"

// LexiconAnnotator finds slot values by exact, case-insensitive matching
// against a fixed slot-to-values lexicon. Matches carry character offsets
// into the source text.
type LexiconAnnotator struct {
	entries map[string][]string
}

var _ SlotValueAnnotator = (*LexiconAnnotator)(nil)

// NewLexiconAnnotator creates an annotator over a slot-to-values lexicon.
func NewLexiconAnnotator(entries map[string][]string) *LexiconAnnotator {
	if entries == nil {
		entries = make(map[string][]string)
	}
	return &LexiconAnnotator{entries: entries}
}

// AddEntry registers another value for the slot.
func (l *LexiconAnnotator) AddEntry(slot, value string) {
	l.entries[slot] = append(l.entries[slot], value)
}

// Annotate returns every lexicon value found in the text, with offsets. The
// annotation value is the original lexicon form, not the surface form.
func (l *LexiconAnnotator) Annotate(_ context.Context, text string) ([]dialogue.SlotValueAnnotation, error) {
	lower := strings.ToLower(text)
	var found []dialogue.SlotValueAnnotation
	for slot, values := range l.entries {
		for _, value := range values {
			needle := strings.ToLower(value)
			if needle == "" {
				continue
			}
			for from := 0; ; {
				idx := strings.Index(lower[from:], needle)
				if idx < 0 {
					break
				}
				start := from + idx
				end := start + len(needle)
				found = append(found, dialogue.NewSlotValueAnnotation(slot, value, start, end))
				from = end
			}
		}
	}
	// order by offset then slot so results are stable across map iteration
	sort.Slice(found, func(i, j int) bool {
		if found[i].Start != found[j].Start {
			return found[i].Start < found[j].Start
		}
		return found[i].Slot < found[j].Slot
	})
	return found, nil
}

// Save writes the lexicon as JSON under the given directory.
func (l *LexiconAnnotator) Save(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return errx.Fatal(err, "create annotator directory")
	}
	data, err := json.MarshalIndent(l.entries, "", "  ")
	if err != nil {
		return errx.Fatal(err, "encode lexicon")
	}
	if err := os.WriteFile(filepath.Join(path, lexiconFile), data, 0o644); err != nil {
		return errx.Fatal(err, "write lexicon")
	}
	return nil
}

// Load replaces the lexicon with one previously written by Save.
func (l *LexiconAnnotator) Load(path string) error {
	data, err := os.ReadFile(filepath.Join(path, lexiconFile))
	if err != nil {
		if os.IsNotExist(err) {
			return errx.NotFound("lexicon at %s: %v", path, err)
		}
		return errx.Fatal(err, "read lexicon")
	}
	entries := make(map[string][]string)
	if err := json.Unmarshal(data, &entries); err != nil {
		return errx.Fatal(err, "decode lexicon")
	}
	l.entries = entries
	return nil
}
