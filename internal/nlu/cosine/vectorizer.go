// Package cosine implements a TF-IDF nearest-neighbour intent classifier:
// training texts become l2-normalised TF-IDF vectors and classification is
// an arg-max over cosine similarity with the training matrix.
package cosine

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// Vectorizer converts texts into TF-IDF vectors over the vocabulary seen at
// fit time. Unknown tokens at transform time are ignored.
type Vectorizer struct {
	Vocabulary map[string]int `json:"vocabulary"`
	IDF        []float64      `json:"idf"`
}

// tokenize lowercases and splits on anything that is not a letter or digit.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Fit builds the vocabulary and smoothed inverse document frequencies from
// the corpus.
func (v *Vectorizer) Fit(texts []string) {
	v.Vocabulary = make(map[string]int)
	docFreq := make(map[string]int)
	for _, text := range texts {
		seen := make(map[string]struct{})
		for _, tok := range tokenize(text) {
			if _, ok := v.Vocabulary[tok]; !ok {
				v.Vocabulary[tok] = -1
			}
			if _, dup := seen[tok]; !dup {
				seen[tok] = struct{}{}
				docFreq[tok]++
			}
		}
	}

	terms := make([]string, 0, len(v.Vocabulary))
	for tok := range v.Vocabulary {
		terms = append(terms, tok)
	}
	sort.Strings(terms)

	n := float64(len(texts))
	v.IDF = make([]float64, len(terms))
	for i, tok := range terms {
		v.Vocabulary[tok] = i
		// smoothed idf, never zero and safe for unseen corpora
		v.IDF[i] = math.Log((1+n)/(1+float64(docFreq[tok]))) + 1
	}
}

// Transform maps a text to its l2-normalised TF-IDF vector.
func (v *Vectorizer) Transform(text string) []float64 {
	vec := make([]float64, len(v.IDF))
	for _, tok := range tokenize(text) {
		if idx, ok := v.Vocabulary[tok]; ok {
			vec[idx] += v.IDF[idx]
		}
	}
	normalize(vec)
	return vec
}

// FitTransform fits the vectorizer and returns the vectors of the corpus.
func (v *Vectorizer) FitTransform(texts []string) [][]float64 {
	v.Fit(texts)
	out := make([][]float64, len(texts))
	for i, text := range texts {
		out[i] = v.Transform(text)
	}
	return out
}

func normalize(vec []float64) {
	var sum float64
	for _, x := range vec {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range vec {
		vec[i] /= norm
	}
}

// dot is cosine similarity for already normalised vectors.
func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
