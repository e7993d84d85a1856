// Package summarizer shortens plot descriptions for display.
package summarizer

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"recommender/internal/embedding/tfidf"
)

// DefaultMaxSentences is used when a non-positive limit is given.
const DefaultMaxSentences = 2

var sentenceRe = regexp.MustCompile(`[^.!?]+[.!?]+|[^.!?]+$`)

// Sentence is one sentence of an excerpt.
type Sentence struct {
	Text string
	// Focus marks the sentence sharing the most words with the focus text.
	Focus bool
}

// Excerpter ranks plot sentences by word frequency (stopwords filtered)
// plus overlap with a focus text such as the user's seed.
type Excerpter struct {
	stopwords map[string]struct{}
}

// NewExcerpter creates an excerpter with the built-in English stopword list.
func NewExcerpter() *Excerpter {
	return &Excerpter{stopwords: defaultStopwords()}
}

// Split breaks text into trimmed sentences. A trailing fragment without
// terminal punctuation counts as a sentence.
func Split(text string) []string {
	var out []string
	for _, s := range sentenceRe.FindAllString(text, -1) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Excerpt keeps up to maxSentences of text in their original order.
func (e *Excerpter) Excerpt(text, focus string, maxSentences int) []Sentence {
	if maxSentences <= 0 {
		maxSentences = DefaultMaxSentences
	}
	sentences := Split(text)
	if len(sentences) == 0 {
		return nil
	}

	tokens := make([][]string, len(sentences))
	freq := map[string]float64{}
	for i, sent := range sentences {
		tokens[i] = e.content(tfidf.Tokenize(sent))
		for _, tok := range tokens[i] {
			freq[tok]++
		}
	}
	maxF := 0.0
	for _, v := range freq {
		maxF = max(maxF, v)
	}

	focusSet := make(map[string]struct{})
	for _, tok := range e.content(tfidf.Tokenize(focus)) {
		focusSet[tok] = struct{}{}
	}

	type scored struct {
		idx     int
		score   float64
		overlap int
	}
	scores := make([]scored, len(sentences))
	for i, toks := range tokens {
		sc := scored{idx: i}
		seen := make(map[string]struct{}, len(toks))
		for _, tok := range toks {
			if maxF > 0 {
				sc.score += freq[tok] / maxF
			}
			if _, dup := seen[tok]; dup {
				continue
			}
			seen[tok] = struct{}{}
			if _, ok := focusSet[tok]; ok {
				sc.overlap++
			}
		}
		if n := len(toks); n > 0 {
			sc.score /= math.Sqrt(float64(n))
		}
		// Focus overlap outranks frequency.
		sc.score += float64(sc.overlap)
		scores[i] = sc
	}

	focusIdx := -1
	best := 0
	for _, sc := range scores {
		if sc.overlap > best {
			best, focusIdx = sc.overlap, sc.idx
		}
	}

	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	keep := make([]int, 0, maxSentences)
	for _, sc := range scores[:min(maxSentences, len(scores))] {
		keep = append(keep, sc.idx)
	}
	sort.Ints(keep)

	out := make([]Sentence, len(keep))
	for i, idx := range keep {
		out[i] = Sentence{Text: sentences[idx], Focus: idx == focusIdx}
	}
	return out
}

// Join renders sentences as plain text.
func Join(sentences []Sentence) string {
	parts := make([]string, len(sentences))
	for i, s := range sentences {
		parts[i] = s.Text
	}
	return strings.Join(parts, " ")
}

func (e *Excerpter) content(tokens []string) []string {
	out := tokens[:0:0]
	for _, tok := range tokens {
		if _, stop := e.stopwords[tok]; !stop {
			out = append(out, tok)
		}
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "for", "to", "of", "in", "on", "at", "by", "with",
		"as", "is", "are", "was", "were", "be", "been", "it", "its", "this", "that", "from", "into", "about",
		"his", "her", "their", "he", "she", "they", "who", "when", "after", "before", "while", "so", "than",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
