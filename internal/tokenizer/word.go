package tokenizer

import (
	"sort"
	"strings"
	"unicode"
)

// Verify Word satisfies the encoder interfaces.
var (
	_ Encoder   = (*Word)(nil)
	_ Trainable = (*Word)(nil)
)

// Word is a word-level vocabulary tokenizer.
//
// Fit builds a vocabulary of the most frequent words in a corpus; Encode and
// Sequences then map text to integer ids. Words are ranked by descending
// corpus frequency with ties broken by first appearance, and assigned ids
// starting at 2 (0 is padding, 1 is out-of-vocabulary).
type Word struct {
	vocabSize int
	index     map[string]int
}

// NewWord creates a word tokenizer with the given total vocabulary size,
// including the two reserved ids. vocabSize must be at least 3 to admit any
// real word.
func NewWord(vocabSize int) *Word {
	return &Word{
		vocabSize: vocabSize,
		index:     make(map[string]int),
	}
}

// Fit builds the vocabulary from the corpus, replacing any previous one.
// It keeps the top vocabSize-2 words by frequency. Calling Fit again with
// the same corpus yields the same vocabulary; fits are not cumulative.
func (w *Word) Fit(texts []string) {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	order := 0
	for _, text := range texts {
		for _, tok := range tokenize(text) {
			if _, ok := counts[tok]; !ok {
				firstSeen[tok] = order
				order++
			}
			counts[tok]++
		}
	}

	words := make([]string, 0, len(counts))
	for word := range counts {
		words = append(words, word)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return firstSeen[words[i]] < firstSeen[words[j]]
	})

	keep := w.vocabSize - 2
	if keep < 0 {
		keep = 0
	}
	if keep > len(words) {
		keep = len(words)
	}

	w.index = make(map[string]int, keep)
	for i := 0; i < keep; i++ {
		w.index[words[i]] = i + 2
	}
}

// Encode maps a single text to token ids. Unknown words map to OOVID;
// empty or whitespace-only text yields an empty sequence.
func (w *Word) Encode(text string) []int {
	toks := tokenize(text)
	seq := make([]int, 0, len(toks))
	for _, tok := range toks {
		if id, ok := w.index[tok]; ok {
			seq = append(seq, id)
		} else {
			seq = append(seq, OOVID)
		}
	}
	return seq
}

// Sequences maps each text independently to its id sequence.
func (w *Word) Sequences(texts []string) [][]int {
	out := make([][]int, len(texts))
	for i, text := range texts {
		out[i] = w.Encode(text)
	}
	return out
}

// VocabSize returns the configured vocabulary size, reserved ids included.
func (w *Word) VocabSize() int { return w.vocabSize }

// WordCount returns the number of distinct words currently in the
// vocabulary.
func (w *Word) WordCount() int { return len(w.index) }

// tokenize lowercases, strips punctuation and splits on whitespace.
func tokenize(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsNumber(r):
			return unicode.ToLower(r)
		case unicode.IsSpace(r):
			return r
		default:
			return ' '
		}
	}, text)
	return strings.Fields(cleaned)
}
