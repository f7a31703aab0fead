// Package tokenizer provides the public API for turning text into integer
// sequences.
//
// The Word tokenizer builds its vocabulary from training text by frequency;
// the Subword tokenizer wraps a pretrained BPE encoding. Both produce ids
// that reserve 0 for padding and 1 for out-of-vocabulary tokens.
package tokenizer

import (
	"github.com/GabrielDeml/simpleaiv2-sub001/internal/tokenizer"
)

// Reserved token ids.
const (
	PadID = tokenizer.PadID
	OOVID = tokenizer.OOVID
)

// Encoder turns text into integer token sequences.
type Encoder = tokenizer.Encoder

// Trainable is an Encoder whose vocabulary is learned from a corpus.
type Trainable = tokenizer.Trainable

// Word is a frequency-ranked whole-word tokenizer.
type Word = tokenizer.Word

// Subword is a pretrained byte-pair tokenizer.
type Subword = tokenizer.Subword

// NewWord creates a word tokenizer with at most vocabSize entries, padding
// and out-of-vocabulary ids included.
func NewWord(vocabSize int) *Word { return tokenizer.NewWord(vocabSize) }

// NewSubword creates a subword tokenizer backed by the named pretrained
// encoding, e.g. "cl100k_base".
func NewSubword(encodingName string) (*Subword, error) {
	return tokenizer.NewSubword(encodingName)
}

// Pad right-pads or truncates every sequence to maxLen ids.
func Pad(sequences [][]int, maxLen int) [][]int {
	return tokenizer.Pad(sequences, maxLen)
}
