package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

var _ Encoder = (*Subword)(nil)

// Subword wraps a pkoukk/tiktoken-go BPE encoding as an Encoder.
//
// Unlike Word it needs no fitting; the vocabulary is fixed by the encoding.
// Useful when the training corpus is too small to build a meaningful
// word-level vocabulary.
type Subword struct {
	encoding *tiktoken.Tiktoken
	name     string
}

// NewSubword loads a tiktoken encoding by name, e.g. "cl100k_base" or
// "p50k_base".
func NewSubword(encodingName string) (*Subword, error) {
	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("load tiktoken encoding %q: %w", encodingName, err)
	}
	return &Subword{encoding: encoding, name: encodingName}, nil
}

// Encode converts text to BPE token ids.
func (s *Subword) Encode(text string) []int {
	return s.encoding.Encode(text, nil, nil)
}

// VocabSize reports a nominal vocabulary size for the encoding.
func (s *Subword) VocabSize() int {
	// tiktoken does not expose the vocab size directly; the cl100k family
	// tops out just above 100k ids.
	return 100277
}

// Name returns the encoding name.
func (s *Subword) Name() string { return s.name }
