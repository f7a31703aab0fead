// Package tokenizer converts raw text into integer index sequences usable as
// numeric model input.
//
// The primary implementation is Word, a frequency-ranked word-level
// vocabulary tokenizer. Subword wraps the tiktoken BPE encodings as an
// alternative for callers that want a fixed, pre-trained vocabulary.
package tokenizer

// Reserved token ids. Id 0 pads sequences, id 1 stands in for every
// out-of-vocabulary word; real words start at 2.
const (
	PadID = 0
	OOVID = 1
)

// Encoder converts a single text into a sequence of token ids.
type Encoder interface {
	Encode(text string) []int
	VocabSize() int
}

// Trainable is implemented by encoders whose vocabulary is built from a
// training corpus before use.
type Trainable interface {
	Fit(texts []string)
}

// Pad right-truncates sequences longer than maxLen and right-pads shorter
// ones with PadID. Token order is never altered. The input is not modified.
func Pad(sequences [][]int, maxLen int) [][]int {
	out := make([][]int, len(sequences))
	for i, seq := range sequences {
		padded := make([]int, maxLen)
		copy(padded, seq)
		out[i] = padded
	}
	return out
}
