package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWord_FitRanksByFrequency(t *testing.T) {
	tok := NewWord(5) // room for 3 real words
	tok.Fit([]string{
		"the cat sat on the mat",
		"the dog sat",
	})

	// Frequencies: the=3, sat=2, cat/on/mat/dog=1. Ties by first seen:
	// cat before on before mat before dog.
	assert.Equal(t, 3, tok.WordCount())
	assert.Equal(t, []int{2}, tok.Encode("the"))
	assert.Equal(t, []int{3}, tok.Encode("sat"))
	assert.Equal(t, []int{4}, tok.Encode("cat"))
	assert.Equal(t, []int{OOVID}, tok.Encode("dog"))
}

func TestWord_FitReplacesVocabulary(t *testing.T) {
	tok := NewWord(10)
	tok.Fit([]string{"alpha beta"})
	require.NotEqual(t, []int{OOVID}, tok.Encode("alpha"))

	tok.Fit([]string{"gamma delta"})
	assert.Equal(t, []int{OOVID}, tok.Encode("alpha"), "old vocabulary must be dropped")
	assert.NotEqual(t, []int{OOVID}, tok.Encode("gamma"))
}

func TestWord_EncodeNormalizes(t *testing.T) {
	tok := NewWord(10)
	tok.Fit([]string{"Hello, World!"})

	tests := []struct {
		name string
		text string
		want []int
	}{
		{name: "punctuation and case ignored", text: "HELLO world.", want: []int{2, 3}},
		{name: "empty text", text: "", want: []int{}},
		{name: "whitespace only", text: "   \t\n", want: []int{}},
		{name: "unknown words", text: "goodbye moon", want: []int{OOVID, OOVID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tok.Encode(tt.text))
		})
	}
}

func TestWord_Sequences(t *testing.T) {
	tok := NewWord(10)
	tok.Fit([]string{"good movie", "bad movie"})

	seqs := tok.Sequences([]string{"good movie", "bad film", ""})
	require.Len(t, seqs, 3)
	assert.Equal(t, []int{3, 2}, seqs[0]) // movie=2 (freq 2), good=3, bad=4
	assert.Equal(t, []int{4, OOVID}, seqs[1])
	assert.Empty(t, seqs[2])
}

func TestPad(t *testing.T) {
	tests := []struct {
		name   string
		seqs   [][]int
		maxLen int
		want   [][]int
	}{
		{
			name:   "right pads short sequences",
			seqs:   [][]int{{1, 2, 3}, {4, 5}},
			maxLen: 5,
			want:   [][]int{{1, 2, 3, 0, 0}, {4, 5, 0, 0, 0}},
		},
		{
			name:   "exact fit unchanged",
			seqs:   [][]int{{6, 7, 8, 9, 10}},
			maxLen: 5,
			want:   [][]int{{6, 7, 8, 9, 10}},
		},
		{
			name:   "truncates to first maxLen tokens",
			seqs:   [][]int{{6, 7, 8, 9, 10, 11}},
			maxLen: 5,
			want:   [][]int{{6, 7, 8, 9, 10}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Pad(tt.seqs, tt.maxLen))
		})
	}
}
