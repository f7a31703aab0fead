package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubword_UnknownEncoding(t *testing.T) {
	tok, err := NewSubword("invalid_encoding_xyz")
	assert.Error(t, err)
	assert.Nil(t, tok)
	assert.Contains(t, err.Error(), "invalid_encoding_xyz")
}

// The valid-encoding cases need the BPE data, which tiktoken fetches on
// first use; skip when it is not reachable.
func TestSubword_Encode(t *testing.T) {
	tok, err := NewSubword("cl100k_base")
	if err != nil {
		t.Skipf("cl100k_base encoding not available: %v", err)
	}
	require.NotNil(t, tok)
	assert.Equal(t, "cl100k_base", tok.Name())
	assert.Greater(t, tok.VocabSize(), 100000)

	ids := tok.Encode("hello world")
	assert.NotEmpty(t, ids)
	for _, id := range ids {
		assert.GreaterOrEqual(t, id, 0)
		assert.Less(t, id, tok.VocabSize())
	}
}
