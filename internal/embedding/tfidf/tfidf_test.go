package tfidf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{name: "punctuation", text: "A pilot, discovers a SIGNAL!", expected: []string{"a", "pilot", "discovers", "a", "signal"}},
		{name: "hyphen and digits", text: "Sci-Fi 2005", expected: []string{"sci", "fi", "2005"}},
		{name: "non-ascii separators", text: "café—noir", expected: []string{"caf", "noir"}},
		{name: "empty", text: "   ", expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Tokenize(tt.text))
		})
	}
}

func TestPrepare_SortedVocabularyAndIDF(t *testing.T) {
	v := NewVectorizer()
	require.NoError(t, v.Prepare([]string{"sun is hot", "moon is cold"}))

	assert.Equal(t, []string{"cold", "hot", "is", "moon", "sun"}, v.Terms())
	assert.Equal(t, 5, v.Dimension())

	pos, ok := v.Position("is")
	require.True(t, ok)
	assert.Equal(t, 2, pos)
	assert.InDelta(t, math.Log(3.0/3.0)+1, v.IDF(pos), 1e-12)

	pos, ok = v.Position("sun")
	require.True(t, ok)
	assert.InDelta(t, math.Log(3.0/2.0)+1, v.IDF(pos), 1e-12)
}

func TestPrepare_EmptyCorpus(t *testing.T) {
	v := NewVectorizer()
	assert.ErrorIs(t, v.Prepare(nil), ErrEmptyCorpus)
	assert.False(t, v.Prepared())
}

func TestPrepare_NoTokensIsNotAnError(t *testing.T) {
	v := NewVectorizer()
	require.NoError(t, v.Prepare([]string{"...", "!!"}))

	assert.True(t, v.Prepared())
	assert.Equal(t, 0, v.Dimension())

	dense, entries := v.VectorizeText("anything")
	assert.Empty(t, dense)
	assert.Empty(t, entries)
}

func TestVectorize(t *testing.T) {
	v := NewVectorizer()
	require.NoError(t, v.Prepare([]string{"sun is hot", "moon is cold"}))

	dense, entries := v.Vectorize([]string{"sun", "sun", "is", "unknown"})
	require.Len(t, dense, 5)
	require.Len(t, entries, 2)

	isPos, _ := v.Position("is")
	sunPos, _ := v.Position("sun")
	assert.Equal(t, isPos, entries[0].Position)
	assert.Equal(t, sunPos, entries[1].Position)

	assert.InDelta(t, v.IDF(isPos), dense[isPos], 1e-12)
	assert.InDelta(t, (1+math.Log(2))*v.IDF(sunPos), dense[sunPos], 1e-12)
	assert.Equal(t, dense[sunPos], entries[1].Weight)
}

func TestVectorize_UnknownTokensOnly(t *testing.T) {
	v := NewVectorizer()
	require.NoError(t, v.Prepare([]string{"sun is hot"}))

	dense, entries := v.VectorizeText("zzz qqq")
	assert.Len(t, dense, 3)
	assert.Nil(t, entries)
}
