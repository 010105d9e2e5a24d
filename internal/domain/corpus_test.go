package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCorpusSnapshot(t *testing.T) {
	now := time.Now().UTC()

	t.Run("accepts uniform dimensions", func(t *testing.T) {
		snapshot, err := NewCorpusSnapshot([]CorpusEntry{
			{Text: "a", Embedding: []float32{1, 0, 0}},
			{Text: "b", Embedding: []float32{0, 1, 0}},
		}, now)

		require.NoError(t, err)
		assert.Equal(t, 2, snapshot.Len())
		assert.Equal(t, 3, snapshot.Dimension())
		assert.Equal(t, now, snapshot.BuiltAt())
	})

	t.Run("accepts empty corpus", func(t *testing.T) {
		snapshot, err := NewCorpusSnapshot(nil, now)

		require.NoError(t, err)
		assert.Equal(t, 0, snapshot.Len())
		assert.Equal(t, 0, snapshot.Dimension())
	})

	t.Run("rejects mixed dimensions", func(t *testing.T) {
		_, err := NewCorpusSnapshot([]CorpusEntry{
			{Text: "a", Embedding: []float32{1, 0, 0}},
			{Text: "b", Embedding: []float32{0, 1}},
		}, now)

		assert.Error(t, err)
	})

	t.Run("rejects entries without embeddings", func(t *testing.T) {
		_, err := NewCorpusSnapshot([]CorpusEntry{
			{Text: "a", Embedding: nil},
		}, now)

		assert.Error(t, err)
	})
}

func TestCorpusSnapshotSearch(t *testing.T) {
	now := time.Now().UTC()

	snapshot, err := NewCorpusSnapshot([]CorpusEntry{
		{Text: "east", Embedding: []float32{1, 0}},
		{Text: "north", Embedding: []float32{0, 1}},
		{Text: "northeast", Embedding: []float32{1, 1}},
		{Text: "west", Embedding: []float32{-1, 0}},
	}, now)
	require.NoError(t, err)

	t.Run("returns top k by descending similarity", func(t *testing.T) {
		results := snapshot.Search([]float32{1, 0}, 2)

		assert.Equal(t, []string{"east", "northeast"}, results)
	})

	t.Run("k larger than corpus returns everything ranked", func(t *testing.T) {
		results := snapshot.Search([]float32{1, 0}, 10)

		assert.Len(t, results, 4)
		assert.Equal(t, "east", results[0])
		assert.Equal(t, "west", results[3])
	})

	t.Run("ties keep insertion order", func(t *testing.T) {
		tied, err := NewCorpusSnapshot([]CorpusEntry{
			{Text: "first", Embedding: []float32{1, 0}},
			{Text: "second", Embedding: []float32{1, 0}},
			{Text: "third", Embedding: []float32{1, 0}},
		}, now)
		require.NoError(t, err)

		results := tied.Search([]float32{1, 0}, 3)

		assert.Equal(t, []string{"first", "second", "third"}, results)
	})

	t.Run("k of zero or less returns empty", func(t *testing.T) {
		assert.Empty(t, snapshot.Search([]float32{1, 0}, 0))
		assert.Empty(t, snapshot.Search([]float32{1, 0}, -1))
	})

	t.Run("nil snapshot returns empty", func(t *testing.T) {
		var nilSnapshot *CorpusSnapshot
		assert.Empty(t, nilSnapshot.Search([]float32{1, 0}, 3))
		assert.Equal(t, 0, nilSnapshot.Len())
	})

	t.Run("empty snapshot returns empty", func(t *testing.T) {
		empty, err := NewCorpusSnapshot(nil, now)
		require.NoError(t, err)

		assert.Empty(t, empty.Search([]float32{1, 0}, 3))
	})
}
