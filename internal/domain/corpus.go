package domain

import (
	"fmt"
	"sort"
	"time"
)

// CorpusEntry is one embedded rendering of a community item. Entries are
// immutable once the snapshot containing them is built.
type CorpusEntry struct {
	Text      string
	Embedding []float32
}

// CorpusSnapshot is a point-in-time materialization of the community corpus.
// A snapshot is never mutated; rebuilds replace it wholesale, so a snapshot
// may be shared across concurrent readers without locking.
type CorpusSnapshot struct {
	entries   []CorpusEntry
	dimension int
	builtAt   time.Time
}

// NewCorpusSnapshot assembles a snapshot from embedded entries. All entries
// must carry embeddings of the same dimension; mixed dimensions indicate the
// embedding model changed mid-build and the snapshot is rejected.
func NewCorpusSnapshot(entries []CorpusEntry, builtAt time.Time) (*CorpusSnapshot, error) {
	dimension := 0
	for i, e := range entries {
		if len(e.Embedding) == 0 {
			return nil, fmt.Errorf("corpus entry %d has no embedding", i)
		}
		if dimension == 0 {
			dimension = len(e.Embedding)
		} else if len(e.Embedding) != dimension {
			return nil, fmt.Errorf("corpus entry %d has dimension %d, expected %d", i, len(e.Embedding), dimension)
		}
	}

	return &CorpusSnapshot{
		entries:   entries,
		dimension: dimension,
		builtAt:   builtAt,
	}, nil
}

// Len returns the number of entries in the snapshot.
func (s *CorpusSnapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Dimension returns the embedding dimension of the snapshot, or 0 when empty.
func (s *CorpusSnapshot) Dimension() int {
	if s == nil {
		return 0
	}
	return s.dimension
}

// BuiltAt returns the time the snapshot was assembled.
func (s *CorpusSnapshot) BuiltAt() time.Time {
	if s == nil {
		return time.Time{}
	}
	return s.builtAt
}

// Search scores every entry against the query embedding with cosine
// similarity and returns the texts of the top k, sorted by descending score.
// The sort is stable, so ties keep corpus insertion order. An empty or nil
// snapshot, or k <= 0, yields an empty result.
func (s *CorpusSnapshot) Search(queryEmbedding []float32, k int) []string {
	if s == nil || len(s.entries) == 0 || k <= 0 {
		return []string{}
	}

	type scored struct {
		text  string
		score float32
	}

	ranked := make([]scored, len(s.entries))
	for i, e := range s.entries {
		ranked[i] = scored{
			text:  e.Text,
			score: CosineSimilarity(queryEmbedding, e.Embedding),
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if k > len(ranked) {
		k = len(ranked)
	}

	texts := make([]string, k)
	for i := 0; i < k; i++ {
		texts[i] = ranked[i].text
	}
	return texts
}
