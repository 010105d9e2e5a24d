package jobs

import (
	"context"
	"fmt"
	"log"
)

// CorpusRebuilder defines the interface for rebuilding the corpus snapshot
type CorpusRebuilder interface {
	Rebuild(ctx context.Context) error
}

// SnapshotRefresher adapts the corpus service to the Refresher interface
// used by the RefreshWorker.
type SnapshotRefresher struct {
	corpus CorpusRebuilder
}

// NewSnapshotRefresher creates a new SnapshotRefresher instance
func NewSnapshotRefresher(corpus CorpusRebuilder) *SnapshotRefresher {
	return &SnapshotRefresher{corpus: corpus}
}

// Refresh rebuilds the corpus snapshot from the current store contents.
func (r *SnapshotRefresher) Refresh(ctx context.Context) error {
	if err := r.corpus.Rebuild(ctx); err != nil {
		return fmt.Errorf("failed to refresh corpus snapshot: %w", err)
	}

	log.Println("corpus snapshot refreshed")
	return nil
}
