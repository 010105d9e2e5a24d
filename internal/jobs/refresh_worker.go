package jobs

import (
	"context"
	"log"
	"time"
)

// Refresher performs one corpus refresh pass.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// RefreshWorker re-embeds the retrieval corpus on a fixed interval so the
// assistant sees posts and help requests created after startup.
type RefreshWorker struct {
	refresher Refresher
	interval  time.Duration
	stopChan  chan struct{}
	doneChan  chan struct{}
}

// NewRefreshWorker creates a worker that runs refresher every interval.
func NewRefreshWorker(refresher Refresher, interval time.Duration) *RefreshWorker {
	return &RefreshWorker{
		refresher: refresher,
		interval:  interval,
		stopChan:  make(chan struct{}),
		doneChan:  make(chan struct{}),
	}
}

// Start runs the refresh loop until the context is cancelled or Stop is
// called. A failed pass is logged and the previous snapshot keeps serving.
func (w *RefreshWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	defer close(w.doneChan)

	log.Printf("snapshot refresh worker started, interval %v", w.interval)

	for {
		select {
		case <-ctx.Done():
			log.Println("snapshot refresh worker stopped: context cancelled")
			return
		case <-w.stopChan:
			log.Println("snapshot refresh worker stopped: stop requested")
			return
		case <-ticker.C:
			if err := w.refresher.Refresh(ctx); err != nil {
				log.Printf("snapshot refresh failed: %v", err)
			}
		}
	}
}

// Stop signals the loop to exit and waits for the current pass to finish.
func (w *RefreshWorker) Stop() {
	close(w.stopChan)
	<-w.doneChan
	log.Println("snapshot refresh worker shut down")
}
