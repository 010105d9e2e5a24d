package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockRefresher is a mock implementation of Refresher
type MockRefresher struct {
	mock.Mock
}

func (m *MockRefresher) Refresh(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockCorpusRebuilder is a mock implementation of CorpusRebuilder
type MockCorpusRebuilder struct {
	mock.Mock
}

func (m *MockCorpusRebuilder) Rebuild(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// TestRefreshWorker_StartStop tests the worker start and stop functionality
func TestRefreshWorker_StartStop(t *testing.T) {
	mockRefresher := new(MockRefresher)
	mockRefresher.On("Refresh", mock.Anything).Return(nil)

	worker := NewRefreshWorker(mockRefresher, 100*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	// Let it run for a bit
	time.Sleep(250 * time.Millisecond)

	worker.Stop()
	wg.Wait()

	mockRefresher.AssertCalled(t, "Refresh", mock.Anything)
}

// TestRefreshWorker_ContextCancellation tests worker stops on context cancellation
func TestRefreshWorker_ContextCancellation(t *testing.T) {
	mockRefresher := new(MockRefresher)
	mockRefresher.On("Refresh", mock.Anything).Return(nil)

	worker := NewRefreshWorker(mockRefresher, 100*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	time.Sleep(150 * time.Millisecond)

	cancel()
	wg.Wait()

	mockRefresher.AssertCalled(t, "Refresh", mock.Anything)
}

// TestRefreshWorker_KeepsRunningAfterFailure tests that a failed pass does
// not stop the loop
func TestRefreshWorker_KeepsRunningAfterFailure(t *testing.T) {
	mockRefresher := new(MockRefresher)
	mockRefresher.On("Refresh", mock.Anything).Return(errors.New("rate limited"))

	worker := NewRefreshWorker(mockRefresher, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	time.Sleep(200 * time.Millisecond)

	worker.Stop()
	wg.Wait()

	assert.GreaterOrEqual(t, len(mockRefresher.Calls), 2)
}

// TestSnapshotRefresher_Refresh tests the corpus snapshot refresher
func TestSnapshotRefresher_Refresh(t *testing.T) {
	t.Run("rebuilds the corpus", func(t *testing.T) {
		mockCorpus := new(MockCorpusRebuilder)
		mockCorpus.On("Rebuild", mock.Anything).Return(nil)

		refresher := NewSnapshotRefresher(mockCorpus)
		err := refresher.Refresh(context.Background())

		assert.NoError(t, err)
		mockCorpus.AssertExpectations(t)
	})

	t.Run("rebuild failure is reported", func(t *testing.T) {
		mockCorpus := new(MockCorpusRebuilder)
		mockCorpus.On("Rebuild", mock.Anything).Return(errors.New("rate limited"))

		refresher := NewSnapshotRefresher(mockCorpus)
		err := refresher.Refresh(context.Background())

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to refresh corpus snapshot")
	})
}
