package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/neighborly-labs/neighborly/internal/domain"
	"github.com/neighborly-labs/neighborly/internal/telemetry"
)

// EmbeddingClient defines the interface for generating embeddings
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// CorpusPostRepository defines the repository interface for reading posts
// at snapshot build time
type CorpusPostRepository interface {
	ListAll(ctx context.Context) ([]*domain.CommunityPost, error)
}

// CorpusHelpRequestRepository defines the repository interface for reading
// help requests at snapshot build time
type CorpusHelpRequestRepository interface {
	ListAll(ctx context.Context) ([]*domain.HelpRequest, error)
}

// CorpusService owns the in-memory corpus snapshot and answers retrieval
// queries against it. The snapshot is replaced wholesale by Rebuild and is
// immutable in between, so Retrieve never takes the write lock.
type CorpusService struct {
	posts    CorpusPostRepository
	requests CorpusHelpRequestRepository
	client   EmbeddingClient
	topK     int

	mu       sync.RWMutex
	snapshot *domain.CorpusSnapshot
}

// NewCorpusService creates a new CorpusService instance
func NewCorpusService(
	posts CorpusPostRepository,
	requests CorpusHelpRequestRepository,
	client EmbeddingClient,
	topK int,
) *CorpusService {
	if topK <= 0 {
		topK = 3
	}
	return &CorpusService{
		posts:    posts,
		requests: requests,
		client:   client,
		topK:     topK,
	}
}

// Rebuild pulls all current community content, renders each item to a
// sentence, embeds every sentence, and swaps in the resulting snapshot.
// Any failure leaves the previous snapshot in place.
func (s *CorpusService) Rebuild(ctx context.Context) error {
	ctx, span := telemetry.StartSpan(ctx, "CorpusService.Rebuild", telemetry.SpanAttributes{
		Operation: "rebuild",
	})
	defer span.End()

	posts, err := s.posts.ListAll(ctx)
	if err != nil {
		span.SetError(err)
		return fmt.Errorf("failed to load posts: %w", err)
	}

	requests, err := s.requests.ListAll(ctx)
	if err != nil {
		span.SetError(err)
		return fmt.Errorf("failed to load help requests: %w", err)
	}

	texts := make([]string, 0, len(posts)+len(requests))
	for _, post := range posts {
		texts = append(texts, RenderPost(post))
	}
	for _, req := range requests {
		texts = append(texts, RenderHelpRequest(req))
	}

	entries := make([]domain.CorpusEntry, 0, len(texts))
	if len(texts) > 0 {
		embeddings, err := s.client.EmbedTexts(ctx, texts)
		if err != nil {
			span.SetError(err)
			return fmt.Errorf("failed to embed corpus: %w", err)
		}
		for i, text := range texts {
			entries = append(entries, domain.CorpusEntry{
				Text:      text,
				Embedding: embeddings[i],
			})
		}
	}

	snapshot, err := domain.NewCorpusSnapshot(entries, time.Now().UTC())
	if err != nil {
		span.SetError(err)
		return fmt.Errorf("failed to assemble snapshot: %w", err)
	}

	s.mu.Lock()
	s.snapshot = snapshot
	s.mu.Unlock()

	log.Printf("corpus snapshot rebuilt: %d entries, dimension %d", snapshot.Len(), snapshot.Dimension())
	return nil
}

// Snapshot returns the current snapshot, which may be nil before the first
// successful Rebuild.
func (s *CorpusService) Snapshot() *domain.CorpusSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Retrieve embeds the query and returns the texts of the k most similar
// corpus entries. An empty (or not yet built) snapshot yields an empty
// result; only the query embedding call can fail.
func (s *CorpusService) Retrieve(ctx context.Context, query string, k int) ([]string, error) {
	ctx, span := telemetry.StartSpan(ctx, "CorpusService.Retrieve", telemetry.SpanAttributes{
		Operation: "retrieve",
	})
	defer span.End()

	snapshot := s.Snapshot()
	if snapshot.Len() == 0 || k <= 0 {
		return []string{}, nil
	}

	embedding, err := s.client.GenerateEmbedding(ctx, query)
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	return snapshot.Search(embedding, k), nil
}

// RetrieveContext retrieves with the configured default top-K.
func (s *CorpusService) RetrieveContext(ctx context.Context, query string) ([]string, error) {
	return s.Retrieve(ctx, query, s.topK)
}

// RenderPost renders a community post to the sentence embedded in the corpus.
func RenderPost(post *domain.CommunityPost) string {
	return fmt.Sprintf(
		"On a %s community post this %s, titled %q, the author says the following: %s",
		post.Category,
		post.CreatedAt.Format(time.RFC1123),
		post.Title,
		post.Content,
	)
}

// RenderHelpRequest renders a help request to the sentence embedded in the
// corpus, including location, volunteer count, and resolution status.
func RenderHelpRequest(req *domain.HelpRequest) string {
	location := req.Location
	if location == "" {
		location = "an unspecified location"
	}

	status := "Unresolved"
	if req.IsResolved {
		status = "Resolved"
	}

	count := len(req.Volunteers)
	plural := "s"
	if count == 1 {
		plural = ""
	}

	return fmt.Sprintf(
		"On a help request dated at %s, the user writes '%s'. The requester is located at %s and it has %d volunteer%s. It is marked as %s.",
		req.CreatedAt.Format(time.RFC1123),
		req.Description,
		location,
		count,
		plural,
		status,
	)
}
