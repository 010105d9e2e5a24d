package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/neighborly-labs/neighborly/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCorpusPostRepository is a mock implementation of CorpusPostRepository
type MockCorpusPostRepository struct {
	mock.Mock
}

func (m *MockCorpusPostRepository) ListAll(ctx context.Context) ([]*domain.CommunityPost, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.CommunityPost), args.Error(1)
}

// MockCorpusHelpRequestRepository is a mock implementation of CorpusHelpRequestRepository
type MockCorpusHelpRequestRepository struct {
	mock.Mock
}

func (m *MockCorpusHelpRequestRepository) ListAll(ctx context.Context) ([]*domain.HelpRequest, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.HelpRequest), args.Error(1)
}

// MockEmbeddingClient is a mock implementation of EmbeddingClient
type MockEmbeddingClient struct {
	mock.Mock
}

func (m *MockEmbeddingClient) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

func (m *MockEmbeddingClient) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

func TestRenderPost(t *testing.T) {
	createdAt := time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)
	post := domain.NewCommunityPost("post-1", domain.PostCategoryNews, "Block Party", "Join us on Saturday at the park!", createdAt)

	rendered := RenderPost(post)

	assert.Equal(t,
		`On a news community post this Sat, 14 Mar 2026 09:30:00 UTC, titled "Block Party", the author says the following: Join us on Saturday at the park!`,
		rendered,
	)
}

func TestRenderHelpRequest(t *testing.T) {
	createdAt := time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)

	t.Run("includes location, volunteer count, and status", func(t *testing.T) {
		req := domain.NewHelpRequest("hr-1", "Need help moving a couch", "12 Oak Ave", createdAt)
		req.Volunteers = []string{"user-1", "user-2"}

		rendered := RenderHelpRequest(req)

		assert.Equal(t,
			"On a help request dated at Sat, 14 Mar 2026 09:30:00 UTC, the user writes 'Need help moving a couch'. The requester is located at 12 Oak Ave and it has 2 volunteers. It is marked as Unresolved.",
			rendered,
		)
	})

	t.Run("singular volunteer and resolved status", func(t *testing.T) {
		req := domain.NewHelpRequest("hr-1", "Need a ride to the clinic", "", createdAt)
		req.Volunteers = []string{"user-1"}
		req.IsResolved = true

		rendered := RenderHelpRequest(req)

		assert.Contains(t, rendered, "it has 1 volunteer.")
		assert.Contains(t, rendered, "located at an unspecified location")
		assert.Contains(t, rendered, "It is marked as Resolved.")
	})
}

func TestCorpusServiceRebuild(t *testing.T) {
	ctx := context.Background()
	createdAt := time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)

	t.Run("embeds every post and help request", func(t *testing.T) {
		posts := []*domain.CommunityPost{
			domain.NewCommunityPost("post-1", domain.PostCategoryNews, "Block Party", "Saturday at the park", createdAt),
		}
		requests := []*domain.HelpRequest{
			domain.NewHelpRequest("hr-1", "Need a ladder", "Oak Ave", createdAt),
		}

		mockPosts := new(MockCorpusPostRepository)
		mockRequests := new(MockCorpusHelpRequestRepository)
		mockClient := new(MockEmbeddingClient)

		mockPosts.On("ListAll", ctx).Return(posts, nil)
		mockRequests.On("ListAll", ctx).Return(requests, nil)

		expectedTexts := []string{RenderPost(posts[0]), RenderHelpRequest(requests[0])}
		mockClient.On("EmbedTexts", ctx, expectedTexts).Return([][]float32{{1, 0}, {0, 1}}, nil)

		svc := NewCorpusService(mockPosts, mockRequests, mockClient, 3)

		require.NoError(t, svc.Rebuild(ctx))

		snapshot := svc.Snapshot()
		require.NotNil(t, snapshot)
		assert.Equal(t, 2, snapshot.Len())
		assert.Equal(t, 2, snapshot.Dimension())
		mockClient.AssertExpectations(t)
	})

	t.Run("empty store builds an empty snapshot without embedding", func(t *testing.T) {
		mockPosts := new(MockCorpusPostRepository)
		mockRequests := new(MockCorpusHelpRequestRepository)
		mockClient := new(MockEmbeddingClient)

		mockPosts.On("ListAll", ctx).Return([]*domain.CommunityPost{}, nil)
		mockRequests.On("ListAll", ctx).Return([]*domain.HelpRequest{}, nil)

		svc := NewCorpusService(mockPosts, mockRequests, mockClient, 3)

		require.NoError(t, svc.Rebuild(ctx))
		assert.Equal(t, 0, svc.Snapshot().Len())
		mockClient.AssertNotCalled(t, "EmbedTexts", mock.Anything, mock.Anything)
	})

	t.Run("embedding failure keeps the previous snapshot", func(t *testing.T) {
		posts := []*domain.CommunityPost{
			domain.NewCommunityPost("post-1", domain.PostCategoryNews, "Block Party", "Saturday at the park", createdAt),
		}

		mockPosts := new(MockCorpusPostRepository)
		mockRequests := new(MockCorpusHelpRequestRepository)
		mockClient := new(MockEmbeddingClient)

		mockPosts.On("ListAll", ctx).Return(posts, nil)
		mockRequests.On("ListAll", ctx).Return([]*domain.HelpRequest{}, nil)
		mockClient.On("EmbedTexts", ctx, mock.Anything).Return([][]float32{{1, 0}}, nil).Once()

		svc := NewCorpusService(mockPosts, mockRequests, mockClient, 3)
		require.NoError(t, svc.Rebuild(ctx))
		first := svc.Snapshot()

		mockClient.On("EmbedTexts", ctx, mock.Anything).Return(nil, errors.New("rate limited")).Once()

		assert.Error(t, svc.Rebuild(ctx))
		assert.Same(t, first, svc.Snapshot())
	})

	t.Run("repository failure aborts the rebuild", func(t *testing.T) {
		mockPosts := new(MockCorpusPostRepository)
		mockRequests := new(MockCorpusHelpRequestRepository)
		mockClient := new(MockEmbeddingClient)

		mockPosts.On("ListAll", ctx).Return(nil, errors.New("connection refused"))

		svc := NewCorpusService(mockPosts, mockRequests, mockClient, 3)

		assert.Error(t, svc.Rebuild(ctx))
		assert.Nil(t, svc.Snapshot())
	})
}

func TestCorpusServiceRetrieve(t *testing.T) {
	ctx := context.Background()
	createdAt := time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)

	buildService := func(t *testing.T, embeddings [][]float32, posts []*domain.CommunityPost) (*CorpusService, *MockEmbeddingClient) {
		t.Helper()

		mockPosts := new(MockCorpusPostRepository)
		mockRequests := new(MockCorpusHelpRequestRepository)
		mockClient := new(MockEmbeddingClient)

		mockPosts.On("ListAll", ctx).Return(posts, nil)
		mockRequests.On("ListAll", ctx).Return([]*domain.HelpRequest{}, nil)
		mockClient.On("EmbedTexts", ctx, mock.Anything).Return(embeddings, nil)

		svc := NewCorpusService(mockPosts, mockRequests, mockClient, 3)
		require.NoError(t, svc.Rebuild(ctx))
		return svc, mockClient
	}

	t.Run("returns the most similar texts first", func(t *testing.T) {
		posts := []*domain.CommunityPost{
			domain.NewCommunityPost("post-1", domain.PostCategoryNews, "Block Party", "Saturday at the park", createdAt),
			domain.NewCommunityPost("post-2", domain.PostCategoryDiscussion, "Pothole on Elm", "Getting worse every week", createdAt),
			domain.NewCommunityPost("post-3", domain.PostCategoryNews, "Library Hours", "Now open Sundays", createdAt),
		}
		svc, mockClient := buildService(t, [][]float32{{1, 0}, {0, 1}, {0.7, 0.7}}, posts)

		mockClient.On("GenerateEmbedding", ctx, "when is the block party").Return([]float32{1, 0}, nil)

		results, err := svc.Retrieve(ctx, "when is the block party", 2)

		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, RenderPost(posts[0]), results[0])
		assert.Equal(t, RenderPost(posts[2]), results[1])
	})

	t.Run("RetrieveContext uses the configured top-K", func(t *testing.T) {
		posts := []*domain.CommunityPost{
			domain.NewCommunityPost("post-1", domain.PostCategoryNews, "A", "a", createdAt),
			domain.NewCommunityPost("post-2", domain.PostCategoryNews, "B", "b", createdAt),
			domain.NewCommunityPost("post-3", domain.PostCategoryNews, "C", "c", createdAt),
			domain.NewCommunityPost("post-4", domain.PostCategoryNews, "D", "d", createdAt),
		}
		svc, mockClient := buildService(t, [][]float32{{1, 0}, {0.9, 0.1}, {0.5, 0.5}, {0, 1}}, posts)

		mockClient.On("GenerateEmbedding", ctx, "anything").Return([]float32{1, 0}, nil)

		results, err := svc.RetrieveContext(ctx, "anything")

		require.NoError(t, err)
		assert.Len(t, results, 3)
	})

	t.Run("empty snapshot yields empty result without embedding", func(t *testing.T) {
		mockPosts := new(MockCorpusPostRepository)
		mockRequests := new(MockCorpusHelpRequestRepository)
		mockClient := new(MockEmbeddingClient)

		svc := NewCorpusService(mockPosts, mockRequests, mockClient, 3)

		results, err := svc.Retrieve(ctx, "anything", 3)

		require.NoError(t, err)
		assert.Empty(t, results)
		mockClient.AssertNotCalled(t, "GenerateEmbedding", mock.Anything, mock.Anything)
	})

	t.Run("query embedding failure is returned", func(t *testing.T) {
		posts := []*domain.CommunityPost{
			domain.NewCommunityPost("post-1", domain.PostCategoryNews, "A", "a", createdAt),
		}
		svc, mockClient := buildService(t, [][]float32{{1, 0}}, posts)

		mockClient.On("GenerateEmbedding", ctx, "anything").Return(nil, errors.New("rate limited"))

		_, err := svc.Retrieve(ctx, "anything", 3)

		assert.Error(t, err)
	})
}
