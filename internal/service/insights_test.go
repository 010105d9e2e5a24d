package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/neighborly-labs/neighborly/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockInsightsPostRepository is a mock implementation of InsightsPostRepository
type MockInsightsPostRepository struct {
	mock.Mock
}

func (m *MockInsightsPostRepository) GetByID(ctx context.Context, id string) (*domain.CommunityPost, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CommunityPost), args.Error(1)
}

func (m *MockInsightsPostRepository) UpdateSummary(ctx context.Context, id, summary string) error {
	args := m.Called(ctx, id, summary)
	return args.Error(0)
}

func longPost(id string) *domain.CommunityPost {
	content := strings.TrimSpace(strings.Repeat("word ", 60))
	return domain.NewCommunityPost(id, domain.PostCategoryDiscussion, "Long post", content, time.Now())
}

func TestInsightsServiceSummarizePost(t *testing.T) {
	ctx := context.Background()

	t.Run("generates and stores a summary", func(t *testing.T) {
		posts := new(MockInsightsPostRepository)
		generator := new(MockGenerationClient)

		post := longPost("post-1")
		posts.On("GetByID", ctx, "post-1").Return(post, nil)
		generator.On("Complete", mock.Anything, mock.Anything).Return("  A concise summary.  ", nil)
		posts.On("UpdateSummary", ctx, "post-1", "A concise summary.").Return(nil)

		svc := NewInsightsService(posts, generator)

		summary, err := svc.SummarizePost(ctx, "post-1")

		require.NoError(t, err)
		assert.Equal(t, "A concise summary.", summary)
		posts.AssertExpectations(t)

		require.Len(t, generator.prompts, 1)
		assert.Contains(t, generator.prompts[0], "Summarize this community post as concisely as you possibly can:")
		assert.Contains(t, generator.prompts[0], post.Content)
	})

	t.Run("refuses posts under the word threshold", func(t *testing.T) {
		posts := new(MockInsightsPostRepository)
		generator := new(MockGenerationClient)

		short := domain.NewCommunityPost("post-1", domain.PostCategoryNews, "Short", "Only a handful of words here.", time.Now())
		posts.On("GetByID", ctx, "post-1").Return(short, nil)

		svc := NewInsightsService(posts, generator)

		_, err := svc.SummarizePost(ctx, "post-1")

		assert.ErrorIs(t, err, domain.ErrPostTooShort)
		generator.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
	})

	t.Run("unknown post propagates not found", func(t *testing.T) {
		posts := new(MockInsightsPostRepository)
		generator := new(MockGenerationClient)

		posts.On("GetByID", ctx, "missing").Return(nil, domain.ErrPostNotFound)

		svc := NewInsightsService(posts, generator)

		_, err := svc.SummarizePost(ctx, "missing")

		assert.ErrorIs(t, err, domain.ErrPostNotFound)
	})

	t.Run("store failure is returned", func(t *testing.T) {
		posts := new(MockInsightsPostRepository)
		generator := new(MockGenerationClient)

		posts.On("GetByID", ctx, "post-1").Return(longPost("post-1"), nil)
		generator.On("Complete", mock.Anything, mock.Anything).Return("summary", nil)
		posts.On("UpdateSummary", ctx, "post-1", "summary").Return(errors.New("disk full"))

		svc := NewInsightsService(posts, generator)

		_, err := svc.SummarizePost(ctx, "post-1")

		assert.Error(t, err)
	})
}

func TestInsightsServiceAnalyzeComments(t *testing.T) {
	ctx := context.Background()

	t.Run("parses summary and sentiment from the reply", func(t *testing.T) {
		generator := new(MockGenerationClient)
		generator.On("Complete", mock.Anything, mock.Anything).
			Return("Summary: Users love the new park hours.\nSentiment: Positive", nil)

		svc := NewInsightsService(new(MockInsightsPostRepository), generator)

		insights, err := svc.AnalyzeComments(ctx, []Comment{
			{Author: "alice", Text: "The new hours are great"},
			{Author: "bob", Text: "Finally open on Sundays!"},
		})

		require.NoError(t, err)
		assert.Equal(t, "Users love the new park hours.", insights.Summary)
		assert.Equal(t, "Positive", insights.Sentiment)

		require.Len(t, generator.prompts, 1)
		assert.Contains(t, generator.prompts[0], "- The new hours are great")
		assert.Contains(t, generator.prompts[0], "- Finally open on Sundays!")
	})

	t.Run("unparseable reply yields empty insights", func(t *testing.T) {
		generator := new(MockGenerationClient)
		generator.On("Complete", mock.Anything, mock.Anything).Return("I cannot help with that.", nil)

		svc := NewInsightsService(new(MockInsightsPostRepository), generator)

		insights, err := svc.AnalyzeComments(ctx, []Comment{{Text: "a comment"}})

		require.NoError(t, err)
		assert.Empty(t, insights.Summary)
		assert.Empty(t, insights.Sentiment)
	})

	t.Run("rejects empty comment list", func(t *testing.T) {
		svc := NewInsightsService(new(MockInsightsPostRepository), new(MockGenerationClient))

		_, err := svc.AnalyzeComments(ctx, nil)

		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.ErrCodeValidation, domainErr.Code)
	})

	t.Run("generation failure is returned", func(t *testing.T) {
		generator := new(MockGenerationClient)
		generator.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("model overloaded"))

		svc := NewInsightsService(new(MockInsightsPostRepository), generator)

		_, err := svc.AnalyzeComments(ctx, []Comment{{Text: "a comment"}})

		assert.Error(t, err)
	})
}
