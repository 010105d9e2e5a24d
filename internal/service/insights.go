package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/neighborly-labs/neighborly/internal/domain"
	"github.com/neighborly-labs/neighborly/internal/telemetry"
)

// minSummaryWords is the shortest post body worth summarizing.
const minSummaryWords = 50

// InsightsPostRepository defines the repository interface for summarization
type InsightsPostRepository interface {
	GetByID(ctx context.Context, id string) (*domain.CommunityPost, error)
	UpdateSummary(ctx context.Context, id, summary string) error
}

// Comment is one user comment submitted for sentiment analysis
type Comment struct {
	Author string
	Text   string
}

// CommentInsights is the parsed result of a comment analysis
type CommentInsights struct {
	Summary   string
	Sentiment string
}

// InsightsService produces AI summaries of posts and sentiment analysis of
// comment threads.
type InsightsService struct {
	posts     InsightsPostRepository
	generator GenerationClient

	modelTimeout time.Duration
}

// NewInsightsService creates a new InsightsService instance
func NewInsightsService(posts InsightsPostRepository, generator GenerationClient) *InsightsService {
	return &InsightsService{
		posts:     posts,
		generator: generator,
	}
}

// NewInsightsServiceWithTimeout bounds each generation call by timeout.
func NewInsightsServiceWithTimeout(posts InsightsPostRepository, generator GenerationClient, timeout time.Duration) *InsightsService {
	svc := NewInsightsService(posts, generator)
	svc.modelTimeout = timeout
	return svc
}

// SummarizePost generates, stores, and returns a concise summary of a post.
// Posts under the minimum word count are not summarized.
func (s *InsightsService) SummarizePost(ctx context.Context, postID string) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, "InsightsService.SummarizePost", telemetry.SpanAttributes{
		PostID:    postID,
		Operation: "summarize",
	})
	defer span.End()

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return "", err
	}

	if post.WordCount() < minSummaryWords {
		return "", domain.ErrPostTooShort
	}

	prompt := fmt.Sprintf("Summarize this community post as concisely as you possibly can:\n\n%s", post.Content)
	summary, err := s.complete(ctx, prompt)
	if err != nil {
		span.SetError(err)
		return "", fmt.Errorf("failed to generate summary: %w", err)
	}
	summary = strings.TrimSpace(summary)

	if err := s.posts.UpdateSummary(ctx, postID, summary); err != nil {
		span.SetError(err)
		return "", fmt.Errorf("failed to store summary: %w", err)
	}

	return summary, nil
}

var insightsPattern = regexp.MustCompile(`Summary:\s*(.*)\nSentiment:\s*(.*)`)

// AnalyzeComments summarizes what commenters are saying and classifies the
// overall sentiment as Positive, Neutral, or Negative.
func (s *InsightsService) AnalyzeComments(ctx context.Context, comments []Comment) (*CommentInsights, error) {
	ctx, span := telemetry.StartSpan(ctx, "InsightsService.AnalyzeComments", telemetry.SpanAttributes{
		Operation: "analyze_comments",
	})
	defer span.End()

	if len(comments) == 0 {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "at least one comment is required")
	}

	lines := make([]string, len(comments))
	for i, c := range comments {
		lines[i] = "- " + c.Text
	}

	var sb strings.Builder
	sb.WriteString("Given these user comments on a community post, summarize what users are saying and describe the overall sentiment (Positive, Neutral, or Negative).\n\n")
	sb.WriteString("Comments:\n")
	sb.WriteString(strings.Join(lines, "\n"))
	sb.WriteString("\n\nRespond in this format:\nSummary: <short summary>\nSentiment: <Positive/Neutral/Negative>")

	reply, err := s.complete(ctx, sb.String())
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("failed to analyze comments: %w", err)
	}

	insights := &CommentInsights{}
	if m := insightsPattern.FindStringSubmatch(reply); m != nil {
		insights.Summary = strings.TrimSpace(m[1])
		insights.Sentiment = strings.TrimSpace(m[2])
	}
	return insights, nil
}

func (s *InsightsService) complete(ctx context.Context, prompt string) (string, error) {
	if s.modelTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.modelTimeout)
		defer cancel()
	}
	return s.generator.Complete(ctx, prompt)
}
