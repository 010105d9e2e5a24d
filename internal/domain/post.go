package domain

import (
	"fmt"
	"strings"
	"time"
)

// PostCategory classifies a community post
type PostCategory string

const (
	PostCategoryNews       PostCategory = "news"
	PostCategoryDiscussion PostCategory = "discussion"
)

// CommunityPost represents a post on the community board
type CommunityPost struct {
	ID        string
	Category  PostCategory
	Title     string
	Content   string
	Summary   string // AI-generated, empty until requested
	CreatedAt time.Time
}

// NewCommunityPost creates a new CommunityPost instance
func NewCommunityPost(id string, category PostCategory, title, content string, createdAt time.Time) *CommunityPost {
	return &CommunityPost{
		ID:        id,
		Category:  category,
		Title:     title,
		Content:   content,
		CreatedAt: createdAt,
	}
}

// ValidateCommunityPost validates a CommunityPost instance
func ValidateCommunityPost(p *CommunityPost) error {
	if p == nil {
		return fmt.Errorf("post cannot be nil")
	}

	if p.ID == "" {
		return fmt.Errorf("post ID is required")
	}

	if !isValidPostCategory(p.Category) {
		return fmt.Errorf("post category is invalid: %s", p.Category)
	}

	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("post title is required")
	}

	if strings.TrimSpace(p.Content) == "" {
		return fmt.Errorf("post content is required")
	}

	return nil
}

func isValidPostCategory(c PostCategory) bool {
	switch c {
	case PostCategoryNews, PostCategoryDiscussion:
		return true
	}
	return false
}

// WordCount returns the number of whitespace-separated words in the post body.
// Used to decide whether a post is long enough to be worth summarizing.
func (p *CommunityPost) WordCount() int {
	return len(strings.Fields(p.Content))
}
