package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/neighborly-labs/neighborly/internal/domain"
	"github.com/neighborly-labs/neighborly/internal/pagination"
)

// PostRepository handles persistence of community posts.
type PostRepository struct {
	pool *pgxpool.Pool
}

func NewPostRepository(pool *pgxpool.Pool) *PostRepository {
	return &PostRepository{pool: pool}
}

// Create inserts a new community post.
func (r *PostRepository) Create(ctx context.Context, post *domain.CommunityPost) error {
	if err := domain.ValidateCommunityPost(post); err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid community post", err)
	}

	err := r.pool.QueryRow(ctx,
		`INSERT INTO community_posts (id, category, title, content, summary)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at`,
		post.ID,
		string(post.Category),
		post.Title,
		post.Content,
		post.Summary,
	).Scan(&post.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// GetByID fetches a single post.
func (r *PostRepository) GetByID(ctx context.Context, id string) (*domain.CommunityPost, error) {
	var post domain.CommunityPost
	var category string
	err := r.pool.QueryRow(ctx,
		`SELECT id, category, title, content, summary, created_at
		 FROM community_posts WHERE id = $1`,
		id,
	).Scan(&post.ID, &category, &post.Title, &post.Content, &post.Summary, &post.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	post.Category = domain.PostCategory(category)
	return &post, nil
}

// List returns posts newest-first with cursor pagination.
func (r *PostRepository) List(ctx context.Context, limit int, cursor string) (*pagination.PageResult[*domain.CommunityPost], error) {
	if limit <= 0 {
		limit = 20
	}

	decoded, err := pagination.DecodeCursor(cursor)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid cursor", err)
	}

	var rows pgx.Rows
	if decoded != nil {
		rows, err = r.pool.Query(ctx,
			`SELECT id, category, title, content, summary, created_at
			 FROM community_posts
			 WHERE (created_at, id) < ($1, $2)
			 ORDER BY created_at DESC, id DESC
			 LIMIT $3`,
			decoded.CreatedAt, decoded.LastID, limit+1,
		)
	} else {
		rows, err = r.pool.Query(ctx,
			`SELECT id, category, title, content, summary, created_at
			 FROM community_posts
			 ORDER BY created_at DESC, id DESC
			 LIMIT $1`,
			limit+1,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	posts, err := scanPosts(rows)
	if err != nil {
		return nil, err
	}

	hasMore := len(posts) > limit
	if hasMore {
		posts = posts[:limit]
	}

	result := &pagination.PageResult[*domain.CommunityPost]{
		Items:   posts,
		HasMore: hasMore,
	}
	if hasMore {
		last := posts[len(posts)-1]
		result.Cursor = pagination.EncodeCursor(last.ID, last.CreatedAt)
	}
	return result, nil
}

// ListAll returns every post oldest-first. Used by the corpus snapshot
// builder, which embeds the whole collection.
func (r *PostRepository) ListAll(ctx context.Context) ([]*domain.CommunityPost, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, category, title, content, summary, created_at
		 FROM community_posts
		 ORDER BY created_at ASC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	return scanPosts(rows)
}

// UpdateSummary stores the AI-generated summary for a post.
func (r *PostRepository) UpdateSummary(ctx context.Context, id, summary string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE community_posts SET summary = $1 WHERE id = $2`,
		summary, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update summary: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

func scanPosts(rows pgx.Rows) ([]*domain.CommunityPost, error) {
	var posts []*domain.CommunityPost
	for rows.Next() {
		var post domain.CommunityPost
		var category string
		if err := rows.Scan(&post.ID, &category, &post.Title, &post.Content, &post.Summary, &post.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		post.Category = domain.PostCategory(category)
		posts = append(posts, &post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read posts: %w", err)
	}
	return posts, nil
}
