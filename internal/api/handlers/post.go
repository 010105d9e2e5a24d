package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/neighborly-labs/neighborly/internal/api"
	"github.com/neighborly-labs/neighborly/internal/domain"
	"github.com/neighborly-labs/neighborly/internal/pagination"
	"github.com/neighborly-labs/neighborly/internal/service"
)

type PostRepository interface {
	Create(ctx context.Context, post *domain.CommunityPost) error
	GetByID(ctx context.Context, id string) (*domain.CommunityPost, error)
	List(ctx context.Context, limit int, cursor string) (*pagination.PageResult[*domain.CommunityPost], error)
}

type PostSummarizer interface {
	SummarizePost(ctx context.Context, postID string) (string, error)
}

type CommentAnalyzer interface {
	AnalyzeComments(ctx context.Context, comments []service.Comment) (*service.CommentInsights, error)
}

type PostHandler struct {
	repo     PostRepository
	insights PostSummarizer
	comments CommentAnalyzer
	uuidGen  service.UUIDGenerator
}

func NewPostHandler(repo PostRepository, insights PostSummarizer, comments CommentAnalyzer, uuidGen service.UUIDGenerator) *PostHandler {
	return &PostHandler{repo: repo, insights: insights, comments: comments, uuidGen: uuidGen}
}

type CreatePostRequest struct {
	Category string `json:"category"`
	Title    string `json:"title"`
	Content  string `json:"content"`
}

type PostResponse struct {
	ID        string `json:"id"`
	Category  string `json:"category"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Summary   string `json:"summary,omitempty"`
	CreatedAt string `json:"created_at"`
}

type PostListResponse struct {
	Posts   []*PostResponse `json:"posts"`
	Cursor  string          `json:"cursor,omitempty"`
	HasMore bool            `json:"has_more"`
}

type SummaryResponse struct {
	ID      string `json:"id"`
	Summary string `json:"summary"`
}

type CommentInsightsRequest struct {
	Comments []CommentInput `json:"comments"`
}

type CommentInput struct {
	Author string `json:"author,omitempty"`
	Text   string `json:"text"`
}

type CommentInsightsResponse struct {
	Summary   string `json:"summary"`
	Sentiment string `json:"sentiment"`
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	post := domain.NewCommunityPost(
		h.uuidGen.NewUUID(),
		domain.PostCategory(req.Category),
		req.Title,
		req.Content,
		time.Time{},
	)

	if err := h.repo.Create(r.Context(), post); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, postToResponse(post))
}

func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	post, err := h.repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, postToResponse(post))
}

func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	page, err := h.repo.List(r.Context(), limit, r.URL.Query().Get("cursor"))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	posts := make([]*PostResponse, len(page.Items))
	for i, post := range page.Items {
		posts[i] = postToResponse(post)
	}

	api.Success(w, http.StatusOK, PostListResponse{
		Posts:   posts,
		Cursor:  page.Cursor,
		HasMore: page.HasMore,
	})
}

// Summarize generates and stores an AI summary for a post.
func (h *PostHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	summary, err := h.insights.SummarizePost(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, SummaryResponse{ID: id, Summary: summary})
}

// CommentInsights summarizes a comment thread and classifies its sentiment.
func (h *PostHandler) CommentInsights(w http.ResponseWriter, r *http.Request) {
	var req CommentInsightsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	comments := make([]service.Comment, 0, len(req.Comments))
	for _, c := range req.Comments {
		if c.Text == "" {
			continue
		}
		comments = append(comments, service.Comment{Author: c.Author, Text: c.Text})
	}

	insights, err := h.comments.AnalyzeComments(r.Context(), comments)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, CommentInsightsResponse{
		Summary:   insights.Summary,
		Sentiment: insights.Sentiment,
	})
}

func postToResponse(post *domain.CommunityPost) *PostResponse {
	return &PostResponse{
		ID:        post.ID,
		Category:  string(post.Category),
		Title:     post.Title,
		Content:   post.Content,
		Summary:   post.Summary,
		CreatedAt: post.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}
