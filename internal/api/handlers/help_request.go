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

type HelpRequestRepository interface {
	Create(ctx context.Context, req *domain.HelpRequest) error
	GetByID(ctx context.Context, id string) (*domain.HelpRequest, error)
	List(ctx context.Context, limit int, cursor string) (*pagination.PageResult[*domain.HelpRequest], error)
	AddVolunteer(ctx context.Context, id, userID string) error
	Resolve(ctx context.Context, id string) error
}

type HelpRequestHandler struct {
	repo    HelpRequestRepository
	uuidGen service.UUIDGenerator
}

func NewHelpRequestHandler(repo HelpRequestRepository, uuidGen service.UUIDGenerator) *HelpRequestHandler {
	return &HelpRequestHandler{repo: repo, uuidGen: uuidGen}
}

type CreateHelpRequestRequest struct {
	Description string `json:"description"`
	Location    string `json:"location,omitempty"`
}

type VolunteerRequest struct {
	UserID string `json:"user_id"`
}

type HelpRequestResponse struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Location    string   `json:"location,omitempty"`
	Volunteers  []string `json:"volunteers"`
	IsResolved  bool     `json:"is_resolved"`
	CreatedAt   string   `json:"created_at"`
}

type HelpRequestListResponse struct {
	Requests []*HelpRequestResponse `json:"requests"`
	Cursor   string                 `json:"cursor,omitempty"`
	HasMore  bool                   `json:"has_more"`
}

func (h *HelpRequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateHelpRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	helpRequest := domain.NewHelpRequest(h.uuidGen.NewUUID(), req.Description, req.Location, time.Time{})

	if err := h.repo.Create(r.Context(), helpRequest); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, helpRequestToResponse(helpRequest))
}

func (h *HelpRequestHandler) Get(w http.ResponseWriter, r *http.Request) {
	helpRequest, err := h.repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, helpRequestToResponse(helpRequest))
}

func (h *HelpRequestHandler) List(w http.ResponseWriter, r *http.Request) {
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

	requests := make([]*HelpRequestResponse, len(page.Items))
	for i, helpRequest := range page.Items {
		requests[i] = helpRequestToResponse(helpRequest)
	}

	api.Success(w, http.StatusOK, HelpRequestListResponse{
		Requests: requests,
		Cursor:   page.Cursor,
		HasMore:  page.HasMore,
	})
}

func (h *HelpRequestHandler) Volunteer(w http.ResponseWriter, r *http.Request) {
	var req VolunteerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		api.Error(w, http.StatusBadRequest, "user_id is required")
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.repo.AddVolunteer(r.Context(), id, req.UserID); err != nil {
		api.HandleError(w, err)
		return
	}

	helpRequest, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, helpRequestToResponse(helpRequest))
}

func (h *HelpRequestHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.repo.Resolve(r.Context(), id); err != nil {
		api.HandleError(w, err)
		return
	}

	helpRequest, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, helpRequestToResponse(helpRequest))
}

func helpRequestToResponse(helpRequest *domain.HelpRequest) *HelpRequestResponse {
	volunteers := helpRequest.Volunteers
	if volunteers == nil {
		volunteers = []string{}
	}
	return &HelpRequestResponse{
		ID:          helpRequest.ID,
		Description: helpRequest.Description,
		Location:    helpRequest.Location,
		Volunteers:  volunteers,
		IsResolved:  helpRequest.IsResolved,
		CreatedAt:   helpRequest.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}
