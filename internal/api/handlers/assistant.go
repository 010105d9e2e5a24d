package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/neighborly-labs/neighborly/internal/api"
	"github.com/neighborly-labs/neighborly/internal/domain"
	"github.com/neighborly-labs/neighborly/internal/service"
	"github.com/neighborly-labs/neighborly/internal/telemetry"
)

type AskService interface {
	Ask(ctx context.Context, question, sessionID string) (*service.AskResult, error)
}

type ChatHistoryReader interface {
	History(ctx context.Context, sessionID string) ([]*domain.ChatTurn, error)
}

type CorpusRebuilder interface {
	Rebuild(ctx context.Context) error
}

type AssistantHandler struct {
	svc     AskService
	history ChatHistoryReader
	corpus  CorpusRebuilder
}

func NewAssistantHandler(svc AskService, history ChatHistoryReader, corpus CorpusRebuilder) *AssistantHandler {
	return &AssistantHandler{svc: svc, history: history, corpus: corpus}
}

type AskRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id"`
}

type AskResponse struct {
	Question  string   `json:"question"`
	SessionID string   `json:"session_id"`
	Answer    string   `json:"answer"`
	FollowUp  []string `json:"follow_up"`
}

type ChatTurnResponse struct {
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	CreatedAt string `json:"created_at"`
}

type HistoryResponse struct {
	SessionID string              `json:"session_id"`
	Turns     []*ChatTurnResponse `json:"turns"`
}

// Ask runs one question through the assistant. Internal model and store
// failures are deliberately not leaked to the caller; everything that is not
// a bad request surfaces as a single generic error.
func (h *AssistantHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Question == "" {
		api.Error(w, http.StatusBadRequest, "question is required")
		return
	}
	if req.SessionID == "" {
		api.Error(w, http.StatusBadRequest, "session_id is required")
		return
	}

	result, err := h.svc.Ask(r.Context(), req.Question, req.SessionID)
	if err != nil {
		if domainErr, ok := err.(*domain.DomainError); ok && domainErr.Code == domain.ErrCodeValidation {
			api.HandleError(w, err)
			return
		}
		log.Printf("assistant ask failed for session %s: %v", req.SessionID, err)
		telemetry.CaptureError(r.Context(), err)
		api.Error(w, http.StatusInternalServerError, domain.ErrAssistantUnavailable.Message)
		return
	}

	followUp := result.FollowUp
	if followUp == nil {
		followUp = []string{}
	}

	api.Success(w, http.StatusOK, AskResponse{
		Question:  result.Question,
		SessionID: result.SessionID,
		Answer:    result.Answer,
		FollowUp:  followUp,
	})
}

// History returns all recorded turns for a session, oldest first.
func (h *AssistantHandler) History(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		api.Error(w, http.StatusBadRequest, "session id is required")
		return
	}

	turns, err := h.history.History(r.Context(), sessionID)
	if err != nil {
		log.Printf("history lookup failed for session %s: %v", sessionID, err)
		telemetry.CaptureError(r.Context(), err)
		api.Error(w, http.StatusInternalServerError, "failed to load chat history")
		return
	}

	responses := make([]*ChatTurnResponse, len(turns))
	for i, turn := range turns {
		responses[i] = &ChatTurnResponse{
			Question:  turn.Question,
			Answer:    turn.Answer,
			CreatedAt: turn.CreatedAt.UTC().Format(time.RFC3339Nano),
		}
	}

	api.Success(w, http.StatusOK, HistoryResponse{
		SessionID: sessionID,
		Turns:     responses,
	})
}

// Reindex rebuilds the corpus snapshot from the current domain store.
func (h *AssistantHandler) Reindex(w http.ResponseWriter, r *http.Request) {
	if err := h.corpus.Rebuild(r.Context()); err != nil {
		log.Printf("corpus reindex failed: %v", err)
		telemetry.CaptureError(r.Context(), err)
		api.Error(w, http.StatusInternalServerError, "failed to rebuild corpus snapshot")
		return
	}

	api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
}
