package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/neighborly-labs/neighborly/internal/api"
	"github.com/neighborly-labs/neighborly/internal/api/handlers"
	"github.com/neighborly-labs/neighborly/internal/api/middleware"
)

type RouterConfig struct {
	AssistantHandler   *handlers.AssistantHandler
	PostHandler        *handlers.PostHandler
	HelpRequestHandler *handlers.HelpRequestHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 1 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/assistant", func(r chi.Router) {
		r.Post("/ask", cfg.AssistantHandler.Ask)
		r.Get("/history/{sessionID}", cfg.AssistantHandler.History)
		r.Post("/reindex", cfg.AssistantHandler.Reindex)
		r.Post("/comment-insights", cfg.PostHandler.CommentInsights)
	})

	r.Route("/posts", func(r chi.Router) {
		r.Post("/", cfg.PostHandler.Create)
		r.Get("/", cfg.PostHandler.List)
		r.Get("/{id}", cfg.PostHandler.Get)
		r.Post("/{id}/summary", cfg.PostHandler.Summarize)
	})

	r.Route("/help-requests", func(r chi.Router) {
		r.Post("/", cfg.HelpRequestHandler.Create)
		r.Get("/", cfg.HelpRequestHandler.List)
		r.Get("/{id}", cfg.HelpRequestHandler.Get)
		r.Post("/{id}/volunteer", cfg.HelpRequestHandler.Volunteer)
		r.Post("/{id}/resolve", cfg.HelpRequestHandler.Resolve)
	})

	return r
}
