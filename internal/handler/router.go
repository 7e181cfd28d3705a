package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/z-memo/backend/internal/handler/chat"
	policyHandler "github.com/zhouzirui/z-memo/backend/internal/handler/policy"
	"github.com/zhouzirui/z-memo/backend/internal/model/policy"
	"github.com/zhouzirui/z-memo/backend/internal/observability"
	"github.com/zhouzirui/z-memo/backend/internal/service/dialogue"
	memoryService "github.com/zhouzirui/z-memo/backend/internal/service/memory"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(policies policy.Store, dialogueSvc *dialogue.Service, memory *memoryService.Store) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", observability.MetricsHandler())

	chatHandler := chat.New(dialogueSvc, memory)
	policiesHandler := policyHandler.New(policies)

	r.Route("/api", func(api chi.Router) {
		policiesHandler.RegisterRoutes(api)
		chatHandler.RegisterRoutes(api)
	})

	return r
}
