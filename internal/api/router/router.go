package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/drivelane/showroom-ai/internal/conversation"
	httpmiddleware "github.com/drivelane/showroom-ai/internal/http/middleware"
	"github.com/drivelane/showroom-ai/internal/knowledge"
	"github.com/drivelane/showroom-ai/internal/leads"
	"github.com/drivelane/showroom-ai/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger              *logging.Logger
	ConversationHandler *conversation.Handler
	KnowledgeHandler    *knowledge.Handler
	LeadsHandler        *leads.Handler
	MetricsHandler      http.Handler
	KnowledgeToken      string
	AdminAuthSecret     string
	CORSAllowedOrigins  []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.ConversationHandler != nil {
			public.Post("/chat", cfg.ConversationHandler.Chat)
		}
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Token-guarded knowledge ingestion
	if cfg.KnowledgeHandler != nil {
		r.With(requireKnowledgeToken(cfg.KnowledgeToken)).Post("/knowledge", cfg.KnowledgeHandler.AddEntries)
	}

	// Admin endpoints
	if cfg.LeadsHandler != nil {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Get("/leads", cfg.LeadsHandler.ListLeads)
		})
	}

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
