package router

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kaswaterproofing/site-backend/internal/clients"
	httpmiddleware "github.com/kaswaterproofing/site-backend/internal/http/middleware"
	"github.com/kaswaterproofing/site-backend/internal/leads"
	"github.com/kaswaterproofing/site-backend/internal/webchat"
	"github.com/kaswaterproofing/site-backend/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger         *logging.Logger
	ChatHandler    *webchat.Handler
	ClientsHandler *clients.Handler
	LeadsHandler   *leads.Handler
	MetricsHandler http.Handler

	AdminJWTSecret     string
	CORSAllowedOrigins []string

	// Chat rate limiting (0 disables)
	ChatRatePerSecond float64
	ChatRateBurst     int

	// Directory served at / for the marketing site. Empty disables static serving.
	StaticDir string
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

		if cfg.ChatHandler != nil {
			chatLimit := func(next http.Handler) http.Handler { return next }
			if cfg.ChatRatePerSecond > 0 && cfg.ChatRateBurst > 0 {
				chatLimit = httpmiddleware.RateLimit(cfg.ChatRatePerSecond, cfg.ChatRateBurst)
			}
			public.With(chatLimit).Post("/api/chat", cfg.ChatHandler.HandleMessage)
			public.Get("/api/chat/ws", cfg.ChatHandler.HandleWebSocket)
			public.Get("/widget.js", cfg.ChatHandler.HandleWidgetJS)
		}

		if cfg.ClientsHandler != nil {
			public.Post("/contact", cfg.ClientsHandler.SubmitContact)
		}

		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Admin endpoints (JWT protected)
	r.Group(func(admin chi.Router) {
		admin.Use(httpmiddleware.AdminJWT(cfg.AdminJWTSecret))

		if cfg.ClientsHandler != nil {
			admin.Get("/api/clients", cfg.ClientsHandler.ListClients)
			admin.Delete("/api/clients/{id}", cfg.ClientsHandler.DeleteClient)
		}
		if cfg.LeadsHandler != nil {
			admin.Get("/api/leads", cfg.LeadsHandler.ListLeads)
			admin.Patch("/api/leads/{id}/status", cfg.LeadsHandler.UpdateStatus)
		}
	})

	// Marketing site static files
	if cfg.StaticDir != "" {
		if _, err := os.Stat(cfg.StaticDir); err == nil {
			fileServer(r, cfg.StaticDir)
		} else if cfg.Logger != nil {
			cfg.Logger.Warn("static directory not found, skipping", "dir", cfg.StaticDir)
		}
	}

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// fileServer serves the marketing site with index.html at /.
func fileServer(r chi.Router, dir string) {
	fs := http.FileServer(http.Dir(dir))
	r.Get("/*", func(w http.ResponseWriter, req *http.Request) {
		path := filepath.Join(dir, filepath.Clean("/"+req.URL.Path))
		if info, err := os.Stat(path); err != nil || info.IsDir() && req.URL.Path != "/" {
			http.NotFound(w, req)
			return
		}
		fs.ServeHTTP(w, req)
	})
}
