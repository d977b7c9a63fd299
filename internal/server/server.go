package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/aibandobast/bandobast/internal/ai"
	"github.com/aibandobast/bandobast/internal/audit"
	"github.com/aibandobast/bandobast/internal/auth"
	"github.com/aibandobast/bandobast/internal/copilot"
	"github.com/aibandobast/bandobast/internal/db"
	"github.com/aibandobast/bandobast/internal/geo"
	"github.com/aibandobast/bandobast/internal/kml"
	"github.com/aibandobast/bandobast/internal/manifest"
	"github.com/aibandobast/bandobast/internal/notes"
)

// Config holds server configuration.
type Config struct {
	Port           int
	BaseDir        string   // directory manifest paths resolve against
	AllowAll       bool     // allow all CORS origins (dev mode)
	AllowedOrigins []string // used when AllowAll is false
	RequireAuth    bool
	DocumentName   string // KML document name
}

// Deps are the feature services the server mounts. Nil services are
// skipped, except Tokens which is required when RequireAuth is set.
type Deps struct {
	DB       *db.DB
	Manifest *manifest.Service
	Geo      *geo.Store
	Copilot  *copilot.Service
	Notes    *notes.Store
	AI       *ai.Assistant
	Audit    *audit.Store
	Tokens   *auth.Store
	Logger   *zap.Logger
}

// Server is the bandobast portal API server.
type Server struct {
	cfg        Config
	deps       Deps
	logger     *zap.Logger
	router     chi.Router
	httpServer *http.Server
}

// New creates a server and mounts every configured feature.
func New(cfg Config, deps Deps) (*Server, error) {
	if cfg.RequireAuth && deps.Tokens == nil {
		return nil, fmt.Errorf("auth required but no token store configured")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		cfg:    cfg,
		deps:   deps,
		logger: logger,
	}

	s.router = s.buildRouter()
	return s, nil
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  zap.NewStdLog(s.logger.Named("http")),
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if len(s.cfg.AllowedOrigins) > 0 {
		corsOpts.AllowedOrigins = s.cfg.AllowedOrigins
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
		corsOpts.AllowCredentials = false
	}
	r.Use(cors.Handler(corsOpts))

	if s.cfg.RequireAuth {
		r.Use(auth.Middleware(s.deps.Tokens, s.logger, "/healthz"))
	}

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		code := http.StatusOK
		if s.deps.DB != nil {
			if err := s.deps.DB.PingContext(r.Context()); err != nil {
				status, code = "degraded", http.StatusServiceUnavailable
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		fmt.Fprintf(w, `{"status":%q}`, status)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		if s.deps.Manifest != nil {
			manifest.RegisterRoutes(r, s.deps.Manifest, s.cfg.BaseDir, auth.Actor)
		}
		if s.deps.Geo != nil {
			geo.RegisterRoutes(r, s.deps.Geo, s.logger)
			kml.RegisterRoutes(r, s.deps.Geo, s.deps.Audit, kml.RouteConfig{
				DocumentName: s.cfg.DocumentName,
				Logger:       s.logger,
				Actor:        auth.Actor,
			})
		}
		if s.deps.Notes != nil {
			notes.RegisterRoutes(r, s.deps.Notes, notes.RouteConfig{
				Audit:  s.deps.Audit,
				Logger: s.logger,
				Actor:  auth.Actor,
			})
		}
		if s.deps.AI != nil {
			ai.RegisterRoutes(r, s.deps.AI, ai.RouteConfig{
				Audit:  s.deps.Audit,
				Logger: s.logger,
				Actor:  auth.Actor,
			})
		}
		if s.deps.Audit != nil {
			audit.RegisterRoutes(r, s.deps.Audit, s.logger)
		}
	})

	// The copilot socket is long-lived and stays outside the request timeout.
	if s.deps.Copilot != nil {
		copilot.RegisterRoutes(r, s.deps.Copilot, auth.Actor)
	}

	return r
}

// Router returns the chi router for registering additional routes.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.logger.Info("bandobast server listening", zap.String("addr", addr), zap.Bool("auth", s.cfg.RequireAuth))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
