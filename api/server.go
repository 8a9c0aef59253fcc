package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-backend/config"
	"github.com/rpupo63/portfolio-backend/database"
	"github.com/rpupo63/portfolio-backend/services"
	"github.com/rpupo63/portfolio-backend/videos"
)

type Server struct {
	*http.Server
	startupTime time.Time
}

func NewServer(settings *config.Settings, db database.Database, videoStore *videos.Store, notifier *services.Notifier) (Server, error) {
	if settings == nil {
		return Server{}, errors.New("settings are required")
	}
	if videoStore == nil {
		return Server{}, errors.New("video store is required")
	}

	address := fmt.Sprintf("0.0.0.0:%s", settings.Port) // Bind to 0.0.0.0 for external access

	// Capture startup time
	startupTime := time.Now()

	opts := []func(*router){
		withStartupTime(startupTime),
		withAcceptedOrigins(settings.AcceptedOrigins),
		withAdminSecret(settings.AdminJWTSecret),
	}
	if notifier != nil {
		opts = append(opts, withNotifier(notifier))
	}
	router := newRouter(db.ProjectRepo(), videoStore, opts...)

	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  settings.ReadTimeout,  // Timeout for reading the entire request, uploads included
		WriteTimeout: settings.WriteTimeout, // Timeout for writing the response
		IdleTimeout:  settings.IdleTimeout,  // Timeout for idle connections
	}

	return Server{server, startupTime}, nil
}

type router struct {
	startupTime     time.Time
	acceptedOrigins []string
	adminSecret     string
	notifier        projectNotifier
}

func withStartupTime(startupTime time.Time) func(*router) {
	return func(r *router) {
		r.startupTime = startupTime
	}
}

func withAcceptedOrigins(origins []string) func(*router) {
	return func(r *router) {
		if len(origins) > 0 {
			r.acceptedOrigins = origins
		}
	}
}

func withAdminSecret(secret string) func(*router) {
	return func(r *router) {
		r.adminSecret = secret
	}
}

func withNotifier(notifier projectNotifier) func(*router) {
	return func(r *router) {
		r.notifier = notifier
	}
}

func newRouter(projects projectStore, videoStore videoStore, opts ...func(*router)) *chi.Mux {
	router := router{
		startupTime:     time.Now(),
		acceptedOrigins: []string{"*"},
	}
	for _, opt := range opts {
		opt(&router)
	}

	chiRouter := chi.NewRouter()
	chiRouter.Use(middleware.RequestID)
	chiRouter.Use(middleware.RealIP)
	chiRouter.Use(LogInternalServerErrors)

	// Apply CORS middleware
	chiRouter.Use(CORSCheckMiddleware(router.acceptedOrigins))
	chiRouter.Use(corsMiddleware(router.acceptedOrigins))

	handlers := initializeHandlers(projects, videoStore, router.notifier, router.startupTime)
	setupRoutes(chiRouter, handlers, newAuthMiddleware(router.adminSecret))

	return chiRouter
}

// Start serves until the server is shut down. A graceful shutdown returns nil.
func (s Server) Start() error {
	log.Info().Msgf("Server started on: %s", s.Addr)
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Msg("Gracefully shutting down...")

	gracefullCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefullCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Dur("uptime", time.Since(s.startupTime)).Msg("HttpServer gracefully shut down")
	}
}
