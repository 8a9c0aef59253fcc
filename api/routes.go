package api

import (
	"github.com/go-chi/chi/v5"
)

// setupRoutes registers the public read routes and the admin write routes
func setupRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware) {
	r.Get("/health", handlers.healthHandler.health())

	r.Group(func(r chi.Router) {
		r.Use(ColoredHTTPLoggingMiddleware)

		r.Get("/projects", handlers.projectHandler.getAllProjects())
		r.Get("/projects/{projectID}", handlers.projectHandler.getProject())
		r.Get("/videos/{filename}", handlers.videoHandler.serveVideo())

		// Admin routes, open unless ADMIN_JWT_SECRET is set
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.authenticate)

			r.Post("/upload", handlers.videoHandler.uploadVideo())
			r.Post("/projects", handlers.projectHandler.createProject())
			r.Put("/projects/{projectID}", handlers.projectHandler.updateProject())
			r.Delete("/projects/{projectID}", handlers.projectHandler.deleteProject())
		})
	})
}
