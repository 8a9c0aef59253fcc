package api

import "github.com/rpupo63/portfolio-backend/models"

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	projectHandler projectHandler
	videoHandler   videoHandler
	healthHandler  healthHandler
}

// ErrorResponse represents an error response from the API
// @Description Error response structure
type ErrorResponse struct {
	Error  string `json:"error" example:"Project not found"`
	Status string `json:"status" example:"error"`
	Field  string `json:"field,omitempty" example:"title"`
	Cause  string `json:"cause,omitempty" example:"Underlying error cause"`
}

// ProjectResponse wraps a single project with a human readable message
type ProjectResponse struct {
	Message string          `json:"message"`
	Project *models.Project `json:"project"`
}

// DeleteResponse confirms a deletion. Warning is set when the project's video
// could not be removed.
type DeleteResponse struct {
	Message string `json:"message"`
	Warning string `json:"warning,omitempty"`
}

// UploadResponse is returned after a video was stored
type UploadResponse struct {
	Message      string `json:"message"`
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
}

// HealthResponse is the liveness payload
type HealthResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	StartedAt string `json:"startedAt"`
	Uptime    string `json:"uptime"`
}
