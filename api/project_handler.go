package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
)

// projectStore is the record store behind the project endpoints
type projectStore interface {
	List(ctx context.Context) ([]models.Project, error)
	Get(ctx context.Context, id string) (*models.Project, error)
	Create(ctx context.Context, fields models.ProjectFields) (*models.Project, error)
	Update(ctx context.Context, id string, patch models.ProjectPatch) (*models.Project, error)
	Delete(ctx context.Context, id string) (*models.DeleteReceipt, error)
}

type projectNotifier interface {
	ProjectCreated(p models.Project)
	ProjectDeleted(receipt models.DeleteReceipt)
}

type projectHandler struct {
	responder Responder
	logger    zerolog.Logger
	projects  projectStore
	notifier  projectNotifier
}

func newProjectHandler(projects projectStore, notifier projectNotifier) projectHandler {
	logger := log.With().Str("handlerName", "projectHandler").Logger()

	return projectHandler{
		responder: NewResponder(logger),
		logger:    logger,
		projects:  projects,
		notifier:  notifier,
	}
}

// getAllProjects returns every project in stored order
// @Summary Get all projects
// @Tags Projects
// @Produce json
// @Success 200 {array} models.Project
// @Failure 500 {object} ErrorResponse "Projects file missing or unreadable"
// @Router /projects [get]
func (h projectHandler) getAllProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := h.projects.List(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, projects)
	}
}

// getProject returns a single project
// @Summary Get project
// @Tags Projects
// @Produce json
// @Param projectID path string true "Project ID"
// @Success 200 {object} models.Project
// @Failure 404 {object} ErrorResponse
// @Router /projects/{projectID} [get]
func (h projectHandler) getProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		project, err := h.projects.Get(r.Context(), chi.URLParam(r, "projectID"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, project)
	}
}

// createProject creates a new project
// @Summary Create project
// @Tags Projects
// @Accept json
// @Produce json
// @Param project body models.ProjectFields true "Project data"
// @Success 200 {object} ProjectResponse
// @Failure 400 {object} ErrorResponse "Invalid project data"
// @Failure 500 {object} ErrorResponse "Error writing projects file"
// @Router /projects [post]
func (h projectHandler) createProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var fields models.ProjectFields
		if err := decodeJSON(w, r, &fields); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.projects.Create(r.Context(), fields)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.logger.Info().
			Str("projectID", project.ID).
			Str("subject", ctxGetSubject(r.Context())).
			Msg("Project added")
		if h.notifier != nil {
			h.notifier.ProjectCreated(*project)
		}

		h.responder.WriteJSON(w, ProjectResponse{
			Message: "Project added successfully",
			Project: project,
		})
	}
}

// updateProject merges the supplied fields into an existing project
// @Summary Update project
// @Tags Projects
// @Accept json
// @Produce json
// @Param projectID path string true "Project ID"
// @Param project body models.ProjectPatch true "Fields to change"
// @Success 200 {object} ProjectResponse
// @Failure 400 {object} ErrorResponse "Invalid project data"
// @Failure 404 {object} ErrorResponse "Project not found"
// @Failure 500 {object} ErrorResponse "Error writing projects file"
// @Router /projects/{projectID} [put]
func (h projectHandler) updateProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "projectID")
		if projectID == "" {
			h.responder.WriteError(w, errs.NewBadRequestError("missing projectID"))
			return
		}

		var patch models.ProjectPatch
		if err := decodeJSON(w, r, &patch); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.projects.Update(r.Context(), projectID, patch)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.logger.Info().
			Str("projectID", project.ID).
			Str("subject", ctxGetSubject(r.Context())).
			Msg("Project updated")

		h.responder.WriteJSON(w, ProjectResponse{
			Message: "Project updated successfully",
			Project: project,
		})
	}
}

// deleteProject deletes a project and its video
// @Summary Delete project
// @Tags Projects
// @Produce json
// @Param projectID path string true "Project ID"
// @Success 200 {object} DeleteResponse
// @Failure 404 {object} ErrorResponse "Project not found"
// @Failure 500 {object} ErrorResponse "Error writing projects file"
// @Router /projects/{projectID} [delete]
func (h projectHandler) deleteProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "projectID")
		if projectID == "" {
			h.responder.WriteError(w, errs.NewBadRequestError("missing projectID"))
			return
		}

		receipt, err := h.projects.Delete(r.Context(), projectID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.logger.Info().
			Str("projectID", projectID).
			Bool("videoRemoved", receipt.VideoRemoved).
			Str("subject", ctxGetSubject(r.Context())).
			Msg("Project deleted")
		if h.notifier != nil {
			h.notifier.ProjectDeleted(*receipt)
		}

		response := DeleteResponse{Message: "Project deleted successfully"}
		if receipt.VideoError != "" {
			response.Warning = "project deleted but its video could not be removed: " + receipt.VideoError
		}
		h.responder.WriteJSON(w, response)
	}
}
