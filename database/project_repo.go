package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/google/renameio/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
)

// ProjectRepo stores every project in a single JSON array file. Each operation
// reads the whole file and mutations write the whole file back; the mutex keeps
// read-modify-write cycles from interleaving inside this process.
type ProjectRepo struct {
	mu     sync.Mutex
	path   string
	videos VideoCatalog
	logger zerolog.Logger
	now    func() time.Time
	newID  func() (string, error)
}

type RepoOption func(*ProjectRepo)

func WithLogger(logger zerolog.Logger) RepoOption {
	return func(r *ProjectRepo) {
		r.logger = logger
	}
}

func WithClock(now func() time.Time) RepoOption {
	return func(r *ProjectRepo) {
		r.now = now
	}
}

func WithIDGenerator(newID func() (string, error)) RepoOption {
	return func(r *ProjectRepo) {
		r.newID = newID
	}
}

func NewProjectRepo(path string, videos VideoCatalog, opts ...RepoOption) *ProjectRepo {
	r := &ProjectRepo{
		path:   path,
		videos: videos,
		logger: log.With().Str("component", "projectRepo").Logger(),
		now:    time.Now,
		newID:  newProjectID,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// newProjectID returns a UUIDv7: millisecond timestamp followed by random bits.
func newProjectID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Path returns the location of the projects file
func (r *ProjectRepo) Path() string {
	return r.path
}

// Init creates the projects file holding an empty array when it does not exist yet
func (r *ProjectRepo) Init() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return errs.NewStorageWriteError("create data directory", err)
	}

	_, err := os.Stat(r.path)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrNotExist):
		r.logger.Info().Str("path", r.path).Msg("creating empty projects file")
		return r.save([]models.Project{})
	default:
		return errs.NewStorageReadError("stat projects file", err)
	}
}

// List returns all projects in stored order
func (r *ProjectRepo) List(_ context.Context) ([]models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.load()
}

// Get returns the project with the given id
func (r *ProjectRepo) Get(_ context.Context, id string) (*models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	projects, err := r.load()
	if err != nil {
		return nil, err
	}

	idx := indexOf(projects, id)
	if idx < 0 {
		return nil, errs.NewNotFound("project")
	}
	project := projects[idx]
	return &project, nil
}

// Create appends a new project built from fields and persists the collection
func (r *ProjectRepo) Create(ctx context.Context, fields models.ProjectFields) (*models.Project, error) {
	fields = normalizeFields(fields)
	if err := validateFields(fields); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkVideo(ctx, fields.VideoFilename); err != nil {
		return nil, err
	}

	projects, err := r.load()
	if err != nil {
		return nil, err
	}

	id, err := r.uniqueID(projects)
	if err != nil {
		return nil, err
	}

	project := models.Project{ID: id, CreatedAt: models.FormatTimestamp(r.now())}
	setFields(&project, fields)

	projects = append(projects, project)
	if err := r.save(projects); err != nil {
		return nil, err
	}

	r.logger.Info().Str("projectID", project.ID).Str("title", project.Title).Msg("project created")
	return &project, nil
}

// Update merges patch into the project with the given id. Fields absent from the
// patch keep their stored values.
func (r *ProjectRepo) Update(ctx context.Context, id string, patch models.ProjectPatch) (*models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	projects, err := r.load()
	if err != nil {
		return nil, err
	}

	idx := indexOf(projects, id)
	if idx < 0 {
		return nil, errs.NewNotFound("project")
	}
	current := projects[idx]

	if patch.ID != nil && *patch.ID != current.ID {
		return nil, errs.NewImmutableFieldError("id")
	}
	if patch.CreatedAt != nil && *patch.CreatedAt != current.CreatedAt {
		return nil, errs.NewImmutableFieldError("createdAt")
	}

	merged := current
	merged.Apply(patch)

	fields := normalizeFields(merged.Fields())
	if err := validateFields(fields); err != nil {
		return nil, err
	}
	setFields(&merged, fields)

	if merged.VideoFilename != current.VideoFilename {
		if err := r.checkVideo(ctx, merged.VideoFilename); err != nil {
			return nil, err
		}
	}

	merged.UpdatedAt = models.FormatTimestamp(r.now())
	projects[idx] = merged
	if err := r.save(projects); err != nil {
		return nil, err
	}

	r.logger.Info().Str("projectID", id).Msg("project updated")
	return &merged, nil
}

// Delete removes the project with the given id, then removes its video. The record
// stays deleted when the video cannot be removed; the failure is returned in the
// receipt instead.
func (r *ProjectRepo) Delete(ctx context.Context, id string) (*models.DeleteReceipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	projects, err := r.load()
	if err != nil {
		return nil, err
	}

	idx := indexOf(projects, id)
	if idx < 0 {
		return nil, errs.NewNotFound("project")
	}
	project := projects[idx]

	projects = slices.Delete(projects, idx, idx+1)
	if err := r.save(projects); err != nil {
		return nil, err
	}
	r.logger.Info().Str("projectID", id).Msg("project deleted")

	receipt := &models.DeleteReceipt{ID: id}
	if project.VideoFilename == "" || r.videos == nil {
		return receipt, nil
	}

	if err := r.removeVideo(ctx, project.VideoFilename, receipt); err != nil {
		r.logger.Warn().
			Err(err).
			Str("projectID", id).
			Str("videoFilename", project.VideoFilename).
			Msg("project deleted but its video could not be removed")
		receipt.VideoError = err.Error()
	}
	return receipt, nil
}

func (r *ProjectRepo) removeVideo(ctx context.Context, filename string, receipt *models.DeleteReceipt) error {
	exists, err := r.videos.Exists(ctx, filename)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}
	if err := r.videos.Remove(ctx, filename); err != nil {
		return err
	}
	receipt.VideoRemoved = true
	return nil
}

// checkVideo verifies that a referenced video has been uploaded
func (r *ProjectRepo) checkVideo(ctx context.Context, filename string) error {
	if filename == "" {
		return nil
	}
	if r.videos == nil {
		return errs.NewInvalidFieldError("videoFilename", "video uploads are not configured")
	}

	exists, err := r.videos.Exists(ctx, filename)
	if err != nil {
		return err
	}
	if !exists {
		return errs.NewInvalidFieldError("videoFilename", fmt.Sprintf("no uploaded video named %q", filename))
	}
	return nil
}

func (r *ProjectRepo) uniqueID(projects []models.Project) (string, error) {
	for range 5 {
		id, err := r.newID()
		if err != nil {
			return "", errs.NewInternalErrorWithCause("generate project id", err)
		}
		if id != "" && indexOf(projects, id) < 0 {
			return id, nil
		}
	}
	return "", errs.NewInternalErrorWithCause("generate project id", errors.New("no unique id after 5 attempts"))
}

// load reads and decodes the whole projects file. A missing file, or anything
// other than a JSON array, is a read error.
func (r *ProjectRepo) load() ([]models.Project, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, errs.NewStorageReadError("read projects file", err)
	}

	var projects []models.Project
	if err := json.Unmarshal(data, &projects); err != nil {
		return nil, errs.NewStorageReadError("decode projects file", err)
	}
	if projects == nil {
		return nil, errs.NewStorageReadError("decode projects file", errors.New("projects file does not hold a JSON array"))
	}

	for i := range projects {
		if projects[i].Technologies == nil {
			projects[i].Technologies = []string{}
		}
	}
	return projects, nil
}

// save replaces the projects file with the encoded collection. The new content is
// written to a temporary sibling and renamed over the file, so readers and crashes
// see either the old or the new array.
func (r *ProjectRepo) save(projects []models.Project) error {
	data, err := json.MarshalIndent(projects, "", "  ")
	if err != nil {
		return errs.NewStorageWriteError("encode projects", err)
	}
	data = append(data, '\n')

	if err := renameio.WriteFile(r.path, data, 0o644); err != nil {
		return errs.NewStorageWriteError("write projects file", err)
	}
	return nil
}

func indexOf(projects []models.Project, id string) int {
	return slices.IndexFunc(projects, func(p models.Project) bool {
		return p.ID == id
	})
}

func setFields(p *models.Project, f models.ProjectFields) {
	p.Title = f.Title
	p.Description = f.Description
	p.Technologies = f.Technologies
	p.GithubLink = f.GithubLink
	p.LiveDemoLink = f.LiveDemoLink
	p.VideoFilename = f.VideoFilename
}
