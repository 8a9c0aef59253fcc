package services

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/portfolio-backend/database"
	"github.com/rpupo63/portfolio-backend/models"
	"github.com/rpupo63/portfolio-backend/videos"
)

type stubProjects struct {
	projects []models.Project
	err      error
}

func (s stubProjects) List(context.Context) ([]models.Project, error) {
	return s.projects, s.err
}

type stubVideos struct {
	videos    []videos.Info
	removed   []string
	removeErr map[string]error
}

// newStubVideos stores every name with a modification time a day in the past
func newStubVideos(names ...string) *stubVideos {
	s := &stubVideos{}
	for _, name := range names {
		s.videos = append(s.videos, videos.Info{Name: name, ModTime: time.Now().Add(-24 * time.Hour)})
	}
	return s
}

func (s *stubVideos) List(context.Context) ([]videos.Info, error) {
	return slices.Clone(s.videos), nil
}

func (s *stubVideos) Remove(_ context.Context, name string) error {
	if err := s.removeErr[name]; err != nil {
		return err
	}
	s.removed = append(s.removed, name)
	return nil
}

func TestFindOrphanVideos(t *testing.T) {
	projects := stubProjects{projects: []models.Project{
		{ID: "1", VideoFilename: "video-1-1.mp4"},
		{ID: "2"},
		{ID: "3", VideoFilename: "video-3-3.mp4"},
	}}
	catalog := newStubVideos("video-1-1.mp4", "video-2-2.mp4", "video-3-3.mp4", "video-4-4.webm")

	orphans, err := FindOrphanVideos(context.Background(), projects, catalog, DefaultOrphanAge)
	require.NoError(t, err)
	assert.Equal(t, []string{"video-2-2.mp4", "video-4-4.webm"}, orphans)
	assert.Empty(t, catalog.removed)
}

func TestFindOrphanVideosSkipsRecentUploads(t *testing.T) {
	catalog := newStubVideos("old.mp4")
	catalog.videos = append(catalog.videos, videos.Info{Name: "fresh.mp4", ModTime: time.Now().Add(-time.Minute)})

	orphans, err := FindOrphanVideos(context.Background(), stubProjects{}, catalog, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []string{"old.mp4"}, orphans)

	orphans, err = FindOrphanVideos(context.Background(), stubProjects{}, catalog, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"old.mp4", "fresh.mp4"}, orphans)
}

func TestFindOrphanVideosListError(t *testing.T) {
	listErr := errors.New("corrupt projects file")

	_, err := FindOrphanVideos(context.Background(), stubProjects{err: listErr}, newStubVideos(), DefaultOrphanAge)
	assert.ErrorIs(t, err, listErr)
}

func TestRemoveOrphanVideos(t *testing.T) {
	projects := stubProjects{projects: []models.Project{{ID: "1", VideoFilename: "keep.mp4"}}}
	catalog := newStubVideos("a.mp4", "keep.mp4", "b.mp4")

	removed, err := RemoveOrphanVideos(context.Background(), projects, catalog, DefaultOrphanAge)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.mp4", "b.mp4"}, removed)
	assert.Equal(t, []string{"a.mp4", "b.mp4"}, catalog.removed)
}

func TestRemoveOrphanVideosStopsOnError(t *testing.T) {
	removeErr := errors.New("permission denied")
	catalog := newStubVideos("a.mp4", "b.mp4", "c.mp4")
	catalog.removeErr = map[string]error{"b.mp4": removeErr}

	removed, err := RemoveOrphanVideos(context.Background(), stubProjects{}, catalog, DefaultOrphanAge)
	assert.ErrorIs(t, err, removeErr)
	assert.Equal(t, []string{"a.mp4"}, removed)
}

func TestSweepKeepsUploadAwaitingItsProject(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := videos.NewStore(filepath.Join(dir, "uploads"), 1024, videos.WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	repo := database.NewProjectRepo(filepath.Join(dir, "projects.json"), store, database.WithLogger(zerolog.Nop()))
	require.NoError(t, repo.Init())

	saved, err := store.Accept(ctx, videos.Upload{
		Content:      strings.NewReader("clip"),
		ContentType:  "video/mp4",
		Size:         -1,
		OriginalName: "demo.mp4",
		Field:        videos.DefaultField,
	})
	require.NoError(t, err)

	removed, err := RemoveOrphanVideos(ctx, repo, store, DefaultOrphanAge)
	require.NoError(t, err)
	assert.Empty(t, removed)

	project, err := repo.Create(ctx, models.ProjectFields{
		Title:         "Proxy",
		Description:   "TLS proxy",
		GithubLink:    "https://github.com/x/proxy",
		VideoFilename: saved.Filename,
	})
	require.NoError(t, err)
	assert.Equal(t, saved.Filename, project.VideoFilename)
}
