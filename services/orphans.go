package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-backend/models"
	"github.com/rpupo63/portfolio-backend/videos"
)

// DefaultOrphanAge is how old an unreferenced video must be before it counts as an
// orphan. Uploads are stored before the project that references them is saved.
const DefaultOrphanAge = time.Hour

type projectLister interface {
	List(ctx context.Context) ([]models.Project, error)
}

type videoCatalog interface {
	List(ctx context.Context) ([]videos.Info, error)
	Remove(ctx context.Context, filename string) error
}

// FindOrphanVideos returns stored videos that no project references and that were
// last modified more than minAge ago. These are left behind when a project's video
// is replaced or cleared, or when an upload is never attached.
func FindOrphanVideos(ctx context.Context, projects projectLister, catalog videoCatalog, minAge time.Duration) ([]string, error) {
	all, err := projects.List(ctx)
	if err != nil {
		return nil, err
	}

	referenced := make(map[string]struct{}, len(all))
	for _, p := range all {
		if p.VideoFilename != "" {
			referenced[p.VideoFilename] = struct{}{}
		}
	}

	stored, err := catalog.List(ctx)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().Add(-minAge)
	var orphans []string
	for _, video := range stored {
		if _, ok := referenced[video.Name]; ok {
			continue
		}
		if video.ModTime.After(cutoff) {
			log.Debug().Str("filename", video.Name).Time("modTime", video.ModTime).Msg("Skipping recent unreferenced video")
			continue
		}
		orphans = append(orphans, video.Name)
	}
	return orphans, nil
}

// RemoveOrphanVideos deletes every orphaned video and returns the removed names.
// It stops at the first removal error.
func RemoveOrphanVideos(ctx context.Context, projects projectLister, catalog videoCatalog, minAge time.Duration) ([]string, error) {
	orphans, err := FindOrphanVideos(ctx, projects, catalog, minAge)
	if err != nil {
		return nil, err
	}

	removed := make([]string, 0, len(orphans))
	for _, name := range orphans {
		if err := catalog.Remove(ctx, name); err != nil {
			return removed, err
		}
		log.Info().Str("filename", name).Msg("Removed orphaned video")
		removed = append(removed, name)
	}
	return removed, nil
}
