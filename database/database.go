package database

import (
	"context"
)

// VideoCatalog is the part of the video store the project repository relies on.
// The repository never touches the upload directory itself.
type VideoCatalog interface {
	Exists(ctx context.Context, filename string) (bool, error)
	Remove(ctx context.Context, filename string) error
}

type Database struct {
	projectRepo *ProjectRepo
}

// New wires the repositories over the projects file at projectsFile
func New(projectsFile string, videos VideoCatalog, opts ...RepoOption) Database {
	return Database{
		projectRepo: NewProjectRepo(projectsFile, videos, opts...),
	}
}

// Init prepares the backing files of every repository
func (d Database) Init() error {
	return d.projectRepo.Init()
}

func (d Database) ProjectRepo() *ProjectRepo {
	return d.projectRepo
}
