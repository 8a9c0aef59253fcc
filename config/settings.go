package config

import (
	"fmt"
	"path/filepath"
	"time"
)

// DefaultMaxVideoBytes is the upload ceiling for a single video.
const DefaultMaxVideoBytes int64 = 50 * 1024 * 1024

// Settings is the typed view of the environment used by the server and the CLI.
type Settings struct {
	Port string

	ProjectsFile  string
	UploadDir     string
	MaxVideoBytes int64

	AcceptedOrigins []string
	AdminJWTSecret  string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// S3 mirror, disabled when S3Bucket is empty
	S3Bucket string
	S3Prefix string

	// Resend notifications, disabled unless all three are set
	ResendAPIKey    string
	ResendFromEmail string
	NotifyEmails    []string
}

// Load builds Settings from an environment map produced by New.
func Load(c map[string]string) (*Settings, error) {
	dataDir := GetString(c, "DATA_DIR", "data")

	s := &Settings{
		Port:            GetString(c, "PORT", "5000"),
		ProjectsFile:    GetString(c, "PROJECTS_FILE", filepath.Join(dataDir, "projects.json")),
		UploadDir:       GetString(c, "UPLOAD_DIR", filepath.Join("uploads", "videos")),
		MaxVideoBytes:   GetInt64(c, "MAX_VIDEO_BYTES", DefaultMaxVideoBytes),
		AcceptedOrigins: GetList(c, "ACCEPTED_ORIGINS", []string{"*"}),
		AdminJWTSecret:  GetString(c, "ADMIN_JWT_SECRET", ""),
		ReadTimeout:     time.Duration(GetInt(c, "READ_TIMEOUT_SECONDS", 180)) * time.Second,
		WriteTimeout:    time.Duration(GetInt(c, "WRITE_TIMEOUT_SECONDS", 180)) * time.Second,
		IdleTimeout:     time.Duration(GetInt(c, "IDLE_TIMEOUT_SECONDS", 180)) * time.Second,
		S3Bucket:        GetString(c, "S3_BUCKET", ""),
		S3Prefix:        GetString(c, "S3_PREFIX", "videos/"),
		ResendAPIKey:    GetString(c, "RESEND_API_KEY", ""),
		ResendFromEmail: GetString(c, "RESEND_FROM_EMAIL", ""),
		NotifyEmails:    GetList(c, "NOTIFY_EMAILS", nil),
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return s, nil
}

func (s *Settings) Validate() error {
	if s.ProjectsFile == "" {
		return fmt.Errorf("PROJECTS_FILE is required")
	}
	if s.UploadDir == "" {
		return fmt.Errorf("UPLOAD_DIR is required")
	}
	if s.MaxVideoBytes <= 0 {
		return fmt.Errorf("MAX_VIDEO_BYTES must be positive, got %d", s.MaxVideoBytes)
	}
	if s.AdminJWTSecret != "" && len(s.AdminJWTSecret) < 32 {
		return fmt.Errorf("ADMIN_JWT_SECRET must be at least 32 characters")
	}
	return nil
}

// NotificationsEnabled reports whether every Resend setting is present.
func (s *Settings) NotificationsEnabled() bool {
	return s.ResendAPIKey != "" && s.ResendFromEmail != "" && len(s.NotifyEmails) > 0
}
