package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	s, err := Load(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "5000", s.Port)
	assert.Equal(t, "data/projects.json", s.ProjectsFile)
	assert.Equal(t, "uploads/videos", s.UploadDir)
	assert.Equal(t, int64(50*1024*1024), s.MaxVideoBytes)
	assert.Equal(t, []string{"*"}, s.AcceptedOrigins)
	assert.Empty(t, s.AdminJWTSecret)
	assert.Equal(t, 180*time.Second, s.ReadTimeout)
	assert.Equal(t, "videos/", s.S3Prefix)
	assert.False(t, s.NotificationsEnabled())
}

func TestLoadOverrides(t *testing.T) {
	s, err := Load(map[string]string{
		"PORT":                 "8080",
		"DATA_DIR":             "/var/lib/portfolio",
		"UPLOAD_DIR":           "/srv/videos",
		"MAX_VIDEO_BYTES":      "1048576",
		"ACCEPTED_ORIGINS":     "https://a.dev, https://b.dev,",
		"READ_TIMEOUT_SECONDS": "30",
		"RESEND_API_KEY":       "re_x",
		"RESEND_FROM_EMAIL":    "site@example.com",
		"NOTIFY_EMAILS":        "me@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "8080", s.Port)
	assert.Equal(t, "/var/lib/portfolio/projects.json", s.ProjectsFile)
	assert.Equal(t, "/srv/videos", s.UploadDir)
	assert.Equal(t, int64(1048576), s.MaxVideoBytes)
	assert.Equal(t, []string{"https://a.dev", "https://b.dev"}, s.AcceptedOrigins)
	assert.Equal(t, 30*time.Second, s.ReadTimeout)
	assert.True(t, s.NotificationsEnabled())
}

func TestLoadProjectsFileWinsOverDataDir(t *testing.T) {
	s, err := Load(map[string]string{"DATA_DIR": "/x", "PROJECTS_FILE": "/y/p.json"})
	require.NoError(t, err)
	assert.Equal(t, "/y/p.json", s.ProjectsFile)
}

func TestLoadRejectsInvalid(t *testing.T) {
	_, err := Load(map[string]string{"MAX_VIDEO_BYTES": "0"})
	assert.Error(t, err)

	_, err = Load(map[string]string{"ADMIN_JWT_SECRET": "short"})
	assert.Error(t, err)

	_, err = Load(map[string]string{"ADMIN_JWT_SECRET": "0123456789abcdef0123456789abcdef"})
	assert.NoError(t, err)
}

func TestGetters(t *testing.T) {
	env := map[string]string{"A": "", "N": " 42 ", "BAD": "x"}

	assert.Equal(t, "def", GetString(env, "A", "def"))
	assert.Equal(t, "def", GetString(nil, "A", "def"))
	assert.Equal(t, 42, GetInt(env, "N", 1))
	assert.Equal(t, 1, GetInt(env, "BAD", 1))
	assert.Equal(t, []string{"z"}, GetList(env, "A", []string{"z"}))
}

func TestSplit(t *testing.T) {
	k, v := split("KEY=a=b")
	assert.Equal(t, "KEY", k)
	assert.Equal(t, "a=b", v)

	k, v = split("ONLY")
	assert.Equal(t, "ONLY", k)
	assert.Empty(t, v)
}
