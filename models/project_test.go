package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2024, 5, 1, 14, 30, 5, 123_456_789, time.FixedZone("CEST", 2*60*60))
	assert.Equal(t, "2024-05-01T12:30:05.123Z", FormatTimestamp(ts))
}

func TestApply(t *testing.T) {
	p := Project{
		ID:           "1",
		Title:        "Proxy",
		Description:  "TLS proxy",
		Technologies: []string{"Go"},
		GithubLink:   "https://github.com/x/proxy",
		LiveDemoLink: "https://demo.io",
	}

	title := "Proxy v2"
	empty := ""
	techs := []string{"Go", "Redis"}
	p.Apply(ProjectPatch{Title: &title, LiveDemoLink: &empty, Technologies: &techs})

	assert.Equal(t, "Proxy v2", p.Title)
	assert.Equal(t, "TLS proxy", p.Description)
	assert.Empty(t, p.LiveDemoLink)
	assert.Equal(t, []string{"Go", "Redis"}, p.Technologies)

	// the patch slice is copied
	techs[0] = "Rust"
	assert.Equal(t, "Go", p.Technologies[0])
}

func TestApplyIgnoresSystemFields(t *testing.T) {
	p := Project{ID: "1", CreatedAt: "2024-05-01T12:00:00.000Z"}
	id, created, updated := "2", "x", "y"

	p.Apply(ProjectPatch{ID: &id, CreatedAt: &created, UpdatedAt: &updated})

	assert.Equal(t, "1", p.ID)
	assert.Equal(t, "2024-05-01T12:00:00.000Z", p.CreatedAt)
	assert.Empty(t, p.UpdatedAt)
}
