package models

import "time"

// TimestampLayout is the layout of createdAt/updatedAt: UTC, millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Project represents a portfolio project as persisted in the projects file
type Project struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Technologies  []string `json:"technologies"`
	GithubLink    string   `json:"githubLink"`
	LiveDemoLink  string   `json:"liveDemoLink,omitempty"`
	VideoFilename string   `json:"videoFilename,omitempty"`
	CreatedAt     string   `json:"createdAt"`
	UpdatedAt     string   `json:"updatedAt,omitempty"`
}

// ProjectFields is the client-supplied part of a project on creation.
type ProjectFields struct {
	Title         string   `json:"title" validate:"required"`
	Description   string   `json:"description" validate:"required"`
	Technologies  []string `json:"technologies" validate:"dive,max=64"`
	GithubLink    string   `json:"githubLink" validate:"required,http_url"`
	LiveDemoLink  string   `json:"liveDemoLink" validate:"omitempty,http_url"`
	VideoFilename string   `json:"videoFilename"`
}

// ProjectPatch is a partial update. Nil fields are left untouched.
//
// ID, CreatedAt and UpdatedAt are accepted so the frontend can send a record back
// as it received it; ID and CreatedAt must match the stored values and UpdatedAt
// is ignored.
type ProjectPatch struct {
	ID            *string   `json:"id,omitempty"`
	CreatedAt     *string   `json:"createdAt,omitempty"`
	UpdatedAt     *string   `json:"updatedAt,omitempty"`
	Title         *string   `json:"title,omitempty"`
	Description   *string   `json:"description,omitempty"`
	Technologies  *[]string `json:"technologies,omitempty"`
	GithubLink    *string   `json:"githubLink,omitempty"`
	LiveDemoLink  *string   `json:"liveDemoLink,omitempty"`
	VideoFilename *string   `json:"videoFilename,omitempty"`
}

// Fields returns the mutable part of p.
func (p Project) Fields() ProjectFields {
	return ProjectFields{
		Title:         p.Title,
		Description:   p.Description,
		Technologies:  p.Technologies,
		GithubLink:    p.GithubLink,
		LiveDemoLink:  p.LiveDemoLink,
		VideoFilename: p.VideoFilename,
	}
}

// Apply overwrites the fields of p that are set in patch.
func (p *Project) Apply(patch ProjectPatch) {
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Technologies != nil {
		p.Technologies = append([]string(nil), (*patch.Technologies)...)
	}
	if patch.GithubLink != nil {
		p.GithubLink = *patch.GithubLink
	}
	if patch.LiveDemoLink != nil {
		p.LiveDemoLink = *patch.LiveDemoLink
	}
	if patch.VideoFilename != nil {
		p.VideoFilename = *patch.VideoFilename
	}
}

// DeleteReceipt confirms a project deletion. VideoError is set when the record was
// removed but its video file could not be.
type DeleteReceipt struct {
	ID           string `json:"id"`
	VideoRemoved bool   `json:"videoRemoved"`
	VideoError   string `json:"videoError,omitempty"`
}
