package model

import "time"

// ProjectSource discriminates where a Project came from.
type ProjectSource string

const (
	SourceGitHub   ProjectSource = "github"
	SourceDatabase ProjectSource = "database"
)

// Project categories for stored projects.
const (
	CategoryWeb       = "web"
	CategoryMobile    = "mobile"
	CategoryFullstack = "fullstack"
	CategoryOther     = "other"
)

// Project is a portfolio entry. Source tells which of the variant-specific
// field groups is populated; the other group is left at its zero value.
type Project struct {
	Source       ProjectSource `json:"source"`
	ID           string        `json:"id"`
	Title        string        `json:"title" validate:"required"`
	Description  string        `json:"description" validate:"required"`
	Technologies []string      `json:"technologies"`
	Image        string        `json:"image"`
	GitHubLink   string        `json:"github_link"`
	LiveLink     *string       `json:"live_link"`
	CreatedAt    time.Time     `json:"created_at"`

	// Stored projects only.
	Category string `json:"category,omitempty" validate:"omitempty,oneof=web mobile fullstack other"`
	Featured bool   `json:"featured,omitempty"`

	// GitHub projects only.
	Stars     int        `json:"stars,omitempty"`
	Forks     int        `json:"forks,omitempty"`
	Language  string     `json:"language,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	Topics    []string   `json:"topics,omitempty"`
}
