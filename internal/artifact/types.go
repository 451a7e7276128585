package artifact

import (
	"fmt"
	"strings"
)

// Source is one query block of an artifact.
type Source struct {
	Name         string   `yaml:"name" json:"name,omitempty"`
	Description  string   `yaml:"description" json:"description,omitempty"`
	Precondition string   `yaml:"precondition" json:"precondition,omitempty"`
	Query        string   `yaml:"query" json:"query,omitempty"`
	Queries      []string `yaml:"queries" json:"-"`
}

// ToolDecl is a tool an artifact declares it needs under tools:.
type ToolDecl struct {
	Name          string `yaml:"name" json:"name"`
	URL           string `yaml:"url" json:"url,omitempty"`
	GithubProject string `yaml:"github_project" json:"github_project,omitempty"`
	Version       string `yaml:"version" json:"version,omitempty"`
}

// Definition is a parsed artifact. It is not modified after Load returns.
type Definition struct {
	Name         string     `yaml:"name" json:"name"`
	Description  string     `yaml:"description" json:"description,omitempty"`
	Author       string     `yaml:"author" json:"author,omitempty"`
	Type         string     `yaml:"type" json:"type,omitempty"`
	Precondition string     `yaml:"precondition" json:"precondition,omitempty"`
	Sources      []Source   `yaml:"sources" json:"sources,omitempty"`
	Tools        []ToolDecl `yaml:"tools" json:"tools,omitempty"`

	// Path is the file the definition was read from, relative to the store
	// root. Members of a zip pack are written as pack.zip!member.
	Path string `yaml:"-" json:"path"`

	// Warnings describes hidden characters removed from the definition.
	Warnings []string `yaml:"-" json:"warnings,omitempty"`
}

// QueryText returns the artifact and source preconditions followed by every
// source query, one block per line.
func (d *Definition) QueryText() string {
	var blocks []string
	if d.Precondition != "" {
		blocks = append(blocks, d.Precondition)
	}
	for _, s := range d.Sources {
		if s.Precondition != "" {
			blocks = append(blocks, s.Precondition)
		}
		if s.Query != "" {
			blocks = append(blocks, s.Query)
		}
	}
	return strings.Join(blocks, "\n")
}

// DeclaredText returns the URLs and projects of the declared tools, used to
// find repositories and downloads.
func (d *Definition) DeclaredText() string {
	var lines []string
	for _, t := range d.Tools {
		if t.URL != "" {
			lines = append(lines, t.URL)
		}
		if t.GithubProject != "" {
			lines = append(lines, "https://github.com/"+t.GithubProject)
		}
	}
	return strings.Join(lines, "\n")
}

// Skipped records a file that did not produce an artifact.
type Skipped struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Skip reasons.
const (
	ReasonMissingName   = "missing name"
	ReasonEmptyDocument = "empty document"
)

func invalidYAML(err error) string {
	return "invalid yaml: " + err.Error()
}

func readError(err error) string {
	return "read error: " + err.Error()
}

func duplicateName(name, firstPath string) string {
	return fmt.Sprintf("duplicate name %s (first seen in %s)", name, firstPath)
}

// StoreNotFoundError is returned when the store root does not exist.
type StoreNotFoundError struct {
	Path string
}

func (e *StoreNotFoundError) Error() string {
	return fmt.Sprintf("artifact store not found: %s", e.Path)
}
