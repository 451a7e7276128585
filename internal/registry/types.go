package registry

import "strings"

// Priority orders tools for reporting. It never changes scan behaviour.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Rank returns a sort key; lower ranks sort first.
func (p Priority) Rank() int {
	switch Priority(strings.ToLower(string(p))) {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	}
	return 4
}

// Bonus is the fork-plan score contribution of this priority.
func (p Priority) Bonus() int {
	switch Priority(strings.ToLower(string(p))) {
	case PriorityCritical:
		return 100
	case PriorityHigh:
		return 50
	case PriorityMedium:
		return 25
	}
	return 0
}

// Entry describes one known external tool.
type Entry struct {
	Name          string   `yaml:"name" json:"name"`
	Aliases       []string `yaml:"aliases,omitempty" json:"aliases,omitempty"`
	Patterns      []string `yaml:"patterns,omitempty" json:"patterns,omitempty"`
	DownloadURL   string   `yaml:"download_url,omitempty" json:"download_url,omitempty"`
	RepositoryURL string   `yaml:"repository_url,omitempty" json:"repository_url,omitempty"`
	Category      string   `yaml:"category" json:"category"`
	Priority      Priority `yaml:"priority" json:"priority"`
	Language      string   `yaml:"language,omitempty" json:"language,omitempty"`
	Description   string   `yaml:"description,omitempty" json:"description,omitempty"`
	Platforms     []string `yaml:"platforms,omitempty" json:"platforms,omitempty"`

	// TokenOnly entries are resolved when they appear as an executable
	// token but their bare name is too common a word to search for.
	TokenOnly bool `yaml:"token_only,omitempty" json:"token_only,omitempty"`
}

// Categories used by the built-in catalog.
const (
	CategoryMemoryForensics  = "memory-forensics"
	CategoryLogAnalysis      = "log-analysis"
	CategoryPatternMatching  = "pattern-matching"
	CategoryTimeline         = "timeline"
	CategoryDiskForensics    = "disk-forensics"
	CategoryTriage           = "triage"
	CategoryMalwareAnalysis  = "malware-analysis"
	CategorySystemUtility    = "system-utility"
	CategoryCollection       = "collection"
	CategoryRegistryAnalysis = "registry-analysis"
)
