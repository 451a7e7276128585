package mapping

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/gzhole/toolscout/internal/registry"
)

func sampleMapping() *Mapping {
	return &Mapping{
		ArtifactToTools: map[string][]string{
			"A": {"cmd", "hayabusa", "yara"},
			"B": {"hayabusa"},
		},
		ToolToArtifacts: map[string][]string{
			"cmd":      {"A"},
			"hayabusa": {"A", "B"},
			"yara":     {"A"},
		},
		ResolvedTools:   []string{"hayabusa", "yara"},
		UnresolvedTools: []string{"cmd"},
		Repositories: map[string][]string{
			"yamato-security/hayabusa": {"C"},
			"someone/incident-kit":     {"A"},
			"mandiant/flare-floss":     {"B"},
		},
		DownloadDomains: map[string][]string{},
	}
}

func TestForkPlan(t *testing.T) {
	plan := ForkPlan(sampleMapping(), registry.Default())

	want := []ForkCandidate{
		{
			Tool:          "hayabusa",
			Repository:    "yamato-security/hayabusa",
			RepositoryURL: "https://github.com/yamato-security/hayabusa",
			Score:         150,
			Tier:          TierHigh,
			ArtifactCount: 3,
			Priority:      registry.PriorityCritical,
		},
		{
			Tool:          "yara",
			Repository:    "virustotal/yara",
			RepositoryURL: "https://github.com/virustotal/yara",
			Score:         110,
			Tier:          TierHigh,
			ArtifactCount: 1,
			Priority:      registry.PriorityCritical,
		},
		{
			Repository:    "mandiant/flare-floss",
			RepositoryURL: "https://github.com/mandiant/flare-floss",
			Score:         40,
			Tier:          TierMedium,
			ArtifactCount: 1,
		},
		{
			Repository:    "someone/incident-kit",
			RepositoryURL: "https://github.com/someone/incident-kit",
			Score:         25,
			Tier:          TierLow,
			ArtifactCount: 1,
		},
	}
	if diff := cmp.Diff(want, plan); diff != "" {
		t.Errorf("fork plan mismatch (-want +got):\n%s", diff)
	}
}

func TestForkTier(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{150, TierHigh},
		{80, TierHigh},
		{79, TierMedium},
		{40, TierMedium},
		{39, TierLow},
		{0, TierLow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, forkTier(tt.score), "score %d", tt.score)
	}
}

func TestForkScore(t *testing.T) {
	tests := []struct {
		name      string
		repo      string
		artifacts int
		priority  registry.Priority
		want      int
	}{
		{"references only", "someone/tool", 3, "", 30},
		{"priority bonus", "someone/tool", 1, registry.PriorityMedium, 35},
		{"trusted org", "Velocidex/WinPmem", 2, registry.PriorityHigh, 100},
		{"second tier org", "SigmaHQ/sigma", 1, registry.PriorityCritical, 130},
		{"keyword counted once", "x/malware-forensics", 0, registry.PriorityLow, 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, forkScore(tt.repo, tt.artifacts, tt.priority))
		})
	}
}

func TestStats(t *testing.T) {
	stats := sampleMapping().Stats(registry.Default())

	want := []ToolStat{
		{
			Tool:          "hayabusa",
			References:    2,
			Resolved:      true,
			Category:      registry.CategoryLogAnalysis,
			Priority:      registry.PriorityCritical,
			RepositoryURL: "https://github.com/Yamato-Security/hayabusa",
		},
		{Tool: "cmd", References: 1},
		{
			Tool:          "yara",
			References:    1,
			Resolved:      true,
			Category:      registry.CategoryPatternMatching,
			Priority:      registry.PriorityCritical,
			RepositoryURL: "https://github.com/VirusTotal/yara",
		},
	}
	if diff := cmp.Diff(want, stats); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
}
