package mapping

import (
	"sort"
	"strings"

	"github.com/gzhole/toolscout/internal/extract"
	"github.com/gzhole/toolscout/internal/registry"
)

// Fork tiers.
const (
	TierHigh   = "high"
	TierMedium = "medium"
	TierLow    = "low"
)

var (
	trustedOrgs = map[string]int{
		"velocidex": 30,
		"microsoft": 30,
		"google":    30,
		"mandiant":  30,
		"fireeye":   30,

		"yamato-security": 20,
		"countercept":     20,
		"sigmahq":         20,
	}
	securityKeywords = []string{"forensic", "security", "malware", "incident"}
)

// ForkCandidate is a repository worth mirroring, scored by how much of the
// store depends on it.
type ForkCandidate struct {
	Tool          string            `json:"tool,omitempty"`
	Repository    string            `json:"repository"`
	RepositoryURL string            `json:"repository_url"`
	Score         int               `json:"score"`
	Tier          string            `json:"tier"`
	ArtifactCount int               `json:"artifact_count"`
	Priority      registry.Priority `json:"priority,omitempty"`
}

// ForkPlan scores every GitHub repository the scan touched: those of
// resolved catalog tools and those referenced directly in artifact text.
// Candidates are ordered by score, highest first, then by repository.
func ForkPlan(m *Mapping, reg *registry.Registry) []ForkCandidate {
	type repoInfo struct {
		tool      string
		priority  registry.Priority
		artifacts map[string]bool
	}
	repos := make(map[string]*repoInfo)
	get := func(repo string) *repoInfo {
		info, ok := repos[repo]
		if !ok {
			info = &repoInfo{artifacts: make(map[string]bool)}
			repos[repo] = info
		}
		return info
	}

	for _, tool := range m.ResolvedTools {
		entry, ok := reg.Lookup(tool)
		if !ok {
			continue
		}
		found := extract.Repositories(entry.RepositoryURL)
		if len(found) == 0 {
			continue
		}
		info := get(found[0])
		if info.tool == "" || entry.Priority.Rank() < info.priority.Rank() {
			info.tool = entry.Name
			info.priority = entry.Priority
		}
		for _, a := range m.ToolToArtifacts[tool] {
			info.artifacts[a] = true
		}
	}
	for repo, artifacts := range m.Repositories {
		info := get(repo)
		for _, a := range artifacts {
			info.artifacts[a] = true
		}
	}

	plan := make([]ForkCandidate, 0, len(repos))
	for repo, info := range repos {
		c := ForkCandidate{
			Tool:          info.tool,
			Repository:    repo,
			RepositoryURL: "https://github.com/" + repo,
			ArtifactCount: len(info.artifacts),
			Priority:      info.priority,
		}
		c.Score = forkScore(repo, c.ArtifactCount, c.Priority)
		c.Tier = forkTier(c.Score)
		plan = append(plan, c)
	}
	sort.Slice(plan, func(i, j int) bool {
		if plan[i].Score != plan[j].Score {
			return plan[i].Score > plan[j].Score
		}
		return plan[i].Repository < plan[j].Repository
	})
	return plan
}

func forkScore(repo string, artifacts int, priority registry.Priority) int {
	score := artifacts*10 + priority.Bonus()
	org, name, _ := strings.Cut(strings.ToLower(repo), "/")
	score += trustedOrgs[org]
	for _, kw := range securityKeywords {
		if strings.Contains(name, kw) {
			score += 15
			break
		}
	}
	return score
}

func forkTier(score int) string {
	switch {
	case score >= 80:
		return TierHigh
	case score >= 40:
		return TierMedium
	default:
		return TierLow
	}
}

// ToolStat is the reporting row for one tool.
type ToolStat struct {
	Tool          string            `json:"tool"`
	References    int               `json:"references"`
	Resolved      bool              `json:"resolved"`
	Category      string            `json:"category,omitempty"`
	Priority      registry.Priority `json:"priority,omitempty"`
	RepositoryURL string            `json:"repository_url,omitempty"`
}

// Stats returns one row per tool, most referenced first, ties broken by
// name.
func (m *Mapping) Stats(reg *registry.Registry) []ToolStat {
	stats := make([]ToolStat, 0, len(m.ToolToArtifacts))
	for tool, artifacts := range m.ToolToArtifacts {
		s := ToolStat{Tool: tool, References: len(artifacts)}
		if entry, ok := reg.Lookup(tool); ok {
			s.Resolved = true
			s.Category = entry.Category
			s.Priority = entry.Priority
			s.RepositoryURL = entry.RepositoryURL
		}
		stats = append(stats, s)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].References != stats[j].References {
			return stats[i].References > stats[j].References
		}
		return stats[i].Tool < stats[j].Tool
	})
	return stats
}
