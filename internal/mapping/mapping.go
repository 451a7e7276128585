// Package mapping joins the tools extracted from each artifact against the
// catalog and builds the two-way dependency index.
package mapping

import (
	"net/url"
	"sort"
	"strings"

	"github.com/gzhole/toolscout/internal/artifact"
	"github.com/gzhole/toolscout/internal/extract"
	"github.com/gzhole/toolscout/internal/registry"
)

// Mapping is the dependency index for one scan. Every list is sorted and
// free of duplicates, and every map is non-nil, so a mapping read back from
// JSON compares equal to the one that was written.
type Mapping struct {
	ArtifactToTools map[string][]string `json:"artifact_to_tools"`
	ToolToArtifacts map[string][]string `json:"tool_to_artifacts"`

	// ResolvedTools and UnresolvedTools partition the keys of ToolToArtifacts.
	ResolvedTools   []string `json:"resolved_tools"`
	UnresolvedTools []string `json:"unresolved_tools"`

	// Repositories maps a GitHub org/repo to the artifacts mentioning it.
	Repositories map[string][]string `json:"repositories"`
	// DownloadDomains maps the host of a download URL to its artifacts.
	DownloadDomains map[string][]string `json:"download_domains"`

	// References holds one entry per (tool, artifact) pair, ordered by
	// artifact then tool.
	References []extract.Reference `json:"references"`
}

// Build extracts the tools of every artifact in store and resolves them
// against reg. It never fails on artifact content.
func Build(store *artifact.Store, reg *registry.Registry, ex *extract.Extractor) (*Mapping, *ScanReport) {
	report := NewScanReport(store.Root, reg.Version())

	m := &Mapping{
		ArtifactToTools: make(map[string][]string),
		ToolToArtifacts: make(map[string][]string),
		ResolvedTools:   []string{},
		UnresolvedTools: []string{},
		Repositories:    make(map[string][]string),
		DownloadDomains: make(map[string][]string),
		References:      []extract.Reference{},
	}

	toolSets := make(map[string]map[string]bool)
	repoSets := make(map[string]map[string]bool)
	domainSets := make(map[string]map[string]bool)

	for _, def := range store.Artifacts {
		refs := References(def, ex)
		for _, ref := range refs {
			m.References = append(m.References, ref)
			m.ArtifactToTools[def.Name] = append(m.ArtifactToTools[def.Name], ref.Tool)
			addTo(toolSets, ref.Tool, def.Name)
		}

		text := def.QueryText() + "\n" + def.DeclaredText()
		for _, repo := range extract.Repositories(text) {
			addTo(repoSets, repo, def.Name)
		}
		for _, u := range extract.DownloadURLs(text) {
			if host := downloadHost(u); host != "" {
				addTo(domainSets, host, def.Name)
			}
		}
	}

	for tool, set := range toolSets {
		m.ToolToArtifacts[tool] = sortedSet(set)
		if _, ok := reg.Lookup(tool); ok {
			m.ResolvedTools = append(m.ResolvedTools, tool)
		} else {
			m.UnresolvedTools = append(m.UnresolvedTools, tool)
		}
	}
	sort.Strings(m.ResolvedTools)
	sort.Strings(m.UnresolvedTools)
	for name, tools := range m.ArtifactToTools {
		sort.Strings(tools)
		m.ArtifactToTools[name] = tools
	}
	for repo, set := range repoSets {
		m.Repositories[repo] = sortedSet(set)
	}
	for host, set := range domainSets {
		m.DownloadDomains[host] = sortedSet(set)
	}

	report.FilesSeen = store.FilesSeen
	report.Processed = len(store.Artifacts)
	report.Skipped = append(report.Skipped, store.Skipped...)
	report.Warnings = append(report.Warnings, store.Warnings()...)
	report.finish()
	return m, report
}

// References returns the distinct tools one artifact depends on, ordered by
// tool name. Query text is searched first, then the declared tools.
func References(def *artifact.Definition, ex *extract.Extractor) []extract.Reference {
	seen := make(map[string]bool)
	var refs []extract.Reference
	add := func(match extract.Match) {
		if seen[match.Tool] {
			return
		}
		seen[match.Tool] = true
		refs = append(refs, extract.Reference{
			Tool:     match.Tool,
			Artifact: def.Name,
			Evidence: match.Evidence,
			Rule:     match.Rule,
		})
	}

	for _, match := range ex.Extract(def.QueryText()).Tools {
		add(match)
	}
	for _, decl := range def.Tools {
		if match, ok := ex.Resolve(decl.Name); ok {
			match.Rule = extract.RuleDeclared
			add(match)
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Tool < refs[j].Tool })
	return refs
}

// Tools returns every tool in the mapping, resolved or not, sorted.
func (m *Mapping) Tools() []string {
	out := make([]string, 0, len(m.ResolvedTools)+len(m.UnresolvedTools))
	out = append(out, m.ResolvedTools...)
	out = append(out, m.UnresolvedTools...)
	sort.Strings(out)
	return out
}

func addTo(sets map[string]map[string]bool, key, value string) {
	set, ok := sets[key]
	if !ok {
		set = make(map[string]bool)
		sets[key] = set
	}
	set[value] = true
}

func sortedSet(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func downloadHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
