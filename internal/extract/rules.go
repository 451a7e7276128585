package extract

import (
	"regexp"
	"sort"

	"github.com/gzhole/toolscout/internal/registry"
)

var (
	executablePattern = regexp.MustCompile(`(?i)[\w.-]+\.(?:exe|dll|sys)\b`)
	unixPathPattern   = regexp.MustCompile(`(?:^|[^\w/.-])/(?:usr/)?s?bin/([\w.+-]+)`)
)

// executableRule finds Windows binaries: tokens ending in .exe, .dll or .sys.
type executableRule struct{}

func (executableRule) Name() string { return RuleExecutable }

func (executableRule) Find(text string) []string {
	return executablePattern.FindAllString(text, -1)
}

// unixPathRule finds binaries invoked from the standard unix bin directories.
type unixPathRule struct{}

func (unixPathRule) Name() string { return RuleUnixPath }

func (unixPathRule) Find(text string) []string {
	var out []string
	for _, m := range unixPathPattern.FindAllStringSubmatch(text, -1) {
		out = append(out, m[1])
	}
	return out
}

// knownToolRule matches catalog names and patterns anywhere in the text.
type knownToolRule struct {
	names []string
	terms map[string][]*regexp.Regexp
}

func newKnownToolRule(reg *registry.Registry) *knownToolRule {
	terms := reg.SearchTerms()
	names := make([]string, 0, len(terms))
	for name := range terms {
		names = append(names, name)
	}
	sort.Strings(names)
	return &knownToolRule{names: names, terms: terms}
}

func (r *knownToolRule) Name() string { return RuleKnownTool }

func (r *knownToolRule) Find(text string) []string {
	var out []string
	for _, name := range r.names {
		for _, re := range r.terms[name] {
			if m := re.FindString(text); m != "" {
				out = append(out, m)
				break
			}
		}
	}
	return out
}
