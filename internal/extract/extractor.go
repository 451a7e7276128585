// Package extract finds the external tools an artifact's query text depends
// on and resolves them against the tool catalog.
package extract

import (
	"crypto/sha256"
	"regexp"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gzhole/toolscout/internal/registry"
)

// DefaultCacheSize bounds the number of distinct texts whose results are kept.
const DefaultCacheSize = 2048

var (
	repositoryPattern = regexp.MustCompile(`(?i)(?:raw\.githubusercontent\.com|api\.github\.com/repos|github\.com)/([\w.-]+)/([\w.-]+)`)
	downloadPattern   = regexp.MustCompile(`(?i)https?://[^\s"'<>()\[\]{}]+?\.(?:exe|zip|tar\.gz|deb|rpm|msi)\b`)
)

// Extractor runs its rules in order over a text and resolves every token
// through the registry. It is safe for concurrent use.
type Extractor struct {
	registry *registry.Registry
	rules    []Rule
	cache    *lru.Cache[[sha256.Size]byte, Result]
}

// New creates an extractor over reg with the built-in rules. A cacheSize of
// zero or less selects DefaultCacheSize.
func New(reg *registry.Registry, cacheSize int) (*Extractor, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[[sha256.Size]byte, Result](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Extractor{
		registry: reg,
		rules: []Rule{
			executableRule{},
			unixPathRule{},
			newKnownToolRule(reg),
			&shellRule{maxDepth: 2},
		},
		cache: cache,
	}, nil
}

// Rules returns the rules in execution order.
func (e *Extractor) Rules() []Rule {
	return e.rules
}

// Extract returns the tools, repositories and download URLs mentioned in
// text. The result depends only on text and the registry.
func (e *Extractor) Extract(text string) Result {
	key := sha256.Sum256([]byte(text))
	if res, ok := e.cache.Get(key); ok {
		return res.clone()
	}
	res := e.extract(text)
	e.cache.Add(key, res)
	return res.clone()
}

// Resolve normalizes a single token and maps it to a catalog name. The
// second result is false for tokens that normalize to nothing. A catalog
// alias that keeps its architecture suffix, such as "hollows_hunter64", is
// tried before the stripped name.
func (e *Extractor) Resolve(token string) (Match, bool) {
	full, norm := normalize(token)
	if norm == "" {
		return Match{}, false
	}
	m := Match{Tool: norm, Evidence: token}
	for _, candidate := range []string{full, norm} {
		if name, ok := e.registry.Canonical(candidate); ok {
			m.Tool = name
			m.Resolved = true
			break
		}
	}
	return m, true
}

func (e *Extractor) extract(text string) Result {
	var res Result
	seen := make(map[string]bool)
	for _, rule := range e.rules {
		for _, token := range rule.Find(text) {
			m, ok := e.Resolve(token)
			if !ok || seen[m.Tool] {
				continue
			}
			seen[m.Tool] = true
			m.Rule = rule.Name()
			res.Tools = append(res.Tools, m)
		}
	}
	sort.SliceStable(res.Tools, func(i, j int) bool {
		return res.Tools[i].Tool < res.Tools[j].Tool
	})
	res.Repositories = Repositories(text)
	res.DownloadURLs = DownloadURLs(text)
	return res
}

// Normalize lower-cases a token and strips quoting, its directory and a
// Windows binary extension. Windows binaries also lose an architecture
// suffix, so "YARA64.exe" and "yara.exe" both normalize to "yara" whatever
// the catalog holds. Empty and all-digit tokens normalize to "".
func Normalize(token string) string {
	_, name := normalize(token)
	return name
}

// normalize returns the cleaned token before and after architecture suffix
// removal.
func normalize(token string) (full, name string) {
	t := strings.ToLower(strings.Trim(token, "\"'`()[]{},;: \t"))
	if i := strings.LastIndexAny(t, `/\`); i >= 0 {
		t = t[i+1:]
	}
	binary := false
	for _, ext := range []string{".exe", ".dll", ".sys"} {
		if base, ok := strings.CutSuffix(t, ext); ok {
			t = base
			binary = true
			break
		}
	}
	t = strings.Trim(t, ".-_")
	if t == "" || isDigits(t) {
		return "", ""
	}
	if binary {
		if stripped := registry.StripArchSuffix(t); !isDigits(stripped) {
			return t, stripped
		}
	}
	return t, t
}

// Repositories returns the distinct GitHub org/repo pairs referenced in text,
// lower-cased and sorted.
func Repositories(text string) []string {
	set := make(map[string]bool)
	for _, m := range repositoryPattern.FindAllStringSubmatch(text, -1) {
		repo := strings.TrimSuffix(strings.TrimRight(m[2], "."), ".git")
		if repo == "" {
			continue
		}
		set[strings.ToLower(m[1]+"/"+repo)] = true
	}
	return sortedKeys(set)
}

// DownloadURLs returns the distinct binary or archive URLs in text, sorted.
func DownloadURLs(text string) []string {
	set := make(map[string]bool)
	for _, u := range downloadPattern.FindAllString(text, -1) {
		set[u] = true
	}
	return sortedKeys(set)
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
