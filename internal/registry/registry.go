// Package registry is the static catalog of external tools that artifacts
// depend on. A Registry is built once at startup and is read-only afterwards.
package registry

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// archSuffixes are stripped from executable names before alias lookup, so
// "autorunsc64" resolves to "autorunsc".
var archSuffixes = []string{"_amd64", "_x64", "-x64", "_x86", "-x86", "_arm64", "64", "32"}

// archNative names end in digits that are part of the name.
var archNative = map[string]bool{
	"base32":   true,
	"base64":   true,
	"regsvr32": true,
	"rundll32": true,
	"win32":    true,
	"wow64":    true,
}

// StripArchSuffix removes one architecture suffix from a lower-case
// executable name: "yara64" becomes "yara" and "procdump_x64" becomes
// "procdump". Names such as "rundll32" are returned unchanged.
func StripArchSuffix(name string) string {
	if archNative[name] {
		return name
	}
	for _, suffix := range archSuffixes {
		base, found := strings.CutSuffix(name, suffix)
		if !found {
			continue
		}
		base = strings.TrimRight(base, "-_.")
		if len(base) < 2 {
			return name
		}
		return base
	}
	return name
}

// Registry resolves tool tokens to catalog entries.
type Registry struct {
	version  string
	entries  map[string]Entry
	aliases  map[string]string // lower-case alias or name -> canonical name
	patterns []namedPattern
}

type namedPattern struct {
	name string
	re   *regexp.Regexp
}

// New builds a registry from entries. Names and aliases are case-insensitive;
// a later entry with the same name replaces an earlier one.
func New(version string, entries []Entry) (*Registry, error) {
	r := &Registry{
		version: version,
		entries: make(map[string]Entry, len(entries)),
		aliases: make(map[string]string),
	}

	for _, e := range entries {
		name := strings.ToLower(strings.TrimSpace(e.Name))
		if name == "" {
			return nil, fmt.Errorf("catalog entry with empty name")
		}
		e.Name = name
		r.entries[name] = e
	}

	// Aliases are indexed after all names so an alias can never shadow a
	// canonical name.
	names := r.names()
	for _, name := range names {
		r.aliases[name] = name
	}
	for _, name := range names {
		e := r.entries[name]
		for _, alias := range e.Aliases {
			alias = strings.ToLower(strings.TrimSpace(alias))
			if alias == "" {
				continue
			}
			if _, taken := r.aliases[alias]; !taken {
				r.aliases[alias] = name
			}
		}
		for _, p := range e.Patterns {
			re, err := regexp.Compile("(?i)" + p)
			if err != nil {
				return nil, fmt.Errorf("entry %s: invalid pattern %q: %w", name, p, err)
			}
			r.patterns = append(r.patterns, namedPattern{name: name, re: re})
		}
	}

	return r, nil
}

// Default returns the built-in catalog.
func Default() *Registry {
	r, err := New(CatalogVersion, BuiltinEntries())
	if err != nil {
		panic(fmt.Sprintf("built-in catalog is invalid: %v", err))
	}
	return r
}

// Version identifies the catalog revision the registry was built from.
func (r *Registry) Version() string { return r.version }

// Len returns the number of entries.
func (r *Registry) Len() int { return len(r.entries) }

// Lookup returns the entry for a canonical tool name.
func (r *Registry) Lookup(name string) (Entry, bool) {
	e, ok := r.entries[strings.ToLower(name)]
	return e, ok
}

// Canonical maps an executable token (already lower-cased and stripped of
// its directory and extension) to a catalog name. Resolution order is exact
// name or alias, then the same after removing an architecture suffix, then
// entry patterns.
func (r *Registry) Canonical(token string) (string, bool) {
	token = strings.ToLower(token)
	if token == "" {
		return "", false
	}
	if name, ok := r.aliases[token]; ok {
		return name, true
	}
	if base := StripArchSuffix(token); base != token {
		if name, ok := r.aliases[base]; ok {
			return name, true
		}
	}
	for _, p := range r.patterns {
		if p.re.MatchString(token) {
			return p.name, true
		}
	}
	return "", false
}

// Entries returns all entries ordered by priority, then name.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority.Rank() != out[j].Priority.Rank() {
			return out[i].Priority.Rank() < out[j].Priority.Rank()
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// SearchTerms returns, per entry, the regular expressions used to find the
// tool mentioned by name in free text. TokenOnly entries contribute only
// their explicit patterns.
func (r *Registry) SearchTerms() map[string][]*regexp.Regexp {
	terms := make(map[string][]*regexp.Regexp, len(r.entries))
	for _, name := range r.names() {
		e := r.entries[name]
		if !e.TokenOnly {
			terms[name] = append(terms[name],
				regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(name)+`\b`))
		}
	}
	for _, p := range r.patterns {
		terms[p.name] = append(terms[p.name], p.re)
	}
	return terms
}

func (r *Registry) names() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
