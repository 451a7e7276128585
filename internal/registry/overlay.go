package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Overlay is a catalog pack: a YAML file of extra or replacement entries,
// for tools an organisation maintains itself.
type Overlay struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Version     string  `yaml:"version"`
	Author      string  `yaml:"author"`
	Tools       []Entry `yaml:"tools"`
}

// OverlayInfo summarises one overlay file for listing.
type OverlayInfo struct {
	Name      string
	Version   string
	Author    string
	Path      string
	Enabled   bool
	ToolCount int
	Error     string
}

// LoadOverlays reads every .yaml/.yml file in dir and merges its tools over
// base. Entries with a name already present replace the base entry. Files
// whose base name starts with "_" are listed but not merged. A file that
// fails to parse is reported in its OverlayInfo and skipped. A missing
// directory is not an error.
func LoadOverlays(dir string, base []Entry) ([]Entry, []OverlayInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return base, nil, nil
		}
		return nil, nil, err
	}

	merged := make(map[string]Entry, len(base))
	for _, e := range base {
		merged[strings.ToLower(e.Name)] = e
	}

	var infos []OverlayInfo
	for _, entry := range entries {
		if entry.IsDir() || !isYAMLFile(entry.Name()) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		baseName := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		enabled := !strings.HasPrefix(baseName, "_")

		overlay, err := loadOverlay(path)
		if err != nil {
			infos = append(infos, OverlayInfo{
				Name:    baseName,
				Path:    path,
				Enabled: enabled,
				Error:   err.Error(),
			})
			continue
		}

		info := OverlayInfo{
			Name:      overlay.Name,
			Version:   overlay.Version,
			Author:    overlay.Author,
			Path:      path,
			Enabled:   enabled,
			ToolCount: len(overlay.Tools),
		}
		if info.Name == "" {
			info.Name = baseName
		}
		infos = append(infos, info)

		if !enabled {
			continue
		}
		for _, e := range overlay.Tools {
			if strings.TrimSpace(e.Name) == "" {
				continue
			}
			merged[strings.ToLower(e.Name)] = e
		}
	}

	out := make([]Entry, 0, len(merged))
	for _, e := range merged {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, infos, nil
}

// Load builds a registry from the built-in catalog plus any overlays in
// dir. An empty dir yields the built-in catalog.
func Load(dir string) (*Registry, []OverlayInfo, error) {
	entries := BuiltinEntries()
	version := CatalogVersion
	var infos []OverlayInfo

	if dir != "" {
		var err error
		entries, infos, err = LoadOverlays(dir, entries)
		if err != nil {
			return nil, nil, fmt.Errorf("loading catalog overlays: %w", err)
		}
		for _, info := range infos {
			if info.Enabled && info.Error == "" {
				version = CatalogVersion + "+overlays"
				break
			}
		}
	}

	r, err := New(version, entries)
	if err != nil {
		return nil, nil, err
	}
	return r, infos, nil
}

func loadOverlay(path string) (*Overlay, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var overlay Overlay
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("failed to parse overlay %s: %w", path, err)
	}
	return &overlay, nil
}

func isYAMLFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
