// Package export writes a scan's dependency mapping and reports to disk.
// Every file is written to a temporary name and renamed into place, so a
// failed export never leaves a partial file over a previous one.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gzhole/toolscout/internal/mapping"
	"github.com/gzhole/toolscout/internal/registry"
)

// Format is an output format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
)

// Output file names.
const (
	JSONFile     = "dependency-mapping.json"
	MarkdownFile = "dependency-summary.md"
	CSVFile      = "dependency-summary.csv"
)

// ParseFormats expands a --format value. "both" selects JSON and Markdown,
// "all" adds CSV; a comma-separated list of formats is also accepted.
func ParseFormats(value string) ([]Format, error) {
	seen := make(map[Format]bool)
	var formats []Format
	add := func(fs ...Format) {
		for _, f := range fs {
			if !seen[f] {
				seen[f] = true
				formats = append(formats, f)
			}
		}
	}
	for _, part := range strings.Split(value, ",") {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "json":
			add(FormatJSON)
		case "markdown", "md":
			add(FormatMarkdown)
		case "csv":
			add(FormatCSV)
		case "both":
			add(FormatJSON, FormatMarkdown)
		case "all":
			add(FormatJSON, FormatMarkdown, FormatCSV)
		default:
			return nil, fmt.Errorf("unknown format %q (expected json, markdown, csv, both or all)", part)
		}
	}
	return formats, nil
}

// Document is the JSON export.
type Document struct {
	Report   *mapping.ScanReport     `json:"report"`
	Mapping  *mapping.Mapping        `json:"mapping"`
	Stats    []mapping.ToolStat      `json:"stats"`
	ForkPlan []mapping.ForkCandidate `json:"fork_plan"`
}

// WriteError reports an output file that could not be written.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Export writes the requested formats into dir, creating it if needed, and
// returns the paths written.
func Export(m *mapping.Mapping, report *mapping.ScanReport, reg *registry.Registry, dir string, formats []Format) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &WriteError{Path: dir, Err: err}
	}

	var written []string
	for _, f := range formats {
		var (
			name string
			data []byte
			err  error
		)
		switch f {
		case FormatJSON:
			name = JSONFile
			data, err = RenderJSON(m, report, reg)
		case FormatMarkdown:
			name = MarkdownFile
			data = RenderMarkdown(m, report, reg)
		case FormatCSV:
			name = CSVFile
			data, err = RenderCSV(m, reg)
		default:
			return written, fmt.Errorf("unknown format %q", f)
		}
		path := filepath.Join(dir, name)
		if err != nil {
			return written, &WriteError{Path: path, Err: err}
		}
		if err := writeAtomic(path, data); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

// RenderJSON returns the JSON export. Map keys are sorted by encoding/json,
// so the output for an unchanged store is byte-identical between runs.
func RenderJSON(m *mapping.Mapping, report *mapping.ScanReport, reg *registry.Registry) ([]byte, error) {
	doc := Document{
		Report:   report,
		Mapping:  m,
		Stats:    m.Stats(reg),
		ForkPlan: mapping.ForkPlan(m, reg),
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// ReadJSON loads the mapping from a JSON export.
func ReadJSON(path string) (*mapping.Mapping, error) {
	doc, err := ReadDocument(path)
	if err != nil {
		return nil, err
	}
	return doc.Mapping, nil
}

// ReadDocument loads a complete JSON export.
func ReadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading export: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if doc.Mapping == nil {
		return nil, fmt.Errorf("parsing %s: no mapping section", path)
	}
	return &doc, nil
}

// writeAtomic writes data to a temporary file next to path and renames it
// over path.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	tmpName := tmp.Name()
	fail := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return &WriteError{Path: path, Err: err}
	}

	if _, err := tmp.Write(data); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &WriteError{Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &WriteError{Path: path, Err: err}
	}
	return nil
}
