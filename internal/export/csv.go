package export

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"

	"github.com/gzhole/toolscout/internal/mapping"
	"github.com/gzhole/toolscout/internal/registry"
)

var csvHeader = []string{"tool", "references", "resolved", "category", "priority", "repository_url", "artifacts"}

// RenderCSV returns one row per tool, in the same order as the markdown
// table. Artifact names are joined with ";".
func RenderCSV(m *mapping.Mapping, reg *registry.Registry) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, s := range m.Stats(reg) {
		record := []string{
			s.Tool,
			strconv.Itoa(s.References),
			strconv.FormatBool(s.Resolved),
			s.Category,
			string(s.Priority),
			s.RepositoryURL,
			strings.Join(m.ToolToArtifacts[s.Tool], ";"),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
