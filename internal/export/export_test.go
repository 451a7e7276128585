package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gzhole/toolscout/internal/artifact"
	"github.com/gzhole/toolscout/internal/extract"
	"github.com/gzhole/toolscout/internal/mapping"
	"github.com/gzhole/toolscout/internal/registry"
)

var fixture = map[string]string{
	"A.yaml": "name: Test.A\nsources:\n  - query: SELECT * FROM execve(argv=[\"yara64.exe\", \"-r\", \"rules\"])\n",
	"B.yaml": "description: nameless\n",
	"windows/hayabusa.yaml": `name: Windows.Hayabusa
tools:
  - name: Hayabusa
    url: https://github.com/Yamato-Security/hayabusa/releases/download/v2.17.0/hayabusa-2.17.0-win-x64.zip
sources:
  - query: |
      SELECT * FROM execve(argv=[Tool.OSPath, "csv-timeline", "-d", "C:/Windows/System32/winevt/Logs"])
      SELECT * FROM execve(argv=["cmd.exe", "/c", "dir"])
`,
}

func scan(t *testing.T, dir string) (*mapping.Mapping, *mapping.ScanReport, *registry.Registry) {
	t.Helper()
	reg := registry.Default()
	ex, err := extract.New(reg, 0)
	require.NoError(t, err)
	store, err := artifact.Load(context.Background(), dir, artifact.Options{})
	require.NoError(t, err)
	m, report := mapping.Build(store, reg, ex)
	return m, report, reg
}

func writeStore(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range fixture {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in      string
		want    []Format
		wantErr bool
	}{
		{in: "json", want: []Format{FormatJSON}},
		{in: "markdown", want: []Format{FormatMarkdown}},
		{in: "both", want: []Format{FormatJSON, FormatMarkdown}},
		{in: "all", want: []Format{FormatJSON, FormatMarkdown, FormatCSV}},
		{in: "csv, JSON,json", want: []Format{FormatCSV, FormatJSON}},
		{in: "xml", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormats(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExport_WritesRequestedFiles(t *testing.T) {
	m, report, reg := scan(t, writeStore(t))
	out := filepath.Join(t.TempDir(), "reports")

	written, err := Export(m, report, reg, out, []Format{FormatJSON, FormatMarkdown, FormatCSV})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(out, JSONFile),
		filepath.Join(out, MarkdownFile),
		filepath.Join(out, CSVFile),
	}, written)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Len(t, entries, 3, "no temporary files may be left behind")
}

func TestExport_JSONRoundTrip(t *testing.T) {
	m, report, reg := scan(t, writeStore(t))
	out := t.TempDir()

	_, err := Export(m, report, reg, out, []Format{FormatJSON})
	require.NoError(t, err)

	got, err := ReadJSON(filepath.Join(out, JSONFile))
	require.NoError(t, err)
	if diff := cmp.Diff(m, got); diff != "" {
		t.Errorf("round trip changed the mapping (-want +got):\n%s", diff)
	}

	doc, err := ReadDocument(filepath.Join(out, JSONFile))
	require.NoError(t, err)
	assert.Equal(t, report.Summary(), doc.Report.Summary())
	assert.Equal(t, []artifact.Skipped{{Path: "B.yaml", Reason: artifact.ReasonMissingName}}, doc.Report.Skipped)
}

func TestExport_Idempotent(t *testing.T) {
	store := writeStore(t)

	var outputs [][]byte
	for i := 0; i < 2; i++ {
		m, report, reg := scan(t, store)
		out := t.TempDir()
		_, err := Export(m, report, reg, out, []Format{FormatJSON, FormatCSV})
		require.NoError(t, err)

		data, err := os.ReadFile(filepath.Join(out, JSONFile))
		require.NoError(t, err)
		outputs = append(outputs, data)
	}
	assert.True(t, bytes.Equal(outputs[0], outputs[1]), "two scans of the same store must produce identical JSON")
}

func TestExport_ExampleContent(t *testing.T) {
	m, _, _ := scan(t, writeStore(t))

	assert.Equal(t, []string{"yara"}, m.ArtifactToTools["Test.A"])
	assert.Equal(t, []string{"Test.A"}, m.ToolToArtifacts["yara"])
	assert.Equal(t, []string{"cmd", "hayabusa"}, m.ArtifactToTools["Windows.Hayabusa"])
	assert.Equal(t, []string{"cmd"}, m.UnresolvedTools)
	assert.Equal(t, []string{"Windows.Hayabusa"}, m.DownloadDomains["github.com"])
}

func TestRenderMarkdown(t *testing.T) {
	m, report, reg := scan(t, writeStore(t))
	md := string(RenderMarkdown(m, report, reg))

	assert.Contains(t, md, "# Tool Dependency Summary")
	assert.Contains(t, md, "processed 2 of 3 artifacts, 1 skipped")
	assert.Contains(t, md, "## Tools")
	assert.Contains(t, md, "https://github.com/Yamato-Security/hayabusa")
	assert.Contains(t, md, "## Unresolved tools")
	assert.Contains(t, md, "- `cmd`: Windows.Hayabusa")
	assert.Contains(t, md, "## Fork plan")
	assert.Contains(t, md, "https://github.com/yamato-security/hayabusa")
	assert.Contains(t, md, "- `github.com`: 1 artifact")
	assert.Contains(t, md, "## Skipped files")
	assert.Contains(t, md, "| B.yaml")
	assert.Contains(t, md, "missing name")
	assert.NotContains(t, md, "## Warnings")
}

func TestRenderMarkdown_Empty(t *testing.T) {
	m, report, reg := scan(t, t.TempDir())
	md := string(RenderMarkdown(m, report, reg))

	assert.Contains(t, md, "_No tool references found._")
	assert.Contains(t, md, "_No repositories referenced._")
	assert.Contains(t, md, "_No files skipped._")
}

func TestRenderCSV(t *testing.T) {
	m, _, reg := scan(t, writeStore(t))
	data, err := RenderCSV(m, reg)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, []string{"cmd", "1", "false", "", "", "", "Windows.Hayabusa"}, records[1])
	assert.Equal(t, "hayabusa", records[2][0])
	assert.Equal(t, "yara", records[3][0])
}

func TestExport_WriteErrorLeavesPriorExport(t *testing.T) {
	m, report, reg := scan(t, writeStore(t))
	out := t.TempDir()

	previous := []byte("previous summary\n")
	require.NoError(t, os.WriteFile(filepath.Join(out, MarkdownFile), previous, 0o644))
	// A non-empty directory in place of the JSON file makes the rename fail.
	require.NoError(t, os.MkdirAll(filepath.Join(out, JSONFile, "blocker"), 0o755))

	_, err := Export(m, report, reg, out, []Format{FormatJSON, FormatMarkdown})

	var writeErr *WriteError
	require.ErrorAs(t, err, &writeErr)
	assert.Equal(t, filepath.Join(out, JSONFile), writeErr.Path)

	data, err := os.ReadFile(filepath.Join(out, MarkdownFile))
	require.NoError(t, err)
	assert.Equal(t, previous, data)

	matches, err := filepath.Glob(filepath.Join(out, ".*.tmp-*"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestExport_OutputIsAFile(t *testing.T) {
	m, report, reg := scan(t, writeStore(t))
	out := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(out, nil, 0o644))

	_, err := Export(m, report, reg, out, []Format{FormatJSON})
	var writeErr *WriteError
	require.ErrorAs(t, err, &writeErr)
	assert.Equal(t, out, writeErr.Path)
}
