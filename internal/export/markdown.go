package export

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/gzhole/toolscout/internal/mapping"
	"github.com/gzhole/toolscout/internal/registry"
)

// RenderMarkdown returns the human-readable summary.
func RenderMarkdown(m *mapping.Mapping, report *mapping.ScanReport, reg *registry.Registry) []byte {
	var buf bytes.Buffer

	buf.WriteString("# Tool Dependency Summary\n\n")
	fmt.Fprintf(&buf, "- **Scan ID**: `%s`\n", report.ScanID)
	fmt.Fprintf(&buf, "- **Input**: `%s`\n", report.Input)
	fmt.Fprintf(&buf, "- **Catalog version**: %s\n", report.CatalogVersion)
	if !report.StartedAt.IsZero() {
		fmt.Fprintf(&buf, "- **Started**: %s\n", report.StartedAt.UTC().Format(time.RFC3339))
		fmt.Fprintf(&buf, "- **Duration**: %s\n", report.Duration.Round(time.Millisecond))
	}
	fmt.Fprintf(&buf, "- **Result**: %s\n", report.Summary())
	fmt.Fprintf(&buf, "- **Tools**: %s resolved, %s unresolved\n\n",
		humanize.Comma(int64(len(m.ResolvedTools))),
		humanize.Comma(int64(len(m.UnresolvedTools))))

	buf.WriteString("## Tools\n\n")
	stats := m.Stats(reg)
	if len(stats) == 0 {
		buf.WriteString("_No tool references found._\n\n")
	} else {
		rows := make([][]string, 0, len(stats))
		for _, s := range stats {
			rows = append(rows, []string{
				s.Tool,
				humanize.Comma(int64(s.References)),
				orDash(s.Category),
				orDash(string(s.Priority)),
				orDash(s.RepositoryURL),
			})
		}
		markdownTable(&buf, []string{"Tool", "References", "Category", "Priority", "Repository"}, rows)
		buf.WriteString("\n")
	}

	if len(m.UnresolvedTools) > 0 {
		buf.WriteString("## Unresolved tools\n\n")
		buf.WriteString("Referenced by artifacts but not in the catalog.\n\n")
		for _, tool := range m.UnresolvedTools {
			fmt.Fprintf(&buf, "- `%s`: %s\n", tool, strings.Join(m.ToolToArtifacts[tool], ", "))
		}
		buf.WriteString("\n")
	}

	buf.WriteString("## Fork plan\n\n")
	plan := mapping.ForkPlan(m, reg)
	if len(plan) == 0 {
		buf.WriteString("_No repositories referenced._\n\n")
	} else {
		rows := make([][]string, 0, len(plan))
		for _, c := range plan {
			rows = append(rows, []string{
				c.Tier,
				c.RepositoryURL,
				orDash(c.Tool),
				strconv.Itoa(c.Score),
				humanize.Comma(int64(c.ArtifactCount)),
			})
		}
		markdownTable(&buf, []string{"Tier", "Repository", "Tool", "Score", "Artifacts"}, rows)
		buf.WriteString("\n")
	}

	if len(m.DownloadDomains) > 0 {
		buf.WriteString("## Download domains\n\n")
		for _, host := range sortedKeys(m.DownloadDomains) {
			n := len(m.DownloadDomains[host])
			fmt.Fprintf(&buf, "- `%s`: %s %s\n", host, humanize.Comma(int64(n)), plural(n, "artifact"))
		}
		buf.WriteString("\n")
	}

	buf.WriteString("## Skipped files\n\n")
	if len(report.Skipped) == 0 {
		buf.WriteString("_No files skipped._\n")
	} else {
		rows := make([][]string, 0, len(report.Skipped))
		for _, s := range report.Skipped {
			rows = append(rows, []string{s.Path, s.Reason})
		}
		markdownTable(&buf, []string{"Path", "Reason"}, rows)
	}

	if len(report.Warnings) > 0 {
		buf.WriteString("\n## Warnings\n\n")
		for _, w := range report.Warnings {
			fmt.Fprintf(&buf, "- %s\n", w)
		}
	}
	return buf.Bytes()
}

// markdownTable renders a GitHub-flavored markdown table.
func markdownTable(out io.Writer, header []string, rows [][]string) {
	table := tablewriter.NewWriter(out)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = strings.ReplaceAll(cell, "|", `\|`)
		}
		table.Append(cells)
	}
	table.Render()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
