package cli

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/gzhole/toolscout/internal/artifact"
	"github.com/gzhole/toolscout/internal/extract"
	"github.com/gzhole/toolscout/internal/mapping"
)

var inspectName string

var inspectCmd = &cobra.Command{
	Use:   "inspect <path>",
	Short: "Show the tools one artifact depends on and how each resolved",
	Long: `Inspect a single artifact definition and print every tool reference
found in it, the rule that found it and the catalog entry it resolved to.

The path may also be a directory or zip pack, in which case --name selects
the artifact.

Examples:
  toolscout inspect Windows.Memory.Acquisition.yaml
  toolscout inspect ./artifacts --name Windows.EventLogs.Hayabusa`,
	Args: cobra.ExactArgs(1),
	RunE: inspectCommand,
}

func init() {
	inspectCmd.Flags().StringVar(&inspectName, "name", "", "Artifact name when the path holds more than one")
	rootCmd.AddCommand(inspectCmd)
}

func inspectCommand(cmd *cobra.Command, args []string) error {
	rt := runtimeFrom(cmd)
	out := cmd.OutOrStdout()

	reg, _, err := loadRegistry(rt.cfg.Catalog.Dir, rt.log)
	if err != nil {
		return err
	}
	ex, err := extract.New(reg, rt.cfg.Scan.CacheSize)
	if err != nil {
		return fmt.Errorf("failed to build extractor: %w", err)
	}

	store, err := artifact.Load(cmd.Context(), args[0], artifact.Options{
		Workers: rt.cfg.Scan.Workers,
		Strict:  rt.cfg.Scan.Strict,
		Logger:  rt.log.Named("artifact"),
	})
	if err != nil {
		return err
	}

	def, err := pickArtifact(store, inspectName)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "═══════════════════════════════════════════════════════════")
	fmt.Fprintf(out, "  %s\n", def.Name)
	fmt.Fprintln(out, "═══════════════════════════════════════════════════════════")
	fmt.Fprintf(out, "  Path:     %s\n", def.Path)
	fmt.Fprintf(out, "  Type:     %s\n", orNone(def.Type))
	fmt.Fprintf(out, "  Sources:  %d\n", len(def.Sources))
	rules := make([]string, 0, len(ex.Rules()))
	for _, rule := range ex.Rules() {
		rules = append(rules, rule.Name())
	}
	fmt.Fprintf(out, "  Rules:    %s, %s\n", strings.Join(rules, ", "), extract.RuleDeclared)
	if def.Author != "" {
		fmt.Fprintf(out, "  Author:   %s\n", def.Author)
	}
	for _, w := range def.Warnings {
		fmt.Fprintf(out, "  %s %s\n", rt.icon("\xe2\x9a\xa0\xef\xb8\x8f ", "[!!]"), w)
	}
	fmt.Fprintln(out)

	refs := mapping.References(def, ex)
	fmt.Fprintln(out, "─── Tool references ───")
	if len(refs) == 0 {
		fmt.Fprintln(out, "  No external tools referenced.")
	} else {
		table := tablewriter.NewWriter(out)
		table.SetHeader([]string{"", "Tool", "Rule", "Category", "Evidence"})
		table.SetAutoFormatHeaders(false)
		table.SetAutoWrapText(false)
		for _, ref := range refs {
			status := rt.icon("\xe2\x9d\x93", "?") // question mark
			category := "unresolved"
			if e, ok := reg.Lookup(ref.Tool); ok {
				status = rt.icon("\xe2\x9c\x85", "+")
				category = e.Category
			}
			table.Append([]string{status, ref.Tool, ref.Rule, category, ref.Evidence})
		}
		table.Render()
	}

	text := def.QueryText() + "\n" + def.DeclaredText()
	if repos := extract.Repositories(text); len(repos) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "─── Repositories ───")
		for _, repo := range repos {
			fmt.Fprintf(out, "  %s\n", repo)
		}
	}
	if urls := extract.DownloadURLs(text); len(urls) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "─── Downloads ───")
		for _, u := range urls {
			fmt.Fprintf(out, "  %s\n", u)
		}
	}
	return nil
}

// pickArtifact selects the definition to inspect. A file that was skipped
// is reported with its skip reason.
func pickArtifact(store *artifact.Store, name string) (*artifact.Definition, error) {
	if name != "" {
		if def, ok := store.Lookup(name); ok {
			return def, nil
		}
		return nil, fmt.Errorf("artifact %q not found in %s", name, store.Root)
	}

	switch len(store.Artifacts) {
	case 1:
		return store.Artifacts[0], nil
	case 0:
		if len(store.Skipped) > 0 {
			reasons := make([]string, 0, len(store.Skipped))
			for _, s := range store.Skipped {
				reasons = append(reasons, s.Path+": "+s.Reason)
			}
			return nil, fmt.Errorf("artifact skipped: %s", strings.Join(reasons, "; "))
		}
		return nil, fmt.Errorf("no artifacts found in %s", store.Root)
	default:
		return nil, fmt.Errorf("%s holds %d artifacts, choose one with --name", store.Root, len(store.Artifacts))
	}
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
