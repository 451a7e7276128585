package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gzhole/toolscout/internal/artifact"
	"github.com/gzhole/toolscout/internal/export"
	"github.com/gzhole/toolscout/internal/extract"
	"github.com/gzhole/toolscout/internal/mapping"
	"github.com/gzhole/toolscout/internal/registry"
)

// maxListedSkips bounds the skipped files echoed to the terminal; the
// markdown report lists all of them.
const maxListedSkips = 10

var (
	scanInput   string
	scanOutput  string
	scanFormat  string
	scanWorkers int
	scanExclude []string
	scanStrict  bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Map the tools an artifact store depends on",
	Long: `Scan a directory, zip pack or single file of artifact definitions and
write the tool dependency mapping.

Malformed files are skipped and listed in the report; the scan only fails
when the input does not exist or the output cannot be written.

Examples:
  toolscout scan --input ./artifacts --output ./reports
  toolscout scan --input artifacts.zip --output ./reports --format all
  toolscout scan --input ./artifacts --exclude 'Linux/**' --format json`,
	RunE: scanCommand,
}

func init() {
	scanCmd.Flags().StringVarP(&scanInput, "input", "i", "", "Artifact directory, zip pack or YAML file")
	scanCmd.Flags().StringVarP(&scanOutput, "output", "o", "reports", "Directory to write exports into")
	scanCmd.Flags().StringVarP(&scanFormat, "format", "f", "both", "Export formats: json, markdown, csv, both or all (comma-separated lists allowed)")
	scanCmd.Flags().IntVar(&scanWorkers, "workers", artifact.DefaultWorkers, "Number of parallel parsers")
	scanCmd.Flags().StringSliceVar(&scanExclude, "exclude", nil, "Glob of artifact paths to skip (repeatable)")
	scanCmd.Flags().BoolVar(&scanStrict, "strict", false, "Reject artifacts with unknown top-level fields")
	_ = scanCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(scanCmd)
}

func scanCommand(cmd *cobra.Command, args []string) error {
	rt := runtimeFrom(cmd)
	cfg := rt.cfg
	log := rt.log
	out := cmd.OutOrStdout()

	formats, err := export.ParseFormats(cfg.Scan.Format)
	if err != nil {
		return err
	}

	start := time.Now()
	reg, overlays, err := loadRegistry(cfg.Catalog.Dir, log)
	if err != nil {
		return err
	}

	ex, err := extract.New(reg, cfg.Scan.CacheSize)
	if err != nil {
		return fmt.Errorf("failed to build extractor: %w", err)
	}

	store, err := artifact.Load(cmd.Context(), scanInput, artifact.Options{
		Workers: cfg.Scan.Workers,
		Exclude: cfg.Scan.Exclude,
		Strict:  cfg.Scan.Strict,
		Logger:  log.Named("artifact"),
	})
	if err != nil {
		var notFound *artifact.StoreNotFoundError
		if errors.As(err, &notFound) {
			return fmt.Errorf("input not found: %w", err)
		}
		return fmt.Errorf("failed to read artifact store: %w", err)
	}

	m, report := mapping.Build(store, reg, ex)
	report.Since(start)

	written, err := export.Export(m, report, reg, cfg.Scan.Output, formats)
	if err != nil {
		var writeErr *export.WriteError
		if errors.As(err, &writeErr) {
			log.Error("export failed", zap.String("path", writeErr.Path), zap.Error(writeErr.Err))
		}
		return err
	}

	log.Info("scan complete",
		zap.String("scan_id", report.ScanID),
		zap.Int("processed", report.Processed),
		zap.Int("skipped", len(report.Skipped)),
		zap.Int("tools", len(m.Tools())),
		zap.Duration("duration", report.Duration),
	)

	fmt.Fprintln(out, "═══════════════════════════════════════════════════════════")
	fmt.Fprintln(out, "  Tool Dependency Scan")
	fmt.Fprintln(out, "═══════════════════════════════════════════════════════════")
	fmt.Fprintf(out, "  Input:    %s\n", report.Input)
	fmt.Fprintf(out, "  Catalog:  %s (%d tools, %d overlays)\n", reg.Version(), reg.Len(), len(overlayNames(overlays)))
	fmt.Fprintf(out, "  Scan ID:  %s\n", report.ScanID)
	fmt.Fprintf(out, "  Elapsed:  %s\n", report.Duration.Round(time.Millisecond))
	fmt.Fprintln(out)

	fmt.Fprintln(out, "─── Results ───")
	status := rt.icon("\xe2\x9c\x85", "[ok]")
	if len(report.Skipped) > 0 {
		status = rt.icon("\xe2\x9a\xa0\xef\xb8\x8f ", "[!!]")
	}
	fmt.Fprintf(out, "  %s %s\n", status, report.Summary())
	fmt.Fprintf(out, "  Tools:        %s resolved, %s unresolved\n",
		humanize.Comma(int64(len(m.ResolvedTools))), humanize.Comma(int64(len(m.UnresolvedTools))))
	fmt.Fprintf(out, "  References:   %s across %d tools\n", humanize.Comma(int64(len(m.References))), len(m.Tools()))
	fmt.Fprintf(out, "  Repositories: %d\n", len(m.Repositories))
	if len(report.Warnings) > 0 {
		fmt.Fprintf(out, "  Warnings:     %d\n", len(report.Warnings))
	}

	if len(report.Skipped) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "─── Skipped ───")
		for i, s := range report.Skipped {
			if i == maxListedSkips {
				fmt.Fprintf(out, "  ... and %d more (see the summary report)\n", len(report.Skipped)-maxListedSkips)
				break
			}
			fmt.Fprintf(out, "  %s %s: %s\n", rt.icon("\xe2\x9d\x8c", "-"), s.Path, s.Reason)
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "─── Written ───")
	for _, path := range written {
		fmt.Fprintf(out, "  %s\n", path)
	}
	return nil
}

// loadRegistry builds the catalog and logs overlays that could not be used.
func loadRegistry(dir string, log *zap.Logger) (*registry.Registry, []registry.OverlayInfo, error) {
	reg, overlays, err := registry.Load(dir)
	if err != nil {
		return nil, nil, err
	}
	for _, o := range overlays {
		if o.Error != "" {
			log.Warn("catalog overlay skipped", zap.String("path", o.Path), zap.String("reason", o.Error))
		}
	}
	log.Debug("catalog loaded",
		zap.String("version", reg.Version()),
		zap.Int("tools", reg.Len()),
		zap.String("overlays", strings.Join(overlayNames(overlays), ",")),
	)
	return reg, overlays, nil
}

func overlayNames(infos []registry.OverlayInfo) []string {
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		if info.Enabled && info.Error == "" {
			names = append(names, info.Name)
		}
	}
	return names
}
