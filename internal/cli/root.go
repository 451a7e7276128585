package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/gzhole/toolscout/internal/config"
	"github.com/gzhole/toolscout/internal/logger"
)

var (
	cfgFile    string
	logLevel   string
	logFormat  string
	catalogDir string
)

var rootCmd = &cobra.Command{
	Use:   "toolscout",
	Short: "toolscout - map the external tools an artifact collection depends on",
	Long: `toolscout reads a directory or zip pack of Velociraptor-style artifact
definitions, finds every external binary and tool their queries run, joins
them against a tool catalog and writes a two-way dependency mapping with
summary reports.`,
	SilenceUsage:       true,
	SilenceErrors:      true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

// flagKeys binds command-line flags to configuration keys so that flags
// override the config file and environment.
var flagKeys = map[string]string{
	"log-level":   "logger.level",
	"log-format":  "logger.format",
	"output":      "scan.output",
	"format":      "scan.format",
	"workers":     "scan.workers",
	"exclude":     "scan.exclude",
	"strict":      "scan.strict",
	"catalog-dir": "catalog.dir",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to config file (default: ./toolscout.yaml or ~/.toolscout/toolscout.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "auto", "Log format: auto, console or json")
	rootCmd.PersistentFlags().StringVar(&catalogDir, "catalog-dir", "", "Directory of catalog overlay packs (default: ~/.toolscout/catalog)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

type runtimeKey struct{}

// runtime is the per-invocation state handed to subcommands.
type runtime struct {
	cfg      *config.Config
	log      *zap.Logger
	terminal bool
}

func setup(cmd *cobra.Command, args []string) error {
	v := viper.New()
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("binding --%s: %w", name, err)
			}
		}
	}

	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Logger, zapcore.Lock(os.Stderr), term.IsTerminal(int(os.Stderr.Fd())))
	if err != nil {
		return err
	}

	rt := &runtime{
		cfg:      cfg,
		log:      log,
		terminal: term.IsTerminal(int(os.Stdout.Fd())),
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, runtimeKey{}, rt))
	return nil
}

func teardown(cmd *cobra.Command, args []string) error {
	if rt, ok := cmd.Context().Value(runtimeKey{}).(*runtime); ok {
		_ = rt.log.Sync()
	}
	return nil
}

func runtimeFrom(cmd *cobra.Command) *runtime {
	if rt, ok := cmd.Context().Value(runtimeKey{}).(*runtime); ok {
		return rt
	}
	return &runtime{cfg: &config.Config{}, log: zap.NewNop()}
}

// icon returns the emoji on a terminal and the plain marker elsewhere.
func (rt *runtime) icon(emoji, plain string) string {
	if rt.terminal {
		return emoji
	}
	return plain
}
