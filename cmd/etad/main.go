// etad is the command line interface to Sentinel-1 ETAD products: product
// inspection, burst catalogue queries, correction merging and an embedded
// catalogue server.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/rkm/s1etad/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// rootState carries the configuration shared by all subcommands.
type rootState struct {
	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	state := &rootState{cfg: config.Default()}

	root := &cobra.Command{
		Use:   "etad",
		Short: "Inspect and merge Sentinel-1 ETAD products",
		Long: `etad reads a Sentinel-1 Extended Timing Annotation Dataset product,
indexes its burst catalogue and merges per-burst correction grids into
continuous rasters. It can also serve the product over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return state.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&state.cfgPath, "config", "", "path to config file (default: $HOME/.s1etad/config.toml)")
	pf.StringVar(&state.cfg.Product.Path, "product", "", "ETAD product directory (.SAFE layout)")
	pf.StringVar(&state.cfg.Logging.Level, "log-level", state.cfg.Logging.Level, "log level (debug, info, warn, error)")
	pf.StringVar(&state.cfg.Logging.Format, "log-format", state.cfg.Logging.Format, "log format (json, text)")

	root.AddCommand(
		newInfoCmd(state),
		newQueryCmd(state),
		newFootprintCmd(state),
		newMergeCmd(state),
		newServeCmd(state),
	)

	return root
}

// setup layers the config file under explicitly set flags and builds the
// logger. Flags win over the file, the file wins over defaults.
func (s *rootState) setup(cmd *cobra.Command) error {
	cfgFile := s.cfgPath
	if cfgFile == "" {
		cfgFile = config.DefaultConfigPath()
	}

	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if cfgFile != "" && config.FileExists(cfgFile) {
		fc, err := config.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := fc.Apply(s.cfg, changed); err != nil {
			return err
		}
	}

	s.logger = setupLogger(s.cfg.Logging.Level, s.cfg.Logging.Format)
	return nil
}

// requireProduct validates that a product path is configured.
func (s *rootState) requireProduct() error {
	if s.cfg.Product.Path == "" {
		return fmt.Errorf("no product: set --product or the config file's product entry")
	}
	return nil
}

func setupLogger(level, format string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
