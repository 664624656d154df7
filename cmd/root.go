// Package cmd wires the jacques-context command tree. Each invocation
// is one short-lived pass over the estimation or calibration pipeline;
// the per-tool hook adapters feed these commands with already
// normalized fields.
package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gregory-lime/jacques-context-manager/internal/calibration"
	"github.com/gregory-lime/jacques-context-manager/internal/config"
	"github.com/gregory-lime/jacques-context-manager/internal/pipeline"
	"github.com/gregory-lime/jacques-context-manager/internal/skills"
	"github.com/gregory-lime/jacques-context-manager/internal/tokenizer"
	"github.com/gregory-lime/jacques-context-manager/internal/window"
)

var (
	flagConfig  string
	flagStore   string
	flagBackend string
	flagJSON    bool
)

var rootCmd = &cobra.Command{
	Use:   "jacques-context",
	Short: "Context window estimation with self-calibration",
	Long: "Estimate how much of an AI coding assistant's context window a\n" +
		"conversation has consumed, and fold authoritative token counts back\n" +
		"into per-session correction factors.",
	SilenceUsage: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default XDG location)")
	rootCmd.PersistentFlags().StringVar(&flagStore, "store", "", "Calibration store path override")
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "Calibration backend: file or sqlite")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Emit machine-readable JSON")
}

// loadConfig reads the config file honoring the --config override.
func loadConfig() config.Config {
	var cfg config.Config
	var err error
	if flagConfig != "" {
		cfg, err = config.LoadFrom(flagConfig)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		// Malformed config degrades to defaults; the pipeline must
		// still produce a best-effort answer.
		fmt.Fprintf(os.Stderr, "jacques: %v (using defaults)\n", err)
	}
	return cfg
}

// openStore builds the calibration store from config and flag
// overrides. The returned cleanup closes the sqlite backend when used.
func openStore(cfg config.Config) (*calibration.Store, func(), error) {
	backend := cfg.Calibration.Backend
	if flagBackend != "" {
		backend = flagBackend
	}
	path := cfg.Calibration.Path
	if flagStore != "" {
		path = flagStore
	}

	switch backend {
	case "sqlite":
		if path == "" {
			path = calibration.DefaultStorePath() + ".db"
		}
		b, err := calibration.OpenSQLiteBackend(path)
		if err != nil {
			return nil, nil, err
		}
		return calibration.NewStore(b), func() { _ = b.Close() }, nil
	case "", "file":
		if path == "" {
			path = calibration.DefaultStorePath()
		}
		return calibration.NewStore(calibration.NewFileBackend(path)), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown calibration backend %q", backend)
	}
}

// newEngine assembles the full pipeline from config.
func newEngine() (*pipeline.Engine, func(), error) {
	cfg := loadConfig()

	store, cleanup, err := openStore(cfg)
	if err != nil {
		return nil, nil, err
	}

	roots := cfg.Skills.Roots
	if len(roots) == 0 {
		roots = skills.DefaultRoots()
	}

	engine := pipeline.NewEngine(
		tokenizer.NewEstimator(),
		window.NewRegistryWithOverrides(cfg.Windows.Overrides, cfg.Windows.Default),
		skills.NewScanner(roots),
		store,
	)
	return engine, cleanup, nil
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
