package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gregory-lime/jacques-context-manager/internal/cli"
	"github.com/gregory-lime/jacques-context-manager/internal/window"
)

var windowCmd = &cobra.Command{
	Use:   "window <model>",
	Short: "Look up a model's usable context window",
	Args:  cobra.ExactArgs(1),
	RunE:  runWindow,
}

func init() {
	rootCmd.AddCommand(windowCmd)
}

func runWindow(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	registry := window.NewRegistryWithOverrides(cfg.Windows.Overrides, cfg.Windows.Default)

	size := registry.WindowFor(args[0])
	if flagJSON {
		return printJSON(struct {
			Model  string `json:"model"`
			Window int    `json:"context_window_size"`
		}{args[0], size})
	}
	fmt.Printf("%s: %s tokens\n", args[0], cli.FormatTokens(size))
	return nil
}
