package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear <session>",
	Short: "Drop a session's calibration record",
	Long: "Remove all calibration state for a session. The next estimate for\n" +
		"that session starts from the neutral 1.0 factor.",
	Args: cobra.ExactArgs(1),
	RunE: runClear,
}

func init() {
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	store, cleanup, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	store.ClearSession(args[0])
	if !flagJSON {
		fmt.Printf("cleared session %s\n", args[0])
		return nil
	}
	return printJSON(struct {
		Session string `json:"session"`
		Cleared bool   `json:"cleared"`
	}{args[0], true})
}
