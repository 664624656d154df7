package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gregory-lime/jacques-context-manager/internal/cli"
	"github.com/gregory-lime/jacques-context-manager/internal/model"
	"github.com/gregory-lime/jacques-context-manager/internal/report"
)

var flagCalibrateFromReport bool

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a captured usage report",
	Long: "Parse the tool-native usage report out of captured terminal text\n" +
		"(a file argument or stdin). With --calibrate and a session, the\n" +
		"report's total becomes a ground-truth calibration point.",
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().BoolVar(&flagCalibrateFromReport, "calibrate", false, "Calibrate the session from the parsed total")
	parseCmd.Flags().StringVarP(&flagSession, "session", "s", "", "Session identifier")
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	var raw []byte
	var err error
	if len(args) == 1 {
		raw, err = os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading capture: %w", err)
		}
	} else {
		raw, err = io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
	}

	if flagCalibrateFromReport && flagSession != "" {
		engine, cleanup, err := newEngine()
		if err != nil {
			return err
		}
		defer cleanup()

		breakdown, metrics, ok := engine.CalibrateFromReport(flagSession, string(raw))
		if !ok {
			fmt.Fprintln(os.Stderr, "jacques: no usage report found in input")
			return nil
		}
		if flagJSON {
			return printJSON(struct {
				Breakdown *model.ContextBreakdown `json:"breakdown"`
				Metrics   model.ContextMetrics    `json:"metrics"`
			}{breakdown, metrics})
		}
		renderBreakdown(breakdown)
		return nil
	}

	block, found := report.FindReport(string(raw))
	if !found {
		block = string(raw)
	}
	breakdown, ok := report.Parse(block)
	if !ok {
		fmt.Fprintln(os.Stderr, "jacques: no usage report found in input")
		return nil
	}

	if flagJSON {
		return printJSON(breakdown)
	}
	renderBreakdown(breakdown)
	return nil
}

func renderBreakdown(b *model.ContextBreakdown) {
	if b.Model != "" {
		fmt.Printf("  %s · %s/%s tokens\n",
			b.Model, cli.FormatTokens(b.TotalTokens), cli.FormatTokens(b.MaxTokens))
		fmt.Println(cli.RenderUsageBar(b.UsedPercentage, 40))
	}

	table := cli.Table{
		Title:   "Usage by category",
		Headers: []string{"Category", "Tokens", "Share"},
	}
	for _, name := range model.CategoryNames {
		cat, ok := b.Categories[name]
		if !ok {
			continue
		}
		table.Rows = append(table.Rows, []string{
			cat.Name,
			cli.FormatNumber(int64(cat.Tokens)),
			cli.FormatPercent(cat.Percentage),
		})
	}
	if len(table.Rows) > 0 {
		fmt.Println(cli.RenderTable(table))
	}

	for _, name := range model.CategoryNames {
		cat, ok := b.Categories[name]
		if !ok || len(cat.Items) == 0 {
			continue
		}
		items := cli.Table{
			Title:   cat.Name,
			Headers: []string{"Item", "Tokens"},
		}
		for _, item := range cat.Items {
			items.Rows = append(items.Rows, []string{item.Name, cli.FormatNumber(int64(item.Tokens))})
		}
		fmt.Println(cli.RenderTable(items))
	}
}
