package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gregory-lime/jacques-context-manager/internal/cli"
	"github.com/gregory-lime/jacques-context-manager/internal/pipeline"
	"github.com/gregory-lime/jacques-context-manager/internal/transcript"
)

var (
	flagSession    string
	flagModel      string
	flagTranscript string
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate context usage from a transcript",
	Long: "Read transcript text (from --transcript or stdin), run the\n" +
		"estimation pipeline, and emit the resulting context metrics. The\n" +
		"estimate is recorded so a later calibrate call can correct it.",
	RunE: runEstimate,
}

func init() {
	estimateCmd.Flags().StringVarP(&flagSession, "session", "s", "", "Session identifier")
	estimateCmd.Flags().StringVarP(&flagModel, "model", "m", "", "Model name")
	estimateCmd.Flags().StringVarP(&flagTranscript, "transcript", "t", "", "Transcript file (default stdin)")
	rootCmd.AddCommand(estimateCmd)
}

func runEstimate(cmd *cobra.Command, args []string) error {
	text, err := readTranscript()
	if err != nil {
		return err
	}

	session, model := flagSession, flagModel
	if transcript.IsJSONL(text) {
		// Session files carry their own text, model, and session id.
		tr, err := transcript.Parse(strings.NewReader(text))
		if err != nil {
			return fmt.Errorf("parsing transcript: %w", err)
		}
		text = tr.Text
		if session == "" {
			session = tr.SessionID
		}
		if model == "" {
			model = tr.Model
		}
	}

	engine, cleanup, err := newEngine()
	if err != nil {
		return err
	}
	defer cleanup()

	metrics, ok := engine.Estimate(pipeline.EstimateRequest{
		SessionID:  session,
		Model:      model,
		Transcript: text,
	})
	if !ok {
		// Nothing to estimate from. Stay silent rather than guessing.
		return nil
	}

	if flagJSON {
		return printJSON(metrics)
	}

	fmt.Println(cli.RenderUsageBar(metrics.UsedPercentage, 40))
	fmt.Printf("  %s of %s tokens (estimated)\n",
		cli.FormatTokens(metrics.TokenCount),
		cli.FormatTokens(metrics.WindowSize),
	)
	return nil
}

func readTranscript() (string, error) {
	if flagTranscript != "" {
		data, err := os.ReadFile(flagTranscript)
		if err != nil {
			if os.IsNotExist(err) {
				// Missing transcript is silence, not an error.
				return "", nil
			}
			return "", fmt.Errorf("reading transcript: %w", err)
		}
		return string(data), nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), nil
}
