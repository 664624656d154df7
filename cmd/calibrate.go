package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gregory-lime/jacques-context-manager/internal/cli"
	"github.com/gregory-lime/jacques-context-manager/internal/pipeline"
	"github.com/gregory-lime/jacques-context-manager/internal/transcript"
)

var (
	flagActualTokens int
	flagWindowSize   int
)

var calibrateCmd = &cobra.Command{
	Use:   "calibrate",
	Short: "Record an authoritative token count for a session",
	Long: "Feed a ground-truth token count into the calibration store. The\n" +
		"count comes from --tokens, or from the usage fields of a session\n" +
		"transcript (--transcript, or located by session id). The ratio\n" +
		"against the session's last estimate becomes the correction factor\n" +
		"applied to its future estimates.",
	RunE: runCalibrate,
}

func init() {
	calibrateCmd.Flags().StringVarP(&flagSession, "session", "s", "", "Session identifier")
	calibrateCmd.Flags().StringVarP(&flagModel, "model", "m", "", "Model name (window fallback)")
	calibrateCmd.Flags().StringVarP(&flagTranscript, "transcript", "t", "", "Session transcript file (usage source)")
	calibrateCmd.Flags().IntVar(&flagActualTokens, "tokens", 0, "Actual token count")
	calibrateCmd.Flags().IntVar(&flagWindowSize, "window", 0, "Reported context window size")
	rootCmd.AddCommand(calibrateCmd)
}

func runCalibrate(cmd *cobra.Command, args []string) error {
	session, model := flagSession, flagModel

	actual := flagActualTokens
	if actual == 0 {
		tokens, trModel, trSession, err := tokensFromTranscript(session)
		if err != nil {
			return err
		}
		actual = tokens
		if model == "" {
			model = trModel
		}
		if session == "" {
			session = trSession
		}
	}
	if actual <= 0 {
		return fmt.Errorf("actual token count must be positive, got %d", actual)
	}

	engine, cleanup, err := newEngine()
	if err != nil {
		return err
	}
	defer cleanup()

	metrics := engine.Calibrate(pipeline.CalibrateRequest{
		SessionID:    session,
		Model:        model,
		ActualTokens: actual,
		WindowSize:   flagWindowSize,
	})

	if flagJSON {
		return printJSON(metrics)
	}

	fmt.Println(cli.RenderUsageBar(metrics.UsedPercentage, 40))
	fmt.Printf("  %s of %s tokens (ground truth)\n",
		cli.FormatTokens(metrics.TokenCount),
		cli.FormatTokens(metrics.WindowSize),
	)
	return nil
}

// tokensFromTranscript pulls the authoritative context size out of a
// session transcript's usage fields. The file comes from --transcript,
// or is located on disk by session id.
func tokensFromTranscript(session string) (tokens int, model, sessionID string, err error) {
	path := flagTranscript
	if path == "" {
		path, err = transcript.Locate(session, transcript.DefaultRoots())
		if err != nil {
			return 0, "", "", fmt.Errorf("no --tokens given and %w", err)
		}
	}

	tr, err := transcript.ParseFile(path)
	if err != nil {
		return 0, "", "", fmt.Errorf("parsing transcript: %w", err)
	}
	if tr.LastUsage == nil {
		return 0, "", "", fmt.Errorf("transcript %s has no usage data", path)
	}
	if tr.ParseErrors > 0 {
		fmt.Fprintf(os.Stderr, "jacques: %d unparseable transcript line(s) skipped\n", tr.ParseErrors)
	}
	return tr.LastUsage.ContextTokens(), tr.Model, tr.SessionID, nil
}
