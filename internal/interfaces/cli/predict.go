package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/juristack/juristack/pkg/errors"
	jtypes "github.com/juristack/juristack/pkg/types/judgment"
)

var (
	predictCaseType   string
	predictCourtLevel string
	predictDispute    string
	predictEvidence   string
	predictDelay      bool
	predictRelief     string
	predictActs       string
)

// NewPredictCmd creates the predict command.
func NewPredictCmd() *cobra.Command {
	predictCmd := &cobra.Command{
		Use:   "predict",
		Short: "Score hand-entered case features without uploading a document",
		Long: "predict runs the outcome scoring engine over manually entered case\n" +
			"features. The result is an educational estimate, not legal advice.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPredictManual(cmd)
		},
	}

	f := predictCmd.Flags()
	f.StringVar(&predictCaseType, "case-type", "", "case type, e.g. criminal or civil")
	f.StringVar(&predictCourtLevel, "court-level", "", "court level, e.g. district or high")
	f.StringVar(&predictDispute, "dispute-type", "", "dispute type (required)")
	f.StringVar(&predictEvidence, "evidence", "", "evidence strength: strong, medium or weak (required)")
	f.BoolVar(&predictDelay, "delay", false, "whether filing was delayed")
	f.StringVar(&predictRelief, "relief", "", "relief type sought")
	f.StringVar(&predictActs, "acts", "", "acts and sections, e.g. \"Negotiable Instruments Act Section 138\"")
	predictCmd.MarkFlagRequired("dispute-type") //nolint:errcheck
	predictCmd.MarkFlagRequired("evidence")     //nolint:errcheck

	return predictCmd
}

func runPredictManual(cmd *cobra.Command) error {
	cliCtx, api, err := requireClient(cmd)
	if err != nil {
		return err
	}
	if predictDispute == "" || predictEvidence == "" {
		return errors.New(errors.ErrCodeValidation, "--dispute-type and --evidence are required")
	}

	ctx, cancel := commandContext(cmd, cliCtx)
	defer cancel()

	res, err := api.Predict().Manual(ctx, &jtypes.ManualPredictionRequest{
		CaseType:         predictCaseType,
		CourtLevel:       predictCourtLevel,
		DisputeType:      predictDispute,
		EvidenceStrength: predictEvidence,
		DelayInFiling:    predictDelay,
		ReliefType:       predictRelief,
		ActsSections:     predictActs,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Outcome: %s (plaintiff %d%% / defendant %d%%)\n",
		res.Outcome, res.PlaintiffPct, res.DefendantPct)
	return PrintResult(cmd, res)
}
