package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/juristack/juristack/pkg/client"
	"github.com/juristack/juristack/pkg/errors"
	jtypes "github.com/juristack/juristack/pkg/types/judgment"
)

var (
	uploadFile       string
	uploadCaseNumber string
	uploadTitle      string
	uploadLanguage   string
	analyzeLanguage  string
	resetStage       string
)

// NewCasesCmd creates the cases command group.
func NewCasesCmd() *cobra.Command {
	casesCmd := &cobra.Command{
		Use:   "cases",
		Short: "Upload judgments and query their pipeline progress",
	}

	uploadCmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload a judgment document for processing",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCasesUpload(cmd)
		},
	}
	uploadCmd.Flags().StringVarP(&uploadFile, "file", "f", "", "path to the judgment document (required)")
	uploadCmd.Flags().StringVar(&uploadCaseNumber, "case-number", "", "court case number (required)")
	uploadCmd.Flags().StringVar(&uploadTitle, "title", "", "case title")
	uploadCmd.Flags().StringVar(&uploadLanguage, "language", "", "document language hint")
	uploadCmd.MarkFlagRequired("file")        //nolint:errcheck
	uploadCmd.MarkFlagRequired("case-number") //nolint:errcheck

	statusCmd := &cobra.Command{
		Use:   "status <case-number>",
		Short: "Show the pipeline position of a case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCasesStatus(cmd, args[0])
		},
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze <case-number>",
		Short: "Show the consolidated analysis of a case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCasesAnalyze(cmd, args[0])
		},
	}
	analyzeCmd.Flags().StringVar(&analyzeLanguage, "language", "", "translation language to include")

	resetCmd := &cobra.Command{
		Use:   "reset <case-number>",
		Short: "Move a case back to an earlier pipeline stage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCasesReset(cmd, args[0])
		},
	}
	resetCmd.Flags().StringVar(&resetStage, "stage", "", "target stage, e.g. EXTRACTION or SUMMARY (required)")
	resetCmd.MarkFlagRequired("stage") //nolint:errcheck

	casesCmd.AddCommand(uploadCmd, statusCmd, analyzeCmd, resetCmd)
	return casesCmd
}

func runCasesUpload(cmd *cobra.Command) error {
	cliCtx, api, err := requireClient(cmd)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(uploadFile)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}

	ctx, cancel := commandContext(cmd, cliCtx)
	defer cancel()

	res, err := api.Cases().Upload(ctx, &client.UploadDocument{
		CaseNumber:  uploadCaseNumber,
		Title:       uploadTitle,
		ContentType: contentTypeFor(uploadFile),
		Content:     data,
		Language:    uploadLanguage,
	})
	if err != nil {
		return err
	}

	PrintSuccess(cmd, fmt.Sprintf("case %s enqueued at stage %s (%s)", res.CaseNumber, res.Stage, res.Status))
	return PrintResult(cmd, res)
}

func runCasesStatus(cmd *cobra.Command, caseNumber string) error {
	cliCtx, api, err := requireClient(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd, cliCtx)
	defer cancel()

	st, err := api.Cases().Status(ctx, caseNumber)
	if err != nil {
		return err
	}
	return PrintResult(cmd, statusView{st})
}

func runCasesAnalyze(cmd *cobra.Command, caseNumber string) error {
	cliCtx, api, err := requireClient(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd, cliCtx)
	defer cancel()

	res, err := api.Cases().Analyze(ctx, caseNumber, analyzeLanguage)
	if err != nil {
		return err
	}
	if len(res.Missing) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "Note: artifacts still missing: %s\n", strings.Join(res.Missing, ", "))
	}
	return PrintResult(cmd, res)
}

func runCasesReset(cmd *cobra.Command, caseNumber string) error {
	cliCtx, api, err := requireClient(cmd)
	if err != nil {
		return err
	}

	stage := jtypes.Stage(strings.ToUpper(resetStage))
	if !stage.IsValid() {
		return errors.Newf(errors.ErrCodeValidation, "unknown stage %q", resetStage)
	}

	ctx, cancel := commandContext(cmd, cliCtx)
	defer cancel()

	st, err := api.Cases().Reset(ctx, caseNumber, stage)
	if err != nil {
		return err
	}

	PrintSuccess(cmd, fmt.Sprintf("case %s reset to stage %s", st.CaseNumber, st.Stage))
	return PrintResult(cmd, statusView{st})
}

// statusView adds table rendering on top of the status payload.
type statusView struct {
	*jtypes.CaseStatus
}

func (v statusView) TableHeaders() []string {
	return []string{"CASE", "STAGE", "STATUS", "ATTEMPTS", "UPDATED"}
}

func (v statusView) TableRows() [][]string {
	return [][]string{{
		v.CaseNumber,
		string(v.Stage),
		string(v.Status),
		fmt.Sprintf("%d", v.Attempts),
		v.UpdatedAt,
	}}
}

// commandContext derives a per-command timeout context from the global flag.
func commandContext(cmd *cobra.Command, cliCtx *CLIContext) (context.Context, context.CancelFunc) {
	if cliCtx.Timeout > 0 {
		return context.WithTimeout(cmd.Context(), cliCtx.Timeout)
	}
	return context.WithCancel(cmd.Context())
}

// contentTypeFor maps the document extension onto the upload content type.
func contentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return "application/pdf"
	case ".json":
		return "application/json"
	default:
		return "text/plain"
	}
}
