package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/juristack/juristack/pkg/client"
)

var (
	chatLanguage     string
	chatHistoryLimit int
)

// NewChatCmd creates the chat command group.
func NewChatCmd() *cobra.Command {
	chatCmd := &cobra.Command{
		Use:   "chat",
		Short: "Ask questions about an uploaded case",
	}

	askCmd := &cobra.Command{
		Use:   "ask <case-number> <question...>",
		Short: "Ask the case chatbot a question",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChatAsk(cmd, args[0], strings.Join(args[1:], " "))
		},
	}
	askCmd.Flags().StringVar(&chatLanguage, "language", "", "answer language")

	historyCmd := &cobra.Command{
		Use:   "history <case-number>",
		Short: "Show recent questions and answers for a case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChatHistory(cmd, args[0])
		},
	}
	historyCmd.Flags().IntVar(&chatHistoryLimit, "limit", 20, "number of exchanges to show (1-100)")

	chatCmd.AddCommand(askCmd, historyCmd)
	return chatCmd
}

func runChatAsk(cmd *cobra.Command, caseNumber, question string) error {
	cliCtx, api, err := requireClient(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd, cliCtx)
	defer cancel()

	res, err := api.Chat().Ask(ctx, caseNumber, question, chatLanguage)
	if err != nil {
		return err
	}
	return PrintResult(cmd, res)
}

func runChatHistory(cmd *cobra.Command, caseNumber string) error {
	cliCtx, api, err := requireClient(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd, cliCtx)
	defer cancel()

	res, err := api.Chat().History(ctx, caseNumber, chatHistoryLimit)
	if err != nil {
		return err
	}
	return PrintResult(cmd, historyView{res})
}

// historyView adds table rendering on top of the history payload.
type historyView struct {
	*client.History
}

func (v historyView) TableHeaders() []string {
	return []string{"WHEN", "INTENT", "QUERY", "RESPONSE"}
}

func (v historyView) TableRows() [][]string {
	rows := make([][]string, len(v.Exchanges))
	for i, ex := range v.Exchanges {
		rows[i] = []string{ex.CreatedAt, ex.Intent, truncate(ex.Query, 40), truncate(ex.Response, 60)}
	}
	return rows
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
