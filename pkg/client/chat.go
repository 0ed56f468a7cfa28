package client

import (
	"context"
	"fmt"
	"net/url"

	jtypes "github.com/juristack/juristack/pkg/types/judgment"
)

// ChatClient covers the case-grounded chatbot endpoints.
type ChatClient struct {
	client *Client
}

// HistoryEntry is one logged question and answer.
type HistoryEntry struct {
	Query     string `json:"query"`
	Response  string `json:"response"`
	Intent    string `json:"intent"`
	LatencyMS int64  `json:"latency_ms"`
	CreatedAt string `json:"created_at"`
}

// History is the exchange log of a case, newest first.
type History struct {
	CaseNumber string         `json:"case_number"`
	Exchanges  []HistoryEntry `json:"exchanges"`
}

// Ask sends a question about a case and returns the grounded answer.
func (cc *ChatClient) Ask(ctx context.Context, caseNumber, query, language string) (*jtypes.ChatResponse, error) {
	req := jtypes.ChatRequest{
		CaseNumber: caseNumber,
		Query:      query,
		Language:   language,
	}
	var res jtypes.ChatResponse
	if err := cc.client.post(ctx, "/api/v1/chat/ask", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// History returns up to limit recent exchanges of a case.  limit <= 0 leaves
// the choice to the server.
func (cc *ChatClient) History(ctx context.Context, caseNumber string, limit int) (*History, error) {
	path := fmt.Sprintf("/api/v1/chat/%s/history", url.PathEscape(caseNumber))
	if limit > 0 {
		path += fmt.Sprintf("?limit=%d", limit)
	}
	var res History
	if err := cc.client.get(ctx, path, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
