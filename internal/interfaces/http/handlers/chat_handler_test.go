package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juristack/juristack/internal/domain/judgment"
	"github.com/juristack/juristack/internal/testutil"
	"github.com/juristack/juristack/pkg/errors"
	jtypes "github.com/juristack/juristack/pkg/types/judgment"
)

type mockRetrieval struct {
	askFn func(ctx context.Context, caseID uuid.UUID, query string) (*judgment.ChatExchange, error)
}

func (m *mockRetrieval) RunChunkEmbed(context.Context, uuid.UUID) error { return nil }
func (m *mockRetrieval) RunSimilarity(context.Context, uuid.UUID) error { return nil }

func (m *mockRetrieval) Ask(ctx context.Context, caseID uuid.UUID, query string) (*judgment.ChatExchange, error) {
	return m.askFn(ctx, caseID, query)
}

func newChatRouter(h *ChatHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/v1/chat/ask", h.Ask)
	r.GET("/api/v1/chat/:number/history", h.History)
	return r
}

func chatCaseRepo(caseID uuid.UUID, caseNumber string) *testutil.CaseRepoMock {
	return &testutil.CaseRepoMock{
		GetByNumberFn: func(_ context.Context, number string) (*judgment.Case, error) {
			if number != caseNumber {
				return nil, errors.New(errors.ErrCodeCaseNotFound, "case not found")
			}
			return &judgment.Case{ID: caseID, CaseNumber: caseNumber}, nil
		},
	}
}

func TestChatHandler_Ask(t *testing.T) {
	t.Parallel()

	caseID := uuid.New()
	chunkID := uuid.New()
	retr := &mockRetrieval{askFn: func(_ context.Context, id uuid.UUID, query string) (*judgment.ChatExchange, error) {
		assert.Equal(t, caseID, id)
		assert.Equal(t, "what was the final order?", query)
		return &judgment.ChatExchange{
			CaseID:     caseID,
			Query:      query,
			Response:   "The appeal was dismissed.",
			Intent:     "general",
			ContextIDs: []uuid.UUID{chunkID},
			LatencyMS:  42,
		}, nil
	}}
	h := NewChatHandler(retr, chatCaseRepo(caseID, "C-1"), &testutil.ChatRepoMock{}, nil, nil)
	r := newChatRouter(h)

	body, _ := json.Marshal(jtypes.ChatRequest{CaseNumber: "C-1", Query: "what was the final order?"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat/ask", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp jtypes.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "The appeal was dismissed.", resp.Answer)
	assert.Equal(t, "general", resp.Intent)
	assert.Equal(t, []string{chunkID.String()}, resp.Sources)
	assert.True(t, resp.Grounded)
	assert.Equal(t, int64(42), resp.LatencyMS)
}

func TestChatHandler_AskWithoutCaseNumber(t *testing.T) {
	t.Parallel()

	h := NewChatHandler(&mockRetrieval{}, &testutil.CaseRepoMock{}, &testutil.ChatRepoMock{}, nil, nil)
	r := newChatRouter(h)

	body := []byte(`{"query":"anything"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat/ask", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatHandler_AskUnknownCase(t *testing.T) {
	t.Parallel()

	// The zero-value repo answers every lookup with case-not-found.
	h := NewChatHandler(&mockRetrieval{}, &testutil.CaseRepoMock{}, &testutil.ChatRepoMock{}, nil, nil)
	r := newChatRouter(h)

	body := []byte(`{"case_number":"NOPE","query":"anything"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat/ask", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChatHandler_AskUngrounded(t *testing.T) {
	t.Parallel()

	caseID := uuid.New()
	retr := &mockRetrieval{askFn: func(_ context.Context, _ uuid.UUID, query string) (*judgment.ChatExchange, error) {
		return &judgment.ChatExchange{
			CaseID:   caseID,
			Query:    query,
			Response: "I could not find relevant passages in this case.",
			Intent:   "general",
		}, nil
	}}
	h := NewChatHandler(retr, chatCaseRepo(caseID, "C-1"), &testutil.ChatRepoMock{}, nil, nil)
	r := newChatRouter(h)

	body := []byte(`{"case_number":"C-1","query":"irrelevant"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat/ask", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp jtypes.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Grounded)
	assert.Empty(t, resp.Sources)
}

func TestChatHandler_History(t *testing.T) {
	t.Parallel()

	caseID := uuid.New()
	exchanges := &testutil.ChatRepoMock{}
	for i, q := range []string{"first question", "second question"} {
		require.NoError(t, exchanges.Append(context.Background(), &judgment.ChatExchange{
			ID:        uuid.New(),
			CaseID:    caseID,
			Query:     q,
			Response:  "answer",
			Intent:    "general",
			LatencyMS: int64(i + 1),
			CreatedAt: time.Date(2024, 3, 1, 10, i, 0, 0, time.UTC),
		}))
	}
	h := NewChatHandler(&mockRetrieval{}, chatCaseRepo(caseID, "C-1"), exchanges, nil, nil)
	r := newChatRouter(h)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/chat/C-1/history", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		CaseNumber string         `json:"case_number"`
		Exchanges  []historyEntry `json:"exchanges"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "C-1", resp.CaseNumber)
	require.Len(t, resp.Exchanges, 2)
	assert.Equal(t, "first question", resp.Exchanges[0].Query)
	assert.Equal(t, "2024-03-01T10:00:00Z", resp.Exchanges[0].CreatedAt)
}

func TestChatHandler_HistoryLimitOutOfRange(t *testing.T) {
	t.Parallel()

	caseID := uuid.New()
	h := NewChatHandler(&mockRetrieval{}, chatCaseRepo(caseID, "C-1"), &testutil.ChatRepoMock{}, nil, nil)
	r := newChatRouter(h)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/chat/C-1/history?limit=9999", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
