package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/juristack/juristack/internal/application/retrieval"
	"github.com/juristack/juristack/internal/domain/judgment"
	"github.com/juristack/juristack/internal/infrastructure/monitoring/logging"
	"github.com/juristack/juristack/internal/infrastructure/monitoring/prometheus"
	"github.com/juristack/juristack/pkg/errors"
	jtypes "github.com/juristack/juristack/pkg/types/judgment"
)

// ChatHandler serves the grounded case chatbot.
type ChatHandler struct {
	retrieval retrieval.Service
	cases     judgment.CaseRepository
	exchanges judgment.ChatRepository
	metrics   *prometheus.AppMetrics
	log       logging.Logger
}

// NewChatHandler creates the chat handler.  metrics may be nil.
func NewChatHandler(retrievalSvc retrieval.Service, cases judgment.CaseRepository,
	exchanges judgment.ChatRepository, metrics *prometheus.AppMetrics, log logging.Logger) *ChatHandler {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ChatHandler{
		retrieval: retrievalSvc,
		cases:     cases,
		exchanges: exchanges,
		metrics:   metrics,
		log:       log.Named("chat_handler"),
	}
}

// Ask answers one question about a processed case.
func (h *ChatHandler) Ask(c *gin.Context) {
	var req jtypes.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "malformed chat request")
		return
	}
	if req.CaseNumber == "" {
		respondValidation(c, "case_number is required")
		return
	}

	ctx := c.Request.Context()
	caseRec, err := h.cases.GetByNumber(ctx, req.CaseNumber)
	if err != nil {
		respondError(c, err)
		return
	}

	ex, err := h.retrieval.Ask(ctx, caseRec.ID, req.Query)
	if err != nil {
		if h.metrics != nil {
			h.metrics.ChatRequestsTotal.WithLabelValues("unknown", "error").Inc()
		}
		respondError(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.ChatRequestsTotal.WithLabelValues(ex.Intent, "ok").Inc()
		h.metrics.ChatLatency.WithLabelValues(ex.Intent).Observe(float64(ex.LatencyMS) / 1000)
	}

	sources := make([]string, len(ex.ContextIDs))
	for i, id := range ex.ContextIDs {
		sources[i] = id.String()
	}
	c.JSON(http.StatusOK, jtypes.ChatResponse{
		Answer:    ex.Response,
		Intent:    ex.Intent,
		Sources:   sources,
		Grounded:  len(ex.ContextIDs) > 0,
		LatencyMS: ex.LatencyMS,
	})
}

// historyEntry is one logged exchange in the history view.
type historyEntry struct {
	Query     string `json:"query"`
	Response  string `json:"response"`
	Intent    string `json:"intent"`
	LatencyMS int64  `json:"latency_ms"`
	CreatedAt string `json:"created_at"`
}

// History returns the most recent exchanges of a case, newest first.
func (h *ChatHandler) History(c *gin.Context) {
	ctx := c.Request.Context()
	caseRec, err := h.cases.GetByNumber(ctx, c.Param("number"))
	if err != nil {
		respondError(c, err)
		return
	}

	limit := 20
	if v := c.Query("limit"); v != "" {
		n, convErr := strconv.Atoi(v)
		if convErr != nil || n < 1 || n > 100 {
			respondError(c, errors.Newf(errors.ErrCodeValidation, "limit must be between 1 and 100"))
			return
		}
		limit = n
	}

	list, err := h.exchanges.ListByCase(ctx, caseRec.ID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]historyEntry, len(list))
	for i, ex := range list {
		out[i] = historyEntry{
			Query:     ex.Query,
			Response:  ex.Response,
			Intent:    ex.Intent,
			LatencyMS: ex.LatencyMS,
			CreatedAt: ex.CreatedAt.UTC().Format(time.RFC3339),
		}
	}
	c.JSON(http.StatusOK, gin.H{"case_number": caseRec.CaseNumber, "exchanges": out})
}
