package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/juristack/juristack/internal/application/prediction"
	"github.com/juristack/juristack/internal/infrastructure/monitoring/logging"
	"github.com/juristack/juristack/internal/infrastructure/monitoring/prometheus"
	jtypes "github.com/juristack/juristack/pkg/types/judgment"
)

// PredictHandler serves the manual prediction endpoint.
type PredictHandler struct {
	prediction prediction.Service
	metrics    *prometheus.AppMetrics
	log        logging.Logger
}

// NewPredictHandler creates the prediction handler.  metrics may be nil.
func NewPredictHandler(predictionSvc prediction.Service, metrics *prometheus.AppMetrics, log logging.Logger) *PredictHandler {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &PredictHandler{
		prediction: predictionSvc,
		metrics:    metrics,
		log:        log.Named("predict_handler"),
	}
}

// Manual scores hand-entered case features.  The result is an educational
// estimate and carries its disclaimer verbatim.
func (h *PredictHandler) Manual(c *gin.Context) {
	var req jtypes.ManualPredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "malformed prediction request")
		return
	}
	if req.DisputeType == "" || req.EvidenceStrength == "" {
		respondValidation(c, "dispute_type and evidence_strength are required")
		return
	}

	act, section := splitActsSections(req.ActsSections)
	res := h.prediction.PredictManual(prediction.ManualFeatures{
		CaseType:         req.CaseType,
		CourtLevel:       req.CourtLevel,
		Act:              act,
		Section:          section,
		DisputeType:      req.DisputeType,
		EvidenceStrength: req.EvidenceStrength,
		DelayInFiling:    req.DelayInFiling,
		ReliefType:       req.ReliefType,
	})
	if h.metrics != nil {
		h.metrics.PredictionsTotal.WithLabelValues(res.Outcome, "manual").Inc()
	}

	c.JSON(http.StatusOK, res)
}

// splitActsSections separates "Act name Section 138" style free text into the
// act and section inputs of the scoring engine.
func splitActsSections(s string) (act, section string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ""
	}
	lower := strings.ToLower(s)
	if idx := strings.LastIndex(lower, "section"); idx >= 0 {
		return strings.TrimSpace(s[:idx]), strings.TrimSpace(s[idx+len("section"):])
	}
	return s, ""
}
