package client

import (
	"context"

	jtypes "github.com/juristack/juristack/pkg/types/judgment"
)

// PredictClient covers the manual prediction endpoint.
type PredictClient struct {
	client *Client
}

// ManualPredictionResult is the scored outcome of hand-entered case features.
// The disclaimer must be shown to end users unmodified.
type ManualPredictionResult struct {
	Outcome      string                    `json:"outcome"`
	Probability  float64                   `json:"probability"`
	PlaintiffPct int                       `json:"plaintiff_pct"`
	DefendantPct int                       `json:"defendant_pct"`
	Confidence   float64                   `json:"confidence"`
	Explanation  string                    `json:"explanation"`
	Factors      []jtypes.PredictionFactor `json:"factors"`
	Disclaimer   string                    `json:"disclaimer"`
}

// Manual scores hand-entered case features without uploading a document.
// DisputeType and EvidenceStrength are required.
func (pc *PredictClient) Manual(ctx context.Context, req *jtypes.ManualPredictionRequest) (*ManualPredictionResult, error) {
	var res ManualPredictionResult
	if err := pc.client.post(ctx, "/api/v1/predict/manual", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
