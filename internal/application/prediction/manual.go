package prediction

import (
	"fmt"
	"math"
	"strings"

	"github.com/juristack/juristack/internal/config"
	"github.com/juristack/juristack/internal/domain/judgment"
)

// ManualFeatures is the structured input of the manual prediction path.
type ManualFeatures struct {
	CaseType         string `json:"case_type"`
	CourtLevel       string `json:"court_level"`
	Act              string `json:"act,omitempty"`
	Section          string `json:"section,omitempty"`
	DisputeType      string `json:"dispute_type"`
	EvidenceStrength string `json:"evidence_strength"` // strong / medium / weak
	DelayInFiling    bool   `json:"delay_in_filing"`
	ReliefType       string `json:"relief_type"`
}

// ManualResult is the full manual prediction payload, probability plus the
// human-readable framing the query surface returns verbatim.
type ManualResult struct {
	Outcome      string                      `json:"outcome"`
	Probability  float64                     `json:"probability"`
	PlaintiffPct int                         `json:"plaintiff_pct"`
	DefendantPct int                         `json:"defendant_pct"`
	Confidence   float64                     `json:"confidence"`
	Explanation  string                      `json:"explanation"`
	Factors      []judgment.PredictionFactor `json:"factors"`
	Disclaimer   string                      `json:"disclaimer"`
}

const manualDisclaimer = "This is an educational probability estimate based on weighted rules. " +
	"It is NOT a legal opinion and does NOT predict actual court outcomes. " +
	"Please consult a qualified advocate for proper legal advice."

// scoreManual runs the weighted scoring rules over the supplied features.
// Fully deterministic; the same inputs always produce the same result.
func scoreManual(f ManualFeatures, cfg config.PredictionConfig) *ManualResult {
	evScore := lookup(evidenceScores, f.EvidenceStrength, defaultEvidenceScore)
	delaySc := noDelayScore
	if f.DelayInFiling {
		delaySc = delayScore
	}
	courtSc := lookup(courtScores, f.CourtLevel, defaultCourtScore)
	disputeSc := lookup(disputeScores, f.DisputeType, defaultDisputeScore)
	reliefSc := lookup(reliefScores, f.ReliefType, defaultReliefScore)

	raw := cfg.EvidenceWeight*evScore +
		cfg.DelayWeight*delaySc +
		cfg.CourtWeight*courtSc +
		cfg.DisputeWeight*disputeSc +
		cfg.ReliefWeight*reliefSc
	raw += caseTypeModifiers[strings.ToLower(strings.TrimSpace(f.CaseType))]

	score := math.Max(0.05, math.Min(0.95, raw))
	plaintiffPct := int(math.Round(score * 100))

	var outcome, explanation string
	switch {
	case score >= cfg.FavorThreshold:
		outcome = "Likely Favors Plaintiff"
		explanation = fmt.Sprintf(
			"Based on the inputs provided, the petitioner (person who filed) appears to have a stronger position. "+
				"Strong evidence, timely filing, and the nature of the dispute (%s) "+
				"tend to favour the petitioner in similar past cases.", f.DisputeType)
	case score <= cfg.AgainstThreshold:
		outcome = "Likely Favors Defendant"
		explanation = "Based on the inputs, the respondent (defending side) appears to have stronger legal standing. "
		if f.DelayInFiling {
			explanation += "Delay in filing weakens the case. "
		}
		if strings.EqualFold(f.EvidenceStrength, "weak") {
			explanation += "Weak evidence is a major disadvantage. "
		}
		explanation += "Past similar cases often go against the petitioner under these conditions."
	default:
		outcome = "Uncertain"
		explanation = "The case could go either way. The outcome would depend significantly on the actual evidence " +
			"presented in court and the judge's interpretation of the applicable law."
	}

	delayDetail := "No delay in filing, good standing"
	if f.DelayInFiling {
		delayDetail = "Delay in filing weakens the case"
	}
	factors := []judgment.PredictionFactor{
		{Name: "Evidence strength", Weight: cfg.EvidenceWeight,
			Detail: fmt.Sprintf("%s, %d%% weight score", f.EvidenceStrength, pct(evScore))},
		{Name: "Delay in filing", Weight: cfg.DelayWeight, Detail: delayDetail},
		{Name: "Court level", Weight: cfg.CourtWeight,
			Detail: fmt.Sprintf("%s, %d%% base score", f.CourtLevel, pct(courtSc))},
		{Name: "Dispute type", Weight: cfg.DisputeWeight,
			Detail: fmt.Sprintf("%s, %d%% typical outcome score", f.DisputeType, pct(disputeSc))},
		{Name: "Relief sought", Weight: cfg.ReliefWeight,
			Detail: fmt.Sprintf("%s, %d%% typical success rate", f.ReliefType, pct(reliefSc))},
	}
	if f.Act != "" || f.Section != "" {
		detail := strings.TrimSpace(f.Act)
		if f.Section != "" {
			detail = strings.TrimSpace(detail + " Section " + f.Section)
		}
		factors = append(factors, judgment.PredictionFactor{Name: "Applicable law", Detail: detail})
	}

	return &ManualResult{
		Outcome:      outcome,
		Probability:  score,
		PlaintiffPct: plaintiffPct,
		DefendantPct: 100 - plaintiffPct,
		Confidence:   math.Round(score*1000) / 1000,
		Explanation:  explanation,
		Factors:      factors,
		Disclaimer:   manualDisclaimer,
	}
}

func pct(v float64) int {
	return int(math.Round(v * 100))
}
