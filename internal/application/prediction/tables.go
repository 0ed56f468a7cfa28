package prediction

import (
	"regexp"
	"strings"
)

// Scoring tables for the manual path.  Values are base win probabilities for
// the initiating party, distilled from how these matters typically resolve;
// lookups are case-insensitive and unknown values take the table default.

var evidenceScores = map[string]float64{
	"strong": 0.88,
	"medium": 0.58,
	"weak":   0.28,
}

const defaultEvidenceScore = 0.58

const (
	delayScore   = 0.30
	noDelayScore = 0.82
)

var courtScores = map[string]float64{
	"supreme court":    0.84,
	"high court":       0.74,
	"district court":   0.62,
	"sessions court":   0.60,
	"magistrate court": 0.55,
	"family court":     0.65,
}

const defaultCourtScore = 0.62

var disputeScores = map[string]float64{
	"property dispute":  0.60,
	"cheque bounce":     0.72,
	"domestic violence": 0.65,
	"maintenance":       0.68,
	"criminal":          0.50,
	"bail":              0.55,
	"service matter":    0.63,
	"land acquisition":  0.58,
	"motor accident":    0.70,
	"consumer dispute":  0.67,
	"divorce":           0.60,
	"custody":           0.62,
	"writ":              0.64,
	"contempt":          0.55,
	"defamation":        0.52,
	"injunction":        0.60,
	"recovery":          0.65,
	"insolvency":        0.50,
	"contract breach":   0.63,
	"rent":              0.60,
}

const defaultDisputeScore = 0.60

var reliefScores = map[string]float64{
	"compensation":         0.70,
	"declaration":          0.62,
	"injunction":           0.65,
	"bail":                 0.55,
	"quashing fir":         0.52,
	"divorce":              0.60,
	"custody":              0.62,
	"maintenance":          0.68,
	"recovery":             0.65,
	"possession":           0.60,
	"specific performance": 0.58,
	"mandamus":             0.63,
	"certiorari":           0.61,
}

const defaultReliefScore = 0.62

var caseTypeModifiers = map[string]float64{
	"civil suit":                     0.04,
	"criminal case":                  -0.04,
	"criminal appeal":                -0.02,
	"writ petition":                  0.02,
	"maintenance case":               0.05,
	"bail application":               -0.06,
	"family court case":              0.03,
	"family court original petition": 0.03,
}

func lookup(table map[string]float64, key string, fallback float64) float64 {
	if v, ok := table[strings.ToLower(strings.TrimSpace(key))]; ok {
		return v
	}
	return fallback
}

// Outcome-term polarity for the baseline text predictor and the stats
// refresher.  The terms read the disposition from the initiating party's
// point of view.
var (
	positiveOutcomeRe = regexp.MustCompile(`\b(granted|allowed|benefit|compensation|acquitted)\b`)
	negativeOutcomeRe = regexp.MustCompile(`\b(dismissed|rejected|proved|convicted|insufficient)\b`)
)

// outcomePolarity counts favourable and unfavourable outcome terms in text.
func outcomePolarity(text string) (positive, negative int) {
	clean := strings.ToLower(text)
	return len(positiveOutcomeRe.FindAllString(clean, -1)),
		len(negativeOutcomeRe.FindAllString(clean, -1))
}

// baselineProbability scores text by outcome-term polarity alone: each net
// favourable term moves the estimate 0.12 from even odds, bounded away from
// certainty.
func baselineProbability(text string) float64 {
	pos, neg := outcomePolarity(text)
	p := 0.5 + float64(pos-neg)*0.12
	if p < 0.01 {
		p = 0.01
	}
	if p > 0.99 {
		p = 0.99
	}
	return p
}
