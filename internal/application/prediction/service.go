// Package prediction implements outcome prediction for the PREDICT stage and
// the manual prediction endpoint.  Both paths are deterministic weighted
// scoring over case features; the derived path additionally blends historical
// win-rate buckets built from completed cases, with confidence tied to the
// sample size backing those buckets.
package prediction

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/juristack/juristack/internal/config"
	"github.com/juristack/juristack/internal/domain/judgment"
	"github.com/juristack/juristack/internal/infrastructure/monitoring/logging"
	"github.com/juristack/juristack/pkg/errors"
)

// Service defines the prediction operations.
type Service interface {
	// RunPredict performs the PREDICT stage: derive features from the
	// processed case, blend them with historical outcome buckets, append the
	// prediction.  Missing history yields an insufficient-data result, not
	// an error.
	RunPredict(ctx context.Context, caseID uuid.UUID) error

	// PredictManual scores structured form input without touching the
	// pipeline or any stored case.
	PredictManual(f ManualFeatures) *ManualResult

	// RefreshStats folds a completed case's disposition into the historical
	// outcome buckets.  The caller guarantees single-writer semantics per
	// bucket key.
	RefreshStats(ctx context.Context, caseID uuid.UUID) error
}

// Deps lists the collaborators of the prediction service.
type Deps struct {
	Cases     judgment.CaseRepository
	Artifacts judgment.ArtifactRepository
	Stats     judgment.StatsRepository
	Store     judgment.DocumentStore

	Config config.PredictionConfig
	Logger logging.Logger
}

type service struct {
	cases     judgment.CaseRepository
	artifacts judgment.ArtifactRepository
	stats     judgment.StatsRepository
	store     judgment.DocumentStore
	cfg       config.PredictionConfig
	log       logging.Logger
}

// NewService creates the prediction application service.  Zero-valued scoring
// weights fall back to the shipped defaults.
func NewService(deps Deps) Service {
	log := deps.Logger
	if log == nil {
		log = logging.NewNopLogger()
	}
	cfg := deps.Config
	if cfg.EvidenceWeight <= 0 {
		cfg.EvidenceWeight = config.DefaultEvidenceWeight
		cfg.DelayWeight = config.DefaultDelayWeight
		cfg.CourtWeight = config.DefaultCourtWeight
		cfg.DisputeWeight = config.DefaultDisputeWeight
		cfg.ReliefWeight = config.DefaultReliefWeight
	}
	if cfg.FavorThreshold <= 0 {
		cfg.FavorThreshold = config.DefaultFavorThreshold
	}
	if cfg.AgainstThreshold <= 0 {
		cfg.AgainstThreshold = config.DefaultAgainstThreshold
	}
	if cfg.MinSampleSize <= 0 {
		cfg.MinSampleSize = config.DefaultMinSampleSize
	}
	return &service{
		cases:     deps.Cases,
		artifacts: deps.Artifacts,
		stats:     deps.Stats,
		store:     deps.Store,
		cfg:       cfg,
		log:       log.Named("prediction"),
	}
}

func (s *service) PredictManual(f ManualFeatures) *ManualResult {
	return scoreManual(f, s.cfg)
}

// derivedFeature is one (bucket feature, bucket value) pair read off a case.
type derivedFeature struct {
	feature string
	value   string
}

// disputeAliases folds extracted issue keywords into the dispute buckets the
// scoring tables know about.
var disputeAliases = map[string]string{
	"dishonour of cheque": "cheque bounce",
	"murder":              "criminal",
	"culpable homicide":   "criminal",
	"cheating":            "criminal",
	"quashing":            "criminal",
	"anticipatory bail":   "bail",
	"habeas corpus":       "writ",
	"eviction":            "rent",
	"tenancy":             "rent",
	"possession":          "property dispute",
	"partition":           "property dispute",
	"dowry":               "domestic violence",
}

func deriveFeatures(c *judgment.Case, keywords []string) []derivedFeature {
	var out []derivedFeature
	if v := strings.ToLower(strings.TrimSpace(c.Metadata.CaseType)); v != "" {
		out = append(out, derivedFeature{feature: "case_type", value: v})
	}
	if v := strings.ToLower(strings.TrimSpace(c.Metadata.CourtLevel)); v != "" {
		out = append(out, derivedFeature{feature: "court_level", value: v})
	}
	if v := disputeFromKeywords(keywords); v != "" {
		out = append(out, derivedFeature{feature: "dispute_type", value: v})
	}
	return out
}

// disputeFromKeywords returns the first extracted keyword that names a known
// dispute bucket, directly or through an alias.
func disputeFromKeywords(keywords []string) string {
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if _, ok := disputeScores[kw]; ok {
			return kw
		}
		if alias, ok := disputeAliases[kw]; ok {
			return alias
		}
	}
	return ""
}

func (s *service) loadText(ctx context.Context, c *judgment.Case) (string, error) {
	if c.TextKey == "" {
		return "", errors.New(errors.ErrCodeCaseNotProcessed, "case has no extracted text yet").
			WithDetail("case_number=" + c.CaseNumber)
	}
	raw, err := s.store.Get(ctx, c.TextKey)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeStorageError, "fetch case text")
	}
	return string(raw), nil
}

func (s *service) RunPredict(ctx context.Context, caseID uuid.UUID) error {
	c, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		return err
	}
	text, err := s.loadText(ctx, c)
	if err != nil {
		return err
	}
	keywords, err := s.caseKeywords(ctx, c.ID)
	if err != nil {
		return err
	}

	pred, err := s.derive(ctx, c, text, keywords)
	if err != nil {
		return err
	}
	if err := s.artifacts.AppendPrediction(ctx, pred); err != nil {
		return err
	}

	s.log.Info("prediction recorded",
		logging.String("case_number", c.CaseNumber),
		logging.String("outcome", pred.Outcome),
		logging.Float64("probability", pred.Probability),
		logging.Int("sample_size", pred.SampleSize),
		logging.Bool("insufficient_data", pred.InsufficientData))
	return nil
}

func (s *service) caseKeywords(ctx context.Context, caseID uuid.UUID) ([]string, error) {
	kw, err := s.artifacts.GetKeywords(ctx, caseID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return kw.Keywords, nil
}

// derive builds the derived-path prediction: outcome-term polarity as the
// baseline, pulled towards the historical win rate of the buckets matching
// the case's features.  Each bucket's pull grows with its sample size, so
// thin history barely moves the baseline and never inflates confidence.
func (s *service) derive(ctx context.Context, c *judgment.Case, text string, keywords []string) (*judgment.Prediction, error) {
	baseline := baselineProbability(text)
	pos, neg := outcomePolarity(text)

	type bucket struct {
		feature derivedFeature
		stat    *judgment.OutcomeStat
	}
	var (
		buckets    []bucket
		sampleSize int
		wins       int
	)
	for _, f := range deriveFeatures(c, keywords) {
		stat, err := s.stats.Get(ctx, f.feature, f.value)
		if err != nil {
			if errors.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		buckets = append(buckets, bucket{feature: f, stat: stat})
		sampleSize += stat.Total
		wins += stat.Wins
	}

	pred := &judgment.Prediction{
		ID:         uuid.New(),
		CaseID:     c.ID,
		SampleSize: sampleSize,
		Source:     judgment.PredictionDerived,
		CreatedAt:  time.Now().UTC(),
	}

	if sampleSize < s.cfg.MinSampleSize {
		pred.Outcome = "Insufficient Data"
		pred.Probability = baseline
		pred.Confidence = 0.2
		pred.InsufficientData = true
		return pred, nil
	}

	histRate := float64(wins) / float64(sampleSize)
	histWeight := float64(sampleSize) / float64(sampleSize+10)
	probability := baseline*(1-histWeight) + histRate*histWeight
	probability = math.Max(0.05, math.Min(0.95, probability))

	pred.Probability = probability
	pred.Confidence = math.Min(0.95, 0.5+0.45*histWeight)
	switch {
	case probability >= s.cfg.FavorThreshold:
		pred.Outcome = "Likely to Win"
	case probability <= s.cfg.AgainstThreshold:
		pred.Outcome = "Likely to Lose"
	default:
		pred.Outcome = "Uncertain"
	}

	factors := make([]judgment.PredictionFactor, 0, len(buckets)+1)
	for _, b := range buckets {
		share := histWeight * float64(b.stat.Total) / float64(sampleSize)
		factors = append(factors, judgment.PredictionFactor{
			Name:   "Historical outcomes: " + b.feature.feature,
			Weight: share,
			Detail: fmt.Sprintf("%s: %d%% win rate across %d past cases",
				b.feature.value, pct(b.stat.WinRate()), b.stat.Total),
		})
	}
	factors = append(factors, judgment.PredictionFactor{
		Name:   "Outcome-term polarity",
		Weight: 1 - histWeight,
		Detail: fmt.Sprintf("%d favourable vs %d unfavourable outcome terms in the judgment text", pos, neg),
	})
	sort.SliceStable(factors, func(i, j int) bool { return factors[i].Weight > factors[j].Weight })
	pred.Factors = factors

	return pred, nil
}

func (s *service) RefreshStats(ctx context.Context, caseID uuid.UUID) error {
	c, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		return err
	}
	pos, neg := outcomePolarity(c.Metadata.Disposition)
	if pos == neg {
		// Ambiguous or missing disposition contributes nothing.
		s.log.Debug("disposition polarity ambiguous, stats unchanged",
			logging.String("case_number", c.CaseNumber))
		return nil
	}
	winDelta := 0
	if pos > neg {
		winDelta = 1
	}

	keywords, err := s.caseKeywords(ctx, c.ID)
	if err != nil {
		return err
	}
	for _, f := range deriveFeatures(c, keywords) {
		if err := s.stats.Upsert(ctx, f.feature, f.value, winDelta, 1); err != nil {
			return err
		}
	}

	s.log.Info("outcome stats updated",
		logging.String("case_number", c.CaseNumber),
		logging.Bool("win", winDelta == 1))
	return nil
}
