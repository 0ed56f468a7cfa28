// Package query assembles the read-side views of the API: the case status
// snapshot and the consolidated analyze result.  Partial pipelines yield a
// well-formed result annotated with the artifacts still missing; only fully
// assembled results are cached.
package query

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/juristack/juristack/internal/application/analysis"
	"github.com/juristack/juristack/internal/domain/judgment"
	"github.com/juristack/juristack/internal/domain/pipeline"
	"github.com/juristack/juristack/internal/infrastructure/database/redis"
	"github.com/juristack/juristack/internal/infrastructure/monitoring/logging"
	"github.com/juristack/juristack/internal/infrastructure/monitoring/prometheus"
	"github.com/juristack/juristack/pkg/errors"
	jtypes "github.com/juristack/juristack/pkg/types/judgment"
)

// Artifact names reported in AnalyzeResult.Missing.
const (
	artifactSummaries   = "summaries"
	artifactTranslation = "translation"
	artifactSimilar     = "similar_cases"
	artifactPrediction  = "prediction"
)

const analyzeCacheName = "analyze"

// Service answers the read-only queries of the HTTP surface.
type Service interface {
	// Status returns the pipeline status snapshot of a case.
	Status(ctx context.Context, caseNumber string) (*jtypes.CaseStatus, error)

	// Analyze returns the consolidated analysis view.  language selects the
	// translation artifact; empty means no translation is requested.
	Analyze(ctx context.Context, caseNumber, language string) (*jtypes.AnalyzeResult, error)

	// InvalidateCase drops every cached analyze view of a case.  Stage
	// completions call it so readers never see a stale consolidated result.
	InvalidateCase(ctx context.Context, caseNumber string) error
}

// Deps lists the collaborators of the query service.  Cache and Metrics are
// optional; a nil cache reads straight through to the repositories.
type Deps struct {
	Cases     judgment.CaseRepository
	Artifacts judgment.ArtifactRepository
	Pipeline  pipeline.Orchestrator

	Cache    redis.Cache
	CacheTTL time.Duration
	Metrics  *prometheus.AppMetrics

	Logger logging.Logger
}

type service struct {
	cases     judgment.CaseRepository
	artifacts judgment.ArtifactRepository
	pipeline  pipeline.Orchestrator
	cache     redis.Cache
	cacheTTL  time.Duration
	metrics   *prometheus.AppMetrics
	log       logging.Logger
}

// NewService creates the query application service.
func NewService(deps Deps) Service {
	log := deps.Logger
	if log == nil {
		log = logging.NewNopLogger()
	}
	ttl := deps.CacheTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &service{
		cases:     deps.Cases,
		artifacts: deps.Artifacts,
		pipeline:  deps.Pipeline,
		cache:     deps.Cache,
		cacheTTL:  ttl,
		metrics:   deps.Metrics,
		log:       log.Named("query"),
	}
}

func (s *service) Status(ctx context.Context, caseNumber string) (*jtypes.CaseStatus, error) {
	entry, err := s.pipeline.Status(ctx, caseNumber)
	if err != nil {
		return nil, err
	}
	return &jtypes.CaseStatus{
		CaseNumber: entry.CaseNumber,
		Stage:      entry.Stage,
		Status:     entry.Status,
		Attempts:   entry.Attempts,
		LastError:  entry.LastError,
		EnqueuedAt: entry.EnqueuedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  entry.UpdatedAt.UTC().Format(time.RFC3339),
	}, nil
}

func analyzeCacheKey(caseNumber, language string) string {
	return fmt.Sprintf("analyze:%s:%s", caseNumber, language)
}

func (s *service) Analyze(ctx context.Context, caseNumber, language string) (*jtypes.AnalyzeResult, error) {
	language = strings.ToLower(strings.TrimSpace(language))
	if language != "" && language != "en" && !analysis.SupportedLanguage(language) {
		return nil, errors.Newf(errors.ErrCodeValidation, "unsupported language %q", language)
	}

	c, err := s.cases.GetByNumber(ctx, caseNumber)
	if err != nil {
		return nil, err
	}

	key := analyzeCacheKey(c.CaseNumber, language)
	if s.cache != nil {
		var cached jtypes.AnalyzeResult
		cacheErr := s.cache.Get(ctx, key, &cached)
		if s.metrics != nil {
			s.metrics.RecordCacheAccess(analyzeCacheName, cacheErr == nil)
		}
		if cacheErr == nil {
			return &cached, nil
		}
		if !errors.IsNotFound(cacheErr) && !errors.IsCode(cacheErr, errors.ErrCodeCacheError) {
			return nil, cacheErr
		}
	}

	res, err := s.assemble(ctx, c, language)
	if err != nil {
		return nil, err
	}

	// Only complete views go into the cache; a partial view would otherwise
	// mask artifacts that land moments later.
	if s.cache != nil && len(res.Missing) == 0 {
		if setErr := s.cache.Set(ctx, key, res, s.cacheTTL); setErr != nil {
			s.log.Warn("analyze result not cached",
				logging.String("case_number", c.CaseNumber), logging.Err(setErr))
		}
	}
	return res, nil
}

func (s *service) assemble(ctx context.Context, c *judgment.Case, language string) (*jtypes.AnalyzeResult, error) {
	var (
		summary *judgment.Summary
		tr      *judgment.Translation
		edges   []judgment.SimilarityEdge
		pred    *judgment.Prediction
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summary, err = s.artifacts.GetSummary(gctx, c.ID)
		return ignoreNotFound(err)
	})
	if language != "" && language != "en" {
		g.Go(func() error {
			var err error
			tr, err = s.artifacts.GetTranslation(gctx, c.ID, language, judgment.TranslateSummary)
			return ignoreNotFound(err)
		})
	}
	g.Go(func() error {
		var err error
		edges, err = s.artifacts.GetSimilarityEdges(gctx, c.ID)
		return ignoreNotFound(err)
	})
	g.Go(func() error {
		var err error
		pred, err = s.artifacts.GetLatestPrediction(gctx, c.ID)
		return ignoreNotFound(err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &jtypes.AnalyzeResult{
		CaseNumber:   c.CaseNumber,
		SimilarCases: []jtypes.SimilarCase{},
	}

	if summary != nil {
		res.Summaries = toWireSummaries(summary)
	} else {
		res.Missing = append(res.Missing, artifactSummaries)
	}

	if language != "" && language != "en" {
		if tr != nil {
			res.Translation = &jtypes.Translation{
				Language:  tr.Language,
				Text:      tr.Text,
				ModelUsed: tr.ModelUsed,
			}
		} else {
			res.Missing = append(res.Missing, artifactTranslation)
		}
	}

	similar, err := s.resolveSimilar(ctx, edges)
	if err != nil {
		return nil, err
	}
	res.SimilarCases = similar
	if len(edges) == 0 {
		// An empty edge set is a valid result once SIMILARITY has run; before
		// that the artifact simply does not exist yet.
		entry, err := s.pipeline.Status(ctx, c.CaseNumber)
		if err != nil && !errors.IsNotFound(err) {
			return nil, err
		}
		if entry == nil || entry.Stage != jtypes.StageCompleted {
			res.Missing = append(res.Missing, artifactSimilar)
		}
	}

	if pred != nil {
		res.Prediction = &jtypes.Prediction{
			Outcome:          pred.Outcome,
			Probability:      pred.Probability,
			Confidence:       pred.Confidence,
			Factors:          toWireFactors(pred.Factors),
			SampleSize:       pred.SampleSize,
			InsufficientData: pred.InsufficientData,
		}
	} else {
		res.Missing = append(res.Missing, artifactPrediction)
	}

	return res, nil
}

// resolveSimilar joins similarity edges with the matched cases' header fields.
// A case deleted after the edges were computed drops out of the view.
func (s *service) resolveSimilar(ctx context.Context, edges []judgment.SimilarityEdge) ([]jtypes.SimilarCase, error) {
	out := make([]jtypes.SimilarCase, 0, len(edges))
	for _, e := range edges {
		cand, err := s.cases.GetByID(ctx, e.SimilarCaseID)
		if err != nil {
			if errors.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		sc := jtypes.SimilarCase{
			CaseNumber:   cand.CaseNumber,
			Title:        cand.Title,
			CourtName:    cand.Metadata.CourtName,
			Score:        e.Score,
			KeywordScore: e.KeywordScore,
			CosineScore:  e.CosineScore,
		}
		if !cand.Metadata.DecisionDate.IsZero() {
			sc.DecisionDate = cand.Metadata.DecisionDate.Format("2006-01-02")
		}
		out = append(out, sc)
	}
	return out, nil
}

func (s *service) InvalidateCase(ctx context.Context, caseNumber string) error {
	if s.cache == nil {
		return nil
	}
	_, err := s.cache.DeleteByPrefix(ctx, analyzeCacheKey(caseNumber, ""))
	return err
}

func ignoreNotFound(err error) error {
	if errors.IsNotFound(err) {
		return nil
	}
	return err
}

func toWireSummaries(s *judgment.Summary) *jtypes.Summaries {
	kps := make([]jtypes.KeyPoint, len(s.KeyPoints))
	for i, kp := range s.KeyPoints {
		kps[i] = jtypes.KeyPoint{Label: kp.Label, Explanation: kp.Explanation}
	}
	return &jtypes.Summaries{
		Short:     s.Short,
		Detailed:  s.Detailed,
		Basic:     s.Basic,
		KeyPoints: kps,
		Model:     s.Model,
	}
}

func toWireFactors(fs []judgment.PredictionFactor) []jtypes.PredictionFactor {
	out := make([]jtypes.PredictionFactor, len(fs))
	for i, f := range fs {
		out[i] = jtypes.PredictionFactor{Name: f.Name, Weight: f.Weight, Detail: f.Detail}
	}
	return out
}
