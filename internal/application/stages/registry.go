// Package stages binds the application services to the pipeline's stage
// handlers.  Each handler delegates to one service operation keyed by the
// case id; the orchestrator stays ignorant of what any stage actually does.
package stages

import (
	"context"

	"github.com/google/uuid"

	"github.com/juristack/juristack/internal/application/analysis"
	"github.com/juristack/juristack/internal/application/ingest"
	"github.com/juristack/juristack/internal/application/prediction"
	"github.com/juristack/juristack/internal/application/retrieval"
	"github.com/juristack/juristack/internal/domain/pipeline"
	jtypes "github.com/juristack/juristack/pkg/types/judgment"
)

// Deps lists the services the work stages delegate to.
type Deps struct {
	Ingest     ingest.Service
	Analysis   analysis.Service
	Retrieval  retrieval.Service
	Prediction prediction.Service
}

type handler struct {
	stage pipeline.Stage
	run   func(ctx context.Context, caseID uuid.UUID) error
}

func (h handler) Stage() pipeline.Stage { return h.stage }

func (h handler) Run(ctx context.Context, entry *pipeline.QueueEntry) error {
	return h.run(ctx, entry.CaseID)
}

// NewRegistry binds every work stage to its service operation.
func NewRegistry(deps Deps) *pipeline.HandlerRegistry {
	reg := pipeline.NewHandlerRegistry()
	RegisterInto(reg, deps)
	return reg
}

// RegisterInto adds every work stage handler to an existing registry.  The
// ingest service holds the orchestrator, which holds the registry; wiring
// that cycle means the registry has to exist, empty, before the services do.
func RegisterInto(reg *pipeline.HandlerRegistry, deps Deps) {
	for _, h := range []pipeline.StageHandler{
		handler{stage: jtypes.StageExtraction, run: deps.Ingest.RunExtraction},
		handler{stage: jtypes.StageNormalize, run: deps.Ingest.RunNormalize},
		handler{stage: jtypes.StageFacts, run: deps.Analysis.RunFacts},
		handler{stage: jtypes.StageSummary, run: deps.Analysis.RunSummary},
		handler{stage: jtypes.StageTranslate, run: deps.Analysis.RunTranslate},
		handler{stage: jtypes.StageChunkEmbed, run: deps.Retrieval.RunChunkEmbed},
		handler{stage: jtypes.StageSimilarity, run: deps.Retrieval.RunSimilarity},
		handler{stage: jtypes.StagePredict, run: predictAndRefresh(deps.Prediction)},
	} {
		reg.Register(h)
	}
}

// predictAndRefresh runs the PREDICT stage and then folds the case's outcome
// into the historical buckets.  The refresh rides in the last work stage so
// stats lag a completed case by at most one tick.
func predictAndRefresh(svc prediction.Service) func(ctx context.Context, caseID uuid.UUID) error {
	return func(ctx context.Context, caseID uuid.UUID) error {
		if err := svc.RunPredict(ctx, caseID); err != nil {
			return err
		}
		return svc.RefreshStats(ctx, caseID)
	}
}
