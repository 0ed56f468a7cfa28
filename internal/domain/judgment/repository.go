package judgment

import (
	"context"

	"github.com/google/uuid"
)

// CaseRepository defines the persistence contract for the Case aggregate.
type CaseRepository interface {
	Create(ctx context.Context, c *Case) error
	GetByID(ctx context.Context, id uuid.UUID) (*Case, error)
	GetByNumber(ctx context.Context, caseNumber string) (*Case, error)
	Update(ctx context.Context, c *Case) error

	// ListCompleted returns the ids of all cases whose pipeline reached
	// COMPLETED, for corpus-wide similarity and statistics scans.
	ListCompleted(ctx context.Context) ([]uuid.UUID, error)
}

// ArtifactRepository persists the per-case derived artifacts.  Replace-style
// writers (paragraphs, facts, summary, chunks, similarity edges) overwrite the
// previous generation in a single transaction so reprocessing is idempotent.
type ArtifactRepository interface {
	ReplaceParagraphs(ctx context.Context, caseID uuid.UUID, paragraphs []Paragraph) error
	GetParagraphs(ctx context.Context, caseID uuid.UUID) ([]Paragraph, error)

	ReplaceFacts(ctx context.Context, caseID uuid.UUID, facts []Fact) error
	GetFacts(ctx context.Context, caseID uuid.UUID) ([]Fact, error)

	SaveSummary(ctx context.Context, s *Summary) error
	GetSummary(ctx context.Context, caseID uuid.UUID) (*Summary, error)

	SaveTranslation(ctx context.Context, tr *Translation) error
	GetTranslation(ctx context.Context, caseID uuid.UUID, language string, mode TranslationMode) (*Translation, error)

	SaveKeywords(ctx context.Context, kw *Keywords) error
	GetKeywords(ctx context.Context, caseID uuid.UUID) (*Keywords, error)

	ReplaceSimilarityEdges(ctx context.Context, caseID uuid.UUID, edges []SimilarityEdge) error
	GetSimilarityEdges(ctx context.Context, caseID uuid.UUID) ([]SimilarityEdge, error)

	AppendPrediction(ctx context.Context, p *Prediction) error
	GetLatestPrediction(ctx context.Context, caseID uuid.UUID) (*Prediction, error)
}

// ChunkRepository persists embedded chunks and answers vector queries.
type ChunkRepository interface {
	ReplaceChunks(ctx context.Context, caseID uuid.UUID, chunks []Chunk) error
	GetChunks(ctx context.Context, caseID uuid.UUID) ([]Chunk, error)

	// SearchWithin returns the chunks of one case ranked by cosine similarity
	// to the query embedding, best first, at most limit entries.
	SearchWithin(ctx context.Context, caseID uuid.UUID, embedding []float32, limit int) ([]ScoredChunk, error)

	// MaxCosineAcross returns, for each candidate case, the maximum cosine
	// similarity between any of its chunks and any chunk of the source case.
	MaxCosineAcross(ctx context.Context, sourceCaseID uuid.UUID, candidateIDs []uuid.UUID) (map[uuid.UUID]float64, error)
}

// ScoredChunk pairs a chunk with its retrieval score.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// ChatRepository persists the chat exchange log.
type ChatRepository interface {
	Append(ctx context.Context, ex *ChatExchange) error
	ListByCase(ctx context.Context, caseID uuid.UUID, limit int) ([]ChatExchange, error)
}

// StatsRepository persists historical outcome buckets.
type StatsRepository interface {
	// Upsert adds wins/total deltas to the (feature, value) bucket, creating
	// it when absent.  Implementations must be safe under the single-writer
	// per key guarantee provided by the stats refresher.
	Upsert(ctx context.Context, feature, value string, winDelta, totalDelta int) error

	Get(ctx context.Context, feature, value string) (*OutcomeStat, error)
	ListByFeature(ctx context.Context, feature string) ([]OutcomeStat, error)
}

// DocumentStore abstracts the object store holding raw uploads and extracted
// text, keyed by the Case SourceKey/TextKey fields.
type DocumentStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
