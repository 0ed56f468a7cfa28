package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/juristack/juristack/internal/domain/judgment"
	"github.com/juristack/juristack/internal/infrastructure/monitoring/logging"
	appErrors "github.com/juristack/juristack/pkg/errors"
)

// ChunkRepository is the PostgreSQL implementation of
// judgment.ChunkRepository.  Embeddings live in a pgvector column; cosine
// distance drives both retrieval paths.
type ChunkRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

var _ judgment.ChunkRepository = (*ChunkRepository)(nil)

func NewChunkRepository(pool *pgxpool.Pool, log logging.Logger) *ChunkRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ChunkRepository{pool: pool, logger: log.Named("chunk_repo")}
}

// ReplaceChunks overwrites the embedded chunks of a case in one transaction.
func (r *ChunkRepository) ReplaceChunks(ctx context.Context, caseID uuid.UUID, chunks []judgment.Chunk) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to begin transaction")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM chunks WHERE case_id = $1`, caseID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to delete chunks")
	}
	for _, c := range chunks {
		_, err := tx.Exec(ctx, `
			INSERT INTO chunks (id, case_id, ordinal, text, embedding)
			VALUES ($1,$2,$3,$4,$5)`,
			c.ID, caseID, c.Ordinal, c.Text, pgvector.NewVector(c.Embedding))
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to insert chunk")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to commit transaction")
	}

	r.logger.Debug("chunks replaced",
		logging.String("case_id", caseID.String()),
		logging.Int("count", len(chunks)))
	return nil
}

// GetChunks returns the chunks of a case in chunk order, embeddings included.
func (r *ChunkRepository) GetChunks(ctx context.Context, caseID uuid.UUID) ([]judgment.Chunk, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, case_id, ordinal, text, embedding FROM chunks
		WHERE case_id = $1 ORDER BY ordinal ASC`, caseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to query chunks")
	}
	defer rows.Close()
	return scanChunks(rows)
}

// SearchWithin returns the chunks of one case ranked by cosine similarity to
// the query embedding, best first.  The <=> operator is cosine distance, so
// similarity is 1 - distance.
func (r *ChunkRepository) SearchWithin(ctx context.Context, caseID uuid.UUID, embedding []float32, limit int) ([]judgment.ScoredChunk, error) {
	if limit < 1 {
		return nil, appErrors.New(appErrors.ErrCodeValidation, "limit must be at least 1")
	}
	query := pgvector.NewVector(embedding)

	rows, err := r.pool.Query(ctx, `
		SELECT id, case_id, ordinal, text, embedding, 1 - (embedding <=> $2) AS score
		FROM chunks
		WHERE case_id = $1
		ORDER BY embedding <=> $2 ASC
		LIMIT $3`, caseID, query, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to search chunks")
	}
	defer rows.Close()

	var out []judgment.ScoredChunk
	for rows.Next() {
		var (
			sc  judgment.ScoredChunk
			vec pgvector.Vector
		)
		if err := rows.Scan(&sc.Chunk.ID, &sc.Chunk.CaseID, &sc.Chunk.Ordinal,
			&sc.Chunk.Text, &vec, &sc.Score); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to scan scored chunk")
		}
		sc.Chunk.Embedding = vec.Slice()
		out = append(out, sc)
	}
	return out, rows.Err()
}

// MaxCosineAcross returns, per candidate case, the maximum cosine similarity
// between any of its chunks and any chunk of the source case.  Candidates
// with no chunks are absent from the result.
func (r *ChunkRepository) MaxCosineAcross(ctx context.Context, sourceCaseID uuid.UUID, candidateIDs []uuid.UUID) (map[uuid.UUID]float64, error) {
	if len(candidateIDs) == 0 {
		return map[uuid.UUID]float64{}, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT cand.case_id, MAX(1 - (cand.embedding <=> src.embedding))
		FROM chunks cand
		JOIN chunks src ON src.case_id = $1
		WHERE cand.case_id = ANY($2)
		GROUP BY cand.case_id`, sourceCaseID, candidateIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to compute cross-case similarity")
	}
	defer rows.Close()

	result := make(map[uuid.UUID]float64, len(candidateIDs))
	for rows.Next() {
		var (
			id    uuid.UUID
			score float64
		)
		if err := rows.Scan(&id, &score); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to scan similarity score")
		}
		result[id] = score
	}
	return result, rows.Err()
}

func scanChunks(rows pgx.Rows) ([]judgment.Chunk, error) {
	var out []judgment.Chunk
	for rows.Next() {
		var (
			c   judgment.Chunk
			vec pgvector.Vector
		)
		if err := rows.Scan(&c.ID, &c.CaseID, &c.Ordinal, &c.Text, &vec); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to scan chunk")
		}
		c.Embedding = vec.Slice()
		out = append(out, c)
	}
	return out, rows.Err()
}
