package repositories

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/juristack/juristack/internal/domain/judgment"
	"github.com/juristack/juristack/internal/infrastructure/monitoring/logging"
	appErrors "github.com/juristack/juristack/pkg/errors"
)

// ArtifactRepository is the PostgreSQL implementation of
// judgment.ArtifactRepository.  Paragraphs, facts, and similarity edges are
// replaced wholesale inside one transaction; summaries, translations, and
// keywords upsert on their natural key; predictions are append-only.
type ArtifactRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

var _ judgment.ArtifactRepository = (*ArtifactRepository)(nil)

func NewArtifactRepository(pool *pgxpool.Pool, log logging.Logger) *ArtifactRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ArtifactRepository{pool: pool, logger: log.Named("artifact_repo")}
}

// ReplaceParagraphs overwrites the paragraph set of a case.
func (r *ArtifactRepository) ReplaceParagraphs(ctx context.Context, caseID uuid.UUID, paragraphs []judgment.Paragraph) error {
	return r.inTx(ctx, "replace paragraphs", func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM paragraphs WHERE case_id = $1`, caseID); err != nil {
			return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to delete paragraphs")
		}
		for _, p := range paragraphs {
			_, err := tx.Exec(ctx, `
				INSERT INTO paragraphs (id, case_id, ordinal, text)
				VALUES ($1,$2,$3,$4)`,
				p.ID, caseID, p.Ordinal, p.Text)
			if err != nil {
				return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to insert paragraph")
			}
		}
		return nil
	})
}

// GetParagraphs returns the paragraphs of a case in document order.
func (r *ArtifactRepository) GetParagraphs(ctx context.Context, caseID uuid.UUID) ([]judgment.Paragraph, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, case_id, ordinal, text FROM paragraphs
		WHERE case_id = $1 ORDER BY ordinal ASC`, caseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to query paragraphs")
	}
	defer rows.Close()

	var out []judgment.Paragraph
	for rows.Next() {
		var p judgment.Paragraph
		if err := rows.Scan(&p.ID, &p.CaseID, &p.Ordinal, &p.Text); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to scan paragraph")
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ReplaceFacts overwrites the extracted facts of a case.
func (r *ArtifactRepository) ReplaceFacts(ctx context.Context, caseID uuid.UUID, facts []judgment.Fact) error {
	return r.inTx(ctx, "replace facts", func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM facts WHERE case_id = $1`, caseID); err != nil {
			return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to delete facts")
		}
		for _, f := range facts {
			_, err := tx.Exec(ctx, `
				INSERT INTO facts (id, case_id, ordinal, text, score)
				VALUES ($1,$2,$3,$4,$5)`,
				f.ID, caseID, f.Ordinal, f.Text, f.Score)
			if err != nil {
				return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to insert fact")
			}
		}
		return nil
	})
}

// GetFacts returns the facts of a case ordered by salience.
func (r *ArtifactRepository) GetFacts(ctx context.Context, caseID uuid.UUID) ([]judgment.Fact, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, case_id, ordinal, text, score FROM facts
		WHERE case_id = $1 ORDER BY ordinal ASC`, caseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to query facts")
	}
	defer rows.Close()

	var out []judgment.Fact
	for rows.Next() {
		var f judgment.Fact
		if err := rows.Scan(&f.ID, &f.CaseID, &f.Ordinal, &f.Text, &f.Score); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to scan fact")
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// SaveSummary upserts the single summary artifact of a case.
func (r *ArtifactRepository) SaveSummary(ctx context.Context, s *judgment.Summary) error {
	keyPointsJSON, err := json.Marshal(s.KeyPoints)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeSerialization, "failed to marshal key points")
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO summaries (id, case_id, short, detailed, basic, key_points, model, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (case_id) DO UPDATE SET
			short = EXCLUDED.short,
			detailed = EXCLUDED.detailed,
			basic = EXCLUDED.basic,
			key_points = EXCLUDED.key_points,
			model = EXCLUDED.model,
			created_at = EXCLUDED.created_at`,
		s.ID, s.CaseID, s.Short, s.Detailed, s.Basic, keyPointsJSON, s.Model, s.CreatedAt,
	)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to save summary")
	}
	return nil
}

// GetSummary loads the summary of a case.
func (r *ArtifactRepository) GetSummary(ctx context.Context, caseID uuid.UUID) (*judgment.Summary, error) {
	var (
		s             judgment.Summary
		keyPointsJSON []byte
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id, case_id, short, detailed, basic, key_points, model, created_at
		FROM summaries WHERE case_id = $1`, caseID).
		Scan(&s.ID, &s.CaseID, &s.Short, &s.Detailed, &s.Basic, &keyPointsJSON, &s.Model, &s.CreatedAt)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, appErrors.New(appErrors.ErrCodeNotFound, "summary not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to load summary")
	}
	if len(keyPointsJSON) > 0 {
		if err := json.Unmarshal(keyPointsJSON, &s.KeyPoints); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCodeSerialization, "failed to unmarshal key points")
		}
	}
	return &s, nil
}

// SaveTranslation upserts a translation keyed by (case, language, mode).
func (r *ArtifactRepository) SaveTranslation(ctx context.Context, tr *judgment.Translation) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO translations (id, case_id, language, mode, text, model_used, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (case_id, language, mode) DO UPDATE SET
			text = EXCLUDED.text,
			model_used = EXCLUDED.model_used,
			created_at = EXCLUDED.created_at`,
		tr.ID, tr.CaseID, tr.Language, string(tr.Mode), tr.Text, tr.ModelUsed, tr.CreatedAt,
	)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to save translation")
	}
	return nil
}

// GetTranslation loads one stored translation.
func (r *ArtifactRepository) GetTranslation(ctx context.Context, caseID uuid.UUID, language string, mode judgment.TranslationMode) (*judgment.Translation, error) {
	var (
		tr      judgment.Translation
		modeStr string
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id, case_id, language, mode, text, model_used, created_at
		FROM translations WHERE case_id = $1 AND language = $2 AND mode = $3`,
		caseID, language, string(mode)).
		Scan(&tr.ID, &tr.CaseID, &tr.Language, &modeStr, &tr.Text, &tr.ModelUsed, &tr.CreatedAt)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, appErrors.New(appErrors.ErrCodeNotFound, "translation not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to load translation")
	}
	tr.Mode = judgment.TranslationMode(modeStr)
	return &tr, nil
}

// SaveKeywords upserts the keyword set of a case.
func (r *ArtifactRepository) SaveKeywords(ctx context.Context, kw *judgment.Keywords) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO keywords (case_id, keywords)
		VALUES ($1,$2)
		ON CONFLICT (case_id) DO UPDATE SET keywords = EXCLUDED.keywords`,
		kw.CaseID, kw.Keywords,
	)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to save keywords")
	}
	return nil
}

// GetKeywords loads the keyword set of a case.
func (r *ArtifactRepository) GetKeywords(ctx context.Context, caseID uuid.UUID) (*judgment.Keywords, error) {
	kw := judgment.Keywords{CaseID: caseID}
	err := r.pool.QueryRow(ctx,
		`SELECT keywords FROM keywords WHERE case_id = $1`, caseID).
		Scan(&kw.Keywords)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, appErrors.New(appErrors.ErrCodeNotFound, "keywords not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to load keywords")
	}
	return &kw, nil
}

// ReplaceSimilarityEdges overwrites the ranked similar-case list of a case.
func (r *ArtifactRepository) ReplaceSimilarityEdges(ctx context.Context, caseID uuid.UUID, edges []judgment.SimilarityEdge) error {
	return r.inTx(ctx, "replace similarity edges", func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM similarity_edges WHERE case_id = $1`, caseID); err != nil {
			return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to delete similarity edges")
		}
		for _, e := range edges {
			_, err := tx.Exec(ctx, `
				INSERT INTO similarity_edges (case_id, similar_case_id, rank, score, keyword_score, cosine_score, computed_at)
				VALUES ($1,$2,$3,$4,$5,$6,$7)`,
				caseID, e.SimilarCaseID, e.Rank, e.Score, e.KeywordScore, e.CosineScore, e.ComputedAt)
			if err != nil {
				return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to insert similarity edge")
			}
		}
		return nil
	})
}

// GetSimilarityEdges returns the stored edges of a case, best rank first.
func (r *ArtifactRepository) GetSimilarityEdges(ctx context.Context, caseID uuid.UUID) ([]judgment.SimilarityEdge, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT case_id, similar_case_id, rank, score, keyword_score, cosine_score, computed_at
		FROM similarity_edges WHERE case_id = $1 ORDER BY rank ASC`, caseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to query similarity edges")
	}
	defer rows.Close()

	var out []judgment.SimilarityEdge
	for rows.Next() {
		var e judgment.SimilarityEdge
		if err := rows.Scan(&e.CaseID, &e.SimilarCaseID, &e.Rank, &e.Score,
			&e.KeywordScore, &e.CosineScore, &e.ComputedAt); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to scan similarity edge")
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// AppendPrediction stores one prediction.  Predictions are never updated;
// readers take the latest row per case.
func (r *ArtifactRepository) AppendPrediction(ctx context.Context, p *judgment.Prediction) error {
	factorsJSON, err := json.Marshal(p.Factors)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeSerialization, "failed to marshal prediction factors")
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO predictions (id, case_id, outcome, probability, confidence, factors, sample_size, insufficient_data, source, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		p.ID, p.CaseID, p.Outcome, p.Probability, p.Confidence, factorsJSON,
		p.SampleSize, p.InsufficientData, string(p.Source), p.CreatedAt,
	)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to insert prediction")
	}
	return nil
}

// GetLatestPrediction loads the most recent prediction of a case.
func (r *ArtifactRepository) GetLatestPrediction(ctx context.Context, caseID uuid.UUID) (*judgment.Prediction, error) {
	var (
		p           judgment.Prediction
		factorsJSON []byte
		source      string
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id, case_id, outcome, probability, confidence, factors, sample_size, insufficient_data, source, created_at
		FROM predictions WHERE case_id = $1
		ORDER BY created_at DESC LIMIT 1`, caseID).
		Scan(&p.ID, &p.CaseID, &p.Outcome, &p.Probability, &p.Confidence, &factorsJSON,
			&p.SampleSize, &p.InsufficientData, &source, &p.CreatedAt)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, appErrors.New(appErrors.ErrCodeNotFound, "prediction not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to load prediction")
	}
	p.Source = judgment.PredictionSource(source)
	if len(factorsJSON) > 0 {
		if err := json.Unmarshal(factorsJSON, &p.Factors); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCodeSerialization, "failed to unmarshal prediction factors")
		}
	}
	return &p, nil
}

// inTx runs fn inside a transaction, rolling back on any error.
func (r *ArtifactRepository) inTx(ctx context.Context, op string, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to begin transaction")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(tx); err != nil {
		r.logger.Error("transaction failed", logging.String("op", op), logging.Err(err))
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to commit transaction")
	}
	return nil
}
