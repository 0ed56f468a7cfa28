// Package repositories provides the PostgreSQL-backed implementations of the
// judgment and pipeline repository interfaces.  Every method accepts a
// context.Context and uses parameterised queries exclusively; replace-style
// writers run in a single transaction so reprocessing stays idempotent.
package repositories

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/juristack/juristack/internal/domain/judgment"
	"github.com/juristack/juristack/internal/infrastructure/monitoring/logging"
	appErrors "github.com/juristack/juristack/pkg/errors"
)

// pgUniqueViolation is the SQLSTATE for unique constraint violations.
const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return stderrors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// CaseRepository is the PostgreSQL implementation of judgment.CaseRepository.
type CaseRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

var _ judgment.CaseRepository = (*CaseRepository)(nil)

func NewCaseRepository(pool *pgxpool.Pool, log logging.Logger) *CaseRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &CaseRepository{pool: pool, logger: log.Named("case_repo")}
}

const caseColumns = `id, case_number, title, metadata, language, source_key, text_key, created_at, updated_at`

// Create inserts a new case.  A second upload under the same case number
// fails with ErrCodeDuplicateCase.
func (r *CaseRepository) Create(ctx context.Context, c *judgment.Case) error {
	metaJSON, err := json.Marshal(c.Metadata)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeSerialization, "failed to marshal case metadata")
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO cases (id, case_number, title, metadata, language, source_key, text_key, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		c.ID, c.CaseNumber, c.Title, metaJSON, c.Language, c.SourceKey, c.TextKey, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return appErrors.Newf(appErrors.ErrCodeDuplicateCase, "case %s already exists", c.CaseNumber)
		}
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to insert case")
	}

	r.logger.Debug("case created",
		logging.String("case_number", c.CaseNumber),
		logging.String("case_id", c.ID.String()))
	return nil
}

// GetByID loads a case by primary key.
func (r *CaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*judgment.Case, error) {
	return r.scanCase(r.pool.QueryRow(ctx,
		`SELECT `+caseColumns+` FROM cases WHERE id = $1`, id))
}

// GetByNumber loads a case by its external case number.
func (r *CaseRepository) GetByNumber(ctx context.Context, caseNumber string) (*judgment.Case, error) {
	return r.scanCase(r.pool.QueryRow(ctx,
		`SELECT `+caseColumns+` FROM cases WHERE case_number = $1`, caseNumber))
}

// Update persists mutations of an existing case.
func (r *CaseRepository) Update(ctx context.Context, c *judgment.Case) error {
	c.Touch()
	metaJSON, err := json.Marshal(c.Metadata)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeSerialization, "failed to marshal case metadata")
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE cases
		SET title = $2, metadata = $3, language = $4, source_key = $5, text_key = $6, updated_at = $7
		WHERE id = $1`,
		c.ID, c.Title, metaJSON, c.Language, c.SourceKey, c.TextKey, c.UpdatedAt,
	)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to update case")
	}
	if tag.RowsAffected() == 0 {
		return appErrors.Newf(appErrors.ErrCodeCaseNotFound, "case %s not found", c.ID)
	}
	return nil
}

// ListCompleted returns the ids of all cases whose pipeline reached COMPLETED,
// oldest first.  Feeds the corpus-wide similarity and statistics scans.
func (r *CaseRepository) ListCompleted(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id
		FROM cases c
		JOIN queue_entries q ON q.case_id = c.id
		WHERE q.stage = 'COMPLETED'
		ORDER BY c.created_at ASC`)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to list completed cases")
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to scan case id")
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *CaseRepository) scanCase(row pgx.Row) (*judgment.Case, error) {
	var (
		c        judgment.Case
		metaJSON []byte
	)
	err := row.Scan(&c.ID, &c.CaseNumber, &c.Title, &metaJSON, &c.Language,
		&c.SourceKey, &c.TextKey, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, appErrors.New(appErrors.ErrCodeCaseNotFound, "case not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to scan case")
	}
	if len(metaJSON) > 0 {
		if err := json.Unmarshal(metaJSON, &c.Metadata); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCodeSerialization, "failed to unmarshal case metadata")
		}
	}
	return &c, nil
}
