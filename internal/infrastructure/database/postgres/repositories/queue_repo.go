package repositories

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/juristack/juristack/internal/domain/pipeline"
	"github.com/juristack/juristack/internal/infrastructure/monitoring/logging"
	appErrors "github.com/juristack/juristack/pkg/errors"
)

// QueueRepository is the PostgreSQL implementation of
// pipeline.QueueRepository.  The queue row is the sole authority on pipeline
// progress; claiming uses FOR UPDATE SKIP LOCKED so concurrent workers never
// pick up the same entry.
type QueueRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

var _ pipeline.QueueRepository = (*QueueRepository)(nil)

func NewQueueRepository(pool *pgxpool.Pool, log logging.Logger) *QueueRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &QueueRepository{pool: pool, logger: log.Named("queue_repo")}
}

const queueColumns = `id, case_id, case_number, stage, status, attempts, last_error, next_attempt_at, enqueued_at, updated_at`

// Create inserts the initial entry for a case.  Exactly one entry exists per
// case for its entire lifetime, so a second enqueue fails with
// ErrCodeDuplicateCase.
func (r *QueueRepository) Create(ctx context.Context, e *pipeline.QueueEntry) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO queue_entries (id, case_id, case_number, stage, status, attempts, last_error, next_attempt_at, enqueued_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		e.ID, e.CaseID, e.CaseNumber, string(e.Stage), string(e.Status), e.Attempts,
		nullableString(e.LastError), nullableTime(e.NextAttemptAt), e.EnqueuedAt, e.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return appErrors.Newf(appErrors.ErrCodeDuplicateCase, "queue entry for case %s already exists", e.CaseNumber)
		}
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to insert queue entry")
	}

	r.logger.Debug("queue entry created",
		logging.String("case_number", e.CaseNumber),
		logging.String("stage", string(e.Stage)))
	return nil
}

// GetByCaseNumber loads the entry for a case.
func (r *QueueRepository) GetByCaseNumber(ctx context.Context, caseNumber string) (*pipeline.QueueEntry, error) {
	return r.scanEntry(r.pool.QueryRow(ctx,
		`SELECT `+queueColumns+` FROM queue_entries WHERE case_number = $1`, caseNumber))
}

// ClaimNext atomically flips the oldest claimable PENDING entry to RUNNING
// and returns it.  Entries whose next_attempt_at lies in the future are
// skipped so retry backoff is honoured.  When nothing is claimable it returns
// ErrCodeQueueEntryNotFound.
func (r *QueueRepository) ClaimNext(ctx context.Context, now time.Time) (*pipeline.QueueEntry, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE queue_entries
		SET status = 'RUNNING', updated_at = $2
		WHERE id = (
			SELECT id FROM queue_entries
			WHERE status = 'PENDING'
			  AND stage NOT IN ('COMPLETED', 'FAILED')
			  AND (next_attempt_at IS NULL OR next_attempt_at <= $1)
			ORDER BY enqueued_at ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING `+queueColumns, now, now.UTC())

	e, err := r.scanEntry(row)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("queue entry claimed",
		logging.String("case_number", e.CaseNumber),
		logging.String("stage", string(e.Stage)),
		logging.Int("attempts", e.Attempts))
	return e, nil
}

// Update persists a state transition of an existing entry.
func (r *QueueRepository) Update(ctx context.Context, e *pipeline.QueueEntry) error {
	e.UpdatedAt = time.Now().UTC()
	tag, err := r.pool.Exec(ctx, `
		UPDATE queue_entries
		SET stage = $2, status = $3, attempts = $4, last_error = $5, next_attempt_at = $6, updated_at = $7
		WHERE id = $1`,
		e.ID, string(e.Stage), string(e.Status), e.Attempts,
		nullableString(e.LastError), nullableTime(e.NextAttemptAt), e.UpdatedAt,
	)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to update queue entry")
	}
	if tag.RowsAffected() == 0 {
		return appErrors.Newf(appErrors.ErrCodeQueueEntryNotFound, "queue entry %s not found", e.ID)
	}
	return nil
}

// CountByStage returns entry counts keyed by stage for monitoring.
func (r *QueueRepository) CountByStage(ctx context.Context) (map[pipeline.Stage]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT stage, COUNT(*) FROM queue_entries GROUP BY stage`)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to count queue entries")
	}
	defer rows.Close()

	counts := make(map[pipeline.Stage]int64)
	for rows.Next() {
		var (
			stage string
			n     int64
		)
		if err := rows.Scan(&stage, &n); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to scan stage count")
		}
		counts[pipeline.Stage(stage)] = n
	}
	return counts, rows.Err()
}

func (r *QueueRepository) scanEntry(row pgx.Row) (*pipeline.QueueEntry, error) {
	var (
		e             pipeline.QueueEntry
		stage, status string
		lastError     *string
		nextAttemptAt *time.Time
	)
	err := row.Scan(&e.ID, &e.CaseID, &e.CaseNumber, &stage, &status, &e.Attempts,
		&lastError, &nextAttemptAt, &e.EnqueuedAt, &e.UpdatedAt)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, appErrors.New(appErrors.ErrCodeQueueEntryNotFound, "queue entry not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to scan queue entry")
	}
	e.Stage = pipeline.Stage(stage)
	e.Status = pipeline.Status(status)
	if lastError != nil {
		e.LastError = *lastError
	}
	if nextAttemptAt != nil {
		e.NextAttemptAt = *nextAttemptAt
	}
	return &e, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
