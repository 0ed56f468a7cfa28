package repositories

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/juristack/juristack/internal/domain/judgment"
	"github.com/juristack/juristack/internal/infrastructure/monitoring/logging"
	appErrors "github.com/juristack/juristack/pkg/errors"
)

// StatsRepository is the PostgreSQL implementation of
// judgment.StatsRepository.  One row per (feature, value) bucket; version
// increments on every write.
type StatsRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

var _ judgment.StatsRepository = (*StatsRepository)(nil)

func NewStatsRepository(pool *pgxpool.Pool, log logging.Logger) *StatsRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &StatsRepository{pool: pool, logger: log.Named("stats_repo")}
}

// Upsert adds wins/total deltas to the bucket, creating it when absent.
func (r *StatsRepository) Upsert(ctx context.Context, feature, value string, winDelta, totalDelta int) error {
	if feature == "" || value == "" {
		return appErrors.New(appErrors.ErrCodeValidation, "feature and value must not be empty")
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO outcome_stats (feature, value, wins, total, version, updated_at)
		VALUES ($1,$2,$3,$4,1,$5)
		ON CONFLICT (feature, value) DO UPDATE SET
			wins = outcome_stats.wins + EXCLUDED.wins,
			total = outcome_stats.total + EXCLUDED.total,
			version = outcome_stats.version + 1,
			updated_at = EXCLUDED.updated_at`,
		feature, value, winDelta, totalDelta, time.Now().UTC(),
	)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to upsert outcome stat")
	}
	return nil
}

// Get loads one bucket.
func (r *StatsRepository) Get(ctx context.Context, feature, value string) (*judgment.OutcomeStat, error) {
	var s judgment.OutcomeStat
	err := r.pool.QueryRow(ctx, `
		SELECT feature, value, wins, total, version, updated_at
		FROM outcome_stats WHERE feature = $1 AND value = $2`, feature, value).
		Scan(&s.Feature, &s.Value, &s.Wins, &s.Total, &s.Version, &s.UpdatedAt)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, appErrors.New(appErrors.ErrCodeNotFound, "outcome stat not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to load outcome stat")
	}
	return &s, nil
}

// ListByFeature returns every bucket of one feature.
func (r *StatsRepository) ListByFeature(ctx context.Context, feature string) ([]judgment.OutcomeStat, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT feature, value, wins, total, version, updated_at
		FROM outcome_stats WHERE feature = $1
		ORDER BY value ASC`, feature)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to list outcome stats")
	}
	defer rows.Close()

	var out []judgment.OutcomeStat
	for rows.Next() {
		var s judgment.OutcomeStat
		if err := rows.Scan(&s.Feature, &s.Value, &s.Wins, &s.Total, &s.Version, &s.UpdatedAt); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to scan outcome stat")
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
