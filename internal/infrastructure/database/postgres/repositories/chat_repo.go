package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/juristack/juristack/internal/domain/judgment"
	"github.com/juristack/juristack/internal/infrastructure/monitoring/logging"
	appErrors "github.com/juristack/juristack/pkg/errors"
)

// ChatRepository is the PostgreSQL implementation of judgment.ChatRepository.
// The exchange log is append-only.
type ChatRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

var _ judgment.ChatRepository = (*ChatRepository)(nil)

func NewChatRepository(pool *pgxpool.Pool, log logging.Logger) *ChatRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ChatRepository{pool: pool, logger: log.Named("chat_repo")}
}

// Append logs one question/answer exchange.
func (r *ChatRepository) Append(ctx context.Context, ex *judgment.ChatExchange) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO chat_exchanges (id, case_id, query, response, intent, context_ids, latency_ms, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		ex.ID, ex.CaseID, ex.Query, ex.Response, ex.Intent, ex.ContextIDs, ex.LatencyMS, ex.CreatedAt,
	)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to append chat exchange")
	}
	return nil
}

// ListByCase returns the most recent exchanges of a case, newest first.
func (r *ChatRepository) ListByCase(ctx context.Context, caseID uuid.UUID, limit int) ([]judgment.ChatExchange, error) {
	if limit < 1 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, case_id, query, response, intent, context_ids, latency_ms, created_at
		FROM chat_exchanges WHERE case_id = $1
		ORDER BY created_at DESC LIMIT $2`, caseID, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to query chat exchanges")
	}
	defer rows.Close()

	var out []judgment.ChatExchange
	for rows.Next() {
		var ex judgment.ChatExchange
		if err := rows.Scan(&ex.ID, &ex.CaseID, &ex.Query, &ex.Response, &ex.Intent,
			&ex.ContextIDs, &ex.LatencyMS, &ex.CreatedAt); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to scan chat exchange")
		}
		out = append(out, ex)
	}
	return out, rows.Err()
}
