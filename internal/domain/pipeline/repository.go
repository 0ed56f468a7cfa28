package pipeline

import (
	"context"
	"time"

	"github.com/juristack/juristack/pkg/errors"
)

// QueueRepository defines the persistence contract for queue entries.
//
// Implementations must guarantee:
//   - Create fails with ErrCodeDuplicateCase when an entry already exists for
//     the case (any stage, including terminal).
//   - ClaimNext atomically flips the oldest claimable PENDING entry to RUNNING
//     and returns it, so two workers can never claim the same entry.  When no
//     entry is claimable it returns ErrCodeQueueEntryNotFound.
type QueueRepository interface {
	Create(ctx context.Context, e *QueueEntry) error
	GetByCaseNumber(ctx context.Context, caseNumber string) (*QueueEntry, error)
	ClaimNext(ctx context.Context, now time.Time) (*QueueEntry, error)
	Update(ctx context.Context, e *QueueEntry) error

	// CountByStage returns entry counts keyed by stage for monitoring.
	CountByStage(ctx context.Context) (map[Stage]int64, error)
}

// StageHandler executes the work of a single pipeline stage for one case.
// Handlers must be idempotent: re-running a stage overwrites the previous
// artifacts rather than duplicating them.
type StageHandler interface {
	Stage() Stage
	Run(ctx context.Context, entry *QueueEntry) error
}

// HandlerRegistry maps stages to their handlers.
type HandlerRegistry struct {
	handlers map[Stage]StageHandler
}

// NewHandlerRegistry builds a registry from the given handlers.
func NewHandlerRegistry(handlers ...StageHandler) *HandlerRegistry {
	r := &HandlerRegistry{handlers: make(map[Stage]StageHandler, len(handlers))}
	for _, h := range handlers {
		r.handlers[h.Stage()] = h
	}
	return r
}

// Register adds or replaces the handler for its stage.
func (r *HandlerRegistry) Register(h StageHandler) {
	r.handlers[h.Stage()] = h
}

// Get returns the handler for a stage.
func (r *HandlerRegistry) Get(stage Stage) (StageHandler, error) {
	h, ok := r.handlers[stage]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeStageHandlerMissing, "no handler registered for stage %s", stage)
	}
	return h, nil
}

// CaseLocker provides per-case mutual exclusion across workers.  Acquire
// returns a release function on success and ErrCodeCaseAlreadyProcessing when
// another worker holds the case.
type CaseLocker interface {
	AcquireCaseLock(ctx context.Context, caseNumber string) (release func(context.Context) error, err error)
}

// StageEvent is the audit/wake-up record published after every transition.
// The queue row in PostgreSQL remains the sole authority on progress; events
// are advisory.
type StageEvent struct {
	CaseID     string    `json:"case_id"`
	CaseNumber string    `json:"case_number"`
	Stage      Stage     `json:"stage"`
	Status     Status    `json:"status"`
	Attempts   int       `json:"attempts"`
	Error      string    `json:"error,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher publishes stage events to the message bus.
type EventPublisher interface {
	PublishStageEvent(ctx context.Context, ev StageEvent) error
}

// StageObserver records stage execution metrics.
type StageObserver interface {
	ObserveStage(stage Stage, outcome string, duration time.Duration)
}
