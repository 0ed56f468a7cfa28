package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/juristack/juristack/internal/infrastructure/monitoring/logging"
	"github.com/juristack/juristack/pkg/errors"
	jtypes "github.com/juristack/juristack/pkg/types/judgment"
)

// Tick outcomes reported by TickResult and the stage observer.
const (
	OutcomeIdle      = "idle"
	OutcomeAdvanced  = "advanced"
	OutcomeCompleted = "completed"
	OutcomeRetried   = "retried"
	OutcomeFailed    = "failed"
	OutcomeSkipped   = "skipped"
)

// TickResult describes what a single Tick did.
type TickResult struct {
	Outcome string
	Entry   *QueueEntry
	RunErr  error // the handler error, if the stage failed; nil otherwise
}

// Orchestrator drives the staged pipeline: enqueueing new cases, claiming and
// executing the next unit of work, and answering status queries.
type Orchestrator interface {
	// Enqueue registers a case at EXTRACTION/PENDING.  A case that already
	// has a queue entry, in any state, is rejected with ErrCodeDuplicateCase.
	Enqueue(ctx context.Context, caseID uuid.UUID, caseNumber string) (*QueueEntry, error)

	// Tick claims the oldest claimable entry, runs its stage handler, and
	// advances or fails the entry.  It returns OutcomeIdle when the queue has
	// nothing claimable.  Tick never returns the handler's error as its own;
	// stage failures are recorded on the entry and reported via TickResult.
	Tick(ctx context.Context) (*TickResult, error)

	// Status returns the queue entry of a case.
	Status(ctx context.Context, caseNumber string) (*QueueEntry, error)

	// Reset is the only allowed backward transition: it moves a non-running
	// entry back to an earlier (or the current) work stage with PENDING
	// status, clearing attempts and errors.
	Reset(ctx context.Context, caseNumber string, to Stage) (*QueueEntry, error)
}

// Deps holds the orchestrator's collaborators and policy knobs.
type Deps struct {
	Queue    QueueRepository
	Handlers *HandlerRegistry
	Locks    CaseLocker
	Events   EventPublisher
	Metrics  StageObserver
	Logger   logging.Logger

	MaxAttempts  int
	RetryBackoff time.Duration
	StageTimeout time.Duration
}

type orchestrator struct {
	queue    QueueRepository
	handlers *HandlerRegistry
	locks    CaseLocker
	events   EventPublisher
	metrics  StageObserver
	log      logging.Logger

	maxAttempts  int
	retryBackoff time.Duration
	stageTimeout time.Duration
}

// NewOrchestrator builds the pipeline orchestrator.  Events and Metrics may
// be nil; Logger defaults to a no-op logger.
func NewOrchestrator(deps Deps) Orchestrator {
	log := deps.Logger
	if log == nil {
		log = logging.NewNopLogger()
	}
	maxAttempts := deps.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 3
	}
	backoff := deps.RetryBackoff
	if backoff <= 0 {
		backoff = 30 * time.Second
	}
	return &orchestrator{
		queue:        deps.Queue,
		handlers:     deps.Handlers,
		locks:        deps.Locks,
		events:       deps.Events,
		metrics:      deps.Metrics,
		log:          log.Named("pipeline"),
		maxAttempts:  maxAttempts,
		retryBackoff: backoff,
		stageTimeout: deps.StageTimeout,
	}
}

func (o *orchestrator) Enqueue(ctx context.Context, caseID uuid.UUID, caseNumber string) (*QueueEntry, error) {
	entry := NewQueueEntry(caseID, caseNumber)
	if err := o.queue.Create(ctx, entry); err != nil {
		return nil, err
	}

	o.log.Info("case enqueued",
		logging.String("case_number", caseNumber),
		logging.String("stage", string(entry.Stage)))
	o.publish(ctx, entry, "")
	return entry, nil
}

func (o *orchestrator) Tick(ctx context.Context) (*TickResult, error) {
	entry, err := o.queue.ClaimNext(ctx, time.Now().UTC())
	if err != nil {
		if errors.IsNotFound(err) {
			return &TickResult{Outcome: OutcomeIdle}, nil
		}
		return nil, errors.Wrap(err, errors.CodeDBQueryError, "claim next queue entry")
	}

	release, err := o.locks.AcquireCaseLock(ctx, entry.CaseNumber)
	if err != nil {
		// Another worker holds the case (a Reset or an admin job may run
		// outside the claim path).  Put the entry back and move on.
		if errors.IsCode(err, errors.ErrCodeCaseAlreadyProcessing) {
			o.requeue(ctx, entry)
			return &TickResult{Outcome: OutcomeSkipped, Entry: entry}, nil
		}
		o.requeue(ctx, entry)
		return nil, errors.Wrap(err, errors.CodeCacheError, "acquire case lock")
	}
	defer func() {
		if rerr := release(ctx); rerr != nil {
			o.log.Warn("case lock release failed",
				logging.String("case_number", entry.CaseNumber), logging.Err(rerr))
		}
	}()

	handler, err := o.handlers.Get(entry.Stage)
	if err != nil {
		// A stage without a handler is a deployment error; the entry would
		// spin forever, so fail it terminally and surface the error.
		o.failTerminal(ctx, entry, err)
		return &TickResult{Outcome: OutcomeFailed, Entry: entry, RunErr: err}, nil
	}

	runCtx := ctx
	if o.stageTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, o.stageTimeout)
		defer cancel()
	}

	stage := entry.Stage
	start := time.Now()
	runErr := handler.Run(runCtx, entry)
	elapsed := time.Since(start)

	if runErr != nil {
		outcome := o.handleFailure(ctx, entry, runErr)
		o.observe(stage, outcome, elapsed)
		return &TickResult{Outcome: outcome, Entry: entry, RunErr: runErr}, nil
	}

	outcome, err := o.advance(ctx, entry)
	if err != nil {
		return nil, err
	}
	o.observe(stage, outcome, elapsed)
	return &TickResult{Outcome: outcome, Entry: entry}, nil
}

func (o *orchestrator) Status(ctx context.Context, caseNumber string) (*QueueEntry, error) {
	return o.queue.GetByCaseNumber(ctx, caseNumber)
}

func (o *orchestrator) Reset(ctx context.Context, caseNumber string, to Stage) (*QueueEntry, error) {
	if _, ok := stageIndex[to]; !ok || to == jtypes.StageCompleted {
		return nil, errors.Newf(errors.ErrCodeInvalidTransition, "cannot reset to stage %s", to)
	}

	release, err := o.locks.AcquireCaseLock(ctx, caseNumber)
	if err != nil {
		return nil, err
	}
	defer func() { _ = release(ctx) }()

	entry, err := o.queue.GetByCaseNumber(ctx, caseNumber)
	if err != nil {
		return nil, err
	}
	if entry.Status == jtypes.StatusRunning {
		return nil, errors.New(errors.ErrCodeCaseAlreadyProcessing, "cannot reset a running case")
	}
	if !entry.IsTerminal() && StageBefore(entry.Stage, to) {
		return nil, errors.Newf(errors.ErrCodeInvalidTransition,
			"reset target %s is ahead of current stage %s", to, entry.Stage)
	}

	entry.Stage = to
	entry.Status = jtypes.StatusPending
	entry.Attempts = 0
	entry.LastError = ""
	entry.NextAttemptAt = time.Time{}
	entry.UpdatedAt = time.Now().UTC()
	if err := o.queue.Update(ctx, entry); err != nil {
		return nil, err
	}

	o.log.Info("case reset",
		logging.String("case_number", caseNumber),
		logging.String("stage", string(to)))
	o.publish(ctx, entry, "")
	return entry, nil
}

// advance moves a successfully processed entry to its next stage.
func (o *orchestrator) advance(ctx context.Context, entry *QueueEntry) (string, error) {
	next, err := NextStage(entry.Stage)
	if err != nil {
		return "", err
	}

	finished := entry.Stage
	entry.Attempts = 0
	entry.LastError = ""
	entry.NextAttemptAt = time.Time{}
	entry.UpdatedAt = time.Now().UTC()

	outcome := OutcomeAdvanced
	if next == jtypes.StageCompleted {
		entry.Stage = jtypes.StageCompleted
		entry.Status = jtypes.StatusDone
		outcome = OutcomeCompleted
	} else {
		entry.Stage = next
		entry.Status = jtypes.StatusPending
	}

	if err := o.queue.Update(ctx, entry); err != nil {
		return "", errors.Wrap(err, errors.CodeDBQueryError, "persist stage advance")
	}

	o.log.Info("stage finished",
		logging.String("case_number", entry.CaseNumber),
		logging.String("stage", string(finished)),
		logging.String("next", string(entry.Stage)))
	o.publish(ctx, entry, "")
	return outcome, nil
}

// handleFailure classifies a stage failure and either requeues the entry with
// backoff or fails it terminally.
func (o *orchestrator) handleFailure(ctx context.Context, entry *QueueEntry, runErr error) string {
	entry.Attempts++
	entry.LastError = runErr.Error()

	if !errors.IsRetryable(runErr) || entry.Attempts >= o.maxAttempts {
		o.failTerminal(ctx, entry, runErr)
		return OutcomeFailed
	}

	entry.Status = jtypes.StatusPending
	entry.NextAttemptAt = time.Now().UTC().Add(o.retryBackoff * time.Duration(entry.Attempts))
	entry.UpdatedAt = time.Now().UTC()
	if err := o.queue.Update(ctx, entry); err != nil {
		o.log.Error("persist retry state failed",
			logging.String("case_number", entry.CaseNumber), logging.Err(err))
	}

	o.log.Warn("stage failed, will retry",
		logging.String("case_number", entry.CaseNumber),
		logging.String("stage", string(entry.Stage)),
		logging.Int("attempts", entry.Attempts),
		logging.Err(runErr))
	o.publish(ctx, entry, runErr.Error())
	return OutcomeRetried
}

func (o *orchestrator) failTerminal(ctx context.Context, entry *QueueEntry, cause error) {
	entry.Stage = jtypes.StageFailed
	entry.Status = jtypes.StatusFailed
	if cause != nil {
		entry.LastError = cause.Error()
	}
	entry.UpdatedAt = time.Now().UTC()
	if err := o.queue.Update(ctx, entry); err != nil {
		o.log.Error("persist terminal failure failed",
			logging.String("case_number", entry.CaseNumber), logging.Err(err))
	}

	o.log.Error("case failed terminally",
		logging.String("case_number", entry.CaseNumber),
		logging.Int("attempts", entry.Attempts),
		logging.Err(cause))
	o.publish(ctx, entry, entry.LastError)
}

// requeue returns a claimed entry to PENDING without counting an attempt.
func (o *orchestrator) requeue(ctx context.Context, entry *QueueEntry) {
	entry.Status = jtypes.StatusPending
	entry.UpdatedAt = time.Now().UTC()
	if err := o.queue.Update(ctx, entry); err != nil {
		o.log.Error("requeue failed",
			logging.String("case_number", entry.CaseNumber), logging.Err(err))
	}
}

func (o *orchestrator) publish(ctx context.Context, entry *QueueEntry, errMsg string) {
	if o.events == nil {
		return
	}
	ev := StageEvent{
		CaseID:     entry.CaseID.String(),
		CaseNumber: entry.CaseNumber,
		Stage:      entry.Stage,
		Status:     entry.Status,
		Attempts:   entry.Attempts,
		Error:      errMsg,
		OccurredAt: time.Now().UTC(),
	}
	if err := o.events.PublishStageEvent(ctx, ev); err != nil {
		o.log.Warn("stage event publish failed",
			logging.String("case_number", entry.CaseNumber), logging.Err(err))
	}
}

func (o *orchestrator) observe(stage Stage, outcome string, d time.Duration) {
	if o.metrics != nil {
		o.metrics.ObserveStage(stage, outcome, d)
	}
}
