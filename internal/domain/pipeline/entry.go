// Package pipeline implements the staged-processing state machine that drives
// every uploaded judgment from EXTRACTION to COMPLETED.  The QueueEntry is the
// single durable coordination artifact: queue state lives in PostgreSQL and
// survives restarts, so the pipeline resumes from the persisted stage rather
// than restarting from scratch.
package pipeline

import (
	"time"

	"github.com/google/uuid"

	jtypes "github.com/juristack/juristack/pkg/types/judgment"
)

// Stage and StageStatus are shared with the wire layer; the domain reuses the
// pkg/types enums so handlers, repositories, and handlers agree on values.
type (
	Stage  = jtypes.Stage
	Status = jtypes.StageStatus
)

// QueueEntry is the per-case pipeline record.  Exactly one entry exists per
// case for its entire lifetime; its (Stage, Status) pair advances forward
// only, except through Reset.
type QueueEntry struct {
	ID         uuid.UUID `json:"id"`
	CaseID     uuid.UUID `json:"case_id"`
	CaseNumber string    `json:"case_number"`

	Stage    Stage  `json:"stage"`
	Status   Status `json:"status"`
	Attempts int    `json:"attempts"`

	// LastError is the message of the most recent failure, cleared when the
	// stage eventually succeeds.
	LastError string `json:"last_error,omitempty"`

	// NextAttemptAt delays re-claiming after a retryable failure.  Zero means
	// the entry is claimable immediately.
	NextAttemptAt time.Time `json:"next_attempt_at,omitempty"`

	EnqueuedAt time.Time `json:"enqueued_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewQueueEntry constructs the initial entry for a freshly uploaded case:
// EXTRACTION / PENDING with zero attempts.
func NewQueueEntry(caseID uuid.UUID, caseNumber string) *QueueEntry {
	now := time.Now().UTC()
	return &QueueEntry{
		ID:         uuid.New(),
		CaseID:     caseID,
		CaseNumber: caseNumber,
		Stage:      jtypes.StageExtraction,
		Status:     jtypes.StatusPending,
		EnqueuedAt: now,
		UpdatedAt:  now,
	}
}

// Claimable reports whether a worker may pick up this entry now.
func (e *QueueEntry) Claimable(now time.Time) bool {
	if e.Stage.IsTerminal() {
		return false
	}
	if e.Status != jtypes.StatusPending {
		return false
	}
	return e.NextAttemptAt.IsZero() || !now.Before(e.NextAttemptAt)
}

// IsTerminal reports whether the entry will never be processed again.
func (e *QueueEntry) IsTerminal() bool {
	return e.Stage.IsTerminal()
}
