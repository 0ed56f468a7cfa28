package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/juristack/juristack/internal/domain/pipeline"
	"github.com/juristack/juristack/internal/infrastructure/monitoring/logging"
	"github.com/juristack/juristack/pkg/errors"
)

var (
	ErrLockNotHeld      = errors.New(errors.ErrCodeCacheError, "lock not held by this owner")
	ErrLockExtendFailed = errors.New(errors.ErrCodeCacheError, "failed to extend lock")
)

// Release only deletes the key while this owner's token is still in it, so
// an expired lock taken over by another worker is never released from here.
var unlockScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	else
		return 0
	end
`)

var extendScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("PEXPIRE", KEYS[1], ARGV[2])
	else
		return 0
	end
`)

// CaseLockManager hands out per-case locks backed by Redis SET NX.  One
// worker holds a case at a time; the TTL bounds how long a crashed worker
// can strand it.
type CaseLockManager struct {
	client   *Client
	logger   logging.Logger
	ttl      time.Duration
	watchdog bool
}

type LockOption func(*CaseLockManager)

// WithLockTTL sets how long a lock survives without renewal.
func WithLockTTL(ttl time.Duration) LockOption {
	return func(m *CaseLockManager) { m.ttl = ttl }
}

// WithWatchdog renews held locks in the background so stages longer than
// the TTL keep their case.
func WithWatchdog(enabled bool) LockOption {
	return func(m *CaseLockManager) { m.watchdog = enabled }
}

// NewCaseLockManager builds the lock manager.  The default TTL covers a
// generous single-stage run.
func NewCaseLockManager(client *Client, log logging.Logger, opts ...LockOption) *CaseLockManager {
	m := &CaseLockManager{
		client: client,
		logger: log.Named("caselock"),
		ttl:    2 * time.Minute,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

var _ pipeline.CaseLocker = (*CaseLockManager)(nil)

// AcquireCaseLock takes the lock for a case or fails immediately with
// ErrCodeCaseAlreadyProcessing.  The returned release function is safe to
// call once; releasing a lock that expired and changed hands is a no-op
// error, never a delete.
func (m *CaseLockManager) AcquireCaseLock(ctx context.Context, caseNumber string) (func(context.Context) error, error) {
	key := m.lockKey(caseNumber)
	token := uuid.New().String()

	ok, err := m.client.SetNX(ctx, key, token, m.ttl).Result()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCacheError, "failed to set case lock")
	}
	if !ok {
		return nil, errors.Newf(errors.ErrCodeCaseAlreadyProcessing,
			"case %s is locked by another worker", caseNumber)
	}

	var stopWatchdog context.CancelFunc
	var watchdogDone chan struct{}
	if m.watchdog {
		var wctx context.Context
		wctx, stopWatchdog = context.WithCancel(context.Background())
		watchdogDone = make(chan struct{})
		go m.runWatchdog(wctx, key, token, watchdogDone)
	}

	release := func(ctx context.Context) error {
		if stopWatchdog != nil {
			stopWatchdog()
			<-watchdogDone
		}
		res, err := unlockScript.Run(ctx, m.client.GetUnderlyingClient(), []string{key}, token).Result()
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeCacheError, "failed to release case lock")
		}
		if res.(int64) == 0 {
			return ErrLockNotHeld
		}
		return nil
	}
	return release, nil
}

// Extend renews a held lock.  Exposed for admin jobs that hold a case
// outside the worker claim path.
func (m *CaseLockManager) Extend(ctx context.Context, caseNumber, token string, ttl time.Duration) (bool, error) {
	res, err := extendScript.Run(ctx, m.client.GetUnderlyingClient(),
		[]string{m.lockKey(caseNumber)}, token, ttl.Milliseconds()).Result()
	if err != nil {
		return false, err
	}
	return res.(int64) == 1, nil
}

// IsLocked reports whether any worker currently holds the case.
func (m *CaseLockManager) IsLocked(ctx context.Context, caseNumber string) (bool, error) {
	n, err := m.client.Exists(ctx, m.lockKey(caseNumber)).Result()
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeCacheError, "failed to check case lock")
	}
	return n > 0, nil
}

func (m *CaseLockManager) lockKey(caseNumber string) string {
	return m.client.KeyPrefix() + "lock:case:" + caseNumber
}

func (m *CaseLockManager) runWatchdog(ctx context.Context, key, token string, done chan struct{}) {
	defer close(done)
	interval := m.ttl / 3
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			res, err := extendScript.Run(ctx, m.client.GetUnderlyingClient(),
				[]string{key}, token, m.ttl.Milliseconds()).Result()
			if err != nil {
				if ctx.Err() == nil {
					m.logger.Error("Watchdog failed to extend case lock", logging.Err(err))
				}
				return
			}
			if res.(int64) == 0 {
				m.logger.Warn("Watchdog lost case lock", logging.String("key", key))
				return
			}
		}
	}
}
