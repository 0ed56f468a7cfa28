package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juristack/juristack/internal/infrastructure/monitoring/logging"
	"github.com/juristack/juristack/pkg/errors"
)

func TestCaseLock_AcquireAndRelease(t *testing.T) {
	client, mr := newTestClient(t)
	locks := NewCaseLockManager(client, logging.NewNopLogger(), WithLockTTL(time.Minute))
	ctx := context.Background()

	release, err := locks.AcquireCaseLock(ctx, "CRL.A. 1482/2012")
	require.NoError(t, err)
	assert.True(t, mr.Exists("juristack:lock:case:CRL.A. 1482/2012"))

	held, err := locks.IsLocked(ctx, "CRL.A. 1482/2012")
	require.NoError(t, err)
	assert.True(t, held)

	require.NoError(t, release(ctx))
	assert.False(t, mr.Exists("juristack:lock:case:CRL.A. 1482/2012"))
}

func TestCaseLock_SecondAcquireFails(t *testing.T) {
	client, _ := newTestClient(t)
	locks := NewCaseLockManager(client, logging.NewNopLogger())
	ctx := context.Background()

	release, err := locks.AcquireCaseLock(ctx, "W.P. 2041/2019")
	require.NoError(t, err)
	defer release(ctx)

	_, err = locks.AcquireCaseLock(ctx, "W.P. 2041/2019")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeCaseAlreadyProcessing))

	// A different case is unaffected.
	release2, err := locks.AcquireCaseLock(ctx, "CRL.A. 77/2020")
	require.NoError(t, err)
	require.NoError(t, release2(ctx))
}

func TestCaseLock_ReleaseAfterTakeoverIsRejected(t *testing.T) {
	client, mr := newTestClient(t)
	locks := NewCaseLockManager(client, logging.NewNopLogger(), WithLockTTL(time.Minute))
	ctx := context.Background()

	release, err := locks.AcquireCaseLock(ctx, "O.S. 512/2015")
	require.NoError(t, err)

	// The TTL fires and another worker takes the case.
	mr.FastForward(2 * time.Minute)
	release2, err := locks.AcquireCaseLock(ctx, "O.S. 512/2015")
	require.NoError(t, err)
	defer release2(ctx)

	// The first worker's stale release must not free the new owner's lock.
	assert.ErrorIs(t, release(ctx), ErrLockNotHeld)
	assert.True(t, mr.Exists("juristack:lock:case:O.S. 512/2015"))
}

func TestCaseLock_ReacquireAfterRelease(t *testing.T) {
	client, _ := newTestClient(t)
	locks := NewCaseLockManager(client, logging.NewNopLogger())
	ctx := context.Background()

	release, err := locks.AcquireCaseLock(ctx, "CRL.A. 1482/2012")
	require.NoError(t, err)
	require.NoError(t, release(ctx))

	release2, err := locks.AcquireCaseLock(ctx, "CRL.A. 1482/2012")
	require.NoError(t, err)
	require.NoError(t, release2(ctx))
}

func TestCaseLock_LockExpires(t *testing.T) {
	client, mr := newTestClient(t)
	locks := NewCaseLockManager(client, logging.NewNopLogger(), WithLockTTL(time.Second))
	ctx := context.Background()

	_, err := locks.AcquireCaseLock(ctx, "CRL.A. 1482/2012")
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)

	held, err := locks.IsLocked(ctx, "CRL.A. 1482/2012")
	require.NoError(t, err)
	assert.False(t, held)
}
