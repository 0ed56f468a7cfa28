package repositories

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestNewRepositories(t *testing.T) {
	t.Parallel()

	t.Run("CaseRepository", func(t *testing.T) {
		assert.NotNil(t, NewCaseRepository(nil, nil))
	})

	t.Run("QueueRepository", func(t *testing.T) {
		assert.NotNil(t, NewQueueRepository(nil, nil))
	})

	t.Run("ArtifactRepository", func(t *testing.T) {
		assert.NotNil(t, NewArtifactRepository(nil, nil))
	})

	t.Run("ChunkRepository", func(t *testing.T) {
		assert.NotNil(t, NewChunkRepository(nil, nil))
	})

	t.Run("ChatRepository", func(t *testing.T) {
		assert.NotNil(t, NewChatRepository(nil, nil))
	})

	t.Run("StatsRepository", func(t *testing.T) {
		assert.NotNil(t, NewStatsRepository(nil, nil))
	})
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(assert.AnError))
	assert.False(t, isUniqueViolation(nil))
}

func TestNullableHelpers(t *testing.T) {
	t.Parallel()

	assert.Nil(t, nullableString(""))
	if got := nullableString("boom"); assert.NotNil(t, got) {
		assert.Equal(t, "boom", *got)
	}

	assert.Nil(t, nullableTime(time.Time{}))
	now := time.Now()
	if got := nullableTime(now); assert.NotNil(t, got) {
		assert.Equal(t, now, *got)
	}
}
