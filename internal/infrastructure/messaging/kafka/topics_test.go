package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juristack/juristack/internal/domain/pipeline"
	"github.com/juristack/juristack/internal/infrastructure/monitoring/logging"
	jtypes "github.com/juristack/juristack/pkg/types/judgment"
)

type mockKafkaConn struct {
	createFunc func(topics ...kafka.TopicConfig) error
	deleteFunc func(topics ...string) error
	readFunc   func(topics ...string) ([]kafka.Partition, error)
}

func (m *mockKafkaConn) CreateTopics(topics ...kafka.TopicConfig) error {
	if m.createFunc != nil {
		return m.createFunc(topics...)
	}
	return nil
}

func (m *mockKafkaConn) DeleteTopics(topics ...string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(topics...)
	}
	return nil
}

func (m *mockKafkaConn) ReadPartitions(topics ...string) ([]kafka.Partition, error) {
	if m.readFunc != nil {
		return m.readFunc(topics...)
	}
	return nil, nil
}

func (m *mockKafkaConn) Close() error { return nil }

func newTestTopicManager(mock ConnInterface) *TopicManager {
	return &TopicManager{
		conn:   mock,
		logger: logging.NewNopLogger(),
	}
}

func TestDefaultTopics(t *testing.T) {
	t.Parallel()

	defaults := DefaultTopics(6, 3)
	require.Len(t, defaults, 4)

	names := make([]string, 0, len(defaults))
	for _, cfg := range defaults {
		names = append(names, cfg.Name)
		assert.Equal(t, 6, cfg.NumPartitions)
		assert.Equal(t, 3, cfg.ReplicationFactor)
		assert.Positive(t, cfg.RetentionMs)
	}
	assert.Contains(t, names, TopicCaseEnqueued)
	assert.Contains(t, names, TopicStageCompleted)
	assert.Contains(t, names, TopicStageFailed)
	assert.Contains(t, names, TopicDeadLetter)
}

func TestDefaultTopics_ZeroKnobsFallBack(t *testing.T) {
	t.Parallel()

	defaults := DefaultTopics(0, 0)
	for _, cfg := range defaults {
		assert.Equal(t, 3, cfg.NumPartitions)
		assert.Equal(t, 1, cfg.ReplicationFactor)
	}
}

func TestCreateTopic(t *testing.T) {
	t.Parallel()

	mock := &mockKafkaConn{
		createFunc: func(topics ...kafka.TopicConfig) error {
			assert.Len(t, topics, 1)
			assert.Equal(t, TopicCaseEnqueued, topics[0].Topic)
			return nil
		},
	}
	m := newTestTopicManager(mock)
	err := m.CreateTopic(context.Background(), TopicConfig{Name: TopicCaseEnqueued, NumPartitions: 3, ReplicationFactor: 1})
	assert.NoError(t, err)
}

func TestCreateTopic_Validation(t *testing.T) {
	t.Parallel()

	m := newTestTopicManager(&mockKafkaConn{})
	ctx := context.Background()

	assert.Error(t, m.CreateTopic(ctx, TopicConfig{NumPartitions: 1, ReplicationFactor: 1}))
	assert.Error(t, m.CreateTopic(ctx, TopicConfig{Name: "t", ReplicationFactor: 1}))
	assert.Error(t, m.CreateTopic(ctx, TopicConfig{Name: "t", NumPartitions: 1}))
}

func TestListTopics_DeduplicatesPartitions(t *testing.T) {
	t.Parallel()

	mock := &mockKafkaConn{
		readFunc: func(topics ...string) ([]kafka.Partition, error) {
			return []kafka.Partition{
				{Topic: TopicCaseEnqueued, ID: 0},
				{Topic: TopicCaseEnqueued, ID: 1},
				{Topic: TopicStageFailed, ID: 0},
			}, nil
		},
	}
	m := newTestTopicManager(mock)

	topics, err := m.ListTopics(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{TopicCaseEnqueued, TopicStageFailed}, topics)
}

func TestEventEnvelope_RoundTrip(t *testing.T) {
	t.Parallel()

	ev := pipeline.StageEvent{
		CaseID:     "6d7f3b0a-0000-0000-0000-000000000001",
		CaseNumber: "CRL.A. 1482/2012",
		Stage:      jtypes.StageSummary,
		Status:     jtypes.StatusPending,
		OccurredAt: time.Now().UTC(),
	}
	env, err := NewEventEnvelope(TopicStageCompleted, "worker", ev)
	require.NoError(t, err)
	assert.NotEmpty(t, env.EventID)
	assert.Equal(t, "v1", env.SchemaVersion)

	msg, err := env.ToMessage(TopicStageCompleted, ev.CaseNumber)
	require.NoError(t, err)
	assert.Equal(t, TopicStageCompleted, msg.Topic)
	assert.Equal(t, ev.CaseNumber, string(msg.Key))
	assert.Equal(t, TopicStageCompleted, msg.Headers["event_type"])

	decoded, err := MessageToEventEnvelope(&Message{Value: msg.Value})
	require.NoError(t, err)

	var out pipeline.StageEvent
	require.NoError(t, decoded.DecodePayload(&out))
	assert.Equal(t, ev.CaseNumber, out.CaseNumber)
	assert.Equal(t, jtypes.StageSummary, out.Stage)
}

func TestMessageToEventEnvelope_Empty(t *testing.T) {
	t.Parallel()

	_, err := MessageToEventEnvelope(&Message{})
	assert.Error(t, err)
}
