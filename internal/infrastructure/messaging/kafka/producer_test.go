package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juristack/juristack/internal/infrastructure/monitoring/logging"
)

type mockKafkaWriter struct {
	writeFunc func(ctx context.Context, msgs ...kafka.Message) error
	closeFunc func() error
}

func (m *mockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if m.writeFunc != nil {
		return m.writeFunc(ctx, msgs...)
	}
	return nil
}

func (m *mockKafkaWriter) Close() error {
	if m.closeFunc != nil {
		return m.closeFunc()
	}
	return nil
}

func (m *mockKafkaWriter) Stats() kafka.WriterStats {
	return kafka.WriterStats{}
}

func newTestProducer(mockWriter WriterInterface) *Producer {
	return &Producer{
		writer: mockWriter,
		config: ProducerConfig{
			Brokers:         []string{"localhost:9092"},
			MaxMessageBytes: 1024 * 1024,
		},
		logger:  logging.NewNopLogger(),
		metrics: &ProducerMetrics{},
	}
}

func TestValidateProducerConfig(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateProducerConfig(ProducerConfig{Brokers: []string{"localhost:9092"}}))
	assert.Error(t, ValidateProducerConfig(ProducerConfig{}))
	assert.Error(t, ValidateProducerConfig(ProducerConfig{Brokers: []string{"localhost:9092"}, MaxRetries: -1}))
}

func TestProducer_Publish(t *testing.T) {
	t.Parallel()

	var captured []kafka.Message
	p := newTestProducer(&mockKafkaWriter{
		writeFunc: func(ctx context.Context, msgs ...kafka.Message) error {
			captured = msgs
			return nil
		},
	})

	err := p.Publish(context.Background(), &Message{
		Topic: TopicStageCompleted,
		Key:   []byte("CRL.A. 1482/2012"),
		Value: []byte(`{"stage":"SUMMARY"}`),
	})
	assert.NoError(t, err)
	assert.Len(t, captured, 1)
	assert.Equal(t, TopicStageCompleted, captured[0].Topic)
	assert.Equal(t, "CRL.A. 1482/2012", string(captured[0].Key))
	assert.Equal(t, int64(1), p.metrics.MessagesSent.Load())
}

func TestProducer_GetMetricsSnapshot(t *testing.T) {
	t.Parallel()

	p := newTestProducer(&mockKafkaWriter{
		writeFunc: func(ctx context.Context, msgs ...kafka.Message) error { return nil },
	})
	require.NoError(t, p.Publish(context.Background(), &Message{
		Topic: TopicStageCompleted,
		Value: []byte(`{"stage":"FACTS"}`),
	}))

	snap := p.GetMetrics()
	assert.Equal(t, int64(1), snap.MessagesSent)
	assert.Equal(t, int64(0), snap.MessagesFailed)
	assert.False(t, snap.LastSentAt.IsZero())

	// The snapshot is a plain value; copying must be safe.
	snapCopy := snap
	assert.Equal(t, snap, snapCopy)
}

func TestProducer_PublishWriteFailure(t *testing.T) {
	t.Parallel()

	p := newTestProducer(&mockKafkaWriter{
		writeFunc: func(ctx context.Context, msgs ...kafka.Message) error {
			return errors.New("broker unreachable")
		},
	})

	err := p.Publish(context.Background(), &Message{Topic: TopicCaseEnqueued, Value: []byte("x")})
	assert.Error(t, err)
	assert.Equal(t, int64(1), p.metrics.MessagesFailed.Load())
}

func TestProducer_PublishValidation(t *testing.T) {
	t.Parallel()

	p := newTestProducer(&mockKafkaWriter{})

	assert.Error(t, p.Publish(context.Background(), &Message{Value: []byte("x")}))
	assert.Error(t, p.Publish(context.Background(), &Message{Topic: TopicCaseEnqueued}))

	big := make([]byte, 2*1024*1024)
	assert.Error(t, p.Publish(context.Background(), &Message{Topic: TopicCaseEnqueued, Value: big}))
}

func TestProducer_PublishAfterClose(t *testing.T) {
	t.Parallel()

	p := newTestProducer(&mockKafkaWriter{})
	assert.NoError(t, p.Close())

	err := p.Publish(context.Background(), &Message{Topic: TopicCaseEnqueued, Value: []byte("x")})
	assert.ErrorIs(t, err, ErrProducerClosed)

	// Close is idempotent.
	assert.NoError(t, p.Close())
}
