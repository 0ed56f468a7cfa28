package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juristack/juristack/internal/domain/pipeline"
	"github.com/juristack/juristack/internal/infrastructure/monitoring/logging"
	jtypes "github.com/juristack/juristack/pkg/types/judgment"
)

type capturingPublisher struct {
	messages []*Message
	err      error
}

func (c *capturingPublisher) Publish(ctx context.Context, msg *Message) error {
	if c.err != nil {
		return c.err
	}
	c.messages = append(c.messages, msg)
	return nil
}

func stageEvent(stage jtypes.Stage, status jtypes.StageStatus) pipeline.StageEvent {
	return pipeline.StageEvent{
		CaseID:     "6d7f3b0a-0000-0000-0000-000000000001",
		CaseNumber: "CRL.A. 1482/2012",
		Stage:      stage,
		Status:     status,
		OccurredAt: time.Now().UTC(),
	}
}

func TestTopicFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		ev    pipeline.StageEvent
		topic string
	}{
		{"fresh enqueue", stageEvent(jtypes.StageExtraction, jtypes.StatusPending), TopicCaseEnqueued},
		{"stage advance", stageEvent(jtypes.StageSummary, jtypes.StatusPending), TopicStageCompleted},
		{"pipeline done", stageEvent(jtypes.StageCompleted, jtypes.StatusDone), TopicStageCompleted},
		{"terminal failure", stageEvent(jtypes.StageFailed, jtypes.StatusFailed), TopicStageFailed},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.topic, topicFor(tt.ev))
		})
	}

	t.Run("retry carries the error", func(t *testing.T) {
		t.Parallel()
		ev := stageEvent(jtypes.StageFacts, jtypes.StatusPending)
		ev.Attempts = 1
		ev.Error = "genai timeout"
		assert.Equal(t, TopicStageFailed, topicFor(ev))
	})

	t.Run("retried extraction is not a fresh enqueue", func(t *testing.T) {
		t.Parallel()
		ev := stageEvent(jtypes.StageExtraction, jtypes.StatusPending)
		ev.Attempts = 2
		assert.Equal(t, TopicStageCompleted, topicFor(ev))
	})
}

func TestStagePublisher_PublishStageEvent(t *testing.T) {
	t.Parallel()

	sink := &capturingPublisher{}
	pub := &StagePublisher{producer: sink, source: "worker", logger: logging.NewNopLogger()}

	ev := stageEvent(jtypes.StageExtraction, jtypes.StatusPending)
	require.NoError(t, pub.PublishStageEvent(context.Background(), ev))

	require.Len(t, sink.messages, 1)
	msg := sink.messages[0]
	assert.Equal(t, TopicCaseEnqueued, msg.Topic)
	assert.Equal(t, ev.CaseNumber, string(msg.Key))

	env, err := MessageToEventEnvelope(msg)
	require.NoError(t, err)
	assert.Equal(t, TopicCaseEnqueued, env.EventType)
	assert.Equal(t, "worker", env.Source)

	var out pipeline.StageEvent
	require.NoError(t, env.DecodePayload(&out))
	assert.Equal(t, jtypes.StageExtraction, out.Stage)
}

func TestStagePublisher_ProducerErrorSurfaces(t *testing.T) {
	t.Parallel()

	sink := &capturingPublisher{err: ErrProducerClosed}
	pub := &StagePublisher{producer: sink, source: "worker", logger: logging.NewNopLogger()}

	err := pub.PublishStageEvent(context.Background(), stageEvent(jtypes.StageSummary, jtypes.StatusPending))
	assert.ErrorIs(t, err, ErrProducerClosed)
}
