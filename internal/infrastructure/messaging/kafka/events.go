package kafka

import (
	"context"

	"github.com/juristack/juristack/internal/domain/pipeline"
	"github.com/juristack/juristack/internal/infrastructure/monitoring/logging"
	jtypes "github.com/juristack/juristack/pkg/types/judgment"
)

type publisher interface {
	Publish(ctx context.Context, msg *Message) error
}

// StagePublisher translates pipeline stage events into judgment topic
// records.  Messages are keyed by case number so each case's history lands
// on one partition in order.
type StagePublisher struct {
	producer publisher
	source   string
	logger   logging.Logger
}

// NewStagePublisher wraps a producer as a pipeline event publisher.
func NewStagePublisher(p *Producer, source string, logger logging.Logger) *StagePublisher {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &StagePublisher{producer: p, source: source, logger: logger}
}

var _ pipeline.EventPublisher = (*StagePublisher)(nil)

// PublishStageEvent routes the event to its topic: failures and retries to
// judgment.stage.failed, a fresh entry at EXTRACTION to
// judgment.case.enqueued, everything else to judgment.stage.completed.
func (s *StagePublisher) PublishStageEvent(ctx context.Context, ev pipeline.StageEvent) error {
	topic := topicFor(ev)

	env, err := NewEventEnvelope(topic, s.source, ev)
	if err != nil {
		return err
	}
	msg, err := env.ToMessage(topic, ev.CaseNumber)
	if err != nil {
		return err
	}
	if err := s.producer.Publish(ctx, msg); err != nil {
		return err
	}

	s.logger.Debug("stage event published",
		logging.String("topic", topic),
		logging.String("case_number", ev.CaseNumber),
		logging.String("stage", string(ev.Stage)))
	return nil
}

func topicFor(ev pipeline.StageEvent) string {
	if ev.Status == jtypes.StatusFailed || ev.Error != "" {
		return TopicStageFailed
	}
	// A reset back to EXTRACTION re-announces the case; consumers only use
	// this topic as a work wake-up, so that is the right signal.
	if ev.Stage == jtypes.StageExtraction && ev.Status == jtypes.StatusPending && ev.Attempts == 0 {
		return TopicCaseEnqueued
	}
	return TopicStageCompleted
}
