package consumer

import (
	"context"
	"fmt"

	"cloudeng.io/logging/ctxlog"
	"cloudeng.io/terrasync/config"
	"cloudeng.io/terrasync/scan"
	"github.com/segmentio/kafka-go"
)

// messageWriter is the subset of kafka.Writer that Message needs, so tests
// can substitute a recording fake instead of dialing a broker.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Message is the MessageSink of spec.md §4.7: it forwards only kept Result
// entries to a Kafka topic, best-effort, grounded on
// original_source/app/src/consumer/kafka.rs and wired to
// github.com/segmentio/kafka-go in place of the Rust rdkafka client.
type Message struct {
	ctx    context.Context
	writer messageWriter
	jobID  string
}

// NewMessage constructs a Message sink from config.Kafka's host/port/topic,
// per spec.md §6. The writer batches per kafka-go's default behavior;
// config.Kafka's Concurrency is not read.
func NewMessage(ctx context.Context, cfg config.Kafka) *Message {
	w := &kafka.Writer{
		Addr:     kafka.TCP(fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)),
		Topic:    cfg.Topic,
		Balancer: &kafka.LeastBytes{},
		Async:    true,
	}
	return &Message{ctx: ctx, writer: w}
}

// Name implements Sink.
func (m *Message) Name() string { return "message" }

// Handle implements Sink. Config messages capture the job id used as the
// Kafka message key; Result messages that are not Kept are dropped; publish
// failures are logged and otherwise ignored, per spec.md §4.7's best-effort
// delivery.
func (m *Message) Handle(msg scan.Message) {
	switch msg.Kind {
	case scan.KindConfig:
		m.jobID = msg.Config.JobID
	case scan.KindResult:
		if !msg.Result.Kept() {
			return
		}
		m.publish(msg.Result)
	case scan.KindComplete:
		if err := m.writer.Close(); err != nil {
			ctxlog.Error(m.ctx, "message sink close failed", "job_id", m.jobID, "error", err)
		}
	}
}

func (m *Message) publish(r scan.Result) {
	err := m.writer.WriteMessages(m.ctx, kafka.Message{
		Key:   []byte(m.jobID),
		Value: []byte(r.Entry.Path),
	})
	if err != nil {
		ctxlog.Error(m.ctx, "message publish failed", "job_id", m.jobID, "path", r.Entry.Path, "error", err)
	}
}
