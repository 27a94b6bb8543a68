package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"ordergw/internal/util"
)

const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Event is one authentication attempt, success included. KeyFingerprint is
// the HMAC-derived identifier, never the raw key.
type Event struct {
	ID             string    `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	ClientAddr     string    `json:"clientAddr"`
	Result         string    `json:"result"`
	Reason         string    `json:"reason,omitempty"`
	KeyFingerprint string    `json:"keyFingerprint,omitempty"`
}

// Sink receives one event per authentication attempt, append-only.
type Sink interface {
	Record(ctx context.Context, ev Event)
}

// Logger writes every event to the structured log and, when a Kafka writer
// is configured, also publishes it for downstream consumers. Publishing is
// asynchronous so a slow broker never stalls the auth path.
type Logger struct {
	log    *zap.Logger
	writer *kafka.Writer
}

// New builds a sink. writer may be nil (log-only mode).
func New(log *zap.Logger, writer *kafka.Writer) *Logger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Logger{log: log, writer: writer}
}

// NewKafkaWriter builds the audit topic writer.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
	}
}

func (l *Logger) Record(ctx context.Context, ev Event) {
	if ev.ID == "" {
		ev.ID = util.NewULID()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}

	fields := []zap.Field{
		zap.String("event_id", ev.ID),
		zap.Time("timestamp", ev.Timestamp),
		zap.String("client_addr", ev.ClientAddr),
		zap.String("result", ev.Result),
	}
	if ev.Reason != "" {
		fields = append(fields, zap.String("reason", ev.Reason))
	}
	if ev.KeyFingerprint != "" {
		fields = append(fields, zap.String("key_fingerprint", ev.KeyFingerprint))
	}
	if ev.Result == ResultSuccess {
		l.log.Info("authentication attempt", fields...)
	} else {
		l.log.Warn("authentication attempt", fields...)
	}

	if l.writer != nil {
		go l.publish(ev)
	}
}

func (l *Logger) publish(ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		l.log.Error("audit: marshal event", zap.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := l.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.ClientAddr),
		Value: payload,
	}); err != nil {
		l.log.Error("audit: publish event", zap.Error(err))
	}
}

// Close flushes the Kafka writer if one is configured.
func (l *Logger) Close() error {
	if l.writer != nil {
		return l.writer.Close()
	}
	return nil
}
