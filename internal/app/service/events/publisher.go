package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"

	cfgpkg "github.com/PugTools/divinatory-agenda/pkg/config"
	"github.com/PugTools/divinatory-agenda/pkg/logctx"
	types "github.com/PugTools/divinatory-agenda/pkg/types"
)

const EventPaymentStatusChanged = "payment.status_changed"

// StatusChanged is published after a transaction leaves pending.
type StatusChanged struct {
	Event         string                 `json:"event"`
	TransactionID string                 `json:"transaction_id"`
	AppointmentID string                 `json:"appointment_id"`
	PriestID      string                 `json:"priest_id"`
	From          types.PaymentStatus    `json:"from"`
	To            types.PaymentStatus    `json:"to"`
	Reason        types.TransitionReason `json:"reason"`
	Amount        decimal.Decimal        `json:"amount"`
	OccurredAt    time.Time              `json:"occurred_at"`
}

type Publisher interface {
	PublishStatusChanged(ctx context.Context, ev *StatusChanged) error
}

type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	log      *zap.SugaredLogger
}

// NewKafkaPublisher returns a publisher that drops events when producer is nil.
func NewKafkaPublisher(producer sarama.SyncProducer, cfg *cfgpkg.Config, log *zap.SugaredLogger) Publisher {
	return &KafkaPublisher{producer: producer, topic: cfg.Kafka.Topic, log: log}
}

func (p *KafkaPublisher) PublishStatusChanged(ctx context.Context, ev *StatusChanged) error {
	if p.producer == nil {
		return nil
	}
	if ev.Event == "" {
		ev.Event = EventPaymentStatusChanged
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", ev.Event, err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		// Keyed by appointment: all attempts of one booking share a partition.
		Key:   sarama.StringEncoder(ev.AppointmentID),
		Value: sarama.ByteEncoder(data),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event"), Value: []byte(ev.Event)},
		},
	}
	if tid := logctx.TraceID(ctx); tid != "" {
		msg.Headers = append(msg.Headers, sarama.RecordHeader{Key: []byte("trace_id"), Value: []byte(tid)})
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to send %s event: %w", ev.Event, err)
	}
	logctx.FromCtx(ctx, p.log).Infow("published payment event",
		"event", ev.Event, "transaction_id", ev.TransactionID, "partition", partition, "offset", offset)
	return nil
}

var Module = fx.Options(
	fx.Provide(NewKafkaPublisher),
)
