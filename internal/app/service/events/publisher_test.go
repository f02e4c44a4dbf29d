package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	cfgpkg "github.com/PugTools/divinatory-agenda/pkg/config"
	types "github.com/PugTools/divinatory-agenda/pkg/types"
)

func testConfig() *cfgpkg.Config {
	return &cfgpkg.Config{Kafka: cfgpkg.KafkaConfig{Brokers: []string{"b:9092"}, Topic: "payment.status"}}
}

func TestKafkaPublisher_SendsKeyedEvent(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	defer producer.Close()

	var sent *sarama.ProducerMessage
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		sent = msg
		return nil
	})

	pub := NewKafkaPublisher(producer, testConfig(), zap.NewNop().Sugar())
	err := pub.PublishStatusChanged(context.Background(), &StatusChanged{
		TransactionID: "tx-1",
		AppointmentID: "apt-1",
		From:          types.PaymentStatusPending,
		To:            types.PaymentStatusPaid,
		Reason:        types.TransitionReasonWebhook,
		Amount:        decimal.RequireFromString("150.00"),
		OccurredAt:    time.Unix(1700000000, 0).UTC(),
	})
	require.NoError(t, err)

	require.Equal(t, "payment.status", sent.Topic)
	key, err := sent.Key.Encode()
	require.NoError(t, err)
	require.Equal(t, "apt-1", string(key))

	raw, err := sent.Value.Encode()
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	require.Equal(t, EventPaymentStatusChanged, body["event"])
	require.Equal(t, "paid", body["to"])
}

func TestKafkaPublisher_SendFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	defer producer.Close()
	producer.ExpectSendMessageAndFail(errors.New("broker down"))

	pub := NewKafkaPublisher(producer, testConfig(), zap.NewNop().Sugar())
	err := pub.PublishStatusChanged(context.Background(), &StatusChanged{TransactionID: "tx-1"})
	require.ErrorContains(t, err, "broker down")
}

func TestKafkaPublisher_NilProducerDrops(t *testing.T) {
	pub := NewKafkaPublisher(nil, testConfig(), zap.NewNop().Sugar())
	require.NoError(t, pub.PublishStatusChanged(context.Background(), &StatusChanged{}))
}
