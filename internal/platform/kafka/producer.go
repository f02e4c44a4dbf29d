package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/fx"
	"go.uber.org/zap"

	cfgpkg "github.com/PugTools/divinatory-agenda/pkg/config"
)

const connectAttempts = 3

func newSaramaConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.ClientID = "divinatory-agenda"
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 3
	config.Producer.Idempotent = false
	return config
}

// NewProducer returns a nil producer when kafka.brokers is empty; event
// publishing is then disabled.
func NewProducer(lc fx.Lifecycle, l *zap.SugaredLogger, cfg *cfgpkg.Config) (sarama.SyncProducer, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		l.Infow("kafka disabled: kafka.brokers is empty")
		return nil, nil
	}

	var (
		producer sarama.SyncProducer
		err      error
	)
	for i := 1; i <= connectAttempts; i++ {
		producer, err = sarama.NewSyncProducer(cfg.Kafka.Brokers, newSaramaConfig())
		if err == nil {
			break
		}
		l.Warnw("waiting for kafka", "attempt", i, "of", connectAttempts, "err", err)
		time.Sleep(time.Duration(i) * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to start kafka producer: %w", err)
	}
	l.Infow("kafka producer initialized", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			l.Infow("closing kafka producer")
			return producer.Close()
		},
	})
	return producer, nil
}

var Module = fx.Options(
	fx.Provide(NewProducer),
)
