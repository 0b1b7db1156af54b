package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"
	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/engsiam/phone-email-auth/internal/core/port"
	"github.com/engsiam/phone-email-auth/internal/infra/config"
	"github.com/engsiam/phone-email-auth/internal/infra/logger"
)

const (
	channelSMS   = "sms"
	channelEmail = "email"
)

// Producer wraps a Sarama async producer with error handling and lifecycle
// management.
type Producer struct {
	producer sarama.AsyncProducer
	logger   *zap.Logger
	cfg      config.KafkaSettings
	done     chan struct{}
}

// NewProducer initializes the Kafka async producer.
func NewProducer(cfg config.KafkaSettings, log *zap.Logger) (*Producer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_5_0_0

	saramaConfig.Producer.RequiredAcks = sarama.WaitForLocal
	saramaConfig.Producer.Compression = sarama.CompressionSnappy
	saramaConfig.Producer.Flush.Frequency = 100 * time.Millisecond
	saramaConfig.Producer.Flush.Messages = 100
	saramaConfig.Producer.Retry.Max = 3
	saramaConfig.Producer.Return.Successes = false
	saramaConfig.Producer.Return.Errors = true

	saramaConfig.Metadata.Retry.Max = 3
	saramaConfig.Metadata.Retry.Backoff = 250 * time.Millisecond

	producer, err := sarama.NewAsyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	p := &Producer{
		producer: producer,
		logger:   log,
		cfg:      cfg,
		done:     make(chan struct{}),
	}

	go p.handleErrors()

	log.Info("kafka producer initialized",
		zap.Strings("brokers", cfg.Brokers),
		zap.String("topic_prefix", cfg.TopicPrefix),
	)

	return p, nil
}

func (p *Producer) handleErrors() {
	for {
		select {
		case err := <-p.producer.Errors():
			if err != nil {
				p.logger.Error("kafka producer error",
					zap.Error(err.Err),
					zap.String("topic", err.Msg.Topic),
					zap.Int32("partition", err.Msg.Partition),
				)
			}
		case <-p.done:
			return
		}
	}
}

// TopicName builds the fully qualified topic for a delivery channel.
func (p *Producer) TopicName(channel string) string {
	prefix := strings.TrimSpace(p.cfg.TopicPrefix)
	if prefix == "" {
		return "notify." + channel
	}
	return prefix + ".notify." + channel
}

// Close shuts down the producer and its error handler.
func (p *Producer) Close() error {
	close(p.done)
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("close kafka producer: %w", err)
	}
	return nil
}

// KafkaNotifier publishes notification envelopes to per-channel topics.
// Downstream SMS and email workers consume and deliver them.
type KafkaNotifier struct {
	producer *Producer
	logger   *zap.Logger
}

// NewKafkaNotifier constructs a Kafka-backed notification gateway.
func NewKafkaNotifier(producer *Producer, log *zap.Logger) *KafkaNotifier {
	return &KafkaNotifier{producer: producer, logger: log}
}

type notificationEnvelope struct {
	MessageID string    `json:"message_id"`
	Channel   string    `json:"channel"`
	Recipient string    `json:"recipient"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
}

// SendSMS publishes an SMS notification envelope.
func (n *KafkaNotifier) SendSMS(ctx context.Context, phone, body string) error {
	return n.publish(ctx, channelSMS, phone, body)
}

// SendEmail publishes an email notification envelope.
func (n *KafkaNotifier) SendEmail(ctx context.Context, address, body string) error {
	return n.publish(ctx, channelEmail, address, body)
}

func (n *KafkaNotifier) publish(ctx context.Context, channel, recipient, body string) error {
	envelope := notificationEnvelope{
		MessageID: uuid.NewString(),
		Channel:   channel,
		Recipient: recipient,
		Body:      body,
		Timestamp: time.Now().UTC(),
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal notification envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: n.producer.TopicName(channel),
		Key:   sarama.StringEncoder(recipient),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case n.producer.producer.Input() <- message:
	case <-ctx.Done():
		return ctx.Err()
	}

	masked := logger.MaskPhone(recipient)
	if channel == channelEmail {
		masked = logger.MaskEmail(recipient)
	}
	n.logger.Debug("notification queued",
		zap.String("channel", channel),
		zap.String("recipient", masked),
	)

	return nil
}

var _ port.Notifier = (*KafkaNotifier)(nil)
