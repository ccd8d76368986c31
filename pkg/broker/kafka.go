package broker

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
)

// SourceHeader carries the ClientID of the producing instance.
const SourceHeader = "x-source"

type Config struct {
	Brokers []string
	Topic   string
	GroupID string
	// ClientID identifies this instance on produced messages.
	ClientID string
}

type KafkaConsumer struct {
	reader *kafka.Reader
}

func NewConsumer(cfg *Config) *KafkaConsumer {
	return &KafkaConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:        cfg.Brokers,
			Topic:          cfg.Topic,
			GroupID:        cfg.GroupID,
			MinBytes:       1,
			MaxBytes:       10e6,
			CommitInterval: time.Second,
		}),
	}
}

func (c *KafkaConsumer) ReadMessage(ctx context.Context) (kafka.Message, error) {
	return c.reader.ReadMessage(ctx)
}

func (c *KafkaConsumer) Close() error {
	return c.reader.Close()
}

type KafkaProducer struct {
	writer *kafka.Writer
	source string
}

func NewProducer(cfg *Config) *KafkaProducer {
	return &KafkaProducer{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(cfg.Brokers...),
			Topic:                  cfg.Topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
		source: cfg.ClientID,
	}
}

// Publish writes one message. Messages with the same key land on the same
// partition, so per-merchant ordering holds.
func (p *KafkaProducer) Publish(ctx context.Context, key string, value []byte) error {
	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  time.Now(),
	}
	if p.source != "" {
		msg.Headers = []kafka.Header{{Key: SourceHeader, Value: []byte(p.source)}}
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

// Source returns the SourceHeader value of msg, or "" when absent.
func Source(msg kafka.Message) string {
	for _, h := range msg.Headers {
		if h.Key == SourceHeader {
			return string(h.Value)
		}
	}
	return ""
}
