package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/singladno/marinaobuv-sub001/internal/category"
	"github.com/singladno/marinaobuv-sub001/pkg/broker"
	"github.com/singladno/marinaobuv-sub001/pkg/logger"
	"go.uber.org/zap"
)

// MessageReader is satisfied by broker.KafkaConsumer.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// SnapshotInvalidator drops a merchant's cached category snapshot.
type SnapshotInvalidator interface {
	InvalidateSnapshot(ctx context.Context, merchantID string) error
}

// CatalogListener keeps category snapshots fresh when categories change on
// another replica or product counts move.
type CatalogListener struct {
	consumer MessageReader
	uc       SnapshotInvalidator
	logger   logger.ZapLogger
	backoff  time.Duration
	// self is this instance's producer ClientID; events it produced are skipped.
	self string
}

func NewCatalogListener(consumer MessageReader, uc SnapshotInvalidator, logger logger.ZapLogger, self string) *CatalogListener {
	return &CatalogListener{
		consumer: consumer,
		uc:       uc,
		logger:   logger,
		backoff:  time.Second,
		self:     self,
	}
}

func (l *CatalogListener) Start(ctx context.Context) {
	l.logger.Info("Starting Catalog Kafka Listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping Catalog Kafka Listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				select {
				case <-ctx.Done():
					return
				case <-time.After(l.backoff):
				}
				continue
			}
			if l.self != "" && broker.Source(msg) == l.self {
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

func (l *CatalogListener) processMessage(ctx context.Context, value []byte) {
	var event category.Event
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	switch event.EventType {
	case category.EventCategoryChanged,
		category.EventProductCreated,
		category.EventProductUpdated,
		category.EventProductDeleted:
	default:
		return
	}

	if event.Payload.MerchantID == "" {
		l.logger.Warn("Catalog event without merchant", zap.String("event_id", event.EventID), zap.String("event_type", event.EventType))
		return
	}

	l.logger.Debug("Invalidating category snapshot",
		zap.String("event_type", event.EventType),
		zap.String("merchant_id", event.Payload.MerchantID),
	)
	if err := l.uc.InvalidateSnapshot(ctx, event.Payload.MerchantID); err != nil {
		l.logger.Error("Failed to invalidate category snapshot",
			zap.String("merchant_id", event.Payload.MerchantID),
			zap.Error(err),
		)
	}
}
