// internal/app/system/events/events.go
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/CorneTubage/assohub/internal/domain/models"
)

// Event types published to the association activity topic.
const (
	TypeAssociationCreated = "association.created"
	TypeAssociationRenamed = "association.renamed"
	TypeAssociationDeleted = "association.deleted"
	TypeMemberUpserted     = "member.upserted"
	TypeMemberRemoved      = "member.removed"
)

// Event is the wire shape of one association activity record. The key is the
// association code so all events for one association land on one partition,
// in order.
type Event struct {
	ID              string      `json:"id"`
	Type            string      `json:"type"`
	AssociationCode string      `json:"association_code"`
	UserID          string      `json:"user_id,omitempty"`
	Role            models.Role `json:"role,omitempty"`
	Name            string      `json:"name,omitempty"`
	Timestamp       time.Time   `json:"timestamp"`
}

// Producer publishes association activity to Kafka. A nil Producer is valid
// and drops everything, so callers never need to guard for the broker being
// unconfigured. Publishing is also best-effort when configured: a broker
// outage is logged, never surfaced.
type Producer struct {
	writer *kafka.Writer
	log    *zap.Logger
}

// NewProducer builds a Producer for the given brokers and topic. Returns nil
// when no brokers are configured.
func NewProducer(brokers []string, topic string, logger *zap.Logger) *Producer {
	if len(brokers) == 0 || topic == "" {
		return nil
	}
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			WriteTimeout: 10 * time.Second,
			ReadTimeout:  10 * time.Second,
		},
		log: logger,
	}
}

// Publish emits one event. Safe on a nil Producer.
func (p *Producer) Publish(ctx context.Context, eventType, code, userID string, role models.Role, name string) {
	if p == nil {
		return
	}
	ev := Event{
		ID:              uuid.NewString(),
		Type:            eventType,
		AssociationCode: code,
		UserID:          userID,
		Role:            role,
		Name:            name,
		Timestamp:       time.Now().UTC(),
	}
	value, err := json.Marshal(ev)
	if err != nil {
		p.log.Warn("events: marshal failed", zap.String("type", eventType), zap.Error(err))
		return
	}
	msg := kafka.Message{
		Key:   []byte(code),
		Value: value,
		Time:  ev.Timestamp,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Warn("events: publish failed",
			zap.String("type", eventType),
			zap.String("association", code),
			zap.Error(err))
		return
	}
	p.log.Debug("events: published",
		zap.String("type", eventType),
		zap.String("association", code))
}

// Close flushes and closes the underlying writer. Safe on a nil Producer.
func (p *Producer) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
