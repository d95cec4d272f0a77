package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/greyland/roseware-sync/internal/entity"
)

// SyncJob is one outbound push: one entity, one action, one platform.
// The dispatcher publishes one job per platform it was asked to sync.
type SyncJob struct {
	EntityID   string            `json:"entity_id"`
	EntityType entity.EntityType `json:"entity_type"`
	Action     entity.SyncAction `json:"action"`
	Platform   entity.Platform   `json:"platform"`
	OwnerID    string            `json:"owner_id"`

	// Deleted carries the external ids of an already-removed local row;
	// delete pushes have nothing left to load them from.
	Deleted *DeletedRefs `json:"deleted,omitempty"`
}

// DeletedRefs snapshots a row's platform ids at local-delete time.
type DeletedRefs struct {
	PipedriveID   int64  `json:"pipedrive_id,omitempty"`
	PipedriveRef  string `json:"pipedrive_ref,omitempty"` // lead ids are uuids
	DealID        int64  `json:"deal_id,omitempty"`       // parent deal for product attachments
	StripeID      string `json:"stripe_id,omitempty"`
	StripePriceID string `json:"stripe_price_id,omitempty"`
}

type SyncProducer interface {
	PublishSync(ctx context.Context, job SyncJob) error
}

type RabbitMQProducer struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewProducer(conn *amqp.Connection, ch *amqp.Channel) *RabbitMQProducer {
	return &RabbitMQProducer{Conn: conn, Ch: ch}
}

func (p *RabbitMQProducer) PublishSync(ctx context.Context, job SyncJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal sync job: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish sync job: %w", err)
	}

	return nil
}
