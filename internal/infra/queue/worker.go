package queue

import (
	"context"
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/greyland/roseware-sync/internal/infra/http/middleware"
)

// SyncExecutor runs one outbound push job. Implemented by the outbound
// syncer's dispatch table in usecase.
type SyncExecutor interface {
	Execute(ctx context.Context, job SyncJob) error
}

type Worker struct {
	Channel  *amqp.Channel
	Executor SyncExecutor
}

func NewWorker(ch *amqp.Channel, executor SyncExecutor) *Worker {
	return &Worker{Channel: ch, Executor: executor}
}

func (w *Worker) Start(queueName string) {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // auto-ack (manual is safer)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		log.Fatalf("❌ [WORKER] failed to register consumer: %s", err)
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			var job SyncJob
			if err := json.Unmarshal(d.Body, &job); err != nil {
				log.Printf("❌ [WORKER] invalid job body: %s", err)
				// Poisoned message, reject without requeue.
				d.Nack(false, false)
				continue
			}

			log.Printf("📥 [WORKER] %s %s -> %s (entity=%s attempt=%d)",
				job.Action, job.EntityType, job.Platform, job.EntityID, attempt(d))

			if err := w.Executor.Execute(context.Background(), job); err != nil {
				if attempt(d) >= MaxAttempts {
					log.Printf("❌ [WORKER] job exhausted %d attempts, parking: %s", MaxAttempts, err)
					middleware.RecordSyncPush(string(job.Platform), string(job.EntityType), string(job.Action), "parked")
					w.park(d)
					continue
				}
				log.Printf("⚠️ [WORKER] push failed, retrying in %dms: %s", RetryDelayMs, err)
				middleware.RecordSyncPush(string(job.Platform), string(job.EntityType), string(job.Action), "retry")
				// Nack without requeue: dead-letters into the retry queue,
				// which delivers back here after its TTL.
				d.Nack(false, false)
				continue
			}

			log.Printf("✅ [WORKER] synced %s %s to %s", job.EntityType, job.EntityID, job.Platform)
			middleware.RecordSyncPush(string(job.Platform), string(job.EntityType), string(job.Action), "ok")
			d.Ack(false)
		}
	}()

	log.Printf(" [*] Sync worker waiting on queue '%s'", queueName)
	<-forever
}

// attempt counts deliveries of this message: 1 on first sight, plus one per
// trip through the retry queue (read from the x-death header).
func attempt(d amqp.Delivery) int {
	deaths, ok := d.Headers["x-death"].([]interface{})
	if !ok {
		return 1
	}
	for _, raw := range deaths {
		death, ok := raw.(amqp.Table)
		if !ok {
			continue
		}
		if death["queue"] == WorkQueue {
			if count, ok := death["count"].(int64); ok {
				return int(count) + 1
			}
		}
	}
	return 1
}

// park moves a job that will never succeed onto the parked queue and acks
// the original.
func (w *Worker) park(d amqp.Delivery) {
	err := w.Channel.Publish(
		ParkedExchange,
		RoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         d.Body,
			DeliveryMode: amqp.Persistent,
			Headers:      d.Headers,
		},
	)
	if err != nil {
		log.Printf("❌ [WORKER] failed to park job, requeueing: %s", err)
		d.Nack(false, false)
		return
	}
	d.Ack(false)
}
