package queue

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeName   = "ex.sync"
	RetryExchange  = "ex.sync.retry"
	ParkedExchange = "ex.sync.parked"

	WorkQueue   = "q.sync.jobs"
	RetryQueue  = "q.sync.retry"
	ParkedQueue = "q.sync.parked"

	RoutingKey = "k.sync"

	// RetryDelayMs is how long a failed job sits in the retry queue before
	// being delivered back to the work queue.
	RetryDelayMs = 10000
	// MaxAttempts is the total number of delivery attempts before a job is
	// parked. After that the failure is visible only in logs and the parked
	// queue.
	MaxAttempts = 3
)

type RabbitMQ struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewRabbitMQ(user, pass, host, port string) (*RabbitMQ, error) {
	dsn := fmt.Sprintf("amqp://%s:%s@%s:%s/", user, pass, host, port)

	conn, err := amqp.Dial(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := setupTopology(ch); err != nil {
		return nil, err
	}

	return &RabbitMQ{Conn: conn, Ch: ch}, nil
}

// setupTopology declares the work/retry/parked triangle. A nacked job dead-
// letters into the retry queue, waits RetryDelayMs, and is dead-lettered
// back onto the work queue. The worker parks jobs explicitly once they have
// burned through MaxAttempts.
func setupTopology(ch *amqp.Channel) error {
	err := ch.ExchangeDeclare(ExchangeName, "direct", true, false, false, false, nil)
	if err != nil {
		return err
	}
	err = ch.ExchangeDeclare(RetryExchange, "direct", true, false, false, false, nil)
	if err != nil {
		return err
	}
	err = ch.ExchangeDeclare(ParkedExchange, "direct", true, false, false, false, nil)
	if err != nil {
		return err
	}

	workArgs := amqp.Table{
		"x-dead-letter-exchange":    RetryExchange,
		"x-dead-letter-routing-key": RoutingKey,
	}
	if _, err := ch.QueueDeclare(WorkQueue, true, false, false, false, workArgs); err != nil {
		return err
	}
	if err := ch.QueueBind(WorkQueue, RoutingKey, ExchangeName, false, nil); err != nil {
		return err
	}

	retryArgs := amqp.Table{
		"x-message-ttl":             int32(RetryDelayMs),
		"x-dead-letter-exchange":    ExchangeName,
		"x-dead-letter-routing-key": RoutingKey,
	}
	if _, err := ch.QueueDeclare(RetryQueue, true, false, false, false, retryArgs); err != nil {
		return err
	}
	if err := ch.QueueBind(RetryQueue, RoutingKey, RetryExchange, false, nil); err != nil {
		return err
	}

	if _, err := ch.QueueDeclare(ParkedQueue, true, false, false, false, nil); err != nil {
		return err
	}
	if err := ch.QueueBind(ParkedQueue, RoutingKey, ParkedExchange, false, nil); err != nil {
		return err
	}

	return nil
}
