package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// channelPublisher is the subset of *amqp.Channel the publisher uses.
type channelPublisher interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// EvaluationPublisher publishes evaluation events to the evaluation_events
// queue. Safe for concurrent use: amqp channels are not.
type EvaluationPublisher struct {
	mu                sync.Mutex
	channel           channelPublisher
	healthy           func() bool
	declared          bool
	messagesPublished int64
	messagesFailed    int64
	lastPublishTime   time.Time
}

func NewEvaluationPublisher(conn *RabbitMQConnection) *EvaluationPublisher {
	return newEvaluationPublisher(conn.Channel, conn.Healthy)
}

func newEvaluationPublisher(ch channelPublisher, healthy func() bool) *EvaluationPublisher {
	return &EvaluationPublisher{
		channel:         ch,
		healthy:         healthy,
		lastPublishTime: time.Now(),
	}
}

func (p *EvaluationPublisher) PublishEvaluationEvent(ctx context.Context, event EvaluationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.declared {
		_, err := p.channel.QueueDeclare(
			EvaluationQueue, // queue name
			true,            // durable
			false,           // delete when unused
			false,           // exclusive
			false,           // no-wait
			nil,             // arguments
		)
		if err != nil {
			p.messagesFailed++
			return fmt.Errorf("failed to declare queue: %w", err)
		}
		p.declared = true
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.messagesFailed++
		return fmt.Errorf("failed to marshal evaluation event: %w", err)
	}

	err = p.channel.PublishWithContext(
		ctx,
		"",              // exchange
		EvaluationQueue, // routing key (queue name)
		false,           // mandatory
		false,           // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			MessageId:    event.ID,
			Type:         string(event.EventType),
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		p.messagesFailed++
		return fmt.Errorf("failed to publish evaluation event: %w", err)
	}

	p.messagesPublished++
	p.lastPublishTime = time.Now()

	slog.Info("Evaluation event published",
		"queue", EvaluationQueue,
		"event_type", event.EventType,
		"evaluation_id", event.EvaluationID,
	)
	return nil
}

func (p *EvaluationPublisher) HealthCheck() PublisherHealthStatus {
	p.mu.Lock()
	defer p.mu.Unlock()

	return PublisherHealthStatus{
		IsHealthy:         p.healthy != nil && p.healthy(),
		MessagesPublished: p.messagesPublished,
		MessagesFailed:    p.messagesFailed,
		LastPublishTime:   p.lastPublishTime,
		Queue:             EvaluationQueue,
	}
}
