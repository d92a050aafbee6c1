package queue

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher dials the broker per message; field changes are human paced so
// a long-lived channel is not worth the reconnect handling.
type Publisher struct {
	url string
}

// NewPublisher returns nil when url is empty; a nil Publisher drops events.
func NewPublisher(url string) *Publisher {
	if url == "" {
		return nil
	}
	return &Publisher{url: url}
}

// PublishFieldChanged sends ev to the booking.field_changed queue. Errors are
// logged and returned so the caller can ignore them.
func (p *Publisher) PublishFieldChanged(ctx context.Context, ev BookingFieldChanged) error {
	if p == nil {
		return nil
	}
	return p.publish(ctx, FieldChangedQueue, ev)
}

func (p *Publisher) publish(ctx context.Context, queue string, event any) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed queue=%s: %v", queue, err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed queue=%s: %v", queue, err)
		return err
	}
	return nil
}
