package event

import (
	"encoding/json"
	"log"
	"time"

	"github.com/streadway/amqp"
)

const (
	submitMaxAttempts = 3
	submitBackoff     = 500 * time.Millisecond
)

// Publisher pushes content-lifecycle events onto a topic exchange for the
// notification service to consume. A nil Publisher is a no-op, so an
// unconfigured broker never blocks content operations.
type Publisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

func NewPublisher(amqpURL, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, err
	}
	return &Publisher{conn: conn, channel: ch, exchange: exchange}, nil
}

func (p *Publisher) publish(eventType string, payload any) error {
	body, err := json.Marshal(map[string]any{
		"type":    eventType,
		"payload": payload,
	})
	if err != nil {
		return err
	}
	return p.channel.Publish(
		p.exchange,
		eventType, // routing key
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

// Submit hands an event to the broker fire-and-forget: bounded retries with
// a fixed backoff, failures logged and never surfaced to the caller.
func (p *Publisher) Submit(eventType string, payload any) {
	if p == nil {
		return
	}
	go func() {
		var err error
		for attempt := 1; attempt <= submitMaxAttempts; attempt++ {
			if err = p.publish(eventType, payload); err == nil {
				return
			}
			log.Printf("[EVENT] publish %s attempt %d/%d failed: %v", eventType, attempt, submitMaxAttempts, err)
			time.Sleep(submitBackoff)
		}
		log.Printf("[EVENT] dropping %s after %d attempts: %v", eventType, submitMaxAttempts, err)
	}()
}

func (p *Publisher) Close() {
	if p == nil {
		return
	}
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
