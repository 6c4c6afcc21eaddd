// Package service publishes domain events to RabbitMQ.  Errors are logged
// and returned so callers can ignore failures without interrupting the
// request flow.
package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/apex/log"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/care-assistant-api/internal/config"
	"github.com/iliyamo/care-assistant-api/internal/queue"
)

// EventPublisher publishes assist audit events to a durable queue.  Each
// publish opens its own connection; the audit volume is one message per
// assist request.
type EventPublisher struct {
	url   string
	queue string
	dial  func(url string) (*amqp.Connection, error)
}

// NewEventPublisher returns a publisher for cfg.URL and cfg.Queue.
func NewEventPublisher(cfg config.EventsConfig) *EventPublisher {
	return &EventPublisher{url: cfg.URL, queue: cfg.Queue, dial: amqp.Dial}
}

// PublishAssistReplied publishes ev as a persistent JSON message.  The
// function never panics; any error is logged and returned.
func (p *EventPublisher) PublishAssistReplied(ctx context.Context, ev queue.AssistRepliedEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		log.WithError(err).Error("rabbitmq: marshal event failed")
		return err
	}

	conn, err := p.dial(p.url)
	if err != nil {
		log.WithError(err).Warn("rabbitmq: dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.WithError(err).Warn("rabbitmq: channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		p.queue, // name
		true,    // durable
		false,   // autoDelete
		false,   // exclusive
		false,   // noWait
		nil,     // args
	); err != nil {
		log.WithError(err).Warn("rabbitmq: queue declare failed")
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		pub,
	); err != nil {
		log.WithError(err).Warn("rabbitmq: publish failed")
		return err
	}
	return nil
}
