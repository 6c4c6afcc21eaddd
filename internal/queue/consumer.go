// Package queue contains the background consumer that listens to the assist
// audit queue and writes one line per event to <dir>/assist.log.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/apex/log"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/care-assistant-api/internal/config"
)

const auditFileName = "assist.log"

// StartAssistConsumer connects to RabbitMQ, declares the audit queue
// (durable) and consumes it until ctx is cancelled.  Broker failures are
// retried with exponential backoff capped at 30s; a malformed message is
// rejected without requeue so the loop keeps running.
func StartAssistConsumer(ctx context.Context, cfg config.EventsConfig) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(cfg.URL)
		if err != nil {
			log.WithError(err).Warnf("assist-consumer: dial failed; retrying in %s", backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = consumeLoop(ctx, conn, cfg)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.WithError(err).Warn("assist-consumer: consume loop ended; reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, cfg config.EventsConfig) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.WithError(err).Warn("assist-consumer: set QoS failed")
	}

	if _, err := ch.QueueDeclare(cfg.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.ConsumeWithContext(ctx, cfg.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleMessage(cfg.LogDir, d.Body); err != nil {
			log.WithError(err).Error("assist-consumer: handle message failed")
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleMessage(dir string, body []byte) error {
	var ev AssistRepliedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Category == "" {
		return errors.New("event without category")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	f, err := os.OpenFile(filepath.Join(dir, auditFileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(formatLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

func formatLine(ev AssistRepliedEvent) string {
	return fmt.Sprintf("[%s] Assist reply | category=%s | message_chars=%d | has_context=%t\n",
		ev.RepliedAt, ev.Category, ev.MessageChars, ev.HasContext)
}

// sleep waits d or until ctx is done; it reports whether the full wait elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
