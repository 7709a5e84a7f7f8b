// Package publisher delivers alert payloads to RabbitMQ. Channel consumers
// downstream render and send the actual email and Discord messages; the core
// only decides whether an alert fires.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"salvage_search/internal/domain"
)

type RabbitMQ struct {
	conn              *amqp.Connection
	channel           *amqp.Channel
	exchange          string
	emailRoutingKey   string
	discordRoutingKey string
	logger            *slog.Logger
}

type Config struct {
	URL               string
	Exchange          string
	EmailRoutingKey   string
	EmailQueue        string
	DiscordRoutingKey string
	DiscordQueue      string
}

func NewRabbitMQ(cfg Config, logger *slog.Logger) (*RabbitMQ, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		cfg.Exchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	bindings := []struct {
		queue      string
		routingKey string
	}{
		{cfg.EmailQueue, cfg.EmailRoutingKey},
		{cfg.DiscordQueue, cfg.DiscordRoutingKey},
	}
	for _, b := range bindings {
		q, err := ch.QueueDeclare(
			b.queue,
			true,
			false,
			false,
			false,
			nil,
		)
		if err != nil {
			ch.Close()
			conn.Close()
			return nil, fmt.Errorf("declare queue %s: %w", b.queue, err)
		}

		if err := ch.QueueBind(q.Name, b.routingKey, cfg.Exchange, false, nil); err != nil {
			ch.Close()
			conn.Close()
			return nil, fmt.Errorf("bind queue %s: %w", b.queue, err)
		}
	}

	logger.Info("connected to rabbitmq",
		"exchange", cfg.Exchange,
		"email_queue", cfg.EmailQueue,
		"discord_queue", cfg.DiscordQueue,
	)

	return &RabbitMQ{
		conn:              conn,
		channel:           ch,
		exchange:          cfg.Exchange,
		emailRoutingKey:   cfg.EmailRoutingKey,
		discordRoutingKey: cfg.DiscordRoutingKey,
		logger:            logger,
	}, nil
}

// AlertMessage is the wire envelope for one channel delivery.
type AlertMessage struct {
	Channel   string              `json:"channel"`
	Payload   domain.AlertPayload `json:"payload"`
	Timestamp time.Time           `json:"timestamp"`
}

func (r *RabbitMQ) PublishEmail(ctx context.Context, payload *domain.AlertPayload) error {
	return r.publish(ctx, "email", r.emailRoutingKey, payload)
}

func (r *RabbitMQ) PublishDiscord(ctx context.Context, payload *domain.AlertPayload) error {
	return r.publish(ctx, "discord", r.discordRoutingKey, payload)
}

func (r *RabbitMQ) publish(ctx context.Context, channel, routingKey string, payload *domain.AlertPayload) error {
	msg := AlertMessage{
		Channel:   channel,
		Payload:   *payload,
		Timestamp: time.Now().UTC(),
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	err = r.channel.PublishWithContext(
		ctx,
		r.exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	r.logger.Debug("published alert",
		"search_id", payload.SearchID,
		"channel", channel,
		"new_vehicles", len(payload.NewVehicles),
	)

	return nil
}

func (r *RabbitMQ) Close() error {
	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
