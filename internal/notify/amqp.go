// Copyright (c) 2026 Kontakt. All rights reserved.
// Author: support@kontakt.app

package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/kontaktapp/kontakt/internal/platform/constants"
)

// # AMQP Scheduler

// AMQPScheduler publishes email tasks to a durable topic exchange. A separate
// mailer worker consumes the queue and performs the SMTP delivery.
type AMQPScheduler struct {
	connection *amqp.Connection
	channel    *amqp.Channel
	exchange   string
	logger     *slog.Logger
}

/*
NewAMQPScheduler connects to the broker and declares the mail exchange.

Description: Establishes the connection and channel once at startup; the
topic exchange is declared durable so queued mail survives broker restarts.

Parameters:
  - amqpURL: string (amqp:// connection URL)
  - exchange: string (topic exchange name)
  - logger: *slog.Logger

Returns:
  - *AMQPScheduler: Ready-to-publish scheduler
  - error: Connection or declaration failures
*/
func NewAMQPScheduler(amqpURL, exchange string, logger *slog.Logger) (*AMQPScheduler, error) {
	connection, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("notify: failed to connect to broker: %w", err)
	}

	channel, err := connection.Channel()
	if err != nil {
		connection.Close()
		return nil, fmt.Errorf("notify: failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"topic",  // kind
		true,     // durable
		false,    // auto-delete
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		connection.Close()
		return nil, fmt.Errorf("notify: failed to declare exchange %q: %w", exchange, err)
	}

	logger.Info("amqp_scheduler_connected", slog.String("exchange", exchange))

	return &AMQPScheduler{
		connection: connection,
		channel:    channel,
		exchange:   exchange,
		logger:     logger,
	}, nil
}

// ScheduleConfirmation publishes the mail task under the confirmation routing key.
func (scheduler *AMQPScheduler) ScheduleConfirmation(context context.Context, mail ConfirmationMail) error {
	body, err := json.Marshal(mail)
	if err != nil {
		return fmt.Errorf("notify: failed to encode confirmation mail: %w", err)
	}

	err = scheduler.channel.PublishWithContext(
		context,
		scheduler.exchange,
		constants.MailRoutingKeyConfirmation,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("notify: failed to publish confirmation mail: %w", err)
	}

	scheduler.logger.Debug("confirmation_mail_queued", slog.String("email", mail.Email))
	return nil
}

// Close releases the channel and connection. Safe to call once during shutdown.
func (scheduler *AMQPScheduler) Close() error {
	if err := scheduler.channel.Close(); err != nil {
		return fmt.Errorf("notify: failed to close channel: %w", err)
	}
	if err := scheduler.connection.Close(); err != nil {
		return fmt.Errorf("notify: failed to close connection: %w", err)
	}
	return nil
}
