// Copyright (c) 2026 Kontakt. All rights reserved.
// Author: support@kontakt.app

/*
Package notify provides asynchronous delivery of account emails.

Schedulers hand a message off to a background worker fleet and return
immediately. A failed hand-off is logged and swallowed: email delivery must
never fail or slow down the HTTP request that triggered it.
*/
package notify

import (
	"context"
	"log/slog"
)

// # Contracts & Messages

// ConfirmationMail describes a single email-confirmation message.
type ConfirmationMail struct {
	// Email is the recipient address.
	Email string `json:"email"`
	// Username personalizes the greeting line.
	Username string `json:"username"`
	// ConfirmURL is the full clickable confirmation link, token included.
	ConfirmURL string `json:"confirm_url"`
}

// Scheduler defines the contract for queueing account emails.
type Scheduler interface {

	/*
		ScheduleConfirmation queues a confirmation email for delivery.

		Parameters:
		  - context: context.Context
		  - mail: ConfirmationMail

		Returns:
		  - error: Hand-off failures. Callers treat these as best-effort.
	*/
	ScheduleConfirmation(context context.Context, mail ConfirmationMail) error
}

// # Log Fallback

// LogScheduler writes confirmation links to the structured log instead of a
// broker. It is the development-mode scheduler, active when no AMQP_URL is
// configured.
type LogScheduler struct {
	logger *slog.Logger
}

// NewLogScheduler constructs a [LogScheduler].
func NewLogScheduler(logger *slog.Logger) *LogScheduler {
	return &LogScheduler{logger: logger}
}

// ScheduleConfirmation logs the confirmation link at Info level.
func (scheduler *LogScheduler) ScheduleConfirmation(_ context.Context, mail ConfirmationMail) error {
	scheduler.logger.Info("confirmation_mail_logged",
		slog.String("email", mail.Email),
		slog.String("confirm_url", mail.ConfirmURL),
	)
	return nil
}
