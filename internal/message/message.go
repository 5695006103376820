// internal/message/message.go
//
// Campus – Outbound message queue boundary.
//
// Context
//   Registration enqueues the activation e-mail here.  Until the real
//   queue/worker pool lands, the queue logs the payload via Zap and returns
//   nil so the creation pipeline proceeds without blocking.  The pipeline
//   already treats dispatch failure as log-only, so swapping in a real
//   publisher (Redis, NATS, SQS) changes nothing upstream.
//
// Style
//   Two-space sentence spacing, Oxford comma, concise inline notes.
//
//------------------------------------------------------------------------------

package message

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Email represents a basic outbound email job.
type Email struct {
	To      []string
	Subject string
	Text    string
	HTML    string // optional, unused by the log-only queue
}

// Queue enqueues outbound messages.  The zero value logs to the global Zap
// logger.
type Queue struct {
	Log *zap.SugaredLogger
}

// NewQueue returns a Queue bound to log.
func NewQueue(log *zap.SugaredLogger) *Queue {
	return &Queue{Log: log}
}

func (q *Queue) logger() *zap.SugaredLogger {
	if q.Log != nil {
		return q.Log
	}
	return zap.S()
}

// EnqueueEmail records the email payload.  Swap with a real queue publisher
// later.
func (q *Queue) EnqueueEmail(ctx context.Context, msg Email) error {
	q.logger().Infow("queue email",
		"to", msg.To, "subject", msg.Subject, "text_len", len(msg.Text))
	return nil
}

// SendActivation builds the account-activation email and enqueues it.  The
// activation link format matches what the account-activation handler
// expects.
func (q *Queue) SendActivation(ctx context.Context, email, username, activationKey string) error {
	msg := Email{
		To:      []string{email},
		Subject: "Activate your account",
		Text: fmt.Sprintf(
			"Hi %s,\n\nFinish setting up your account by opening:\n\n  /activate/%s\n",
			username, activationKey),
	}
	return q.EnqueueEmail(ctx, msg)
}
