package mathtools

import (
	"context"
	"sync"
	"time"

	"github.com/effective-security/xlog"
)

// Mail is a message sent by the mail tool.
type Mail struct {
	To      string    `json:"to" yaml:"to"`
	Subject string    `json:"subject" yaml:"subject"`
	Body    string    `json:"body" yaml:"body"`
	SentAt  time.Time `json:"sent_at" yaml:"sent_at"`
}

// Mailer delivers mail.
type Mailer interface {
	Send(ctx context.Context, mail *Mail) error
}

// Outbox is a Mailer that keeps the messages in memory.
type Outbox struct {
	lock  sync.Mutex
	mails []*Mail
}

// NewOutbox returns an empty outbox.
func NewOutbox() *Outbox {
	return &Outbox{}
}

// Send records the mail.
func (o *Outbox) Send(ctx context.Context, mail *Mail) error {
	o.lock.Lock()
	defer o.lock.Unlock()

	if mail.SentAt.IsZero() {
		mail.SentAt = TimeNowFn()
	}
	o.mails = append(o.mails, mail)

	logger.ContextKV(ctx, xlog.INFO,
		"status", "mail_sent",
		"to", mail.To,
		"subject", mail.Subject,
		"body", mail.Body)
	return nil
}

// Mails returns the recorded messages.
func (o *Outbox) Mails() []*Mail {
	o.lock.Lock()
	defer o.lock.Unlock()
	return append([]*Mail(nil), o.mails...)
}

// TimeNowFn is the clock of the outbox.
var TimeNowFn = time.Now
