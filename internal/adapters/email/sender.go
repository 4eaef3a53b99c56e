// Package email delivers outbound notices through an external provider.
package email

import (
	"context"
	"errors"
	"time"
)

// ErrNoRecipient is returned when a request has no To address.
var ErrNoRecipient = errors.New("email has no recipient")

// SendRequest is one outbound message.
type SendRequest struct {
	To      []string
	From    string // empty means the sender's default
	Subject string
	HTML    string
	Text    string // plain-text alternative, optional
}

// SendResult is the provider's acknowledgement.
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers email.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
}

func (r SendRequest) validate() error {
	if len(r.To) == 0 {
		return ErrNoRecipient
	}
	return nil
}
