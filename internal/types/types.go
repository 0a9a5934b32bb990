// Package types holds the core value types shared across herald subsystems.
package types

import "time"

// Kind identifies a delivery channel. The set is open: new kinds exist as
// soon as a factory is registered for them, no code changes required.
type Kind string

const (
	KindSMS     Kind = "sms"
	KindEmail   Kind = "email"
	KindPush    Kind = "push"
	KindWebhook Kind = "webhook"
)

// Label returns the display tag used in emitted output lines.
func (k Kind) Label() string {
	switch k {
	case KindSMS:
		return "SMS"
	case KindEmail:
		return "Email"
	case KindPush:
		return "Push"
	case KindWebhook:
		return "Webhook"
	default:
		return string(k)
	}
}

// Notification is a single outbound message on its way through a channel.
type Notification struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	To        string    `json:"to,omitempty"`
	Body      string    `json:"body"`
	Digest    string    `json:"digest,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// DeliveryStatus is the terminal state of a delivery attempt.
type DeliveryStatus string

const (
	StatusSent   DeliveryStatus = "sent"
	StatusFailed DeliveryStatus = "failed"
)

// Delivery is the journal record written after a send completes.
type Delivery struct {
	ID       string         `json:"id"`
	Kind     Kind           `json:"kind"`
	To       string         `json:"to,omitempty"`
	Body     string         `json:"body"`
	Digest   string         `json:"digest,omitempty"`
	Status   DeliveryStatus `json:"status"`
	Error    string         `json:"error,omitempty"`
	SentAt   time.Time      `json:"sent_at"`
	Duration time.Duration  `json:"duration"`
}
