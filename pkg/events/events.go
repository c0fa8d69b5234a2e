package events

import (
	"context"
	"time"

	"renthub/pkg/model"
)

type Type string

const (
	BookingCreated   Type = "booking.created"
	BookingCancelled Type = "booking.cancelled"
	BookingReturned  Type = "booking.returned"
	BookingExpired   Type = "booking.expired"
)

// Header keys attached to every published message.
const (
	HeaderEventID       = "event-id"
	HeaderEventType     = "event-type"
	HeaderSchemaVersion = "schema-version"
	HeaderSource        = "source"
)

const SchemaVersion = "1"

// BookingEvent is the payload published after a booking lifecycle
// transition commits. Consumers key on BookingID.
type BookingEvent struct {
	EventID    string              `json:"event_id"`
	Type       Type                `json:"type"`
	BookingID  string              `json:"booking_id"`
	CustomerID string              `json:"customer_id"`
	VehicleID  string              `json:"vehicle_id"`
	Status     model.BookingStatus `json:"status"`
	TotalPrice float64             `json:"total_price,omitempty"`
	OccurredAt time.Time           `json:"occurred_at"`
}

// Publisher emits booking lifecycle events. Publishing is best-effort:
// the booking engine logs failures and never rolls back a committed
// transition because of one.
type Publisher interface {
	PublishBookingEvent(ctx context.Context, evt BookingEvent) error
	Close() error
}

// NopPublisher is used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) PublishBookingEvent(context.Context, BookingEvent) error { return nil }

func (NopPublisher) Close() error { return nil }
