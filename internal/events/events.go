// Package events publishes booking lifecycle events to Kafka on a
// best-effort basis. Publishing is an observability aid for downstream
// consumers (dispatch dashboards, analytics); it never fails a booking
// operation.
package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// TopicBookingEvents is the topic carrying all booking lifecycle events.
const TopicBookingEvents = "booking.events"

// Event types published on TopicBookingEvents.
const (
	BookingCreated       = "booking.created"
	BookingStatusChanged = "booking.status_changed"
)

// Envelope wraps every published event with routing metadata.
type Envelope struct {
	ID     string          `json:"id"`
	Type   string          `json:"type"`
	Source string          `json:"source"`
	Time   time.Time       `json:"time"`
	Data   json.RawMessage `json:"data"`
}

// ParseData unmarshals the envelope payload into v.
func (e *Envelope) ParseData(v interface{}) error {
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("failed to parse event data: %w", err)
	}
	return nil
}

// BookingCreatedEvent is published after a booking is persisted.
type BookingCreatedEvent struct {
	BookingID  int64     `json:"booking_id"`
	Pickup     string    `json:"pickup"`
	Drop       string    `json:"drop"`
	Datetime   string    `json:"datetime"`
	Seats      int       `json:"seats"`
	SMSSent    bool      `json:"sms_sent"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BookingStatusChangedEvent is published after an operator decision is
// persisted.
type BookingStatusChangedEvent struct {
	BookingID  int64     `json:"booking_id"`
	Status     string    `json:"status"`
	SMSSent    bool      `json:"sms_sent"`
	OccurredAt time.Time `json:"occurred_at"`
}
