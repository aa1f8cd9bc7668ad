package kafka

import (
	"context"
	"encoding/json"
	"time"

	"staybook/internal/domain/booking"
)

const bookingTopic = "booking-events"

// BookingEvents publishes booking lifecycle events to the booking topic,
// keyed by listing so all events for one listing stay ordered.
type BookingEvents struct {
	Producer    *Producer
	TopicPrefix string
}

type bookingEventPayload struct {
	Event      string    `json:"event"`
	BookingID  string    `json:"booking_id"`
	ListingID  string    `json:"listing_id"`
	HostID     string    `json:"host_id"`
	GuestID    string    `json:"guest_id,omitempty"`
	CheckIn    time.Time `json:"check_in"`
	CheckOut   time.Time `json:"check_out"`
	Status     string    `json:"status"`
	TotalPrice float64   `json:"total_price"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e BookingEvents) BookingEvent(ctx context.Context, event string, b *booking.Booking) error {
	payload, err := json.Marshal(bookingEventPayload{
		Event:      event,
		BookingID:  string(b.ID),
		ListingID:  string(b.ListingID),
		HostID:     string(b.HostID),
		GuestID:    string(b.GuestID),
		CheckIn:    b.Range.CheckIn,
		CheckOut:   b.Range.CheckOut,
		Status:     string(b.Status),
		TotalPrice: b.TotalPrice,
		OccurredAt: b.UpdatedAt,
	})
	if err != nil {
		return err
	}
	headers := map[string]string{"event": event}
	return e.Producer.Publish(e.TopicPrefix+bookingTopic, string(b.ListingID), payload, headers)
}
