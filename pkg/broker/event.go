package broker

import (
	"time"

	"github.com/google/uuid"
)

// BookingEvent is the message body for every booking.* routing key.
type BookingEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	TripID     uuid.UUID `json:"trip_id"`
	UserID     uuid.UUID `json:"user_id"`
	SeatNumber int       `json:"seat_number"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// RouteForStatus maps a booking status to its routing key.
func RouteForStatus(status string) (string, bool) {
	switch status {
	case "confirmed":
		return RouteBookingConfirmed, true
	case "boarded":
		return RouteBookingBoarded, true
	case "completed":
		return RouteBookingCompleted, true
	case "cancelled":
		return RouteBookingCancelled, true
	}
	return "", false
}
