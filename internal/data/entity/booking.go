package entity

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingBoarded   BookingStatus = "boarded"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingConfirmed, BookingBoarded, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

// Active reports whether the booking still holds its seat.
func (s BookingStatus) Active() bool {
	return s != BookingCancelled
}

type Booking struct {
	BaseNoDelete
	UserID         uuid.UUID     `db:"user_id"`
	TripID         uuid.UUID     `db:"trip_id"`
	SeatNumber     int           `db:"seat_number"`
	QRPayload      string        `db:"qr_payload"`
	PassengerName  string        `db:"passenger_name"`
	PassengerPhone string        `db:"passenger_phone"`
	Status         BookingStatus `db:"status"`
	BookingDate    time.Time     `db:"booking_date"`
	BoardingTime   *time.Time    `db:"boarding_time"`
	TotalPrice     float64       `db:"total_price"`
}
