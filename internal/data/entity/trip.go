package entity

import (
	"time"

	"github.com/google/uuid"
)

type TripStatus string

const (
	TripScheduled  TripStatus = "scheduled"
	TripInProgress TripStatus = "in-progress"
	TripCompleted  TripStatus = "completed"
	TripCancelled  TripStatus = "cancelled"
)

func (s TripStatus) Valid() bool {
	switch s {
	case TripScheduled, TripInProgress, TripCompleted, TripCancelled:
		return true
	}
	return false
}

// Trip is a scheduled bus departure. AvailableSeats is only written by the
// seat allocation service and always stays within [0, TotalSeats].
type Trip struct {
	BaseNoDelete
	From           string     `db:"origin"`
	To             string     `db:"destination"`
	Date           time.Time  `db:"trip_date"`
	Time           string     `db:"trip_time"`
	Price          float64    `db:"price"`
	TotalSeats     int        `db:"total_seats"`
	AvailableSeats int        `db:"available_seats"`
	Status         TripStatus `db:"status"`
	Description    *string    `db:"description"`
	DriverID       uuid.UUID  `db:"driver_id"`
}

// TripFilter narrows trip listings. Zero values mean "no filter".
type TripFilter struct {
	From   string
	To     string
	Date   *time.Time
	Status TripStatus
}
