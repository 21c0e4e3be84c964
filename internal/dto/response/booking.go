package response

import (
	"time"

	"bus-booking/internal/data/entity"
)

type BookingResponse struct {
	ID             string               `json:"id"`
	UserID         string               `json:"user_id"`
	TripID         string               `json:"trip_id"`
	SeatNumber     int                  `json:"seat_number"`
	PassengerName  string               `json:"passenger_name"`
	PassengerPhone string               `json:"passenger_phone"`
	Status         entity.BookingStatus `json:"status"`
	BookingDate    time.Time            `json:"booking_date"`
	BoardingTime   *time.Time           `json:"boarding_time,omitempty"`
	TotalPrice     float64              `json:"total_price"`
	QRPayload      string               `json:"qr_payload"`
	QRCode         string               `json:"qr_code,omitempty"`
	Trip           *TripResponse        `json:"trip,omitempty"`
}

func BookingToResponse(booking *entity.Booking, trip *entity.Trip) BookingResponse {
	resp := BookingResponse{
		ID:             booking.ID.String(),
		UserID:         booking.UserID.String(),
		TripID:         booking.TripID.String(),
		SeatNumber:     booking.SeatNumber,
		PassengerName:  booking.PassengerName,
		PassengerPhone: booking.PassengerPhone,
		Status:         booking.Status,
		BookingDate:    booking.BookingDate,
		BoardingTime:   booking.BoardingTime,
		TotalPrice:     booking.TotalPrice,
		QRPayload:      booking.QRPayload,
	}

	if trip != nil {
		t := TripToResponse(trip, nil)
		resp.Trip = &t
	}

	return resp
}
