package request

type CreateBookingRequest struct {
	TripID         string `json:"trip_id" validate:"required,uuid"`
	SeatNumber     int    `json:"seat_number" validate:"required,min=1"`
	PassengerName  string `json:"passenger_name" validate:"required,min=2,max=100"`
	PassengerPhone string `json:"passenger_phone" validate:"required,min=7,max=20"`
}

// UpdateBookingStatusRequest drives the lifecycle. QRPayload is the scanned
// boarding payload and is required when moving to boarded.
type UpdateBookingStatusRequest struct {
	Status    string `json:"status" validate:"required,oneof=confirmed boarded completed cancelled"`
	QRPayload string `json:"qr_payload,omitempty"`
}

type BookingFilterRequest struct {
	PaginatedRequest
	Status string `json:"status" validate:"omitempty,oneof=confirmed boarded completed cancelled"`
}
