package response

import (
	"time"

	"bus-booking/internal/data/entity"
)

const DateLayout = "2006-01-02"

type DriverSummary struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Phone *string `json:"phone,omitempty"`
}

type TripResponse struct {
	ID             string            `json:"id"`
	From           string            `json:"from"`
	To             string            `json:"to"`
	Date           string            `json:"date"`
	Time           string            `json:"time"`
	Price          float64           `json:"price"`
	TotalSeats     int               `json:"total_seats"`
	AvailableSeats int               `json:"available_seats"`
	Status         entity.TripStatus `json:"status"`
	Description    *string           `json:"description,omitempty"`
	DriverID       string            `json:"driver_id"`
	Driver         *DriverSummary    `json:"driver,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

func TripToResponse(trip *entity.Trip, driver *entity.User) TripResponse {
	resp := TripResponse{
		ID:             trip.ID.String(),
		From:           trip.From,
		To:             trip.To,
		Date:           trip.Date.Format(DateLayout),
		Time:           trip.Time,
		Price:          trip.Price,
		TotalSeats:     trip.TotalSeats,
		AvailableSeats: trip.AvailableSeats,
		Status:         trip.Status,
		Description:    trip.Description,
		DriverID:       trip.DriverID.String(),
		CreatedAt:      trip.CreatedAt,
		UpdatedAt:      trip.UpdatedAt,
	}

	if driver != nil {
		resp.Driver = &DriverSummary{
			ID:    driver.ID.String(),
			Name:  driver.Name,
			Email: driver.Email,
			Phone: driver.Phone,
		}
	}

	return resp
}
