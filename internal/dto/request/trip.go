package request

type CreateTripRequest struct {
	From        string  `json:"from" validate:"required,max=120"`
	To          string  `json:"to" validate:"required,max=120"`
	Date        string  `json:"date" validate:"required,datetime=2006-01-02"`
	Time        string  `json:"time" validate:"required,datetime=15:04"`
	Price       float64 `json:"price" validate:"gte=0"`
	TotalSeats  int     `json:"total_seats" validate:"required,min=1,max=200"`
	DriverID    string  `json:"driver_id" validate:"required,uuid"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
}

// UpdateTripRequest is a partial update; nil fields keep their value.
type UpdateTripRequest struct {
	From        *string  `json:"from,omitempty" validate:"omitempty,max=120"`
	To          *string  `json:"to,omitempty" validate:"omitempty,max=120"`
	Date        *string  `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Time        *string  `json:"time,omitempty" validate:"omitempty,datetime=15:04"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	TotalSeats  *int     `json:"total_seats,omitempty" validate:"omitempty,min=1,max=200"`
	DriverID    *string  `json:"driver_id,omitempty" validate:"omitempty,uuid"`
	Status      *string  `json:"status,omitempty" validate:"omitempty,oneof=scheduled in-progress completed cancelled"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=1000"`
}

type TripFilterRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Date   string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Status string `json:"status" validate:"omitempty,oneof=scheduled in-progress completed cancelled"`
}
