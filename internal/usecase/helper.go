package usecase

import (
	"time"

	"bus-booking/internal/apperr"
	"bus-booking/internal/dto/response"

	"github.com/google/uuid"
)

func parseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.Validation(map[string]string{field: "Must be a valid UUID"}, "invalid %s", field)
	}
	return id, nil
}

func parseDate(field, raw string) (time.Time, error) {
	d, err := time.Parse(response.DateLayout, raw)
	if err != nil {
		return time.Time{}, apperr.Validation(map[string]string{field: "Must be a date in YYYY-MM-DD format"}, "invalid %s", field)
	}
	return d, nil
}
