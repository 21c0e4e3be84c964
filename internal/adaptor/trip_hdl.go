package adaptor

import (
	"net/http"

	"bus-booking/internal/dto/request"
	"bus-booking/internal/usecase"
	"bus-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type TripHandler struct {
	service usecase.TripService
	log     *zap.Logger
}

func NewTripHandler(service usecase.TripService, log *zap.Logger) *TripHandler {
	return &TripHandler{
		service: service,
		log:     log.With(zap.String("handler", "trip")),
	}
}

// GetTrips handles GET /api/trips?from=&to=&date=&status= (public)
func (h *TripHandler) GetTrips(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := request.TripFilterRequest{
		From:   query.Get("from"),
		To:     query.Get("to"),
		Date:   query.Get("date"),
		Status: query.Get("status"),
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	trips, err := h.service.GetTrips(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err, "get trips")
		return
	}

	utils.ResponseSuccess(w, "success", trips)
}

// GetTripByID handles GET /api/trips/{id} (public)
func (h *TripHandler) GetTripByID(w http.ResponseWriter, r *http.Request) {
	trip, err := h.service.GetTripByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err, "get trip by ID")
		return
	}

	utils.ResponseSuccess(w, "success", trip)
}

// CreateTrip handles POST /api/trips (admin only)
func (h *TripHandler) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var req request.CreateTripRequest
	if !decodeAndValidate(w, r, h.log, &req) {
		return
	}

	trip, err := h.service.CreateTrip(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err, "create trip")
		return
	}

	utils.ResponseCreated(w, "Trip created successfully", trip)
}

// UpdateTrip handles PUT /api/trips/{id} (admin only)
func (h *TripHandler) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateTripRequest
	if !decodeAndValidate(w, r, h.log, &req) {
		return
	}

	trip, err := h.service.UpdateTrip(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.handleServiceError(w, err, "update trip")
		return
	}

	utils.ResponseSuccess(w, "Trip updated successfully", trip)
}

// DeleteTrip handles DELETE /api/trips/{id} (admin only)
func (h *TripHandler) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteTrip(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.handleServiceError(w, err, "delete trip")
		return
	}

	utils.ResponseSuccess(w, "Trip deleted successfully", nil)
}

// GetTripsByDriver handles GET /api/trips/driver/{driverId} (driver, admin)
func (h *TripHandler) GetTripsByDriver(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}

	trips, err := h.service.GetTripsByDriver(r.Context(), caller, chi.URLParam(r, "driverId"))
	if err != nil {
		h.handleServiceError(w, err, "get trips by driver")
		return
	}

	utils.ResponseSuccess(w, "success", trips)
}

func (h *TripHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	writeServiceError(w, h.log, err, operation)
}
