package wire

import (
	"bus-booking/internal/adaptor"
	"bus-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireTrip(
	r chi.Router,
	tripHandler *adaptor.TripHandler,
	g *guards,
	config *utils.Config,
	log *zap.Logger,
) {
	r.Route("/trips", func(r chi.Router) {
		// ==================== PUBLIC ROUTES ====================
		r.Get("/", tripHandler.GetTrips)
		r.Get("/{id}", tripHandler.GetTripByID)

		// ==================== DRIVER ROUTES ====================
		r.With(g.auth, g.staff).Get("/driver/{driverId}", tripHandler.GetTripsByDriver)

		// ==================== ADMIN ROUTES ====================
		r.Group(func(r chi.Router) {
			r.Use(g.auth, g.admin)

			r.Post("/", tripHandler.CreateTrip)
			r.Put("/{id}", tripHandler.UpdateTrip)
			r.Delete("/{id}", tripHandler.DeleteTrip)
		})
	})
}
