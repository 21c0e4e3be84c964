package wire

import (
	"bus-booking/internal/adaptor"
	"bus-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBooking(
	r chi.Router,
	bookingHandler *adaptor.BookingHandler,
	g *guards,
	config *utils.Config,
	log *zap.Logger,
) {
	r.Route("/bookings", func(r chi.Router) {
		r.Use(g.auth)

		// any authenticated user; ownership is checked in the service
		r.With(g.rateLimit).Post("/", bookingHandler.CreateBooking)
		r.Get("/my-bookings", bookingHandler.GetMyBookings)
		r.Get("/{id}", bookingHandler.GetBookingByID)
		r.Get("/{id}/ticket", bookingHandler.GetTicket)
		r.Delete("/{id}", bookingHandler.CancelBooking)

		// drivers and admins
		r.With(g.staff).Get("/trip/{tripId}", bookingHandler.GetBookingsByTrip)
		r.With(g.staff).Put("/{id}/status", bookingHandler.UpdateStatus)

		// admins
		r.With(g.admin).Get("/", bookingHandler.GetAllBookings)
	})
}
