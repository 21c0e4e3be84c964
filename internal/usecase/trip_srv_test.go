package usecase

import (
	"context"
	"testing"

	"bus-booking/internal/apperr"
	"bus-booking/internal/data/entity"
	"bus-booking/internal/dto/request"
	"bus-booking/pkg/broker"
)

func strPtr(s string) *string { return &s }

func TestCreateTripStartsFullyAvailable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Trip.CreateTrip(ctx, &request.CreateTripRequest{
		From:       "Kabul",
		To:         "Mazar",
		Date:       "2026-12-01",
		Time:       "07:00",
		Price:      30,
		TotalSeats: 40,
		DriverID:   f.driver.ID.String(),
	})
	if err != nil {
		t.Fatalf("create trip: %v", err)
	}
	if resp.AvailableSeats != 40 || resp.Status != entity.TripScheduled {
		t.Fatalf("unexpected trip: %+v", resp)
	}
	if resp.Driver == nil || resp.Driver.Name != "Driver" {
		t.Fatalf("expected driver summary, got %+v", resp.Driver)
	}

	_, err = f.svc.Trip.CreateTrip(ctx, &request.CreateTripRequest{
		From: "A", To: "B", Date: "2026-12-01", Time: "07:00", TotalSeats: 10,
		DriverID: f.ali.ID.String(),
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("passenger as driver: expected validation error, got %v", err)
	}
}

func TestGetTripsFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addTrip(t, 10)

	trips, err := f.svc.Trip.GetTrips(ctx, &request.TripFilterRequest{From: "kab", Date: "2026-11-01"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(trips) != 1 {
		t.Fatalf("got %d trips, want 1", len(trips))
	}

	trips, err = f.svc.Trip.GetTrips(ctx, &request.TripFilterRequest{Date: "2026-11-03"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(trips) != 0 {
		t.Fatalf("trips before the date filter were returned")
	}
}

func TestUpdateTripPriceKeepsBookingSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	trip := f.addTrip(t, 3)
	b := f.reserve(t, trip, 1, f.ali)

	price := 99.5
	if _, err := f.svc.Trip.UpdateTrip(ctx, trip.ID.String(), &request.UpdateTripRequest{Price: &price}); err != nil {
		t.Fatalf("update price: %v", err)
	}
	if got := f.booking(t, b.ID).TotalPrice; got != 25 {
		t.Fatalf("booking price = %v, want 25", got)
	}
	if got := f.trip(t, trip.ID).Price; got != 99.5 {
		t.Fatalf("trip price = %v, want 99.5", got)
	}
}

func TestUpdateTripResizesThroughAllocator(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	trip := f.addTrip(t, 4)
	f.reserve(t, trip, 3, f.ali)

	seats := 2
	_, err := f.svc.Trip.UpdateTrip(ctx, trip.ID.String(), &request.UpdateTripRequest{TotalSeats: &seats})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("shrinking below a booked seat: expected conflict, got %v", err)
	}

	seats = 8
	resp, err := f.svc.Trip.UpdateTrip(ctx, trip.ID.String(), &request.UpdateTripRequest{TotalSeats: &seats})
	if err != nil {
		t.Fatalf("grow: %v", err)
	}
	if resp.TotalSeats != 8 || resp.AvailableSeats != 7 {
		t.Fatalf("total=%d available=%d, want 8 and 7", resp.TotalSeats, resp.AvailableSeats)
	}
}

func TestCompletingTripCompletesBoardedBookings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	trip := f.addTrip(t, 3)

	boarded := f.reserve(t, trip, 1, f.ali)
	if _, err := f.lifecycle.Transition(ctx, boarded.ID, entity.BookingBoarded, boarded.QRPayload, as(f.driver)); err != nil {
		t.Fatalf("board: %v", err)
	}
	noShow := f.reserve(t, trip, 2, f.sara)

	if _, err := f.svc.Trip.UpdateTrip(ctx, trip.ID.String(), &request.UpdateTripRequest{Status: strPtr("completed")}); err != nil {
		t.Fatalf("complete trip: %v", err)
	}

	if got := f.booking(t, boarded.ID).Status; got != entity.BookingCompleted {
		t.Fatalf("boarded booking status = %s, want completed", got)
	}
	if got := f.booking(t, noShow.ID).Status; got != entity.BookingConfirmed {
		t.Fatalf("confirmed booking status = %s, want confirmed", got)
	}

	routes := f.pub.Routes()
	if len(routes) == 0 || routes[len(routes)-1] != broker.RouteBookingCompleted {
		t.Fatalf("expected a booking.completed event, got %v", routes)
	}
}

func TestDeleteTripWithBookingsConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	trip := f.addTrip(t, 3)
	b := f.reserve(t, trip, 1, f.ali)
	if _, err := f.seats.Release(ctx, b.ID, as(f.ali)); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if err := f.svc.Trip.DeleteTrip(ctx, trip.ID.String()); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("delete with cancelled booking: expected conflict, got %v", err)
	}

	empty := f.addTrip(t, 3)
	if err := f.svc.Trip.DeleteTrip(ctx, empty.ID.String()); err != nil {
		t.Fatalf("delete empty trip: %v", err)
	}
	if err := f.svc.Trip.DeleteTrip(ctx, empty.ID.String()); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("delete twice: expected not found, got %v", err)
	}
}

func TestGetTripsByDriverScope(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addTrip(t, 3)

	trips, err := f.svc.Trip.GetTripsByDriver(ctx, as(f.driver), f.driver.ID.String())
	if err != nil || len(trips) != 1 {
		t.Fatalf("own trips: %v, %d", err, len(trips))
	}

	other := f.addUser(t, "Other", "other@example.com", entity.RoleDriver)
	if _, err := f.svc.Trip.GetTripsByDriver(ctx, as(other), f.driver.ID.String()); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("foreign driver: expected forbidden, got %v", err)
	}
	if _, err := f.svc.Trip.GetTripsByDriver(ctx, as(f.admin), f.driver.ID.String()); err != nil {
		t.Fatalf("admin: %v", err)
	}
}
