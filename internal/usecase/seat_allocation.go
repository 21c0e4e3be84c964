package usecase

import (
	"context"
	"fmt"
	"time"

	"bus-booking/internal/apperr"
	"bus-booking/internal/data/entity"
	"bus-booking/internal/data/repository"
	"bus-booking/pkg/keylock"
	"bus-booking/pkg/qrcode"
	"bus-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ReserveInput struct {
	TripID         uuid.UUID
	SeatNumber     int
	PassengerName  string
	PassengerPhone string
	UserID         uuid.UUID
}

// SeatAllocator is the only writer of Trip.AvailableSeats. Every operation
// holds the per-trip lock and runs in one transaction that locks the trip row.
type SeatAllocator interface {
	Reserve(ctx context.Context, in ReserveInput) (*entity.Booking, error)
	Release(ctx context.Context, bookingID uuid.UUID, caller utils.Identity) (*entity.Booking, error)
	ResizeTrip(ctx context.Context, tripID uuid.UUID, newTotalSeats int) (*entity.Trip, error)
}

type seatAllocator struct {
	repo  *repository.Repository
	locks *keylock.Locker
	now   func() time.Time
	log   *zap.Logger
}

func newSeatAllocator(repo *repository.Repository, locks *keylock.Locker, log *zap.Logger) *seatAllocator {
	return &seatAllocator{
		repo:  repo,
		locks: locks,
		now:   time.Now,
		log:   log.With(zap.String("service", "seat_allocation")),
	}
}

func (s *seatAllocator) Reserve(ctx context.Context, in ReserveInput) (*entity.Booking, error) {
	unlock := s.locks.Lock(in.TripID.String())
	defer unlock()

	var booking *entity.Booking
	err := s.repo.Atomic.WithinTx(ctx, func(tx *repository.Repository) error {
		trip, err := tx.Trip.FindByIDForUpdate(ctx, in.TripID)
		if err != nil {
			return err
		}
		if trip == nil {
			return apperr.NotFound("trip not found")
		}
		if trip.Status != entity.TripScheduled {
			return apperr.Conflict("trip is %s and does not accept bookings", trip.Status)
		}
		if in.SeatNumber < 1 || in.SeatNumber > trip.TotalSeats {
			return apperr.Validation(
				map[string]string{"seat_number": fmt.Sprintf("Must be between 1 and %d", trip.TotalSeats)},
				"seat number %d is out of range", in.SeatNumber,
			)
		}
		if trip.AvailableSeats == 0 {
			return apperr.Conflict("no available seats")
		}

		taken, err := tx.Booking.ExistsActiveSeat(ctx, trip.ID, in.SeatNumber)
		if err != nil {
			return err
		}
		if taken {
			return apperr.Conflict("seat %d is already taken", in.SeatNumber)
		}

		ok, err := tx.Trip.DecrementAvailable(ctx, trip.ID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Conflict("no available seats")
		}

		id := uuid.New()
		payload, err := qrcode.NewPayload(id, trip.ID, in.PassengerName, in.SeatNumber).Encode()
		if err != nil {
			return err
		}

		now := s.now()
		b := &entity.Booking{
			BaseNoDelete: entity.BaseNoDelete{
				ID:        id,
				CreatedAt: now,
				UpdatedAt: now,
			},
			UserID:         in.UserID,
			TripID:         trip.ID,
			SeatNumber:     in.SeatNumber,
			QRPayload:      payload,
			PassengerName:  in.PassengerName,
			PassengerPhone: in.PassengerPhone,
			Status:         entity.BookingConfirmed,
			BookingDate:    now,
			TotalPrice:     trip.Price,
		}
		if err := tx.Booking.Create(ctx, b); err != nil {
			return err
		}

		booking = b
		return nil
	})
	if err != nil {
		s.log.Warn("Reserve failed",
			zap.Error(err),
			zap.String("trip_id", in.TripID.String()),
			zap.Int("seat_number", in.SeatNumber),
		)
		return nil, err
	}

	s.log.Info("Seat reserved",
		zap.String("booking_id", booking.ID.String()),
		zap.String("trip_id", booking.TripID.String()),
		zap.Int("seat_number", booking.SeatNumber),
	)
	return booking, nil
}

func (s *seatAllocator) Release(ctx context.Context, bookingID uuid.UUID, caller utils.Identity) (*entity.Booking, error) {
	// Look the booking up once outside the lock to learn which trip to lock
	current, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, apperr.NotFound("booking not found")
	}

	unlock := s.locks.Lock(current.TripID.String())
	defer unlock()

	var released *entity.Booking
	err = s.repo.Atomic.WithinTx(ctx, func(tx *repository.Repository) error {
		if _, err := tx.Trip.FindByIDForUpdate(ctx, current.TripID); err != nil {
			return err
		}

		booking, err := tx.Booking.FindByIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if booking == nil {
			return apperr.NotFound("booking not found")
		}
		if booking.UserID != caller.UserID && caller.Role != string(entity.RoleAdmin) {
			return apperr.Forbidden("not authorized to cancel this booking")
		}

		switch booking.Status {
		case entity.BookingCancelled:
			return apperr.InvalidState("booking is already cancelled")
		case entity.BookingCompleted:
			return apperr.InvalidTransition("a completed booking cannot be cancelled")
		}

		if err := tx.Booking.UpdateStatus(ctx, booking.ID, entity.BookingCancelled, nil); err != nil {
			return err
		}
		if err := tx.Trip.IncrementAvailable(ctx, booking.TripID); err != nil {
			return err
		}

		booking.Status = entity.BookingCancelled
		booking.UpdatedAt = s.now()
		released = booking
		return nil
	})
	if err != nil {
		s.log.Warn("Release failed", zap.Error(err), zap.String("booking_id", bookingID.String()))
		return nil, err
	}

	s.log.Info("Seat released",
		zap.String("booking_id", released.ID.String()),
		zap.String("trip_id", released.TripID.String()),
		zap.Int("seat_number", released.SeatNumber),
	)
	return released, nil
}

func (s *seatAllocator) ResizeTrip(ctx context.Context, tripID uuid.UUID, newTotalSeats int) (*entity.Trip, error) {
	unlock := s.locks.Lock(tripID.String())
	defer unlock()

	var resized *entity.Trip
	err := s.repo.Atomic.WithinTx(ctx, func(tx *repository.Repository) error {
		trip, err := tx.Trip.FindByIDForUpdate(ctx, tripID)
		if err != nil {
			return err
		}
		if trip == nil {
			return apperr.NotFound("trip not found")
		}
		if err := s.resizeLocked(ctx, tx, trip, newTotalSeats); err != nil {
			return err
		}
		resized = trip
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resized, nil
}

// resizeLocked changes the capacity of a trip whose row and key lock are
// already held by the caller. AvailableSeats shifts by the same delta.
func (s *seatAllocator) resizeLocked(ctx context.Context, tx *repository.Repository, trip *entity.Trip, newTotalSeats int) error {
	if newTotalSeats < 1 {
		return apperr.Validation(map[string]string{"total_seats": "Minimum value is 1"}, "total seats must be at least 1")
	}
	if newTotalSeats == trip.TotalSeats {
		return nil
	}

	active, err := tx.Booking.CountActiveByTrip(ctx, trip.ID)
	if err != nil {
		return err
	}
	if active > newTotalSeats {
		return apperr.Conflict("trip has %d active bookings, cannot shrink to %d seats", active, newTotalSeats)
	}

	highest, err := tx.Booking.MaxActiveSeat(ctx, trip.ID)
	if err != nil {
		return err
	}
	if highest > newTotalSeats {
		return apperr.Conflict("seat %d is booked, cannot shrink to %d seats", highest, newTotalSeats)
	}

	available := trip.AvailableSeats + (newTotalSeats - trip.TotalSeats)
	if available < 0 {
		available = 0
	}
	if available > newTotalSeats {
		available = newTotalSeats
	}

	if err := tx.Trip.UpdateCapacity(ctx, trip.ID, newTotalSeats, available); err != nil {
		return err
	}

	s.log.Info("Trip resized",
		zap.String("trip_id", trip.ID.String()),
		zap.Int("from", trip.TotalSeats),
		zap.Int("to", newTotalSeats),
		zap.Int("available_seats", available),
	)

	trip.TotalSeats = newTotalSeats
	trip.AvailableSeats = available
	return nil
}
