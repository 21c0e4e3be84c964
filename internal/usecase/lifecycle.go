package usecase

import (
	"context"
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

// LifecycleManager moves bookings through
//
//	confirmed -> boarded -> completed
//	confirmed | boarded -> cancelled
//
// Cancellation is delegated to the seat allocator so the seat is returned.
type LifecycleManager interface {
	Transition(ctx context.Context, bookingID uuid.UUID, target entity.BookingStatus, scanned string, caller utils.Identity) (*entity.Booking, error)
}

type lifecycleManager struct {
	repo  *repository.Repository
	seats SeatAllocator
	locks *keylock.Locker
	now   func() time.Time
	log   *zap.Logger
}

func newLifecycleManager(repo *repository.Repository, seats SeatAllocator, locks *keylock.Locker, log *zap.Logger) *lifecycleManager {
	return &lifecycleManager{
		repo:  repo,
		seats: seats,
		locks: locks,
		now:   time.Now,
		log:   log.With(zap.String("service", "lifecycle")),
	}
}

func isStaff(role string) bool {
	return role == string(entity.RoleAdmin) || role == string(entity.RoleDriver)
}

func (m *lifecycleManager) Transition(ctx context.Context, bookingID uuid.UUID, target entity.BookingStatus, scanned string, caller utils.Identity) (*entity.Booking, error) {
	if target == entity.BookingCancelled {
		return m.seats.Release(ctx, bookingID, caller)
	}
	if !isStaff(caller.Role) {
		return nil, apperr.Forbidden("only drivers and admins can change booking status")
	}

	current, err := m.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, apperr.NotFound("booking not found")
	}

	unlock := m.locks.Lock(current.TripID.String())
	defer unlock()

	var updated *entity.Booking
	err = m.repo.Atomic.WithinTx(ctx, func(tx *repository.Repository) error {
		trip, err := tx.Trip.FindByIDForUpdate(ctx, current.TripID)
		if err != nil {
			return err
		}
		if trip == nil {
			return apperr.NotFound("trip not found")
		}
		if caller.Role == string(entity.RoleDriver) && trip.DriverID != caller.UserID {
			return apperr.Forbidden("driver is not assigned to this trip")
		}

		booking, err := tx.Booking.FindByIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if booking == nil {
			return apperr.NotFound("booking not found")
		}

		var boardingTime *time.Time
		switch {
		case booking.Status == entity.BookingConfirmed && target == entity.BookingBoarded:
			if err := verifyBoardingPayload(booking, scanned); err != nil {
				return err
			}
			now := m.now()
			boardingTime = &now
		case booking.Status == entity.BookingBoarded && target == entity.BookingCompleted:
		default:
			return apperr.InvalidTransition("cannot move booking from %s to %s", booking.Status, target)
		}

		if err := tx.Booking.UpdateStatus(ctx, booking.ID, target, boardingTime); err != nil {
			return err
		}

		booking.Status = target
		if boardingTime != nil {
			booking.BoardingTime = boardingTime
		}
		updated = booking
		return nil
	})
	if err != nil {
		m.log.Warn("Status transition failed",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
			zap.String("target", string(target)),
		)
		return nil, err
	}

	m.log.Info("Booking status changed",
		zap.String("booking_id", updated.ID.String()),
		zap.String("status", string(updated.Status)),
		zap.String("by", caller.UserID.String()),
	)
	return updated, nil
}

// verifyBoardingPayload checks that the scanned payload names this booking,
// its trip and its seat.
func verifyBoardingPayload(booking *entity.Booking, scanned string) error {
	if scanned == "" {
		return apperr.PayloadMismatch("qr payload is required for boarding")
	}
	got, err := qrcode.Decode(scanned)
	if err != nil {
		return apperr.Wrap(apperr.KindPayloadMismatch, err, "qr payload is not readable")
	}
	want := qrcode.NewPayload(booking.ID, booking.TripID, booking.PassengerName, booking.SeatNumber)
	if !want.Matches(got) {
		return apperr.PayloadMismatch("qr payload does not match booking")
	}
	return nil
}

// completeTripLocked finishes every boarded booking of a trip that is being
// marked completed. The caller holds the trip lock and transaction.
func (m *lifecycleManager) completeTripLocked(ctx context.Context, tx *repository.Repository, tripID uuid.UUID) ([]uuid.UUID, error) {
	ids, err := tx.Booking.CompleteBoardedByTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if len(ids) > 0 {
		m.log.Info("Boarded bookings completed",
			zap.String("trip_id", tripID.String()),
			zap.Int("count", len(ids)),
		)
	}
	return ids, nil
}
