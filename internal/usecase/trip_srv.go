package usecase

import (
	"context"
	"time"

	"bus-booking/internal/apperr"
	"bus-booking/internal/data/entity"
	"bus-booking/internal/data/repository"
	"bus-booking/internal/dto/request"
	"bus-booking/internal/dto/response"
	"bus-booking/pkg/broker"
	"bus-booking/pkg/keylock"
	"bus-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TripService interface {
	GetTrips(ctx context.Context, req *request.TripFilterRequest) ([]response.TripResponse, error)
	GetTripByID(ctx context.Context, tripID string) (*response.TripResponse, error)
	CreateTrip(ctx context.Context, req *request.CreateTripRequest) (*response.TripResponse, error)
	UpdateTrip(ctx context.Context, tripID string, req *request.UpdateTripRequest) (*response.TripResponse, error)
	DeleteTrip(ctx context.Context, tripID string) error
	GetTripsByDriver(ctx context.Context, caller utils.Identity, driverID string) ([]response.TripResponse, error)
}

type tripService struct {
	repo      *repository.Repository
	seats     *seatAllocator
	lifecycle *lifecycleManager
	locks     *keylock.Locker
	events    eventSink
	now       func() time.Time
	log       *zap.Logger
}

func newTripService(
	repo *repository.Repository,
	seats *seatAllocator,
	lifecycle *lifecycleManager,
	locks *keylock.Locker,
	publisher broker.Publisher,
	log *zap.Logger,
) *tripService {
	log = log.With(zap.String("service", "trip"))
	return &tripService{
		repo:      repo,
		seats:     seats,
		lifecycle: lifecycle,
		locks:     locks,
		events:    eventSink{pub: publisher, log: log},
		now:       time.Now,
		log:       log,
	}
}

func (s *tripService) GetTrips(ctx context.Context, req *request.TripFilterRequest) ([]response.TripResponse, error) {
	filter := entity.TripFilter{
		From:   req.From,
		To:     req.To,
		Status: entity.TripStatus(req.Status),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperr.Validation(map[string]string{"status": "Unknown trip status"}, "invalid status %q", req.Status)
	}
	if req.Date != "" {
		d, err := parseDate("date", req.Date)
		if err != nil {
			return nil, err
		}
		filter.Date = &d
	}

	trips, err := s.repo.Trip.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.presentAll(ctx, trips)
}

func (s *tripService) GetTripByID(ctx context.Context, tripID string) (*response.TripResponse, error) {
	id, err := parseID("id", tripID)
	if err != nil {
		return nil, err
	}

	trip, err := s.repo.Trip.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if trip == nil {
		return nil, apperr.NotFound("trip not found")
	}
	return s.present(ctx, trip)
}

func (s *tripService) CreateTrip(ctx context.Context, req *request.CreateTripRequest) (*response.TripResponse, error) {
	date, err := parseDate("date", req.Date)
	if err != nil {
		return nil, err
	}
	driverID, err := s.checkDriver(ctx, req.DriverID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	trip := &entity.Trip{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		From:           req.From,
		To:             req.To,
		Date:           date,
		Time:           req.Time,
		Price:          req.Price,
		TotalSeats:     req.TotalSeats,
		AvailableSeats: req.TotalSeats,
		Status:         entity.TripScheduled,
		Description:    req.Description,
		DriverID:       driverID,
	}

	if err := s.repo.Trip.Create(ctx, trip); err != nil {
		return nil, err
	}

	s.log.Info("Trip created",
		zap.String("trip_id", trip.ID.String()),
		zap.String("from", trip.From),
		zap.String("to", trip.To),
		zap.Int("total_seats", trip.TotalSeats),
	)
	return s.present(ctx, trip)
}

// UpdateTrip applies a partial update. Capacity changes go through the seat
// allocator and marking a trip completed completes its boarded bookings, all
// in the same transaction.
func (s *tripService) UpdateTrip(ctx context.Context, tripID string, req *request.UpdateTripRequest) (*response.TripResponse, error) {
	id, err := parseID("id", tripID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(id.String())
	defer unlock()

	var (
		updated   *entity.Trip
		completed []uuid.UUID
	)
	err = s.repo.Atomic.WithinTx(ctx, func(tx *repository.Repository) error {
		trip, err := tx.Trip.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if trip == nil {
			return apperr.NotFound("trip not found")
		}
		previous := trip.Status

		if err := s.apply(ctx, trip, req); err != nil {
			return err
		}
		trip.UpdatedAt = s.now()

		if err := tx.Trip.Update(ctx, trip); err != nil {
			return err
		}
		if req.TotalSeats != nil {
			if err := s.seats.resizeLocked(ctx, tx, trip, *req.TotalSeats); err != nil {
				return err
			}
		}
		if trip.Status == entity.TripCompleted && previous != entity.TripCompleted {
			completed, err = s.lifecycle.completeTripLocked(ctx, tx, trip.ID)
			if err != nil {
				return err
			}
		}

		updated = trip
		return nil
	})
	if err != nil {
		s.log.Warn("Update trip failed", zap.Error(err), zap.String("trip_id", tripID))
		return nil, err
	}

	s.publishCompleted(ctx, completed)

	s.log.Info("Trip updated", zap.String("trip_id", updated.ID.String()), zap.String("status", string(updated.Status)))
	return s.present(ctx, updated)
}

func (s *tripService) apply(ctx context.Context, trip *entity.Trip, req *request.UpdateTripRequest) error {
	if req.From != nil {
		trip.From = *req.From
	}
	if req.To != nil {
		trip.To = *req.To
	}
	if req.Date != nil {
		d, err := parseDate("date", *req.Date)
		if err != nil {
			return err
		}
		trip.Date = d
	}
	if req.Time != nil {
		trip.Time = *req.Time
	}
	// Bookings keep the price they were created with
	if req.Price != nil {
		trip.Price = *req.Price
	}
	if req.Status != nil {
		status := entity.TripStatus(*req.Status)
		if !status.Valid() {
			return apperr.Validation(map[string]string{"status": "Unknown trip status"}, "invalid status %q", *req.Status)
		}
		trip.Status = status
	}
	if req.Description != nil {
		trip.Description = req.Description
	}
	if req.DriverID != nil {
		driverID, err := s.checkDriver(ctx, *req.DriverID)
		if err != nil {
			return err
		}
		trip.DriverID = driverID
	}
	return nil
}

func (s *tripService) publishCompleted(ctx context.Context, ids []uuid.UUID) {
	for _, id := range ids {
		b, err := s.repo.Booking.FindByID(ctx, id)
		if err != nil || b == nil {
			continue
		}
		s.events.bookingChanged(ctx, b)
	}
}

// DeleteTrip refuses while any booking, cancelled ones included, references the trip
func (s *tripService) DeleteTrip(ctx context.Context, tripID string) error {
	id, err := parseID("id", tripID)
	if err != nil {
		return err
	}

	unlock := s.locks.Lock(id.String())
	defer unlock()

	err = s.repo.Atomic.WithinTx(ctx, func(tx *repository.Repository) error {
		trip, err := tx.Trip.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if trip == nil {
			return apperr.NotFound("trip not found")
		}

		count, err := tx.Booking.CountByTrip(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return apperr.Conflict("cannot delete trip with existing bookings")
		}

		return tx.Trip.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.log.Info("Trip deleted", zap.String("trip_id", tripID))
	return nil
}

func (s *tripService) GetTripsByDriver(ctx context.Context, caller utils.Identity, driverID string) ([]response.TripResponse, error) {
	id, err := parseID("driver_id", driverID)
	if err != nil {
		return nil, err
	}
	if caller.Role == string(entity.RoleDriver) && caller.UserID != id {
		return nil, apperr.Forbidden("drivers can only list their own trips")
	}

	trips, err := s.repo.Trip.FindByDriver(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.presentAll(ctx, trips)
}

func (s *tripService) checkDriver(ctx context.Context, raw string) (uuid.UUID, error) {
	id, err := parseID("driver_id", raw)
	if err != nil {
		return uuid.Nil, err
	}

	driver, err := s.repo.User.FindByID(ctx, id)
	if err != nil {
		return uuid.Nil, err
	}
	if driver == nil || driver.Role != entity.RoleDriver || !driver.IsActive {
		return uuid.Nil, apperr.Validation(
			map[string]string{"driver_id": "Must reference an active driver"},
			"driver %s is not an active driver", raw,
		)
	}
	return id, nil
}

func (s *tripService) present(ctx context.Context, trip *entity.Trip) (*response.TripResponse, error) {
	driver, err := s.repo.User.FindByID(ctx, trip.DriverID)
	if err != nil {
		return nil, err
	}
	resp := response.TripToResponse(trip, driver)
	return &resp, nil
}

func (s *tripService) presentAll(ctx context.Context, trips []*entity.Trip) ([]response.TripResponse, error) {
	drivers := make(map[uuid.UUID]*entity.User)
	result := make([]response.TripResponse, 0, len(trips))

	for _, t := range trips {
		driver, ok := drivers[t.DriverID]
		if !ok {
			var err error
			driver, err = s.repo.User.FindByID(ctx, t.DriverID)
			if err != nil {
				return nil, err
			}
			drivers[t.DriverID] = driver
		}
		result = append(result, response.TripToResponse(t, driver))
	}
	return result, nil
}
