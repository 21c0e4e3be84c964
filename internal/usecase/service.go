package usecase

import (
	"bus-booking/internal/data/repository"
	"bus-booking/pkg/broker"
	"bus-booking/pkg/keylock"
	"bus-booking/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth    AuthService
	User    UserService
	Trip    TripService
	Booking BookingService
}

func NewService(repo *repository.Repository, publisher broker.Publisher, config *utils.Config, log *zap.Logger) *Service {
	// one lock table shared by everything that touches a trip's seats
	locks := keylock.New()
	seats := newSeatAllocator(repo, locks, log)
	lifecycle := newLifecycleManager(repo, seats, locks, log)

	return &Service{
		Auth:    NewAuthService(repo, config, log),
		User:    NewUserService(repo, log),
		Trip:    newTripService(repo, seats, lifecycle, locks, publisher, log),
		Booking: NewBookingService(repo, seats, lifecycle, publisher, log),
	}
}
