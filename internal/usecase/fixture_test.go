package usecase

import (
	"context"
	"testing"
	"time"

	"bus-booking/internal/data/entity"
	"bus-booking/internal/data/repository"
	"bus-booking/pkg/keylock"
	"bus-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type fixture struct {
	store     *memStore
	repo      *repository.Repository
	pub       *recordingPublisher
	svc       *Service
	seats     *seatAllocator
	lifecycle *lifecycleManager

	admin, driver, ali, sara *entity.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := newMemStore()
	repo := store.repository()
	pub := &recordingPublisher{}
	log := zap.NewNop()
	config := &utils.Config{JWT: utils.JWTConfig{Secret: "test-secret", ExpiryHours: 1}}

	locks := keylock.New()
	seats := newSeatAllocator(repo, locks, log)
	lifecycle := newLifecycleManager(repo, seats, locks, log)

	f := &fixture{
		store:     store,
		repo:      repo,
		pub:       pub,
		seats:     seats,
		lifecycle: lifecycle,
		svc: &Service{
			Auth:    NewAuthService(repo, config, log),
			User:    NewUserService(repo, log),
			Trip:    newTripService(repo, seats, lifecycle, locks, pub, log),
			Booking: NewBookingService(repo, seats, lifecycle, pub, log),
		},
	}

	f.admin = f.addUser(t, "Admin", "admin@example.com", entity.RoleAdmin)
	f.driver = f.addUser(t, "Driver", "driver@example.com", entity.RoleDriver)
	f.ali = f.addUser(t, "Ali", "ali@example.com", entity.RolePassenger)
	f.sara = f.addUser(t, "Sara", "sara@example.com", entity.RolePassenger)
	return f
}

func (f *fixture) addUser(t *testing.T, name, email string, role entity.UserRole) *entity.User {
	t.Helper()
	hash, err := utils.HashPassword("secret123")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	now := time.Now()
	u := &entity.User{
		Base:         entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if err := f.repo.User.Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func (f *fixture) addTrip(t *testing.T, totalSeats int) *entity.Trip {
	t.Helper()
	now := time.Now()
	trip := &entity.Trip{
		BaseNoDelete:   entity.BaseNoDelete{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		From:           "Kabul",
		To:             "Herat",
		Date:           time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC),
		Time:           "08:30",
		Price:          25,
		TotalSeats:     totalSeats,
		AvailableSeats: totalSeats,
		Status:         entity.TripScheduled,
		DriverID:       f.driver.ID,
	}
	if err := f.repo.Trip.Create(context.Background(), trip); err != nil {
		t.Fatalf("create trip: %v", err)
	}
	return trip
}

func (f *fixture) trip(t *testing.T, id uuid.UUID) *entity.Trip {
	t.Helper()
	trip, err := f.repo.Trip.FindByID(context.Background(), id)
	if err != nil || trip == nil {
		t.Fatalf("load trip %s: %v", id, err)
	}
	return trip
}

func (f *fixture) booking(t *testing.T, id uuid.UUID) *entity.Booking {
	t.Helper()
	b, err := f.repo.Booking.FindByID(context.Background(), id)
	if err != nil || b == nil {
		t.Fatalf("load booking %s: %v", id, err)
	}
	return b
}

func (f *fixture) reserve(t *testing.T, trip *entity.Trip, seat int, passenger *entity.User) *entity.Booking {
	t.Helper()
	b, err := f.seats.Reserve(context.Background(), ReserveInput{
		TripID:         trip.ID,
		SeatNumber:     seat,
		PassengerName:  passenger.Name,
		PassengerPhone: "0700000000",
		UserID:         passenger.ID,
	})
	if err != nil {
		t.Fatalf("reserve seat %d: %v", seat, err)
	}
	return b
}

func as(u *entity.User) utils.Identity {
	return utils.Identity{UserID: u.ID, Role: string(u.Role)}
}
