package repository

import (
	"context"

	"bus-booking/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	User    UserRepository
	Session SessionRepository
	Trip    TripRepository
	Booking BookingRepository

	// Atomic runs a unit of work against repositories bound to one transaction
	Atomic Transactor
}

// Transactor executes fn inside a single database transaction. The
// *Repository handed to fn must be used for every statement of the unit.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(tx *Repository) error) error
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	repo := bind(db, log)
	repo.Atomic = &pgTransactor{db: db, log: log}
	return repo
}

func bind(q database.Querier, log *zap.Logger) *Repository {
	return &Repository{
		User:    NewUserRepository(q, log),
		Session: NewSessionRepository(q, log),
		Trip:    NewTripRepository(q, log),
		Booking: NewBookingRepository(q, log),
	}
}
