package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bus-booking/internal/apperr"
	"bus-booking/internal/data/entity"
	"bus-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Booking, error)
	FindByTripID(ctx context.Context, tripID uuid.UUID) ([]*entity.Booking, error)
	FindAll(ctx context.Context, status entity.BookingStatus, limit, offset int) ([]*entity.Booking, error)
	CountAll(ctx context.Context, status entity.BookingStatus) (int64, error)

	// Seat queries, active means any status other than cancelled
	ExistsActiveSeat(ctx context.Context, tripID uuid.UUID, seatNumber int) (bool, error)
	CountActiveByTrip(ctx context.Context, tripID uuid.UUID) (int, error)
	MaxActiveSeat(ctx context.Context, tripID uuid.UUID) (int, error)
	CountByTrip(ctx context.Context, tripID uuid.UUID) (int64, error)

	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.BookingStatus, boardingTime *time.Time) error
	CompleteBoardedByTrip(ctx context.Context, tripID uuid.UUID) ([]uuid.UUID, error)
}

type bookingRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewBookingRepository(db database.Querier, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `id, user_id, trip_id, seat_number, qr_payload, passenger_name, passenger_phone,
	status, booking_date, boarding_time, total_price, created_at, updated_at`

func scanBooking(row pgx.Row) (*entity.Booking, error) {
	var booking entity.Booking
	err := row.Scan(
		&booking.ID,
		&booking.UserID,
		&booking.TripID,
		&booking.SeatNumber,
		&booking.QRPayload,
		&booking.PassengerName,
		&booking.PassengerPhone,
		&booking.Status,
		&booking.BookingDate,
		&booking.BoardingTime,
		&booking.TotalPrice,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// Create inserts the booking. A second active booking on the same seat
// violates uq_bookings_active_seat and surfaces as Conflict.
func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	query := `
		INSERT INTO bookings (id, user_id, trip_id, seat_number, qr_payload, passenger_name,
		                      passenger_phone, status, booking_date, boarding_time, total_price,
		                      created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.Exec(ctx, query,
		booking.ID,
		booking.UserID,
		booking.TripID,
		booking.SeatNumber,
		booking.QRPayload,
		booking.PassengerName,
		booking.PassengerPhone,
		booking.Status,
		booking.BookingDate,
		booking.BoardingTime,
		booking.TotalPrice,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("trip_id", booking.TripID.String()),
			zap.Int("seat_number", booking.SeatNumber),
		)
		return translate(err, "seat %d is already booked", booking.SeatNumber)
	}

	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	return r.findOne(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
}

func (r *bookingRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	return r.findOne(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, id)
}

func (r *bookingRepository) findOne(ctx context.Context, query string, id uuid.UUID) (*entity.Booking, error) {
	booking, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking", zap.Error(err), zap.String("booking_id", id.String()))
		return nil, fmt.Errorf("find booking %s: %w", id.String(), err)
	}
	return booking, nil
}

func (r *bookingRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = $1 ORDER BY booking_date DESC`
	return r.list(ctx, "find bookings by user", query, userID)
}

// FindByTripID returns the trip roster ordered by seat number
func (r *bookingRepository) FindByTripID(ctx context.Context, tripID uuid.UUID) ([]*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE trip_id = $1 ORDER BY seat_number, booking_date`
	return r.list(ctx, "find bookings by trip", query, tripID)
}

func (r *bookingRepository) FindAll(ctx context.Context, status entity.BookingStatus, limit, offset int) ([]*entity.Booking, error) {
	if status != "" {
		query := `SELECT ` + bookingColumns + ` FROM bookings WHERE status = $1
			ORDER BY booking_date DESC LIMIT $2 OFFSET $3`
		return r.list(ctx, "find all bookings", query, status, limit, offset)
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings ORDER BY booking_date DESC LIMIT $1 OFFSET $2`
	return r.list(ctx, "find all bookings", query, limit, offset)
}

func (r *bookingRepository) list(ctx context.Context, op, query string, args ...any) ([]*entity.Booking, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to "+op, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	bookings := make([]*entity.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate booking rows: %w", err)
	}

	return bookings, nil
}

func (r *bookingRepository) CountAll(ctx context.Context, status entity.BookingStatus) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}

	var total int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		r.log.Error("Failed to count bookings", zap.Error(err))
		return 0, fmt.Errorf("count bookings: %w", err)
	}
	return total, nil
}

func (r *bookingRepository) ExistsActiveSeat(ctx context.Context, tripID uuid.UUID, seatNumber int) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE trip_id = $1 AND seat_number = $2 AND status <> 'cancelled'
		)
	`

	var exists bool
	if err := r.db.QueryRow(ctx, query, tripID, seatNumber).Scan(&exists); err != nil {
		r.log.Error("Failed to check seat", zap.Error(err), zap.String("trip_id", tripID.String()))
		return false, fmt.Errorf("check seat %d on trip %s: %w", seatNumber, tripID.String(), err)
	}
	return exists, nil
}

func (r *bookingRepository) CountActiveByTrip(ctx context.Context, tripID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM bookings WHERE trip_id = $1 AND status <> 'cancelled'`,
		tripID,
	).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count active bookings", zap.Error(err), zap.String("trip_id", tripID.String()))
		return 0, fmt.Errorf("count active bookings %s: %w", tripID.String(), err)
	}
	return count, nil
}

// MaxActiveSeat returns the highest held seat number, or 0 when none is held
func (r *bookingRepository) MaxActiveSeat(ctx context.Context, tripID uuid.UUID) (int, error) {
	var max int
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(MAX(seat_number), 0) FROM bookings WHERE trip_id = $1 AND status <> 'cancelled'`,
		tripID,
	).Scan(&max)
	if err != nil {
		r.log.Error("Failed to find max seat", zap.Error(err), zap.String("trip_id", tripID.String()))
		return 0, fmt.Errorf("max active seat %s: %w", tripID.String(), err)
	}
	return max, nil
}

// CountByTrip counts bookings in any status, cancelled included
func (r *bookingRepository) CountByTrip(ctx context.Context, tripID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings WHERE trip_id = $1`, tripID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count bookings by trip", zap.Error(err), zap.String("trip_id", tripID.String()))
		return 0, fmt.Errorf("count bookings %s: %w", tripID.String(), err)
	}
	return count, nil
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.BookingStatus, boardingTime *time.Time) error {
	query := `
		UPDATE bookings
		SET status = $2, boarding_time = COALESCE($3, boarding_time), updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, id, status, boardingTime)
	if err != nil {
		r.log.Error("Failed to update booking status",
			zap.Error(err),
			zap.String("booking_id", id.String()),
			zap.String("status", string(status)),
		)
		return translate(err, "update booking status %s", id.String())
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("booking not found")
	}

	return nil
}

// CompleteBoardedByTrip moves every boarded booking of the trip to completed
// and returns the affected ids.
func (r *bookingRepository) CompleteBoardedByTrip(ctx context.Context, tripID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		UPDATE bookings
		SET status = 'completed', updated_at = NOW()
		WHERE trip_id = $1 AND status = 'boarded'
		RETURNING id
	`

	rows, err := r.db.Query(ctx, query, tripID)
	if err != nil {
		r.log.Error("Failed to complete boarded bookings", zap.Error(err), zap.String("trip_id", tripID.String()))
		return nil, fmt.Errorf("complete boarded bookings %s: %w", tripID.String(), err)
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan completed booking id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate completed bookings: %w", err)
	}

	return ids, nil
}
