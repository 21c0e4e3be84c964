package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bus-booking/internal/apperr"
	"bus-booking/internal/data/entity"
	"bus-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type TripRepository interface {
	Create(ctx context.Context, trip *entity.Trip) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Trip, error)
	// FindByIDForUpdate locks the trip row until the surrounding transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Trip, error)
	FindAll(ctx context.Context, filter entity.TripFilter) ([]*entity.Trip, error)
	FindByDriver(ctx context.Context, driverID uuid.UUID) ([]*entity.Trip, error)
	Update(ctx context.Context, trip *entity.Trip) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Seat counters
	DecrementAvailable(ctx context.Context, id uuid.UUID) (bool, error)
	IncrementAvailable(ctx context.Context, id uuid.UUID) error
	UpdateCapacity(ctx context.Context, id uuid.UUID, totalSeats, availableSeats int) error
}

type tripRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewTripRepository(db database.Querier, log *zap.Logger) TripRepository {
	return &tripRepository{
		db:  db,
		log: log.With(zap.String("repository", "trip")),
	}
}

const tripColumns = `id, origin, destination, trip_date, trip_time, price, total_seats,
	available_seats, status, description, driver_id, created_at, updated_at`

func scanTrip(row pgx.Row) (*entity.Trip, error) {
	var trip entity.Trip
	err := row.Scan(
		&trip.ID,
		&trip.From,
		&trip.To,
		&trip.Date,
		&trip.Time,
		&trip.Price,
		&trip.TotalSeats,
		&trip.AvailableSeats,
		&trip.Status,
		&trip.Description,
		&trip.DriverID,
		&trip.CreatedAt,
		&trip.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

func (r *tripRepository) Create(ctx context.Context, trip *entity.Trip) error {
	query := `
		INSERT INTO trips (id, origin, destination, trip_date, trip_time, price, total_seats,
		                   available_seats, status, description, driver_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.Exec(ctx, query,
		trip.ID,
		trip.From,
		trip.To,
		trip.Date,
		trip.Time,
		trip.Price,
		trip.TotalSeats,
		trip.AvailableSeats,
		trip.Status,
		trip.Description,
		trip.DriverID,
		trip.CreatedAt,
		trip.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create trip", zap.Error(err), zap.String("trip_id", trip.ID.String()))
		return translate(err, "create trip")
	}

	return nil
}

func (r *tripRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Trip, error) {
	return r.findOne(ctx, `SELECT `+tripColumns+` FROM trips WHERE id = $1`, id)
}

func (r *tripRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Trip, error) {
	return r.findOne(ctx, `SELECT `+tripColumns+` FROM trips WHERE id = $1 FOR UPDATE`, id)
}

func (r *tripRepository) findOne(ctx context.Context, query string, id uuid.UUID) (*entity.Trip, error) {
	trip, err := scanTrip(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find trip", zap.Error(err), zap.String("trip_id", id.String()))
		return nil, fmt.Errorf("find trip %s: %w", id.String(), err)
	}
	return trip, nil
}

// FindAll applies the optional filters: from/to are case-insensitive
// substrings, date keeps trips on or after it, status is exact.
func (r *tripRepository) FindAll(ctx context.Context, filter entity.TripFilter) ([]*entity.Trip, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + tripColumns + ` FROM trips WHERE 1=1`)

	args := []any{}
	argCount := 1

	if filter.From != "" {
		queryBuilder.WriteString(fmt.Sprintf(` AND origin ILIKE $%d ESCAPE '\'`, argCount))
		args = append(args, containsPattern(filter.From))
		argCount++
	}
	if filter.To != "" {
		queryBuilder.WriteString(fmt.Sprintf(` AND destination ILIKE $%d ESCAPE '\'`, argCount))
		args = append(args, containsPattern(filter.To))
		argCount++
	}
	if filter.Date != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND trip_date >= $%d", argCount))
		args = append(args, *filter.Date)
		argCount++
	}
	if filter.Status != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND status = $%d", argCount))
		args = append(args, filter.Status)
	}

	queryBuilder.WriteString(" ORDER BY trip_date, trip_time")

	return r.list(ctx, "find all trips", queryBuilder.String(), args...)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern matches s literally anywhere in the column
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func (r *tripRepository) FindByDriver(ctx context.Context, driverID uuid.UUID) ([]*entity.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE driver_id = $1 ORDER BY trip_date, trip_time`
	return r.list(ctx, "find trips by driver", query, driverID)
}

func (r *tripRepository) list(ctx context.Context, op, query string, args ...any) ([]*entity.Trip, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to "+op, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	trips := make([]*entity.Trip, 0)
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			r.log.Error("Failed to scan trip row", zap.Error(err))
			return nil, fmt.Errorf("scan trip row: %w", err)
		}
		trips = append(trips, trip)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trip rows: %w", err)
	}

	return trips, nil
}

// Update writes the descriptive fields. Seat counters are changed only
// through the dedicated methods below.
func (r *tripRepository) Update(ctx context.Context, trip *entity.Trip) error {
	query := `
		UPDATE trips
		SET origin = $2, destination = $3, trip_date = $4, trip_time = $5, price = $6,
		    status = $7, description = $8, driver_id = $9, updated_at = $10
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		trip.ID,
		trip.From,
		trip.To,
		trip.Date,
		trip.Time,
		trip.Price,
		trip.Status,
		trip.Description,
		trip.DriverID,
		trip.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to update trip", zap.Error(err), zap.String("trip_id", trip.ID.String()))
		return translate(err, "update trip %s", trip.ID.String())
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("trip not found")
	}

	return nil
}

func (r *tripRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM trips WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete trip", zap.Error(err), zap.String("trip_id", id.String()))
		return translate(err, "delete trip %s", id.String())
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("trip not found")
	}

	return nil
}

// DecrementAvailable takes one seat. It reports false when the trip is
// already full, leaving the row untouched.
func (r *tripRepository) DecrementAvailable(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE trips
		SET available_seats = available_seats - 1, updated_at = NOW()
		WHERE id = $1 AND available_seats > 0
	`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to decrement available seats", zap.Error(err), zap.String("trip_id", id.String()))
		return false, translate(err, "decrement available seats %s", id.String())
	}

	return result.RowsAffected() == 1, nil
}

// IncrementAvailable returns one seat, never exceeding total_seats
func (r *tripRepository) IncrementAvailable(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE trips
		SET available_seats = LEAST(available_seats + 1, total_seats), updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to increment available seats", zap.Error(err), zap.String("trip_id", id.String()))
		return fmt.Errorf("increment available seats %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("trip not found")
	}

	return nil
}

func (r *tripRepository) UpdateCapacity(ctx context.Context, id uuid.UUID, totalSeats, availableSeats int) error {
	query := `
		UPDATE trips
		SET total_seats = $2, available_seats = $3, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, id, totalSeats, availableSeats)
	if err != nil {
		r.log.Error("Failed to update trip capacity",
			zap.Error(err),
			zap.String("trip_id", id.String()),
			zap.Int("total_seats", totalSeats),
		)
		return translate(err, "update trip capacity %s", id.String())
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("trip not found")
	}

	return nil
}
