package usecase

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"bus-booking/internal/apperr"
	"bus-booking/internal/data/entity"
	"bus-booking/internal/data/repository"

	"github.com/google/uuid"
)

// memStore is an in-memory stand-in for the postgres repositories. Values
// are copied in and out so services cannot mutate stored rows by accident.
type memStore struct {
	mu       sync.Mutex
	users    map[uuid.UUID]entity.User
	sessions map[uuid.UUID]entity.Session
	trips    map[uuid.UUID]entity.Trip
	bookings map[uuid.UUID]entity.Booking
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[uuid.UUID]entity.User),
		sessions: make(map[uuid.UUID]entity.Session),
		trips:    make(map[uuid.UUID]entity.Trip),
		bookings: make(map[uuid.UUID]entity.Booking),
	}
}

func (s *memStore) repository() *repository.Repository {
	repo := &repository.Repository{
		User:    memUsers{s},
		Session: memSessions{s},
		Trip:    memTrips{s},
		Booking: memBookings{s},
	}
	repo.Atomic = memTx{repo}
	return repo
}

type memTx struct{ repo *repository.Repository }

func (t memTx) WithinTx(ctx context.Context, fn func(tx *repository.Repository) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(t.repo)
}

// ---- users ----

type memUsers struct{ s *memStore }

func (m memUsers) Create(_ context.Context, u *entity.User) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, existing := range m.s.users {
		if existing.DeletedAt == nil && strings.EqualFold(existing.Email, u.Email) {
			return apperr.Conflict("duplicate email")
		}
	}
	m.s.users[u.ID] = *u
	return nil
}

func (m memUsers) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	u, ok := m.s.users[id]
	if !ok || u.DeletedAt != nil {
		return nil, nil
	}
	return &u, nil
}

func (m memUsers) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, u := range m.s.users {
		if u.DeletedAt == nil && strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (m memUsers) FindAll(_ context.Context, limit, offset int) ([]*entity.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	all := make([]*entity.User, 0)
	for _, u := range m.s.users {
		if u.DeletedAt == nil {
			u := u
			all = append(all, &u)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Email < all[j].Email })
	if offset > len(all) {
		return []*entity.User{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m memUsers) CountAll(_ context.Context) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var n int64
	for _, u := range m.s.users {
		if u.DeletedAt == nil {
			n++
		}
	}
	return n, nil
}

func (m memUsers) FindDrivers(_ context.Context) ([]*entity.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := make([]*entity.User, 0)
	for _, u := range m.s.users {
		if u.DeletedAt == nil && u.Role == entity.RoleDriver && u.IsActive {
			u := u
			out = append(out, &u)
		}
	}
	return out, nil
}

func (m memUsers) Update(_ context.Context, u *entity.User) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.users[u.ID]; !ok {
		return apperr.NotFound("user not found")
	}
	m.s.users[u.ID] = *u
	return nil
}

func (m memUsers) Delete(_ context.Context, id uuid.UUID) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	u, ok := m.s.users[id]
	if !ok || u.DeletedAt != nil {
		return apperr.NotFound("user not found")
	}
	now := time.Now()
	u.DeletedAt = &now
	u.IsActive = false
	m.s.users[id] = u
	return nil
}

// ---- sessions ----

type memSessions struct{ s *memStore }

func (m memSessions) Create(_ context.Context, sess *entity.Session) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.sessions[sess.Token] = *sess
	return nil
}

func (m memSessions) FindValidSession(_ context.Context, token uuid.UUID) (*entity.Session, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	sess, ok := m.s.sessions[token]
	if !ok || !sess.Valid(time.Now()) {
		return nil, nil
	}
	return &sess, nil
}

func (m memSessions) Revoke(_ context.Context, token uuid.UUID) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	sess, ok := m.s.sessions[token]
	if !ok || sess.RevokedAt != nil {
		return apperr.NotFound("session not found or already revoked")
	}
	now := time.Now()
	sess.RevokedAt = &now
	m.s.sessions[token] = sess
	return nil
}

func (m memSessions) RevokeAllUserSessions(_ context.Context, userID uuid.UUID) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	now := time.Now()
	for k, sess := range m.s.sessions {
		if sess.UserID == userID && sess.RevokedAt == nil {
			sess.RevokedAt = &now
			m.s.sessions[k] = sess
		}
	}
	return nil
}

func (m memSessions) CleanExpiredSessions(_ context.Context) (int64, error) {
	return 0, nil
}

// ---- trips ----

type memTrips struct{ s *memStore }

func (m memTrips) Create(_ context.Context, t *entity.Trip) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.trips[t.ID] = *t
	return nil
}

func (m memTrips) FindByID(_ context.Context, id uuid.UUID) (*entity.Trip, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	t, ok := m.s.trips[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (m memTrips) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Trip, error) {
	return m.FindByID(ctx, id)
}

func (m memTrips) FindAll(_ context.Context, f entity.TripFilter) ([]*entity.Trip, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := make([]*entity.Trip, 0)
	for _, t := range m.s.trips {
		if f.From != "" && !strings.Contains(strings.ToLower(t.From), strings.ToLower(f.From)) {
			continue
		}
		if f.To != "" && !strings.Contains(strings.ToLower(t.To), strings.ToLower(f.To)) {
			continue
		}
		if f.Date != nil && t.Date.Before(*f.Date) {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		t := t
		out = append(out, &t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Time < out[j].Time
	})
	return out, nil
}

func (m memTrips) FindByDriver(_ context.Context, driverID uuid.UUID) ([]*entity.Trip, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := make([]*entity.Trip, 0)
	for _, t := range m.s.trips {
		if t.DriverID == driverID {
			t := t
			out = append(out, &t)
		}
	}
	return out, nil
}

func (m memTrips) Update(_ context.Context, t *entity.Trip) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	stored, ok := m.s.trips[t.ID]
	if !ok {
		return apperr.NotFound("trip not found")
	}
	// seat counters are not written by Update
	updated := *t
	updated.TotalSeats = stored.TotalSeats
	updated.AvailableSeats = stored.AvailableSeats
	m.s.trips[t.ID] = updated
	return nil
}

func (m memTrips) Delete(_ context.Context, id uuid.UUID) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.trips[id]; !ok {
		return apperr.NotFound("trip not found")
	}
	delete(m.s.trips, id)
	return nil
}

func (m memTrips) DecrementAvailable(_ context.Context, id uuid.UUID) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	t, ok := m.s.trips[id]
	if !ok || t.AvailableSeats <= 0 {
		return false, nil
	}
	t.AvailableSeats--
	m.s.trips[id] = t
	return true, nil
}

func (m memTrips) IncrementAvailable(_ context.Context, id uuid.UUID) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	t, ok := m.s.trips[id]
	if !ok {
		return apperr.NotFound("trip not found")
	}
	if t.AvailableSeats < t.TotalSeats {
		t.AvailableSeats++
	}
	m.s.trips[id] = t
	return nil
}

func (m memTrips) UpdateCapacity(_ context.Context, id uuid.UUID, total, available int) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	t, ok := m.s.trips[id]
	if !ok {
		return apperr.NotFound("trip not found")
	}
	if available < 0 || available > total {
		return apperr.Conflict("available seats out of range")
	}
	t.TotalSeats = total
	t.AvailableSeats = available
	m.s.trips[id] = t
	return nil
}

// ---- bookings ----

type memBookings struct{ s *memStore }

func (m memBookings) Create(_ context.Context, b *entity.Booking) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, existing := range m.s.bookings {
		if existing.TripID == b.TripID && existing.SeatNumber == b.SeatNumber && existing.Status.Active() {
			return apperr.Conflict("seat %d is already booked", b.SeatNumber)
		}
	}
	m.s.bookings[b.ID] = *b
	return nil
}

func (m memBookings) FindByID(_ context.Context, id uuid.UUID) (*entity.Booking, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	b, ok := m.s.bookings[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (m memBookings) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	return m.FindByID(ctx, id)
}

func (m memBookings) filter(keep func(entity.Booking) bool) []*entity.Booking {
	out := make([]*entity.Booking, 0)
	for _, b := range m.s.bookings {
		if keep(b) {
			b := b
			out = append(out, &b)
		}
	}
	return out
}

func (m memBookings) FindByUserID(_ context.Context, userID uuid.UUID) ([]*entity.Booking, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return m.filter(func(b entity.Booking) bool { return b.UserID == userID }), nil
}

func (m memBookings) FindByTripID(_ context.Context, tripID uuid.UUID) ([]*entity.Booking, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := m.filter(func(b entity.Booking) bool { return b.TripID == tripID })
	sort.Slice(out, func(i, j int) bool { return out[i].SeatNumber < out[j].SeatNumber })
	return out, nil
}

func (m memBookings) FindAll(_ context.Context, status entity.BookingStatus, limit, offset int) ([]*entity.Booking, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := m.filter(func(b entity.Booking) bool { return status == "" || b.Status == status })
	sort.Slice(out, func(i, j int) bool { return out[i].BookingDate.After(out[j].BookingDate) })
	if offset > len(out) {
		return []*entity.Booking{}, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

func (m memBookings) CountAll(_ context.Context, status entity.BookingStatus) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return int64(len(m.filter(func(b entity.Booking) bool { return status == "" || b.Status == status }))), nil
}

func (m memBookings) ExistsActiveSeat(_ context.Context, tripID uuid.UUID, seat int) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return len(m.filter(func(b entity.Booking) bool {
		return b.TripID == tripID && b.SeatNumber == seat && b.Status.Active()
	})) > 0, nil
}

func (m memBookings) CountActiveByTrip(_ context.Context, tripID uuid.UUID) (int, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return len(m.filter(func(b entity.Booking) bool { return b.TripID == tripID && b.Status.Active() })), nil
}

func (m memBookings) MaxActiveSeat(_ context.Context, tripID uuid.UUID) (int, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	max := 0
	for _, b := range m.filter(func(b entity.Booking) bool { return b.TripID == tripID && b.Status.Active() }) {
		if b.SeatNumber > max {
			max = b.SeatNumber
		}
	}
	return max, nil
}

func (m memBookings) CountByTrip(_ context.Context, tripID uuid.UUID) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return int64(len(m.filter(func(b entity.Booking) bool { return b.TripID == tripID }))), nil
}

func (m memBookings) UpdateStatus(_ context.Context, id uuid.UUID, status entity.BookingStatus, boardingTime *time.Time) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	b, ok := m.s.bookings[id]
	if !ok {
		return apperr.NotFound("booking not found")
	}
	b.Status = status
	if boardingTime != nil {
		b.BoardingTime = boardingTime
	}
	m.s.bookings[id] = b
	return nil
}

func (m memBookings) CompleteBoardedByTrip(_ context.Context, tripID uuid.UUID) ([]uuid.UUID, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	ids := make([]uuid.UUID, 0)
	for id, b := range m.s.bookings {
		if b.TripID == tripID && b.Status == entity.BookingBoarded {
			b.Status = entity.BookingCompleted
			m.s.bookings[id] = b
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// ---- publisher ----

type recordingPublisher struct {
	mu     sync.Mutex
	routes []string
}

func (p *recordingPublisher) Publish(_ context.Context, routingKey string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.routes = append(p.routes, routingKey)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) Routes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.routes...)
}
