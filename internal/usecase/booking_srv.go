package usecase

import (
	"context"

	"bus-booking/internal/apperr"
	"bus-booking/internal/data/entity"
	"bus-booking/internal/data/repository"
	"bus-booking/internal/dto/request"
	"bus-booking/internal/dto/response"
	"bus-booking/pkg/broker"
	"bus-booking/pkg/qrcode"
	"bus-booking/pkg/ticket"
	"bus-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingService interface {
	CreateBooking(ctx context.Context, caller utils.Identity, req *request.CreateBookingRequest) (*response.BookingResponse, error)
	GetMyBookings(ctx context.Context, caller utils.Identity) ([]response.BookingResponse, error)
	GetBookingByID(ctx context.Context, caller utils.Identity, bookingID string) (*response.BookingResponse, error)
	GetTicket(ctx context.Context, caller utils.Identity, bookingID string) ([]byte, error)
	GetBookingsByTrip(ctx context.Context, caller utils.Identity, tripID string) ([]response.BookingResponse, error)
	UpdateStatus(ctx context.Context, caller utils.Identity, bookingID string, req *request.UpdateBookingStatusRequest) (*response.BookingResponse, error)
	CancelBooking(ctx context.Context, caller utils.Identity, bookingID string) error
	GetAllBookings(ctx context.Context, req *request.BookingFilterRequest) (*response.PaginatedResponse[response.BookingResponse], error)
}

type bookingService struct {
	repo      *repository.Repository
	seats     SeatAllocator
	lifecycle LifecycleManager
	events    eventSink
	log       *zap.Logger
}

func NewBookingService(
	repo *repository.Repository,
	seats SeatAllocator,
	lifecycle LifecycleManager,
	publisher broker.Publisher,
	log *zap.Logger,
) BookingService {
	log = log.With(zap.String("service", "booking"))
	return &bookingService{
		repo:      repo,
		seats:     seats,
		lifecycle: lifecycle,
		events:    eventSink{pub: publisher, log: log},
		log:       log,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, caller utils.Identity, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	tripID, err := parseID("trip_id", req.TripID)
	if err != nil {
		return nil, err
	}

	booking, err := s.seats.Reserve(ctx, ReserveInput{
		TripID:         tripID,
		SeatNumber:     req.SeatNumber,
		PassengerName:  req.PassengerName,
		PassengerPhone: req.PassengerPhone,
		UserID:         caller.UserID,
	})
	if err != nil {
		return nil, err
	}

	s.events.bookingChanged(ctx, booking)

	return s.present(ctx, booking, true)
}

func (s *bookingService) GetMyBookings(ctx context.Context, caller utils.Identity) ([]response.BookingResponse, error) {
	bookings, err := s.repo.Booking.FindByUserID(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	return s.presentAll(ctx, bookings, true)
}

// loadVisible returns the booking when caller is its owner, a driver or an admin
func (s *bookingService) loadVisible(ctx context.Context, caller utils.Identity, bookingID string) (*entity.Booking, error) {
	id, err := parseID("id", bookingID)
	if err != nil {
		return nil, err
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, apperr.NotFound("booking not found")
	}
	if booking.UserID != caller.UserID && !isStaff(caller.Role) {
		s.log.Warn("Booking access denied",
			zap.String("booking_id", bookingID),
			zap.String("user_id", caller.UserID.String()),
		)
		return nil, apperr.Forbidden("not authorized to view this booking")
	}
	return booking, nil
}

func (s *bookingService) GetBookingByID(ctx context.Context, caller utils.Identity, bookingID string) (*response.BookingResponse, error) {
	booking, err := s.loadVisible(ctx, caller, bookingID)
	if err != nil {
		return nil, err
	}
	return s.present(ctx, booking, true)
}

// GetTicket renders the boarding pass PDF with the booking's QR code
func (s *bookingService) GetTicket(ctx context.Context, caller utils.Identity, bookingID string) ([]byte, error) {
	booking, err := s.loadVisible(ctx, caller, bookingID)
	if err != nil {
		return nil, err
	}

	trip, err := s.repo.Trip.FindByID(ctx, booking.TripID)
	if err != nil {
		return nil, err
	}
	if trip == nil {
		return nil, apperr.NotFound("trip not found")
	}

	png, err := qrcode.PNG(booking.QRPayload)
	if err != nil {
		s.log.Error("Failed to render qr code", zap.Error(err), zap.String("booking_id", bookingID))
		return nil, err
	}

	pdf, err := ticket.Render(ticket.Pass{
		BookingID:      booking.ID.String(),
		PassengerName:  booking.PassengerName,
		PassengerPhone: booking.PassengerPhone,
		From:           trip.From,
		To:             trip.To,
		Date:           trip.Date,
		Time:           trip.Time,
		SeatNumber:     booking.SeatNumber,
		Price:          booking.TotalPrice,
		Status:         string(booking.Status),
		QRPNG:          png,
	})
	if err != nil {
		s.log.Error("Failed to render ticket", zap.Error(err), zap.String("booking_id", bookingID))
		return nil, err
	}
	return pdf, nil
}

// GetBookingsByTrip returns the roster ordered by seat number. Drivers only
// see rosters of trips they drive.
func (s *bookingService) GetBookingsByTrip(ctx context.Context, caller utils.Identity, tripID string) ([]response.BookingResponse, error) {
	id, err := parseID("trip_id", tripID)
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
	if caller.Role == string(entity.RoleDriver) && trip.DriverID != caller.UserID {
		return nil, apperr.Forbidden("driver is not assigned to this trip")
	}

	bookings, err := s.repo.Booking.FindByTripID(ctx, id)
	if err != nil {
		return nil, err
	}

	result := make([]response.BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		result = append(result, response.BookingToResponse(b, trip))
	}
	return result, nil
}

func (s *bookingService) UpdateStatus(ctx context.Context, caller utils.Identity, bookingID string, req *request.UpdateBookingStatusRequest) (*response.BookingResponse, error) {
	id, err := parseID("id", bookingID)
	if err != nil {
		return nil, err
	}

	target := entity.BookingStatus(req.Status)
	if !target.Valid() {
		return nil, apperr.Validation(map[string]string{"status": "Unknown booking status"}, "invalid status %q", req.Status)
	}

	// Cancelling through the status endpoint is reserved for admins
	if target == entity.BookingCancelled && caller.Role != string(entity.RoleAdmin) {
		return nil, apperr.Forbidden("only admins can cancel through the status endpoint")
	}

	booking, err := s.lifecycle.Transition(ctx, id, target, req.QRPayload, caller)
	if err != nil {
		return nil, err
	}

	s.events.bookingChanged(ctx, booking)

	return s.present(ctx, booking, false)
}

func (s *bookingService) CancelBooking(ctx context.Context, caller utils.Identity, bookingID string) error {
	id, err := parseID("id", bookingID)
	if err != nil {
		return err
	}

	booking, err := s.seats.Release(ctx, id, caller)
	if err != nil {
		return err
	}

	s.events.bookingChanged(ctx, booking)
	return nil
}

func (s *bookingService) GetAllBookings(ctx context.Context, req *request.BookingFilterRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	if req.Page < 1 {
		req.Page = 1
	}
	req.PerPage = req.Limit()

	status := entity.BookingStatus(req.Status)
	if status != "" && !status.Valid() {
		return nil, apperr.Validation(map[string]string{"status": "Unknown booking status"}, "invalid status %q", req.Status)
	}

	bookings, err := s.repo.Booking.FindAll(ctx, status, req.Limit(), req.Offset())
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Booking.CountAll(ctx, status)
	if err != nil {
		return nil, err
	}

	data, err := s.presentAll(ctx, bookings, false)
	if err != nil {
		return nil, err
	}
	return response.NewPaginatedResponse(data, req.Page, req.PerPage, total), nil
}

// present attaches the trip and, when withQR is set, the rendered QR code
func (s *bookingService) present(ctx context.Context, booking *entity.Booking, withQR bool) (*response.BookingResponse, error) {
	trip, err := s.repo.Trip.FindByID(ctx, booking.TripID)
	if err != nil {
		return nil, err
	}

	resp := response.BookingToResponse(booking, trip)
	if withQR {
		resp.QRCode = s.renderQR(booking)
	}
	return &resp, nil
}

func (s *bookingService) presentAll(ctx context.Context, bookings []*entity.Booking, withQR bool) ([]response.BookingResponse, error) {
	trips := make(map[uuid.UUID]*entity.Trip)
	result := make([]response.BookingResponse, 0, len(bookings))

	for _, b := range bookings {
		trip, ok := trips[b.TripID]
		if !ok {
			var err error
			trip, err = s.repo.Trip.FindByID(ctx, b.TripID)
			if err != nil {
				return nil, err
			}
			trips[b.TripID] = trip
		}

		resp := response.BookingToResponse(b, trip)
		if withQR {
			resp.QRCode = s.renderQR(b)
		}
		result = append(result, resp)
	}
	return result, nil
}

// renderQR degrades to no image; the payload text is always returned
func (s *bookingService) renderQR(b *entity.Booking) string {
	url, err := qrcode.DataURL(b.QRPayload)
	if err != nil {
		s.log.Warn("Failed to render qr code", zap.Error(err), zap.String("booking_id", b.ID.String()))
		return ""
	}
	return url
}
