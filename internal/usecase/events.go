package usecase

import (
	"context"
	"time"

	"bus-booking/internal/data/entity"
	"bus-booking/pkg/broker"

	"go.uber.org/zap"
)

const publishTimeout = 3 * time.Second

// eventSink publishes booking events after the owning transaction commits.
// Failures are logged and never fail the request.
type eventSink struct {
	pub broker.Publisher
	log *zap.Logger
}

func (e eventSink) bookingChanged(ctx context.Context, b *entity.Booking) {
	route, ok := broker.RouteForStatus(string(b.Status))
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	event := broker.BookingEvent{
		BookingID:  b.ID,
		TripID:     b.TripID,
		UserID:     b.UserID,
		SeatNumber: b.SeatNumber,
		Status:     string(b.Status),
		OccurredAt: time.Now().UTC(),
	}
	if err := e.pub.Publish(ctx, route, event); err != nil {
		e.log.Warn("Failed to publish booking event",
			zap.Error(err),
			zap.String("routing_key", route),
			zap.String("booking_id", b.ID.String()),
		)
	}
}
