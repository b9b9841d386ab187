package kafka

import (
	"time"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/google/uuid"
)

// Booking event types.
const (
	EventBookingCreated   = "booking_created"
	EventBookingConfirmed = "booking_confirmed"
	EventBookingCancelled = "booking_cancelled"
)

type BookingEvent struct {
	ID          string               `json:"id"`
	Type        string               `json:"type"`
	BookingID   int64                `json:"booking_id"`
	TourID      int64                `json:"tour_id"`
	TourName    string               `json:"tour_name"`
	CustomerID  int64                `json:"customer_id"`
	People      int                  `json:"people"`
	TotalAmount float64              `json:"total_amount"`
	Status      domain.BookingStatus `json:"status"`
	Actor       string               `json:"actor,omitempty"`
	OccurredAt  time.Time            `json:"occurred_at"`
}

func NewBookingEvent(eventType string, b domain.Booking, actor string, at time.Time) BookingEvent {
	return BookingEvent{
		ID:          uuid.NewString(),
		Type:        eventType,
		BookingID:   b.ID,
		TourID:      b.TourRef(),
		TourName:    b.TourTitle(),
		CustomerID:  b.CustomerID,
		People:      b.NumberOfPeople,
		TotalAmount: b.TotalAmount,
		Status:      b.Status,
		Actor:       actor,
		OccurredAt:  at,
	}
}

// EventTypeFor maps a target booking status to its event type.
func EventTypeFor(status domain.BookingStatus) string {
	switch status {
	case domain.BookingStatusConfirmed:
		return EventBookingConfirmed
	case domain.BookingStatusCancelled:
		return EventBookingCancelled
	default:
		return EventBookingCreated
	}
}
