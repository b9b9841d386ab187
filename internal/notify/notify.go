// Package notify turns booking events into notification-center entries and
// serves them back to signed-in users.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/Domenick1991/tourbooking/internal/format"
	"github.com/Domenick1991/tourbooking/internal/kafka"
	"github.com/Domenick1991/tourbooking/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Sender struct {
	repo   repository.NotificationRepository
	format format.Formatter
	now    func() time.Time
	log    zerolog.Logger
}

func NewSender(repo repository.NotificationRepository, f format.Formatter, log zerolog.Logger) *Sender {
	return &Sender{repo: repo, format: f, now: time.Now, log: log}
}

// Send stores the notifications derived from event. Redelivered events
// are ignored by the repository.
func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	for _, n := range s.Build(event) {
		inserted, err := s.repo.Create(ctx, event.ID, &n)
		if err != nil {
			return fmt.Errorf("store notification for event %s: %w", event.ID, err)
		}
		if inserted {
			s.log.Debug().Str("event", event.Type).Int64("user", n.UserID).Msg("notification stored")
		}
	}
	return nil
}

// Build derives notifications for the customer and, for new bookings and
// customer cancellations, for the back office.
func (s *Sender) Build(event kafka.BookingEvent) []domain.Notification {
	at := event.OccurredAt
	if at.IsZero() {
		at = s.now()
	}
	mk := func(userID int64, typ domain.NotificationType, title, msg string) domain.Notification {
		return domain.Notification{ID: uuid.NewString(), UserID: userID, Type: typ, Title: title, Message: msg, CreatedAt: at}
	}
	tour := event.TourName
	if tour == "" {
		tour = fmt.Sprintf("tour #%d", event.TourID)
	}

	var out []domain.Notification
	switch event.Type {
	case kafka.EventBookingCreated:
		out = append(out,
			mk(event.CustomerID, domain.NotificationInfo, "Booking received",
				fmt.Sprintf("Booking #%d for %s (%d people, %s) is awaiting confirmation.", event.BookingID, tour, event.People, s.format.Currency(event.TotalAmount))),
			mk(repository.BackOfficeRecipient, domain.NotificationInfo, "New booking",
				fmt.Sprintf("Booking #%d for %s needs review.", event.BookingID, tour)),
		)
	case kafka.EventBookingConfirmed:
		out = append(out, mk(event.CustomerID, domain.NotificationSuccess, "Booking confirmed",
			fmt.Sprintf("Booking #%d for %s has been confirmed.", event.BookingID, tour)))
	case kafka.EventBookingCancelled:
		out = append(out, mk(event.CustomerID, domain.NotificationWarning, "Booking cancelled",
			fmt.Sprintf("Booking #%d for %s has been cancelled.", event.BookingID, tour)))
		if event.Actor == "customer" {
			out = append(out, mk(repository.BackOfficeRecipient, domain.NotificationWarning, "Booking cancelled by customer",
				fmt.Sprintf("Booking #%d for %s was cancelled by the customer.", event.BookingID, tour)))
		}
	default:
		s.log.Warn().Str("event", event.Type).Msg("unknown booking event type")
	}
	return out
}
