package booking

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/Domenick1991/tourbooking/internal/datasource"
	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/Domenick1991/tourbooking/internal/kafka"
	"github.com/rs/zerolog"
)

var (
	ErrInvalidParty     = errors.New("number of people must be at least 1")
	ErrNotEnoughSeats   = errors.New("not enough available seats")
	ErrTourNotBookable  = errors.New("tour is not open for booking")
	ErrSubmitInProgress = errors.New("a booking for this tour is already being submitted")
	ErrUnknownAction    = errors.New("unknown booking action")
)

type Action string

const (
	ActionConfirm Action = "confirm"
	ActionCancel  Action = "cancel"
)

func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionConfirm, ActionCancel:
		return a, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
}

func (a Action) Target() domain.BookingStatus {
	if a == ActionConfirm {
		return domain.BookingStatusConfirmed
	}
	return domain.BookingStatusCancelled
}

// Actor says which side of the storefront asks for a transition. Admins
// go through the status endpoint, customers through cancel.
type Actor string

const (
	ActorBackOffice Actor = "admin"
	ActorCustomer   Actor = "customer"
)

// Confirmation is the model behind the confirm dialog.
type Confirmation struct {
	Booking domain.Booking
	Action  Action
	Target  domain.BookingStatus
	Title   string
	Message string
}

type CreateBookingInput struct {
	SessionID       string
	TourID          int64
	NumberOfPeople  int
	SpecialRequests string
}

type Summary struct {
	Total     int
	Pending   int
	Confirmed int
	Cancelled int
	Completed int
	// Spent sums TotalAmount over bookings that were not cancelled.
	Spent float64
}

// Upcoming counts trips still ahead: pending or confirmed.
func (s Summary) Upcoming() int {
	return s.Pending + s.Confirmed
}

type BookingUseCase interface {
	Mine(ctx context.Context) ([]domain.Booking, error)
	Create(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	Request(ctx context.Context, actor Actor, bookingID int64, action Action) (*Confirmation, error)
	Apply(ctx context.Context, actor Actor, bookingID int64, action Action) (*domain.Booking, error)
}

type Cache interface {
	AcquireSubmitLock(ctx context.Context, sessionID string, tourID int64, ttl time.Duration) (bool, error)
	ReleaseSubmitLock(ctx context.Context, sessionID string, tourID int64) error
	Invalidate(ctx context.Context) error
}

type Producer interface {
	PublishBooking(ctx context.Context, event kafka.BookingEvent) error
}

type Recorder interface {
	BookingEvent(eventType string, err error)
}

type BookingService struct {
	tours    datasource.TourService
	bookings datasource.BookingService
	cache    Cache
	producer Producer
	recorder Recorder
	lockTTL  time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

type BookingServiceOption func(*BookingService)

func WithCache(c Cache) BookingServiceOption {
	return func(s *BookingService) { s.cache = c }
}

func WithProducer(p Producer) BookingServiceOption {
	return func(s *BookingService) { s.producer = p }
}

func WithRecorder(r Recorder) BookingServiceOption {
	return func(s *BookingService) { s.recorder = r }
}

func WithLogger(l zerolog.Logger) BookingServiceOption {
	return func(s *BookingService) { s.log = l }
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) { s.now = now }
}

func NewBookingService(ds datasource.DataSource, opts ...BookingServiceOption) *BookingService {
	service := &BookingService{
		tours:    ds.Tours(),
		bookings: ds.Bookings(),
		lockTTL:  30 * time.Second,
		now:      time.Now,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

var _ BookingUseCase = (*BookingService)(nil)

// Mine lists the signed-in customer's bookings, newest first.
func (s *BookingService) Mine(ctx context.Context) ([]domain.Booking, error) {
	list, err := s.bookings.Mine(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(list, func(a, b domain.Booking) int {
		return b.CreatedAt.Compare(a.CreatedAt.Time)
	})
	return list, nil
}

// Create checks the party against the tour as currently shown, then leaves
// the final word to the backend. Seat counts are never adjusted locally.
func (s *BookingService) Create(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	if input.NumberOfPeople < 1 {
		return nil, ErrInvalidParty
	}
	tour, err := s.tours.GetByID(ctx, input.TourID)
	if err != nil {
		return nil, err
	}
	if tour.Status != domain.TourStatusAvailable {
		return nil, ErrTourNotBookable
	}
	if input.NumberOfPeople > tour.AvailableSeats {
		return nil, ErrNotEnoughSeats
	}

	if s.cache != nil && input.SessionID != "" {
		ok, err := s.cache.AcquireSubmitLock(ctx, input.SessionID, input.TourID, s.lockTTL)
		if err != nil {
			s.log.Warn().Err(err).Msg("submit lock unavailable")
		} else if !ok {
			return nil, ErrSubmitInProgress
		} else {
			defer func() {
				if err := s.cache.ReleaseSubmitLock(context.WithoutCancel(ctx), input.SessionID, input.TourID); err != nil {
					s.log.Warn().Err(err).Msg("release submit lock")
				}
			}()
		}
	}

	created, err := s.bookings.Create(ctx, domain.BookingRequest{
		TourID:          input.TourID,
		NumberOfPeople:  input.NumberOfPeople,
		SpecialRequests: input.SpecialRequests,
	})
	if err != nil {
		return nil, err
	}
	if created.TourName == "" && created.Tour == nil {
		created.TourName = tour.Name
	}

	s.afterMutation(ctx, kafka.EventBookingCreated, *created, ActorCustomer)
	return created, nil
}

// Actions lists the transitions actor may request for b. Templates render
// controls only for these.
func Actions(b domain.Booking, actor Actor) []Action {
	switch actor {
	case ActorBackOffice:
		if b.Status == domain.BookingStatusPending {
			return []Action{ActionConfirm, ActionCancel}
		}
	case ActorCustomer:
		if b.CanTransition(domain.BookingStatusCancelled) {
			return []Action{ActionCancel}
		}
	}
	return nil
}

func Allowed(b domain.Booking, actor Actor, action Action) bool {
	for _, a := range Actions(b, actor) {
		if a == action {
			return true
		}
	}
	return false
}

func (s *BookingService) Request(ctx context.Context, actor Actor, bookingID int64, action Action) (*Confirmation, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !Allowed(*b, actor, action) {
		return nil, domain.ErrTransitionNotAllowed
	}

	c := &Confirmation{Booking: *b, Action: action, Target: action.Target()}
	switch action {
	case ActionConfirm:
		c.Title = "Confirm booking"
		c.Message = fmt.Sprintf("Confirm booking #%d for %s?", b.ID, b.TourTitle())
	case ActionCancel:
		c.Title = "Cancel booking"
		c.Message = fmt.Sprintf("Cancel booking #%d for %s? This cannot be undone.", b.ID, b.TourTitle())
	}
	return c, nil
}

// Apply re-reads the booking so the decision is made on the current
// status, then issues the mutation. Nothing is patched locally and a
// failure is returned as is, without retrying.
func (s *BookingService) Apply(ctx context.Context, actor Actor, bookingID int64, action Action) (*domain.Booking, error) {
	current, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !Allowed(*current, actor, action) {
		return nil, domain.ErrTransitionNotAllowed
	}

	var updated *domain.Booking
	if actor == ActorCustomer {
		updated, err = s.bookings.Cancel(ctx, bookingID)
	} else {
		updated, err = s.bookings.UpdateStatus(ctx, bookingID, action.Target())
	}
	if err != nil {
		return nil, err
	}
	if updated.TourName == "" && updated.Tour == nil {
		updated.TourName = current.TourTitle()
	}
	if updated.CustomerID == 0 {
		updated.CustomerID = current.CustomerID
	}

	s.afterMutation(ctx, kafka.EventTypeFor(updated.Status), *updated, actor)
	return updated, nil
}

// afterMutation drops the cached catalog, since seat counts may have
// moved, and publishes the event. Neither failure undoes the mutation.
func (s *BookingService) afterMutation(ctx context.Context, eventType string, b domain.Booking, actor Actor) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.log.Warn().Err(err).Msg("invalidate catalog cache")
		}
	}
	if s.producer == nil {
		return
	}
	err := s.producer.PublishBooking(ctx, kafka.NewBookingEvent(eventType, b, string(actor), s.now()))
	if err != nil {
		s.log.Warn().Err(err).Str("event", eventType).Int64("booking", b.ID).Msg("failed to publish booking event")
	}
	if s.recorder != nil {
		s.recorder.BookingEvent(eventType, err)
	}
}

func Summarize(bookings []domain.Booking) Summary {
	sum := Summary{Total: len(bookings)}
	for _, b := range bookings {
		switch b.Status {
		case domain.BookingStatusPending:
			sum.Pending++
		case domain.BookingStatusConfirmed:
			sum.Confirmed++
		case domain.BookingStatusCancelled:
			sum.Cancelled++
		case domain.BookingStatusCompleted:
			sum.Completed++
		}
		if b.Status != domain.BookingStatusCancelled {
			sum.Spent += b.TotalAmount
		}
	}
	return sum
}
