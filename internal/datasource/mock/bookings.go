package mock

import (
	"context"
	"net/http"
	"slices"

	"github.com/Domenick1991/tourbooking/internal/datasource"
	"github.com/Domenick1991/tourbooking/internal/domain"
)

type bookings struct{ s *Source }

func (r bookings) List(ctx context.Context) ([]domain.Booking, error) {
	if _, err := r.s.requireBackOffice(ctx); err != nil {
		return nil, err
	}
	if err := r.s.wait(ctx, 1); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.enrichAll(r.s.data.Bookings, func(domain.Booking) bool { return true }), nil
}

func (r bookings) Mine(ctx context.Context) ([]domain.Booking, error) {
	c, err := r.s.authenticate(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.s.wait(ctx, 1); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.enrichAll(r.s.data.Bookings, func(b domain.Booking) bool { return b.CustomerID == c.UserID }), nil
}

func (r bookings) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	c, err := r.s.authenticate(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.s.wait(ctx, 0.7); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	i := indexOf(r.s.data.Bookings, id, bookingID)
	if i < 0 || !canSee(c, r.s.data.Bookings[i]) {
		return nil, notFound("booking", id)
	}
	b := r.s.enrich(r.s.data.Bookings[i])
	return &b, nil
}

func (r bookings) Create(ctx context.Context, req domain.BookingRequest) (*domain.Booking, error) {
	c, err := r.s.authenticate(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.s.wait(ctx, 2.7); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ti := indexOf(r.s.data.Tours, req.TourID, tourID)
	if ti < 0 {
		return nil, notFound("tour", req.TourID)
	}
	tour := &r.s.data.Tours[ti]
	if req.NumberOfPeople < 1 {
		return nil, badRequest("number of people must be at least 1")
	}
	if tour.Status != domain.TourStatusAvailable {
		return nil, badRequest("tour is not open for booking")
	}
	if tour.AvailableSeats < req.NumberOfPeople {
		return nil, badRequest("Not enough available seats")
	}

	now := domain.Time{Time: r.s.now()}
	b := domain.Booking{
		ID:              nextID(r.s.data.Bookings, bookingID),
		TourID:          tour.ID,
		CustomerID:      c.UserID,
		NumberOfPeople:  req.NumberOfPeople,
		TotalAmount:     domain.TotalAmount(tour.Price, req.NumberOfPeople),
		Status:          domain.BookingStatusPending,
		PaymentStatus:   domain.PaymentStatusPending,
		SpecialRequests: req.SpecialRequests,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	adjustSeats(tour, -req.NumberOfPeople)
	r.s.data.Bookings = append(r.s.data.Bookings, b)

	out := r.s.enrich(b)
	return &out, nil
}

func (r bookings) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) (*domain.Booking, error) {
	if _, err := r.s.requireBackOffice(ctx); err != nil {
		return nil, err
	}
	if err := r.s.wait(ctx, 1.5); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i := indexOf(r.s.data.Bookings, id, bookingID)
	if i < 0 {
		return nil, notFound("booking", id)
	}
	return r.s.transition(i, status)
}

func (r bookings) Cancel(ctx context.Context, id int64) (*domain.Booking, error) {
	c, err := r.s.authenticate(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.s.wait(ctx, 1.5); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i := indexOf(r.s.data.Bookings, id, bookingID)
	if i < 0 || !canSee(c, r.s.data.Bookings[i]) {
		return nil, notFound("booking", id)
	}
	return r.s.transition(i, domain.BookingStatusCancelled)
}

func (r bookings) Delete(ctx context.Context, id int64) error {
	if _, err := r.s.requireBackOffice(ctx); err != nil {
		return err
	}
	if err := r.s.wait(ctx, 1); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i := indexOf(r.s.data.Bookings, id, bookingID)
	if i < 0 {
		return notFound("booking", id)
	}
	r.s.data.Bookings = slices.Delete(r.s.data.Bookings, i, i+1)
	return nil
}

// transition applies a status change under the write lock, returning seats
// to the tour when a booking is cancelled.
func (s *Source) transition(i int, to domain.BookingStatus) (*domain.Booking, error) {
	b := &s.data.Bookings[i]
	if !b.CanTransition(to) {
		return nil, datasource.NewAPIError(http.StatusConflict, "booking is "+string(b.Status)+" and cannot become "+string(to))
	}
	b.Status = to
	b.UpdatedAt = domain.Time{Time: s.now()}
	if to == domain.BookingStatusCancelled {
		if ti := indexOf(s.data.Tours, b.TourID, tourID); ti >= 0 {
			adjustSeats(&s.data.Tours[ti], b.NumberOfPeople)
		}
	}
	out := s.enrich(*b)
	return &out, nil
}

func adjustSeats(t *domain.Tour, delta int) {
	t.AvailableSeats = min(max(t.AvailableSeats+delta, 0), t.MaxParticipants)
	switch {
	case t.AvailableSeats == 0 && t.Status == domain.TourStatusAvailable:
		t.Status = domain.TourStatusFull
	case t.AvailableSeats > 0 && t.Status == domain.TourStatusFull:
		t.Status = domain.TourStatusAvailable
	}
}

func canSee(c *claims, b domain.Booking) bool {
	return c.Role.IsBackOffice() || b.CustomerID == c.UserID
}

func (s *Source) enrichAll(list []domain.Booking, keep func(domain.Booking) bool) []domain.Booking {
	out := make([]domain.Booking, 0, len(list))
	for _, b := range list {
		if keep(b) {
			out = append(out, s.enrich(b))
		}
	}
	return out
}

// enrich embeds the tour and customer the way the backend DTO does.
func (s *Source) enrich(b domain.Booking) domain.Booking {
	if i := indexOf(s.data.Tours, b.TourID, tourID); i >= 0 {
		t := s.data.Tours[i]
		b.Tour = &t
		b.TourName = t.Name
	}
	if i := indexOf(s.data.Users, b.CustomerID, userID); i >= 0 {
		u := s.data.Users[i].User
		b.Customer = &u
		b.CustomerName = u.FullName
	}
	return b
}
