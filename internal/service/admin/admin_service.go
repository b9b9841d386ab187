// Package admin backs the back-office console: dashboard statistics and
// management of tours, categories, bookings and users.
package admin

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/Domenick1991/tourbooking/internal/datasource"
	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/Domenick1991/tourbooking/internal/service/booking"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	recentBookings = 5
	topTours       = 5
)

type AdminUseCase interface {
	Dashboard(ctx context.Context) (*Dashboard, error)

	Tours(ctx context.Context) ([]domain.Tour, error)
	Tour(ctx context.Context, id int64) (*domain.Tour, error)
	CreateTour(ctx context.Context, in domain.TourInput) (*domain.Tour, error)
	UpdateTour(ctx context.Context, id int64, in domain.TourInput) (*domain.Tour, error)
	DeleteTour(ctx context.Context, id int64) error

	Categories(ctx context.Context) ([]domain.Category, error)
	CreateCategory(ctx context.Context, in domain.CategoryInput) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id int64, in domain.CategoryInput) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id int64) error

	Bookings(ctx context.Context, f BookingFilter) (*BookingList, error)

	Users(ctx context.Context, f UserFilter) ([]domain.User, error)
	UpdateUser(ctx context.Context, id int64, up domain.UserUpdate) (*domain.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// Invalidator drops cached catalog data after a mutation.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

type Stats struct {
	TotalTours      int
	ActiveTours     int
	TotalBookings   int
	PendingBookings int
	Revenue         float64
	Categories      int
	Users           int
}

type TourRank struct {
	TourID   int64
	Name     string
	Bookings int
	People   int
}

// Dashboard keeps a per-resource error so one failed fetch does not blank
// the whole page.
type Dashboard struct {
	Stats    Stats
	Recent   []domain.Booking
	TopTours []TourRank
	Errors   map[string]error
}

type BookingFilter struct {
	Term    string
	Status  domain.BookingStatus
	Payment domain.PaymentStatus
}

type BookingList struct {
	Filter   BookingFilter
	Bookings []domain.Booking
	Summary  booking.Summary
}

type UserFilter struct {
	Term string
	Role domain.Role
}

type AdminService struct {
	ds          datasource.DataSource
	invalidator Invalidator
	log         zerolog.Logger
}

func NewAdminService(ds datasource.DataSource, invalidator Invalidator, log zerolog.Logger) *AdminService {
	return &AdminService{ds: ds, invalidator: invalidator, log: log}
}

var _ AdminUseCase = (*AdminService)(nil)

// Dashboard fetches the four collections concurrently. Each fetch fails on
// its own; an authorization failure anywhere cancels the others and is
// returned so the caller can end the session.
func (s *AdminService) Dashboard(ctx context.Context) (*Dashboard, error) {
	var (
		tours      []domain.Tour
		bookings   []domain.Booking
		categories []domain.Category
		users      []domain.User
		errs       [4]error
	)

	g, gctx := errgroup.WithContext(ctx)
	fetch := func(i int, load func(context.Context) error) {
		g.Go(func() error {
			errs[i] = load(gctx)
			if errors.Is(errs[i], datasource.ErrUnauthorized) {
				return errs[i]
			}
			return nil
		})
	}
	fetch(0, func(ctx context.Context) (err error) { tours, err = s.ds.Tours().List(ctx); return })
	fetch(1, func(ctx context.Context) (err error) { bookings, err = s.ds.Bookings().List(ctx); return })
	fetch(2, func(ctx context.Context) (err error) { categories, err = s.ds.Categories().List(ctx); return })
	fetch(3, func(ctx context.Context) (err error) { users, err = s.ds.Users().List(ctx); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	d := &Dashboard{Errors: map[string]error{}}
	for i, name := range []string{"tours", "bookings", "categories", "users"} {
		if errs[i] == nil {
			continue
		}
		s.log.Warn().Err(errs[i]).Str("resource", name).Msg("dashboard fetch failed")
		d.Errors[name] = errs[i]
	}

	d.Stats = ComputeStats(tours, bookings, categories, users)
	d.Recent = Recent(bookings, recentBookings)
	d.TopTours = TopTours(tours, bookings, topTours)
	return d, nil
}

func ComputeStats(tours []domain.Tour, bookings []domain.Booking, categories []domain.Category, users []domain.User) Stats {
	st := Stats{
		TotalTours:    len(tours),
		TotalBookings: len(bookings),
		Categories:    len(categories),
		Users:         len(users),
	}
	for _, t := range tours {
		if t.Status == domain.TourStatusAvailable {
			st.ActiveTours++
		}
	}
	for _, b := range bookings {
		if b.Status == domain.BookingStatusPending {
			st.PendingBookings++
		}
		if b.Status != domain.BookingStatusCancelled {
			st.Revenue += b.TotalAmount
		}
	}
	return st
}

// Recent returns the n newest bookings.
func Recent(bookings []domain.Booking, n int) []domain.Booking {
	out := slices.Clone(bookings)
	slices.SortStableFunc(out, func(a, b domain.Booking) int {
		return b.CreatedAt.Compare(a.CreatedAt.Time)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// TopTours ranks tours by number of bookings, ties broken by name.
func TopTours(tours []domain.Tour, bookings []domain.Booking, n int) []TourRank {
	names := make(map[int64]string, len(tours))
	for _, t := range tours {
		names[t.ID] = t.Name
	}
	byTour := map[int64]*TourRank{}
	for _, b := range bookings {
		id := b.TourRef()
		r, ok := byTour[id]
		if !ok {
			name := names[id]
			if name == "" {
				name = b.TourTitle()
			}
			r = &TourRank{TourID: id, Name: name}
			byTour[id] = r
		}
		r.Bookings++
		r.People += b.NumberOfPeople
	}

	out := make([]TourRank, 0, len(byTour))
	for _, r := range byTour {
		out = append(out, *r)
	}
	slices.SortFunc(out, func(a, b TourRank) int {
		if c := cmp.Compare(b.Bookings, a.Bookings); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func (s *AdminService) Tours(ctx context.Context) ([]domain.Tour, error) {
	return s.ds.Tours().List(ctx)
}

func (s *AdminService) Tour(ctx context.Context, id int64) (*domain.Tour, error) {
	return s.ds.Tours().GetByID(ctx, id)
}

func (s *AdminService) CreateTour(ctx context.Context, in domain.TourInput) (*domain.Tour, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	t, err := s.ds.Tours().Create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return t, nil
}

func (s *AdminService) UpdateTour(ctx context.Context, id int64, in domain.TourInput) (*domain.Tour, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	t, err := s.ds.Tours().Update(ctx, id, in)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return t, nil
}

func (s *AdminService) DeleteTour(ctx context.Context, id int64) error {
	if err := s.ds.Tours().Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *AdminService) Categories(ctx context.Context) ([]domain.Category, error) {
	return s.ds.Categories().List(ctx)
}

func (s *AdminService) CreateCategory(ctx context.Context, in domain.CategoryInput) (*domain.Category, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	c, err := s.ds.Categories().Create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return c, nil
}

func (s *AdminService) UpdateCategory(ctx context.Context, id int64, in domain.CategoryInput) (*domain.Category, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	c, err := s.ds.Categories().Update(ctx, id, in)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return c, nil
}

func (s *AdminService) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.ds.Categories().Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *AdminService) Bookings(ctx context.Context, f BookingFilter) (*BookingList, error) {
	all, err := s.ds.Bookings().List(ctx)
	if err != nil {
		return nil, err
	}
	filtered := FilterBookings(all, f)
	return &BookingList{Filter: f, Bookings: filtered, Summary: booking.Summarize(all)}, nil
}

// FilterBookings matches the term against the booking id, tour name and
// customer name, then narrows by status and payment status.
func FilterBookings(bookings []domain.Booking, f BookingFilter) []domain.Booking {
	term := strings.ToLower(strings.TrimSpace(f.Term))
	out := make([]domain.Booking, 0, len(bookings))
	for _, b := range bookings {
		if term != "" &&
			!strings.Contains(strconv.FormatInt(b.ID, 10), term) &&
			!strings.Contains(strings.ToLower(b.TourTitle()), term) &&
			!strings.Contains(strings.ToLower(b.CustomerTitle()), term) {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		if f.Payment != "" && b.PaymentStatus != f.Payment {
			continue
		}
		out = append(out, b)
	}
	return out
}

func (s *AdminService) Users(ctx context.Context, f UserFilter) ([]domain.User, error) {
	all, err := s.ds.Users().List(ctx)
	if err != nil {
		return nil, err
	}
	term := strings.ToLower(strings.TrimSpace(f.Term))
	return slices.DeleteFunc(all, func(u domain.User) bool {
		if f.Role != "" && u.Role != f.Role {
			return true
		}
		return term != "" &&
			!strings.Contains(strings.ToLower(u.Username), term) &&
			!strings.Contains(strings.ToLower(u.Email), term) &&
			!strings.Contains(strings.ToLower(u.FullName), term)
	}), nil
}

func (s *AdminService) UpdateUser(ctx context.Context, id int64, up domain.UserUpdate) (*domain.User, error) {
	if up.Role != "" && !up.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", datasource.ErrValidation, up.Role)
	}
	return s.ds.Users().Update(ctx, id, up)
}

func (s *AdminService) DeleteUser(ctx context.Context, id int64) error {
	return s.ds.Users().Delete(ctx, id)
}

func (s *AdminService) invalidate(ctx context.Context) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx)
	}
}
