package mock

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Domenick1991/tourbooking/internal/datasource"
	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

func newSource(t *testing.T, opts ...Option) *Source {
	t.Helper()
	opts = append([]Option{WithDelay(0), WithClock(func() time.Time { return fixedNow }), WithSecret("test-secret")}, opts...)
	s, err := New(opts...)
	require.NoError(t, err)
	return s
}

func login(t *testing.T, s *Source, username string) context.Context {
	t.Helper()
	resp, err := s.Auth().Login(context.Background(), domain.LoginRequest{Username: username, Password: MasterPassword})
	require.NoError(t, err)
	return datasource.WithToken(context.Background(), resp.BearerToken())
}

func TestSource_ListTours(t *testing.T) {
	s := newSource(t)
	tours, err := s.Tours().List(context.Background())
	require.NoError(t, err)
	assert.Len(t, tours, 8)
}

func TestSource_DelayHonoursCancellation(t *testing.T) {
	s := newSource(t, WithDelay(time.Hour))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := s.Tours().List(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSource_DelayIsApplied(t *testing.T) {
	s := newSource(t, WithDelay(20*time.Millisecond))
	start := time.Now()
	_, err := s.Categories().List(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func TestSource_SearchMatchesCatalogSemantics(t *testing.T) {
	s := newSource(t)
	cat := int64(1)
	minPrice := 3000000.0

	got, err := s.Tours().Search(context.Background(), domain.TourSearchFilters{CategoryID: &cat, MinPrice: &minPrice})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Ha Long Bay Cruise", got[0].Name)
	assert.Equal(t, "Nha Trang Diving", got[1].Name)

	got, err = s.Tours().Search(context.Background(), domain.TourSearchFilters{Destination: "TERRACES"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Sapa Trekking", got[0].Name)
}

func TestSource_AvailableExcludesFullAndClosed(t *testing.T) {
	s := newSource(t)
	got, err := s.Tours().Available(context.Background())
	require.NoError(t, err)
	for _, tour := range got {
		assert.True(t, tour.Bookable(), tour.Name)
	}
	assert.Len(t, got, 5)
}

func TestSource_GetTourNotFound(t *testing.T) {
	s := newSource(t)
	_, err := s.Tours().GetByID(context.Background(), 999)
	assert.ErrorIs(t, err, datasource.ErrNotFound)

	tour, err := s.Tours().GetByID(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, tour.Category)
	assert.Equal(t, "Beach", tour.Category.Name)
}

func TestSource_Login(t *testing.T) {
	s := newSource(t)

	resp, err := s.Auth().Login(context.Background(), domain.LoginRequest{Username: "admin", Password: "admin123"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, resp.User.Role)
	assert.NotEmpty(t, resp.BearerToken())

	_, err = s.Auth().Login(context.Background(), domain.LoginRequest{Username: "an.nguyen@example.com", Password: MasterPassword})
	assert.NoError(t, err)

	_, err = s.Auth().Login(context.Background(), domain.LoginRequest{Username: "admin", Password: "nope"})
	assert.ErrorIs(t, err, datasource.ErrUnauthorized)

	_, err = s.Auth().Login(context.Background(), domain.LoginRequest{Username: "dormant", Password: MasterPassword})
	assert.ErrorIs(t, err, datasource.ErrUnauthorized)
}

func TestSource_Register(t *testing.T) {
	s := newSource(t)
	resp, err := s.Auth().Register(context.Background(), domain.RegisterRequest{Username: "newbie", Email: "new@example.com", Password: "pw", FullName: "New Bie"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCustomer, resp.User.Role)
	assert.Equal(t, int64(6), resp.User.ID)

	_, err = s.Auth().Register(context.Background(), domain.RegisterRequest{Username: "ADMIN", Email: "x@example.com", Password: "pw"})
	assert.ErrorIs(t, err, datasource.ErrValidation)
}

func TestSource_UnauthorizedHook(t *testing.T) {
	var calls atomic.Int32
	s := newSource(t, WithUnauthorizedHandler(func(context.Context) { calls.Add(1) }))

	_, err := s.Bookings().Mine(context.Background())
	assert.ErrorIs(t, err, datasource.ErrUnauthorized)

	_, err = s.Bookings().Mine(datasource.WithToken(context.Background(), "garbage"))
	assert.ErrorIs(t, err, datasource.ErrUnauthorized)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSource_ExpiredToken(t *testing.T) {
	now := fixedNow
	s := newSource(t, WithClock(func() time.Time { return now }))
	ctx := login(t, s, "customer1")

	now = now.Add(2 * time.Hour)
	_, err := s.Bookings().Mine(ctx)
	assert.ErrorIs(t, err, datasource.ErrUnauthorized)
}

func TestSource_MineReturnsOwnBookings(t *testing.T) {
	s := newSource(t)
	mine, err := s.Bookings().Mine(login(t, s, "customer1"))
	require.NoError(t, err)
	require.Len(t, mine, 3)
	for _, b := range mine {
		assert.Equal(t, int64(3), b.CustomerID)
		assert.NotEmpty(t, b.TourTitle())
	}
}

func TestSource_BookingListRequiresBackOffice(t *testing.T) {
	s := newSource(t)
	_, err := s.Bookings().List(login(t, s, "customer1"))
	assert.ErrorIs(t, err, datasource.ErrForbidden)

	all, err := s.Bookings().List(login(t, s, "staff1"))
	require.NoError(t, err)
	assert.Len(t, all, 5)
	assert.Equal(t, domain.PaymentStatusPending, all[3].PaymentStatus)
}

const scenarioFixture = `{
  "categories": [],
  "tours": [{"id": 1, "name": "Hue Heritage", "destination": "Hue", "price": 500000, "duration": 2, "maxParticipants": 10, "availableSeats": 5, "status": "AVAILABLE"}],
  "users": [{"id": 1, "username": "guest", "email": "guest@example.com", "role": "CUSTOMER", "active": true}],
  "bookings": [],
  "reviews": []
}`

func TestSource_CreateBookingScenario(t *testing.T) {
	s := newSource(t, WithFixture([]byte(scenarioFixture)))
	ctx := login(t, s, "guest")

	b, err := s.Bookings().Create(ctx, domain.BookingRequest{TourID: 1, NumberOfPeople: 3})
	require.NoError(t, err)
	assert.Equal(t, 1500000.0, b.TotalAmount)
	assert.Equal(t, domain.BookingStatusPending, b.Status)
	assert.Equal(t, domain.PaymentStatusPending, b.PaymentStatus)

	tour, err := s.Tours().GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, tour.AvailableSeats)

	_, err = s.Bookings().Create(ctx, domain.BookingRequest{TourID: 1, NumberOfPeople: 3})
	assert.ErrorIs(t, err, datasource.ErrValidation)

	_, err = s.Bookings().Create(ctx, domain.BookingRequest{TourID: 1, NumberOfPeople: 0})
	assert.ErrorIs(t, err, datasource.ErrValidation)
}

func TestSource_CancelRestoresSeats(t *testing.T) {
	s := newSource(t, WithFixture([]byte(scenarioFixture)))
	ctx := login(t, s, "guest")

	b, err := s.Bookings().Create(ctx, domain.BookingRequest{TourID: 1, NumberOfPeople: 5})
	require.NoError(t, err)
	tour, _ := s.Tours().GetByID(ctx, 1)
	assert.Equal(t, domain.TourStatusFull, tour.Status)

	cancelled, err := s.Bookings().Cancel(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, cancelled.Status)

	tour, _ = s.Tours().GetByID(ctx, 1)
	assert.Equal(t, 5, tour.AvailableSeats)
	assert.Equal(t, domain.TourStatusAvailable, tour.Status)

	_, err = s.Bookings().Cancel(ctx, b.ID)
	assert.ErrorIs(t, err, datasource.ErrValidation)
}

func TestSource_UpdateStatusEnforcesWorkflow(t *testing.T) {
	s := newSource(t)
	ctx := login(t, s, "admin")

	confirmed, err := s.Bookings().UpdateStatus(ctx, 2, domain.BookingStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusConfirmed, confirmed.Status)

	_, err = s.Bookings().UpdateStatus(ctx, 3, domain.BookingStatusCancelled)
	assert.ErrorIs(t, err, datasource.ErrValidation)

	_, err = s.Bookings().UpdateStatus(ctx, 404, domain.BookingStatusCancelled)
	assert.ErrorIs(t, err, datasource.ErrNotFound)
}

func TestSource_CustomerCannotCancelOthersBooking(t *testing.T) {
	s := newSource(t)
	_, err := s.Bookings().Cancel(login(t, s, "customer1"), 4)
	assert.ErrorIs(t, err, datasource.ErrNotFound)
}

func TestSource_TourCRUD(t *testing.T) {
	s := newSource(t)
	ctx := login(t, s, "admin")
	in := domain.TourInput{
		Name: "Con Dao Escape", Destination: "Con Dao", Duration: 3, Price: 5000000, MaxParticipants: 12, AvailableSeats: 12,
	}

	_, err := s.Tours().Create(login(t, s, "customer1"), in)
	assert.ErrorIs(t, err, datasource.ErrForbidden)

	created, err := s.Tours().Create(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, int64(9), created.ID)
	assert.Equal(t, domain.TourStatusAvailable, created.Status)

	in.Price = 5500000
	updated, err := s.Tours().Update(ctx, created.ID, in)
	require.NoError(t, err)
	assert.Equal(t, 5500000.0, updated.Price)

	require.NoError(t, s.Tours().Delete(ctx, created.ID))
	_, err = s.Tours().GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, datasource.ErrNotFound)

	_, err = s.Tours().Create(ctx, domain.TourInput{})
	assert.ErrorIs(t, err, datasource.ErrValidation)
}

func TestSource_CategoryDeleteInUse(t *testing.T) {
	s := newSource(t)
	ctx := login(t, s, "admin")
	assert.ErrorIs(t, s.Categories().Delete(ctx, 1), datasource.ErrValidation)

	c, err := s.Categories().Create(ctx, domain.CategoryInput{Name: "Culture"})
	require.NoError(t, err)
	assert.NoError(t, s.Categories().Delete(ctx, c.ID))
}

func TestSource_UserUpdatePermissions(t *testing.T) {
	s := newSource(t)
	customer := login(t, s, "customer1")

	u, err := s.Users().Update(customer, 3, domain.UserUpdate{Phone: "0999"})
	require.NoError(t, err)
	assert.Equal(t, "0999", u.Phone)

	_, err = s.Users().Update(customer, 3, domain.UserUpdate{Role: domain.RoleAdmin})
	assert.ErrorIs(t, err, datasource.ErrForbidden)

	inactive := false
	u, err = s.Users().Update(login(t, s, "admin"), 4, domain.UserUpdate{Active: &inactive})
	require.NoError(t, err)
	assert.False(t, u.Active)
}

func TestSource_ReviewUpdatesRating(t *testing.T) {
	s := newSource(t)
	ctx := login(t, s, "customer2")

	_, err := s.Reviews().Create(ctx, domain.ReviewInput{TourID: 5, Rating: 3, Comment: "Cold but pretty"})
	require.NoError(t, err)

	tour, err := s.Tours().GetByID(ctx, 5)
	require.NoError(t, err)
	require.NotNil(t, tour.Rating)
	assert.Equal(t, 3.0, *tour.Rating)
	assert.Equal(t, 1, tour.ReviewCount)

	list, err := s.Reviews().ByTour(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	require.NotNil(t, list[0].User)

	_, err = s.Reviews().Create(ctx, domain.ReviewInput{TourID: 5, Rating: 9, Comment: "x"})
	assert.ErrorIs(t, err, datasource.ErrValidation)
}
