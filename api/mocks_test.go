package api

import (
	"context"

	"github.com/Domenick1991/tourbooking/internal/catalog"
	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/Domenick1991/tourbooking/internal/service/admin"
	"github.com/Domenick1991/tourbooking/internal/service/booking"
	catalogsvc "github.com/Domenick1991/tourbooking/internal/service/catalog"
	"github.com/stretchr/testify/mock"
)

// MockBookingUseCase is a mock implementation of booking.BookingUseCase
type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) Mine(ctx context.Context) ([]domain.Booking, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) Create(ctx context.Context, input booking.CreateBookingInput) (*domain.Booking, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) Request(ctx context.Context, actor booking.Actor, bookingID int64, action booking.Action) (*booking.Confirmation, error) {
	args := m.Called(ctx, actor, bookingID, action)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Confirmation), args.Error(1)
}

func (m *MockBookingUseCase) Apply(ctx context.Context, actor booking.Actor, bookingID int64, action booking.Action) (*domain.Booking, error) {
	args := m.Called(ctx, actor, bookingID, action)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

// MockCatalogUseCase is a mock implementation of catalog.CatalogUseCase
type MockCatalogUseCase struct {
	mock.Mock
}

func (m *MockCatalogUseCase) Tours(ctx context.Context) ([]domain.Tour, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Tour), args.Error(1)
}

func (m *MockCatalogUseCase) Categories(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *MockCatalogUseCase) Invalidate(ctx context.Context) {
	m.Called(ctx)
}

func (m *MockCatalogUseCase) Browse(ctx context.Context, q catalog.Query) (*catalogsvc.Page, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogsvc.Page), args.Error(1)
}

func (m *MockCatalogUseCase) Tour(ctx context.Context, id int64) (*domain.Tour, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tour), args.Error(1)
}

func (m *MockCatalogUseCase) Reviews(ctx context.Context, tourID int64) ([]domain.Review, error) {
	args := m.Called(ctx, tourID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Review), args.Error(1)
}

func (m *MockCatalogUseCase) Featured(ctx context.Context, n int) ([]domain.Tour, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Tour), args.Error(1)
}
func (m *MockCatalogUseCase) Upcoming(ctx context.Context, n int) ([]domain.Tour, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Tour), args.Error(1)
}

// MockAdminUseCase mocks the admin operations the tests touch; calling
// any other method panics on the nil embedded interface.
type MockAdminUseCase struct {
	admin.AdminUseCase
	mock.Mock
}

func (m *MockAdminUseCase) Dashboard(ctx context.Context) (*admin.Dashboard, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*admin.Dashboard), args.Error(1)
}

func (m *MockAdminUseCase) Categories(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *MockAdminUseCase) CreateTour(ctx context.Context, in domain.TourInput) (*domain.Tour, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tour), args.Error(1)
}

func (m *MockAdminUseCase) Bookings(ctx context.Context, f admin.BookingFilter) (*admin.BookingList, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*admin.BookingList), args.Error(1)
}

func (m *MockAdminUseCase) UpdateUser(ctx context.Context, id int64, up domain.UserUpdate) (*domain.User, error) {
	args := m.Called(ctx, id, up)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAdminUseCase) DeleteUser(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthResponse), args.Error(1)
}

func (m *MockAuthService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthResponse), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) List(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) Update(ctx context.Context, id int64, update domain.UserUpdate) (*domain.User, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) ByTour(ctx context.Context, tourID int64) ([]domain.Review, error) {
	args := m.Called(ctx, tourID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Review), args.Error(1)
}

func (m *MockReviewService) Create(ctx context.Context, input domain.ReviewInput) (*domain.Review, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

type MockCenter struct {
	mock.Mock
}

func (m *MockCenter) List(ctx context.Context, u domain.User) ([]domain.Notification, error) {
	args := m.Called(ctx, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Notification), args.Error(1)
}

func (m *MockCenter) UnreadCount(ctx context.Context, u domain.User) (int, error) {
	args := m.Called(ctx, u)
	return args.Int(0), args.Error(1)
}

func (m *MockCenter) MarkRead(ctx context.Context, u domain.User, id string) error {
	return m.Called(ctx, u, id).Error(0)
}

func (m *MockCenter) MarkAllRead(ctx context.Context, u domain.User) error {
	return m.Called(ctx, u).Error(0)
}
