// Package datasource defines the backend contract shared by the live REST
// client and the fixture-backed mock. One implementation is chosen at
// startup from configuration.
package datasource

import (
	"context"

	"github.com/Domenick1991/tourbooking/internal/domain"
)

type DataSource interface {
	Tours() TourService
	Bookings() BookingService
	Categories() CategoryService
	Users() UserService
	Reviews() ReviewService
	Auth() AuthService
}

type TourService interface {
	List(ctx context.Context) ([]domain.Tour, error)
	Available(ctx context.Context) ([]domain.Tour, error)
	GetByID(ctx context.Context, id int64) (*domain.Tour, error)
	Search(ctx context.Context, filters domain.TourSearchFilters) ([]domain.Tour, error)
	Create(ctx context.Context, input domain.TourInput) (*domain.Tour, error)
	Update(ctx context.Context, id int64, input domain.TourInput) (*domain.Tour, error)
	Delete(ctx context.Context, id int64) error
}

type BookingService interface {
	List(ctx context.Context) ([]domain.Booking, error)
	Mine(ctx context.Context) ([]domain.Booking, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	Create(ctx context.Context, req domain.BookingRequest) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) (*domain.Booking, error)
	Cancel(ctx context.Context, id int64) (*domain.Booking, error)
	Delete(ctx context.Context, id int64) error
}

type CategoryService interface {
	List(ctx context.Context) ([]domain.Category, error)
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
	Create(ctx context.Context, input domain.CategoryInput) (*domain.Category, error)
	Update(ctx context.Context, id int64, input domain.CategoryInput) (*domain.Category, error)
	Delete(ctx context.Context, id int64) error
}

type UserService interface {
	List(ctx context.Context) ([]domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Update(ctx context.Context, id int64, update domain.UserUpdate) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
}

type ReviewService interface {
	ByTour(ctx context.Context, tourID int64) ([]domain.Review, error)
	Create(ctx context.Context, input domain.ReviewInput) (*domain.Review, error)
}

type AuthService interface {
	Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error)
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResponse, error)
}

type tokenKey struct{}

// WithToken attaches the caller's bearer token to ctx.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func TokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}
