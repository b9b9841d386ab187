package rest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Domenick1991/tourbooking/internal/datasource"
	"github.com/Domenick1991/tourbooking/internal/domain"
)

type tours struct{ c *Client }

func (s tours) List(ctx context.Context) ([]domain.Tour, error) {
	var out []domain.Tour
	err := s.c.withRetry(ctx, func() error {
		out = nil
		return s.c.do(ctx, http.MethodGet, "/tours", nil, &out)
	})
	return out, err
}

func (s tours) Available(ctx context.Context) ([]domain.Tour, error) {
	var out []domain.Tour
	err := s.c.do(ctx, http.MethodGet, "/tours/available", nil, &out)
	return out, err
}

func (s tours) GetByID(ctx context.Context, id int64) (*domain.Tour, error) {
	var out domain.Tour
	if err := s.c.do(ctx, http.MethodGet, fmt.Sprintf("/tours/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s tours) Search(ctx context.Context, f domain.TourSearchFilters) ([]domain.Tour, error) {
	params := url.Values{}
	if f.Destination != "" {
		params.Set("destination", f.Destination)
	}
	if f.CategoryID != nil {
		params.Set("categoryId", strconv.FormatInt(*f.CategoryID, 10))
	}
	if f.MinPrice != nil {
		params.Set("minPrice", strconv.FormatFloat(*f.MinPrice, 'f', -1, 64))
	}
	if f.MaxPrice != nil {
		params.Set("maxPrice", strconv.FormatFloat(*f.MaxPrice, 'f', -1, 64))
	}
	if f.Status != "" {
		params.Set("status", string(f.Status))
	}
	var out []domain.Tour
	err := s.c.do(ctx, http.MethodGet, "/tours/search?"+params.Encode(), nil, &out)
	return out, err
}

func (s tours) Create(ctx context.Context, input domain.TourInput) (*domain.Tour, error) {
	var out domain.Tour
	if err := s.c.do(ctx, http.MethodPost, "/tours", input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s tours) Update(ctx context.Context, id int64, input domain.TourInput) (*domain.Tour, error) {
	var out domain.Tour
	if err := s.c.do(ctx, http.MethodPut, fmt.Sprintf("/tours/%d", id), input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s tours) Delete(ctx context.Context, id int64) error {
	return s.c.do(ctx, http.MethodDelete, fmt.Sprintf("/tours/%d", id), nil, nil)
}

type bookings struct{ c *Client }

func (s bookings) List(ctx context.Context) ([]domain.Booking, error) {
	var out []domain.Booking
	err := s.c.do(ctx, http.MethodGet, "/bookings", nil, &out)
	return out, err
}

func (s bookings) Mine(ctx context.Context) ([]domain.Booking, error) {
	var out []domain.Booking
	err := s.c.do(ctx, http.MethodGet, "/bookings/my", nil, &out)
	return out, err
}

func (s bookings) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var out domain.Booking
	if err := s.c.do(ctx, http.MethodGet, fmt.Sprintf("/bookings/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s bookings) Create(ctx context.Context, req domain.BookingRequest) (*domain.Booking, error) {
	var out domain.Booking
	if err := s.c.do(ctx, http.MethodPost, "/bookings", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type statusBody struct {
	Status domain.BookingStatus `json:"status"`
}

func (s bookings) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) (*domain.Booking, error) {
	var out domain.Booking
	if err := s.c.do(ctx, http.MethodPut, fmt.Sprintf("/bookings/%d/status", id), statusBody{Status: status}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s bookings) Cancel(ctx context.Context, id int64) (*domain.Booking, error) {
	var out domain.Booking
	if err := s.c.do(ctx, http.MethodPut, fmt.Sprintf("/bookings/%d/cancel", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s bookings) Delete(ctx context.Context, id int64) error {
	return s.c.do(ctx, http.MethodDelete, fmt.Sprintf("/bookings/%d", id), nil, nil)
}

type categories struct{ c *Client }

func (s categories) List(ctx context.Context) ([]domain.Category, error) {
	var out []domain.Category
	err := s.c.withRetry(ctx, func() error {
		out = nil
		return s.c.do(ctx, http.MethodGet, "/categories", nil, &out)
	})
	return out, err
}

func (s categories) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	var out domain.Category
	if err := s.c.do(ctx, http.MethodGet, fmt.Sprintf("/categories/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s categories) Create(ctx context.Context, input domain.CategoryInput) (*domain.Category, error) {
	var out domain.Category
	if err := s.c.do(ctx, http.MethodPost, "/categories", input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s categories) Update(ctx context.Context, id int64, input domain.CategoryInput) (*domain.Category, error) {
	var out domain.Category
	if err := s.c.do(ctx, http.MethodPut, fmt.Sprintf("/categories/%d", id), input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s categories) Delete(ctx context.Context, id int64) error {
	return s.c.do(ctx, http.MethodDelete, fmt.Sprintf("/categories/%d", id), nil, nil)
}

type users struct{ c *Client }

func (s users) List(ctx context.Context) ([]domain.User, error) {
	var out []domain.User
	err := s.c.do(ctx, http.MethodGet, "/users", nil, &out)
	return out, err
}

func (s users) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var out domain.User
	if err := s.c.do(ctx, http.MethodGet, fmt.Sprintf("/users/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s users) Update(ctx context.Context, id int64, update domain.UserUpdate) (*domain.User, error) {
	var out domain.User
	if err := s.c.do(ctx, http.MethodPut, fmt.Sprintf("/users/%d", id), update, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s users) Delete(ctx context.Context, id int64) error {
	return s.c.do(ctx, http.MethodDelete, fmt.Sprintf("/users/%d", id), nil, nil)
}

type reviews struct{ c *Client }

func (s reviews) ByTour(ctx context.Context, tourID int64) ([]domain.Review, error) {
	var out []domain.Review
	err := s.c.do(ctx, http.MethodGet, fmt.Sprintf("/reviews/tour/%d", tourID), nil, &out)
	return out, err
}

func (s reviews) Create(ctx context.Context, input domain.ReviewInput) (*domain.Review, error) {
	var out domain.Review
	if err := s.c.do(ctx, http.MethodPost, "/reviews", input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type auth struct{ c *Client }

func (s auth) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error) {
	var out domain.AuthResponse
	if err := s.c.do(ctx, http.MethodPost, "/auth/login", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s auth) Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResponse, error) {
	var out domain.AuthResponse
	if err := s.c.do(ctx, http.MethodPost, "/auth/register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

var (
	_ datasource.TourService     = tours{}
	_ datasource.BookingService  = bookings{}
	_ datasource.CategoryService = categories{}
	_ datasource.UserService     = users{}
	_ datasource.ReviewService   = reviews{}
	_ datasource.AuthService     = auth{}
)
