package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/Domenick1991/tourbooking/internal/datasource"
	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/Domenick1991/tourbooking/internal/service/admin"
	"github.com/Domenick1991/tourbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newAdminHarness(t *testing.T) (*harness, *MockAdminUseCase, *MockBookingUseCase) {
	h := newHarness(t)
	svc, bookings := &MockAdminUseCase{}, &MockBookingUseCase{}
	NewAdminHandler(svc, bookings, h.store, zerolog.Nop()).Register(h.router.Group("/admin", RequireBackOffice()))
	h.signIn(staff)
	return h, svc, bookings
}

func TestAdminHandler_dashboard(t *testing.T) {
	h, svc, _ := newAdminHarness(t)
	svc.On("Dashboard", mock.Anything).Return(&admin.Dashboard{Stats: admin.Stats{TotalTours: 8}}, nil)

	w := h.do(http.MethodGet, "/admin", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin/dashboard", h.pages.name)
}

func TestAdminHandler_dashboardUnauthorized(t *testing.T) {
	h, svc, _ := newAdminHarness(t)
	svc.On("Dashboard", mock.Anything).Return(nil, datasource.NewAPIError(http.StatusUnauthorized, ""))

	w := h.do(http.MethodGet, "/admin", nil)

	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.False(t, h.session().Authenticated())
}

func TestAdminHandler_bookingsFilter(t *testing.T) {
	h, svc, _ := newAdminHarness(t)
	f := admin.BookingFilter{Term: "ha long", Status: domain.BookingStatusPending, Payment: domain.PaymentStatusPending}
	svc.On("Bookings", mock.Anything, f).Return(&admin.BookingList{
		Filter:   f,
		Bookings: []domain.Booking{{ID: 1, Status: domain.BookingStatusPending}},
	}, nil)

	w := h.do(http.MethodGet, "/admin/bookings?q=ha+long&status=pending&payment=PENDING", nil)

	require.Equal(t, http.StatusOK, w.Code)
	rows := h.pages.data["Rows"].([]BookingRow)
	require.Len(t, rows, 1)
	assert.Equal(t, []booking.Action{booking.ActionConfirm, booking.ActionCancel}, rows[0].Actions)
}

func TestAdminHandler_bookingWorkflow(t *testing.T) {
	h, _, bookings := newAdminHarness(t)
	bookings.On("Request", mock.Anything, booking.ActorBackOffice, int64(2), booking.ActionConfirm).
		Return(&booking.Confirmation{Title: "Confirm booking", Action: booking.ActionConfirm}, nil)
	bookings.On("Apply", mock.Anything, booking.ActorBackOffice, int64(2), booking.ActionConfirm).
		Return(&domain.Booking{ID: 2, Status: domain.BookingStatusConfirmed}, nil)
	bookings.On("Apply", mock.Anything, booking.ActorBackOffice, int64(3), booking.ActionCancel).
		Return(nil, domain.ErrTransitionNotAllowed)

	w := h.do(http.MethodGet, "/admin/bookings/2/confirm", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin/booking_confirm", h.pages.name)
	assert.Equal(t, "/admin/bookings/2/confirm", h.pages.data["Action"])

	w = h.do(http.MethodPost, "/admin/bookings/2/confirm", nil)
	assert.Equal(t, "/admin/bookings", w.Header().Get("Location"))
	assert.Equal(t, "Booking #2 is now confirmed.", h.flashes()[0].Message)

	w = h.do(http.MethodPost, "/admin/bookings/3/cancel", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Len(t, h.flashes(), 2)

	w = h.do(http.MethodPost, "/admin/bookings/3/archive", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	bookings.AssertNumberOfCalls(t, "Apply", 2)
}

func TestAdminHandler_createTourInvalid(t *testing.T) {
	h, svc, _ := newAdminHarness(t)
	svc.On("Categories", mock.Anything).Return([]domain.Category{{ID: 1, Name: "Beach"}}, nil)

	w := h.do(http.MethodPost, "/admin/tours", url.Values{"name": {"Nameless"}, "price": {"abc"}})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "admin/tour_form", h.pages.name)
	assert.Contains(t, h.pages.data["Error"], "price must be a number")
	svc.AssertNotCalled(t, "CreateTour", mock.Anything, mock.Anything)
}

func TestAdminHandler_createTour(t *testing.T) {
	h, svc, _ := newAdminHarness(t)
	svc.On("CreateTour", mock.Anything, mock.MatchedBy(func(in domain.TourInput) bool {
		return in.Name == "Sapa Trek" && in.MaxParticipants == 10 && *in.CategoryID == 3
	})).Return(&domain.Tour{ID: 9, Name: "Sapa Trek"}, nil)

	w := h.do(http.MethodPost, "/admin/tours", url.Values{
		"name": {"Sapa Trek"}, "destination": {"Sapa"}, "duration": {"3"}, "price": {"1800000"},
		"max_participants": {"10"}, "available_seats": {"10"}, "category_id": {"3"},
		"start_date": {"2026-12-01"}, "end_date": {"2026-12-03"}, "status": {"available"},
	})

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/tours", w.Header().Get("Location"))
	svc.AssertExpectations(t)
}

func TestAdminHandler_users(t *testing.T) {
	h, svc, _ := newAdminHarness(t)
	active := false
	svc.On("UpdateUser", mock.Anything, int64(4), domain.UserUpdate{Role: domain.RoleStaff, Active: &active}).
		Return(&domain.User{ID: 4}, nil)

	w := h.do(http.MethodPost, "/admin/users/4", url.Values{"role": {"staff"}, "active": {"false"}})
	assert.Equal(t, "/admin/users", w.Header().Get("Location"))
	svc.AssertExpectations(t)

	w = h.do(http.MethodPost, "/admin/users/2/delete", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "You cannot delete your own account.", h.flashes()[1].Message)
	svc.AssertNotCalled(t, "DeleteUser", mock.Anything, mock.Anything)
}

func TestParseTourForm(t *testing.T) {
	gin.SetMode(gin.TestMode)
	form := url.Values{
		"name": {" Hoi An "}, "destination": {"Hoi An"}, "duration": {"2"}, "price": {"990000.5"},
		"max_participants": {"12"}, "available_seats": {"4"}, "start_date": {"2026-10-01"},
		"end_date": {"bad"}, "status": {"full"},
	}
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/admin/tours", strings.NewReader(form.Encode()))
	c.Request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	in, err := ParseTourForm(c)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "end date is not a valid date")
	assert.Equal(t, "Hoi An", in.Name)
	assert.Equal(t, 990000.5, in.Price)
	assert.Equal(t, domain.TourStatusFull, in.Status)
	assert.Equal(t, domain.NewDate(2026, 10, 1), in.StartDate)
	assert.Nil(t, in.CategoryID)
}

func TestTourInputOf(t *testing.T) {
	in := TourInputOf(domain.Tour{Name: "X", Category: &domain.Category{ID: 2}, AvailableSeats: 3})
	require.NotNil(t, in.CategoryID)
	assert.Equal(t, int64(2), *in.CategoryID)
	assert.Equal(t, 3, in.AvailableSeats)
}

func TestAdminHandler_bookingApplyBackendFailure(t *testing.T) {
	h, _, bookings := newAdminHarness(t)
	bookings.On("Apply", mock.Anything, booking.ActorBackOffice, int64(7), booking.ActionConfirm).
		Return(nil, datasource.NewAPIError(http.StatusInternalServerError, "db down"))
	bookings.On("Apply", mock.Anything, booking.ActorBackOffice, int64(8), booking.ActionCancel).
		Return(nil, fmt.Errorf("update status: %w", datasource.ErrTransport))

	w := h.do(http.MethodPost, "/admin/bookings/7/confirm", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/bookings", w.Header().Get("Location"))

	w = h.do(http.MethodPost, "/admin/bookings/8/cancel", nil)
	assert.Equal(t, http.StatusFound, w.Code)

	flashes := h.flashes()
	require.Len(t, flashes, 2)
	assert.Equal(t, "db down", flashes[0].Message)
	assert.Equal(t, "The booking service is unreachable. Please try again later.", flashes[1].Message)
	assert.True(t, h.session().Authenticated())
}
