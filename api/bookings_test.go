package api

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/Domenick1991/tourbooking/internal/datasource"
	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/Domenick1991/tourbooking/internal/format"
	"github.com/Domenick1991/tourbooking/internal/service/booking"
	"github.com/Domenick1991/tourbooking/internal/session"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newBookingHarness(t *testing.T) (*harness, *MockBookingUseCase) {
	h := newHarness(t)
	svc := &MockBookingUseCase{}
	handler := NewBookingHandler(svc, h.store, format.New("vi", "VND"), zerolog.Nop())
	handler.Register(h.router.Group("/", RequireAuth()))
	h.signIn(customer)
	return h, svc
}

func TestBookingHandler_create(t *testing.T) {
	h, svc := newBookingHarness(t)

	input := booking.CreateBookingInput{SessionID: h.sid, TourID: 1, NumberOfPeople: 3, SpecialRequests: "vegetarian"}
	svc.On("Create", mock.Anything, input).Return(&domain.Booking{ID: 6, TotalAmount: 1500000}, nil)

	w := h.do(http.MethodPost, "/tours/1/book", url.Values{"people": {"3"}, "special_requests": {" vegetarian "}})

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/bookings", w.Header().Get("Location"))
	flashes := h.flashes()
	require.Len(t, flashes, 1)
	assert.Equal(t, session.FlashSuccess, flashes[0].Kind)
	assert.Contains(t, flashes[0].Message, "Booking #6 created")
	svc.AssertExpectations(t)
}

func TestBookingHandler_createRejected(t *testing.T) {
	h, svc := newBookingHarness(t)
	svc.On("Create", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("%w: 2 left", booking.ErrNotEnoughSeats))

	w := h.do(http.MethodPost, "/tours/1/book", url.Values{"people": {"9"}})

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/tours/1", w.Header().Get("Location"))
	flashes := h.flashes()
	require.Len(t, flashes, 1)
	assert.Equal(t, session.FlashError, flashes[0].Kind)
	assert.Contains(t, flashes[0].Message, "not enough available seats")
}

func TestBookingHandler_createBadNumber(t *testing.T) {
	h, svc := newBookingHarness(t)

	w := h.do(http.MethodPost, "/tours/1/book", url.Values{"people": {"lots"}})

	assert.Equal(t, "/tours/1", w.Header().Get("Location"))
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestBookingHandler_unauthorizedExpiresSession(t *testing.T) {
	h, svc := newBookingHarness(t)
	svc.On("Mine", mock.Anything).Return(nil, datasource.NewAPIError(http.StatusUnauthorized, "token expired"))

	w := h.do(http.MethodGet, "/bookings", nil)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	sess := h.session()
	assert.False(t, sess.Authenticated())
	require.Len(t, sess.Flash, 1)
	assert.Equal(t, session.FlashWarning, sess.Flash[0].Kind)
}

func TestBookingHandler_list(t *testing.T) {
	h, svc := newBookingHarness(t)
	svc.On("Mine", mock.Anything).Return([]domain.Booking{
		{ID: 1, Status: domain.BookingStatusPending},
		{ID: 2, Status: domain.BookingStatusCompleted},
	}, nil)

	w := h.do(http.MethodGet, "/bookings", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "bookings", h.pages.name)
	rows := h.pages.data["Rows"].([]BookingRow)
	require.Len(t, rows, 2)
	assert.Equal(t, []booking.Action{booking.ActionCancel}, rows[0].Actions)
	assert.Empty(t, rows[1].Actions)
	assert.Equal(t, 2, h.pages.data["Summary"].(booking.Summary).Total)
}

func TestBookingHandler_confirmCancel(t *testing.T) {
	h, svc := newBookingHarness(t)
	svc.On("Request", mock.Anything, booking.ActorCustomer, int64(4), booking.ActionCancel).
		Return(&booking.Confirmation{Title: "Cancel booking"}, nil)
	svc.On("Request", mock.Anything, booking.ActorCustomer, int64(5), booking.ActionCancel).
		Return(nil, domain.ErrTransitionNotAllowed)

	w := h.do(http.MethodGet, "/bookings/4/cancel", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "booking_cancel", h.pages.name)
	assert.Equal(t, "/bookings/4/cancel", h.pages.data["Action"])

	w = h.do(http.MethodGet, "/bookings/5/cancel", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/bookings", w.Header().Get("Location"))
}

func TestBookingHandler_cancel(t *testing.T) {
	h, svc := newBookingHarness(t)
	svc.On("Apply", mock.Anything, booking.ActorCustomer, int64(4), booking.ActionCancel).
		Return(&domain.Booking{ID: 4, Status: domain.BookingStatusCancelled}, nil)

	w := h.do(http.MethodPost, "/bookings/4/cancel", nil)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/bookings", w.Header().Get("Location"))
	assert.Equal(t, "Booking #4 cancelled.", h.flashes()[0].Message)
}

func TestBookingHandler_backendDown(t *testing.T) {
	h, svc := newBookingHarness(t)
	svc.On("Apply", mock.Anything, booking.ActorCustomer, int64(4), booking.ActionCancel).
		Return(nil, fmt.Errorf("cancel: %w", datasource.ErrTransport))
	svc.On("Mine", mock.Anything).Return(nil, fmt.Errorf("list: %w", datasource.ErrTransport))

	w := h.do(http.MethodPost, "/bookings/4/cancel", nil)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/bookings", w.Header().Get("Location"))
	flashes := h.flashes()
	require.Len(t, flashes, 1)
	assert.Equal(t, session.FlashError, flashes[0].Kind)
	assert.Equal(t, "The booking service is unreachable. Please try again later.", flashes[0].Message)
	assert.True(t, h.session().Authenticated())

	w = h.do(http.MethodGet, "/bookings", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "error", h.pages.name)
}

func TestBookingHandler_createServerError(t *testing.T) {
	h, svc := newBookingHarness(t)
	svc.On("Create", mock.Anything, mock.Anything).
		Return(nil, datasource.NewAPIError(http.StatusInternalServerError, "Booking service failed"))

	w := h.do(http.MethodPost, "/tours/1/book", url.Values{"people": {"2"}})

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/tours/1", w.Header().Get("Location"))
	assert.Equal(t, "Booking service failed", h.flashes()[0].Message)
}

func TestBookingHandler_notFound(t *testing.T) {
	h, svc := newBookingHarness(t)
	svc.On("Request", mock.Anything, booking.ActorCustomer, int64(99), booking.ActionCancel).
		Return(nil, datasource.NewAPIError(http.StatusNotFound, "booking 99 not found"))

	w := h.do(http.MethodGet, "/bookings/99/cancel", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = h.do(http.MethodGet, "/bookings/abc/cancel", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
