package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/Domenick1991/tourbooking/internal/format"
	"github.com/Domenick1991/tourbooking/internal/service/booking"
	"github.com/Domenick1991/tourbooking/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// BookingRow pairs a booking with the controls its viewer may use.
type BookingRow struct {
	Booking domain.Booking
	Actions []booking.Action
}

func rowsFor(bookings []domain.Booking, actor booking.Actor) []BookingRow {
	rows := make([]BookingRow, 0, len(bookings))
	for _, b := range bookings {
		rows = append(rows, BookingRow{Booking: b, Actions: booking.Actions(b, actor)})
	}
	return rows
}

type BookingHandler struct {
	responder
	service booking.BookingUseCase
	format  format.Formatter
}

func NewBookingHandler(service booking.BookingUseCase, sessions SessionStore, f format.Formatter, log zerolog.Logger) *BookingHandler {
	return &BookingHandler{
		responder: responder{sessions: sessions, log: log},
		service:   service,
		format:    f,
	}
}

// Register expects router to be behind RequireAuth.
func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/tours/:id/book", h.create)
	router.GET("/bookings", h.list)
	router.GET("/bookings/:id/cancel", h.confirmCancel)
	router.POST("/bookings/:id/cancel", h.cancel)
}

func (h *BookingHandler) create(c *gin.Context) {
	tourID, ok := paramID(c, "id")
	if !ok {
		h.notFound(c)
		return
	}
	back := fmt.Sprintf("/tours/%d", tourID)

	people, err := strconv.Atoi(strings.TrimSpace(c.PostForm("people")))
	if err != nil {
		h.redirect(c, session.FlashError, booking.ErrInvalidParty.Error(), back)
		return
	}

	b, err := h.service.Create(c.Request.Context(), booking.CreateBookingInput{
		SessionID:       session.IDFrom(c.Request.Context()),
		TourID:          tourID,
		NumberOfPeople:  people,
		SpecialRequests: strings.TrimSpace(c.PostForm("special_requests")),
	})
	if err != nil {
		h.fail(c, err, back)
		return
	}
	h.redirect(c, session.FlashSuccess,
		fmt.Sprintf("Booking #%d created. Total: %s", b.ID, h.format.Currency(b.TotalAmount)),
		"/bookings")
}

func (h *BookingHandler) list(c *gin.Context) {
	bookings, err := h.service.Mine(c.Request.Context())
	if err != nil {
		h.fail(c, err, "")
		return
	}
	h.render(c, http.StatusOK, "bookings", gin.H{
		"Title":   "My bookings",
		"Rows":    rowsFor(bookings, booking.ActorCustomer),
		"Summary": booking.Summarize(bookings),
	})
}

func (h *BookingHandler) confirmCancel(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		h.notFound(c)
		return
	}
	confirmation, err := h.service.Request(c.Request.Context(), booking.ActorCustomer, id, booking.ActionCancel)
	if err != nil {
		h.fail(c, err, "/bookings")
		return
	}
	h.render(c, http.StatusOK, "booking_cancel", gin.H{
		"Title":        confirmation.Title,
		"Confirmation": confirmation,
		"Action":       fmt.Sprintf("/bookings/%d/cancel", id),
		"Back":         "/bookings",
	})
}

func (h *BookingHandler) cancel(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		h.notFound(c)
		return
	}
	b, err := h.service.Apply(c.Request.Context(), booking.ActorCustomer, id, booking.ActionCancel)
	if err != nil {
		h.fail(c, err, "/bookings")
		return
	}
	h.redirect(c, session.FlashSuccess, fmt.Sprintf("Booking #%d cancelled.", b.ID), "/bookings")
}
