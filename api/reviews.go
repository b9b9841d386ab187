package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/Domenick1991/tourbooking/internal/datasource"
	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/Domenick1991/tourbooking/internal/service/booking"
	"github.com/Domenick1991/tourbooking/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Invalidator drops cached catalog data; tour ratings move with reviews.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

type ReviewHandler struct {
	responder
	bookings booking.BookingUseCase
	reviews  datasource.ReviewService
	catalog  Invalidator
}

func NewReviewHandler(bookings booking.BookingUseCase, reviews datasource.ReviewService, catalog Invalidator, sessions SessionStore, log zerolog.Logger) *ReviewHandler {
	return &ReviewHandler{
		responder: responder{sessions: sessions, log: log},
		bookings:  bookings,
		reviews:   reviews,
		catalog:   catalog,
	}
}

// Register expects router to be behind RequireAuth.
func (h *ReviewHandler) Register(router *gin.RouterGroup) {
	router.GET("/reviews", h.list)
	router.POST("/reviews", h.create)
}

// Reviewable keeps the completed bookings, the only ones a customer can
// review.
func Reviewable(bookings []domain.Booking) []domain.Booking {
	out := make([]domain.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.Status == domain.BookingStatusCompleted {
			out = append(out, b)
		}
	}
	return out
}

func (h *ReviewHandler) list(c *gin.Context) {
	bookings, err := h.bookings.Mine(c.Request.Context())
	if err != nil {
		h.fail(c, err, "")
		return
	}
	h.render(c, http.StatusOK, "reviews", gin.H{
		"Title":    "Review your trips",
		"Bookings": Reviewable(bookings),
	})
}

func (h *ReviewHandler) create(c *gin.Context) {
	tourID, err := strconv.ParseInt(c.PostForm("tour_id"), 10, 64)
	if err != nil || tourID <= 0 {
		h.redirect(c, session.FlashError, "Choose a tour to review.", "/reviews")
		return
	}
	bookingID, _ := strconv.ParseInt(c.PostForm("booking_id"), 10, 64)
	rating, _ := strconv.Atoi(c.PostForm("rating"))

	in := domain.ReviewInput{
		TourID:    tourID,
		BookingID: bookingID,
		Rating:    rating,
		Comment:   strings.TrimSpace(c.PostForm("comment")),
	}
	if err := in.Validate(); err != nil {
		h.redirect(c, session.FlashError, err.Error(), "/reviews")
		return
	}

	ctx := c.Request.Context()
	if _, err := h.reviews.Create(ctx, in); err != nil {
		h.fail(c, err, "/reviews")
		return
	}
	h.catalog.Invalidate(ctx)
	h.redirect(c, session.FlashSuccess, "Thank you for your review.", "/reviews")
}
