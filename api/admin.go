package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/Domenick1991/tourbooking/internal/format"
	"github.com/Domenick1991/tourbooking/internal/service/admin"
	"github.com/Domenick1991/tourbooking/internal/service/booking"
	"github.com/Domenick1991/tourbooking/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type AdminHandler struct {
	responder
	service  admin.AdminUseCase
	bookings booking.BookingUseCase
}

func NewAdminHandler(service admin.AdminUseCase, bookings booking.BookingUseCase, sessions SessionStore, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		responder: responder{sessions: sessions, log: log},
		service:   service,
		bookings:  bookings,
	}
}

// Register expects router to be behind RequireBackOffice.
func (h *AdminHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.dashboard)

	router.GET("/tours", h.tours)
	router.GET("/tours/new", h.newTour)
	router.POST("/tours", h.createTour)
	router.GET("/tours/:id/edit", h.editTour)
	router.POST("/tours/:id", h.updateTour)
	router.POST("/tours/:id/delete", h.deleteTour)

	router.GET("/bookings", h.bookingList)
	router.GET("/bookings/:id/:action", h.confirmBooking)
	router.POST("/bookings/:id/:action", h.applyBooking)

	router.GET("/categories", h.categories)
	router.POST("/categories", h.createCategory)
	router.POST("/categories/:id", h.updateCategory)
	router.POST("/categories/:id/delete", h.deleteCategory)

	router.GET("/users", h.users)
	router.POST("/users/:id", h.updateUser)
	router.POST("/users/:id/delete", h.deleteUser)
}

func (h *AdminHandler) dashboard(c *gin.Context) {
	d, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		h.fail(c, err, "")
		return
	}
	h.render(c, http.StatusOK, "admin/dashboard", gin.H{"Title": "Dashboard", "Dashboard": d})
}

func (h *AdminHandler) tours(c *gin.Context) {
	tours, err := h.service.Tours(c.Request.Context())
	if err != nil {
		h.fail(c, err, "")
		return
	}
	h.render(c, http.StatusOK, "admin/tours", gin.H{"Title": "Tours", "Tours": tours})
}

func (h *AdminHandler) newTour(c *gin.Context) {
	h.tourForm(c, http.StatusOK, nil, domain.TourInput{Status: domain.TourStatusAvailable}, "")
}

func (h *AdminHandler) editTour(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		h.notFound(c)
		return
	}
	t, err := h.service.Tour(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "/admin/tours")
		return
	}
	h.tourForm(c, http.StatusOK, &id, TourInputOf(*t), "")
}

func (h *AdminHandler) tourForm(c *gin.Context, status int, id *int64, in domain.TourInput, formErr string) {
	categories, err := h.service.Categories(c.Request.Context())
	if err != nil {
		h.log.Warn().Err(err).Msg("tour form categories")
	}
	title, action := "New tour", "/admin/tours"
	if id != nil {
		title, action = "Edit tour", fmt.Sprintf("/admin/tours/%d", *id)
	}
	h.render(c, status, "admin/tour_form", gin.H{
		"Title":      title,
		"Action":     action,
		"Form":       in,
		"Error":      formErr,
		"Categories": categories,
		"Statuses":   []domain.TourStatus{domain.TourStatusAvailable, domain.TourStatusFull, domain.TourStatusCancelled, domain.TourStatusCompleted},
	})
}

func (h *AdminHandler) createTour(c *gin.Context) {
	in, err := ParseTourForm(c)
	if err == nil {
		err = in.Validate()
	}
	if err != nil {
		h.tourForm(c, http.StatusUnprocessableEntity, nil, in, err.Error())
		return
	}
	t, err := h.service.CreateTour(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err, "/admin/tours/new")
		return
	}
	h.redirect(c, session.FlashSuccess, fmt.Sprintf("Tour %q created.", t.Name), "/admin/tours")
}

func (h *AdminHandler) updateTour(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		h.notFound(c)
		return
	}
	in, err := ParseTourForm(c)
	if err == nil {
		err = in.Validate()
	}
	if err != nil {
		h.tourForm(c, http.StatusUnprocessableEntity, &id, in, err.Error())
		return
	}
	t, err := h.service.UpdateTour(c.Request.Context(), id, in)
	if err != nil {
		h.fail(c, err, fmt.Sprintf("/admin/tours/%d/edit", id))
		return
	}
	h.redirect(c, session.FlashSuccess, fmt.Sprintf("Tour %q saved.", t.Name), "/admin/tours")
}

func (h *AdminHandler) deleteTour(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		h.notFound(c)
		return
	}
	if err := h.service.DeleteTour(c.Request.Context(), id); err != nil {
		h.fail(c, err, "/admin/tours")
		return
	}
	h.redirect(c, session.FlashSuccess, "Tour deleted.", "/admin/tours")
}

func (h *AdminHandler) bookingList(c *gin.Context) {
	f := admin.BookingFilter{
		Term:    strings.TrimSpace(c.Query("q")),
		Status:  domain.BookingStatus(strings.ToUpper(c.Query("status"))),
		Payment: domain.PaymentStatus(strings.ToUpper(c.Query("payment"))),
	}
	list, err := h.service.Bookings(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	h.render(c, http.StatusOK, "admin/bookings", gin.H{
		"Title":           "Bookings",
		"Filter":          list.Filter,
		"Rows":            rowsFor(list.Bookings, booking.ActorBackOffice),
		"Summary":         list.Summary,
		"Statuses":        domain.BookingStatuses,
		"PaymentStatuses": domain.PaymentStatuses,
	})
}

func (h *AdminHandler) bookingAction(c *gin.Context) (int64, booking.Action, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		h.notFound(c)
		return 0, "", false
	}
	action, err := booking.ParseAction(c.Param("action"))
	if err != nil {
		h.notFound(c)
		return 0, "", false
	}
	return id, action, true
}

func (h *AdminHandler) confirmBooking(c *gin.Context) {
	id, action, ok := h.bookingAction(c)
	if !ok {
		return
	}
	confirmation, err := h.bookings.Request(c.Request.Context(), booking.ActorBackOffice, id, action)
	if err != nil {
		h.fail(c, err, "/admin/bookings")
		return
	}
	h.render(c, http.StatusOK, "admin/booking_confirm", gin.H{
		"Title":        confirmation.Title,
		"Confirmation": confirmation,
		"Action":       fmt.Sprintf("/admin/bookings/%d/%s", id, action),
		"Back":         "/admin/bookings",
	})
}

func (h *AdminHandler) applyBooking(c *gin.Context) {
	id, action, ok := h.bookingAction(c)
	if !ok {
		return
	}
	b, err := h.bookings.Apply(c.Request.Context(), booking.ActorBackOffice, id, action)
	if err != nil {
		h.fail(c, err, "/admin/bookings")
		return
	}
	h.redirect(c, session.FlashSuccess,
		fmt.Sprintf("Booking #%d is now %s.", b.ID, strings.ToLower(string(b.Status))),
		"/admin/bookings")
}

func (h *AdminHandler) categories(c *gin.Context) {
	categories, err := h.service.Categories(c.Request.Context())
	if err != nil {
		h.fail(c, err, "")
		return
	}
	h.render(c, http.StatusOK, "admin/categories", gin.H{"Title": "Categories", "Categories": categories})
}

func categoryForm(c *gin.Context) domain.CategoryInput {
	return domain.CategoryInput{
		Name:        strings.TrimSpace(c.PostForm("name")),
		Description: strings.TrimSpace(c.PostForm("description")),
	}
}

func (h *AdminHandler) createCategory(c *gin.Context) {
	in := categoryForm(c)
	if err := in.Validate(); err != nil {
		h.redirect(c, session.FlashError, err.Error(), "/admin/categories")
		return
	}
	cat, err := h.service.CreateCategory(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err, "/admin/categories")
		return
	}
	h.redirect(c, session.FlashSuccess, fmt.Sprintf("Category %q created.", cat.Name), "/admin/categories")
}

func (h *AdminHandler) updateCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		h.notFound(c)
		return
	}
	in := categoryForm(c)
	if err := in.Validate(); err != nil {
		h.redirect(c, session.FlashError, err.Error(), "/admin/categories")
		return
	}
	if _, err := h.service.UpdateCategory(c.Request.Context(), id, in); err != nil {
		h.fail(c, err, "/admin/categories")
		return
	}
	h.redirect(c, session.FlashSuccess, "Category saved.", "/admin/categories")
}

func (h *AdminHandler) deleteCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		h.notFound(c)
		return
	}
	if err := h.service.DeleteCategory(c.Request.Context(), id); err != nil {
		h.fail(c, err, "/admin/categories")
		return
	}
	h.redirect(c, session.FlashSuccess, "Category deleted.", "/admin/categories")
}

func (h *AdminHandler) users(c *gin.Context) {
	f := admin.UserFilter{
		Term: strings.TrimSpace(c.Query("q")),
		Role: domain.Role(strings.ToUpper(c.Query("role"))),
	}
	users, err := h.service.Users(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	h.render(c, http.StatusOK, "admin/users", gin.H{
		"Title":  "Users",
		"Users":  users,
		"Filter": f,
		"Roles":  domain.Roles,
	})
}

func (h *AdminHandler) updateUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		h.notFound(c)
		return
	}
	up := domain.UserUpdate{Role: domain.Role(strings.ToUpper(c.PostForm("role")))}
	if v, set := c.GetPostForm("active"); set {
		active := v == "true" || v == "on" || v == "1"
		up.Active = &active
	}
	if _, err := h.service.UpdateUser(c.Request.Context(), id, up); err != nil {
		h.fail(c, err, "/admin/users")
		return
	}
	h.redirect(c, session.FlashSuccess, "User updated.", "/admin/users")
}

func (h *AdminHandler) deleteUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		h.notFound(c)
		return
	}
	if me := currentUser(c); me != nil && me.ID == id {
		h.redirect(c, session.FlashError, "You cannot delete your own account.", "/admin/users")
		return
	}
	if err := h.service.DeleteUser(c.Request.Context(), id); err != nil {
		h.fail(c, err, "/admin/users")
		return
	}
	h.redirect(c, session.FlashSuccess, "User deleted.", "/admin/users")
}

// ParseTourForm reads the admin tour form. Number and date fields that do
// not parse are reported together.
func ParseTourForm(c *gin.Context) (domain.TourInput, error) {
	in := domain.TourInput{
		Name:        strings.TrimSpace(c.PostForm("name")),
		Description: strings.TrimSpace(c.PostForm("description")),
		Destination: strings.TrimSpace(c.PostForm("destination")),
		ImageURL:    strings.TrimSpace(c.PostForm("image_url")),
		Itinerary:   strings.TrimSpace(c.PostForm("itinerary")),
		Included:    strings.TrimSpace(c.PostForm("included")),
		Excluded:    strings.TrimSpace(c.PostForm("excluded")),
		Status:      domain.TourStatus(strings.ToUpper(c.PostForm("status"))),
	}

	var errs []error
	atoi := func(field string, dst *int) {
		if n, err := strconv.Atoi(strings.TrimSpace(c.PostForm(field))); err == nil {
			*dst = n
		} else {
			errs = append(errs, fmt.Errorf("%s must be a whole number", strings.ReplaceAll(field, "_", " ")))
		}
	}
	atoi("duration", &in.Duration)
	atoi("max_participants", &in.MaxParticipants)
	atoi("available_seats", &in.AvailableSeats)

	if p, err := strconv.ParseFloat(strings.TrimSpace(c.PostForm("price")), 64); err == nil {
		in.Price = p
	} else {
		errs = append(errs, errors.New("price must be a number"))
	}

	date := func(field string, dst *domain.Date) {
		v := strings.TrimSpace(c.PostForm(field))
		if v == "" {
			return
		}
		if t, err := format.ParseDate(v); err == nil {
			*dst = domain.Date{Time: t}
		} else {
			errs = append(errs, fmt.Errorf("%s is not a valid date", strings.ReplaceAll(field, "_", " ")))
		}
	}
	date("start_date", &in.StartDate)
	date("end_date", &in.EndDate)

	if v := strings.TrimSpace(c.PostForm("category_id")); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			in.CategoryID = &id
		}
	}
	return in, errors.Join(errs...)
}

// TourInputOf fills the edit form from an existing tour.
func TourInputOf(t domain.Tour) domain.TourInput {
	in := domain.TourInput{
		Name:            t.Name,
		Description:     t.Description,
		Destination:     t.Destination,
		Duration:        t.Duration,
		Price:           t.Price,
		MaxParticipants: t.MaxParticipants,
		AvailableSeats:  t.AvailableSeats,
		StartDate:       t.StartDate,
		EndDate:         t.EndDate,
		ImageURL:        t.ImageURL,
		Itinerary:       t.Itinerary,
		Included:        t.Included,
		Excluded:        t.Excluded,
		Status:          t.Status,
	}
	if id, ok := t.CategoryRef(); ok {
		in.CategoryID = &id
	}
	return in
}
