package api

import (
	"net/http"

	"github.com/Domenick1991/tourbooking/internal/service/admin"
	"github.com/Domenick1991/tourbooking/internal/service/booking"
	catalogsvc "github.com/Domenick1991/tourbooking/internal/service/catalog"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	dashboardRecent = 3
	dashboardTours  = 3
)

// DashboardHandler serves the signed-in customer's overview page.
type DashboardHandler struct {
	responder
	bookings booking.BookingUseCase
	catalog  catalogsvc.CatalogUseCase
}

func NewDashboardHandler(bookings booking.BookingUseCase, catalog catalogsvc.CatalogUseCase, sessions SessionStore, log zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		responder: responder{sessions: sessions, log: log},
		bookings:  bookings,
		catalog:   catalog,
	}
}

// Register expects router to be behind RequireAuth.
func (h *DashboardHandler) Register(router *gin.RouterGroup) {
	router.GET("/dashboard", h.show)
}

func (h *DashboardHandler) show(c *gin.Context) {
	ctx := c.Request.Context()
	mine, err := h.bookings.Mine(ctx)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	upcoming, err := h.catalog.Upcoming(ctx, dashboardTours)
	if err != nil {
		h.log.Warn().Err(err).Msg("dashboard upcoming tours")
	}
	h.render(c, http.StatusOK, "dashboard", gin.H{
		"Title":    "My dashboard",
		"Summary":  booking.Summarize(mine),
		"Recent":   rowsFor(admin.Recent(mine, dashboardRecent), booking.ActorCustomer),
		"Upcoming": upcoming,
	})
}
