package api

import (
	"net/http"

	"github.com/Domenick1991/tourbooking/internal/catalog"
	"github.com/Domenick1991/tourbooking/internal/domain"
	catalogsvc "github.com/Domenick1991/tourbooking/internal/service/catalog"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const featuredTours = 6

type CatalogHandler struct {
	responder
	service  catalogsvc.CatalogUseCase
	pageSize int
}

func NewCatalogHandler(service catalogsvc.CatalogUseCase, sessions SessionStore, pageSize int, log zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{
		responder: responder{sessions: sessions, log: log},
		service:   service,
		pageSize:  pageSize,
	}
}

func (h *CatalogHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.home)
	router.GET("/tours", h.list)
	router.GET("/tours/:id", h.detail)
}

func (h *CatalogHandler) home(c *gin.Context) {
	ctx := c.Request.Context()
	featured, err := h.service.Featured(ctx, featuredTours)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	categories, err := h.service.Categories(ctx)
	if err != nil {
		h.log.Warn().Err(err).Msg("home categories")
	}
	h.render(c, http.StatusOK, "home", gin.H{
		"Title":      "Discover your next trip",
		"Featured":   featured,
		"Categories": categories,
	})
}

func (h *CatalogHandler) list(c *gin.Context) {
	q := catalog.ParseQuery(c.Request.URL.Query(), h.pageSize)
	page, err := h.service.Browse(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	h.render(c, http.StatusOK, "tours", gin.H{
		"Title":    "Tours",
		"Page":     page,
		"SortKeys": catalog.SortKeys,
		"Statuses": []domain.TourStatus{domain.TourStatusAvailable, domain.TourStatusFull, domain.TourStatusCompleted, domain.TourStatusCancelled},
	})
}

func (h *CatalogHandler) detail(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		h.notFound(c)
		return
	}
	ctx := c.Request.Context()
	tour, err := h.service.Tour(ctx, id)
	if err != nil {
		h.fail(c, err, "/tours")
		return
	}
	reviews, err := h.service.Reviews(ctx, id)
	if err != nil {
		h.log.Warn().Err(err).Int64("tour", id).Msg("tour reviews")
	}
	h.render(c, http.StatusOK, "tour", gin.H{
		"Title":   tour.Name,
		"Tour":    tour,
		"Reviews": reviews,
	})
}
