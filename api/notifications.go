package api

import (
	"net/http"

	"github.com/Domenick1991/tourbooking/internal/notify"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type NotificationHandler struct {
	responder
	center notify.CenterUseCase
}

func NewNotificationHandler(center notify.CenterUseCase, sessions SessionStore, log zerolog.Logger) *NotificationHandler {
	return &NotificationHandler{
		responder: responder{sessions: sessions, log: log},
		center:    center,
	}
}

// Register expects router to be behind RequireAuth.
func (h *NotificationHandler) Register(router *gin.RouterGroup) {
	router.GET("/notifications", h.list)
	router.POST("/notifications/read", h.markAll)
	router.POST("/notifications/:id/read", h.markOne)
}

func (h *NotificationHandler) list(c *gin.Context) {
	me := currentUser(c)
	if me == nil {
		redirectToLogin(c)
		return
	}
	ctx := c.Request.Context()
	items, err := h.center.List(ctx, *me)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	unread, err := h.center.UnreadCount(ctx, *me)
	if err != nil {
		h.log.Warn().Err(err).Msg("unread notifications")
	}
	h.render(c, http.StatusOK, "notifications", gin.H{
		"Title":         "Notifications",
		"Notifications": items,
		"Unread":        unread,
	})
}

func (h *NotificationHandler) markOne(c *gin.Context) {
	me := currentUser(c)
	if me == nil {
		redirectToLogin(c)
		return
	}
	if err := h.center.MarkRead(c.Request.Context(), *me, c.Param("id")); err != nil {
		h.fail(c, err, "/notifications")
		return
	}
	c.Redirect(http.StatusFound, "/notifications")
}

func (h *NotificationHandler) markAll(c *gin.Context) {
	me := currentUser(c)
	if me == nil {
		redirectToLogin(c)
		return
	}
	if err := h.center.MarkAllRead(c.Request.Context(), *me); err != nil {
		h.fail(c, err, "/notifications")
		return
	}
	c.Redirect(http.StatusFound, "/notifications")
}
