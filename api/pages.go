// Package api holds the storefront's and the admin console's page
// handlers. Each handler renders a template from web/templates or
// redirects with a flash message.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/Domenick1991/tourbooking/internal/datasource"
	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/Domenick1991/tourbooking/internal/repository"
	"github.com/Domenick1991/tourbooking/internal/service/booking"
	"github.com/Domenick1991/tourbooking/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// SessionStore is the part of session.Store the handlers use.
type SessionStore interface {
	Create(ctx context.Context) (*session.Session, error)
	Get(ctx context.Context, id string) (*session.Session, error)
	Rotate(ctx context.Context, id string) (*session.Session, error)
	SignIn(ctx context.Context, id, token string, user domain.User) error
	SignOut(ctx context.Context, id string) error
	Expire(ctx context.Context, id string) (bool, error)
	AddFlash(ctx context.Context, id string, kind session.FlashKind, message string) error
	PopFlashes(ctx context.Context, id string) ([]session.Flash, error)
}

var _ SessionStore = (*session.Store)(nil)

// responder carries what every handler needs to render pages and report
// errors.
type responder struct {
	sessions SessionStore
	log      zerolog.Logger
}

func (r responder) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["User"] = currentUser(c)
	data["Path"] = c.Request.URL.Path
	if id := session.IDFrom(c.Request.Context()); id != "" {
		flashes, err := r.sessions.PopFlashes(c.Request.Context(), id)
		if err != nil {
			r.log.Warn().Err(err).Str("session", id).Msg("pop flashes")
		}
		data["Flashes"] = flashes
	}
	c.HTML(status, name, data)
}

func (r responder) flash(c *gin.Context, kind session.FlashKind, message string) {
	id := session.IDFrom(c.Request.Context())
	if id == "" {
		return
	}
	if err := r.sessions.AddFlash(c.Request.Context(), id, kind, message); err != nil {
		r.log.Warn().Err(err).Str("session", id).Msg("add flash")
	}
}

func (r responder) redirect(c *gin.Context, kind session.FlashKind, message, to string) {
	r.flash(c, kind, message)
	c.Redirect(http.StatusFound, to)
}

// fail maps an error to its page: an expired session goes back to login
// and a missing resource gets a 404. A rejected input, or any failed form
// submission, is flashed on the page at back so the previous state stays
// on screen. Anything else is a 502.
func (r responder) fail(c *gin.Context, err error, back string) {
	ctx := c.Request.Context()
	switch {
	case errors.Is(err, datasource.ErrUnauthorized):
		if _, expErr := r.sessions.Expire(ctx, session.IDFrom(ctx)); expErr != nil {
			r.log.Warn().Err(expErr).Msg("expire session")
		}
		c.Redirect(http.StatusFound, "/login")
	case errors.Is(err, datasource.ErrForbidden):
		r.redirect(c, session.FlashError, "You are not allowed to do that.", "/")
	case errors.Is(err, datasource.ErrNotFound):
		r.render(c, http.StatusNotFound, "error", gin.H{
			"Title":   "Not found",
			"Status":  http.StatusNotFound,
			"Message": datasource.Message(err),
		})
	case back != "" && rejected(err):
		r.redirect(c, session.FlashError, message(err), back)
	case back != "" && c.Request.Method == http.MethodPost:
		r.log.Warn().Err(err).Str("route", c.FullPath()).Msg("submission failed")
		r.redirect(c, session.FlashError, datasource.Message(err), back)
	default:
		r.log.Error().Err(err).Str("route", c.FullPath()).Msg("request failed")
		r.render(c, http.StatusBadGateway, "error", gin.H{
			"Title":   "Something went wrong",
			"Status":  http.StatusBadGateway,
			"Message": datasource.Message(err),
		})
	}
}

// rejected reports errors caused by the user's input rather than by the
// backend being unavailable.
func rejected(err error) bool {
	for _, target := range []error{
		datasource.ErrValidation,
		domain.ErrTransitionNotAllowed,
		domain.ErrInvalidRating,
		domain.ErrEmptyComment,
		booking.ErrInvalidParty,
		booking.ErrNotEnoughSeats,
		booking.ErrTourNotBookable,
		booking.ErrSubmitInProgress,
		booking.ErrUnknownAction,
		repository.ErrNotificationNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func message(err error) string {
	var apiErr *datasource.APIError
	if errors.As(err, &apiErr) {
		return datasource.Message(err)
	}
	if errors.Is(err, datasource.ErrTransport) || errors.Is(err, datasource.ErrServer) {
		return datasource.Message(err)
	}
	return err.Error()
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (r responder) notFound(c *gin.Context) {
	r.render(c, http.StatusNotFound, "error", gin.H{
		"Title":   "Not found",
		"Status":  http.StatusNotFound,
		"Message": "Not found.",
	})
}
