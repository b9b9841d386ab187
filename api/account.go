package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Domenick1991/tourbooking/internal/datasource"
	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/Domenick1991/tourbooking/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type AccountHandler struct {
	responder
	auth  datasource.AuthService
	users datasource.UserService
}

func NewAccountHandler(auth datasource.AuthService, users datasource.UserService, sessions SessionStore, log zerolog.Logger) *AccountHandler {
	return &AccountHandler{
		responder: responder{sessions: sessions, log: log},
		auth:      auth,
		users:     users,
	}
}

func (h *AccountHandler) Register(router *gin.RouterGroup) {
	router.GET("/login", h.loginForm)
	router.POST("/login", h.login)
	router.GET("/register", h.registerForm)
	router.POST("/register", h.register)
	router.POST("/logout", h.logout)
}

// RegisterProfile expects router to be behind RequireAuth.
func (h *AccountHandler) RegisterProfile(router *gin.RouterGroup) {
	router.GET("/profile", h.profile)
	router.POST("/profile", h.updateProfile)
}

func (h *AccountHandler) loginForm(c *gin.Context) {
	if currentSession(c).Authenticated() {
		c.Redirect(http.StatusFound, "/")
		return
	}
	h.render(c, http.StatusOK, "login", gin.H{
		"Title":    "Sign in",
		"Next":     c.Query("next"),
		"Username": "",
	})
}

func (h *AccountHandler) login(c *gin.Context) {
	req := domain.LoginRequest{
		Username: strings.TrimSpace(c.PostForm("username")),
		Password: c.PostForm("password"),
	}
	next := c.PostForm("next")
	form := gin.H{"Title": "Sign in", "Next": next, "Username": req.Username}

	if req.Username == "" || req.Password == "" {
		form["Error"] = "Username and password are required."
		h.render(c, http.StatusUnprocessableEntity, "login", form)
		return
	}

	resp, err := h.auth.Login(c.Request.Context(), req)
	switch {
	case errors.Is(err, datasource.ErrUnauthorized), errors.Is(err, datasource.ErrValidation):
		form["Error"] = message(err)
		h.render(c, http.StatusUnauthorized, "login", form)
		return
	case err != nil:
		h.fail(c, err, "")
		return
	}

	if !h.signIn(c, resp) {
		return
	}
	fallback := "/"
	if resp.User.Role.IsBackOffice() {
		fallback = "/admin"
	}
	h.redirect(c, session.FlashSuccess, "Welcome back, "+displayName(resp.User)+".", safeNext(next, fallback))
}

func (h *AccountHandler) registerForm(c *gin.Context) {
	h.render(c, http.StatusOK, "register", gin.H{"Title": "Create an account"})
}

func (h *AccountHandler) register(c *gin.Context) {
	req := domain.RegisterRequest{
		Username: strings.TrimSpace(c.PostForm("username")),
		Email:    strings.TrimSpace(c.PostForm("email")),
		Password: c.PostForm("password"),
		FullName: strings.TrimSpace(c.PostForm("full_name")),
		Phone:    strings.TrimSpace(c.PostForm("phone")),
		Address:  strings.TrimSpace(c.PostForm("address")),
	}
	form := gin.H{"Title": "Create an account", "Form": req}

	if req.Password != c.PostForm("confirm_password") {
		form["Error"] = "Passwords do not match."
		h.render(c, http.StatusUnprocessableEntity, "register", form)
		return
	}

	resp, err := h.auth.Register(c.Request.Context(), req)
	switch {
	case errors.Is(err, datasource.ErrValidation):
		form["Error"] = message(err)
		h.render(c, http.StatusUnprocessableEntity, "register", form)
		return
	case err != nil:
		h.fail(c, err, "")
		return
	}

	if !h.signIn(c, resp) {
		return
	}
	h.redirect(c, session.FlashSuccess, "Your account has been created.", "/")
}

func (h *AccountHandler) signIn(c *gin.Context, resp *domain.AuthResponse) bool {
	ctx := c.Request.Context()
	token := resp.BearerToken()
	if token == "" {
		h.fail(c, errors.New("login response carried no token"), "")
		return false
	}
	sess, err := h.sessions.Rotate(ctx, session.IDFrom(ctx))
	if err != nil {
		h.fail(c, err, "")
		return false
	}
	if err := h.sessions.SignIn(ctx, sess.ID, token, resp.User); err != nil {
		h.fail(c, err, "")
		return false
	}
	switchSession(c, sess)
	return true
}

func (h *AccountHandler) logout(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.sessions.SignOut(ctx, session.IDFrom(ctx)); err != nil {
		h.fail(c, err, "")
		return
	}
	h.redirect(c, session.FlashInfo, "You have been signed out.", "/")
}

func (h *AccountHandler) profile(c *gin.Context) {
	me := currentUser(c)
	if me == nil {
		redirectToLogin(c)
		return
	}
	u, err := h.users.GetByID(c.Request.Context(), me.ID)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	h.render(c, http.StatusOK, "profile", gin.H{"Title": "My profile", "Profile": u})
}

func (h *AccountHandler) updateProfile(c *gin.Context) {
	me := currentUser(c)
	if me == nil {
		redirectToLogin(c)
		return
	}
	ctx := c.Request.Context()
	u, err := h.users.Update(ctx, me.ID, domain.UserUpdate{
		FullName: strings.TrimSpace(c.PostForm("full_name")),
		Email:    strings.TrimSpace(c.PostForm("email")),
		Phone:    strings.TrimSpace(c.PostForm("phone")),
		Address:  strings.TrimSpace(c.PostForm("address")),
	})
	if err != nil {
		h.fail(c, err, "/profile")
		return
	}

	// Keep the stored profile in step so the header shows the new name.
	if err := h.sessions.SignIn(ctx, session.IDFrom(ctx), currentSession(c).Token, *u); err != nil {
		h.log.Warn().Err(err).Msg("refresh session profile")
	}
	h.redirect(c, session.FlashSuccess, "Profile updated.", "/profile")
}

func displayName(u domain.User) string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}
