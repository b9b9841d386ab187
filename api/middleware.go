package api

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"unicode"

	"github.com/Domenick1991/tourbooking/config"
	"github.com/Domenick1991/tourbooking/internal/datasource"
	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/Domenick1991/tourbooking/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	sessionKey = "session"
	userKey    = "user"
	cookieKey  = "session_cookie"
)

// Sessions loads the browser's session, creating one when the cookie is
// missing or stale, and puts its id and bearer token on the request
// context for the data source.
func Sessions(store SessionStore, cfg config.SessionConfig, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var sess *session.Session
		if id, err := c.Cookie(cfg.CookieName); err == nil && id != "" {
			sess, err = store.Get(ctx, id)
			if err != nil && !errors.Is(err, session.ErrNotFound) {
				log.Warn().Err(err).Str("session", id).Msg("load session")
			}
		}
		if sess == nil {
			var err error
			sess, err = store.Create(ctx)
			if err != nil {
				log.Error().Err(err).Msg("create session")
				c.HTML(http.StatusServiceUnavailable, "error", gin.H{
					"Title":   "Unavailable",
					"Status":  http.StatusServiceUnavailable,
					"Message": "Sessions are unavailable right now. Please try again later.",
				})
				c.Abort()
				return
			}
		}

		c.Set(cookieKey, cfg)
		setSessionCookie(c, cfg, sess.ID)

		ctx = session.WithID(ctx, sess.ID)
		if sess.Authenticated() {
			ctx = datasource.WithToken(ctx, sess.Token)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Set(sessionKey, sess)
		if sess.Authenticated() {
			if u, err := sess.User(); err == nil {
				c.Set(userKey, u)
			}
		}
		c.Next()
	}
}

// RequireAuth sends visitors without a token to the login page.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !currentSession(c).Authenticated() {
			redirectToLogin(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireBackOffice admits ADMIN and STAFF only. A token whose profile
// cannot be read counts as signed out.
func RequireBackOffice() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := currentSession(c)
		if !sess.Authenticated() {
			redirectToLogin(c)
			c.Abort()
			return
		}
		u, err := sess.User()
		if err != nil {
			redirectToLogin(c)
			c.Abort()
			return
		}
		if !u.Role.IsBackOffice() {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}

func setSessionCookie(c *gin.Context, cfg config.SessionConfig, id string) {
	h := c.Writer.Header()
	prefix := cfg.CookieName + "="
	var kept []string
	for _, v := range h.Values("Set-Cookie") {
		if !strings.HasPrefix(v, prefix) {
			kept = append(kept, v)
		}
	}
	h.Del("Set-Cookie")
	for _, v := range kept {
		h.Add("Set-Cookie", v)
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cfg.CookieName, id, int(cfg.TTL().Seconds()), "/", "", cfg.CookieSecure, true)
}

// switchSession points the rest of the request and the browser cookie at
// a rotated session.
func switchSession(c *gin.Context, sess *session.Session) {
	c.Request = c.Request.WithContext(session.WithID(c.Request.Context(), sess.ID))
	c.Set(sessionKey, sess)
	if v, ok := c.Get(cookieKey); ok {
		if cfg, ok := v.(config.SessionConfig); ok {
			setSessionCookie(c, cfg, sess.ID)
		}
	}
}

func redirectToLogin(c *gin.Context) {
	target := "/login"
	if c.Request.Method == http.MethodGet {
		target += "?next=" + url.QueryEscape(c.Request.URL.RequestURI())
	}
	c.Redirect(http.StatusFound, target)
}

func currentSession(c *gin.Context) *session.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*session.Session)
	return sess
}

func currentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	u, _ := v.(*domain.User)
	return u
}

// safeNext only accepts local paths so the login form cannot be used as
// an open redirect. Browsers drop control characters and read a
// backslash as a slash, so either can turn "/x" into "//host".
func safeNext(next, fallback string) string {
	if next == "" || strings.IndexFunc(next, unicode.IsControl) >= 0 || strings.ContainsRune(next, '\\') {
		return fallback
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil {
		return fallback
	}
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return fallback
	}
	return next
}
