package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/Domenick1991/tourbooking/config"
	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/Domenick1991/tourbooking/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// pageRecorder stands in for the template renderer and remembers the
// last page rendered.
type pageRecorder struct {
	name string
	data gin.H
}

func (p *pageRecorder) Instance(name string, data any) render.Render {
	p.name = name
	p.data, _ = data.(gin.H)
	return render.String{Format: name}
}

type harness struct {
	t      *testing.T
	router *gin.Engine
	store  *session.Store
	pages  *pageRecorder
	sid    string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := session.NewStore(session.NewMemoryBackend())
	require.NoError(t, store.Init(context.Background()))

	pages := &pageRecorder{}
	r := gin.New()
	r.HTMLRender = pages
	r.Use(Sessions(store, config.SessionConfig{CookieName: "sid", TTLHours: 1}, zerolog.Nop()))

	sess, err := store.Create(context.Background())
	require.NoError(t, err)
	return &harness{t: t, router: r, store: store, pages: pages, sid: sess.ID}
}

func (h *harness) signIn(u domain.User) {
	h.t.Helper()
	require.NoError(h.t, h.store.SignIn(context.Background(), h.sid, "token-"+u.Username, u))
}

func (h *harness) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.AddCookie(&http.Cookie{Name: "sid", Value: h.sid})
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	for _, ck := range w.Result().Cookies() {
		if ck.Name == "sid" {
			h.sid = ck.Value
		}
	}
	return w
}

func (h *harness) session() *session.Session {
	h.t.Helper()
	sess, err := h.store.Get(context.Background(), h.sid)
	require.NoError(h.t, err)
	return sess
}

func (h *harness) flashes() []session.Flash {
	h.t.Helper()
	return h.session().Flash
}

var (
	customer = domain.User{ID: 3, Username: "customer1", FullName: "An Nguyen", Role: domain.RoleCustomer, Active: true}
	staff    = domain.User{ID: 2, Username: "staff1", FullName: "Linh Tran", Role: domain.RoleStaff, Active: true}
)
