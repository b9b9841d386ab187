package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/Domenick1991/tourbooking/api"
	"github.com/Domenick1991/tourbooking/config"
	"github.com/Domenick1991/tourbooking/internal/logging"
	"github.com/Domenick1991/tourbooking/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/rs/zerolog"
)

// HealthCheck reports whether one dependency is usable.
type HealthCheck func(ctx context.Context) error

type Handlers struct {
	Catalog       *api.CatalogHandler
	Bookings      *api.BookingHandler
	Dashboard     *api.DashboardHandler
	Account       *api.AccountHandler
	Reviews       *api.ReviewHandler
	Notifications *api.NotificationHandler
	Admin         *api.AdminHandler
}

type Deps struct {
	Session  config.SessionConfig
	Log      zerolog.Logger
	Metrics  *metrics.Metrics
	Sessions api.SessionStore
	Renderer render.HTMLRender
	Static   http.FileSystem
	Health   map[string]HealthCheck
}

// NewRouter wires the storefront, the admin console and the ops endpoints.
func NewRouter(d Deps, h Handlers) *gin.Engine {
	r := gin.New()
	r.HTMLRender = d.Renderer
	r.Use(gin.Recovery())
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}
	r.Use(logging.AccessLog(d.Log))

	r.GET("/healthz", healthz(d.Health))
	if d.Static != nil {
		r.StaticFS("/static", d.Static)
	}

	site := r.Group("/", api.Sessions(d.Sessions, d.Session, logging.Component(d.Log, "session")))
	h.Catalog.Register(site)
	h.Account.Register(site)

	member := site.Group("/", api.RequireAuth())
	h.Bookings.Register(member)
	h.Dashboard.Register(member)
	h.Account.RegisterProfile(member)
	h.Reviews.Register(member)
	h.Notifications.Register(member)

	h.Admin.Register(site.Group("/admin", api.RequireBackOffice()))

	r.NoRoute(func(c *gin.Context) {
		c.HTML(http.StatusNotFound, "error", gin.H{
			"Title":   "Not found",
			"Status":  http.StatusNotFound,
			"Message": "The page you are looking for does not exist.",
		})
	})
	return r
}

func healthz(checks map[string]HealthCheck) gin.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		result := gin.H{}
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				status = http.StatusServiceUnavailable
				result[name] = err.Error()
				continue
			}
			result[name] = "ok"
		}
		c.JSON(status, gin.H{"status": http.StatusText(status), "checks": result})
	}
}

// Run serves handler until ctx is cancelled or the server fails, then
// shuts down gracefully.
func Run(ctx context.Context, cfg config.HTTPConfig, handler http.Handler, log zerolog.Logger) error {
	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Address).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownSeconds)*time.Second)
		defer cancel()
		log.Info().Msg("shutting down http server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}
