// Package bootstrap assembles the storefront from configuration and runs
// its HTTP server.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/tourbooking/api"
	"github.com/Domenick1991/tourbooking/config"
	"github.com/Domenick1991/tourbooking/internal/cache"
	"github.com/Domenick1991/tourbooking/internal/datasource"
	"github.com/Domenick1991/tourbooking/internal/datasource/mock"
	"github.com/Domenick1991/tourbooking/internal/datasource/rest"
	"github.com/Domenick1991/tourbooking/internal/format"
	"github.com/Domenick1991/tourbooking/internal/kafka"
	"github.com/Domenick1991/tourbooking/internal/logging"
	"github.com/Domenick1991/tourbooking/internal/metrics"
	"github.com/Domenick1991/tourbooking/internal/notify"
	"github.com/Domenick1991/tourbooking/internal/repository"
	"github.com/Domenick1991/tourbooking/internal/service/admin"
	"github.com/Domenick1991/tourbooking/internal/service/booking"
	catalogsvc "github.com/Domenick1991/tourbooking/internal/service/catalog"
	"github.com/Domenick1991/tourbooking/internal/session"
	"github.com/Domenick1991/tourbooking/internal/view"
	"github.com/Domenick1991/tourbooking/web"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// App is the assembled storefront.
type App struct {
	Router   *gin.Engine
	Metrics  *metrics.Metrics
	Sessions *session.Store

	closers []func() error
}

// NewApp builds every dependency named in cfg. Optional ones (catalog
// cache, Kafka, Postgres) are skipped when not configured.
func NewApp(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	app := &App{Metrics: metrics.New()}
	health := map[string]HealthCheck{}

	backend, err := newSessionBackend(cfg)
	if err != nil {
		return nil, err
	}
	store := session.NewStore(backend,
		session.WithTTL(cfg.Session.TTL()),
		session.WithLogger(logging.Component(log, "session")),
	)
	if err := store.Init(ctx); err != nil {
		return nil, err
	}
	app.Sessions = store
	app.closers = append(app.closers, store.Close)
	health["session"] = backend.Ping
	store.Subscribe(func(ev session.Event) { app.Metrics.SessionEvent(string(ev.Kind)) })

	ds, err := newDataSource(cfg, store, app.Metrics, log)
	if err != nil {
		app.Close()
		return nil, err
	}

	var catalogCache interface {
		catalogsvc.Cache
		booking.Cache
	}
	if cfg.Cache.Enabled {
		client := cache.NewClient(cfg.Redis)
		app.closers = append(app.closers, client.Close)
		health["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		catalogCache = cache.NewRedisCache(client, cfg.Cache.CatalogTTL())
	} else {
		catalogCache = cache.NewMemory(cfg.Cache.CatalogTTL())
	}

	bookingOpts := []booking.BookingServiceOption{
		booking.WithCache(catalogCache),
		booking.WithRecorder(app.Metrics),
		booking.WithLogger(logging.Component(log, "booking")),
	}
	if cfg.Kafka.Enabled() {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.BookingEventsTopic, logging.Component(log, "kafka"))
		app.closers = append(app.closers, producer.Close)
		health["kafka"] = producer.CheckConnection
		bookingOpts = append(bookingOpts, booking.WithProducer(producer))
	}

	var notifications repository.NotificationRepository
	if cfg.Database.Enabled() {
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		app.closers = append(app.closers, func() error { pool.Close(); return nil })
		health["postgres"] = pool.Ping
		notifications = repository.NewNotificationRepository(pool)
	}

	f := format.New(cfg.Format.Locale, cfg.Format.Currency)
	renderer, err := view.NewRenderer(web.Templates(), f, time.Now)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("load templates: %w", err)
	}

	catalogService := catalogsvc.NewCatalogService(ds,
		catalogsvc.WithCache(catalogCache),
		catalogsvc.WithLogger(logging.Component(log, "catalog")),
	)
	bookingService := booking.NewBookingService(ds, bookingOpts...)
	adminService := admin.NewAdminService(ds, catalogService, logging.Component(log, "admin"))
	center := notify.NewCenter(notifications)

	handlerLog := logging.Component(log, "api")
	app.Router = NewRouter(Deps{
		Session:  cfg.Session,
		Log:      log,
		Metrics:  app.Metrics,
		Sessions: store,
		Renderer: renderer,
		Static:   http.FS(web.Static()),
		Health:   health,
	}, Handlers{
		Catalog:       api.NewCatalogHandler(catalogService, store, cfg.HTTP.PageSize, handlerLog),
		Bookings:      api.NewBookingHandler(bookingService, store, f, handlerLog),
		Dashboard:     api.NewDashboardHandler(bookingService, catalogService, store, handlerLog),
		Account:       api.NewAccountHandler(ds.Auth(), ds.Users(), store, handlerLog),
		Reviews:       api.NewReviewHandler(bookingService, ds.Reviews(), catalogService, store, handlerLog),
		Notifications: api.NewNotificationHandler(center, store, handlerLog),
		Admin:         api.NewAdminHandler(adminService, bookingService, store, handlerLog),
	})
	return app, nil
}

// Close releases dependencies in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func newSessionBackend(cfg *config.Config) (session.Backend, error) {
	switch cfg.Session.Backend {
	case config.SessionRedis:
		return session.NewRedisBackend(cfg.Redis), nil
	case config.SessionMemory:
		return session.NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}
}

// newDataSource picks the live backend or the fixture mock. Either way a
// 401 ends the caller's session through Store.Expire, which acts once
// however many requests fail together.
func newDataSource(cfg *config.Config, store *session.Store, m *metrics.Metrics, log zerolog.Logger) (datasource.DataSource, error) {
	dsLog := logging.Component(log, "datasource")
	onUnauthorized := func(ctx context.Context) {
		id := session.IDFrom(ctx)
		if id == "" {
			return
		}
		if _, err := store.Expire(ctx, id); err != nil {
			dsLog.Warn().Err(err).Str(logging.SESSION, id).Msg("expire session")
		}
	}

	switch cfg.DataSource.Kind {
	case config.DataSourceREST:
		return rest.NewClient(cfg.DataSource.BaseURL,
			rest.WithTimeout(cfg.DataSource.Timeout()),
			rest.WithRetries(cfg.DataSource.Retries, 300*time.Millisecond),
			rest.WithUnauthorizedHandler(onUnauthorized),
			rest.WithObserver(m),
			rest.WithLogger(dsLog),
		), nil
	case config.DataSourceMock:
		dsLog.Warn().Msg("using the fixture data source")
		return mock.New(
			mock.WithDelay(cfg.DataSource.MockDelay()),
			mock.WithSecret(cfg.DataSource.JWTSecret),
			mock.WithUnauthorizedHandler(onUnauthorized),
		)
	default:
		return nil, fmt.Errorf("unknown datasource kind %q", cfg.DataSource.Kind)
	}
}
