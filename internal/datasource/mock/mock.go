// Package mock answers the datasource contract from an embedded fixture,
// with artificial latency so loading states behave as against the live
// backend. It also stands in for the backend's own rules: seat accounting,
// status transitions and token checks.
package mock

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/Domenick1991/tourbooking/internal/datasource"
	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

//go:embed fixtures.json
var fixtureJSON []byte

// MasterPassword is accepted for every active fixture user.
const MasterPassword = "123"

type fixtureUser struct {
	domain.User
	Password string `json:"password"`
}

type fixture struct {
	Categories []domain.Category `json:"categories"`
	Tours      []domain.Tour     `json:"tours"`
	Users      []fixtureUser     `json:"users"`
	Bookings   []domain.Booking  `json:"bookings"`
	Reviews    []domain.Review   `json:"reviews"`
}

type Source struct {
	mu   sync.RWMutex
	data fixture
	raw  []byte

	delay          time.Duration
	secret         []byte
	tokenTTL       time.Duration
	now            func() time.Time
	onUnauthorized func(ctx context.Context)
}

type Option func(*Source)

// WithDelay sets the artificial latency per call; zero disables it.
func WithDelay(d time.Duration) Option {
	return func(s *Source) { s.delay = d }
}

func WithSecret(secret string) Option {
	return func(s *Source) {
		if secret != "" {
			s.secret = []byte(secret)
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Source) { s.now = now }
}

func WithUnauthorizedHandler(fn func(ctx context.Context)) Option {
	return func(s *Source) { s.onUnauthorized = fn }
}

// WithFixture replaces the embedded fixture, mainly for tests.
func WithFixture(raw []byte) Option {
	return func(s *Source) { s.raw = raw }
}

func New(opts ...Option) (*Source, error) {
	s := &Source{
		delay:    300 * time.Millisecond,
		secret:   []byte("mock-secret"),
		tokenTTL: time.Hour,
		now:      time.Now,
		raw:      fixtureJSON,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := json.Unmarshal(s.raw, &s.data); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return s, nil
}

func (s *Source) Tours() datasource.TourService          { return tours{s} }
func (s *Source) Bookings() datasource.BookingService    { return bookings{s} }
func (s *Source) Categories() datasource.CategoryService { return categories{s} }
func (s *Source) Users() datasource.UserService          { return users{s} }
func (s *Source) Reviews() datasource.ReviewService      { return reviews{s} }
func (s *Source) Auth() datasource.AuthService           { return auth{s} }

var _ datasource.DataSource = (*Source)(nil)

// wait simulates latency, returning early if ctx is done.
func (s *Source) wait(ctx context.Context, factor float64) error {
	if s.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(time.Duration(float64(s.delay) * factor))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type claims struct {
	UserID   int64       `json:"uid"`
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
	jwt.RegisteredClaims
}

func (s *Source) issueToken(u domain.User) (string, error) {
	now := s.now()
	c := claims{
		UserID:   u.ID,
		Username: u.Username,
		Role:     u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
}

// authenticate validates the bearer token in ctx the way the backend would.
func (s *Source) authenticate(ctx context.Context) (*claims, error) {
	token := datasource.TokenFrom(ctx)
	if token == "" {
		return nil, s.unauthorized(ctx, "missing token")
	}
	c := &claims{}
	parsed, err := jwt.ParseWithClaims(token, c, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return nil, s.unauthorized(ctx, "invalid or expired token")
	}
	return c, nil
}

func (s *Source) requireBackOffice(ctx context.Context) (*claims, error) {
	c, err := s.authenticate(ctx)
	if err != nil {
		return nil, err
	}
	if !c.Role.IsBackOffice() {
		return nil, datasource.NewAPIError(http.StatusForbidden, "access denied")
	}
	return c, nil
}

func (s *Source) unauthorized(ctx context.Context, msg string) error {
	if s.onUnauthorized != nil {
		s.onUnauthorized(ctx)
	}
	return datasource.NewAPIError(http.StatusUnauthorized, msg)
}

func notFound(what string, id int64) error {
	return datasource.NewAPIError(http.StatusNotFound, fmt.Sprintf("%s %d not found", what, id))
}

func badRequest(msg string) error {
	return datasource.NewAPIError(http.StatusBadRequest, msg)
}

func nextID[T any](items []T, id func(T) int64) int64 {
	var maxID int64
	for _, it := range items {
		maxID = max(maxID, id(it))
	}
	return maxID + 1
}

func indexOf[T any](items []T, id int64, idOf func(T) int64) int {
	return slices.IndexFunc(items, func(it T) bool { return idOf(it) == id })
}

func tourID(t domain.Tour) int64         { return t.ID }
func bookingID(b domain.Booking) int64   { return b.ID }
func categoryID(c domain.Category) int64 { return c.ID }
func userID(u fixtureUser) int64         { return u.ID }
func reviewID(r domain.Review) int64     { return r.ID }
