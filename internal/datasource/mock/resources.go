package mock

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/Domenick1991/tourbooking/internal/datasource"
	"github.com/Domenick1991/tourbooking/internal/domain"
)

type categories struct{ s *Source }

func (r categories) List(ctx context.Context) ([]domain.Category, error) {
	if err := r.s.wait(ctx, 0.7); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return slices.Clone(r.s.data.Categories), nil
}

func (r categories) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	if err := r.s.wait(ctx, 0.7); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	i := indexOf(r.s.data.Categories, id, categoryID)
	if i < 0 {
		return nil, notFound("category", id)
	}
	c := r.s.data.Categories[i]
	return &c, nil
}

func (r categories) Create(ctx context.Context, in domain.CategoryInput) (*domain.Category, error) {
	if _, err := r.s.requireBackOffice(ctx); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, badRequest(err.Error())
	}
	if err := r.s.wait(ctx, 1); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	active := true
	c := domain.Category{ID: nextID(r.s.data.Categories, categoryID), Name: in.Name, Description: in.Description, Active: &active}
	r.s.data.Categories = append(r.s.data.Categories, c)
	return &c, nil
}

func (r categories) Update(ctx context.Context, id int64, in domain.CategoryInput) (*domain.Category, error) {
	if _, err := r.s.requireBackOffice(ctx); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, badRequest(err.Error())
	}
	if err := r.s.wait(ctx, 1); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i := indexOf(r.s.data.Categories, id, categoryID)
	if i < 0 {
		return nil, notFound("category", id)
	}
	r.s.data.Categories[i].Name = in.Name
	r.s.data.Categories[i].Description = in.Description
	c := r.s.data.Categories[i]
	return &c, nil
}

func (r categories) Delete(ctx context.Context, id int64) error {
	if _, err := r.s.requireBackOffice(ctx); err != nil {
		return err
	}
	if err := r.s.wait(ctx, 1); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i := indexOf(r.s.data.Categories, id, categoryID)
	if i < 0 {
		return notFound("category", id)
	}
	for _, t := range r.s.data.Tours {
		if ref, ok := t.CategoryRef(); ok && ref == id {
			return datasource.NewAPIError(http.StatusConflict, "category still has tours")
		}
	}
	r.s.data.Categories = slices.Delete(r.s.data.Categories, i, i+1)
	return nil
}

type users struct{ s *Source }

func (r users) List(ctx context.Context) ([]domain.User, error) {
	if _, err := r.s.requireBackOffice(ctx); err != nil {
		return nil, err
	}
	if err := r.s.wait(ctx, 1); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.User, 0, len(r.s.data.Users))
	for _, u := range r.s.data.Users {
		out = append(out, u.User)
	}
	return out, nil
}

func (r users) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	c, err := r.s.authenticate(ctx)
	if err != nil {
		return nil, err
	}
	if !c.Role.IsBackOffice() && c.UserID != id {
		return nil, datasource.NewAPIError(http.StatusForbidden, "access denied")
	}
	if err := r.s.wait(ctx, 0.7); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	i := indexOf(r.s.data.Users, id, userID)
	if i < 0 {
		return nil, notFound("user", id)
	}
	u := r.s.data.Users[i].User
	return &u, nil
}

// Update lets customers edit their own profile; role and active flag are
// back-office only.
func (r users) Update(ctx context.Context, id int64, up domain.UserUpdate) (*domain.User, error) {
	c, err := r.s.authenticate(ctx)
	if err != nil {
		return nil, err
	}
	self := c.UserID == id
	if !c.Role.IsBackOffice() && (!self || up.Role != "" || up.Active != nil) {
		return nil, datasource.NewAPIError(http.StatusForbidden, "access denied")
	}
	if up.Role != "" && !up.Role.Valid() {
		return nil, badRequest("unknown role " + string(up.Role))
	}
	if err := r.s.wait(ctx, 1); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i := indexOf(r.s.data.Users, id, userID)
	if i < 0 {
		return nil, notFound("user", id)
	}
	u := &r.s.data.Users[i].User
	if up.FullName != "" {
		u.FullName = up.FullName
	}
	if up.Email != "" {
		u.Email = up.Email
	}
	if up.Phone != "" {
		u.Phone = up.Phone
	}
	if up.Address != "" {
		u.Address = up.Address
	}
	if up.Role != "" {
		u.Role = up.Role
	}
	if up.Active != nil {
		u.Active = *up.Active
	}
	u.UpdatedAt = domain.Time{Time: r.s.now()}
	out := *u
	return &out, nil
}

func (r users) Delete(ctx context.Context, id int64) error {
	c, err := r.s.requireBackOffice(ctx)
	if err != nil {
		return err
	}
	if c.UserID == id {
		return badRequest("cannot delete your own account")
	}
	if err := r.s.wait(ctx, 1); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i := indexOf(r.s.data.Users, id, userID)
	if i < 0 {
		return notFound("user", id)
	}
	r.s.data.Users = slices.Delete(r.s.data.Users, i, i+1)
	return nil
}

type reviews struct{ s *Source }

func (r reviews) ByTour(ctx context.Context, tourID int64) ([]domain.Review, error) {
	if err := r.s.wait(ctx, 0.7); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.Review, 0)
	for _, rv := range r.s.data.Reviews {
		if rv.TourID != tourID {
			continue
		}
		if i := indexOf(r.s.data.Users, rv.UserID, userID); i >= 0 {
			u := r.s.data.Users[i].User
			rv.User = &u
		}
		out = append(out, rv)
	}
	return out, nil
}

func (r reviews) Create(ctx context.Context, in domain.ReviewInput) (*domain.Review, error) {
	c, err := r.s.authenticate(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, badRequest(err.Error())
	}
	if err := r.s.wait(ctx, 1.3); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ti := indexOf(r.s.data.Tours, in.TourID, tourID)
	if ti < 0 {
		return nil, notFound("tour", in.TourID)
	}
	rv := domain.Review{
		ID:        nextID(r.s.data.Reviews, reviewID),
		UserID:    c.UserID,
		TourID:    in.TourID,
		BookingID: in.BookingID,
		Rating:    in.Rating,
		Comment:   strings.TrimSpace(in.Comment),
		CreatedAt: domain.Time{Time: r.s.now()},
	}
	r.s.data.Reviews = append(r.s.data.Reviews, rv)
	r.s.rerate(&r.s.data.Tours[ti])
	return &rv, nil
}

// rerate recomputes a tour's average rating; callers hold the write lock.
func (s *Source) rerate(t *domain.Tour) {
	var sum, n int
	for _, rv := range s.data.Reviews {
		if rv.TourID == t.ID {
			sum += rv.Rating
			n++
		}
	}
	t.ReviewCount = n
	if n == 0 {
		t.Rating = nil
		return
	}
	avg := float64(sum) / float64(n)
	t.Rating = &avg
}

type auth struct{ s *Source }

func (r auth) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error) {
	if err := r.s.wait(ctx, 1.7); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.data.Users {
		if u.Username != req.Username && u.Email != req.Username {
			continue
		}
		if !u.Active || (req.Password != MasterPassword && req.Password != u.Password) {
			break
		}
		return r.s.authResponse(u.User)
	}
	return nil, datasource.NewAPIError(http.StatusUnauthorized, "Invalid credentials")
}

func (r auth) Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResponse, error) {
	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, badRequest("username, email and password are required")
	}
	if err := r.s.wait(ctx, 2); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.data.Users {
		if strings.EqualFold(u.Username, req.Username) || strings.EqualFold(u.Email, req.Email) {
			return nil, datasource.NewAPIError(http.StatusConflict, "username or email already registered")
		}
	}
	now := domain.Time{Time: r.s.now()}
	u := fixtureUser{
		User: domain.User{
			ID:        nextID(r.s.data.Users, userID),
			Username:  req.Username,
			Email:     req.Email,
			FullName:  req.FullName,
			Phone:     req.Phone,
			Address:   req.Address,
			Role:      domain.RoleCustomer,
			Active:    true,
			CreatedAt: now,
			UpdatedAt: now,
		},
		Password: req.Password,
	}
	r.s.data.Users = append(r.s.data.Users, u)
	return r.s.authResponse(u.User)
}

func (s *Source) authResponse(u domain.User) (*domain.AuthResponse, error) {
	token, err := s.issueToken(u)
	if err != nil {
		return nil, err
	}
	return &domain.AuthResponse{
		AccessToken: token,
		Token:       token,
		TokenType:   "Bearer",
		Username:    u.Username,
		User:        u,
		ExpiresIn:   int(s.tokenTTL.Seconds()),
	}, nil
}
