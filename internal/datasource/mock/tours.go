package mock

import (
	"context"
	"slices"

	"github.com/Domenick1991/tourbooking/internal/catalog"
	"github.com/Domenick1991/tourbooking/internal/domain"
)

type tours struct{ s *Source }

func (r tours) List(ctx context.Context) ([]domain.Tour, error) {
	if err := r.s.wait(ctx, 1.3); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return slices.Clone(r.s.data.Tours), nil
}

func (r tours) Available(ctx context.Context) ([]domain.Tour, error) {
	if err := r.s.wait(ctx, 1); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.Tour, 0, len(r.s.data.Tours))
	for _, t := range r.s.data.Tours {
		if t.Bookable() {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r tours) GetByID(ctx context.Context, id int64) (*domain.Tour, error) {
	if err := r.s.wait(ctx, 0.7); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	i := indexOf(r.s.data.Tours, id, tourID)
	if i < 0 {
		return nil, notFound("tour", id)
	}
	t := r.s.data.Tours[i]
	r.s.attachCategory(&t)
	return &t, nil
}

// Search uses the catalog filter so both data sources agree on semantics.
func (r tours) Search(ctx context.Context, f domain.TourSearchFilters) ([]domain.Tour, error) {
	if err := r.s.wait(ctx, 1.7); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return catalog.Filter(r.s.data.Tours, catalog.Query{
		Term:       f.Destination,
		CategoryID: f.CategoryID,
		MinPrice:   f.MinPrice,
		MaxPrice:   f.MaxPrice,
		Status:     f.Status,
	}), nil
}

func (r tours) Create(ctx context.Context, in domain.TourInput) (*domain.Tour, error) {
	if _, err := r.s.requireBackOffice(ctx); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, badRequest(err.Error())
	}
	if err := r.s.wait(ctx, 2); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := domain.Time{Time: r.s.now()}
	t := domain.Tour{ID: nextID(r.s.data.Tours, tourID), CreatedAt: now}
	applyTourInput(&t, in, now)
	r.s.data.Tours = append(r.s.data.Tours, t)
	return &t, nil
}

func (r tours) Update(ctx context.Context, id int64, in domain.TourInput) (*domain.Tour, error) {
	if _, err := r.s.requireBackOffice(ctx); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, badRequest(err.Error())
	}
	if err := r.s.wait(ctx, 2); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i := indexOf(r.s.data.Tours, id, tourID)
	if i < 0 {
		return nil, notFound("tour", id)
	}
	applyTourInput(&r.s.data.Tours[i], in, domain.Time{Time: r.s.now()})
	t := r.s.data.Tours[i]
	return &t, nil
}

func (r tours) Delete(ctx context.Context, id int64) error {
	if _, err := r.s.requireBackOffice(ctx); err != nil {
		return err
	}
	if err := r.s.wait(ctx, 1); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i := indexOf(r.s.data.Tours, id, tourID)
	if i < 0 {
		return notFound("tour", id)
	}
	r.s.data.Tours = slices.Delete(r.s.data.Tours, i, i+1)
	return nil
}

func applyTourInput(t *domain.Tour, in domain.TourInput, now domain.Time) {
	t.Name = in.Name
	t.Description = in.Description
	t.Destination = in.Destination
	t.Duration = in.Duration
	t.Price = in.Price
	t.MaxParticipants = in.MaxParticipants
	t.AvailableSeats = in.AvailableSeats
	t.StartDate = in.StartDate
	t.EndDate = in.EndDate
	t.ImageURL = in.ImageURL
	t.Itinerary = in.Itinerary
	t.Included = in.Included
	t.Excluded = in.Excluded
	t.CategoryID = in.CategoryID
	t.Category = nil
	t.Status = in.Status
	if t.Status == "" {
		t.Status = domain.TourStatusAvailable
	}
	t.UpdatedAt = now
}

// attachCategory embeds the category record; callers hold the read lock.
func (s *Source) attachCategory(t *domain.Tour) {
	id, ok := t.CategoryRef()
	if !ok {
		return
	}
	if i := indexOf(s.data.Categories, id, categoryID); i >= 0 {
		c := s.data.Categories[i]
		t.Category = &c
	}
}
