// Package catalog serves the storefront's tour listings through the
// page-level query cache.
package catalog

import (
	"context"
	"slices"

	"github.com/Domenick1991/tourbooking/internal/catalog"
	"github.com/Domenick1991/tourbooking/internal/datasource"
	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/rs/zerolog"
)

type CatalogUseCase interface {
	Tours(ctx context.Context) ([]domain.Tour, error)
	Categories(ctx context.Context) ([]domain.Category, error)
	Invalidate(ctx context.Context)
	Browse(ctx context.Context, q catalog.Query) (*Page, error)
	Tour(ctx context.Context, id int64) (*domain.Tour, error)
	Reviews(ctx context.Context, tourID int64) ([]domain.Review, error)
	Featured(ctx context.Context, n int) ([]domain.Tour, error)
	Upcoming(ctx context.Context, n int) ([]domain.Tour, error)
}

type Cache interface {
	GetTours(ctx context.Context) ([]domain.Tour, error)
	SetTours(ctx context.Context, tours []domain.Tour) error
	GetCategories(ctx context.Context) ([]domain.Category, error)
	SetCategories(ctx context.Context, cats []domain.Category) error
	Invalidate(ctx context.Context) error
}

// Page is one rendered catalog page. CategoriesErr is kept apart so the
// listing still renders when only the filter dropdown failed.
type Page struct {
	Query         catalog.Query
	Result        catalog.Result
	Links         []catalog.PageLink
	Categories    []domain.Category
	CategoriesErr error
}

type CatalogService struct {
	tours      datasource.TourService
	categories datasource.CategoryService
	reviews    datasource.ReviewService
	cache      Cache
	log        zerolog.Logger
}

type Option func(*CatalogService)

func WithCache(c Cache) Option {
	return func(s *CatalogService) { s.cache = c }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *CatalogService) { s.log = l }
}

func NewCatalogService(ds datasource.DataSource, opts ...Option) *CatalogService {
	s := &CatalogService{
		tours:      ds.Tours(),
		categories: ds.Categories(),
		reviews:    ds.Reviews(),
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ CatalogUseCase = (*CatalogService)(nil)

// Tours reads through the cache. Cache failures are logged and the backend
// is asked instead.
func (s *CatalogService) Tours(ctx context.Context) ([]domain.Tour, error) {
	if s.cache != nil {
		cached, err := s.cache.GetTours(ctx)
		if err != nil {
			s.log.Warn().Err(err).Msg("tours cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	tours, err := s.tours.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetTours(ctx, tours); err != nil {
			s.log.Warn().Err(err).Msg("tours cache write failed")
		}
	}
	return tours, nil
}

func (s *CatalogService) Categories(ctx context.Context) ([]domain.Category, error) {
	if s.cache != nil {
		cached, err := s.cache.GetCategories(ctx)
		if err != nil {
			s.log.Warn().Err(err).Msg("categories cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	cats, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetCategories(ctx, cats); err != nil {
			s.log.Warn().Err(err).Msg("categories cache write failed")
		}
	}
	return cats, nil
}

func (s *CatalogService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("catalog cache invalidation failed")
	}
}

// Browse applies the catalog pipeline to the full collection. The page is
// recomputed on every call.
func (s *CatalogService) Browse(ctx context.Context, q catalog.Query) (*Page, error) {
	tours, err := s.Tours(ctx)
	if err != nil {
		return nil, err
	}
	page := &Page{Query: q}
	page.Result = catalog.Apply(tours, q)
	page.Query.Page = page.Result.Page
	page.Links = catalog.Pages(page.Result.Page, page.Result.TotalPages)
	page.Categories, page.CategoriesErr = s.Categories(ctx)
	return page, nil
}

func (s *CatalogService) Tour(ctx context.Context, id int64) (*domain.Tour, error) {
	return s.tours.GetByID(ctx, id)
}

func (s *CatalogService) Reviews(ctx context.Context, tourID int64) ([]domain.Review, error) {
	return s.reviews.ByTour(ctx, tourID)
}

// Featured returns up to n bookable tours, best rated first.
func (s *CatalogService) Featured(ctx context.Context, n int) ([]domain.Tour, error) {
	tours, err := s.Tours(ctx)
	if err != nil {
		return nil, err
	}
	open := slices.DeleteFunc(slices.Clone(tours), func(t domain.Tour) bool { return !t.Bookable() })
	catalog.Sort(open, catalog.SortRatingDesc)
	if len(open) > n {
		open = open[:n]
	}
	return open, nil
}

// Upcoming asks the backend for bookable tours and returns up to n of
// them, soonest departure first. Tours without a start date go last.
func (s *CatalogService) Upcoming(ctx context.Context, n int) ([]domain.Tour, error) {
	tours, err := s.tours.Available(ctx)
	if err != nil {
		return nil, err
	}
	tours = slices.Clone(tours)
	slices.SortStableFunc(tours, func(a, b domain.Tour) int {
		switch {
		case a.StartDate.IsZero() && b.StartDate.IsZero():
			return 0
		case a.StartDate.IsZero():
			return 1
		case b.StartDate.IsZero():
			return -1
		}
		return a.StartDate.Compare(b.StartDate.Time)
	})
	if len(tours) > n {
		tours = tours[:n]
	}
	return tours, nil
}
