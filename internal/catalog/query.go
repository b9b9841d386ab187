package catalog

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/Domenick1991/tourbooking/internal/domain"
)

type SortKey string

const (
	SortNone        SortKey = ""
	SortNameAsc     SortKey = "name_asc"
	SortPriceAsc    SortKey = "price_asc"
	SortPriceDesc   SortKey = "price_desc"
	SortDurationAsc SortKey = "duration_asc"
	SortRatingDesc  SortKey = "rating_desc"
)

var SortKeys = []SortKey{SortNameAsc, SortPriceAsc, SortPriceDesc, SortDurationAsc, SortRatingDesc}

func (k SortKey) Valid() bool {
	if k == SortNone {
		return true
	}
	for _, v := range SortKeys {
		if k == v {
			return true
		}
	}
	return false
}

// Query is the full set of inputs to the catalog view.
type Query struct {
	Term       string
	CategoryID *int64
	MinPrice   *float64
	MaxPrice   *float64
	Status     domain.TourStatus
	Sort       SortKey
	Page       int
	PageSize   int
}

// Filters returns the subset of the query understood by the backend search.
func (q Query) Filters() domain.TourSearchFilters {
	return domain.TourSearchFilters{
		Destination: q.Term,
		CategoryID:  q.CategoryID,
		MinPrice:    q.MinPrice,
		MaxPrice:    q.MaxPrice,
		Status:      q.Status,
	}
}

// Values encodes q back into query parameters, without the page number, so
// templates can build pagination links.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Term != "" {
		v.Set("q", q.Term)
	}
	if q.CategoryID != nil {
		v.Set("category", strconv.FormatInt(*q.CategoryID, 10))
	}
	if q.MinPrice != nil {
		v.Set("min", strconv.FormatFloat(*q.MinPrice, 'f', -1, 64))
	}
	if q.MaxPrice != nil {
		v.Set("max", strconv.FormatFloat(*q.MaxPrice, 'f', -1, 64))
	}
	if q.Status != "" {
		v.Set("status", string(q.Status))
	}
	if q.Sort != SortNone {
		v.Set("sort", string(q.Sort))
	}
	return v
}

// ParseQuery decodes the catalog parameters. Malformed numbers are ignored
// rather than rejected, matching an empty form field.
func ParseQuery(v url.Values, pageSize int) Query {
	q := Query{
		Term:     strings.TrimSpace(v.Get("q")),
		Status:   domain.TourStatus(strings.ToUpper(v.Get("status"))),
		Sort:     SortKey(v.Get("sort")),
		Page:     1,
		PageSize: pageSize,
	}
	if !q.Sort.Valid() {
		q.Sort = SortNone
	}
	if id, err := strconv.ParseInt(v.Get("category"), 10, 64); err == nil {
		q.CategoryID = &id
	}
	if f, err := strconv.ParseFloat(v.Get("min"), 64); err == nil {
		q.MinPrice = &f
	}
	if f, err := strconv.ParseFloat(v.Get("max"), 64); err == nil {
		q.MaxPrice = &f
	}
	if p, err := strconv.Atoi(v.Get("page")); err == nil && p > 0 {
		q.Page = p
	}
	return q
}
