// Package catalog derives the visible page of tours from the full
// collection: text filter, category, price range, sort, then page.
package catalog

import (
	"slices"
	"strings"

	"github.com/Domenick1991/tourbooking/internal/domain"
)

type Result struct {
	Items      []domain.Tour
	Total      int
	TotalPages int
	Page       int
	PageSize   int
}

// Apply runs the whole pipeline. It never mutates tours.
func Apply(tours []domain.Tour, q Query) Result {
	filtered := Filter(tours, q)
	Sort(filtered, q.Sort)
	return Paginate(filtered, q.Page, q.PageSize)
}

// Filter applies text, category, price and status filters in that order and
// returns a new slice.
func Filter(tours []domain.Tour, q Query) []domain.Tour {
	out := make([]domain.Tour, 0, len(tours))
	term := strings.ToLower(strings.TrimSpace(q.Term))

	for _, t := range tours {
		if term != "" && !matchesTerm(t, term) {
			continue
		}
		if q.CategoryID != nil {
			id, ok := t.CategoryRef()
			if !ok || id != *q.CategoryID {
				continue
			}
		}
		if q.MinPrice != nil && t.Price < *q.MinPrice {
			continue
		}
		if q.MaxPrice != nil && t.Price > *q.MaxPrice {
			continue
		}
		if q.Status != "" && t.Status != q.Status {
			continue
		}
		out = append(out, t)
	}
	return out
}

func matchesTerm(t domain.Tour, term string) bool {
	return strings.Contains(strings.ToLower(t.Name), term) ||
		strings.Contains(strings.ToLower(t.Destination), term) ||
		strings.Contains(strings.ToLower(t.Description), term)
}

// Sort orders tours in place. The sort is stable so ties keep backend order.
func Sort(tours []domain.Tour, key SortKey) {
	var cmp func(a, b domain.Tour) int
	switch key {
	case SortNameAsc:
		cmp = func(a, b domain.Tour) int { return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)) }
	case SortPriceAsc:
		cmp = func(a, b domain.Tour) int { return compareFloat(a.Price, b.Price) }
	case SortPriceDesc:
		cmp = func(a, b domain.Tour) int { return compareFloat(b.Price, a.Price) }
	case SortDurationAsc:
		cmp = func(a, b domain.Tour) int { return a.Duration - b.Duration }
	case SortRatingDesc:
		cmp = func(a, b domain.Tour) int { return compareFloat(b.RatingOrZero(), a.RatingOrZero()) }
	default:
		return
	}
	slices.SortStableFunc(tours, cmp)
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Paginate slices one 1-indexed page. A page past the end is clamped to the
// last page so a narrowed filter never shows an empty page for a non-empty
// result.
func Paginate(tours []domain.Tour, page, pageSize int) Result {
	if pageSize <= 0 {
		pageSize = len(tours)
		if pageSize == 0 {
			pageSize = 1
		}
	}
	total := len(tours)
	totalPages := (total + pageSize - 1) / pageSize

	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = max(totalPages, 1)
	}

	res := Result{Total: total, TotalPages: totalPages, Page: page, PageSize: pageSize, Items: []domain.Tour{}}
	if total == 0 {
		return res
	}
	start := (page - 1) * pageSize
	end := min(start+pageSize, total)
	res.Items = tours[start:end]
	return res
}
