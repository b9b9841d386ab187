package view

import (
	"fmt"
	"html/template"
	"math"
	"net/url"
	"strconv"
	"time"

	"github.com/Domenick1991/tourbooking/internal/catalog"
	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/Domenick1991/tourbooking/internal/format"
)

// Star is one glyph of a rating display.
type Star string

const (
	StarFull  Star = "full"
	StarHalf  Star = "half"
	StarEmpty Star = "empty"
)

// Stars renders rating on a five star scale, rounding to the nearest half.
func Stars(rating float64) []Star {
	halves := int(math.Round(min(max(rating, 0), 5) * 2))
	out := make([]Star, 0, 5)
	for i := 0; i < 5; i++ {
		switch {
		case halves >= 2:
			out = append(out, StarFull)
			halves -= 2
		case halves == 1:
			out = append(out, StarHalf)
			halves = 0
		default:
			out = append(out, StarEmpty)
		}
	}
	return out
}

// PageURL keeps the current filters and swaps in page.
func PageURL(path string, q catalog.Query, page int) string {
	v := q.Values()
	if page > 1 {
		v.Set("page", strconv.Itoa(page))
	}
	if len(v) == 0 {
		return path
	}
	return path + "?" + v.Encode()
}

// Span describes which items of the result are on screen.
func Span(r catalog.Result) string {
	from, to := r.Range()
	if r.Total == 0 {
		return "No tours found"
	}
	return fmt.Sprintf("Showing %d-%d of %d tours", from, to, r.Total)
}

func ratingOf(v any) float64 {
	switch r := v.(type) {
	case float64:
		return r
	case *float64:
		if r == nil {
			return 0
		}
		return *r
	case int:
		return float64(r)
	default:
		return 0
	}
}

func dateOf(v any) time.Time {
	switch d := v.(type) {
	case time.Time:
		return d
	case domain.Date:
		return d.Time
	case domain.Time:
		return d.Time
	default:
		return time.Time{}
	}
}

// Funcs exposes formatters and view helpers to the templates.
func Funcs(f format.Formatter, now func() time.Time) template.FuncMap {
	return template.FuncMap{
		"currency": f.Currency,
		"number":   f.Number,
		"date": func(v any) string {
			t := dateOf(v)
			if t.IsZero() {
				return "-"
			}
			return format.Date(t)
		},
		"datetime": func(v any) string {
			t := dateOf(v)
			if t.IsZero() {
				return "-"
			}
			return format.DateTime(t)
		},
		"timeago":      func(v any) string { return format.TimeAgo(dateOf(v), now()) },
		"bookingBadge": BookingBadge,
		"paymentBadge": PaymentBadge,
		"tourBadge":    TourBadge,
		"roleBadge":    RoleBadge,
		"noticeClass":  NotificationClass,
		"stars":        func(v any) []Star { return Stars(ratingOf(v)) },
		"rating":       func(v any) string { return fmt.Sprintf("%.1f", ratingOf(v)) },
		"pageURL":      PageURL,
		"query":        func(v url.Values) template.URL { return template.URL(v.Encode()) },
		"span":         Span,
		"add":          func(a, b int) int { return a + b },
		"sub":          func(a, b int) int { return a - b },
		"seq": func(n int) []int {
			out := make([]int, n)
			for i := range out {
				out[i] = i + 1
			}
			return out
		},
		"inputDate": func(v any) string {
			t := dateOf(v)
			if t.IsZero() {
				return ""
			}
			return t.Format(time.DateOnly)
		},
		"deref": func(p *int64) int64 {
			if p == nil {
				return 0
			}
			return *p
		},
		"isSelected": func(p *int64, id int64) bool { return p != nil && *p == id },
		"dict": func(kv ...any) (map[string]any, error) {
			if len(kv)%2 != 0 {
				return nil, fmt.Errorf("dict needs key/value pairs")
			}
			m := make(map[string]any, len(kv)/2)
			for i := 0; i < len(kv); i += 2 {
				k, ok := kv[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict key %v is not a string", kv[i])
				}
				m[k] = kv[i+1]
			}
			return m, nil
		},
	}
}
