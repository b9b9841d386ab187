package catalog

// PageLink is one element of the pagination control; Gap marks an ellipsis.
type PageLink struct {
	Number  int
	Current bool
	Gap     bool
}

const pageWindow = 2

// Pages lays out first page, a window of pageWindow around current, and the
// last page, with gaps between. Nothing is returned when total <= 1.
func Pages(current, total int) []PageLink {
	if total <= 1 {
		return nil
	}
	link := func(n int) PageLink { return PageLink{Number: n, Current: n == current} }

	links := []PageLink{link(1)}
	if current-pageWindow > 2 {
		links = append(links, PageLink{Gap: true})
	}
	for i := max(2, current-pageWindow); i <= min(total-1, current+pageWindow); i++ {
		links = append(links, link(i))
	}
	if current+pageWindow < total-1 {
		links = append(links, PageLink{Gap: true})
	}
	return append(links, link(total))
}

// Range reports the 1-indexed item span shown on the page, e.g. 10-18 of 20.
func (r Result) Range() (from, to int) {
	if r.Total == 0 {
		return 0, 0
	}
	from = (r.Page-1)*r.PageSize + 1
	to = min(r.Page*r.PageSize, r.Total)
	return from, to
}

func (r Result) HasPrev() bool { return r.Page > 1 }

func (r Result) HasNext() bool { return r.Page < r.TotalPages }
