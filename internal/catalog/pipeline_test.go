package catalog

import (
	"net/url"
	"testing"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func names(tours []domain.Tour) []string {
	out := make([]string, 0, len(tours))
	for _, t := range tours {
		out = append(out, t.Name)
	}
	return out
}

func sampleTours() []domain.Tour {
	return []domain.Tour{
		{ID: 1, Name: "Bali Adventure", Destination: "Bali", Description: "Surf and temples", Price: 899, Duration: 7, CategoryID: ptr(int64(1)), Rating: ptr(4.6), Status: domain.TourStatusAvailable},
		{ID: 2, Name: "Japan Culture", Destination: "Kyoto", Description: "Tea ceremony and shrines", Price: 1299, Duration: 10, CategoryID: ptr(int64(2)), Status: domain.TourStatusAvailable},
		{ID: 3, Name: "Maldives Retreat", Destination: "Malé", Description: "Overwater villas", Price: 1599, Duration: 5, Category: &domain.Category{ID: 1}, Rating: ptr(4.9), Status: domain.TourStatusFull},
	}
}

func TestApply_PriceRangeAndSortScenario(t *testing.T) {
	res := Apply(sampleTours(), Query{MinPrice: ptr(900.0), MaxPrice: ptr(1600.0), Sort: SortPriceAsc, Page: 1, PageSize: 10})

	assert.Equal(t, []string{"Japan Culture", "Maldives Retreat"}, names(res.Items))
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 1, res.TotalPages)
}

func TestFilter_Term(t *testing.T) {
	tours := sampleTours()

	assert.Equal(t, []string{"Bali Adventure"}, names(Filter(tours, Query{Term: "BALI"})))
	assert.Equal(t, []string{"Japan Culture"}, names(Filter(tours, Query{Term: "kyoto"})))
	assert.Equal(t, []string{"Maldives Retreat"}, names(Filter(tours, Query{Term: "villas"})))
	assert.Empty(t, Filter(tours, Query{Term: "antarctica"}))
}

func TestFilter_Category(t *testing.T) {
	got := Filter(sampleTours(), Query{CategoryID: ptr(int64(1))})
	assert.Equal(t, []string{"Bali Adventure", "Maldives Retreat"}, names(got))
}

func TestFilter_Status(t *testing.T) {
	got := Filter(sampleTours(), Query{Status: domain.TourStatusFull})
	assert.Equal(t, []string{"Maldives Retreat"}, names(got))
}

func TestFilter_InvertedPriceRangeIsEmpty(t *testing.T) {
	res := Apply(sampleTours(), Query{MinPrice: ptr(2000.0), MaxPrice: ptr(100.0), Page: 1, PageSize: 5})
	assert.Empty(t, res.Items)
	assert.Equal(t, 0, res.TotalPages)
}

func TestFilter_Idempotent(t *testing.T) {
	queries := []Query{
		{Term: "a"},
		{CategoryID: ptr(int64(1)), MinPrice: ptr(500.0)},
		{MaxPrice: ptr(1300.0), Term: "culture"},
		{},
	}
	for _, q := range queries {
		once := Filter(sampleTours(), q)
		twice := Filter(once, q)
		assert.Equal(t, once, twice)
	}
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	tours := sampleTours()
	Apply(tours, Query{Sort: SortPriceDesc, Page: 1, PageSize: 2})
	assert.Equal(t, []string{"Bali Adventure", "Japan Culture", "Maldives Retreat"}, names(tours))
}

func TestSort_Keys(t *testing.T) {
	cases := map[SortKey][]string{
		SortNameAsc:     {"Bali Adventure", "Japan Culture", "Maldives Retreat"},
		SortPriceAsc:    {"Bali Adventure", "Japan Culture", "Maldives Retreat"},
		SortPriceDesc:   {"Maldives Retreat", "Japan Culture", "Bali Adventure"},
		SortDurationAsc: {"Maldives Retreat", "Bali Adventure", "Japan Culture"},
		SortRatingDesc:  {"Maldives Retreat", "Bali Adventure", "Japan Culture"},
		SortNone:        {"Bali Adventure", "Japan Culture", "Maldives Retreat"},
	}
	for key, want := range cases {
		tours := sampleTours()
		Sort(tours, key)
		assert.Equal(t, want, names(tours), string(key))
	}
}

func TestSort_AscThenDescIsReversed(t *testing.T) {
	asc := sampleTours()
	Sort(asc, SortPriceAsc)
	desc := sampleTours()
	Sort(desc, SortPriceDesc)

	for i := range asc {
		assert.Equal(t, asc[i].ID, desc[len(desc)-1-i].ID)
	}
}

func TestSort_StableOnTies(t *testing.T) {
	tours := []domain.Tour{
		{ID: 1, Name: "A", Price: 100},
		{ID: 2, Name: "B", Price: 100},
		{ID: 3, Name: "C", Price: 50},
	}
	Sort(tours, SortPriceAsc)
	assert.Equal(t, []string{"C", "A", "B"}, names(tours))
}

func TestPaginate_Counts(t *testing.T) {
	tours := make([]domain.Tour, 0, 23)
	for i := 0; i < 23; i++ {
		tours = append(tours, domain.Tour{ID: int64(i + 1)})
	}

	for _, size := range []int{1, 5, 7, 23, 30} {
		wantPages := (23 + size - 1) / size
		first := Paginate(tours, 1, size)
		assert.Equal(t, wantPages, first.TotalPages, "size %d", size)

		last := Paginate(tours, wantPages, size)
		wantLast := 23 % size
		if wantLast == 0 {
			wantLast = size
		}
		if size > 23 {
			wantLast = 23
		}
		assert.Len(t, last.Items, wantLast, "size %d", size)
	}
}

func TestPaginate_ClampsPastLastPage(t *testing.T) {
	tours := sampleTours()
	res := Paginate(tours, 9, 2)
	assert.Equal(t, 2, res.Page)
	assert.Equal(t, []string{"Maldives Retreat"}, names(res.Items))

	res = Paginate(tours, 0, 2)
	assert.Equal(t, 1, res.Page)
}

func TestPaginate_Empty(t *testing.T) {
	res := Paginate(nil, 3, 10)
	assert.Empty(t, res.Items)
	assert.NotNil(t, res.Items)
	assert.Equal(t, 0, res.TotalPages)
	assert.Equal(t, 1, res.Page)
	from, to := res.Range()
	assert.Zero(t, from)
	assert.Zero(t, to)
}

func TestResult_Range(t *testing.T) {
	tours := make([]domain.Tour, 20)
	res := Paginate(tours, 3, 9)
	from, to := res.Range()
	assert.Equal(t, 19, from)
	assert.Equal(t, 20, to)
	assert.True(t, res.HasPrev())
	assert.False(t, res.HasNext())
}

func TestPages(t *testing.T) {
	assert.Nil(t, Pages(1, 1))
	assert.Nil(t, Pages(1, 0))

	render := func(links []PageLink) []int {
		out := make([]int, 0, len(links))
		for _, l := range links {
			if l.Gap {
				out = append(out, -1)
				continue
			}
			out = append(out, l.Number)
		}
		return out
	}

	assert.Equal(t, []int{1, 2, 3, -1, 10}, render(Pages(1, 10)))
	assert.Equal(t, []int{1, -1, 4, 5, 6, 7, 8, -1, 10}, render(Pages(6, 10)))
	assert.Equal(t, []int{1, 2, 3}, render(Pages(2, 3)))
	assert.Equal(t, []int{1, -1, 8, 9, 10}, render(Pages(10, 10)))

	links := Pages(2, 3)
	assert.True(t, links[1].Current)
	assert.False(t, links[0].Current)
}

func TestParseQuery(t *testing.T) {
	v := url.Values{}
	v.Set("q", "  bali ")
	v.Set("category", "2")
	v.Set("min", "100")
	v.Set("max", "abc")
	v.Set("sort", "price_desc")
	v.Set("page", "3")
	v.Set("status", "available")

	q := ParseQuery(v, 9)
	assert.Equal(t, "bali", q.Term)
	require.NotNil(t, q.CategoryID)
	assert.Equal(t, int64(2), *q.CategoryID)
	require.NotNil(t, q.MinPrice)
	assert.Nil(t, q.MaxPrice)
	assert.Equal(t, SortPriceDesc, q.Sort)
	assert.Equal(t, 3, q.Page)
	assert.Equal(t, 9, q.PageSize)
	assert.Equal(t, domain.TourStatusAvailable, q.Status)

	bad := ParseQuery(url.Values{"sort": {"random"}, "page": {"-2"}}, 6)
	assert.Equal(t, SortNone, bad.Sort)
	assert.Equal(t, 1, bad.Page)

	round := ParseQuery(q.Values(), 9)
	assert.Equal(t, q.Term, round.Term)
	assert.Equal(t, *q.CategoryID, *round.CategoryID)
	assert.Equal(t, q.Sort, round.Sort)
}
