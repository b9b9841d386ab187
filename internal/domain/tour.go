package domain

type TourStatus string

const (
	TourStatusAvailable TourStatus = "AVAILABLE"
	TourStatusFull      TourStatus = "FULL"
	TourStatusCancelled TourStatus = "CANCELLED"
	TourStatusCompleted TourStatus = "COMPLETED"
)

type Tour struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description,omitempty"`
	Destination     string     `json:"destination"`
	Duration        int        `json:"duration"`
	Price           float64    `json:"price"`
	MaxParticipants int        `json:"maxParticipants"`
	AvailableSeats  int        `json:"availableSeats"`
	StartDate       Date       `json:"startDate"`
	EndDate         Date       `json:"endDate"`
	ImageURL        string     `json:"imageUrl,omitempty"`
	Status          TourStatus `json:"status"`
	Itinerary       string     `json:"itinerary,omitempty"`
	Included        string     `json:"included,omitempty"`
	Excluded        string     `json:"excluded,omitempty"`
	CategoryID      *int64     `json:"categoryId,omitempty"`
	Category        *Category  `json:"category,omitempty"`
	CategoryName    string     `json:"categoryName,omitempty"`
	Rating          *float64   `json:"rating,omitempty"`
	ReviewCount     int        `json:"reviewCount,omitempty"`
	CreatedAt       Time       `json:"createdAt"`
	UpdatedAt       Time       `json:"updatedAt"`
}

// RatingOrZero treats a missing rating as 0.
func (t Tour) RatingOrZero() float64 {
	if t.Rating == nil {
		return 0
	}
	return *t.Rating
}

// CategoryRef resolves the category id from either the flat id or the
// embedded category.
func (t Tour) CategoryRef() (int64, bool) {
	if t.CategoryID != nil {
		return *t.CategoryID, true
	}
	if t.Category != nil {
		return t.Category.ID, true
	}
	return 0, false
}

// CategoryKey is CategoryRef for templates; 0 means no category.
func (t Tour) CategoryKey() int64 {
	id, _ := t.CategoryRef()
	return id
}

// CategoryLabel prefers the embedded category's name over the flat one.
func (t Tour) CategoryLabel() string {
	if t.Category != nil && t.Category.Name != "" {
		return t.Category.Name
	}
	return t.CategoryName
}

func (t Tour) Bookable() bool {
	return t.Status == TourStatusAvailable && t.AvailableSeats > 0
}

type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	Active      *bool  `json:"active,omitempty"`
}

// TourSearchFilters mirrors the backend's /tours/search parameters.
type TourSearchFilters struct {
	Destination string
	CategoryID  *int64
	MinPrice    *float64
	MaxPrice    *float64
	Status      TourStatus
}

func (f TourSearchFilters) Empty() bool {
	return f.Destination == "" && f.CategoryID == nil && f.MinPrice == nil && f.MaxPrice == nil && f.Status == ""
}
