package domain

import (
	"errors"
	"strings"
)

type TourInput struct {
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
	Itinerary       string     `json:"itinerary,omitempty"`
	Included        string     `json:"included,omitempty"`
	Excluded        string     `json:"excluded,omitempty"`
	CategoryID      *int64     `json:"categoryId,omitempty"`
	Status          TourStatus `json:"status,omitempty"`
}

// Validate performs the form-level checks; the backend remains the
// authority on everything else.
func (in TourInput) Validate() error {
	var errs []error
	if strings.TrimSpace(in.Name) == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if strings.TrimSpace(in.Destination) == "" {
		errs = append(errs, errors.New("destination is required"))
	}
	if in.Duration < 1 {
		errs = append(errs, errors.New("duration must be at least one day"))
	}
	if in.Price < 0 {
		errs = append(errs, errors.New("price must not be negative"))
	}
	if in.MaxParticipants < 1 {
		errs = append(errs, errors.New("max participants must be positive"))
	}
	if in.AvailableSeats < 0 || in.AvailableSeats > in.MaxParticipants {
		errs = append(errs, errors.New("available seats must be between 0 and max participants"))
	}
	if !in.StartDate.IsZero() && !in.EndDate.IsZero() && in.EndDate.Before(in.StartDate.Time) {
		errs = append(errs, errors.New("end date must not precede start date"))
	}
	return errors.Join(errs...)
}

type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (in CategoryInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return errors.New("name is required")
	}
	return nil
}
