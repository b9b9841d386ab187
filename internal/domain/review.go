package domain

import (
	"errors"
	"strings"
)

var (
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	ErrEmptyComment  = errors.New("comment is required")
)

type Review struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"userId"`
	TourID    int64  `json:"tourId"`
	BookingID int64  `json:"bookingId,omitempty"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
	User      *User  `json:"user,omitempty"`
	CreatedAt Time   `json:"createdAt"`
}

type ReviewInput struct {
	TourID    int64  `json:"tourId"`
	BookingID int64  `json:"bookingId,omitempty"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

func (r ReviewInput) Validate() error {
	if r.Rating < 1 || r.Rating > 5 {
		return ErrInvalidRating
	}
	if strings.TrimSpace(r.Comment) == "" {
		return ErrEmptyComment
	}
	return nil
}
