package domain

import (
	"encoding/json"
	"errors"
	"strings"
)

var ErrTransitionNotAllowed = errors.New("booking status transition not allowed")

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
)

var BookingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusCancelled,
	BookingStatusCompleted,
}

// Terminal statuses accept no further transition from the UI.
func (s BookingStatus) Terminal() bool {
	return s == BookingStatusCancelled || s == BookingStatusCompleted
}

// PaymentStatus is the canonical payment enumeration. Older backend
// variants (UNPAID, PARTIAL, PAID) are normalized on decode.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

var PaymentStatuses = []PaymentStatus{
	PaymentStatusPending,
	PaymentStatusCompleted,
	PaymentStatusFailed,
	PaymentStatusRefunded,
}

func ParsePaymentStatus(s string) PaymentStatus {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "COMPLETED", "PAID":
		return PaymentStatusCompleted
	case "FAILED":
		return PaymentStatusFailed
	case "REFUNDED":
		return PaymentStatusRefunded
	default:
		return PaymentStatusPending
	}
}

func (p *PaymentStatus) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*p = ParsePaymentStatus(s)
	return nil
}

type Booking struct {
	ID              int64         `json:"id"`
	TourID          int64         `json:"tourId,omitempty"`
	TourName        string        `json:"tourName,omitempty"`
	CustomerID      int64         `json:"customerId,omitempty"`
	CustomerName    string        `json:"customerName,omitempty"`
	Tour            *Tour         `json:"tour,omitempty"`
	Customer        *User         `json:"customer,omitempty"`
	NumberOfPeople  int           `json:"numberOfPeople"`
	TotalAmount     float64       `json:"totalAmount"`
	Status          BookingStatus `json:"status"`
	PaymentStatus   PaymentStatus `json:"paymentStatus"`
	SpecialRequests string        `json:"specialRequests,omitempty"`
	CreatedAt       Time          `json:"createdAt"`
	UpdatedAt       Time          `json:"updatedAt"`
}

// CanTransition reports whether the UI may request a move to status to.
// COMPLETED is only ever reached server side.
func (b Booking) CanTransition(to BookingStatus) bool {
	switch b.Status {
	case BookingStatusPending:
		return to == BookingStatusConfirmed || to == BookingStatusCancelled
	case BookingStatusConfirmed:
		return to == BookingStatusCancelled
	default:
		return false
	}
}

// TourTitle prefers the embedded tour, falling back to the flat DTO field.
func (b Booking) TourTitle() string {
	if b.Tour != nil {
		return b.Tour.Name
	}
	return b.TourName
}

func (b Booking) CustomerTitle() string {
	if b.Customer != nil && b.Customer.FullName != "" {
		return b.Customer.FullName
	}
	return b.CustomerName
}

func (b Booking) TourRef() int64 {
	if b.Tour != nil {
		return b.Tour.ID
	}
	return b.TourID
}

// TotalAmount is price × party size.
func TotalAmount(price float64, people int) float64 {
	return price * float64(people)
}

type BookingRequest struct {
	TourID          int64  `json:"tourId"`
	NumberOfPeople  int    `json:"numberOfPeople"`
	SpecialRequests string `json:"specialRequests,omitempty"`
}
