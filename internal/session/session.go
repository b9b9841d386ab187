// Package session keeps per-browser state on the server: the backend
// token, the signed-in user's profile and pending flash messages. It
// replaces the browser storage the storefront used to rely on.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/tourbooking/internal/domain"
)

var (
	ErrNotFound       = errors.New("session not found")
	ErrNotInitialized = errors.New("session store not initialized")
	ErrNoProfile      = errors.New("session has no profile")
)

type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
	FlashWarning FlashKind = "warning"
	FlashInfo    FlashKind = "info"
)

type Flash struct {
	Kind    FlashKind `json:"kind"`
	Message string    `json:"message"`
}

type Session struct {
	ID        string          `json:"id"`
	Token     string          `json:"token,omitempty"`
	Profile   json.RawMessage `json:"profile,omitempty"`
	Flash     []Flash         `json:"flash,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func (s *Session) Authenticated() bool {
	return s != nil && s.Token != ""
}

// User decodes the stored profile. Callers treat any error as signed out.
func (s *Session) User() (*domain.User, error) {
	if s == nil || len(s.Profile) == 0 {
		return nil, ErrNoProfile
	}
	var u domain.User
	if err := json.Unmarshal(s.Profile, &u); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &u, nil
}

func (s *Session) clearAuth() {
	s.Token = ""
	s.Profile = nil
}

type EventKind string

const (
	EventSignedIn  EventKind = "signed_in"
	EventSignedOut EventKind = "signed_out"
	EventExpired   EventKind = "expired"
)

type Event struct {
	Kind      EventKind
	SessionID string
	At        time.Time
}
