package booking

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"parish/internal/domain/sacrament"
)

// Booking status constants
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// ValidStatuses contains all valid booking status values.
var ValidStatuses = []string{StatusPending, StatusApproved, StatusRejected}

// Domain errors
var (
	ErrEmptyUserID      = errors.New("user ID cannot be empty")
	ErrInvalidSacrament = errors.New("sacrament must be a valid sacrament type")
	ErrEmptyDate        = errors.New("booking date cannot be empty")
	ErrEmptyTime        = errors.New("booking time cannot be empty")
	ErrInvalidStatus    = errors.New("status must be one of: pending, approved, rejected")
	ErrInvalidPax       = errors.New("party size must be at least 1")
)

// Booking represents a sacrament booking request.
// Dates are calendar days in YYYY-MM-DD, times are HH:MM (24h).
type Booking struct {
	ID           string
	UserID       string
	Sacrament    sacrament.Kind
	Date         string
	Time         string
	Pax          int
	Status       string
	Transaction  string
	Price        int
	Paid         bool
	WeddingDocID string
	BaptismDocID string
	BurialDocID  string
	CreatedAt    time.Time
}

// Validate checks if the Booking has valid data.
// PRE: Booking struct is populated
// POST: Returns nil if valid, error otherwise
func (b *Booking) Validate() error {
	if strings.TrimSpace(b.UserID) == "" {
		return ErrEmptyUserID
	}
	if !b.Sacrament.Valid() {
		return ErrInvalidSacrament
	}
	if strings.TrimSpace(b.Date) == "" {
		return ErrEmptyDate
	}
	if _, err := time.Parse("2006-01-02", b.Date); err != nil {
		return fmt.Errorf("invalid booking date %q: %w", b.Date, err)
	}
	if strings.TrimSpace(b.Time) == "" {
		return ErrEmptyTime
	}
	if _, err := MinutesOfDay(b.Time); err != nil {
		return err
	}
	if !isValidStatus(b.Status) {
		return ErrInvalidStatus
	}
	if b.Pax < 1 {
		return ErrInvalidPax
	}
	return nil
}

// ChildDocID returns the sub-document id for the booking's sacrament, if any.
// INVARIANT: Booking fields are not mutated
func (b *Booking) ChildDocID() string {
	switch b.Sacrament {
	case sacrament.Wedding:
		return b.WeddingDocID
	case sacrament.Baptism:
		return b.BaptismDocID
	case sacrament.Burial:
		return b.BurialDocID
	}
	return ""
}

// SetChildDocID stores the sub-document id in the field matching the
// booking's sacrament. A no-op for sacraments without sub-documents.
// PRE: Sacrament is set
// POST: The matching *_docu_id field holds id
func (b *Booking) SetChildDocID(id string) {
	switch b.Sacrament {
	case sacrament.Wedding:
		b.WeddingDocID = id
	case sacrament.Baptism:
		b.BaptismDocID = id
	case sacrament.Burial:
		b.BurialDocID = id
	}
}

// MinutesOfDay converts an HH:MM time to minutes since midnight.
// PRE: hhmm is in 24h HH:MM format
// POST: Returns minutes in [0, 1439], or an error if unparseable
func MinutesOfDay(hhmm string) (int, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return 0, fmt.Errorf("invalid booking time %q: %w", hhmm, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// ConflictPolicy names the minimum spacing between approved bookings on
// the same calendar day. The window is deliberately a parameter rather
// than a constant; cross-midnight windows are out of scope.
type ConflictPolicy struct {
	Window time.Duration
}

// DefaultConflictPolicy spaces approved bookings at least an hour apart.
var DefaultConflictPolicy = ConflictPolicy{Window: 60 * time.Minute}

// Conflicts reports whether two same-day times, given as minutes since
// midnight, are too close together. Exactly Window apart is allowed
// (strict less-than), so back-to-back hourly slots do not collide.
// INVARIANT: Policy fields are not mutated
func (p ConflictPolicy) Conflicts(aMinutes, bMinutes int) bool {
	diff := aMinutes - bMinutes
	if diff < 0 {
		diff = -diff
	}
	return diff < int(p.Window.Minutes())
}

func isValidStatus(status string) bool {
	for _, s := range ValidStatuses {
		if s == status {
			return true
		}
	}
	return false
}
