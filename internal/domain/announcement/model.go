package announcement

import (
	"errors"
	"strings"
	"time"
)

// Announcement types
const (
	TypeGeneral = "general"
	TypeEvent   = "event"
	TypeMass    = "mass_schedule"
)

// Announcement statuses
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// ValidTypes contains all valid announcement types.
var ValidTypes = []string{TypeGeneral, TypeEvent, TypeMass}

// ValidStatuses contains all valid announcement statuses.
var ValidStatuses = []string{StatusDraft, StatusPublished}

// Domain errors
var (
	ErrEmptyTitle    = errors.New("announcement title cannot be empty")
	ErrEmptyContent  = errors.New("announcement content cannot be empty")
	ErrInvalidType   = errors.New("announcement type must be one of: general, event, mass_schedule")
	ErrInvalidStatus = errors.New("announcement status must be one of: draft, published")
	ErrNotDraft      = errors.New("announcement is not a draft")
)

// Announcement is a parish notice shown on the public events page.
// Content supports Markdown formatting.
type Announcement struct {
	ID          string
	Type        string
	Status      string
	Title       string
	Content     string // Markdown content
	EventDate   string // YYYY-MM-DD for event announcements, empty otherwise
	CreatedBy   string // AccountID of creator
	CreatedAt   time.Time
	PublishedAt time.Time
}

// Validate checks if the Announcement has valid data.
// PRE: Announcement struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Announcement) Validate() error {
	if strings.TrimSpace(a.Title) == "" {
		return ErrEmptyTitle
	}
	if strings.TrimSpace(a.Content) == "" {
		return ErrEmptyContent
	}
	if !contains(ValidTypes, a.Type) {
		return ErrInvalidType
	}
	if !contains(ValidStatuses, a.Status) {
		return ErrInvalidStatus
	}
	return nil
}

// Publish transitions a draft to published.
// PRE: Announcement is a draft
// POST: Status is published, PublishedAt is set
func (a *Announcement) Publish(now time.Time) error {
	if a.Status != StatusDraft {
		return ErrNotDraft
	}
	a.Status = StatusPublished
	a.PublishedAt = now
	return nil
}

func contains(valid []string, v string) bool {
	for _, s := range valid {
		if s == v {
			return true
		}
	}
	return false
}
