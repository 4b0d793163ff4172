package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"parish/internal/domain/booking"
)

// BookingStoreForConflict defines the store interface needed by CheckConflict.
type BookingStoreForConflict interface {
	ListApprovedByDate(ctx context.Context, date string) ([]booking.Booking, error)
}

// CheckConflictInput carries input for the conflict checker.
type CheckConflictInput struct {
	Date      string // YYYY-MM-DD
	Time      string // HH:MM
	ExcludeID string // booking id to skip, set when editing an existing booking
}

// CheckConflictDeps holds dependencies for CheckConflict.
type CheckConflictDeps struct {
	BookingStore BookingStoreForConflict
	Policy       booking.ConflictPolicy
}

// CheckConflictResult reports whether a candidate slot collides with an
// approved booking on the same day.
type CheckConflictResult struct {
	Conflict bool
	Reason   string
	With     string // id of the conflicting booking, empty if none
}

var ErrMissingDateTime = errors.New("booking date and time are required")

// ExecuteCheckConflict reports whether a candidate booking slot is too
// close to an already-approved booking on the same calendar day.
// Approved bookings with a time the store cannot parse are skipped
// rather than treated as conflicts.
// PRE: Date and Time must be non-empty
// POST: Result.Conflict is true iff an approved booking other than
// ExcludeID sits within the policy window of the candidate time
func ExecuteCheckConflict(ctx context.Context, input CheckConflictInput, deps CheckConflictDeps) (CheckConflictResult, error) {
	if input.Date == "" || input.Time == "" {
		return CheckConflictResult{}, ErrMissingDateTime
	}

	policy := deps.Policy
	if policy.Window == 0 {
		policy = booking.DefaultConflictPolicy
	}

	candidate, err := booking.MinutesOfDay(input.Time)
	if err != nil {
		return CheckConflictResult{}, err
	}

	approved, err := deps.BookingStore.ListApprovedByDate(ctx, input.Date)
	if err != nil {
		return CheckConflictResult{}, err
	}

	for _, b := range approved {
		if b.ID == input.ExcludeID {
			continue
		}
		minutes, err := booking.MinutesOfDay(b.Time)
		if err != nil {
			slog.Warn("booking_event", "event", "conflict_check_skipped", "booking_id", b.ID, "raw_time", b.Time)
			continue
		}
		if policy.Conflicts(candidate, minutes) {
			return CheckConflictResult{
				Conflict: true,
				Reason: fmt.Sprintf("an approved booking at %s on %s is within %d minutes of the requested time",
					b.Time, b.Date, int(policy.Window.Minutes())),
				With: b.ID,
			}, nil
		}
	}

	return CheckConflictResult{}, nil
}
