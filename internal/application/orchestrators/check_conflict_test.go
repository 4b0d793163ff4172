package orchestrators

import (
	"context"
	"errors"
	"testing"
	"time"

	"parish/internal/domain/booking"
)

// mockBookingStore implements the booking store interfaces for testing.
type mockBookingStore struct {
	bookings map[string]booking.Booking
	listErr  error
	saveErr  error
}

func newMockBookingStore() *mockBookingStore {
	return &mockBookingStore{bookings: make(map[string]booking.Booking)}
}

func (m *mockBookingStore) GetByID(_ context.Context, id string) (booking.Booking, error) {
	b, ok := m.bookings[id]
	if !ok {
		return booking.Booking{}, errors.New("booking not found")
	}
	return b, nil
}

func (m *mockBookingStore) Save(_ context.Context, b booking.Booking) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.bookings[b.ID] = b
	return nil
}

func (m *mockBookingStore) ListApprovedByDate(_ context.Context, date string) ([]booking.Booking, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []booking.Booking
	for _, b := range m.bookings {
		if b.Date == date && b.Status == booking.StatusApproved {
			out = append(out, b)
		}
	}
	return out, nil
}

func approvedAt(id, date, hhmm string) booking.Booking {
	return booking.Booking{
		ID: id, UserID: "user-1", Sacrament: "Wedding",
		Date: date, Time: hhmm, Pax: 2, Status: booking.StatusApproved,
	}
}

// TestExecuteCheckConflict_Window tests the 60-minute window boundaries.
func TestExecuteCheckConflict_Window(t *testing.T) {
	tests := []struct {
		name         string
		existing     string
		candidate    string
		wantConflict bool
	}{
		{"45 minutes apart", "09:45", "09:00", true},
		{"exactly 60 minutes apart", "10:00", "09:00", false},
		{"61 minutes apart", "10:01", "09:00", false},
		{"same time", "09:00", "09:00", true},
		{"59 minutes before", "08:01", "09:00", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockBookingStore()
			store.bookings["b-1"] = approvedAt("b-1", "2026-06-01", tt.existing)

			result, err := ExecuteCheckConflict(context.Background(), CheckConflictInput{
				Date: "2026-06-01",
				Time: tt.candidate,
			}, CheckConflictDeps{BookingStore: store})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Conflict != tt.wantConflict {
				t.Errorf("Conflict = %v, want %v", result.Conflict, tt.wantConflict)
			}
			if tt.wantConflict && result.With != "b-1" {
				t.Errorf("With = %q, want b-1", result.With)
			}
		})
	}
}

// TestExecuteCheckConflict_DifferentDay tests that other days never conflict.
func TestExecuteCheckConflict_DifferentDay(t *testing.T) {
	store := newMockBookingStore()
	store.bookings["b-1"] = approvedAt("b-1", "2026-06-02", "09:00")

	result, err := ExecuteCheckConflict(context.Background(), CheckConflictInput{
		Date: "2026-06-01",
		Time: "09:00",
	}, CheckConflictDeps{BookingStore: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Conflict {
		t.Error("expected no conflict across days")
	}
}

// TestExecuteCheckConflict_SelfExclusion tests that a booking does not
// conflict with itself when edited.
func TestExecuteCheckConflict_SelfExclusion(t *testing.T) {
	store := newMockBookingStore()
	store.bookings["b-1"] = approvedAt("b-1", "2026-06-01", "09:00")

	result, err := ExecuteCheckConflict(context.Background(), CheckConflictInput{
		Date:      "2026-06-01",
		Time:      "09:00",
		ExcludeID: "b-1",
	}, CheckConflictDeps{BookingStore: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Conflict {
		t.Error("expected no conflict with itself")
	}
}

// TestExecuteCheckConflict_PendingIgnored tests that pending bookings do
// not block a candidate slot.
func TestExecuteCheckConflict_PendingIgnored(t *testing.T) {
	store := newMockBookingStore()
	b := approvedAt("b-1", "2026-06-01", "09:00")
	b.Status = booking.StatusPending
	store.bookings["b-1"] = b

	result, err := ExecuteCheckConflict(context.Background(), CheckConflictInput{
		Date: "2026-06-01",
		Time: "09:30",
	}, CheckConflictDeps{BookingStore: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Conflict {
		t.Error("expected pending booking to be ignored")
	}
}

// TestExecuteCheckConflict_UnparseableTimeSkipped tests that a stored
// booking with a bad time is skipped rather than treated as a conflict.
func TestExecuteCheckConflict_UnparseableTimeSkipped(t *testing.T) {
	store := newMockBookingStore()
	b := approvedAt("b-1", "2026-06-01", "not-a-time")
	store.bookings["b-1"] = b

	result, err := ExecuteCheckConflict(context.Background(), CheckConflictInput{
		Date: "2026-06-01",
		Time: "09:00",
	}, CheckConflictDeps{BookingStore: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Conflict {
		t.Error("expected unparseable stored time to be skipped")
	}
}

// TestExecuteCheckConflict_CustomWindow tests an overridden policy window.
func TestExecuteCheckConflict_CustomWindow(t *testing.T) {
	store := newMockBookingStore()
	store.bookings["b-1"] = approvedAt("b-1", "2026-06-01", "09:00")

	result, err := ExecuteCheckConflict(context.Background(), CheckConflictInput{
		Date: "2026-06-01",
		Time: "10:30",
	}, CheckConflictDeps{
		BookingStore: store,
		Policy:       booking.ConflictPolicy{Window: 2 * time.Hour},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Conflict {
		t.Error("expected conflict under a two-hour window")
	}
}

// TestExecuteCheckConflict_MissingInput tests that date and time are required.
func TestExecuteCheckConflict_MissingInput(t *testing.T) {
	_, err := ExecuteCheckConflict(context.Background(), CheckConflictInput{
		Date: "2026-06-01",
	}, CheckConflictDeps{BookingStore: newMockBookingStore()})
	if !errors.Is(err, ErrMissingDateTime) {
		t.Errorf("expected ErrMissingDateTime, got %v", err)
	}
}

// TestExecuteCheckConflict_StoreError tests that store failures propagate.
func TestExecuteCheckConflict_StoreError(t *testing.T) {
	store := newMockBookingStore()
	store.listErr = errors.New("db down")

	_, err := ExecuteCheckConflict(context.Background(), CheckConflictInput{
		Date: "2026-06-01",
		Time: "09:00",
	}, CheckConflictDeps{BookingStore: store})
	if err == nil {
		t.Error("expected error from store")
	}
}
