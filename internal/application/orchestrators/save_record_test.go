package orchestrators

import (
	"context"
	"errors"
	"testing"

	"parish/internal/domain/translog"
)

// TestExecuteCreateRecord_Valid tests creating a managed record.
func TestExecuteCreateRecord_Valid(t *testing.T) {
	records := newMockRecordStore()
	logs := &mockLogStore{}

	id, err := ExecuteCreateRecord(context.Background(), CreateRecordInput{
		Table: "priest_tbl",
		Record: map[string]any{
			"priest_name":   "Fr. Jose Rivera",
			"priest_parish": "St. Isidore",
		},
		Actor: testActor,
	}, CreateRecordDeps{
		RecordStore: records,
		LogStore:    logs,
		GenerateID:  seqID(),
		Now:         fixedNow,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == "" {
		t.Fatal("expected generated id")
	}
	if _, ok := records.records["priest_tbl"][id]; !ok {
		t.Error("expected record persisted")
	}
	if logs.lastAction() != translog.ActionCreate {
		t.Errorf("expected CREATE log, got %v", logs.lastAction())
	}
	if logs.entries[0].NewData == "" || logs.entries[0].OldData != "" {
		t.Errorf("CREATE log should carry new payload only: %+v", logs.entries[0])
	}
}

// TestExecuteCreateRecord_MissingRequired tests required-field validation.
func TestExecuteCreateRecord_MissingRequired(t *testing.T) {
	records := newMockRecordStore()
	logs := &mockLogStore{}

	_, err := ExecuteCreateRecord(context.Background(), CreateRecordInput{
		Table:  "priest_tbl",
		Record: map[string]any{"priest_parish": "St. Isidore"},
		Actor:  testActor,
	}, CreateRecordDeps{
		RecordStore: records,
		LogStore:    logs,
		GenerateID:  seqID(),
		Now:         fixedNow,
	})
	if err == nil {
		t.Fatal("expected error for missing priest_name")
	}
	if len(records.records["priest_tbl"]) != 0 {
		t.Error("nothing should be persisted on validation failure")
	}
}

// TestExecuteUpdateRecord_Valid tests a partial update with before and
// after payloads logged.
func TestExecuteUpdateRecord_Valid(t *testing.T) {
	records := newMockRecordStore()
	records.put("priest_tbl", "p-1", map[string]any{
		"id": "p-1", "priest_name": "Fr. Jose Rivera", "priest_availability": "weekdays",
	})
	logs := &mockLogStore{}

	err := ExecuteUpdateRecord(context.Background(), UpdateRecordInput{
		Table:    "priest_tbl",
		RecordID: "p-1",
		Fields:   map[string]any{"priest_availability": "weekends"},
		Actor:    testActor,
	}, UpdateRecordDeps{
		RecordStore: records,
		LogStore:    logs,
		GenerateID:  seqID(),
		Now:         fixedNow,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if records.records["priest_tbl"]["p-1"]["priest_availability"] != "weekends" {
		t.Error("expected field updated")
	}
	if logs.lastAction() != translog.ActionUpdate {
		t.Errorf("expected UPDATE log, got %v", logs.lastAction())
	}
	if logs.entries[0].OldData == "" || logs.entries[0].NewData == "" {
		t.Errorf("UPDATE log should carry both payloads: %+v", logs.entries[0])
	}
}

// TestExecuteUpdateRecord_IDImmutable tests that an id field in the
// update payload is discarded.
func TestExecuteUpdateRecord_IDImmutable(t *testing.T) {
	records := newMockRecordStore()
	records.put("priest_tbl", "p-1", map[string]any{"id": "p-1", "priest_name": "Fr. Jose Rivera"})
	logs := &mockLogStore{}

	err := ExecuteUpdateRecord(context.Background(), UpdateRecordInput{
		Table:    "priest_tbl",
		RecordID: "p-1",
		Fields:   map[string]any{"id": "p-999", "priest_name": "Fr. Juan Reyes"},
		Actor:    testActor,
	}, UpdateRecordDeps{
		RecordStore: records,
		LogStore:    logs,
		GenerateID:  seqID(),
		Now:         fixedNow,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if records.records["priest_tbl"]["p-1"]["id"] != "p-1" {
		t.Error("record id must not change on update")
	}
}

// TestExecuteUpdateRecord_NotFound tests updating a missing record.
func TestExecuteUpdateRecord_NotFound(t *testing.T) {
	err := ExecuteUpdateRecord(context.Background(), UpdateRecordInput{
		Table:    "priest_tbl",
		RecordID: "nope",
		Fields:   map[string]any{"priest_name": "x"},
		Actor:    testActor,
	}, UpdateRecordDeps{
		RecordStore: newMockRecordStore(),
		LogStore:    &mockLogStore{},
		GenerateID:  seqID(),
		Now:         fixedNow,
	})
	if err == nil {
		t.Error("expected error for missing record")
	}
}

// bookingRow returns a booking_tbl column map for the generic update tests.
func bookingRow(id, date, hhmm, status string) map[string]any {
	return map[string]any{
		"id": id, "user_id": "user-1", "booking_sacrament": "Wedding",
		"booking_date": date, "booking_time": hhmm,
		"booking_pax": int64(2), "booking_status": status,
	}
}

func bookingUpdateDeps(records *mockRecordStore, bookings *mockBookingStore, logs *mockLogStore) UpdateRecordDeps {
	return UpdateRecordDeps{
		RecordStore:  records,
		BookingStore: bookings,
		LogStore:     logs,
		GenerateID:   seqID(),
		Now:          fixedNow,
	}
}

// TestExecuteUpdateRecord_BookingTimeConflict tests that moving an
// approved booking inside another approved booking's window is refused.
func TestExecuteUpdateRecord_BookingTimeConflict(t *testing.T) {
	records := newMockRecordStore()
	records.put("booking_tbl", "b-2", bookingRow("b-2", "2026-06-01", "12:00", "approved"))
	bookings := newMockBookingStore()
	bookings.bookings["b-1"] = approvedAt("b-1", "2026-06-01", "09:00")
	bookings.bookings["b-2"] = approvedAt("b-2", "2026-06-01", "12:00")
	logs := &mockLogStore{}

	err := ExecuteUpdateRecord(context.Background(), UpdateRecordInput{
		Table:    "booking_tbl",
		RecordID: "b-2",
		Fields:   map[string]any{"booking_time": "09:30"},
		Actor:    testActor,
	}, bookingUpdateDeps(records, bookings, logs))
	if !errors.Is(err, ErrBookingConflict) {
		t.Fatalf("expected ErrBookingConflict, got %v", err)
	}
	if records.records["booking_tbl"]["b-2"]["booking_time"] != "12:00" {
		t.Error("conflicting edit must not be persisted")
	}
	if len(logs.entries) != 0 {
		t.Error("no log entry should be written for a refused edit")
	}
}

// TestExecuteUpdateRecord_BookingApproveConflict tests that flipping a
// pending booking to approved runs the conflict check.
func TestExecuteUpdateRecord_BookingApproveConflict(t *testing.T) {
	records := newMockRecordStore()
	records.put("booking_tbl", "b-3", bookingRow("b-3", "2026-06-01", "09:15", "pending"))
	bookings := newMockBookingStore()
	bookings.bookings["b-1"] = approvedAt("b-1", "2026-06-01", "09:00")

	err := ExecuteUpdateRecord(context.Background(), UpdateRecordInput{
		Table:    "booking_tbl",
		RecordID: "b-3",
		Fields:   map[string]any{"booking_status": "approved"},
		Actor:    testActor,
	}, bookingUpdateDeps(records, bookings, &mockLogStore{}))
	if !errors.Is(err, ErrBookingConflict) {
		t.Fatalf("expected ErrBookingConflict, got %v", err)
	}
	if records.records["booking_tbl"]["b-3"]["booking_status"] != "pending" {
		t.Error("booking must stay pending after a refused approval")
	}
}

// TestExecuteUpdateRecord_BookingSelfExclusion tests that an approved
// booking can move within its own window.
func TestExecuteUpdateRecord_BookingSelfExclusion(t *testing.T) {
	records := newMockRecordStore()
	records.put("booking_tbl", "b-1", bookingRow("b-1", "2026-06-01", "09:00", "approved"))
	bookings := newMockBookingStore()
	bookings.bookings["b-1"] = approvedAt("b-1", "2026-06-01", "09:00")
	logs := &mockLogStore{}

	err := ExecuteUpdateRecord(context.Background(), UpdateRecordInput{
		Table:    "booking_tbl",
		RecordID: "b-1",
		Fields:   map[string]any{"booking_time": "09:10"},
		Actor:    testActor,
	}, bookingUpdateDeps(records, bookings, logs))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if records.records["booking_tbl"]["b-1"]["booking_time"] != "09:10" {
		t.Error("expected edit persisted")
	}
}

// TestExecuteUpdateRecord_BookingPendingSkipsCheck tests that edits
// leaving the booking pending do not consult the conflict checker.
func TestExecuteUpdateRecord_BookingPendingSkipsCheck(t *testing.T) {
	records := newMockRecordStore()
	records.put("booking_tbl", "b-3", bookingRow("b-3", "2026-06-01", "09:15", "pending"))
	bookings := newMockBookingStore()
	bookings.listErr = errors.New("conflict check must not run")
	bookings.bookings["b-1"] = approvedAt("b-1", "2026-06-01", "09:00")

	err := ExecuteUpdateRecord(context.Background(), UpdateRecordInput{
		Table:    "booking_tbl",
		RecordID: "b-3",
		Fields:   map[string]any{"booking_pax": 5},
		Actor:    testActor,
	}, bookingUpdateDeps(records, bookings, &mockLogStore{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// TestExecuteUpdateRecord_BookingInvalidRow tests that the merged row
// is re-validated before persisting.
func TestExecuteUpdateRecord_BookingInvalidRow(t *testing.T) {
	records := newMockRecordStore()
	records.put("booking_tbl", "b-1", bookingRow("b-1", "2026-06-01", "09:00", "approved"))
	logs := &mockLogStore{}

	err := ExecuteUpdateRecord(context.Background(), UpdateRecordInput{
		Table:    "booking_tbl",
		RecordID: "b-1",
		Fields:   map[string]any{"booking_time": "25:99"},
		Actor:    testActor,
	}, bookingUpdateDeps(records, newMockBookingStore(), logs))
	if err == nil {
		t.Fatal("expected error for unparseable time")
	}
	if records.records["booking_tbl"]["b-1"]["booking_time"] != "09:00" {
		t.Error("invalid edit must not be persisted")
	}
}

// TestExecuteCreateRecord_EmptyRecord tests that empty payloads are rejected.
func TestExecuteCreateRecord_EmptyRecord(t *testing.T) {
	_, err := ExecuteCreateRecord(context.Background(), CreateRecordInput{
		Table: "priest_tbl",
		Actor: testActor,
	}, CreateRecordDeps{
		RecordStore: newMockRecordStore(),
		LogStore:    &mockLogStore{},
		GenerateID:  seqID(),
		Now:         fixedNow,
	})
	if !errors.Is(err, ErrEmptyRecord) {
		t.Errorf("expected ErrEmptyRecord, got %v", err)
	}
}
