package orchestrators

import (
	"context"
	"errors"
	"testing"

	"parish/internal/domain/actor"
	"parish/internal/domain/translog"
)

var testActor = actor.Actor{Name: "Admin One", Email: "admin@parish.local"}

func archiveDeps(records *mockRecordStore, trashStore *mockTrashStore, logs *mockLogStore) ArchiveRecordDeps {
	return ArchiveRecordDeps{
		RecordStore: records,
		TrashStore:  trashStore,
		LogStore:    logs,
		GenerateID:  seqID(),
		Now:         fixedNow,
	}
}

// TestExecuteArchiveRecord_Simple tests archiving a plain record.
func TestExecuteArchiveRecord_Simple(t *testing.T) {
	records := newMockRecordStore()
	records.put("donation_tbl", "d-1", map[string]any{
		"id": "d-1", "user_id": "u-1", "donation_amount": 500.0,
	})
	trashStore := newMockTrashStore()
	logs := &mockLogStore{}

	err := ExecuteArchiveRecord(context.Background(), ArchiveRecordInput{
		Table:    "donation_tbl",
		RecordID: "d-1",
		Actor:    testActor,
	}, archiveDeps(records, trashStore, logs))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := records.records["donation_tbl"]["d-1"]; ok {
		t.Error("expected live record to be removed")
	}
	if len(trashStore.entries) != 1 {
		t.Fatalf("expected 1 trash entry, got %d", len(trashStore.entries))
	}
	for _, e := range trashStore.entries {
		if e.OriginalTable != "donation_tbl" || e.RecordID != "d-1" {
			t.Errorf("unexpected trash entry: %+v", e)
		}
		if e.DeletedBy != "Admin One" || e.DeletedByEmail != "admin@parish.local" {
			t.Errorf("unexpected actor on trash entry: %+v", e)
		}
	}
	if len(logs.entries) != 1 || logs.entries[0].Action != translog.ActionDelete {
		t.Fatalf("expected one DELETE log entry, got %+v", logs.entries)
	}
	if logs.entries[0].OldData == "" || logs.entries[0].NewData != "" {
		t.Errorf("DELETE log should carry old payload only: %+v", logs.entries[0])
	}
}

// TestExecuteArchiveRecord_BookingCascadesChild tests that deleting a
// wedding booking also archives and removes its sub-document.
func TestExecuteArchiveRecord_BookingCascadesChild(t *testing.T) {
	records := newMockRecordStore()
	records.put("booking_tbl", "b-1", map[string]any{
		"id": "b-1", "user_id": "u-1", "booking_sacrament": "Wedding",
		"booking_date": "2026-06-01", "booking_time": "09:00",
		"wedding_docu_id": "w-1",
	})
	records.put("booking_wedding_docu_tbl", "w-1", map[string]any{
		"id": "w-1", "groom_fullname": "Juan Cruz", "bride_fullname": "Maria Santos",
	})
	trashStore := newMockTrashStore()
	logs := &mockLogStore{}

	err := ExecuteArchiveRecord(context.Background(), ArchiveRecordInput{
		Table:    "booking_tbl",
		RecordID: "b-1",
		Actor:    testActor,
	}, archiveDeps(records, trashStore, logs))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := records.records["booking_tbl"]["b-1"]; ok {
		t.Error("expected booking to be removed")
	}
	if _, ok := records.records["booking_wedding_docu_tbl"]["w-1"]; ok {
		t.Error("expected sub-document to be removed")
	}
	if len(trashStore.entries) != 2 {
		t.Fatalf("expected 2 trash entries, got %d", len(trashStore.entries))
	}
	found := map[string]bool{}
	for _, e := range trashStore.entries {
		found[e.OriginalTable] = true
	}
	if !found["booking_tbl"] || !found["booking_wedding_docu_tbl"] {
		t.Errorf("missing trash entries: %v", found)
	}
	// One DELETE log for the parent only.
	if len(logs.entries) != 1 {
		t.Errorf("expected 1 log entry, got %d", len(logs.entries))
	}
}

// TestExecuteArchiveRecord_BookingWithoutChild tests a sacrament that
// carries no sub-document.
func TestExecuteArchiveRecord_BookingWithoutChild(t *testing.T) {
	records := newMockRecordStore()
	records.put("booking_tbl", "b-1", map[string]any{
		"id": "b-1", "user_id": "u-1", "booking_sacrament": "Confession",
		"booking_date": "2026-06-01", "booking_time": "09:00",
	})
	trashStore := newMockTrashStore()
	logs := &mockLogStore{}

	err := ExecuteArchiveRecord(context.Background(), ArchiveRecordInput{
		Table:    "booking_tbl",
		RecordID: "b-1",
		Actor:    testActor,
	}, archiveDeps(records, trashStore, logs))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trashStore.entries) != 1 {
		t.Errorf("expected 1 trash entry, got %d", len(trashStore.entries))
	}
}

// TestExecuteArchiveRecord_TrashFailureKeepsRecord tests that a failed
// trash insert leaves the live record in place.
func TestExecuteArchiveRecord_TrashFailureKeepsRecord(t *testing.T) {
	records := newMockRecordStore()
	records.put("donation_tbl", "d-1", map[string]any{"id": "d-1", "donation_amount": 100.0})
	trashStore := newMockTrashStore()
	trashStore.failOn = "save"
	logs := &mockLogStore{}

	err := ExecuteArchiveRecord(context.Background(), ArchiveRecordInput{
		Table:    "donation_tbl",
		RecordID: "d-1",
		Actor:    testActor,
	}, archiveDeps(records, trashStore, logs))
	if err == nil {
		t.Fatal("expected error from trash store")
	}
	if _, ok := records.records["donation_tbl"]["d-1"]; !ok {
		t.Error("live record must remain after failed archive")
	}
	if len(logs.entries) != 0 {
		t.Error("no log entry should be written when trash insert fails")
	}
}

// TestExecuteArchiveRecord_LogFailureKeepsRecord tests that a failed
// DELETE log append leaves the live record in place.
func TestExecuteArchiveRecord_LogFailureKeepsRecord(t *testing.T) {
	records := newMockRecordStore()
	records.put("donation_tbl", "d-1", map[string]any{"id": "d-1", "donation_amount": 100.0})
	trashStore := newMockTrashStore()
	logs := &mockLogStore{fail: true}

	err := ExecuteArchiveRecord(context.Background(), ArchiveRecordInput{
		Table:    "donation_tbl",
		RecordID: "d-1",
		Actor:    testActor,
	}, archiveDeps(records, trashStore, logs))
	if err == nil {
		t.Fatal("expected error from log store")
	}
	if _, ok := records.records["donation_tbl"]["d-1"]; !ok {
		t.Error("live record must remain when the DELETE log cannot be written")
	}
}

// TestExecuteArchiveRecord_Validation tests input validation.
func TestExecuteArchiveRecord_Validation(t *testing.T) {
	deps := archiveDeps(newMockRecordStore(), newMockTrashStore(), &mockLogStore{})

	err := ExecuteArchiveRecord(context.Background(), ArchiveRecordInput{RecordID: "x", Actor: testActor}, deps)
	if !errors.Is(err, ErrMissingTable) {
		t.Errorf("expected ErrMissingTable, got %v", err)
	}
	err = ExecuteArchiveRecord(context.Background(), ArchiveRecordInput{Table: "t", Actor: testActor}, deps)
	if !errors.Is(err, ErrMissingRecordID) {
		t.Errorf("expected ErrMissingRecordID, got %v", err)
	}
	err = ExecuteArchiveRecord(context.Background(), ArchiveRecordInput{Table: "t", RecordID: "x"}, deps)
	if !errors.Is(err, actor.ErrMissingActor) {
		t.Errorf("expected ErrMissingActor, got %v", err)
	}
}
