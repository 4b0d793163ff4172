package tables_test

import (
	"errors"
	"testing"

	"parish/internal/domain/tables"
)

// TestGet tests registry lookups.
func TestGet(t *testing.T) {
	tbl, err := tables.Get("booking_tbl")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tbl.DisplayName != "All Sacrament Bookings" {
		t.Errorf("DisplayName = %q", tbl.DisplayName)
	}

	if _, err := tables.Get("secrets_tbl"); !errors.Is(err, tables.ErrUnknownTable) {
		t.Errorf("expected ErrUnknownTable, got %v", err)
	}
}

// TestManaged tests the record store allowlist.
func TestManaged(t *testing.T) {
	for _, name := range []string{"booking_tbl", "user_tbl", "priest_tbl", "booking_wedding_docu_tbl", "booking_baptism_docu_tbl", "booking_burial_docu_tbl"} {
		if !tables.Managed(name) {
			t.Errorf("expected %s to be managed", name)
		}
	}
	for _, name := range []string{"deleted_records", "transaction_logs", "account", "sqlite_master", ""} {
		if tables.Managed(name) {
			t.Errorf("expected %s to be refused", name)
		}
	}
}

// TestValidateRequired tests required-field presence checks.
func TestValidateRequired(t *testing.T) {
	valid := map[string]any{
		"booking_sacrament": "Confession",
		"booking_date":      "2025-06-01",
		"booking_time":      "09:00",
		"booking_pax":       2,
		"booking_status":    "pending",
		"user_id":           "u-1",
	}
	if err := tables.ValidateRequired("booking_tbl", valid); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	missing := map[string]any{
		"booking_sacrament": "Confession",
		"booking_date":      "2025-06-01",
	}
	if err := tables.ValidateRequired("booking_tbl", missing); err == nil {
		t.Error("expected error for missing required fields")
	}

	empty := map[string]any{}
	for k, v := range valid {
		empty[k] = v
	}
	empty["user_id"] = ""
	if err := tables.ValidateRequired("booking_tbl", empty); err == nil {
		t.Error("expected error for empty required field")
	}
}
