package tables

import (
	"errors"
	"fmt"

	"parish/internal/domain/sacrament"
)

// Domain errors
var (
	ErrUnknownTable = errors.New("unknown table")
)

// Table describes one managed store: its column set for display/export
// and the columns that must be present before any write.
type Table struct {
	Name           string
	DisplayName    string
	Fields         []string
	RequiredFields []string
}

// bookingFields is shared by the bookings table and the per-sacrament views.
var bookingFields = []string{
	"user_firstname", "user_lastname", "booking_status", "booking_sacrament",
	"booking_date", "booking_time", "booking_pax", "booking_transaction",
	"price", "paid",
}

// registry holds every admin-manageable table.
var registry = map[string]Table{
	"booking_tbl": {
		Name:           "booking_tbl",
		DisplayName:    "All Sacrament Bookings",
		Fields:         bookingFields,
		RequiredFields: []string{"booking_sacrament", "booking_date", "booking_time", "booking_pax", "booking_status", "user_id"},
	},
	"document_tbl": {
		Name:        "document_tbl",
		DisplayName: "Documents",
		Fields: []string{
			"document_firstname", "document_middle", "document_lastname",
			"document_gender", "document_mobile", "document_bday", "document_status",
			"document_baptismal", "document_confirmation", "document_wedding",
		},
		RequiredFields: []string{"document_firstname", "document_lastname"},
	},
	"donation_tbl": {
		Name:           "donation_tbl",
		DisplayName:    "Donations",
		Fields:         []string{"user_firstname", "user_lastname", "donation_amount", "donation_intercession", "date_created"},
		RequiredFields: []string{"donation_amount"},
	},
	"request_tbl": {
		Name:           "request_tbl",
		DisplayName:    "Requests",
		Fields:         []string{"user_firstname", "user_lastname", "request_baptismcert", "request_confirmationcert", "document_id"},
		RequiredFields: []string{"user_id"},
	},
	"admin_tbl": {
		Name:           "admin_tbl",
		DisplayName:    "Admins",
		Fields:         []string{"admin_firstname", "admin_lastname", "admin_email", "admin_mobile", "admin_bday"},
		RequiredFields: []string{"admin_email", "admin_firstname", "admin_lastname"},
	},
	"priest_tbl": {
		Name:           "priest_tbl",
		DisplayName:    "Priests",
		Fields:         []string{"priest_name", "priest_diocese", "priest_parish", "priest_availability"},
		RequiredFields: []string{"priest_name"},
	},
	"user_tbl": {
		Name:           "user_tbl",
		DisplayName:    "Users",
		Fields:         []string{"user_firstname", "user_middle", "user_lastname", "user_gender", "user_email", "user_mobile", "user_bday"},
		RequiredFields: []string{"user_email", "user_firstname", "user_lastname"},
	},
}

// Get returns the table descriptor by name.
// PRE: name is non-empty
// POST: Returns the Table or ErrUnknownTable
func Get(name string) (Table, error) {
	t, ok := registry[name]
	if !ok {
		return Table{}, fmt.Errorf("%w: %s", ErrUnknownTable, name)
	}
	return t, nil
}

// Names returns every admin-manageable table name.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}

// Managed returns true if the generic record store may touch the table.
// The allowlist covers the admin-managed tables plus the sacrament
// sub-document tables; anything else is refused.
func Managed(name string) bool {
	if _, ok := registry[name]; ok {
		return true
	}
	for _, tbl := range sacrament.ChildDocTables() {
		if tbl == name {
			return true
		}
	}
	return false
}

// ValidateRequired checks that every required field of the table is
// present and non-empty in the record.
// PRE: record is a candidate row for the named table
// POST: Returns nil if all required fields are populated
func ValidateRequired(name string, record map[string]any) error {
	t, err := Get(name)
	if err != nil {
		return err
	}
	for _, field := range t.RequiredFields {
		v, ok := record[field]
		if !ok || v == nil || v == "" {
			return fmt.Errorf("missing required field %q for %s", field, t.DisplayName)
		}
	}
	return nil
}
