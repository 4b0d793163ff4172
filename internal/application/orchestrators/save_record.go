package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"parish/internal/domain/actor"
	"parish/internal/domain/booking"
	"parish/internal/domain/sacrament"
	"parish/internal/domain/tables"
	"parish/internal/domain/translog"
)

// RecordStoreForSave defines the generic record access needed by
// create and update.
type RecordStoreForSave interface {
	Get(ctx context.Context, table, id string) (map[string]any, error)
	Insert(ctx context.Context, table string, rec map[string]any) (string, error)
	Update(ctx context.Context, table, id string, fields map[string]any) error
}

// CreateRecordInput carries input for the create orchestrator.
type CreateRecordInput struct {
	Table  string
	Record map[string]any
	Actor  actor.Actor
}

// CreateRecordDeps holds dependencies for CreateRecord.
type CreateRecordDeps struct {
	RecordStore RecordStoreForSave
	LogStore    LogStoreForArchive
	GenerateID  func() string
	Now         func() time.Time
}

var ErrEmptyRecord = errors.New("record cannot be empty")

// ExecuteCreateRecord inserts a record into a managed table and appends
// a CREATE log entry.
// PRE: Table must name a registered table; required fields must be set
// POST: Record is persisted with a generated id; CREATE log appended
func ExecuteCreateRecord(ctx context.Context, input CreateRecordInput, deps CreateRecordDeps) (string, error) {
	if input.Table == "" {
		return "", ErrMissingTable
	}
	if len(input.Record) == 0 {
		return "", ErrEmptyRecord
	}
	if err := input.Actor.Validate(); err != nil {
		return "", err
	}
	if err := tables.ValidateRequired(input.Table, input.Record); err != nil {
		return "", err
	}

	id := deps.GenerateID()
	input.Record["id"] = id
	if _, err := deps.RecordStore.Insert(ctx, input.Table, input.Record); err != nil {
		return "", err
	}

	logEntry, err := translog.New(deps.GenerateID(), input.Table, translog.ActionCreate,
		id, nil, input.Record, input.Actor, deps.Now())
	if err != nil {
		return "", err
	}
	if err := deps.LogStore.Append(ctx, logEntry); err != nil {
		return "", err
	}

	slog.Info("record_event", "event", "record_created", "table", input.Table,
		"record_id", id, "created_by", input.Actor.Name)
	return id, nil
}

// UpdateRecordInput carries input for the update orchestrator.
type UpdateRecordInput struct {
	Table    string
	RecordID string
	Fields   map[string]any
	Actor    actor.Actor
}

// UpdateRecordDeps holds dependencies for UpdateRecord. BookingStore
// and Policy back the conflict check on booking rows.
type UpdateRecordDeps struct {
	RecordStore  RecordStoreForSave
	BookingStore BookingStoreForConflict
	Policy       booking.ConflictPolicy
	LogStore     LogStoreForArchive
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteUpdateRecord applies a partial update to a managed record and
// appends an UPDATE log entry holding the before and after payloads.
// Updates to booking rows re-validate the merged row and, when the
// resulting status is approved, run the conflict check excluding the
// booking itself; a conflicting edit is refused before anything is
// persisted.
// PRE: Table and RecordID must be non-empty; record must exist
// POST: Fields are persisted; UPDATE log appended
func ExecuteUpdateRecord(ctx context.Context, input UpdateRecordInput, deps UpdateRecordDeps) error {
	if input.Table == "" {
		return ErrMissingTable
	}
	if input.RecordID == "" {
		return ErrMissingRecordID
	}
	if len(input.Fields) == 0 {
		return ErrEmptyRecord
	}
	if err := input.Actor.Validate(); err != nil {
		return err
	}

	before, err := deps.RecordStore.Get(ctx, input.Table, input.RecordID)
	if err != nil {
		return err
	}

	delete(input.Fields, "id")
	after := make(map[string]any, len(before))
	for k, v := range before {
		after[k] = v
	}
	for k, v := range input.Fields {
		after[k] = v
	}

	if input.Table == "booking_tbl" {
		if err := checkBookingUpdate(ctx, input.RecordID, after, deps); err != nil {
			return err
		}
	}

	if err := deps.RecordStore.Update(ctx, input.Table, input.RecordID, input.Fields); err != nil {
		return err
	}

	logEntry, err := translog.New(deps.GenerateID(), input.Table, translog.ActionUpdate,
		input.RecordID, before, after, input.Actor, deps.Now())
	if err != nil {
		return err
	}
	if err := deps.LogStore.Append(ctx, logEntry); err != nil {
		return err
	}

	slog.Info("record_event", "event", "record_updated", "table", input.Table,
		"record_id", input.RecordID, "updated_by", input.Actor.Name)
	return nil
}

// checkBookingUpdate validates the merged booking row and runs the
// conflict check when the row would end up approved. The booking under
// edit is excluded so moving it within its own window is allowed.
func checkBookingUpdate(ctx context.Context, recordID string, merged map[string]any, deps UpdateRecordDeps) error {
	b := bookingFromRecord(recordID, merged)
	if err := b.Validate(); err != nil {
		return err
	}
	if b.Status != booking.StatusApproved {
		return nil
	}

	result, err := ExecuteCheckConflict(ctx, CheckConflictInput{
		Date:      b.Date,
		Time:      b.Time,
		ExcludeID: recordID,
	}, CheckConflictDeps{
		BookingStore: deps.BookingStore,
		Policy:       deps.Policy,
	})
	if err != nil {
		return err
	}
	if result.Conflict {
		return fmt.Errorf("%w: %s", ErrBookingConflict, result.Reason)
	}
	return nil
}

// bookingFromRecord maps a booking_tbl column map onto the domain type.
// Numeric columns arrive as int64 from SQLite and float64 from JSON.
func bookingFromRecord(id string, rec map[string]any) booking.Booking {
	return booking.Booking{
		ID:          id,
		UserID:      recString(rec["user_id"]),
		Sacrament:   sacrament.Kind(recString(rec["booking_sacrament"])),
		Date:        recString(rec["booking_date"]),
		Time:        recString(rec["booking_time"]),
		Pax:         recInt(rec["booking_pax"]),
		Status:      recString(rec["booking_status"]),
		Transaction: recString(rec["booking_transaction"]),
		Price:       recInt(rec["price"]),
	}
}

func recString(v any) string {
	s, _ := v.(string)
	return s
}

func recInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}
