package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"parish/internal/domain/actor"
	"parish/internal/domain/translog"
)

// RestoreRecordInput carries input for the restore orchestrator.
type RestoreRecordInput struct {
	TrashEntryID string
	Actor        actor.Actor
}

// RestoreRecordDeps holds dependencies for RestoreRecord.
type RestoreRecordDeps struct {
	RecordStore RecordStoreForArchive
	TrashStore  TrashStoreForArchive
	LogStore    LogStoreForArchive
	GenerateID  func() string
	Now         func() time.Time
	// StrictLogging propagates a failed RESTORE log append as an error.
	// When false the failure is logged and the restore still succeeds.
	StrictLogging bool
}

var (
	ErrMissingTrashEntryID = errors.New("trash entry ID is required")
	ErrChildEntryMissing   = errors.New("archived sub-document not found for booking restore")
)

// ExecuteRestoreRecord reinserts an archived record into its origin
// table under a new identity and consumes the trash entry. Booking
// snapshots that reference a sacrament sub-document restore the child
// first, so the parent's foreign key points at a live row.
// PRE: TrashEntryID must be non-empty; snapshot must deserialize
// POST: Record is live under a new id, trash entry removed, RESTORE
// log appended; on any failure before the insert the trash entry is
// left intact
func ExecuteRestoreRecord(ctx context.Context, input RestoreRecordInput, deps RestoreRecordDeps) (string, error) {
	if input.TrashEntryID == "" {
		return "", ErrMissingTrashEntryID
	}
	if err := input.Actor.Validate(); err != nil {
		return "", err
	}

	entry, err := deps.TrashStore.GetByID(ctx, input.TrashEntryID)
	if err != nil {
		return "", err
	}

	snapshot, err := entry.Snapshot()
	if err != nil {
		return "", err
	}
	stripSnapshot(snapshot, entry.OriginalTable)

	childTable, fkField, childID := childDocRef(entry.OriginalTable, snapshot)
	if childTable != "" && childID != "" {
		newChildID, err := restoreChild(ctx, childTable, childID, deps)
		if err != nil {
			return "", err
		}
		snapshot[fkField] = newChildID
	}

	newID := deps.GenerateID()
	snapshot["id"] = newID
	if _, err := deps.RecordStore.Insert(ctx, entry.OriginalTable, snapshot); err != nil {
		return "", fmt.Errorf("restore %s/%s: %w", entry.OriginalTable, entry.RecordID, err)
	}

	if err := deps.TrashStore.Delete(ctx, input.TrashEntryID); err != nil {
		return "", err
	}

	logEntry, err := translog.New(deps.GenerateID(), entry.OriginalTable, translog.ActionRestore,
		newID, nil, snapshot, input.Actor, deps.Now())
	if err == nil {
		err = deps.LogStore.Append(ctx, logEntry)
	}
	if err != nil {
		if deps.StrictLogging {
			return "", err
		}
		slog.Warn("record_event", "event", "restore_log_failed", "table", entry.OriginalTable,
			"record_id", newID, "error", err)
	}

	slog.Info("record_event", "event", "record_restored", "table", entry.OriginalTable,
		"old_record_id", entry.RecordID, "new_record_id", newID, "restored_by", input.Actor.Name)
	return newID, nil
}

// restoreChild reinserts an archived sacrament sub-document under a new
// id and consumes its trash entry. No further cascading occurs.
func restoreChild(ctx context.Context, table, recordID string, deps RestoreRecordDeps) (string, error) {
	entry, err := deps.TrashStore.FindByRecord(ctx, table, recordID)
	if err != nil {
		return "", fmt.Errorf("%w: %s/%s", ErrChildEntryMissing, table, recordID)
	}
	snapshot, err := entry.Snapshot()
	if err != nil {
		return "", err
	}
	stripSnapshot(snapshot, table)

	newID := deps.GenerateID()
	snapshot["id"] = newID
	if _, err := deps.RecordStore.Insert(ctx, table, snapshot); err != nil {
		return "", err
	}
	if err := deps.TrashStore.Delete(ctx, entry.ID); err != nil {
		return "", err
	}
	return newID, nil
}

// stripSnapshot removes the original identity and the denormalized
// display fields that do not belong to the origin schema. User names
// stay when the origin is the user table itself.
func stripSnapshot(snapshot map[string]any, table string) {
	delete(snapshot, "id")
	if table != "user_tbl" {
		delete(snapshot, "user_firstname")
		delete(snapshot, "user_lastname")
	}
}
