package orchestrators

import (
	"context"
	"log/slog"

	"parish/internal/domain/actor"
)

// PurgeRecordInput carries input for the purge orchestrator.
type PurgeRecordInput struct {
	TrashEntryID string
	Actor        actor.Actor
}

// PurgeRecordDeps holds dependencies for PurgeRecord.
type PurgeRecordDeps struct {
	TrashStore TrashStoreForArchive
}

// ExecutePurgeRecord permanently deletes a trash entry. Booking entries
// also consume the archived sacrament sub-document, so nothing orphaned
// stays behind. Purged records cannot be restored.
// PRE: TrashEntryID must be non-empty; entry must exist
// POST: Trash entry (and any archived sub-document entry) is removed
func ExecutePurgeRecord(ctx context.Context, input PurgeRecordInput, deps PurgeRecordDeps) error {
	if input.TrashEntryID == "" {
		return ErrMissingTrashEntryID
	}
	if err := input.Actor.Validate(); err != nil {
		return err
	}

	entry, err := deps.TrashStore.GetByID(ctx, input.TrashEntryID)
	if err != nil {
		return err
	}

	// A corrupt snapshot still purges; only the child lookup is skipped.
	if snapshot, err := entry.Snapshot(); err == nil {
		childTable, _, childID := childDocRef(entry.OriginalTable, snapshot)
		if childTable != "" && childID != "" {
			if child, err := deps.TrashStore.FindByRecord(ctx, childTable, childID); err == nil {
				if err := deps.TrashStore.Delete(ctx, child.ID); err != nil {
					return err
				}
			}
		}
	}

	if err := deps.TrashStore.Delete(ctx, input.TrashEntryID); err != nil {
		return err
	}

	slog.Info("record_event", "event", "record_purged", "table", entry.OriginalTable,
		"record_id", entry.RecordID, "purged_by", input.Actor.Name)
	return nil
}
