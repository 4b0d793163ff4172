package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"parish/internal/domain/actor"
	"parish/internal/domain/sacrament"
	"parish/internal/domain/translog"
	"parish/internal/domain/trash"
)

// RecordStoreForArchive defines the generic record access needed by
// archive and restore.
type RecordStoreForArchive interface {
	Get(ctx context.Context, table, id string) (map[string]any, error)
	Insert(ctx context.Context, table string, rec map[string]any) (string, error)
	Delete(ctx context.Context, table, id string) error
}

// TrashStoreForArchive defines the trash access needed by archive,
// restore and purge.
type TrashStoreForArchive interface {
	Save(ctx context.Context, e trash.Entry) error
	GetByID(ctx context.Context, id string) (trash.Entry, error)
	FindByRecord(ctx context.Context, table, recordID string) (trash.Entry, error)
	Delete(ctx context.Context, id string) error
}

// LogStoreForArchive defines the transaction log access needed by
// archive and restore.
type LogStoreForArchive interface {
	Append(ctx context.Context, e translog.Entry) error
}

// ArchiveRecordInput carries input for the archive orchestrator.
type ArchiveRecordInput struct {
	Table    string
	RecordID string
	Actor    actor.Actor
}

// ArchiveRecordDeps holds dependencies for ArchiveRecord.
type ArchiveRecordDeps struct {
	RecordStore RecordStoreForArchive
	TrashStore  TrashStoreForArchive
	LogStore    LogStoreForArchive
	GenerateID  func() string
	Now         func() time.Time
}

var (
	ErrMissingTable    = errors.New("table name is required")
	ErrMissingRecordID = errors.New("record ID is required")
)

// ExecuteArchiveRecord moves a live record into the trash. The snapshot
// and the DELETE log entry are written before the live row is removed,
// so a failure partway through never loses the record without a trace.
// Sacrament bookings cascade: the referenced sub-document is archived
// and deleted alongside its parent.
// PRE: Table and RecordID must be non-empty; record must exist
// POST: Trash entry and DELETE log exist; live record (and any child
// sub-document) is removed
func ExecuteArchiveRecord(ctx context.Context, input ArchiveRecordInput, deps ArchiveRecordDeps) error {
	if input.Table == "" {
		return ErrMissingTable
	}
	if input.RecordID == "" {
		return ErrMissingRecordID
	}
	if err := input.Actor.Validate(); err != nil {
		return err
	}

	snapshot, err := deps.RecordStore.Get(ctx, input.Table, input.RecordID)
	if err != nil {
		return err
	}

	childTable, _, childID := childDocRef(input.Table, snapshot)

	entry, err := trash.New(deps.GenerateID(), input.Table, input.RecordID, snapshot, input.Actor, deps.Now())
	if err != nil {
		return err
	}
	if err := deps.TrashStore.Save(ctx, entry); err != nil {
		return err
	}

	if childTable != "" && childID != "" {
		if err := archiveChild(ctx, childTable, childID, input.Actor, deps); err != nil {
			return err
		}
	}

	logEntry, err := translog.New(deps.GenerateID(), input.Table, translog.ActionDelete,
		input.RecordID, snapshot, nil, input.Actor, deps.Now())
	if err != nil {
		return err
	}
	if err := deps.LogStore.Append(ctx, logEntry); err != nil {
		return err
	}

	if err := deps.RecordStore.Delete(ctx, input.Table, input.RecordID); err != nil {
		return err
	}

	slog.Info("record_event", "event", "record_archived", "table", input.Table,
		"record_id", input.RecordID, "deleted_by", input.Actor.Name)
	return nil
}

// archiveChild snapshots a sacrament sub-document into the trash and
// deletes the live row. No further cascading occurs.
func archiveChild(ctx context.Context, table, id string, by actor.Actor, deps ArchiveRecordDeps) error {
	snapshot, err := deps.RecordStore.Get(ctx, table, id)
	if err != nil {
		return err
	}
	entry, err := trash.New(deps.GenerateID(), table, id, snapshot, by, deps.Now())
	if err != nil {
		return err
	}
	if err := deps.TrashStore.Save(ctx, entry); err != nil {
		return err
	}
	return deps.RecordStore.Delete(ctx, table, id)
}

// childDocRef inspects a booking snapshot and returns the sub-document
// table, foreign-key field and id it references, if any. Non-booking
// tables and sacraments without sub-documents return empty strings.
func childDocRef(table string, snapshot map[string]any) (childTable, fkField, childID string) {
	if table != "booking_tbl" {
		return "", "", ""
	}
	kindRaw, _ := snapshot["booking_sacrament"].(string)
	kind, err := sacrament.Parse(kindRaw)
	if err != nil {
		return "", "", ""
	}
	cd, ok := kind.ChildDoc()
	if !ok {
		return "", "", ""
	}
	id, _ := snapshot[cd.FKField].(string)
	return cd.Table, cd.FKField, id
}
