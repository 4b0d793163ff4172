package trash

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"parish/internal/domain/actor"
)

// Domain errors
var (
	ErrEmptyOriginalTable = errors.New("original table cannot be empty")
	ErrEmptyRecordID      = errors.New("record ID cannot be empty")
	ErrEmptySnapshot      = errors.New("record snapshot cannot be empty")
)

// Entry is an archived snapshot of a deleted record, held pending
// restore or permanent deletion.
type Entry struct {
	ID             string
	OriginalTable  string
	RecordID       string
	RecordData     string // full JSON snapshot of the deleted row
	DeletedBy      string
	DeletedByEmail string
	DeletedAt      time.Time
}

// New builds a trash entry by snapshotting the record.
// PRE: originalTable and recordID are non-empty, record is non-empty, by is valid
// POST: Returns an Entry with RecordData set to the serialized record
func New(id, originalTable, recordID string, record map[string]any, by actor.Actor, now time.Time) (Entry, error) {
	if originalTable == "" {
		return Entry{}, ErrEmptyOriginalTable
	}
	if recordID == "" {
		return Entry{}, ErrEmptyRecordID
	}
	if len(record) == 0 {
		return Entry{}, ErrEmptySnapshot
	}
	if err := by.Validate(); err != nil {
		return Entry{}, err
	}
	data, err := json.Marshal(record)
	if err != nil {
		return Entry{}, fmt.Errorf("snapshot record %s/%s: %w", originalTable, recordID, err)
	}
	return Entry{
		ID:             id,
		OriginalTable:  originalTable,
		RecordID:       recordID,
		RecordData:     string(data),
		DeletedBy:      by.Name,
		DeletedByEmail: by.Email,
		DeletedAt:      now,
	}, nil
}

// Snapshot deserializes the archived record. A corrupt snapshot is
// surfaced as an error and must leave the entry untouched in the store.
// INVARIANT: Entry fields are not mutated
func (e *Entry) Snapshot() (map[string]any, error) {
	var record map[string]any
	if err := json.Unmarshal([]byte(e.RecordData), &record); err != nil {
		return nil, fmt.Errorf("invalid record data format: %w", err)
	}
	if len(record) == 0 {
		return nil, ErrEmptySnapshot
	}
	return record, nil
}
