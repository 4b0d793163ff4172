package translog

import (
	"encoding/json"
	"errors"
	"time"

	"parish/internal/domain/actor"
)

// Action represents the kind of mutation a log entry records.
type Action string

const (
	ActionCreate  Action = "CREATE"
	ActionUpdate  Action = "UPDATE"
	ActionDelete  Action = "DELETE"
	ActionRestore Action = "RESTORE"
)

// ValidActions contains all valid action values.
var ValidActions = []Action{ActionCreate, ActionUpdate, ActionDelete, ActionRestore}

// Domain errors
var (
	ErrEmptyTableName = errors.New("table name cannot be empty")
	ErrEmptyRecordID  = errors.New("record ID cannot be empty")
	ErrInvalidAction  = errors.New("action must be one of: CREATE, UPDATE, DELETE, RESTORE")
)

// Entry is a single append-only transaction log row. Old and new
// payloads are serialized JSON; either may be empty depending on the
// action (CREATE has no old data, DELETE has no new data).
type Entry struct {
	ID               string
	TableName        string
	Action           Action
	RecordID         string
	OldData          string
	NewData          string
	PerformedBy      string
	PerformedByEmail string
	Timestamp        time.Time
}

// New builds a log entry from raw payload maps, serializing them.
// PRE: tableName and recordID are non-empty, action is valid, actor is valid
// POST: Returns an Entry with payloads marshalled, or an error
func New(id, tableName string, action Action, recordID string, oldData, newData map[string]any, by actor.Actor, now time.Time) (Entry, error) {
	if tableName == "" {
		return Entry{}, ErrEmptyTableName
	}
	if recordID == "" {
		return Entry{}, ErrEmptyRecordID
	}
	if !action.Valid() {
		return Entry{}, ErrInvalidAction
	}
	if err := by.Validate(); err != nil {
		return Entry{}, err
	}

	e := Entry{
		ID:               id,
		TableName:        tableName,
		Action:           action,
		RecordID:         recordID,
		PerformedBy:      by.Name,
		PerformedByEmail: by.Email,
		Timestamp:        now,
	}
	if oldData != nil {
		b, err := json.Marshal(oldData)
		if err != nil {
			return Entry{}, err
		}
		e.OldData = string(b)
	}
	if newData != nil {
		b, err := json.Marshal(newData)
		if err != nil {
			return Entry{}, err
		}
		e.NewData = string(b)
	}
	return e, nil
}

// Valid returns true if the action is one of the known values.
// INVARIANT: Action is not mutated
func (a Action) Valid() bool {
	for _, v := range ValidActions {
		if v == a {
			return true
		}
	}
	return false
}
