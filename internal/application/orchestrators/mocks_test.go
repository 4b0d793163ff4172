package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"time"

	"parish/internal/domain/translog"
	"parish/internal/domain/trash"
)

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return fixedTime }

// seqID returns a generator producing id-001, id-002, ...
func seqID() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%03d", n)
	}
}

// mockRecordStore implements the generic record interfaces for testing.
type mockRecordStore struct {
	records map[string]map[string]map[string]any // table -> id -> record
	failOn  string                               // operation name to fail: "get", "insert", "update", "delete"
}

func newMockRecordStore() *mockRecordStore {
	return &mockRecordStore{records: make(map[string]map[string]map[string]any)}
}

func (m *mockRecordStore) put(table, id string, rec map[string]any) {
	if m.records[table] == nil {
		m.records[table] = make(map[string]map[string]any)
	}
	m.records[table][id] = rec
}

func (m *mockRecordStore) Get(_ context.Context, table, id string) (map[string]any, error) {
	if m.failOn == "get" {
		return nil, errors.New("get failed")
	}
	rec, ok := m.records[table][id]
	if !ok {
		return nil, errors.New("record not found")
	}
	// Copy so callers cannot mutate stored state.
	out := make(map[string]any, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out, nil
}

func (m *mockRecordStore) List(_ context.Context, table string) ([]map[string]any, error) {
	if m.failOn == "list" {
		return nil, errors.New("list failed")
	}
	var out []map[string]any
	for _, rec := range m.records[table] {
		out = append(out, rec)
	}
	return out, nil
}

func (m *mockRecordStore) Insert(_ context.Context, table string, rec map[string]any) (string, error) {
	if m.failOn == "insert" {
		return "", errors.New("insert failed")
	}
	id, _ := rec["id"].(string)
	if id == "" {
		return "", errors.New("missing id")
	}
	m.put(table, id, rec)
	return id, nil
}

func (m *mockRecordStore) Update(_ context.Context, table, id string, fields map[string]any) error {
	if m.failOn == "update" {
		return errors.New("update failed")
	}
	rec, ok := m.records[table][id]
	if !ok {
		return errors.New("record not found")
	}
	for k, v := range fields {
		rec[k] = v
	}
	return nil
}

func (m *mockRecordStore) Delete(_ context.Context, table, id string) error {
	if m.failOn == "delete" {
		return errors.New("delete failed")
	}
	if _, ok := m.records[table][id]; !ok {
		return errors.New("record not found")
	}
	delete(m.records[table], id)
	return nil
}

// mockTrashStore implements TrashStoreForArchive for testing.
type mockTrashStore struct {
	entries map[string]trash.Entry
	failOn  string // "save", "get", "find", "delete"
}

func newMockTrashStore() *mockTrashStore {
	return &mockTrashStore{entries: make(map[string]trash.Entry)}
}

func (m *mockTrashStore) Save(_ context.Context, e trash.Entry) error {
	if m.failOn == "save" {
		return errors.New("trash save failed")
	}
	m.entries[e.ID] = e
	return nil
}

func (m *mockTrashStore) GetByID(_ context.Context, id string) (trash.Entry, error) {
	if m.failOn == "get" {
		return trash.Entry{}, errors.New("trash get failed")
	}
	e, ok := m.entries[id]
	if !ok {
		return trash.Entry{}, errors.New("trash entry not found")
	}
	return e, nil
}

func (m *mockTrashStore) FindByRecord(_ context.Context, table, recordID string) (trash.Entry, error) {
	if m.failOn == "find" {
		return trash.Entry{}, errors.New("trash find failed")
	}
	for _, e := range m.entries {
		if e.OriginalTable == table && e.RecordID == recordID {
			return e, nil
		}
	}
	return trash.Entry{}, errors.New("trash entry not found")
}

func (m *mockTrashStore) Delete(_ context.Context, id string) error {
	if m.failOn == "delete" {
		return errors.New("trash delete failed")
	}
	delete(m.entries, id)
	return nil
}

// mockLogStore implements LogStoreForArchive for testing.
type mockLogStore struct {
	entries []translog.Entry
	fail    bool
}

func (m *mockLogStore) Append(_ context.Context, e translog.Entry) error {
	if m.fail {
		return errors.New("log append failed")
	}
	m.entries = append(m.entries, e)
	return nil
}

func (m *mockLogStore) lastAction() translog.Action {
	if len(m.entries) == 0 {
		return ""
	}
	return m.entries[len(m.entries)-1].Action
}
