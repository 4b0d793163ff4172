package web

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"parish/internal/adapters/http/middleware"
	bookingStore "parish/internal/adapters/storage/booking"
	recordStore "parish/internal/adapters/storage/record"
	"parish/internal/application/listutil"
	"parish/internal/application/orchestrators"
	"parish/internal/application/projections"
	bookingDomain "parish/internal/domain/booking"
	"parish/internal/domain/export"
	"parish/internal/domain/tables"
	translogDomain "parish/internal/domain/translog"
	trashDomain "parish/internal/domain/trash"
)

// logViewLimit caps the admin transaction-log view.
const logViewLimit = 100

// logExportLimit bounds the CSV export of the transaction log.
const logExportLimit = 10000

// requireAdmin enforces an authenticated admin session for API handlers.
// Returns the session and false when the response has already been written.
func requireAdmin(w http.ResponseWriter, r *http.Request) (middleware.Session, bool) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return middleware.Session{}, false
	}
	if !middleware.IsAdmin(r.Context()) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return middleware.Session{}, false
	}
	return sess, true
}

// dashboardBookings adapts the booking store to the projection's filter type.
type dashboardBookings struct {
	store bookingStore.Store
}

func (d dashboardBookings) List(ctx context.Context, filter projections.BookingFilter) ([]bookingDomain.Booking, error) {
	return d.store.List(ctx, bookingStore.ListFilter{
		UserID:    filter.UserID,
		Status:    filter.Status,
		Sacrament: filter.Sacrament,
		Date:      filter.Date,
		Limit:     filter.Limit,
	})
}

// handleAdminDashboard handles GET /api/admin/dashboard.
func handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	result, err := projections.ExecuteGetDashboard(r.Context(), projections.GetDashboardDeps{
		BookingStore: dashboardBookings{store: stores.BookingStore},
		RecordStore:  stores.RecordStore,
		TrashStore:   stores.TrashStore,
		LogStore:     stores.LogStore,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleAdminRecords handles /api/admin/records/{table} and
// /api/admin/records/{table}/{id}: the generic table management surface.
// Every mutation flows through the orchestrators so required-field
// validation, the trash, and the transaction log all apply.
func handleAdminRecords(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireAdmin(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	rest := strings.TrimPrefix(r.URL.Path, "/api/admin/records/")
	parts := strings.SplitN(strings.Trim(rest, "/"), "/", 2)
	table := parts[0]
	id := ""
	if len(parts) == 2 {
		id = parts[1]
	}
	if table == "" {
		http.Error(w, "table name is required", http.StatusBadRequest)
		return
	}
	tbl, err := tables.Get(table)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	switch {
	case r.Method == "GET" && id == "":
		records, err := stores.RecordStore.List(ctx, table)
		if err != nil {
			internalError(w, err)
			return
		}
		params := listutil.ParseListParams(r.URL.Query(), tbl.Fields)
		records = listutil.Filter(records, params.Filters)
		info := listutil.NewPageInfo(params.Page, params.PerPage, len(records))
		writeJSON(w, http.StatusOK, map[string]any{
			"records":     listutil.Page(records, info),
			"page":        info.Page,
			"per_page":    info.PerPage,
			"total":       info.Total,
			"total_pages": info.TotalPages,
		})

	case r.Method == "GET":
		rec, err := stores.RecordStore.Get(ctx, table, id)
		if err != nil {
			if errors.Is(err, recordStore.ErrNotFound) || errors.Is(err, sql.ErrNoRows) {
				http.Error(w, "record not found", http.StatusNotFound)
				return
			}
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)

	case r.Method == "POST" && id == "":
		var record map[string]any
		if err := strictDecode(r, &record); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
		newID, err := orchestrators.ExecuteCreateRecord(ctx, orchestrators.CreateRecordInput{
			Table:  table,
			Record: record,
			Actor:  sessionActor(sess),
		}, orchestrators.CreateRecordDeps{
			RecordStore: stores.RecordStore,
			LogStore:    stores.LogStore,
			GenerateID:  generateID,
			Now:         timeNow,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"id": newID})

	case r.Method == "PUT" && id != "":
		var fields map[string]any
		if err := strictDecode(r, &fields); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
		err := orchestrators.ExecuteUpdateRecord(ctx, orchestrators.UpdateRecordInput{
			Table:    table,
			RecordID: id,
			Fields:   fields,
			Actor:    sessionActor(sess),
		}, orchestrators.UpdateRecordDeps{
			RecordStore:  stores.RecordStore,
			BookingStore: stores.BookingStore,
			Policy:       conflictPolicy,
			LogStore:     stores.LogStore,
			GenerateID:   generateID,
			Now:          timeNow,
		})
		if err != nil {
			if errors.Is(err, recordStore.ErrNotFound) || errors.Is(err, sql.ErrNoRows) {
				http.Error(w, "record not found", http.StatusNotFound)
				return
			}
			if errors.Is(err, orchestrators.ErrBookingConflict) {
				http.Error(w, err.Error(), http.StatusConflict)
				return
			}
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	case r.Method == "DELETE" && id != "":
		err := orchestrators.ExecuteArchiveRecord(ctx, orchestrators.ArchiveRecordInput{
			Table:    table,
			RecordID: id,
			Actor:    sessionActor(sess),
		}, orchestrators.ArchiveRecordDeps{
			RecordStore: stores.RecordStore,
			TrashStore:  stores.TrashStore,
			LogStore:    stores.LogStore,
			GenerateID:  generateID,
			Now:         timeNow,
		})
		if err != nil {
			if errors.Is(err, recordStore.ErrNotFound) || errors.Is(err, sql.ErrNoRows) {
				http.Error(w, "record not found", http.StatusNotFound)
				return
			}
			internalError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// trashView is the JSON shape of a trash entry.
type trashView struct {
	ID             string `json:"id"`
	OriginalTable  string `json:"original_table"`
	RecordID       string `json:"record_id"`
	RecordData     string `json:"record_data"`
	DeletedBy      string `json:"deleted_by"`
	DeletedByEmail string `json:"deleted_by_email"`
	DeletedAt      string `json:"deleted_at"`
}

func toTrashView(e trashDomain.Entry) trashView {
	return trashView{
		ID:             e.ID,
		OriginalTable:  e.OriginalTable,
		RecordID:       e.RecordID,
		RecordData:     e.RecordData,
		DeletedBy:      e.DeletedBy,
		DeletedByEmail: e.DeletedByEmail,
		DeletedAt:      e.DeletedAt.Format("2006-01-02 15:04"),
	}
}

// handleAdminTrash handles GET /api/admin/trash.
func handleAdminTrash(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	entries, err := stores.TrashStore.List(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	views := make([]trashView, 0, len(entries))
	for _, e := range entries {
		views = append(views, toTrashView(e))
	}
	writeJSON(w, http.StatusOK, views)
}

// handleAdminTrashRestore handles POST /api/admin/trash/restore.
func handleAdminTrashRestore(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireAdmin(w, r)
	if !ok {
		return
	}

	var body struct {
		TrashID string `json:"trash_id"`
	}
	if err := strictDecode(r, &body); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	newID, err := orchestrators.ExecuteRestoreRecord(r.Context(), orchestrators.RestoreRecordInput{
		TrashEntryID: body.TrashID,
		Actor:        sessionActor(sess),
	}, orchestrators.RestoreRecordDeps{
		RecordStore:   stores.RecordStore,
		TrashStore:    stores.TrashStore,
		LogStore:      stores.LogStore,
		GenerateID:    generateID,
		Now:           timeNow,
		StrictLogging: strictAuditLogging,
	})
	if err != nil {
		switch {
		case errors.Is(err, orchestrators.ErrMissingTrashEntryID):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, sql.ErrNoRows):
			http.Error(w, "trash entry not found", http.StatusNotFound)
		case errors.Is(err, orchestrators.ErrChildEntryMissing):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			internalError(w, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": newID})
}

// handleAdminTrashPurge handles POST /api/admin/trash/purge. Purged
// records are gone for good.
func handleAdminTrashPurge(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireAdmin(w, r)
	if !ok {
		return
	}

	var body struct {
		TrashID string `json:"trash_id"`
	}
	if err := strictDecode(r, &body); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	err := orchestrators.ExecutePurgeRecord(r.Context(), orchestrators.PurgeRecordInput{
		TrashEntryID: body.TrashID,
		Actor:        sessionActor(sess),
	}, orchestrators.PurgeRecordDeps{
		TrashStore: stores.TrashStore,
	})
	if err != nil {
		switch {
		case errors.Is(err, orchestrators.ErrMissingTrashEntryID):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, sql.ErrNoRows):
			http.Error(w, "trash entry not found", http.StatusNotFound)
		default:
			internalError(w, err)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// logView is the JSON shape of a transaction log entry.
type logView struct {
	ID               string `json:"id"`
	TableName        string `json:"table_name"`
	Action           string `json:"action"`
	RecordID         string `json:"record_id"`
	OldData          string `json:"old_data,omitempty"`
	NewData          string `json:"new_data,omitempty"`
	PerformedBy      string `json:"performed_by"`
	PerformedByEmail string `json:"performed_by_email"`
	Timestamp        string `json:"timestamp"`
}

func toLogView(e translogDomain.Entry) logView {
	return logView{
		ID:               e.ID,
		TableName:        e.TableName,
		Action:           string(e.Action),
		RecordID:         e.RecordID,
		OldData:          e.OldData,
		NewData:          e.NewData,
		PerformedBy:      e.PerformedBy,
		PerformedByEmail: e.PerformedByEmail,
		Timestamp:        e.Timestamp.Format("2006-01-02 15:04:05"),
	}
}

// handleAdminLogs handles GET /api/admin/logs: the most recent
// transaction log entries, newest first. Optional record filtering via
// ?table=X&record_id=Y.
func handleAdminLogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	ctx := r.Context()

	var entries []translogDomain.Entry
	var err error
	if table, recordID := r.URL.Query().Get("table"), r.URL.Query().Get("record_id"); table != "" && recordID != "" {
		entries, err = stores.LogStore.ListByRecord(ctx, table, recordID)
	} else {
		limit := logViewLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, convErr := strconv.Atoi(v); convErr == nil && n > 0 && n <= logViewLimit {
				limit = n
			}
		}
		entries, err = stores.LogStore.ListRecent(ctx, limit)
	}
	if err != nil {
		internalError(w, err)
		return
	}

	views := make([]logView, 0, len(entries))
	for _, e := range entries {
		views = append(views, toLogView(e))
	}
	writeJSON(w, http.StatusOK, views)
}

// handleAdminExport handles GET /api/admin/export/{table}. "logs"
// exports the transaction log; any registry table exports its records.
func handleAdminExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	ctx := r.Context()

	name := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/admin/export/"), "/")
	name = strings.TrimSuffix(name, ".csv")

	var data []byte
	var err error
	if name == "logs" {
		var entries []translogDomain.Entry
		entries, err = stores.LogStore.ListRecent(ctx, logExportLimit)
		if err == nil {
			data, err = export.LogsCSV(entries)
		}
	} else {
		var tbl tables.Table
		tbl, err = tables.Get(name)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		var records []map[string]any
		records, err = stores.RecordStore.List(ctx, name)
		if err == nil {
			data, err = export.CSV(tbl, records)
		}
	}
	if err != nil {
		internalError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`.csv"`)
	w.Write(data)
}
