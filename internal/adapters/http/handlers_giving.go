package web

import (
	"net/http"

	"parish/internal/adapters/http/middleware"
	"parish/internal/application/orchestrators"
)

// handleDonations handles GET (list) and POST (submit) for
// /api/donations. Members see their own donations; admins see all.
func handleDonations(w http.ResponseWriter, r *http.Request) {
	handleUserScopedTable(w, r, "donation_tbl", func(sess middleware.Session, body map[string]any) map[string]any {
		record := map[string]any{
			"user_id":               sess.ProfileID,
			"donation_amount":       body["donation_amount"],
			"donation_intercession": body["donation_intercession"],
			"date_created":          timeNow().Format("2006-01-02"),
		}
		return record
	})
}

// handleCertificateRequests handles GET (list) and POST (submit) for
// /api/requests: baptismal and confirmation certificate requests.
func handleCertificateRequests(w http.ResponseWriter, r *http.Request) {
	handleUserScopedTable(w, r, "request_tbl", func(sess middleware.Session, body map[string]any) map[string]any {
		return map[string]any{
			"user_id":                  sess.ProfileID,
			"request_baptismcert":      body["request_baptismcert"],
			"request_confirmationcert": body["request_confirmationcert"],
			"document_id":              body["document_id"],
		}
	})
}

// handleUserScopedTable implements the shared list/submit flow for flat
// member-owned tables. build maps the request body onto the stored row.
func handleUserScopedTable(w http.ResponseWriter, r *http.Request, table string, build func(middleware.Session, map[string]any) map[string]any) {
	ctx := r.Context()
	sess, ok := middleware.GetSessionFromContext(ctx)
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	if r.Method == "GET" {
		records, err := stores.RecordStore.List(ctx, table)
		if err != nil {
			internalError(w, err)
			return
		}
		if !middleware.IsAdmin(ctx) {
			own := make([]map[string]any, 0)
			for _, rec := range records {
				if str(rec["user_id"]) == sess.ProfileID {
					own = append(own, rec)
				}
			}
			records = own
		}
		writeJSON(w, http.StatusOK, records)
		return
	}

	if r.Method == "POST" {
		var body map[string]any
		if err := strictDecode(r, &body); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		record := build(sess, body)
		for field, v := range record {
			if v == nil {
				delete(record, field)
			}
		}

		id, err := orchestrators.ExecuteCreateRecord(ctx, orchestrators.CreateRecordInput{
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
		writeJSON(w, http.StatusCreated, map[string]string{"id": id})
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}
