package web

import (
	"database/sql"
	"errors"
	"net/http"

	"parish/internal/adapters/http/middleware"
	bookingStore "parish/internal/adapters/storage/booking"
	"parish/internal/application/orchestrators"
	bookingDomain "parish/internal/domain/booking"
)

// bookingView is the JSON shape of a booking.
type bookingView struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Sacrament   string `json:"booking_sacrament"`
	Date        string `json:"booking_date"`
	Time        string `json:"booking_time"`
	Pax         int    `json:"booking_pax"`
	Status      string `json:"booking_status"`
	Transaction string `json:"booking_transaction,omitempty"`
	Price       int    `json:"price"`
	Paid        bool   `json:"paid"`
}

func toBookingView(b bookingDomain.Booking) bookingView {
	return bookingView{
		ID:          b.ID,
		UserID:      b.UserID,
		Sacrament:   string(b.Sacrament),
		Date:        b.Date,
		Time:        b.Time,
		Pax:         b.Pax,
		Status:      b.Status,
		Transaction: b.Transaction,
		Price:       b.Price,
		Paid:        b.Paid,
	}
}

// handleBookings handles GET (list) and POST (submit) for /api/bookings.
// Members see their own bookings; admins see everything and may filter
// by status, sacrament, and date.
func handleBookings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, ok := middleware.GetSessionFromContext(ctx)
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	if r.Method == "GET" {
		filter := bookingStore.ListFilter{
			Status:    r.URL.Query().Get("status"),
			Sacrament: r.URL.Query().Get("sacrament"),
			Date:      r.URL.Query().Get("date"),
		}
		if !middleware.IsAdmin(ctx) {
			filter.UserID = sess.ProfileID
		}

		list, err := stores.BookingStore.List(ctx, filter)
		if err != nil {
			internalError(w, err)
			return
		}
		views := make([]bookingView, 0, len(list))
		for _, b := range list {
			views = append(views, toBookingView(b))
		}
		writeJSON(w, http.StatusOK, views)
		return
	}

	if r.Method == "POST" {
		var body struct {
			Sacrament   string         `json:"booking_sacrament"`
			Date        string         `json:"booking_date"`
			Time        string         `json:"booking_time"`
			Pax         int            `json:"booking_pax"`
			Transaction string         `json:"booking_transaction"`
			Price       int            `json:"price"`
			ChildDoc    map[string]any `json:"child_doc"`
		}
		if err := strictDecode(r, &body); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		input := orchestrators.SubmitBookingInput{
			UserID:      sess.ProfileID,
			Sacrament:   body.Sacrament,
			Date:        body.Date,
			Time:        body.Time,
			Pax:         body.Pax,
			Transaction: body.Transaction,
			Price:       body.Price,
			ChildDoc:    body.ChildDoc,
			Actor:       sessionActor(sess),
		}
		deps := orchestrators.SubmitBookingDeps{
			BookingStore: stores.BookingStore,
			RecordStore:  stores.RecordStore,
			LogStore:     stores.LogStore,
			GenerateID:   generateID,
			Now:          timeNow,
		}
		b, err := orchestrators.ExecuteSubmitBooking(ctx, input, deps)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusCreated, toBookingView(b))
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleBookingCheck handles GET /api/bookings/check, answering whether
// a candidate slot collides with an approved booking.
func handleBookingCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := middleware.GetSessionFromContext(r.Context()); !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	input := orchestrators.CheckConflictInput{
		Date:      r.URL.Query().Get("date"),
		Time:      r.URL.Query().Get("time"),
		ExcludeID: r.URL.Query().Get("exclude_id"),
	}
	result, err := orchestrators.ExecuteCheckConflict(r.Context(), input, orchestrators.CheckConflictDeps{
		BookingStore: stores.BookingStore,
		Policy:       conflictPolicy,
	})
	if err != nil {
		if errors.Is(err, orchestrators.ErrMissingDateTime) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"conflict": result.Conflict,
		"reason":   result.Reason,
		"with":     result.With,
	})
}

// handleAdminBookingStatus handles POST /api/admin/bookings/status.
// Approval runs the conflict gate; a refused approval returns 409 with
// the conflict reason.
func handleAdminBookingStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()
	sess, ok := middleware.GetSessionFromContext(ctx)
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	if !middleware.IsAdmin(ctx) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	var body struct {
		BookingID string `json:"booking_id"`
		Status    string `json:"status"`
	}
	if err := strictDecode(r, &body); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	input := orchestrators.UpdateBookingStatusInput{
		BookingID: body.BookingID,
		Status:    body.Status,
		Actor:     sessionActor(sess),
	}
	deps := orchestrators.UpdateBookingStatusDeps{
		BookingStore: stores.BookingStore,
		RecordStore:  stores.RecordStore,
		LogStore:     stores.LogStore,
		EmailSender:  emailSender,
		EmailFrom:    emailFromAddress,
		Policy:       conflictPolicy,
		GenerateID:   generateID,
		Now:          timeNow,
	}
	if err := orchestrators.ExecuteUpdateBookingStatus(ctx, input, deps); err != nil {
		if errors.Is(err, orchestrators.ErrBookingConflict) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		if errors.Is(err, bookingDomain.ErrInvalidStatus) || errors.Is(err, orchestrators.ErrMissingRecordID) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "booking not found", http.StatusNotFound)
			return
		}
		internalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
