package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"parish/internal/adapters/email"
	"parish/internal/domain/actor"
	"parish/internal/domain/booking"
	"parish/internal/domain/sacrament"
	"parish/internal/domain/translog"
)

// BookingStoreForSave defines the store interface needed by the booking
// orchestrators.
type BookingStoreForSave interface {
	GetByID(ctx context.Context, id string) (booking.Booking, error)
	Save(ctx context.Context, b booking.Booking) error
	ListApprovedByDate(ctx context.Context, date string) ([]booking.Booking, error)
}

// SubmitBookingInput carries input for the booking submission orchestrator.
type SubmitBookingInput struct {
	UserID      string
	Sacrament   string
	Date        string // YYYY-MM-DD
	Time        string // HH:MM
	Pax         int
	Transaction string
	Price       int
	ChildDoc    map[string]any // sacrament sub-document fields, when applicable
	Actor       actor.Actor
}

// SubmitBookingDeps holds dependencies for SubmitBooking.
type SubmitBookingDeps struct {
	BookingStore BookingStoreForSave
	RecordStore  RecordStoreForSave
	LogStore     LogStoreForArchive
	GenerateID   func() string
	Now          func() time.Time
}

var ErrBookingConflict = errors.New("the requested time conflicts with an approved booking")

// ExecuteSubmitBooking creates a pending booking. Sacraments with a
// sub-document insert the child row first so the booking's foreign key
// points at a live record. Pending bookings never run the conflict
// check; that happens on approval.
// PRE: Input fields satisfy booking validation
// POST: Booking persisted as pending with a CREATE log entry
func ExecuteSubmitBooking(ctx context.Context, input SubmitBookingInput, deps SubmitBookingDeps) (booking.Booking, error) {
	kind, err := sacrament.Parse(input.Sacrament)
	if err != nil {
		return booking.Booking{}, booking.ErrInvalidSacrament
	}
	if err := input.Actor.Validate(); err != nil {
		return booking.Booking{}, err
	}

	b := booking.Booking{
		ID:          deps.GenerateID(),
		UserID:      input.UserID,
		Sacrament:   kind,
		Date:        input.Date,
		Time:        input.Time,
		Pax:         input.Pax,
		Status:      booking.StatusPending,
		Transaction: input.Transaction,
		Price:       input.Price,
		CreatedAt:   deps.Now(),
	}
	if err := b.Validate(); err != nil {
		return booking.Booking{}, err
	}

	if cd, hasChild := kind.ChildDoc(); hasChild && len(input.ChildDoc) > 0 {
		childID := deps.GenerateID()
		input.ChildDoc["id"] = childID
		if _, err := deps.RecordStore.Insert(ctx, cd.Table, input.ChildDoc); err != nil {
			return booking.Booking{}, fmt.Errorf("save %s: %w", cd.Table, err)
		}
		b.SetChildDocID(childID)
	}

	if err := deps.BookingStore.Save(ctx, b); err != nil {
		return booking.Booking{}, err
	}

	logEntry, err := translog.New(deps.GenerateID(), "booking_tbl", translog.ActionCreate,
		b.ID, nil, bookingPayload(b), input.Actor, deps.Now())
	if err != nil {
		return booking.Booking{}, err
	}
	if err := deps.LogStore.Append(ctx, logEntry); err != nil {
		return booking.Booking{}, err
	}

	slog.Info("booking_event", "event", "booking_submitted", "booking_id", b.ID,
		"sacrament", string(b.Sacrament), "date", b.Date, "time", b.Time)
	return b, nil
}

// UpdateBookingStatusInput carries input for the status update orchestrator.
type UpdateBookingStatusInput struct {
	BookingID string
	Status    string
	Actor     actor.Actor
}

// UpdateBookingStatusDeps holds dependencies for UpdateBookingStatus.
type UpdateBookingStatusDeps struct {
	BookingStore BookingStoreForSave
	RecordStore  RecordStoreForSave
	LogStore     LogStoreForArchive
	EmailSender  email.Sender
	EmailFrom    string
	Policy       booking.ConflictPolicy
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteUpdateBookingStatus transitions a booking's status. Approval
// runs the conflict check first, excluding the booking itself, and is
// refused when another approved booking sits within the policy window.
// The requesting parishioner is notified by email on a best-effort
// basis; a send failure does not undo the status change.
// PRE: BookingID must be non-empty; Status must be valid; booking must exist
// POST: Status persisted with an UPDATE log entry
func ExecuteUpdateBookingStatus(ctx context.Context, input UpdateBookingStatusInput, deps UpdateBookingStatusDeps) error {
	if input.BookingID == "" {
		return ErrMissingRecordID
	}
	if err := input.Actor.Validate(); err != nil {
		return err
	}

	b, err := deps.BookingStore.GetByID(ctx, input.BookingID)
	if err != nil {
		return err
	}
	before := bookingPayload(b)

	if input.Status == booking.StatusApproved {
		result, err := ExecuteCheckConflict(ctx, CheckConflictInput{
			Date:      b.Date,
			Time:      b.Time,
			ExcludeID: b.ID,
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
	}

	b.Status = input.Status
	if err := b.Validate(); err != nil {
		return err
	}
	if err := deps.BookingStore.Save(ctx, b); err != nil {
		return err
	}

	logEntry, err := translog.New(deps.GenerateID(), "booking_tbl", translog.ActionUpdate,
		b.ID, before, bookingPayload(b), input.Actor, deps.Now())
	if err != nil {
		return err
	}
	if err := deps.LogStore.Append(ctx, logEntry); err != nil {
		return err
	}

	notifyBookingStatus(ctx, b, deps)

	slog.Info("booking_event", "event", "booking_status_updated", "booking_id", b.ID,
		"status", b.Status, "updated_by", input.Actor.Name)
	return nil
}

// notifyBookingStatus emails the booking's owner about a status change.
// Failures are logged and swallowed.
func notifyBookingStatus(ctx context.Context, b booking.Booking, deps UpdateBookingStatusDeps) {
	if deps.EmailSender == nil || deps.RecordStore == nil {
		return
	}
	user, err := deps.RecordStore.Get(ctx, "user_tbl", b.UserID)
	if err != nil {
		slog.Warn("booking_event", "event", "notify_skipped", "booking_id", b.ID, "error", err)
		return
	}
	to, _ := user["user_email"].(string)
	if to == "" {
		return
	}

	subject := fmt.Sprintf("Your %s booking has been %s", b.Sacrament, b.Status)
	html := fmt.Sprintf(
		"<p>Your %s booking for %s at %s is now <strong>%s</strong>.</p>",
		b.Sacrament, b.Date, b.Time, b.Status)
	_, err = deps.EmailSender.Send(ctx, email.SendRequest{
		To:      []string{to},
		From:    deps.EmailFrom,
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		slog.Warn("booking_event", "event", "notify_failed", "booking_id", b.ID, "error", err)
	}
}

// bookingPayload flattens a booking into the column map used by trash
// snapshots and log payloads.
func bookingPayload(b booking.Booking) map[string]any {
	payload := map[string]any{
		"id":                  b.ID,
		"user_id":             b.UserID,
		"booking_sacrament":   string(b.Sacrament),
		"booking_date":        b.Date,
		"booking_time":        b.Time,
		"booking_pax":         b.Pax,
		"booking_status":      b.Status,
		"booking_transaction": b.Transaction,
		"price":               b.Price,
		"paid":                b.Paid,
	}
	if b.WeddingDocID != "" {
		payload["wedding_docu_id"] = b.WeddingDocID
	}
	if b.BaptismDocID != "" {
		payload["baptism_docu_id"] = b.BaptismDocID
	}
	if b.BurialDocID != "" {
		payload["burial_docu_id"] = b.BurialDocID
	}
	return payload
}
