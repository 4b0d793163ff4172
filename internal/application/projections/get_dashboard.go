package projections

import (
	"context"

	"parish/internal/domain/booking"
	"parish/internal/domain/translog"
	"parish/internal/domain/trash"
)

// DashboardBookingStore defines the booking store interface needed by
// the dashboard projection.
type DashboardBookingStore interface {
	List(ctx context.Context, filter BookingFilter) ([]booking.Booking, error)
}

// BookingFilter mirrors the storage-layer booking filter so the
// projection does not import the adapter package.
type BookingFilter struct {
	UserID    string
	Status    string
	Sacrament string
	Date      string
	Limit     int
}

// DashboardRecordStore defines the generic record access needed by the
// dashboard projection.
type DashboardRecordStore interface {
	List(ctx context.Context, table string) ([]map[string]any, error)
}

// DashboardTrashStore defines the trash access needed by the dashboard.
type DashboardTrashStore interface {
	List(ctx context.Context) ([]trash.Entry, error)
}

// DashboardLogStore defines the log access needed by the dashboard.
type DashboardLogStore interface {
	ListRecent(ctx context.Context, limit int) ([]translog.Entry, error)
}

// GetDashboardDeps holds dependencies for the dashboard projection.
type GetDashboardDeps struct {
	BookingStore DashboardBookingStore
	RecordStore  DashboardRecordStore
	TrashStore   DashboardTrashStore
	LogStore     DashboardLogStore
}

// recentActivityLimit caps the activity feed on the admin dashboard.
const recentActivityLimit = 10

// DashboardResult carries the output of the dashboard projection.
type DashboardResult struct {
	TotalBookings    int
	PendingBookings  int
	ApprovedBookings int
	RejectedBookings int

	TotalUsers     int
	TotalDocuments int
	TotalRequests  int
	TotalDonations float64

	TrashCount     int
	RecentActivity []translog.Entry
}

// ExecuteGetDashboard assembles the admin dashboard counters and the
// recent activity feed.
// PRE: stores are reachable
// POST: Returns aggregate counts; no data is mutated
func ExecuteGetDashboard(ctx context.Context, deps GetDashboardDeps) (DashboardResult, error) {
	var result DashboardResult

	bookings, err := deps.BookingStore.List(ctx, BookingFilter{})
	if err != nil {
		return DashboardResult{}, err
	}
	result.TotalBookings = len(bookings)
	for _, b := range bookings {
		switch b.Status {
		case booking.StatusPending:
			result.PendingBookings++
		case booking.StatusApproved:
			result.ApprovedBookings++
		case booking.StatusRejected:
			result.RejectedBookings++
		}
	}

	users, err := deps.RecordStore.List(ctx, "user_tbl")
	if err != nil {
		return DashboardResult{}, err
	}
	result.TotalUsers = len(users)

	documents, err := deps.RecordStore.List(ctx, "document_tbl")
	if err != nil {
		return DashboardResult{}, err
	}
	result.TotalDocuments = len(documents)

	requests, err := deps.RecordStore.List(ctx, "request_tbl")
	if err != nil {
		return DashboardResult{}, err
	}
	result.TotalRequests = len(requests)

	donations, err := deps.RecordStore.List(ctx, "donation_tbl")
	if err != nil {
		return DashboardResult{}, err
	}
	for _, d := range donations {
		if amount, ok := d["donation_amount"].(float64); ok {
			result.TotalDonations += amount
		}
	}

	trashed, err := deps.TrashStore.List(ctx)
	if err != nil {
		return DashboardResult{}, err
	}
	result.TrashCount = len(trashed)

	activity, err := deps.LogStore.ListRecent(ctx, recentActivityLimit)
	if err != nil {
		return DashboardResult{}, err
	}
	result.RecentActivity = activity

	return result, nil
}
