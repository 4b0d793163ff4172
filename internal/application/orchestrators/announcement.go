package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"parish/internal/adapters/email"
	"parish/internal/domain/announcement"
)

// AnnouncementStoreForOrchestrator defines the store interface needed
// by announcement orchestrators.
type AnnouncementStoreForOrchestrator interface {
	GetByID(ctx context.Context, id string) (announcement.Announcement, error)
	Save(ctx context.Context, a announcement.Announcement) error
	Delete(ctx context.Context, id string) error
}

// CreateAnnouncementInput carries input for the create announcement orchestrator.
type CreateAnnouncementInput struct {
	Type      string
	Title     string
	Content   string // Markdown
	EventDate string // YYYY-MM-DD, events only
	CreatedBy string // AccountID of creator
}

// CreateAnnouncementDeps holds dependencies for CreateAnnouncement.
type CreateAnnouncementDeps struct {
	AnnouncementStore AnnouncementStoreForOrchestrator
	GenerateID        func() string
	Now               func() time.Time
}

// ExecuteCreateAnnouncement creates a new announcement in draft status.
// PRE: Title, Content, Type must be non-empty; CreatedBy must be non-empty
// POST: Announcement created in draft status with generated ID
func ExecuteCreateAnnouncement(ctx context.Context, input CreateAnnouncementInput, deps CreateAnnouncementDeps) (announcement.Announcement, error) {
	if input.CreatedBy == "" {
		return announcement.Announcement{}, errors.New("creator account ID is required")
	}

	a := announcement.Announcement{
		ID:        deps.GenerateID(),
		Type:      input.Type,
		Status:    announcement.StatusDraft,
		Title:     input.Title,
		Content:   input.Content,
		EventDate: input.EventDate,
		CreatedBy: input.CreatedBy,
		CreatedAt: deps.Now(),
	}

	if err := a.Validate(); err != nil {
		return announcement.Announcement{}, err
	}

	if err := deps.AnnouncementStore.Save(ctx, a); err != nil {
		return announcement.Announcement{}, err
	}

	slog.Info("announcement_event", "event", "announcement_created", "announcement_id", a.ID, "type", a.Type, "created_by", input.CreatedBy)
	return a, nil
}

// RecordStoreForNotify defines the registry access needed to collect
// notification recipients.
type RecordStoreForNotify interface {
	List(ctx context.Context, table string) ([]map[string]any, error)
}

// PublishAnnouncementDeps holds dependencies for PublishAnnouncement.
// EmailSender and RecordStore back the parishioner notification batch;
// either may be nil to publish without notifying.
type PublishAnnouncementDeps struct {
	AnnouncementStore AnnouncementStoreForOrchestrator
	RecordStore       RecordStoreForNotify
	EmailSender       email.Sender
	EmailFrom         string
	Now               func() time.Time
}

// ExecutePublishAnnouncement transitions a draft announcement to
// published and emails every registered parishioner, one message per
// address via the batch API. Notification is best-effort: a send
// failure is logged and the publish stands.
// PRE: AnnouncementID must be non-empty; announcement must be a draft
// POST: Announcement is published with PublishedAt set
func ExecutePublishAnnouncement(ctx context.Context, announcementID string, deps PublishAnnouncementDeps) (announcement.Announcement, error) {
	if announcementID == "" {
		return announcement.Announcement{}, errors.New("announcement ID is required")
	}

	a, err := deps.AnnouncementStore.GetByID(ctx, announcementID)
	if err != nil {
		return announcement.Announcement{}, err
	}

	if err := a.Publish(deps.Now()); err != nil {
		return announcement.Announcement{}, err
	}

	if err := deps.AnnouncementStore.Save(ctx, a); err != nil {
		return announcement.Announcement{}, err
	}

	notifyParishioners(ctx, a, deps)

	slog.Info("announcement_event", "event", "announcement_published", "announcement_id", a.ID)
	return a, nil
}

// notifyParishioners emails a published announcement to every address
// in the user registry, one message per recipient. Failures are logged
// and swallowed.
func notifyParishioners(ctx context.Context, a announcement.Announcement, deps PublishAnnouncementDeps) {
	if deps.EmailSender == nil || deps.RecordStore == nil {
		return
	}
	users, err := deps.RecordStore.List(ctx, "user_tbl")
	if err != nil {
		slog.Warn("announcement_event", "event", "notify_skipped", "announcement_id", a.ID, "error", err)
		return
	}

	subject := fmt.Sprintf("Parish announcement: %s", a.Title)
	body := fmt.Sprintf("<p>%s</p>", a.Content)
	if a.EventDate != "" {
		body = fmt.Sprintf("<p><strong>%s</strong></p>%s", a.EventDate, body)
	}

	var reqs []email.SendRequest
	for _, u := range users {
		addr, _ := u["user_email"].(string)
		if addr == "" {
			continue
		}
		reqs = append(reqs, email.SendRequest{
			To:      []string{addr},
			From:    deps.EmailFrom,
			Subject: subject,
			HTML:    body,
		})
	}
	if len(reqs) == 0 {
		return
	}

	if _, err := deps.EmailSender.SendBatch(ctx, reqs); err != nil {
		slog.Warn("announcement_event", "event", "notify_failed", "announcement_id", a.ID, "error", err)
		return
	}
	slog.Info("announcement_event", "event", "parishioners_notified", "announcement_id", a.ID, "recipients", len(reqs))
}

// DeleteAnnouncementDeps holds dependencies for DeleteAnnouncement.
type DeleteAnnouncementDeps struct {
	AnnouncementStore AnnouncementStoreForOrchestrator
}

// ExecuteDeleteAnnouncement removes an announcement outright. Parish
// notices are not archived to the trash.
// PRE: AnnouncementID must be non-empty
// POST: Announcement is removed
func ExecuteDeleteAnnouncement(ctx context.Context, announcementID string, deps DeleteAnnouncementDeps) error {
	if announcementID == "" {
		return errors.New("announcement ID is required")
	}
	if err := deps.AnnouncementStore.Delete(ctx, announcementID); err != nil {
		return err
	}
	slog.Info("announcement_event", "event", "announcement_deleted", "announcement_id", announcementID)
	return nil
}
