package web

import (
	"database/sql"
	"errors"
	"net/http"

	"parish/internal/adapters/http/middleware"
	announcementStore "parish/internal/adapters/storage/announcement"
	"parish/internal/application/orchestrators"
	announcementDomain "parish/internal/domain/announcement"
)

// announcementView is the JSON shape of an announcement. ContentHTML
// carries the markdown body rendered for display.
type announcementView struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Status      string `json:"status"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	ContentHTML string `json:"content_html"`
	EventDate   string `json:"event_date,omitempty"`
	PublishedAt string `json:"published_at,omitempty"`
}

func toAnnouncementView(a announcementDomain.Announcement) announcementView {
	v := announcementView{
		ID:          a.ID,
		Type:        a.Type,
		Status:      a.Status,
		Title:       a.Title,
		Content:     a.Content,
		ContentHTML: renderMarkdown(a.Content),
		EventDate:   a.EventDate,
	}
	if !a.PublishedAt.IsZero() {
		v.PublishedAt = a.PublishedAt.Format("2006-01-02")
	}
	return v
}

// handleAnnouncements handles GET /api/announcements: the public feed
// of published announcements, newest first.
func handleAnnouncements(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	list, err := stores.AnnouncementStore.List(r.Context(), announcementStore.ListFilter{
		Type:   r.URL.Query().Get("type"),
		Status: announcementDomain.StatusPublished,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	views := make([]announcementView, 0, len(list))
	for _, a := range list {
		views = append(views, toAnnouncementView(a))
	}
	writeJSON(w, http.StatusOK, views)
}

// handleAdminAnnouncements handles the admin side: GET lists every
// announcement including drafts, POST creates a draft.
func handleAdminAnnouncements(w http.ResponseWriter, r *http.Request) {
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

	if r.Method == "GET" {
		list, err := stores.AnnouncementStore.List(ctx, announcementStore.ListFilter{
			Type:   r.URL.Query().Get("type"),
			Status: r.URL.Query().Get("status"),
		})
		if err != nil {
			internalError(w, err)
			return
		}
		views := make([]announcementView, 0, len(list))
		for _, a := range list {
			views = append(views, toAnnouncementView(a))
		}
		writeJSON(w, http.StatusOK, views)
		return
	}

	if r.Method == "POST" {
		var body struct {
			Type      string `json:"type"`
			Title     string `json:"title"`
			Content   string `json:"content"`
			EventDate string `json:"event_date"`
		}
		if err := strictDecode(r, &body); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		a, err := orchestrators.ExecuteCreateAnnouncement(ctx, orchestrators.CreateAnnouncementInput{
			Type:      body.Type,
			Title:     body.Title,
			Content:   body.Content,
			EventDate: body.EventDate,
			CreatedBy: sess.AccountID,
		}, orchestrators.CreateAnnouncementDeps{
			AnnouncementStore: stores.AnnouncementStore,
			GenerateID:        generateID,
			Now:               timeNow,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusCreated, toAnnouncementView(a))
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleAdminAnnouncementPublish handles POST /api/admin/announcements/publish.
func handleAdminAnnouncementPublish(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()
	if _, ok := middleware.GetSessionFromContext(ctx); !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	if !middleware.IsAdmin(ctx) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	var body struct {
		ID string `json:"id"`
	}
	if err := strictDecode(r, &body); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	a, err := orchestrators.ExecutePublishAnnouncement(ctx, body.ID, orchestrators.PublishAnnouncementDeps{
		AnnouncementStore: stores.AnnouncementStore,
		RecordStore:       stores.RecordStore,
		EmailSender:       emailSender,
		EmailFrom:         emailFromAddress,
		Now:               timeNow,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "announcement not found", http.StatusNotFound)
			return
		}
		if errors.Is(err, announcementDomain.ErrNotDraft) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAnnouncementView(a))
}

// handleAdminAnnouncementDelete handles POST /api/admin/announcements/delete.
func handleAdminAnnouncementDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()
	if _, ok := middleware.GetSessionFromContext(ctx); !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	if !middleware.IsAdmin(ctx) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	var body struct {
		ID string `json:"id"`
	}
	if err := strictDecode(r, &body); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	err := orchestrators.ExecuteDeleteAnnouncement(ctx, body.ID, orchestrators.DeleteAnnouncementDeps{
		AnnouncementStore: stores.AnnouncementStore,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "announcement not found", http.StatusNotFound)
			return
		}
		internalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
