package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mizutama/koyomi/internal/notify"
	"github.com/mizutama/koyomi/internal/registry"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// calendarHandler, if non-nil, serves the iCalendar feed at GET /calendar.ics.
func NewRouter(svc *registry.Service, notifier *notify.Notifier, authEnabled bool, token string, sseHandler, calendarHandler http.Handler) chi.Router {
	h := NewHandler(svc, notifier)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Characters CRUD.
	r.Get("/characters", h.ListCharacters)
	r.Post("/characters", h.CreateCharacter)
	r.Get("/characters/{id}", h.GetCharacter)
	r.Put("/characters/{id}", h.UpdateCharacter)
	r.Delete("/characters/{id}", h.DeleteCharacter)

	// Category index.
	r.Get("/categories", h.ListCategories)

	// Owner birthday setting.
	r.Get("/settings/birthday", h.GetOwnerBirthday)
	r.Put("/settings/birthday", h.PutOwnerBirthday)

	// Bulk transfer.
	r.Post("/import", h.Import)
	r.Get("/export", h.Export)

	// Manual birthday check.
	r.Post("/check", h.Check)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	// Subscribable calendar feed.
	if calendarHandler != nil {
		r.Get("/calendar.ics", calendarHandler.ServeHTTP)
	}

	return r
}
