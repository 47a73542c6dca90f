package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mizutama/koyomi/internal/apperr"
	"github.com/mizutama/koyomi/internal/models"
	"github.com/mizutama/koyomi/internal/notify"
	"github.com/mizutama/koyomi/internal/registry"
)

// Handler holds API route handlers.
type Handler struct {
	svc      *registry.Service
	notifier *notify.Notifier
}

// NewHandler creates a new Handler.
func NewHandler(svc *registry.Service, notifier *notify.Notifier) *Handler {
	return &Handler{svc: svc, notifier: notifier}
}

// viewState reads the filter and mode query parameters, falling back to the
// defaults for anything absent or unrecognized.
func viewState(r *http.Request) models.ViewState {
	state := models.DefaultViewState()
	q := r.URL.Query()
	if f := q.Get("filter"); f != "" {
		state.Filter = f
	}
	if m := q.Get("mode"); m == models.ViewModeList || m == models.ViewModeCard {
		state.Mode = m
	}
	return state
}

// ListCharacters handles GET /api/characters.
//
//	@Summary		List characters projected through a filter and view mode
//	@Tags			characters
//	@Produce		json
//	@Param			filter	query		string	false	"Category filter or 'all'"
//	@Param			mode	query		string	false	"View mode"	Enums(card, list)
//	@Success		200		{object}	CharacterListResponse
//	@Security		BearerAuth
//	@Router			/characters [get]
func (h *Handler) ListCharacters(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.View(r.Context(), viewState(r))
	if err != nil {
		writeError(w, "list characters", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetCharacter handles GET /api/characters/{id}.
//
//	@Summary		Get a single character by id
//	@Tags			characters
//	@Produce		json
//	@Param			id	path		string	true	"Character id"
//	@Success		200	{object}	models.Character
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/characters/{id} [get]
func (h *Handler) GetCharacter(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ch, err := h.svc.GetCharacter(r.Context(), id)
	if err != nil {
		writeError(w, "get character", err)
		return
	}
	writeJSON(w, http.StatusOK, ch)
}

// CreateCharacter handles POST /api/characters.
//
//	@Summary		Register a new character
//	@Tags			characters
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CharacterRequest	true	"Character to register"
//	@Success		201		{object}	models.Character
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/characters [post]
func (h *Handler) CreateCharacter(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req CharacterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	ch, err := h.svc.AddCharacter(r.Context(), req)
	if err != nil {
		writeError(w, "create character", err)
		return
	}
	writeJSON(w, http.StatusCreated, ch)
}

// UpdateCharacter handles PUT /api/characters/{id}.
//
//	@Summary		Update a character; an empty image keeps the stored one
//	@Tags			characters
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Character id"
//	@Param			body	body		CharacterRequest	true	"Updated fields"
//	@Success		200		{object}	models.Character
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/characters/{id} [put]
func (h *Handler) UpdateCharacter(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	id := chi.URLParam(r, "id")
	var req CharacterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	ch, err := h.svc.UpdateCharacter(r.Context(), id, req)
	if err != nil {
		writeError(w, "update character", err)
		return
	}
	writeJSON(w, http.StatusOK, ch)
}

// DeleteCharacter handles DELETE /api/characters/{id}.
//
//	@Summary		Delete a character
//	@Tags			characters
//	@Param			id	path	string	true	"Character id"
//	@Success		204	"Character deleted"
//	@Security		BearerAuth
//	@Router			/characters/{id} [delete]
func (h *Handler) DeleteCharacter(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteCharacter(r.Context(), id); err != nil {
		writeError(w, "delete character", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListCategories handles GET /api/categories.
//
//	@Summary		List the distinct non-empty sources across all characters
//	@Tags			categories
//	@Produce		json
//	@Success		200	{object}	CategoriesResponse
//	@Security		BearerAuth
//	@Router			/categories [get]
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.svc.Categories(r.Context())
	if err != nil {
		writeError(w, "list categories", err)
		return
	}
	writeJSON(w, http.StatusOK, CategoriesResponse{Categories: cats})
}

// GetOwnerBirthday handles GET /api/settings/birthday.
//
//	@Summary		Get the owner's configured birthday
//	@Tags			settings
//	@Produce		json
//	@Success		200	{object}	OwnerBirthdayResponse
//	@Security		BearerAuth
//	@Router			/settings/birthday [get]
func (h *Handler) GetOwnerBirthday(w http.ResponseWriter, r *http.Request) {
	key, err := h.svc.OwnerBirthday(r.Context())
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusOK, OwnerBirthdayResponse{Configured: false})
			return
		}
		writeError(w, "get owner birthday", err)
		return
	}
	writeJSON(w, http.StatusOK, OwnerBirthdayResponse{Birthday: key, Configured: true})
}

// PutOwnerBirthday handles PUT /api/settings/birthday.
//
//	@Summary		Set the owner's birthday
//	@Tags			settings
//	@Accept			json
//	@Produce		json
//	@Param			body	body		OwnerBirthdayRequest	true	"Birthday as MM-DD"
//	@Success		200		{object}	OwnerBirthdayResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/settings/birthday [put]
func (h *Handler) PutOwnerBirthday(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req OwnerBirthdayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	key, err := h.svc.SaveOwnerBirthday(r.Context(), req.Birthday)
	if err != nil {
		writeError(w, "set owner birthday", err)
		return
	}
	writeJSON(w, http.StatusOK, OwnerBirthdayResponse{Birthday: key, Configured: true})
}

// Import handles POST /api/import.
//
//	@Summary		Bulk import characters from an uploaded CSV or vCard file
//	@Tags			transfer
//	@Accept			mpfd
//	@Produce		json
//	@Param			file	formData	file	true	"CSV or vCard file"
//	@Success		200		{object}	ImportResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/import [post]
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 20<<20)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("multipart field 'file' is required"))
		return
	}
	defer file.Close()

	report, err := h.svc.ImportReader(r.Context(), header.Filename, file)
	if err != nil {
		writeError(w, "import", err)
		return
	}
	writeJSON(w, http.StatusOK, ImportResponse{Report: report, Empty: report.Empty()})
}

// Export handles GET /api/export.
//
//	@Summary		Download all characters as a CSV attachment
//	@Tags			transfer
//	@Produce		text/csv
//	@Success		200	{string}	string	"CSV payload"
//	@Security		BearerAuth
//	@Router			/export [get]
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	// Render to a buffer first so a store failure can still become a 500
	// instead of a truncated 200.
	var buf bytes.Buffer
	if err := h.svc.ExportCSV(r.Context(), &buf); err != nil {
		writeError(w, "export", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="character_birthdays.csv"`)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("export write failed", slog.String("error", err.Error()))
	}
}

// Check handles POST /api/check.
//
//	@Summary		Run the birthday check immediately
//	@Tags			notifications
//	@Produce		json
//	@Success		200	{object}	CheckResponse
//	@Security		BearerAuth
//	@Router			/check [post]
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	report, err := h.notifier.Check(r.Context())
	if err != nil {
		writeError(w, "birthday check", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
