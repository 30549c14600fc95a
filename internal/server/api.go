package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/songbook/internal/chords"
	"github.com/desertthunder/songbook/internal/formatter"
	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/shared"
	"github.com/desertthunder/songbook/internal/tasks"
)

// MaxBodyBytes limits request bodies accepted by the API.
const MaxBodyBytes = 5 << 20

const (
	routeListSongs    = "GET /api/songs"
	routeCreateSong   = "POST /api/songs"
	routeGetSong      = "GET /api/songs/{id}"
	routeUpdateSong   = "PUT /api/songs/{id}"
	routeDeleteSong   = "DELETE /api/songs/{id}"
	routeSongDocument = "GET /api/songs/{id}/document"
	routeImport       = "POST /api/import"
	routeExport       = "GET /api/export"
)

var _ Handler = (*SongsHandler)(nil)

// SongsHandler serves the JSON song API on top of a [tasks.Library].
type SongsHandler struct {
	lib    *tasks.Library
	logger *log.Logger
}

// songRequest is the body of create and update requests.
//
// Pointer fields distinguish "absent" from "empty" on update.
type songRequest struct {
	Title  *string `json:"title"`
	Artist *string `json:"artist"`
	Lyrics *string `json:"lyrics"`
}

type importResponse struct {
	Imported int    `json:"imported"`
	Skipped  int    `json:"skipped"`
	Message  string `json:"message"`
}

// NewSongsHandler creates a SongsHandler.
func NewSongsHandler(lib *tasks.Library, logger *log.Logger) *SongsHandler {
	return &SongsHandler{lib: lib, logger: logger}
}

// Routes implements [Handler].
func (h *SongsHandler) Routes() []string {
	return []string{
		routeListSongs, routeCreateSong,
		routeGetSong, routeUpdateSong, routeDeleteSong,
		routeSongDocument, routeImport, routeExport,
	}
}

// ServeHTTP dispatches on the pattern the router matched.
func (h *SongsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Pattern {
	case routeListSongs:
		h.list(w, r)
	case routeCreateSong:
		h.create(w, r)
	case routeGetSong:
		h.get(w, r)
	case routeUpdateSong:
		h.update(w, r)
	case routeDeleteSong:
		h.delete(w, r)
	case routeSongDocument:
		h.document(w, r)
	case routeImport:
		h.importSongs(w, r)
	case routeExport:
		h.export(w, r)
	default:
		writeJSONError(w, http.StatusNotFound, "not found")
	}
}

func (h *SongsHandler) list(w http.ResponseWriter, r *http.Request) {
	songs, err := h.lib.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	records := make([]models.SongRecord, 0, len(songs))
	for _, s := range songs {
		records = append(records, s.Record())
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *SongsHandler) create(w http.ResponseWriter, r *http.Request) {
	var req songRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	song, err := h.lib.Add(r.Context(), deref(req.Title), deref(req.Artist), deref(req.Lyrics))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, song.Record())
}

func (h *SongsHandler) get(w http.ResponseWriter, r *http.Request) {
	song, err := h.lib.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, formatter.NewSongView(song))
}

func (h *SongsHandler) update(w http.ResponseWriter, r *http.Request) {
	var req songRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	patch := tasks.SongPatch{Title: req.Title, Artist: req.Artist, Lyrics: req.Lyrics}
	song, err := h.lib.Edit(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, song.Record())
}

func (h *SongsHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.lib.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// document returns the formatted lyrics. ?escape=html escapes text runs for direct
// insertion into markup; the default leaves them raw.
func (h *SongsHandler) document(w http.ResponseWriter, r *http.Request) {
	esc := chords.RawEscaper
	if r.URL.Query().Get("escape") == "html" {
		esc = chords.HTMLEscaper
	}

	doc, err := h.lib.Document(r.Context(), r.PathValue("id"), esc)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *SongsHandler) importSongs(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		h.writeError(w, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err))
		return
	}

	result, err := h.lib.Import(r.Context(), data)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, importResponse{
		Imported: result.Imported,
		Skipped:  result.Skipped,
		Message:  result.String(),
	})
}

func (h *SongsHandler) export(w http.ResponseWriter, r *http.Request) {
	data, filename, err := h.lib.Export(r.Context(), r.URL.Query().Get("pretty") != "")
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Warn("failed to write export", "error", err)
	}
}

func (h *SongsHandler) writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "error", err)
	}
	writeJSONError(w, status, err.Error())
}

// StatusFor maps an error to an HTTP status code.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, shared.ErrSongNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrDuplicateSong):
		return http.StatusConflict
	case errors.Is(err, shared.ErrInvalidInput),
		errors.Is(err, shared.ErrImportFormat),
		errors.Is(err, shared.ErrMissingArgument),
		errors.Is(err, shared.ErrInvalidArgument),
		errors.Is(err, shared.ErrInvalidFlag):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
