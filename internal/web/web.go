// Package web serves the browser pages of `songbook serve`: the song list, a song
// display page and a print view.
//
// Pages are rendered server-side with html/template from embedded templates. Lyrics
// markup comes from [formatter.SongHTML], which escapes lyric text before chords are
// positioned, so it is inserted as trusted HTML. A small script reloads the open page
// when the library publishes a change over /ws.
package web

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/songbook/internal/formatter"
	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/shared"
	"github.com/desertthunder/songbook/internal/tasks"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	routeIndex = "GET /{$}"
	routeSong  = "GET /songs/{id}"
	routePrint = "GET /songs/{id}/print"
)

// Pages renders the HTML pages.
type Pages struct {
	lib    *tasks.Library
	logger *log.Logger
	pages  map[string]*template.Template
}

type songItem struct {
	ID     string
	Title  string
	Artist string
}

type listData struct {
	Query string
	Songs []songItem
	Total int
}

type songData struct {
	ID     string
	Title  string
	Artist string
	Chords []string
	Body   template.HTML
	CSS    template.CSS
}

// NewPages parses the embedded templates.
func NewPages(lib *tasks.Library, logger *log.Logger) (*Pages, error) {
	p := &Pages{lib: lib, logger: logger, pages: make(map[string]*template.Template)}
	for _, name := range []string{"list.html", "song.html"} {
		t, err := template.ParseFS(templateFS, "templates/base.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		p.pages[name] = t
	}

	t, err := template.ParseFS(templateFS, "templates/print.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse print.html: %w", err)
	}
	p.pages["print.html"] = t
	return p, nil
}

// Routes returns the page patterns.
func (p *Pages) Routes() []string { return []string{routeIndex, routeSong, routePrint} }

func (p *Pages) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Pattern {
	case routeIndex:
		p.list(w, r)
	case routeSong:
		p.song(w, r, "song.html")
	case routePrint:
		p.song(w, r, "print.html")
	default:
		http.NotFound(w, r)
	}
}

func (p *Pages) list(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	songs, err := p.lib.Search(r.Context(), query)
	if err != nil {
		p.fail(w, err)
		return
	}

	data := listData{Query: query, Total: len(songs)}
	for _, s := range songs {
		data.Songs = append(data.Songs, songItem{ID: s.ID(), Title: s.Title(), Artist: p.lib.ArtistLabel(s)})
	}
	p.render(w, "list.html", data)
}

func (p *Pages) song(w http.ResponseWriter, r *http.Request, page string) {
	song, err := p.lib.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		p.fail(w, err)
		return
	}
	p.render(w, page, p.songData(song))
}

func (p *Pages) songData(song *models.Song) songData {
	view := formatter.NewSongView(song)
	return songData{
		ID:     song.ID(),
		Title:  song.Title(),
		Artist: p.lib.ArtistLabel(song),
		Chords: view.Chords,
		Body:   template.HTML(formatter.SongHTML(song, p.lib.UnknownArtist())),
		CSS:    template.CSS(formatter.LyricsCSS),
	}
}

func (p *Pages) render(w http.ResponseWriter, page string, data any) {
	var buf bytes.Buffer
	if err := p.pages[page].Execute(&buf, data); err != nil {
		p.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (p *Pages) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrSongNotFound):
		http.Error(w, "Song not found", http.StatusNotFound)
	case errors.Is(err, shared.ErrMissingArgument):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		p.logger.Error("page failed", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
