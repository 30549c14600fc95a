package server

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/desertthunder/songbook/internal/tasks"
	th "github.com/desertthunder/songbook/internal/testing"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHub(t *testing.T) {
	logger := log.New(io.Discard)
	hub := NewHub(logger)
	lib := tasks.NewLibrary(th.NewMemoryRepository(), logger, "")
	lib.Subscribe(hub.Publish)

	r := NewBasicRouter()
	r.Use(Logging(logger))
	r.Handler(hub)
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	waitFor(t, func() bool { return hub.Clients() == 1 })

	song, err := lib.Add(t.Context(), "Live", "", "[C]now")
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	var ev tasks.ChangeEvent
	if err := json.Unmarshal(msg, &ev); err != nil {
		t.Fatalf("bad event %q: %v", msg, err)
	}
	if ev.Type != tasks.SongCreated || ev.SongID != song.ID() || ev.Title != "Live" {
		t.Errorf("unexpected event %+v", ev)
	}

	t.Run("client disconnect unregisters", func(t *testing.T) {
		_ = conn.Close()
		waitFor(t, func() bool { return hub.Clients() == 0 })
	})

	t.Run("Close refuses new clients", func(t *testing.T) {
		hub.Close()
		c, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			return
		}
		defer c.Close()
		_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
		if _, _, err := c.ReadMessage(); err == nil {
			t.Error("expected closed connection")
		}
		if hub.Clients() != 0 {
			t.Errorf("expected no clients, got %d", hub.Clients())
		}
	})
}

func TestHubPublishWithoutClients(t *testing.T) {
	hub := NewHub(log.New(io.Discard))
	hub.Publish(tasks.ChangeEvent{Type: tasks.SongDeleted, SongID: "x"})
	if hub.Clients() != 0 {
		t.Errorf("expected no clients")
	}
}
