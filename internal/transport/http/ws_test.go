package http

import (
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestStandingsStreamPushesUpdates(t *testing.T) {
	s := newTestStack(t)
	token := s.register(t, "alice")

	u := "ws" + s.server.URL[len("http"):] + "/ws/standings"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Initial snapshot arrives before any submission.
	snapshot := readStandings(conn, t)
	if len(snapshot.Entries) != 1 || snapshot.Entries[0].Score != 0 {
		t.Fatalf("expected zero-score snapshot, got %+v", snapshot.Entries)
	}

	resp := s.postJSON(t, "/api/round/answer", token, map[string]string{"answer": "library"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("submit status %d", resp.StatusCode)
	}

	update := readStandings(conn, t)
	if len(update.Entries) != 1 || update.Entries[0].Score != 10 {
		t.Fatalf("expected updated score 10, got %+v", update.Entries)
	}
}

type standingsFrame struct {
	Hidden  bool `json:"hidden"`
	Entries []struct {
		Rank  int    `json:"rank"`
		Name  string `json:"name"`
		Score int    `json:"score"`
	} `json:"standings"`
}

func readStandings(conn *websocket.Conn, t *testing.T) standingsFrame {
	t.Helper()
	var frame standingsFrame
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read standings: %v", err)
	}
	return frame
}
