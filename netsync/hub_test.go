package netsync

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/sonar/sonar"
)

type recordingSubmitter struct {
	updates chan sonar.Update
}

func (r *recordingSubmitter) Submit(u sonar.Update) {
	r.updates <- u
}

func startHub(t *testing.T) (*Hub, *recordingSubmitter, string) {
	t.Helper()
	target := &recordingSubmitter{updates: make(chan sonar.Update, 16)}
	hub := NewHub(testCodec(t), target, HubOptions{
		PingPeriod: time.Second,
		ReadWait:   2 * time.Second,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	srv := httptest.NewServer(hub)
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return hub, target, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitPeers(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Peers() != n {
		if time.Now().After(deadline) {
			t.Fatalf("peers = %d, want %d", hub.Peers(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func readState(t *testing.T, conn *websocket.Conn) []byte {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	kind, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if kind != websocket.BinaryMessage {
		t.Fatalf("message kind = %d, want binary", kind)
	}
	return data
}

func TestHubSubmitsAndRelays(t *testing.T) {
	hub, target, url := startHub(t)
	a := dial(t, url)
	b := dial(t, url)
	waitPeers(t, hub, 2)

	msg := hub.codec.Encode(State{Active: true, Zoom: 2, Directional: true, Direction: 1})
	if err := a.WriteMessage(websocket.BinaryMessage, msg); err != nil {
		t.Fatal(err)
	}

	select {
	case u := <-target.updates:
		if u.Mode == nil || *u.Mode != sonar.ModeActive || u.Direction == nil {
			t.Errorf("submitted update = %+v", u)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("state was not submitted")
	}

	if got := readState(t, b); !bytes.Equal(got, msg) {
		t.Errorf("relayed %x, want %x", got, msg)
	}
}

func TestHubDropsMalformedStates(t *testing.T) {
	hub, target, url := startHub(t)
	a := dial(t, url)
	waitPeers(t, hub, 1)

	// Active bit set but zoom missing
	if err := a.WriteMessage(websocket.BinaryMessage, []byte{0x80}); err != nil {
		t.Fatal(err)
	}
	if err := a.WriteMessage(websocket.TextMessage, []byte("hello")); err != nil {
		t.Fatal(err)
	}
	good := hub.codec.Encode(State{})
	if err := a.WriteMessage(websocket.BinaryMessage, good); err != nil {
		t.Fatal(err)
	}

	select {
	case u := <-target.updates:
		if *u.Mode != sonar.ModePassive {
			t.Errorf("first accepted update = %+v, want the valid passive state", u)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("connection should survive malformed messages")
	}
}

func TestHubPublishSkipsUnchangedState(t *testing.T) {
	hub, _, url := startHub(t)
	a := dial(t, url)
	waitPeers(t, hub, 1)

	s := State{Active: true, Zoom: 3}
	hub.Publish(s)
	hub.Publish(s)
	hub.Publish(State{})

	if got := readState(t, a); !bytes.Equal(got, hub.codec.Encode(s)) {
		t.Errorf("first publish = %x", got)
	}
	if got := readState(t, a); !bytes.Equal(got, []byte{0x00}) {
		t.Errorf("second message = %x, want the inactive state", got)
	}
}
