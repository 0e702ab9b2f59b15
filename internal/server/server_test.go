package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/wilddraw/internal/lobby"
	"github.com/lox/wilddraw/internal/room"
)

type wsClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func dialTestServer(t *testing.T, url string) *wsClient {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return &wsClient{t: t, conn: conn}
}

func (c *wsClient) sendJSON(raw string) {
	c.t.Helper()
	require.NoError(c.t, c.conn.WriteMessage(websocket.TextMessage, []byte(raw)))
}

// expect reads frames until one with the wanted event arrives.
func (c *wsClient) expect(event string) map[string]any {
	c.t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		_, data, err := c.conn.ReadMessage()
		require.NoError(c.t, err)

		var msg map[string]any
		require.NoError(c.t, json.Unmarshal(data, &msg))
		if msg["event"] == event {
			return msg
		}
	}
	c.t.Fatalf("event %q never arrived", event)
	return nil
}

func newWSTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	logger := log.New(io.Discard)
	l := lobby.New(room.DefaultConfig(), lobby.WithLogger(logger))
	s := NewServer("", "", l, logger)
	go s.run()
	t.Cleanup(s.Stop)

	ts := httptest.NewServer(http.HandlerFunc(s.handleWebSocket))
	t.Cleanup(ts.Close)
	return s, "ws" + strings.TrimPrefix(ts.URL, "http")
}

func TestQuickPlayOverWebSocket(t *testing.T) {
	_, url := newWSTestServer(t)

	alice := dialTestServer(t, url)
	alice.sendJSON(`{"event":"quick:play","name":"alice"}`)
	msg := alice.expect("quick:waiting")
	assert.Equal(t, "Waiting for opponent...", msg["message"])

	bob := dialTestServer(t, url)
	bob.sendJSON(`{"event":"quick:play","name":"bob"}`)

	// Pairing triggers the countdown on both connections.
	assert.Equal(t, float64(3), alice.expect("game:countdown")["count"])
	assert.Equal(t, float64(3), bob.expect("game:countdown")["count"])
}

func TestPrivateRoomOverWebSocket(t *testing.T) {
	_, url := newWSTestServer(t)

	host := dialTestServer(t, url)
	host.sendJSON(`{"event":"room:create","name":"alice"}`)
	created := host.expect("room:created")
	code, ok := created["code"].(string)
	require.True(t, ok)
	require.Len(t, code, 4)

	guest := dialTestServer(t, url)
	guest.sendJSON(`{"event":"room:join","name":"bob","code":"` + code + `"}`)
	joined := guest.expect("room:joined")
	assert.Equal(t, code, joined["code"])

	host.expect("game:countdown")
}

func TestJoinUnknownRoomReportsError(t *testing.T) {
	_, url := newWSTestServer(t)

	guest := dialTestServer(t, url)
	guest.sendJSON(`{"event":"room:join","name":"bob","code":"0000"}`)
	msg := guest.expect("room:error")
	assert.Equal(t, "Room not found", msg["message"])

	guest.sendJSON(`{"event":"room:join","name":"bob","code":"xyz"}`)
	msg = guest.expect("room:error")
	assert.Equal(t, "Invalid room code", msg["message"])
}

func TestMalformedMessageRejected(t *testing.T) {
	_, url := newWSTestServer(t)

	client := dialTestServer(t, url)
	client.sendJSON(`{"event":"no:such:event"}`)
	assert.Equal(t, "Invalid message", client.expect("error")["message"])

	// The connection survives the rejection.
	client.sendJSON(`{"event":"action:bet","action":"call"}`)
	assert.Equal(t, "Not in a game", client.expect("error")["message"])
}

func TestHealthEndpoint(t *testing.T) {
	logger := log.New(io.Discard)
	l := lobby.New(room.DefaultConfig(), lobby.WithLogger(logger))
	s := NewServer("", "", l, logger)

	rec := httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}
