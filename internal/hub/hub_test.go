package hub

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(time.Second))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestNewClientReceivesSnapshot(t *testing.T) {
	h := New(func() (any, bool) {
		return map[string]any{"caption": "sunday"}, true
	})
	defer h.Close()

	server := httptest.NewServer(http.HandlerFunc(h.Serve))
	defer server.Close()

	conn := dial(t, server)
	msg := readMessage(t, conn)
	assert.Equal(t, "state", msg.Type)

	data, err := json.Marshal(msg.Data)
	require.NoError(t, err)
	assert.JSONEq(t, `{"caption":"sunday"}`, string(data))
}

func TestNewClientReceivesClearWhenNothingLoaded(t *testing.T) {
	h := New(func() (any, bool) { return nil, false })
	defer h.Close()

	server := httptest.NewServer(http.HandlerFunc(h.Serve))
	defer server.Close()

	conn := dial(t, server)
	msg := readMessage(t, conn)
	assert.Equal(t, "clear", msg.Type)
}

func TestNotifyFansOutToAllClients(t *testing.T) {
	h := New(func() (any, bool) { return nil, false })
	defer h.Close()

	server := httptest.NewServer(http.HandlerFunc(h.Serve))
	defer server.Close()

	first := dial(t, server)
	second := dial(t, server)
	readMessage(t, first)
	readMessage(t, second)

	// registration happens in Serve before the handler returns, but give
	// the second upgrade a moment to settle
	require.Eventually(t, func() bool {
		h.mu.Lock()
		defer h.mu.Unlock()
		return len(h.clients) == 2
	}, time.Second, 5*time.Millisecond)

	h.Notify(map[string]any{"active": 3})

	for _, conn := range []*websocket.Conn{first, second} {
		msg := readMessage(t, conn)
		assert.Equal(t, "state", msg.Type)
	}
}
