package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dialSession serves one hub session for userID and returns the shopper's end
func dialSession(t *testing.T, hub *Hub, userID uint) *websocket.Conn {
	t.Helper()
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(hub, &Conn{Conn: conn}, userID, false)
		hub.Register(client)
		go client.StreamEvents()
		go client.ReceiveFrames()
	}))
	t.Cleanup(server.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	waitOnline(t, hub, userID)
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func TestConn_DeliversEventsAndAnswersPing(t *testing.T) {
	hub := startHub(t)
	conn := dialSession(t, hub, 7)

	hub.NotifyUser(7, EventCartUpdated, map[string]int{"ItemCount": 3})
	ev := readEvent(t, conn)
	assert.Equal(t, EventCartUpdated, ev.Type)
	assert.Equal(t, map[string]interface{}{"ItemCount": float64(3)}, ev.Payload)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"Type":"ping"}`)))
	assert.Equal(t, eventPong, readEvent(t, conn).Type)
}

func TestConn_OversizedFrameEndsSession(t *testing.T) {
	hub := startHub(t)
	conn := dialSession(t, hub, 8)

	frame := `{"Type":"` + strings.Repeat("x", maxInboundFrameSize) + `"}`
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(frame)))

	require.Eventually(t, func() bool { return !hub.IsUserOnline(8) }, time.Second, 5*time.Millisecond)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func TestConn_UnregisterClosesSocket(t *testing.T) {
	hub := startHub(t)
	conn := dialSession(t, hub, 9)

	hub.mu.RLock()
	client := hub.clients[9][0]
	hub.mu.RUnlock()
	hub.Unregister(client)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}
