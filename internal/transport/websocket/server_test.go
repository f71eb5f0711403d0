package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payments-register/pkg/logger"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(logger.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.HandleWebSocket(w, r, r.URL.Query().Get("advisor"))
	}))
	t.Cleanup(server.Close)
	return hub, server
}

func dial(t *testing.T, server *httptest.Server, advisor string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+server.URL[4:]+"?advisor="+advisor, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitConnections(t *testing.T, hub *Hub, advisor string, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.Connections(advisor) == n }, time.Second, 10*time.Millisecond)
}

func TestHub_RegisterAndUnregister(t *testing.T) {
	hub, server := startHub(t)

	conn := dial(t, server, "123")
	waitConnections(t, hub, "123", 1)

	conn.Close()
	waitConnections(t, hub, "123", 0)
}

func TestHub_BroadcastReachesEveryConnection(t *testing.T) {
	hub, server := startHub(t)

	var conns []*websocket.Conn
	for i := 0; i < 3; i++ {
		conns = append(conns, dial(t, server, "123"))
	}
	waitConnections(t, hub, "123", 3)

	hub.Broadcast("123", &Message{Type: "payment_registered", Channel: "payments#123", Data: map[string]any{"k": "v"}})

	var wg sync.WaitGroup
	for i, c := range conns {
		wg.Add(1)
		go func(idx int, c *websocket.Conn) {
			defer wg.Done()
			c.SetReadDeadline(time.Now().Add(time.Second))
			var received Message
			if assert.NoError(t, c.ReadJSON(&received), "connection %d", idx) {
				assert.Equal(t, "payment_registered", received.Type)
				assert.Equal(t, "payments#123", received.Channel)
			}
		}(i, c)
	}
	wg.Wait()
}

func TestHub_OnlyTargetAdvisorReceives(t *testing.T) {
	hub, server := startHub(t)

	conn1 := dial(t, server, "123")
	conn2 := dial(t, server, "456")
	waitConnections(t, hub, "123", 1)
	waitConnections(t, hub, "456", 1)

	hub.Broadcast("123", &Message{Type: "private"})

	conn1.SetReadDeadline(time.Now().Add(time.Second))
	var received Message
	require.NoError(t, conn1.ReadJSON(&received))
	assert.Equal(t, "private", received.Type)

	conn2.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	assert.Error(t, conn2.ReadJSON(&received))
}

func TestHub_BroadcastChannelFull(t *testing.T) {
	hub := NewHub(logger.Discard())
	hub.broadcast = make(chan *Message, 1)
	hub.broadcast <- &Message{Type: "fill"}

	hub.Broadcast("123", &Message{Type: "dropped"})

	msg := <-hub.broadcast
	assert.Equal(t, "fill", msg.Type)
	assert.Empty(t, hub.broadcast)
}

func TestHub_ShutdownClosesConnections(t *testing.T) {
	hub := NewHub(logger.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.HandleWebSocket(w, r, "123")
	}))
	defer server.Close()

	conn := dial(t, server, "123")
	waitConnections(t, hub, "123", 1)

	cancel()

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}
