package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func startHub(t *testing.T) (*Hub, func()) {
	t.Helper()
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		hub.Run(ctx)
	}()
	return hub, func() {
		cancel()
		wg.Wait()
	}
}

func serve(t *testing.T, hub *Hub, userID int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(hub, conn, userID)
		if !hub.Register(client) {
			conn.Close()
			return
		}
		go client.ReadPump()
		go client.WritePump()
	}))
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func TestHub_NotifySessionRevoked(t *testing.T) {
	hub, stop := startHub(t)
	srv := serve(t, hub, 42)

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.ClientCount(42) == 1 }, time.Second, 10*time.Millisecond)

	hub.NotifySessionRevoked(7) // other user, not delivered
	hub.NotifySessionRevoked(42)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev Event
	require.NoError(t, json.Unmarshal(data, &ev))
	require.Equal(t, EventSessionRevoked, ev.Type)
	require.Equal(t, int64(42), ev.UserID)

	conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount(42) == 0 }, time.Second, 10*time.Millisecond)

	stop()
	srv.Close()
}

func TestHub_RevokedSocketsAreClosed(t *testing.T) {
	hub, stop := startHub(t)
	srv := serve(t, hub, 42)

	old := dial(t, srv)
	require.Eventually(t, func() bool { return hub.ClientCount(42) == 1 }, time.Second, 10*time.Millisecond)

	hub.NotifySessionRevoked(42)
	require.Zero(t, hub.ClientCount(42))

	require.NoError(t, old.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := old.ReadMessage()
	require.NoError(t, err, "the revocation event is delivered before the close")
	_, _, err = old.ReadMessage()
	require.Error(t, err, "the revoked socket is closed")
	old.Close()

	fresh := dial(t, srv)
	require.Eventually(t, func() bool { return hub.ClientCount(42) == 1 }, time.Second, 10*time.Millisecond)

	hub.NotifySessionRevoked(42)
	require.NoError(t, fresh.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := fresh.ReadMessage()
	require.NoError(t, err)
	var ev Event
	require.NoError(t, json.Unmarshal(data, &ev))
	require.Equal(t, EventSessionRevoked, ev.Type)
	fresh.Close()

	stop()
	srv.Close()
}

func TestHub_StopDisconnectsClients(t *testing.T) {
	hub, stop := startHub(t)
	srv := serve(t, hub, 1)

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.ClientCount(1) == 1 }, time.Second, 10*time.Millisecond)

	stop()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	conn.Close()

	require.False(t, hub.Register(&Client{UserID: 1, send: make(chan []byte)}))
	srv.Close()
}
