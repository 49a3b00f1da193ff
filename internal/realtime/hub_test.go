package realtime_test

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"megacrm-backend/internal/realtime"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_BroadcastsToConnectedClients(t *testing.T) {
	hub := realtime.NewHub()
	go hub.Run()
	defer hub.Stop()

	srv := httptest.NewServer(hub)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Publish(realtime.Event{Type: realtime.ClientsChanged, Employee: "Sana"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev realtime.Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, realtime.ClientsChanged, ev.Type)
	assert.Equal(t, "Sana", ev.Employee)
	assert.False(t, ev.At.IsZero())
}

func TestHub_PublishOnNilHub(t *testing.T) {
	var hub *realtime.Hub
	assert.NotPanics(t, func() { hub.Publish(realtime.Event{Type: realtime.FinanceChanged}) })
}
