package hub

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/javajoker/ip-licensing-portal/internal/models"
	"github.com/javajoker/ip-licensing-portal/internal/services"
)

func TestEncodeTableNeverEmitsNull(t *testing.T) {
	msg, err := EncodeTable(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"requests","rows":[]}`, string(msg))
}

func TestHubSendsSnapshotThenUpdates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := New()
	go h.Run(ctx)

	snapshot, err := EncodeTable([]services.RequestRow{{Index: 0, Name: "Ada", Status: models.RequestStatusPending}})
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeWS(w, r, snapshot)
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	_, first, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "pending", gjson.GetBytes(first, "rows.0.status").String())

	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	h.Publish([]services.RequestRow{{Index: 0, Name: "Ada", Status: models.RequestStatusApproved}})

	_, update, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "requests", gjson.GetBytes(update, "type").String())
	assert.Equal(t, "approved", gjson.GetBytes(update, "rows.0.status").String())

	conn.Close()
	require.Eventually(t, func() bool { return h.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestPublishWithoutClientsDoesNotBlock(t *testing.T) {
	h := New()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 200; i++ {
			h.Publish(nil)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked without a running hub")
	}
}

func TestIdleConnectionSurvivesPongWindow(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := New()
	h.pongWait = 300 * time.Millisecond
	h.pingPeriod = 100 * time.Millisecond
	go h.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeWS(w, r, nil)
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	var pings atomic.Int32
	conn.SetPingHandler(func(data string) error {
		pings.Add(1)
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
	})

	messages := make(chan []byte, 1)
	go func() {
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			messages <- msg
		}
	}()

	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	time.Sleep(1 * time.Second)
	assert.Equal(t, 1, h.ClientCount())
	assert.GreaterOrEqual(t, pings.Load(), int32(3))

	h.Publish([]services.RequestRow{{Index: 0, Name: "Ada", Status: models.RequestStatusRejected}})

	select {
	case msg := <-messages:
		assert.Equal(t, "rejected", gjson.GetBytes(msg, "rows.0.status").String())
	case <-time.After(2 * time.Second):
		t.Fatal("idle connection stopped receiving updates")
	}
}
