package web

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogHubBacklogIsBounded(t *testing.T) {
	h := &LogHub{clients: map[*websocket.Conn]chan string{}}
	for n := 0; n < logBacklogSize+50; n++ {
		h.Broadcast(fmt.Sprintf("line %d", n))
	}

	backlog := h.Backlog()
	require.Len(t, backlog, logBacklogSize)
	assert.Equal(t, "line 50", backlog[0])
	assert.Equal(t, fmt.Sprintf("line %d", logBacklogSize+49), backlog[len(backlog)-1])
}

func TestLogHubStreamsBacklogAndLiveLines(t *testing.T) {
	h := &LogHub{clients: map[*websocket.Conn]chan string{}}
	h.Broadcast("earlier line")

	srv := httptest.NewServer(http.HandlerFunc(h.ServeWS))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "earlier line", string(msg))

	// Wait for the client to register before the live broadcast.
	require.Eventually(t, func() bool { return h.ClientCount() == 1 },
		2*time.Second, 10*time.Millisecond)

	h.Broadcast("live line")
	_, msg, err = conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "live line", string(msg))
}

func TestLogHubDropsLinesForSlowClients(t *testing.T) {
	h := &LogHub{clients: map[*websocket.Conn]chan string{}}
	conn := &websocket.Conn{}
	ch := make(chan string, 1)
	h.clients[conn] = ch

	h.Broadcast("first")
	h.Broadcast("second") // buffer full, must not block

	assert.Equal(t, "first", <-ch)
	select {
	case line := <-ch:
		t.Fatalf("expected second line to be dropped, got %q", line)
	default:
	}
}
