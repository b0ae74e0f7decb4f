package web

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/ashvale/ember/src/sys"
)

const logBacklogSize = 200

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The dashboard binds to localhost; same-origin checks would reject
	// reverse-proxied setups.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// LogHub fans bot log lines out to connected dashboard websockets and keeps
// a short backlog for new connections.
type LogHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]chan string
	backlog []string
}

func NewLogHub() *LogHub {
	h := &LogHub{clients: make(map[*websocket.Conn]chan string)}
	sys.RegisterLogTap(h.Broadcast)
	return h
}

// Broadcast queues a line for every client. Slow clients drop lines rather
// than blocking the logger.
func (h *LogHub) Broadcast(line string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.backlog = append(h.backlog, line)
	if len(h.backlog) > logBacklogSize {
		h.backlog = h.backlog[len(h.backlog)-logBacklogSize:]
	}

	for _, ch := range h.clients {
		select {
		case ch <- line:
		default:
		}
	}
}

func (h *LogHub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Backlog returns a copy of the retained lines.
func (h *LogHub) Backlog() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.backlog))
	copy(out, h.backlog)
	return out
}

func (h *LogHub) add(conn *websocket.Conn) chan string {
	ch := make(chan string, 64)
	h.mu.Lock()
	h.clients[conn] = ch
	h.mu.Unlock()
	return ch
}

func (h *LogHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	if ch, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		close(ch)
	}
	h.mu.Unlock()
	conn.Close()
}

// ServeWS upgrades the request and streams the backlog followed by live
// lines until the client goes away.
func (h *LogHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		sys.LogWeb("websocket upgrade failed: %v", err)
		return
	}

	for _, line := range h.Backlog() {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
			conn.Close()
			return
		}
	}

	ch := h.add(conn)
	defer h.remove(conn)

	// Reader goroutine to notice disconnects.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case line, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
