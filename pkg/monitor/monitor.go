// Package monitor is an optional progress-broadcast server the CLI driver
// can start before calling render.Render: connected websocket clients
// receive a {processed, total, elapsed_ms, done} frame once per poll interval
// of the scheduler's Progress counter, on the same upgrade-then-fan-out shape as the
// dashboard's WebSocketConnection/wsUpgrader pair, generalized from
// per-event push to ticker-driven polling of a lock-free counter so the
// sampling hot path (spec.md §5) never sees a lock.
package monitor

import (
	"encoding/json"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/df07/lightmetrica-go/pkg/scheduler"
)

// Frame is one progress snapshot broadcast to every connected client.
type Frame struct {
	Processed uint64 `json:"processed"`
	Total     uint64 `json:"total"`
	ElapsedMs int64  `json:"elapsed_ms"`
	Done      bool   `json:"done"`
}

// connection wraps one upgraded websocket with its own send queue, mirroring
// WebSocketConnection's SendQueue so a slow reader can't stall the poller.
type connection struct {
	conn      *websocket.Conn
	sendQueue chan []byte
}

// Server polls a *scheduler.Progress on an interval and fans the resulting
// Frame out to every connected client over websocket.
type Server struct {
	upgrader websocket.Upgrader
	progress *scheduler.Progress
	interval time.Duration
	start    time.Time

	mu    sync.RWMutex
	conns map[*connection]struct{}

	httpServer *http.Server
}

// New creates a Server polling progress every interval (defaulting to
// 200ms if interval <= 0).
func New(progress *scheduler.Progress, interval time.Duration) *Server {
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	return &Server{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		progress: progress,
		interval: interval,
		conns:    make(map[*connection]struct{}),
	}
}

// Start begins serving websocket upgrades at addr and broadcasting progress
// frames, returning immediately; call Close to end it.
func (s *Server) Start(addr string) error {
	s.start = time.Now()

	mux := http.NewServeMux()
	mux.HandleFunc("/progress", s.handleWebSocket)
	s.httpServer = &http.Server{Addr: addr, Handler: mux}

	go s.broadcastLoop()

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Printf("monitor: serve error: %v", err)
		}
	}()
	return nil
}

// Close shuts down the HTTP server and every open connection.
func (s *Server) Close() error {
	s.mu.Lock()
	for c := range s.conns {
		c.conn.Close()
		delete(s.conns, c)
	}
	s.mu.Unlock()
	if s.httpServer != nil {
		return s.httpServer.Close()
	}
	return nil
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("monitor: upgrade error: %v", err)
		return
	}
	c := &connection{conn: conn, sendQueue: make(chan []byte, 16)}

	s.mu.Lock()
	s.conns[c] = struct{}{}
	s.mu.Unlock()

	go s.sender(c)
	go s.reader(c)
}

// reader drains and discards incoming messages purely to detect disconnects;
// this server takes no client input.
func (s *Server) reader(c *connection) {
	defer s.drop(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) sender(c *connection) {
	for msg := range c.sendQueue {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			s.drop(c)
			return
		}
	}
}

func (s *Server) drop(c *connection) {
	s.mu.Lock()
	if _, ok := s.conns[c]; ok {
		delete(s.conns, c)
		close(c.sendQueue)
	}
	s.mu.Unlock()
	c.conn.Close()
}

func (s *Server) broadcastLoop() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for range ticker.C {
		frame := Frame{
			Processed: s.progress.Processed(),
			Total:     s.progress.Total(),
			ElapsedMs: time.Since(s.start).Milliseconds(),
		}
		frame.Done = frame.Total > 0 && frame.Processed >= frame.Total
		s.broadcast(frame)
		if frame.Done {
			return
		}
	}
}

func (s *Server) broadcast(frame Frame) {
	data, err := json.Marshal(frame)
	if err != nil {
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range s.conns {
		select {
		case c.sendQueue <- data:
		default:
			// slow client, drop this frame rather than block the poller
		}
	}
}
