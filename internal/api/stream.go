package api

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/clawinfra/herald/internal/types"
)

const streamWriteTimeout = 5 * time.Second

// Stream pushes delivery records to connected WebSocket clients. The
// dispatcher feeds it through its delivery hook.
type Stream struct {
	mu     sync.Mutex
	conns  map[*websocket.Conn]struct{}
	logger *slog.Logger
}

// NewStream creates an empty delivery stream.
func NewStream(logger *slog.Logger) *Stream {
	if logger == nil {
		logger = slog.Default()
	}
	return &Stream{
		conns:  make(map[*websocket.Conn]struct{}),
		logger: logger.With("component", "stream"),
	}
}

// Broadcast sends one delivery record to every connected client. Clients
// that fail the write are dropped.
func (s *Stream) Broadcast(d types.Delivery) {
	s.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, conn := range conns {
		ctx, cancel := context.WithTimeout(context.Background(), streamWriteTimeout)
		err := wsjson.Write(ctx, conn, d)
		cancel()
		if err != nil {
			s.logger.Debug("dropping stream client", "error", err)
			s.remove(conn)
			conn.Close(websocket.StatusAbnormalClosure, "write failed")
		}
	}
}

// Len reports the number of connected clients.
func (s *Stream) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// HandleWS upgrades the connection and holds it open until the client
// disconnects. The stream is write-only; incoming frames are discarded.
func (s *Stream) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // accept any Origin for dev convenience
	})
	if err != nil {
		s.logger.Error("websocket accept failed", "error", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "stream ended")

	s.add(conn)
	defer s.remove(conn)

	s.logger.Info("stream client connected", "remote", r.RemoteAddr)

	// CloseRead keeps control frames flowing and signals disconnect.
	ctx := conn.CloseRead(r.Context())
	<-ctx.Done()

	s.logger.Debug("stream client disconnected", "remote", r.RemoteAddr)
}

func (s *Stream) add(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[conn] = struct{}{}
}

func (s *Stream) remove(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, conn)
}
