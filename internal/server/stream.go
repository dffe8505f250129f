package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/hauslink/notify/internal/auth"
	"github.com/hauslink/notify/internal/notify"
	"go.uber.org/zap"
)

// StreamServer owns the long-lived push endpoints. Both transports feed the
// same registry through the notify.Handle interface, so the broadcaster
// never knows which one a user is on.
type StreamServer struct {
	logger            *zap.Logger
	upgrader          *websocket.Upgrader
	authenticator     *auth.Authenticator
	registry          *notify.Registry
	heartbeatInterval time.Duration
}

func NewStreamServer(
	logger *zap.Logger,
	upgrader *websocket.Upgrader,
	authenticator *auth.Authenticator,
	registry *notify.Registry,
	heartbeatInterval time.Duration,
) *StreamServer {
	return &StreamServer{
		logger,
		upgrader,
		authenticator,
		registry,
		heartbeatInterval,
	}
}

func (s *StreamServer) Register(router *mux.Router) {
	router.HandleFunc("/stream", s.handleSSE).Methods("GET")
	router.HandleFunc("/ws", s.handleWebSocket).Methods("GET")
}

func (s *StreamServer) handleSSE(w http.ResponseWriter, r *http.Request) {
	authentication, err := bearerAuthentication(s.authenticator, r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	handle := newSSEHandle(w, flusher)

	s.serve(r.Context(), authentication.Subject, handle)
}

func (s *StreamServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	authentication, err := bearerAuthentication(s.authenticator, r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	conn.SetReadLimit(1024)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// The stream is one-way; reads only detect the client going away.
	go func() {
		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				cancel()
				return
			}
		}
	}()

	s.serve(ctx, authentication.Subject, newWSHandle(conn))
}

// serve runs the connection lifecycle: register, one connected frame, then
// heartbeats until the transport dies or the client goes away. Teardown
// always stops the ticker, removes the registry entry and closes the handle.
func (s *StreamServer) serve(ctx context.Context, userId string, handle notify.Handle) {
	logger := s.logger.With(zap.String("userId", userId))

	s.registry.Register(userId, handle)

	logger.Info("stream connected",
		zap.Int("connections", s.registry.Count()))

	ticker := time.NewTicker(s.heartbeatInterval)

	defer func() {
		ticker.Stop()
		s.registry.Evict(userId, handle)
		handle.Close()

		logger.Info("stream closed",
			zap.Int("connections", s.registry.Count()))
	}()

	err := handle.Send(notify.NewConnectedFrame())
	if err != nil {
		logger.Warn("failed to send connected frame", zap.Error(err))
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := handle.Send(notify.NewHeartbeatFrame())
			if err != nil {
				logger.Warn("heartbeat write failed", zap.Error(err))
				return
			}
		}
	}
}

// sseHandle frames JSON payloads as text/event-stream data events. Writes
// are serialized; the heartbeat loop and broadcaster may race on one handle.
type sseHandle struct {
	mu      sync.Mutex
	writer  http.ResponseWriter
	flusher http.Flusher
	closed  bool
}

func newSSEHandle(writer http.ResponseWriter, flusher http.Flusher) *sseHandle {
	return &sseHandle{
		writer:  writer,
		flusher: flusher,
	}
}

func (h *sseHandle) Send(frame notify.Frame) error {
	payload, err := json.Marshal(frame)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return net.ErrClosed
	}

	_, err = fmt.Fprintf(h.writer, "data: %s\n\n", payload)
	if err != nil {
		return err
	}

	h.flusher.Flush()

	return nil
}

// Close marks the handle dead; the response body itself is closed by the
// http server when the handler returns.
func (h *sseHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true

	return nil
}

type wsHandle struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func newWSHandle(conn *websocket.Conn) *wsHandle {
	return &wsHandle{
		conn: conn,
	}
}

func (h *wsHandle) Send(frame notify.Frame) error {
	payload, err := json.Marshal(frame)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	return h.conn.WriteMessage(websocket.TextMessage, payload)
}

func (h *wsHandle) Close() error {
	// The underlying connection may already be gone; that is not an error
	// for teardown purposes.
	h.conn.Close()

	return nil
}
