package gamesession

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/VRC-Haptics/VRCH-Server-sub000/pkg/haptic"
	"github.com/VRC-Haptics/VRCH-Server-sub000/pkg/protolog"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServerConfig configures the bHaptics v3 TLS/WebSocket listener.
type ServerConfig struct {
	// Address is the loopback address and port to bind, e.g. "127.0.0.1:15882".
	Address   string
	TLSConfig *tls.Config
	Map       *haptic.GlobalMap
	Session   *Session
	// ProtoLog records every parsed client message as a wire layer event.
	// Optional; nil disables protocol logging.
	ProtoLog protolog.Logger
}

// Server is the single-listener TLS+WebSocket server bHaptics-compatible
// games connect to. Only one client connection is meaningful at a time;
// accepting a new one replaces the session's active sender.
type Server struct {
	cfg ServerConfig

	ln         net.Listener
	httpServer *http.Server
	running    atomic.Bool
	wg         sync.WaitGroup
}

// NewServer binds the TLS listener immediately so startup failures (port
// in use, bad TLS config) surface before Start is called.
func NewServer(cfg ServerConfig) (*Server, error) {
	ln, err := tls.Listen("tcp", cfg.Address, cfg.TLSConfig)
	if err != nil {
		return nil, fmt.Errorf("gamesession: bind %s: %w", cfg.Address, err)
	}

	s := &Server{cfg: cfg, ln: ln}
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleUpgrade)
	s.httpServer = &http.Server{Handler: mux}
	return s, nil
}

// Addr returns the bound listener address.
func (s *Server) Addr() net.Addr {
	return s.ln.Addr()
}

// Start begins serving connections. It returns immediately; serving
// happens on a background goroutine until ctx is cancelled or Stop is
// called.
func (s *Server) Start(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.httpServer.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("gamesession: serve error", "err", err)
		}
	}()

	go func() {
		<-ctx.Done()
		_ = s.Stop()
	}()
}

// Stop closes the listener and waits for the serve goroutine to exit.
func (s *Server) Stop() error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	err := s.httpServer.Close()
	s.wg.Wait()
	return err
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("gamesession: websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	session := s.cfg.Session
	session.OnConnect(s.cfg.Map)
	defer session.OnDisconnect(s.cfg.Map)

	var writeMu sync.Mutex
	session.bindSender(func(v any) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(v)
	})
	defer session.bindSender(nil)

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			slog.Info("gamesession: connection closed", "err", err)
			return
		}
		if msgType == websocket.PingMessage || msgType == websocket.PongMessage {
			continue
		}
		if msgType != websocket.TextMessage {
			slog.Warn("gamesession: ignoring non-text frame", "type", msgType)
			continue
		}

		msg, err := ParseReceived(data)
		if err != nil {
			slog.Error("gamesession: parse message", "err", err, "payload", string(data))
			continue
		}
		if s.cfg.ProtoLog != nil {
			s.cfg.ProtoLog.Log(protolog.Event{
				Timestamp: time.Now(),
				Layer:     protolog.LayerWire,
				Category:  protolog.CategoryMessage,
				GameMessage: &protolog.GameMessageEvent{
					Type: fmt.Sprintf("%T", msg),
				},
			})
		}
		session.HandleMessage(msg)
	}
}
