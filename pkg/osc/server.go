package osc

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/VRC-Haptics/VRCH-Server-sub000/pkg/protolog"
)

// Handler is called for every decoded Message, after bundle unwrapping and
// prefix filtering.
type Handler func(addr *net.UDPAddr, msg Message)

// ServerConfig configures a Server.
type ServerConfig struct {
	// Address to listen on, e.g. "127.0.0.1:9001".
	Address string
	// FilterPrefix, if non-empty, drops every message whose Address does
	// not start with it.
	FilterPrefix string
	// OnMessage is invoked for every message that passes the filter.
	OnMessage Handler
	// OnError is invoked for receive/decode errors. Optional.
	OnError func(err error)
	// ProtoLog records every message this server accepts as a transport
	// layer frame event. Optional; nil disables protocol logging.
	ProtoLog protolog.Logger
}

// Server is a UDP OSC listener: one goroutine reads datagrams, decodes
// them (unwrapping bundles recursively) and dispatches matching messages
// to OnMessage.
type Server struct {
	cfg     ServerConfig
	conn    *net.UDPConn
	running atomic.Bool
	wg      sync.WaitGroup
	cancel  context.CancelFunc
}

// NewServer binds a UDP socket at cfg.Address. The server does not start
// reading until Start is called.
func NewServer(cfg ServerConfig) (*Server, error) {
	addr, err := net.ResolveUDPAddr("udp", cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("osc: resolve address: %w", err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("osc: listen: %w", err)
	}
	return &Server{cfg: cfg, conn: conn}, nil
}

// LocalAddr returns the bound socket address, useful when Address was
// given as ":0".
func (s *Server) LocalAddr() net.Addr {
	return s.conn.LocalAddr()
}

// Start launches the receive loop. Cancel ctx or call Stop to shut it
// down.
func (s *Server) Start(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.readLoop(ctx)
}

// Stop halts the receive loop and closes the socket.
func (s *Server) Stop() error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	if s.cancel != nil {
		s.cancel()
	}
	err := s.conn.Close()
	s.wg.Wait()
	return err
}

func (s *Server) readLoop(ctx context.Context) {
	defer s.wg.Done()

	buf := make([]byte, 1024)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, addr, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			if !s.running.Load() {
				return
			}
			if s.cfg.OnError != nil {
				s.cfg.OnError(fmt.Errorf("osc: receive: %w", err))
			}
			continue
		}

		packet, err := Decode(buf[:n])
		if err != nil {
			if s.cfg.OnError != nil {
				s.cfg.OnError(err)
			}
			continue
		}
		s.dispatch(addr, packet)
	}
}

func (s *Server) dispatch(addr *net.UDPAddr, p Packet) {
	if p.Message != nil {
		if s.cfg.FilterPrefix != "" && !hasPrefix(p.Message.Address, s.cfg.FilterPrefix) {
			return
		}
		if s.cfg.ProtoLog != nil {
			s.cfg.ProtoLog.Log(protolog.Event{
				Timestamp: time.Now(),
				Layer:     protolog.LayerTransport,
				Category:  protolog.CategoryFrame,
				OSCFrame: &protolog.OSCFrameEvent{
					Direction:  protolog.DirectionIn,
					Address:    p.Message.Address,
					Size:       len(Encode(*p.Message)),
					RemoteAddr: addr.String(),
				},
			})
		}
		if s.cfg.OnMessage != nil {
			s.cfg.OnMessage(addr, *p.Message)
		}
		return
	}
	for _, elem := range p.Bundle {
		s.dispatch(addr, elem)
	}
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

// Send encodes msg and writes it to addr over conn, logging a failed write
// at debug level.
func Send(conn *net.UDPConn, addr *net.UDPAddr, msg Message) error {
	_, err := conn.WriteToUDP(Encode(msg), addr)
	if err != nil {
		slog.Debug("osc send failed", "addr", addr, "error", err)
	}
	return err
}
