package gamesession

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/VRC-Haptics/VRCH-Server-sub000/pkg/event"
	"github.com/VRC-Haptics/VRCH-Server-sub000/pkg/gamesession/devicemaps"
	"github.com/VRC-Haptics/VRCH-Server-sub000/pkg/haptic"
	"github.com/VRC-Haptics/VRCH-Server-sub000/pkg/spatial"
)

// bhapticsV3Tag marks every InputNode this session installs for a
// connected device, so they can all be bulk-removed on disconnect without
// disturbing any other tagged input (avatar parameters, for instance).
const bhapticsV3Tag = "Bhaptics_V3"

// ApiInfo is the application identity a connected bHaptics SDK client
// authenticated with.
type ApiInfo struct {
	ApplicationID string
	APIKey        string
	CreatorID     string
	WorkspaceID   string
}

// Session tracks one bHaptics v3 game connection: its authenticated
// identity, resolved event catalog, and the event names it has triggered
// since the orchestrator's last tick.
type Session struct {
	httpClient *http.Client

	mu      sync.RWMutex
	apiInfo *ApiInfo
	name    string
	catalog map[string][]*event.Event

	pendingMu     sync.Mutex
	pendingEvents []string
	stopRequested bool

	sendMu sync.Mutex
	send   func(v any) error
}

// NewSession returns an idle Session. httpClient may be nil to use
// http.DefaultClient for catalog fetches.
func NewSession(httpClient *http.Client) *Session {
	return &Session{
		httpClient: httpClient,
		catalog:    make(map[string][]*event.Event),
	}
}

// bindSender attaches the function used to deliver outbound messages to
// the currently open WebSocket connection, or nil on disconnect.
func (s *Session) bindSender(send func(v any) error) {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	s.send = send
}

func (s *Session) sendLocked(v any) {
	s.sendMu.Lock()
	sender := s.send
	s.sendMu.Unlock()

	if sender == nil {
		slog.Warn("gamesession: no active connection available to send on")
		return
	}
	if err := sender(v); err != nil {
		slog.Error("gamesession: send failed", "err", err)
	}
}

// OnConnect installs the canonical bHaptics v3 motor layout into m as
// Bhaptics_V3-tagged InputNodes, so device-tick intensity lookups have
// something to interpolate into even before a play event arrives.
func (s *Session) OnConnect(m *haptic.GlobalMap) {
	for _, loc := range devicemaps.All {
		for index := 0; index < loc.MotorCount(); index++ {
			id, ok := loc.ID(index)
			if !ok {
				continue
			}
			// Groups is set to the wildcard All rather than a concrete body
			// region: the source device-insertion code does the same,
			// leaving every bHaptics motor matching any input regardless of
			// location (see the open question on All's bypass semantics).
			node := haptic.Node{
				Position: loc.Position(index),
				Groups:   spatial.NewGroupSet(spatial.All),
			}
			m.Upsert(node, []string{bhapticsV3Tag, loc.InputTag()}, id, 0)
		}
	}
}

// OnDisconnect removes every InputNode this session installed.
func (s *Session) OnDisconnect(m *haptic.GlobalMap) {
	m.RemoveAllWithTag(bhapticsV3Tag)
}

// Connected reports whether a WebSocket connection currently has its
// sender bound (i.e. a bHaptics client is actively attached).
func (s *Session) Connected() bool {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	return s.send != nil
}

// HandleMessage dispatches one decoded inbound message.
func (s *Session) HandleMessage(msg any) {
	switch m := msg.(type) {
	case AuthInitMessage:
		s.handleAuthInit(m)
	case PlayMessage:
		s.handlePlay(m)
	case StopAllMessage:
		s.handleStopAll()
	default:
		slog.Warn("gamesession: unhandled message type", "type", fmt.Sprintf("%T", msg))
	}
}

func (s *Session) handleAuthInit(msg AuthInitMessage) {
	info := &ApiInfo{
		ApplicationID: msg.Authentication.ApplicationID,
		APIKey:        msg.Authentication.SdkAPIKey,
		CreatorID:     msg.Haptic.Message.Creator,
		WorkspaceID:   msg.Haptic.Message.WorkspaceID,
	}

	s.mu.Lock()
	s.apiInfo = info
	s.name = msg.Haptic.Message.Name
	s.mu.Unlock()

	eventNames := make([]string, 0, len(msg.Haptic.Message.HapticMappings))
	for _, hm := range msg.Haptic.Message.HapticMappings {
		eventNames = append(eventNames, hm.Key)
	}
	s.sendLocked(handshakeResponse(eventNames))

	go s.refreshCatalog(info, int32(msg.Haptic.Message.Version))
}

func (s *Session) refreshCatalog(info *ApiInfo, version int32) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultFetchTimeout)
	defer cancel()

	mapping, err := FetchCatalog(ctx, s.httpClient, info.APIKey, info.ApplicationID, version)
	if err != nil {
		slog.Warn("gamesession: catalog fetch failed", "err", err)
		return
	}

	catalog := make(map[string][]*event.Event, len(mapping.HapticMappings))
	for _, hm := range mapping.HapticMappings {
		catalog[hm.Key] = PatternToEvents(hm)
	}

	s.mu.Lock()
	s.catalog = catalog
	s.mu.Unlock()
}

func (s *Session) handlePlay(msg PlayMessage) {
	s.pendingMu.Lock()
	s.pendingEvents = append(s.pendingEvents, msg.EventName)
	s.pendingMu.Unlock()
}

func (s *Session) handleStopAll() {
	s.pendingMu.Lock()
	s.stopRequested = true
	s.pendingMu.Unlock()
}

// Tick drains any event names triggered since the last call and starts the
// corresponding catalog events on pool, then services any pending stop
// request. Called once per orchestrator tick.
func (s *Session) Tick(pool *event.Pool) {
	s.pendingMu.Lock()
	names := s.pendingEvents
	s.pendingEvents = nil
	stop := s.stopRequested
	s.stopRequested = false
	s.pendingMu.Unlock()

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, name := range names {
		events, ok := s.catalog[name]
		if !ok {
			slog.Debug("gamesession: play requested unknown event", "name", name)
			continue
		}
		// events are cached catalog templates shared across every play of
		// name; clone them so repeat playback doesn't hand the pool an
		// already-expired pointer from the previous play.
		fresh := make([]*event.Event, len(events))
		for i, ev := range events {
			fresh[i] = ev.Clone()
		}
		pool.Start(fresh...)
	}

	if stop {
		pool.Clear("Bhaptics")
	}
}
