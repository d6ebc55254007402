package avatar

import (
	"fmt"
	"sync"
	"time"

	"github.com/VRC-Haptics/VRCH-Server-sub000/pkg/haptic"
	"github.com/VRC-Haptics/VRCH-Server-sub000/pkg/paramcache"
)

// State is the avatar session's lifecycle stage.
type State uint8

const (
	// Idle: no avatar change has been observed yet.
	Idle State = iota
	// Discovering: an avatar ID is known but its prefab hasn't resolved
	// (either no haptic prefab parameters were found, or loading is still
	// in flight).
	Discovering
	// Tracking: a prefab has been loaded and its nodes are being refreshed
	// into the global map every tick.
	Tracking
)

// Default cache-node smoothing parameters. Not present in the retrieved
// source (cache.rs wires CacheNode with config sourced from elsewhere in
// the original project outside the filtered prep window); chosen as
// reasonable defaults for a 0-1 contact/proximity parameter.
const (
	defaultMaxEntries     = 20
	defaultSmoothingTime  = 150 * time.Millisecond
	defaultPositionWeight = float32(0.7)
	defaultVelMult        = float32(0.5)
	defaultContactScale   = float32(1.0)
)

// Session tracks the currently-worn VRChat avatar: its ID, its resolved
// haptic Prefab (if any), and the rolling cache of every avatar parameter
// value observed over OSC. Its RefreshHook is registered with a
// haptic.GlobalMap so every tick reasserts the prefab's nodes from the
// latest cached values.
type Session struct {
	mu          sync.RWMutex
	state       State
	avatarID    string
	prefab      *Prefab
	prefabErr   error
	descriptors map[string]struct{}

	prefabDirs []string

	cacheMu sync.Mutex
	cache   map[string]*paramcache.Node
}

// NewSession returns an idle Session that will search prefabDirs when
// resolving prefabs by avatar parameter.
func NewSession(prefabDirs []string) *Session {
	return &Session{
		prefabDirs:  prefabDirs,
		cache:       make(map[string]*paramcache.Node),
		descriptors: make(map[string]struct{}),
	}
}

// State reports the session's current lifecycle stage.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// AvatarID returns the currently tracked avatar ID, or "" if Idle.
func (s *Session) AvatarID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.avatarID
}

// OnAvatarChange handles a "/avatar/change" OSC message: records the new
// avatar ID and resets its config to Discovering. If a prefab descriptor
// is already known (e.g. a future companion-endpoint lookup resolves one
// up front), it's merged in immediately; otherwise the session waits for
// descriptors to be announced on the parameter stream itself (see
// OnParameter), merging each one as it arrives per spec.md §4.1.
func (s *Session) OnAvatarChange(avatarID, prefabAuthor, prefabName string, prefabVersion uint32) {
	s.mu.Lock()
	s.avatarID = avatarID
	s.prefab = nil
	s.prefabErr = nil
	s.state = Discovering
	s.descriptors = make(map[string]struct{})
	s.mu.Unlock()

	s.clearCacheLocked()

	if prefabAuthor != "" && prefabName != "" {
		s.mergeDescriptor(prefabAuthor, prefabName, prefabVersion)
	}
}

func (s *Session) clearCacheLocked() {
	s.cacheMu.Lock()
	s.cache = make(map[string]*paramcache.Node)
	s.cacheMu.Unlock()
}

// descriptorKey identifies one (author, name, version) prefab descriptor
// for dedup across repeated parameter announcements.
func descriptorKey(author, name string, version uint32) string {
	return fmt.Sprintf("%s/%s/v%d", author, name, version)
}

// mergeDescriptor loads one more prefab descriptor and folds it into the
// session's active config. The first descriptor for an avatar becomes the
// active config outright; every subsequent one is composed into it per
// spec.md §4.1: node lists are concatenated, and author/map names are
// joined with "+". Descriptors are deduped by (author, name, version) so
// a repeated parameter announcement (VRChat resends synced params on
// reconnect) doesn't merge the same prefab in twice.
func (s *Session) mergeDescriptor(author, name string, version uint32) {
	if author == "" || name == "" {
		return
	}
	key := descriptorKey(author, name, version)

	s.mu.RLock()
	_, seen := s.descriptors[key]
	s.mu.RUnlock()
	if seen {
		return
	}

	prefab, err := LoadPrefab(author, name, version, s.prefabDirs)
	if err != nil {
		s.mu.Lock()
		s.prefabErr = err
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, seen := s.descriptors[key]; seen {
		return
	}
	s.descriptors[key] = struct{}{}

	if s.prefab == nil {
		s.prefab = prefab
	} else {
		s.prefab.Nodes = append(s.prefab.Nodes, prefab.Nodes...)
		s.prefab.Meta.MapAuthor = s.prefab.Meta.MapAuthor + "+" + prefab.Meta.MapAuthor
		s.prefab.Meta.MapName = s.prefab.Meta.MapName + "+" + prefab.Meta.MapName
	}
	s.prefabErr = nil
	s.state = Tracking
}

// LastPrefabError returns the error from the most recent failed prefab
// resolution, or nil.
func (s *Session) LastPrefabError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefabErr
}

// OnParameter feeds a received avatar parameter value into the rolling
// cache, after stripping any VRCFury version prefix from its address. A
// prefab descriptor address (/avatar/parameters/haptic/prefabs/<author>/
// <name>/v<version>) is not cached as an intensity value: its presence on
// the stream is itself the "announcement" spec.md §4.1 merges on.
func (s *Session) OnParameter(address string, value paramcache.Value) error {
	addr := RemoveVersion(address)

	if author, name, version, ok := parsePrefabPath(addr); ok {
		s.mergeDescriptor(author, name, version)
		return nil
	}

	s.cacheMu.Lock()
	node, ok := s.cache[addr]
	if !ok {
		node = paramcache.NewNode(value.Kind, defaultMaxEntries, defaultSmoothingTime,
			defaultPositionWeight, defaultVelMult, defaultContactScale)
		s.cache[addr] = node
	}
	s.cacheMu.Unlock()

	if err := node.Update(value); err != nil {
		return fmt.Errorf("avatar: update %s: %w", addr, err)
	}
	return nil
}

// RefreshHook is registered with a haptic.GlobalMap (via RegisterRefresh)
// and reasserts every prefab node's latest cached intensity at the start
// of each tick.
func (s *Session) RefreshHook(m *haptic.GlobalMap) {
	s.mu.RLock()
	prefab := s.prefab
	state := s.state
	s.mu.RUnlock()

	if state != Tracking || prefab == nil {
		return
	}

	for _, n := range prefab.Nodes {
		s.cacheMu.Lock()
		cacheNode, ok := s.cache[n.Address]
		s.cacheMu.Unlock()
		if !ok {
			continue
		}

		id := haptic.ID(n.Address)
		m.Upsert(n.NodeData, []string{n.TargetBone}, id, cacheNode.Latest())
	}
}
