package oscquery

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
)

// Method is one address this process exposes over OSC, as advertised to an
// OSCQuery client walking the tree.
type Method struct {
	Address     string
	TypeTag     string // OSC type-tag string, e.g. "f" or "T"
	Access      AccessLevel
	Description string
}

// Host serves the OSCQuery HTTP JSON tree describing every Method
// registered with it, plus the "?HOST_INFO" query VRChat issues before
// walking the tree.
type Host struct {
	name string

	mu      sync.RWMutex
	methods map[string]Method
}

// NewHost returns a Host advertising itself under name (VRChat uses this to
// label the peer in its own OSCQuery UI).
func NewHost(name string) *Host {
	return &Host{
		name:    name,
		methods: make(map[string]Method),
	}
}

// SetMethod registers or replaces the method at address.
func (h *Host) SetMethod(m Method) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.methods[m.Address] = m
}

// RemoveMethod drops address from the tree.
func (h *Host) RemoveMethod(address string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.methods, address)
}

// ServeHTTP answers the OSCQuery tree request (or HOST_INFO, when queried).
func (h *Host) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if _, ok := r.URL.Query()["HOST_INFO"]; ok {
		h.writeHostInfo(w)
		return
	}

	h.mu.RLock()
	tree := h.buildTree()
	h.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(tree); err != nil {
		slog.Error("oscquery: encode tree", "err", err)
	}
}

func (h *Host) writeHostInfo(w http.ResponseWriter) {
	info := struct {
		Name         string          `json:"NAME"`
		OSCTransport string          `json:"OSC_TRANSPORT"`
		OSCPort      int             `json:"OSC_PORT,omitempty"`
		OSCIP        string          `json:"OSC_IP,omitempty"`
		Extensions   map[string]bool `json:"EXTENSIONS"`
	}{
		Name:         h.name,
		OSCTransport: "UDP",
		Extensions: map[string]bool{
			"ACCESS":      true,
			"VALUE":       true,
			"DESCRIPTION": true,
		},
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(info)
}

// buildTree assembles the nested CONTENTS structure from the flat method
// map by splitting each address on '/', mirroring the recursive
// OscQueryNode shape the original client parses.
func (h *Host) buildTree() *rawNode {
	root := &rawNode{FullPath: "/", Contents: make(map[string]*rawNode)}

	for addr, m := range h.methods {
		segs := strings.Split(strings.TrimPrefix(addr, "/"), "/")
		cur := root
		path := ""
		for i, seg := range segs {
			if seg == "" {
				continue
			}
			path += "/" + seg
			child, ok := cur.Contents[seg]
			if !ok {
				child = &rawNode{FullPath: path, Contents: make(map[string]*rawNode)}
				cur.Contents[seg] = child
			}
			cur = child
			if i == len(segs)-1 {
				access := int(m.Access)
				cur.Access = &access
				cur.Description = m.Description
				cur.OSCType = m.TypeTag
			}
		}
	}

	return root
}
