// Package ifacemulticast joins a UDP socket to a multicast group on every
// eligible network interface concurrently, the Go analog of the source's
// per-interface join_multicast_v4 loop (devices/wifi/discovery.rs).
package ifacemulticast

import (
	"fmt"
	"net"

	"github.com/sourcegraph/conc/pool"
	"golang.org/x/net/ipv4"
)

// JoinResult records the outcome of joining the group on one interface.
type JoinResult struct {
	Interface string
	Err       error
}

// JoinAll joins conn to group on every non-loopback, multicast-capable
// IPv4 interface that is up, with at most eight joins running at once. A
// failure to join on a particular interface (common for virtual/down
// adapters) is reported in the returned slice rather than aborting the
// others, mirroring the source's per-interface `.ok()` swallow-and-continue.
// The returned error is set only when the host's interfaces cannot be
// listed.
func JoinAll(conn *net.UDPConn, group net.IP) ([]JoinResult, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("ifacemulticast: list interfaces: %w", err)
	}

	pc := ipv4.NewPacketConn(conn)

	p := pool.New().WithMaxGoroutines(8)
	results := make([]JoinResult, len(ifaces))

	for i, iface := range ifaces {
		i, iface := i, iface
		p.Go(func() {
			results[i] = joinOne(pc, iface, group)
		})
	}
	p.Wait()

	out := make([]JoinResult, 0, len(ifaces))
	for _, r := range results {
		if r.Interface != "" {
			out = append(out, r)
		}
	}
	return out, nil
}

func joinOne(pc *ipv4.PacketConn, iface net.Interface, group net.IP) JoinResult {
	if iface.Flags&net.FlagLoopback != 0 || iface.Flags&net.FlagMulticast == 0 {
		return JoinResult{}
	}
	if iface.Flags&net.FlagUp == 0 {
		return JoinResult{}
	}

	err := pc.JoinGroup(&iface, &net.UDPAddr{IP: group})
	return JoinResult{Interface: iface.Name, Err: err}
}
