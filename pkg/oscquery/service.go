package oscquery

import (
	"context"
	"fmt"
	"sync"

	"github.com/enbility/zeroconf/v3"
)

// Service advertises this router's OSCQuery HTTP endpoint over mDNS (as
// "_oscjson._tcp") and, separately, the UDP OSC port it listens on (as
// "_osc._udp"), matching the two-service pattern VRChat itself advertises
// and expects from its peer.
const (
	oscJSONServiceType = "_oscjson._tcp"
	oscUDPServiceType  = "_osc._udp"
	serviceDomain      = "local."
)

// Endpoint describes the local ports this process exposes.
type Endpoint struct {
	Name     string
	HTTPPort int
	OSCPort  int
}

// Advertiser registers this process's OSCQuery HTTP endpoint and OSC UDP
// port on the local network so VRChat's own OSCQuery client can find it.
type Advertiser struct {
	mu         sync.Mutex
	httpServer *zeroconf.Server
	udpServer  *zeroconf.Server
}

// NewAdvertiser returns an idle Advertiser. Call Start to begin advertising.
func NewAdvertiser() *Advertiser {
	return &Advertiser{}
}

// Start registers both mDNS services for ep. Calling Start again replaces
// any previously registered services.
func (a *Advertiser) Start(ep Endpoint) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.shutdownLocked()

	httpServer, err := zeroconf.Register(ep.Name, oscJSONServiceType, serviceDomain, ep.HTTPPort, nil, nil)
	if err != nil {
		return fmt.Errorf("oscquery: register http service: %w", err)
	}

	udpServer, err := zeroconf.Register(ep.Name, oscUDPServiceType, serviceDomain, ep.OSCPort, nil, nil)
	if err != nil {
		httpServer.Shutdown()
		return fmt.Errorf("oscquery: register osc service: %w", err)
	}

	a.httpServer = httpServer
	a.udpServer = udpServer
	return nil
}

// Stop withdraws any active advertisements.
func (a *Advertiser) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.shutdownLocked()
}

func (a *Advertiser) shutdownLocked() {
	if a.httpServer != nil {
		a.httpServer.Shutdown()
		a.httpServer = nil
	}
	if a.udpServer != nil {
		a.udpServer.Shutdown()
		a.udpServer = nil
	}
}

// Peer is a discovered OSCQuery-capable peer on the network (VRChat itself,
// in practice).
type Peer struct {
	InstanceName string
	Host         string
	Port         uint16
	Addresses    []string
}

// Discover browses for "_oscjson._tcp" peers until ctx is cancelled,
// emitting each one found on the returned channel. The channel is closed
// when ctx is done.
func Discover(ctx context.Context) (<-chan Peer, error) {
	out := make(chan Peer)
	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	go func() {
		defer close(out)
		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				select {
				case out <- entryToPeer(entry):
				case <-ctx.Done():
					return
				}
			case _, ok := <-removed:
				if !ok {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		_ = zeroconf.Browse(ctx, oscJSONServiceType, serviceDomain, entries, removed)
	}()

	return out, nil
}

func entryToPeer(entry *zeroconf.ServiceEntry) Peer {
	addrs := make([]string, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	for _, ip := range entry.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}

	return Peer{
		InstanceName: entry.Instance,
		Host:         entry.HostName,
		Port:         uint16(entry.Port),
		Addresses:    addrs,
	}
}
