package ifacemulticast

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJoinAllSkipsLoopbackInterfaces(t *testing.T) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero, Port: 0})
	require.NoError(t, err)
	defer conn.Close()

	results, err := JoinAll(conn, net.IPv4(239, 0, 0, 1))
	require.NoError(t, err)

	for _, r := range results {
		require.NotEqual(t, "lo", r.Interface, "loopback must never be joined")
	}
}
