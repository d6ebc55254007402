package osc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerDispatchesReceivedMessage(t *testing.T) {
	received := make(chan Message, 1)

	srv, err := NewServer(ServerConfig{
		Address:   "127.0.0.1:0",
		OnMessage: func(addr *net.UDPAddr, msg Message) { received <- msg },
	})
	require.NoError(t, err)
	defer srv.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	srv.Start(ctx)

	clientConn, err := net.DialUDP("udp", nil, srv.LocalAddr().(*net.UDPAddr))
	require.NoError(t, err)
	defer clientConn.Close()

	_, err = clientConn.Write(Encode(Message{Address: "/avatar/parameters/Foo", Args: []Arg{Float(0.3)}}))
	require.NoError(t, err)

	select {
	case msg := <-received:
		assert.Equal(t, "/avatar/parameters/Foo", msg.Address)
		assert.InDelta(t, 0.3, msg.Args[0].Float, 1e-6)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestServerFilterPrefixDropsNonMatching(t *testing.T) {
	received := make(chan Message, 1)

	srv, err := NewServer(ServerConfig{
		Address:      "127.0.0.1:0",
		FilterPrefix: "/avatar/",
		OnMessage:    func(addr *net.UDPAddr, msg Message) { received <- msg },
	})
	require.NoError(t, err)
	defer srv.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	srv.Start(ctx)

	clientConn, err := net.DialUDP("udp", nil, srv.LocalAddr().(*net.UDPAddr))
	require.NoError(t, err)
	defer clientConn.Close()

	_, err = clientConn.Write(Encode(Message{Address: "/other/path"}))
	require.NoError(t, err)
	_, err = clientConn.Write(Encode(Message{Address: "/avatar/parameters/Bar"}))
	require.NoError(t, err)

	select {
	case msg := <-received:
		assert.Equal(t, "/avatar/parameters/Bar", msg.Address)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
	}
}
