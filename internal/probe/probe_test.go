package probe_test

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projectshome/hubd/internal/probe"
)

func TestTCP_OpenPort(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	port := ln.Addr().(*net.TCPAddr).Port
	assert.True(t, probe.TCP("127.0.0.1", port, time.Second))
}

func TestTCP_ClosedPort(t *testing.T) {
	// Grab a free port, then close it so nothing is listening.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	start := time.Now()
	reachable := probe.TCP("127.0.0.1", port, time.Second)
	elapsed := time.Since(start)

	assert.False(t, reachable)
	// A refused connection must not consume anywhere near the full budget,
	// and never exceed it by more than scheduling jitter.
	assert.Less(t, elapsed, 2*time.Second)
}

func TestTCP_ZeroTimeoutUsesDefault(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	port := ln.Addr().(*net.TCPAddr).Port
	assert.True(t, probe.TCP("127.0.0.1", port, 0))
}
