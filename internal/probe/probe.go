// Package probe performs cheap, timeout-bounded reachability checks
// against TCP endpoints. A probe never fails with an error: connection
// refusal, timeout, and every other socket-level failure all collapse to
// "unreachable". The short timeout is the central latency guarantee of
// the dashboard, so a full aggregation pass stays bounded even when every
// subordinate system is down.
package probe

import (
	"net"
	"strconv"
	"time"
)

// DefaultTimeout bounds a single reachability check.
const DefaultTimeout = 1 * time.Second

// TCP reports whether a TCP connection to host:port can be established
// within the timeout. A non-positive timeout falls back to DefaultTimeout.
func TCP(host string, port int, timeout time.Duration) bool {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
