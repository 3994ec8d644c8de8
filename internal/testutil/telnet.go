package testutil

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"testing"
	"time"
)

// TelnetClient is a line-oriented client for exercising a Telnet server.
// Output is buffered across ReadUntil calls so nothing past a match is lost.
type TelnetClient struct {
	t      *testing.T
	conn   net.Conn
	buffer string
}

// NewTelnetClient dials addr.
//
// Postcondition: Returns a connected client or fails the test. The connection
// is closed on test cleanup.
func NewTelnetClient(t *testing.T, addr string) *TelnetClient {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		t.Fatalf("connecting to %s: %v", addr, err)
	}
	t.Cleanup(func() { conn.Close() })
	return &TelnetClient{t: t, conn: conn}
}

// ReadUntil returns everything received up to and including substr, keeping
// the remainder for the next call.
//
// Precondition: substr must be non-empty.
func (c *TelnetClient) ReadUntil(substr string, timeout time.Duration) string {
	c.t.Helper()
	if out, ok := c.take(substr); ok {
		return out
	}

	_ = c.conn.SetReadDeadline(time.Now().Add(timeout))
	tmp := make([]byte, 4096)
	for {
		n, err := c.conn.Read(tmp)
		if n > 0 {
			c.buffer += string(tmp[:n])
			if out, ok := c.take(substr); ok {
				return out
			}
		}
		if err != nil {
			c.t.Fatalf("reading until %q: got %q, error: %v", substr, c.buffer, err)
		}
	}
}

func (c *TelnetClient) take(substr string) (string, bool) {
	idx := strings.Index(c.buffer, substr)
	if idx < 0 {
		return "", false
	}
	end := idx + len(substr)
	out := c.buffer[:end]
	c.buffer = c.buffer[end:]
	return out, true
}

// Send writes text followed by CRLF.
func (c *TelnetClient) Send(text string) {
	c.t.Helper()
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if _, err := fmt.Fprintf(c.conn, "%s\r\n", text); err != nil {
		c.t.Fatalf("sending %q: %v", text, err)
	}
}

// WaitClosed drains output until the server hangs up and reports whether it
// did so within timeout.
func (c *TelnetClient) WaitClosed(timeout time.Duration) bool {
	_ = c.conn.SetReadDeadline(time.Now().Add(timeout))
	_, err := io.Copy(io.Discard, c.conn)
	return err == nil || !errors.Is(err, os.ErrDeadlineExceeded)
}

// Close closes the connection.
func (c *TelnetClient) Close() {
	c.conn.Close()
}
