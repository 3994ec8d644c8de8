package telnet

import (
	"bufio"
	"bytes"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Telnet command bytes (RFC 854).
const (
	IAC  byte = 255
	DONT byte = 254
	DO   byte = 253
	WONT byte = 252
	WILL byte = 251
	SB   byte = 250
	GA   byte = 249
	NOP  byte = 241
	SE   byte = 240

	OptEcho            byte = 1
	OptSuppressGoAhead byte = 3
	OptLinemode        byte = 34
)

type iacState int

const (
	stateData iacState = iota
	stateCommand
	stateOption
	stateSub
	stateSubIAC
)

// iacFilter strips Telnet commands from a byte stream one byte at a time.
// An escaped IAC IAC yields a single 0xFF data byte.
type iacFilter struct {
	state iacState
}

// feed consumes b and reports whether it is a data byte.
func (f *iacFilter) feed(b byte) (byte, bool) {
	switch f.state {
	case stateCommand:
		switch b {
		case WILL, WONT, DO, DONT:
			f.state = stateOption
		case SB:
			f.state = stateSub
		case IAC:
			f.state = stateData
			return IAC, true
		default:
			f.state = stateData
		}
	case stateOption:
		f.state = stateData
	case stateSub:
		if b == IAC {
			f.state = stateSubIAC
		}
	case stateSubIAC:
		if b == SE {
			f.state = stateData
		} else {
			f.state = stateSub
		}
	default:
		if b == IAC {
			f.state = stateCommand
			return 0, false
		}
		return b, true
	}
	return 0, false
}

// FilterIAC returns input with every Telnet command sequence removed.
func FilterIAC(input []byte) []byte {
	var f iacFilter
	out := make([]byte, 0, len(input))
	for _, b := range input {
		if d, ok := f.feed(b); ok {
			out = append(out, d)
		}
	}
	return out
}

// Conn is one Telnet session over a TCP connection. Writes are serialised so
// broadcasts from other sessions may interleave only between whole lines.
type Conn struct {
	id     string
	raw    net.Conn
	reader *bufio.Reader
	filter iacFilter
	// afterCR is set when the previous line ended in CR, so a following LF
	// or NUL completes the terminator instead of ending an empty line.
	afterCR bool

	mu           sync.Mutex
	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewConn wraps raw and assigns the session a random id.
//
// Precondition: raw must be open.
func NewConn(raw net.Conn, readTimeout, writeTimeout time.Duration) *Conn {
	return &Conn{
		id:           uuid.NewString(),
		raw:          raw,
		reader:       bufio.NewReaderSize(raw, 4096),
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

// ID returns the session id.
func (c *Conn) ID() string { return c.id }

// RemoteAddr returns the client's address.
func (c *Conn) RemoteAddr() net.Addr { return c.raw.RemoteAddr() }

// Negotiate offers to suppress go-ahead.
func (c *Conn) Negotiate() error {
	return c.Write([]byte{IAC, WILL, OptSuppressGoAhead})
}

// ReadLine returns the next line without its terminator. CR, LF and CRLF all
// end a line; control characters other than tab are dropped.
//
// Postcondition: On error the partial line read so far is returned.
func (c *Conn) ReadLine() (string, error) {
	if c.readTimeout > 0 {
		_ = c.raw.SetReadDeadline(time.Now().Add(c.readTimeout))
	}

	var line bytes.Buffer
	for {
		raw, err := c.reader.ReadByte()
		if err != nil {
			return line.String(), err
		}
		b, ok := c.filter.feed(raw)
		if !ok {
			continue
		}
		afterCR := c.afterCR
		c.afterCR = false
		switch {
		case b == '\r':
			c.afterCR = true
			return line.String(), nil
		case b == '\n':
			if afterCR && line.Len() == 0 {
				continue
			}
			return line.String(), nil
		case b < 32 && b != '\t':
		default:
			line.WriteByte(b)
		}
	}
}

// ReadPassword reads a line with client echo turned off.
func (c *Conn) ReadPassword() (string, error) {
	if err := c.Write([]byte{IAC, WILL, OptEcho}); err != nil {
		return "", err
	}
	line, err := c.ReadLine()
	_ = c.Write([]byte{IAC, WONT, OptEcho, '\r', '\n'})
	return line, err
}

// WriteLine writes text followed by CRLF. Embedded newlines are converted to
// CRLF.
func (c *Conn) WriteLine(text string) error {
	return c.Write([]byte(crlf(text) + "\r\n"))
}

// WritePrompt writes text with no line terminator.
func (c *Conn) WritePrompt(text string) error {
	return c.Write([]byte(text))
}

// Write writes data as a single unit.
func (c *Conn) Write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeTimeout > 0 {
		_ = c.raw.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	_, err := c.raw.Write(data)
	return err
}

// Close closes the connection. Blocked reads return an error.
func (c *Conn) Close() error {
	return c.raw.Close()
}

func crlf(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", "\r\n")
}
