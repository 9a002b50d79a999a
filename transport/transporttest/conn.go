// Package transporttest provides a scripted in-memory [transport.Conn]
// for unit tests: reads deliver pre-arranged chunks one per call,
// writes are captured for inspection.
package transporttest

import (
	"bytes"
	"io"
	"sync"
	"time"

	"github.com/Daryl-03/web-server-go/transport"
)

type Addr string

func (a Addr) String() string { return string(a) }

type Conn struct {
	mu sync.Mutex

	chunks  [][]byte
	pending []byte

	// FinalErr is returned once the scripted chunks run out.
	// Defaults to io.EOF (clean end-of-stream).
	FinalErr error

	// WriteErr, when set, fails every Write.
	WriteErr error

	out    bytes.Buffer
	closed bool
}

var _ transport.Conn = (*Conn)(nil)

// NewConn scripts the connection to deliver each chunk on one Read.
func NewConn(chunks ...[]byte) *Conn {
	c := &Conn{FinalErr: io.EOF}
	for _, chunk := range chunks {
		c.chunks = append(c.chunks, bytes.Clone(chunk))
	}
	return c
}

func (c *Conn) Read(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0, transport.ErrConnClosed
	}

	if len(c.pending) == 0 {
		if len(c.chunks) == 0 {
			return 0, c.FinalErr
		}
		c.pending = c.chunks[0]
		c.chunks = c.chunks[1:]
	}

	n := copy(p, c.pending)
	c.pending = c.pending[n:]
	return n, nil
}

func (c *Conn) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.closed:
		return 0, transport.ErrConnClosed
	case c.WriteErr != nil:
		return 0, c.WriteErr
	}

	return c.out.Write(p)
}

// Written returns everything written so far.
func (c *Conn) Written() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return bytes.Clone(c.out.Bytes())
}

func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *Conn) LocalAddr() transport.Addr  { return Addr("test-local") }
func (c *Conn) RemoteAddr() transport.Addr { return Addr("test-remote") }

func (c *Conn) SetReadDeadLine(time.Time)  {}
func (c *Conn) SetWriteDeadLine(time.Time) {}
