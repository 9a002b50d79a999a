// Package bridge turns a raw stream transport into the sequential,
// one-operation-at-a-time surface the connection loop works against:
// chunk-oriented reads, whole-payload writes, sticky failures.
package bridge

import (
	"io"
	"sync"
	"time"

	"github.com/Daryl-03/web-server-go/transport"
	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

var ErrReadPending = errors.New("read already pending")

const defaultReadBufferSize = 4096

type ConnOptions struct {
	// ReadTimeout arms a read deadline before every Read.
	// Zero disables it.
	ReadTimeout time.Duration

	ReadBufferSize int
}

// Conn serializes access to one transport connection. At most one read
// may be outstanding; a second concurrent Read fails immediately with
// ErrReadPending. Once the transport reports a failure every later
// operation returns that same error.
type Conn struct {
	tc   transport.Conn
	clk  clock.Clock
	opts ConnOptions

	reading chan struct{} // capacity 1, holds the in-flight read token

	mu  sync.Mutex
	err error // sticky
}

func NewConn(tc transport.Conn, clk clock.Clock, opts ConnOptions) *Conn {
	if opts.ReadBufferSize <= 0 {
		opts.ReadBufferSize = defaultReadBufferSize
	}

	return &Conn{
		tc:      tc,
		clk:     clk,
		opts:    opts,
		reading: make(chan struct{}, 1),
	}
}

// Read returns the next chunk delivered by the transport. A nil chunk
// with a nil error means clean end-of-stream.
func (c *Conn) Read() ([]byte, error) {
	select {
	case c.reading <- struct{}{}:
	default:
		return nil, ErrReadPending
	}
	defer func() { <-c.reading }()

	if err := c.sticky(); err != nil {
		return nil, err
	}

	if c.opts.ReadTimeout > 0 {
		c.tc.SetReadDeadLine(c.clk.Now().Add(c.opts.ReadTimeout))
	}

	p := make([]byte, c.opts.ReadBufferSize)
	n, err := c.tc.Read(p)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		c.fail(err)
		return nil, err
	}

	return p[:n], nil
}

// Write sends the whole payload or fails. An empty payload is a no-op.
func (c *Conn) Write(p []byte) error {
	if len(p) == 0 {
		return nil
	}

	if err := c.sticky(); err != nil {
		return err
	}

	for len(p) > 0 {
		n, err := c.tc.Write(p)
		if err != nil {
			c.fail(err)
			return err
		}
		p = p[n:]
	}

	return nil
}

func (c *Conn) Close() error { return c.tc.Close() }

func (c *Conn) RemoteAddr() transport.Addr { return c.tc.RemoteAddr() }

func (c *Conn) sticky() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// fail records the first transport failure. Deadline expiry is kept
// out of the sticky state so a timeout response can still be written.
func (c *Conn) fail(err error) {
	if errors.Is(err, transport.ErrDeadLineExceeded) {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err == nil {
		c.err = err
	}
}
