// Package pipe provides a synchronous in-memory transport so protocol
// tests can run without OS sockets.
package pipe

import (
	"bytes"
	"io"
	"sync"
	"time"

	"github.com/Daryl-03/web-server-go/transport"
	"github.com/benbjohnson/clock"
)

type Addr struct{ Name string }

var _ transport.Addr = Addr{}

func (a Addr) String() string { return a.Name }

// Conn is one end of an in-memory duplex stream. Writes rendezvous with
// the counterpart's reads. CloseWrite models a TCP half-close: the
// counterpart drains what is buffered and then sees io.EOF, while this
// end keeps reading.
type Conn struct {
	addr Addr

	in      chan []byte  // filled by the counterpart's writes
	pending bytes.Buffer // overflow from a partial copy on Read

	closed  chan struct{}
	wclosed chan struct{}
	once    sync.Once
	wonce   sync.Once

	writeMu sync.Mutex

	rdeadline *chanDeadLine
	wdeadline *chanDeadLine

	counterpart *Conn
}

var _ transport.Conn = (*Conn)(nil)

// Pair creates two connected pipe ends.
func Pair(name1, name2 string, clk clock.Clock) (c1, c2 *Conn) {
	c1 = newConn(name1, clk)
	c2 = newConn(name2, clk)
	c1.counterpart, c2.counterpart = c2, c1
	return c1, c2
}

func newConn(name string, clk clock.Clock) *Conn {
	return &Conn{
		addr:      Addr{Name: name},
		in:        make(chan []byte),
		closed:    make(chan struct{}),
		wclosed:   make(chan struct{}),
		rdeadline: newChanDeadLine(clk),
		wdeadline: newChanDeadLine(clk),
	}
}

func (c *Conn) LocalAddr() transport.Addr  { return c.addr }
func (c *Conn) RemoteAddr() transport.Addr { return c.counterpart.addr }

func (c *Conn) Read(p []byte) (n int, err error) {
	if isClosed(c.closed) {
		return 0, transport.ErrConnClosed
	}

	if c.pending.Len() > 0 {
		return c.pending.Read(p)
	}

	select {
	case b, ok := <-c.in:
		if !ok {
			// Counterpart closed its write side.
			return 0, io.EOF
		}
		n = copy(p, b)
		if n < len(b) {
			c.pending.Write(b[n:])
		}
		return n, nil
	case <-c.closed:
		return 0, transport.ErrConnClosed
	case <-c.rdeadline.wait():
		return 0, transport.ErrDeadLineExceeded
	}
}

func (c *Conn) Write(p []byte) (n int, err error) {
	switch {
	case isClosed(c.closed), isClosed(c.wclosed):
		return 0, transport.ErrConnClosed
	case len(p) == 0:
		return 0, nil
	}

	// Serialize writes to prevent interleaving.
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	cp := make([]byte, len(p))
	copy(cp, p)

	select {
	case c.counterpart.in <- cp:
		return len(cp), nil
	case <-c.closed:
		return 0, transport.ErrConnClosed
	case <-c.counterpart.closed:
		return 0, transport.ErrConnClosed
	case <-c.wdeadline.wait():
		return 0, transport.ErrDeadLineExceeded
	}
}

// CloseWrite closes only the write direction.
func (c *Conn) CloseWrite() error {
	c.wonce.Do(func() {
		close(c.wclosed)
		close(c.counterpart.in)
	})
	return nil
}

func (c *Conn) Close() error {
	_ = c.CloseWrite()
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *Conn) SetReadDeadLine(t time.Time)  { c.rdeadline.set(t) }
func (c *Conn) SetWriteDeadLine(t time.Time) { c.wdeadline.set(t) }

type chanDeadLine struct {
	clk clock.Clock

	t *clock.Timer
	m sync.Mutex

	closed chan struct{}
}

func newChanDeadLine(clk clock.Clock) *chanDeadLine {
	return &chanDeadLine{clk: clk, closed: make(chan struct{})}
}

func (d *chanDeadLine) set(t time.Time) {
	d.m.Lock()
	defer d.m.Unlock()

	if d.t != nil {
		d.t.Stop()
	}
	d.t = nil

	if isClosed(d.closed) {
		d.closed = make(chan struct{})
	}

	if t.IsZero() {
		// Zero value means no limit.
		return
	}

	d.t = d.clk.AfterFunc(d.clk.Until(t), func() {
		close(d.closed)
	})
}

func (d *chanDeadLine) wait() <-chan struct{} {
	d.m.Lock()
	defer d.m.Unlock()
	return d.closed
}

func isClosed(c <-chan struct{}) bool {
	select {
	case <-c:
		return true
	default:
		return false
	}
}
