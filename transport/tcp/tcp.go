// Package tcp adapts OS stream sockets to the [transport.Conn] contract.
package tcp

import (
	"context"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/Daryl-03/web-server-go/transport"
	"github.com/pkg/errors"
)

type Addr struct{ addr net.Addr }

var _ transport.Addr = Addr{}

func (a Addr) String() string {
	if a.addr == nil {
		return ""
	}
	return a.addr.String()
}

type Conn struct{ nc net.Conn }

var _ transport.Conn = (*Conn)(nil)

func (c *Conn) Read(p []byte) (int, error) {
	n, err := c.nc.Read(p)
	return n, mapErr(err)
}

func (c *Conn) Write(p []byte) (int, error) {
	n, err := c.nc.Write(p)
	return n, mapErr(err)
}

func (c *Conn) Close() error { return c.nc.Close() }

func (c *Conn) LocalAddr() transport.Addr  { return Addr{c.nc.LocalAddr()} }
func (c *Conn) RemoteAddr() transport.Addr { return Addr{c.nc.RemoteAddr()} }

func (c *Conn) SetReadDeadLine(t time.Time)  { _ = c.nc.SetReadDeadline(t) }
func (c *Conn) SetWriteDeadLine(t time.Time) { _ = c.nc.SetWriteDeadline(t) }

// mapErr translates OS socket errors into transport sentinels.
// A remote shutdown stays [io.EOF] so callers can tell clean
// end-of-stream apart from local closure.
func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF):
		return io.EOF
	case errors.Is(err, net.ErrClosed):
		return transport.ErrConnClosed
	default:
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return transport.ErrDeadLineExceeded
		}
		return err
	}
}

type Listener struct{ nl net.Listener }

var _ transport.ConnListener = (*Listener)(nil)

// Listen binds host:port. Host and port are explicit startup
// parameters; there is no environment or file based fallback.
func Listen(host string, port uint16) (*Listener, error) {
	nl, err := net.Listen("tcp", net.JoinHostPort(host, strconv.FormatUint(uint64(port), 10)))
	if err != nil {
		return nil, errors.Wrap(err, "binding listen socket")
	}

	return &Listener{nl: nl}, nil
}

func (l *Listener) Accept(ctx context.Context) (transport.Conn, error) {
	type result struct {
		conn net.Conn
		err  error
	}

	ch := make(chan result, 1)
	go func() {
		conn, err := l.nl.Accept()
		ch <- result{conn, err}
	}()

	select {
	case <-ctx.Done():
		go func() {
			// Reap the connection the abandoned accept may still deliver.
			if r := <-ch; r.conn != nil {
				_ = r.conn.Close()
			}
		}()
		return nil, ctx.Err()
	case r := <-ch:
		if r.err != nil {
			if errors.Is(r.err, net.ErrClosed) {
				return nil, transport.ErrConnListenerClosed
			}
			return nil, errors.Wrap(r.err, "accepting connection")
		}
		return &Conn{nc: r.conn}, nil
	}
}

func (l *Listener) Close() error { return l.nl.Close() }

func (l *Listener) Addr() transport.Addr { return Addr{l.nl.Addr()} }
