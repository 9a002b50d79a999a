package pipe

import (
	"context"
	"sync"

	"github.com/Daryl-03/web-server-go/transport"
	"github.com/benbjohnson/clock"
)

// Listener hands out pipe connections fed through Dial.
type Listener struct {
	addr Addr
	clk  clock.Clock

	conns chan *Conn

	mu     sync.Mutex
	closed bool
}

var _ transport.ConnListener = (*Listener)(nil)

func NewListener(name string, clk clock.Clock) *Listener {
	return &Listener{
		addr:  Addr{Name: name},
		clk:   clk,
		conns: make(chan *Conn),
	}
}

func (l *Listener) Accept(ctx context.Context) (transport.Conn, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case conn, ok := <-l.conns:
		if !ok {
			return nil, transport.ErrConnListenerClosed
		}
		return conn, nil
	}
}

// Dial creates a connected pair, delivers one end to a pending Accept
// and returns the other. It blocks until the connection is accepted.
func (l *Listener) Dial(ctx context.Context) (*Conn, error) {
	// The lock is held across the send so Close cannot close the
	// channel out from under a blocked Dial.
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil, transport.ErrConnListenerClosed
	}

	server, client := Pair(l.addr.Name, "dialer", l.clk)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case l.conns <- server:
		return client, nil
	}
}

func (l *Listener) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return transport.ErrConnListenerClosed
	}
	l.closed = true
	close(l.conns)

	return nil
}

func (l *Listener) Addr() transport.Addr { return l.addr }
