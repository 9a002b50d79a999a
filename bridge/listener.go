package bridge

import (
	"context"

	"github.com/Daryl-03/web-server-go/transport"
	"github.com/pkg/errors"
)

var ErrAcceptPending = errors.New("accept already pending")

// Listener serializes the accept step: exactly one accept may be in
// flight. A second concurrent Accept fails immediately and leaves the
// pending one undisturbed. Already-accepted connections are unaffected.
//
// The listening socket stays bound across accepts, so connections
// arriving between two Accept calls queue in the OS backlog instead of
// being dropped.
type Listener struct {
	tl transport.ConnListener

	accepting chan struct{} // capacity 1, holds the in-flight accept token
}

func NewListener(tl transport.ConnListener) *Listener {
	return &Listener{
		tl:        tl,
		accepting: make(chan struct{}, 1),
	}
}

func (l *Listener) Accept(ctx context.Context) (transport.Conn, error) {
	select {
	case l.accepting <- struct{}{}:
	default:
		return nil, ErrAcceptPending
	}
	defer func() { <-l.accepting }()

	return l.tl.Accept(ctx)
}

func (l *Listener) Close() error { return l.tl.Close() }
