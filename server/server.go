// Package server runs the accept loop and the per-connection
// request/response loops on top of the bridge layer.
package server

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Daryl-03/web-server-go/bridge"
	"github.com/Daryl-03/web-server-go/lib/bytebuf"
	"github.com/Daryl-03/web-server-go/transport"
	"github.com/benbjohnson/clock"
	"github.com/dchest/uniuri"
	"github.com/pkg/errors"
)

type Server struct {
	l *bridge.Listener

	closeListener func()
	wg            sync.WaitGroup

	logger *slog.Logger
	clock  clock.Clock

	handle HandleFunc
	opts   Options
}

func New(
	l *bridge.Listener,
	logger *slog.Logger,
	clk clock.Clock,
	handle HandleFunc,
	opts Options,
) *Server {
	if handle == nil {
		handle = DefaultHandler
	}

	return &Server{
		l:      l,
		logger: logger,
		clock:  clk,
		handle: handle,
		opts:   opts,
	}
}

// Start launches the accept loop. Each accepted connection is served
// on its own goroutine; an accept failure is logged and the accept
// retried. Connections in flight never block further accepts.
func (s *Server) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.closeListener = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.acceptConn(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) ||
					errors.Is(err, transport.ErrConnListenerClosed) {
					return
				}
				s.logger.Error("unexpected error when accepting connection", "error", err)
				continue
			}

			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				conn.serve()
			}()
		}
	}()
}

func (s *Server) acceptConn(ctx context.Context) (*conn, error) {
	con, err := s.l.Accept(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listening for connection")
	}

	bc := bridge.NewConn(con, s.clock, bridge.ConnOptions{
		ReadTimeout:    s.opts.IdleTimeout,
		ReadBufferSize: s.opts.ReadBufferSize,
	})

	return &conn{
		bc:     bc,
		buf:    bytebuf.New(),
		handle: s.handle,
		opts:   s.opts,
		logger: s.logger.With("conn", uniuri.NewLen(8), "remote", con.RemoteAddr().String()),
	}, nil
}

// Close stops accepting and waits for in-flight connections.
func (s *Server) Close() error {
	if s.closeListener != nil {
		s.closeListener()
	}
	if err := s.l.Close(); err != nil {
		s.logger.Warn("closing listener", "error", err)
	}
	s.wg.Wait()
	return nil
}
