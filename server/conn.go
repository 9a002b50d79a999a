package server

import (
	"io"
	"log/slog"

	"github.com/Daryl-03/web-server-go/bridge"
	"github.com/Daryl-03/web-server-go/http"
	"github.com/Daryl-03/web-server-go/http/body"
	"github.com/Daryl-03/web-server-go/http/status"
	"github.com/Daryl-03/web-server-go/lib/bytebuf"
	"github.com/Daryl-03/web-server-go/transport"
	"github.com/pkg/errors"
)

// conn drives one accepted connection: frame headers, parse, attach
// the body reader, dispatch, write the response, discard leftover
// body, repeat. Exactly one request is in flight at a time; the next
// request's headers are not touched until the current response is
// fully written and its body drained.
type conn struct {
	bc  *bridge.Conn
	buf *bytebuf.Buffer

	handle HandleFunc
	opts   Options

	logger *slog.Logger
}

func (c *conn) serve() {
	defer func() {
		c.logger.Debug("closing connection")
		if err := c.bc.Close(); err != nil {
			c.logger.Error("error when closing connection", "error", err)
		}
	}()

	for {
		req, err := c.nextRequest()
		if err != nil {
			if errors.Is(err, io.EOF) {
				// Clean closure between requests.
				return
			}
			c.reject(err)
			return
		}

		req.Body, err = body.ForRequest(c.bc, c.buf, req)
		if err != nil {
			c.reject(err)
			return
		}

		resp := c.handle(req)
		if resp == nil {
			c.logger.Error("handler returned no response")
			return
		}

		if err := http.WriteResponse(c.bc, resp, c.opts.ServerName); err != nil {
			c.logger.Error("unexpected error while writing response", "error", err)
			return
		}

		if req.Version == http.Version10 {
			// No further requests on a 1.0 connection.
			return
		}

		if err := body.Discard(req.Body); err != nil {
			c.reject(err)
			return
		}
	}
}

// nextRequest accumulates transport chunks until the buffer holds a
// complete header block, then cuts and parses it. io.EOF means the
// peer closed cleanly before starting another request.
func (c *conn) nextRequest() (*http.Request, error) {
	for {
		req, ok, err := http.CutMessage(c.buf)
		if err != nil {
			return nil, err
		}
		if ok {
			return req, nil
		}

		chunk, err := c.bc.Read()
		if err != nil {
			return nil, err
		}
		if len(chunk) == 0 {
			if c.buf.Len() == 0 {
				return nil, io.EOF
			}
			return nil, status.NewError(status.BadRequest, "Unexpected EOF")
		}

		c.buf.Push(chunk)
	}
}

// reject converts a failure into a best-effort error response.
// Protocol violations answer with their status code and message;
// timeouts answer 408; transport failures and anything unclassified
// get no response at all. The connection closes in every case.
func (c *conn) reject(err error) {
	var resp *http.Response

	var se status.Error
	switch {
	case errors.As(err, &se):
		c.logger.Info("rejecting request", "status", se.Status.Code, "error", err)
		resp = &http.Response{Status: se.Status, Body: body.Memory([]byte(se.Message))}
	case errors.Is(err, transport.ErrDeadLineExceeded):
		c.logger.Info("idle timeout exceeded")
		resp = &http.Response{Status: status.RequestTimeout, Body: body.Memory(nil)}
	default:
		c.logger.Error("closing connection on unclassified error", "error", err)
		return
	}

	if werr := http.WriteResponse(c.bc, resp, c.opts.ServerName); werr != nil {
		c.logger.Warn("could not write error response", "error", werr)
	}
}
