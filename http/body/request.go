package body

import (
	"strconv"
	"strings"

	"github.com/Daryl-03/web-server-go/bridge"
	"github.com/Daryl-03/web-server-go/http"
	"github.com/Daryl-03/web-server-go/http/status"
	"github.com/Daryl-03/web-server-go/lib/bytebuf"
)

// ForRequest picks the framing strategy for a parsed request's body.
// Chunked transfer coding wins over Content-Length. GET and HEAD may
// not carry a body at all; other methods must declare one framing or
// the body length is undefined.
func ForRequest(conn *bridge.Conn, buf *bytebuf.Buffer, req *http.Request) (http.BodyReader, error) {
	chunked := false
	if te, ok := req.Header("Transfer-Encoding"); ok {
		chunked = strings.EqualFold(te, "chunked")
	}

	length := -1
	if cl, ok := req.Header("Content-Length"); ok {
		n, err := strconv.Atoi(cl)
		if err != nil || n < 0 {
			return nil, status.NewError(status.BadRequest, "Bad Content-Length")
		}
		length = n
	}

	if req.Method == http.MethodGet || req.Method == http.MethodHead {
		if length > 0 || chunked {
			return nil, status.NewError(status.BadRequest, "Body not allowed")
		}
		return Memory(nil), nil
	}

	switch {
	case chunked:
		return Chunked(conn, buf), nil
	case length >= 0:
		return Limited(conn, buf, length), nil
	default:
		return nil, status.NewError(status.LengthRequired, "Length required")
	}
}

// Discard drains whatever the reader has not produced yet, leaving the
// connection buffer positioned at the next request's header block.
func Discard(r http.BodyReader) error {
	for {
		chunk, err := r.Next()
		if err != nil {
			return err
		}
		if len(chunk) == 0 {
			return nil
		}
	}
}
