// Package body implements the framing strategies a request or
// response body can be read under: in-memory, content-length bounded,
// and chunked transfer coding. Every variant is consumed through the
// same one-chunk-at-a-time [http.BodyReader] surface, so the
// connection loop never learns which one it is driving.
package body

import (
	"github.com/Daryl-03/web-server-go/bridge"
	"github.com/Daryl-03/web-server-go/http"
	"github.com/Daryl-03/web-server-go/http/status"
	"github.com/Daryl-03/web-server-go/lib/bytebuf"
)

// Memory wraps a byte buffer already held by the server. The first
// call yields the whole buffer, every later call reports end of body.
func Memory(p []byte) http.BodyReader {
	return &memoryReader{p: p}
}

type memoryReader struct {
	p    []byte
	done bool
}

func (r *memoryReader) Next() ([]byte, error) {
	if r.done {
		return nil, nil
	}
	r.done = true
	return r.p, nil
}

func (r *memoryReader) Len() int { return len(r.p) }

// fill pulls exactly one chunk from the connection into the buffer.
// A clean end-of-stream before more data arrives is reported as the
// given protocol error.
func fill(conn *bridge.Conn, buf *bytebuf.Buffer, onEOF status.Error) error {
	chunk, err := conn.Read()
	if err != nil {
		return err
	}
	if len(chunk) == 0 {
		return onEOF
	}

	buf.Push(chunk)
	return nil
}
