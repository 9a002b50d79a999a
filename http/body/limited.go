package body

import (
	"github.com/Daryl-03/web-server-go/bridge"
	"github.com/Daryl-03/web-server-go/http"
	"github.com/Daryl-03/web-server-go/http/status"
	"github.com/Daryl-03/web-server-go/lib/bytebuf"
)

// Limited reads exactly length body bytes: whatever is already
// buffered first, pulling from the connection only when the buffer
// runs empty.
func Limited(conn *bridge.Conn, buf *bytebuf.Buffer, length int) http.BodyReader {
	return &limitedReader{conn: conn, buf: buf, length: length, remaining: length}
}

type limitedReader struct {
	conn *bridge.Conn
	buf  *bytebuf.Buffer

	length    int
	remaining int
}

func (r *limitedReader) Next() ([]byte, error) {
	if r.remaining == 0 {
		return nil, nil
	}

	if r.buf.Len() == 0 {
		err := fill(r.conn, r.buf, status.NewError(status.BadRequest, "Unexpected EOF"))
		if err != nil {
			return nil, err
		}
	}

	n := r.buf.Len()
	if n > r.remaining {
		n = r.remaining
	}

	chunk := make([]byte, n)
	copy(chunk, r.buf.Bytes())
	r.buf.Pop(n)
	r.remaining -= n

	return chunk, nil
}

func (r *limitedReader) Len() int { return r.length }
