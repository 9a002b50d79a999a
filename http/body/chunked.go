package body

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/Daryl-03/web-server-go/bridge"
	"github.com/Daryl-03/web-server-go/http"
	"github.com/Daryl-03/web-server-go/http/status"
	"github.com/Daryl-03/web-server-go/lib/bytebuf"
)

var crlf = []byte("\r\n")

// Chunked decodes a chunked transfer coded body: a hex size line per
// chunk, the chunk data followed by CRLF, a zero-size terminal chunk
// and any trailer lines up to a blank line. Each decoded chunk is
// delivered whole. The total length is unknown up front.
func Chunked(conn *bridge.Conn, buf *bytebuf.Buffer) http.BodyReader {
	return &chunkedReader{conn: conn, buf: buf}
}

type chunkedReader struct {
	conn *bridge.Conn
	buf  *bytebuf.Buffer
	done bool
}

func (r *chunkedReader) Next() ([]byte, error) {
	if r.done {
		return nil, nil
	}

	size, err := r.readSizeLine()
	if err != nil {
		return nil, err
	}

	if size == 0 {
		if err := r.readTrailers(); err != nil {
			return nil, err
		}
		r.done = true
		return nil, nil
	}

	chunk, err := r.readN(size)
	if err != nil {
		return nil, err
	}

	delim, err := r.readN(2)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(delim, crlf) {
		return nil, status.NewError(status.BadRequest, "Invalid chunk framing")
	}

	return chunk, nil
}

func (r *chunkedReader) Len() int { return -1 }

func (r *chunkedReader) readSizeLine() (int, error) {
	line, err := r.readLine()
	if err != nil {
		return 0, err
	}

	// Chunk extensions follow the size after a semicolon.
	sizeRaw, _, _ := strings.Cut(line, ";")
	sizeRaw = strings.TrimSpace(sizeRaw)

	size, err := strconv.ParseUint(sizeRaw, 16, 31)
	if err != nil {
		return 0, status.NewError(status.BadRequest, "Invalid chunk size")
	}

	return int(size), nil
}

// readTrailers consumes trailer lines up to and including the blank
// line that terminates the body.
func (r *chunkedReader) readTrailers() error {
	for {
		line, err := r.readLine()
		if err != nil {
			return err
		}
		if len(line) == 0 {
			return nil
		}
	}
}

func (r *chunkedReader) readLine() (string, error) {
	for {
		if idx := bytes.Index(r.buf.Bytes(), crlf); idx >= 0 {
			line := string(r.buf.Bytes()[:idx])
			r.buf.Pop(idx + 2)
			return line, nil
		}

		err := fill(r.conn, r.buf, status.NewError(status.BadRequest, "Unexpected end of chunked body"))
		if err != nil {
			return "", err
		}
	}
}

func (r *chunkedReader) readN(n int) ([]byte, error) {
	out := make([]byte, 0, n)
	for len(out) < n {
		if r.buf.Len() == 0 {
			err := fill(r.conn, r.buf, status.NewError(status.BadRequest, "Unexpected end of chunked body"))
			if err != nil {
				return nil, err
			}
		}

		take := n - len(out)
		if take > r.buf.Len() {
			take = r.buf.Len()
		}

		out = append(out, r.buf.Bytes()[:take]...)
		r.buf.Pop(take)
	}

	return out, nil
}
