package http

import (
	"bytes"
	"strings"

	"github.com/Daryl-03/web-server-go/http/status"
	"github.com/Daryl-03/web-server-go/lib/bytebuf"
)

var (
	crlf       = []byte("\r\n")
	headerTerm = []byte("\r\n\r\n")
)

// MaxHeaderSize bounds a buffered header block that has not yet seen
// its terminator.
const MaxHeaderSize = 8192

// CutMessage scans the buffer's unconsumed window for a complete
// header block. When one is found it is parsed and exactly its bytes
// are consumed; any body bytes stay in the buffer for the body reader.
// ok is false when more data is needed.
func CutMessage(buf *bytebuf.Buffer) (req *Request, ok bool, err error) {
	idx := bytes.Index(buf.Bytes(), headerTerm)
	if idx < 0 {
		if buf.Len() > MaxHeaderSize {
			return nil, false, status.NewError(status.ContentTooLarge, "Header too long")
		}
		return nil, false, nil
	}

	block := buf.Bytes()[:idx+len(headerTerm)]

	req, err = parseRequest(block)
	if err != nil {
		return nil, false, err
	}

	buf.Pop(len(block))

	return req, true, nil
}

// parseRequest validates a header block, terminator included.
func parseRequest(block []byte) (*Request, error) {
	// Strip the final CRLF so the blank line before the terminator
	// shows up as a trailing empty element.
	lines := bytes.Split(block[:len(block)-2], crlf)

	last := len(lines) - 1
	if len(lines) < 2 || len(lines[last]) != 0 {
		return nil, badRequest("Bad request")
	}

	req := &Request{}
	if err := parseRequestLine(req, lines[0]); err != nil {
		return nil, err
	}

	for _, line := range lines[1:last] {
		field, err := parseField(line)
		if err != nil {
			return nil, err
		}
		req.Fields = append(req.Fields, field)
	}

	return req, nil
}

func parseRequestLine(req *Request, line []byte) error {
	parts := bytes.Split(line, []byte{' '})
	if len(parts) != 3 {
		return badRequest("Bad request line")
	}

	method := Method(parts[0])
	if !method.Known() {
		return status.NewError(status.MethodNotAllowed, "Method not allowed")
	}

	uri := string(parts[1])
	switch {
	case len(uri) == 0:
		return badRequest("Bad URI")
	case method == MethodConnect && !strings.Contains(uri, ":"):
		// CONNECT takes host:port.
		return badRequest("Bad URI")
	case method == MethodOptions && len(uri) != 1:
		// OPTIONS takes the lone wildcard.
		return badRequest("Bad URI")
	}

	version, ok := bytes.CutPrefix(parts[2], []byte("HTTP/"))
	if !ok {
		return badRequest("Bad request line")
	}
	switch Version(version) {
	case Version10, Version11:
	default:
		return status.NewError(status.HTTPVersionNotSupported, "Unsupported version")
	}

	req.Method = method
	req.URI = uri
	req.Version = Version(version)

	return nil
}

// parseField splits a header line on its first colon. Both sides must
// be non-empty and the name must not carry whitespace before the
// colon.
func parseField(line []byte) (Field, error) {
	name, value, found := bytes.Cut(line, []byte{':'})
	if !found || len(name) == 0 {
		return Field{}, badRequest("Bad header")
	}

	if name[len(name)-1] == ' ' || name[len(name)-1] == '\t' {
		return Field{}, badRequest("Bad header")
	}

	value = bytes.Trim(value, " \t")
	if len(value) == 0 {
		return Field{}, badRequest("Bad header")
	}

	return Field{Name: string(name), Value: string(value)}, nil
}

func badRequest(msg string) error {
	return status.NewError(status.BadRequest, msg)
}
