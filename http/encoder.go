package http

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/Daryl-03/web-server-go/bridge"
	"github.com/Daryl-03/web-server-go/http/status"
	"github.com/pkg/errors"
)

// DefaultServerName is the identifier injected into every response.
const DefaultServerName = "web-server-go"

// WriteResponse serializes resp onto the connection: status line and
// headers as a single write, then the body streamed chunk by chunk.
// Content-Length is computed from the body's declared length and a
// Server field is injected when the response carries none. A body
// with unknown length is a caller bug, not a protocol error.
func WriteResponse(conn *bridge.Conn, resp *Response, serverName string) error {
	if resp.Body == nil {
		return errors.New("response body must be non-nil")
	}
	if resp.Body.Len() < 0 {
		return errors.New("response body has no declared length")
	}
	if serverName == "" {
		serverName = DefaultServerName
	}

	head := bytes.NewBuffer(nil)

	head.WriteString("HTTP/1.1 ")
	head.WriteString(strconv.Itoa(resp.Status.Code))
	head.WriteByte(' ')
	head.WriteString(status.FromCode(resp.Status.Code).Reason)
	head.Write(crlf)

	hasServer := false
	for _, f := range resp.Fields {
		head.WriteString(f.Name)
		head.WriteString(": ")
		head.WriteString(f.Value)
		head.Write(crlf)

		if !hasServer && strings.EqualFold(f.Name, "Server") {
			hasServer = true
		}
	}

	if !hasServer {
		head.WriteString("Server: ")
		head.WriteString(serverName)
		head.Write(crlf)
	}

	head.WriteString("Content-Length: ")
	head.WriteString(strconv.Itoa(resp.Body.Len()))
	head.Write(crlf)
	head.Write(crlf)

	if err := conn.Write(head.Bytes()); err != nil {
		return errors.Wrap(err, "writing response head")
	}

	for {
		chunk, err := resp.Body.Next()
		if err != nil {
			return errors.Wrap(err, "reading response body")
		}
		if len(chunk) == 0 {
			return nil
		}

		if err := conn.Write(chunk); err != nil {
			return errors.Wrap(err, "writing response body")
		}
	}
}
