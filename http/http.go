// Package http implements the HTTP/1.1 message layer: request
// framing and parsing out of a byte buffer, and response encoding
// back onto the wire.
package http

import (
	"strings"

	"github.com/Daryl-03/web-server-go/http/status"
)

type Method string

const (
	MethodGet     Method = "GET"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodDelete  Method = "DELETE"
	MethodHead    Method = "HEAD"
	MethodOptions Method = "OPTIONS"
	MethodTrace   Method = "TRACE"
	MethodConnect Method = "CONNECT"
)

var methods = map[Method]struct{}{
	MethodGet:     {},
	MethodPost:    {},
	MethodPut:     {},
	MethodDelete:  {},
	MethodHead:    {},
	MethodOptions: {},
	MethodTrace:   {},
	MethodConnect: {},
}

func (m Method) Known() bool {
	_, ok := methods[m]
	return ok
}

type Version string

const (
	Version10 Version = "1.0"
	Version11 Version = "1.1"
)

// Field is one header line, split on the first colon.
type Field struct {
	Name  string
	Value string
}

// Request is an immutable parsed request. Fields keep their wire
// order; lookup is case-insensitive.
type Request struct {
	Method  Method
	URI     string
	Version Version
	Fields  []Field

	// Body is attached by the connection loop after framing is
	// negotiated; it is nil straight out of the parser.
	Body BodyReader
}

// Header returns the value of the first field named name,
// compared case-insensitively.
func (r *Request) Header(name string) (string, bool) {
	for _, f := range r.Fields {
		if strings.EqualFold(f.Name, name) {
			return f.Value, true
		}
	}
	return "", false
}

// Response carries a status, ordered header fields and a body.
// Content-Length and the Server identifier are appended by the writer.
type Response struct {
	Status status.Status
	Fields []Field
	Body   BodyReader
}

// BodyReader produces a request or response body one chunk at a time.
// An empty chunk means end of body. Len is the declared total length,
// or -1 when the body is framed by the stream itself.
type BodyReader interface {
	Next() ([]byte, error)
	Len() int
}
