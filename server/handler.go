package server

import (
	"github.com/Daryl-03/web-server-go/http"
	"github.com/Daryl-03/web-server-go/http/body"
	"github.com/Daryl-03/web-server-go/http/status"
)

// HandleFunc turns a parsed request into a response. The request body
// may be streamed straight into the response; whatever the handler
// leaves unread is discarded by the connection loop.
type HandleFunc func(req *http.Request) *http.Response

const greeting = "hello from web-server-go\n"

// DefaultHandler serves the two built-in routes: /echo streams the
// request body back unchanged, everything else answers with a fixed
// greeting.
func DefaultHandler(req *http.Request) *http.Response {
	if req.URI == "/echo" {
		return &http.Response{Status: status.OK, Body: req.Body}
	}

	return &http.Response{
		Status: status.OK,
		Body:   body.Memory([]byte(greeting)),
	}
}
