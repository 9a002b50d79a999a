package body

import (
	"testing"

	"github.com/Daryl-03/web-server-go/bridge"
	"github.com/Daryl-03/web-server-go/http"
	"github.com/Daryl-03/web-server-go/http/status"
	"github.com/Daryl-03/web-server-go/lib/bytebuf"
	"github.com/Daryl-03/web-server-go/transport/transporttest"
	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scripted(chunks ...[]byte) (*bridge.Conn, *bytebuf.Buffer) {
	tc := transporttest.NewConn(chunks...)
	return bridge.NewConn(tc, clock.NewMock(), bridge.ConnOptions{}), bytebuf.New()
}

// drain collects the reader's chunks until the empty one.
func drain(r http.BodyReader) ([]byte, error) {
	var out []byte
	for {
		chunk, err := r.Next()
		if err != nil {
			return out, err
		}
		if len(chunk) == 0 {
			return out, nil
		}
		out = append(out, chunk...)
	}
}

func requireStatus(t *testing.T, err error, code int, message string) {
	t.Helper()

	var se status.Error
	require.True(t, errors.As(err, &se), "expected status error, got %v", err)
	assert.Equal(t, code, se.Status.Code)
	assert.Equal(t, message, se.Message)
}

func TestMemory(t *testing.T) {
	r := Memory([]byte("abc"))
	assert.Equal(t, 3, r.Len())

	chunk, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), chunk)

	for i := 0; i < 3; i++ {
		chunk, err = r.Next()
		require.NoError(t, err)
		assert.Empty(t, chunk)
	}
}

func TestLimitedFromBuffer(t *testing.T) {
	conn, buf := scripted()
	buf.Push([]byte("abcde-next-request"))

	r := Limited(conn, buf, 5)
	assert.Equal(t, 5, r.Len())

	got, err := drain(r)
	require.NoError(t, err)
	assert.Equal(t, []byte("abcde"), got)

	// Bytes past the declared length stay buffered.
	assert.Equal(t, []byte("-next-request"), buf.Bytes())
}

func TestLimitedPullsWhenBufferEmpty(t *testing.T) {
	conn, buf := scripted([]byte("ab"), []byte("c"))

	got, err := drain(Limited(conn, buf, 3))
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)
}

func TestLimitedUnexpectedEOF(t *testing.T) {
	conn, buf := scripted([]byte("ab")) // connection closes after 2 of 3 bytes

	_, err := drain(Limited(conn, buf, 3))
	requireStatus(t, err, 400, "Unexpected EOF")
}

func TestLimitedZeroLength(t *testing.T) {
	conn, buf := scripted()

	got, err := drain(Limited(conn, buf, 0))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestChunked(t *testing.T) {
	testcases := []struct {
		desc     string
		wire     string
		expected string
	}{
		{
			desc:     "single chunk",
			wire:     "3\r\nfoo\r\n0\r\n\r\n",
			expected: "foo",
		},
		{
			desc:     "multiple chunks",
			wire:     "3\r\nfoo\r\n4\r\nbarr\r\n0\r\n\r\n",
			expected: "foobarr",
		},
		{
			desc:     "hex size",
			wire:     "a\r\n0123456789\r\n0\r\n\r\n",
			expected: "0123456789",
		},
		{
			desc:     "chunk extension ignored",
			wire:     "3;name=value\r\nfoo\r\n0\r\n\r\n",
			expected: "foo",
		},
		{
			desc:     "trailer headers consumed",
			wire:     "3\r\nfoo\r\n0\r\nExpires: never\r\n\r\n",
			expected: "foo",
		},
		{
			desc:     "chunk data may contain CRLF",
			wire:     "4\r\na\r\nb\r\n0\r\n\r\n",
			expected: "a\r\nb",
		},
	}
	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			conn, buf := scripted([]byte(tc.wire))

			got, err := drain(Chunked(conn, buf))
			require.NoError(t, err)
			assert.Equal(t, tc.expected, string(got))
		})
	}
}

func TestChunkedDeliversEachChunkWhole(t *testing.T) {
	conn, buf := scripted([]byte("3\r\nfoo\r\n4\r\nbarr\r\n0\r\n\r\n"))

	r := Chunked(conn, buf)

	chunk, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, []byte("foo"), chunk)

	chunk, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, []byte("barr"), chunk)

	chunk, err = r.Next()
	require.NoError(t, err)
	assert.Empty(t, chunk)
}

func TestChunkedSplitAcrossReads(t *testing.T) {
	conn, buf := scripted(
		[]byte("3\r"), []byte("\nf"), []byte("oo\r\n0"), []byte("\r\n\r\n"),
	)

	got, err := drain(Chunked(conn, buf))
	require.NoError(t, err)
	assert.Equal(t, []byte("foo"), got)
}

func TestChunkedErrors(t *testing.T) {
	testcases := []struct {
		desc    string
		wire    string
		message string
	}{
		{
			desc:    "malformed size line",
			wire:    "xyz\r\nfoo\r\n0\r\n\r\n",
			message: "Invalid chunk size",
		},
		{
			desc:    "empty size line",
			wire:    "\r\nfoo\r\n0\r\n\r\n",
			message: "Invalid chunk size",
		},
		{
			desc:    "missing chunk delimiter",
			wire:    "3\r\nfooXX0\r\n\r\n",
			message: "Invalid chunk framing",
		},
		{
			desc:    "eof before terminal chunk",
			wire:    "3\r\nfoo\r\n",
			message: "Unexpected end of chunked body",
		},
		{
			desc:    "eof mid chunk data",
			wire:    "5\r\nfo",
			message: "Unexpected end of chunked body",
		},
	}
	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			conn, buf := scripted([]byte(tc.wire))

			_, err := drain(Chunked(conn, buf))
			requireStatus(t, err, 400, tc.message)
		})
	}
}

func TestChunkedLenUnknown(t *testing.T) {
	conn, buf := scripted()
	assert.Equal(t, -1, Chunked(conn, buf).Len())
}

func request(t *testing.T, method http.Method, fields ...http.Field) *http.Request {
	t.Helper()
	return &http.Request{Method: method, URI: "/", Version: http.Version11, Fields: fields}
}

func TestForRequest(t *testing.T) {
	testcases := []struct {
		desc     string
		req      *http.Request
		wantCode int
		wantMsg  string
		wantLen  int
	}{
		{
			desc:    "get without body",
			req:     request(t, http.MethodGet),
			wantLen: 0,
		},
		{
			desc:    "head with zero content length",
			req:     request(t, http.MethodHead, http.Field{Name: "Content-Length", Value: "0"}),
			wantLen: 0,
		},
		{
			desc:     "get with body",
			req:      request(t, http.MethodGet, http.Field{Name: "Content-Length", Value: "5"}),
			wantCode: 400,
			wantMsg:  "Body not allowed",
		},
		{
			desc:     "head with chunked body",
			req:      request(t, http.MethodHead, http.Field{Name: "Transfer-Encoding", Value: "chunked"}),
			wantCode: 400,
			wantMsg:  "Body not allowed",
		},
		{
			desc:    "post with content length",
			req:     request(t, http.MethodPost, http.Field{Name: "Content-Length", Value: "3"}),
			wantLen: 3,
		},
		{
			desc: "chunked wins over content length",
			req: request(t, http.MethodPost,
				http.Field{Name: "Content-Length", Value: "3"},
				http.Field{Name: "Transfer-Encoding", Value: "chunked"},
			),
			wantLen: -1,
		},
		{
			desc:     "bad content length",
			req:      request(t, http.MethodPost, http.Field{Name: "Content-Length", Value: "3x"}),
			wantCode: 400,
			wantMsg:  "Bad Content-Length",
		},
		{
			desc:     "negative content length",
			req:      request(t, http.MethodPost, http.Field{Name: "Content-Length", Value: "-1"}),
			wantCode: 400,
			wantMsg:  "Bad Content-Length",
		},
		{
			desc:     "post without framing",
			req:      request(t, http.MethodPost),
			wantCode: 411,
			wantMsg:  "Length required",
		},
	}
	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			conn, buf := scripted()

			r, err := ForRequest(conn, buf, tc.req)
			if tc.wantCode != 0 {
				requireStatus(t, err, tc.wantCode, tc.wantMsg)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.wantLen, r.Len())
		})
	}
}

func TestDiscard(t *testing.T) {
	conn, buf := scripted([]byte("cde"), []byte("GET /next"))
	buf.Push([]byte("ab"))

	r := Limited(conn, buf, 5)

	// The handler reads only part of the body.
	chunk, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, []byte("ab"), chunk)

	// Discard drains the rest without touching the next request.
	require.NoError(t, Discard(r))
	assert.Equal(t, 0, buf.Len())

	next, err := conn.Read()
	require.NoError(t, err)
	assert.Equal(t, []byte("GET /next"), next)
}
