package bridge

import (
	"sync"
	"testing"
	"time"

	"github.com/Daryl-03/web-server-go/transport"
	"github.com/Daryl-03/web-server-go/transport/pipe"
	"github.com/Daryl-03/web-server-go/transport/transporttest"
	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestReadDeliversChunks(t *testing.T) {
	tc := transporttest.NewConn([]byte("first"), []byte("second"))
	conn := NewConn(tc, clock.NewMock(), ConnOptions{})

	chunk, err := conn.Read()
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), chunk)

	chunk, err = conn.Read()
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), chunk)
}

func TestReadEmptyChunkOnCleanEOF(t *testing.T) {
	tc := transporttest.NewConn([]byte("data"))
	conn := NewConn(tc, clock.NewMock(), ConnOptions{})

	_, err := conn.Read()
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		chunk, err := conn.Read()
		require.NoError(t, err)
		assert.Empty(t, chunk)
	}
}

func TestSecondReadFailsWhilePending(t *testing.T) {
	defer goleak.VerifyNone(t)

	clk := clock.New()
	server, client := pipe.Pair("server", "client", clk)
	conn := NewConn(server, clk, ConnOptions{})

	started := make(chan struct{})
	release := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		close(started)
		chunk, err := conn.Read() // blocks until the client writes
		assert.NoError(t, err)
		assert.Equal(t, []byte("late"), chunk)
		close(release)
	}()

	<-started
	// Give the first read time to park in the transport.
	time.Sleep(10 * time.Millisecond)

	_, err := conn.Read()
	require.ErrorIs(t, err, ErrReadPending)

	// The pending read is unaffected and resolves normally.
	_, werr := client.Write([]byte("late"))
	require.NoError(t, werr)
	<-release

	wg.Wait()
	require.NoError(t, client.Close())
	require.NoError(t, conn.Close())
}

func TestStickyError(t *testing.T) {
	// No scripted chunks and a non-EOF final error.
	tc := transporttest.NewConn()
	tc.FinalErr = errors.New("boom")
	conn := NewConn(tc, clock.NewMock(), ConnOptions{})

	_, err := conn.Read()
	require.ErrorContains(t, err, "boom")

	// Every later operation fails with the same error.
	_, err = conn.Read()
	require.ErrorContains(t, err, "boom")
	require.ErrorContains(t, conn.Write([]byte("x")), "boom")
}

func TestWriteFailurePoisonsConn(t *testing.T) {
	tc := transporttest.NewConn([]byte("unread"))
	tc.WriteErr = errors.New("wedged")
	conn := NewConn(tc, clock.NewMock(), ConnOptions{})

	require.ErrorContains(t, conn.Write([]byte("x")), "wedged")

	_, err := conn.Read()
	require.ErrorContains(t, err, "wedged")
}

func TestWriteEmptyPayloadIsNoop(t *testing.T) {
	tc := transporttest.NewConn()
	tc.WriteErr = errors.New("wedged")
	conn := NewConn(tc, clock.NewMock(), ConnOptions{})

	require.NoError(t, conn.Write(nil))
}

func TestReadTimeoutIsNotSticky(t *testing.T) {
	clk := clock.NewMock()
	server, client := pipe.Pair("server", "client", clk)
	conn := NewConn(server, clk, ConnOptions{ReadTimeout: time.Second})

	done := make(chan error, 1)
	go func() {
		_, err := conn.Read()
		done <- err
	}()

	// Let the read arm its deadline before advancing the clock.
	time.Sleep(10 * time.Millisecond)
	clk.Add(2 * time.Second)

	require.ErrorIs(t, <-done, transport.ErrDeadLineExceeded)

	// A timeout response can still be written.
	go func() {
		buf := make([]byte, 16)
		_, _ = client.Read(buf)
	}()
	require.NoError(t, conn.Write([]byte("408")))

	require.NoError(t, client.Close())
	require.NoError(t, conn.Close())
}
