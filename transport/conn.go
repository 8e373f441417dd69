package transport

import (
	"net"

	"github.com/pkg/errors"
)

var (
	// ErrWouldBlock is returned when an operation cannot make progress without blocking.
	// It is not a failure: retry after the next readiness event.
	ErrWouldBlock     = errors.New("operation would block")
	ErrListenerClosed = errors.New("listener is closed")
	ErrPollerClosed   = errors.New("poller is closed")
	ErrConnClosed     = errors.New("connection is closed")
)

// Handle is anything that can be registered with a [Poller].
type Handle interface {
	Fd() int
}

// Conn is a non-blocking stream socket.
//
// Read returns [ErrWouldBlock] when no data is available and io.EOF once the
// peer has closed its side. Write returns [ErrWouldBlock] when the send buffer is full.
type Conn interface {
	Handle

	Read(p []byte) (n int, err error)
	Write(p []byte) (n int, err error)
	Close() error

	RemoteAddr() net.Addr
}

// Listener is a non-blocking stream listener.
// Accept returns [ErrWouldBlock] once the pending queue is drained.
type Listener interface {
	Handle

	Accept() (Conn, error)
	Addr() net.Addr
	Close() error
}
