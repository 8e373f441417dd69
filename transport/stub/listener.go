package stub

import (
	"net"

	"event-http/transport"
)

// Listener is a scripted [transport.Listener] handing out queued connections.
type Listener struct {
	pending   []transport.Conn
	acceptErr error
	closed    bool
}

var _ transport.Listener = (*Listener)(nil)

func NewListener() *Listener { return &Listener{} }

// Enqueue makes conns acceptable, in order.
func (l *Listener) Enqueue(conns ...transport.Conn) {
	l.pending = append(l.pending, conns...)
}

// FailAccept makes Accept fail with err once the queue is drained.
func (l *Listener) FailAccept(err error) { l.acceptErr = err }

func (l *Listener) Fd() int        { return 0 }
func (l *Listener) Addr() net.Addr { return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 8080} }

func (l *Listener) Accept() (transport.Conn, error) {
	if l.closed {
		return nil, transport.ErrListenerClosed
	}

	if len(l.pending) == 0 {
		if l.acceptErr != nil {
			return nil, l.acceptErr
		}
		return nil, transport.ErrWouldBlock
	}

	conn := l.pending[0]
	l.pending = l.pending[1:]
	return conn, nil
}

func (l *Listener) Pending() int { return len(l.pending) }

func (l *Listener) Close() error {
	l.closed = true
	return nil
}

func (l *Listener) Closed() bool { return l.closed }
