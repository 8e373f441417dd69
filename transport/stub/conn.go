// Package stub provides scripted, in-memory implementations of the transport
// interfaces. They never block, which makes them suitable for driving the
// event loop step by step in tests.
package stub

import (
	"bytes"
	"io"
	"net"

	"event-http/transport"
)

// Conn is a scripted [transport.Conn].
//
// Inbound data is queued with Feed and handed out one chunk per Read.
// When the queue is empty, Read reports io.EOF if the peer has hung up
// and [transport.ErrWouldBlock] otherwise.
type Conn struct {
	fd     int
	remote net.Addr

	chunks    [][]byte
	hungUp    bool
	readErr   error
	ReadCalls int

	written     bytes.Buffer
	writeBudget int // negative means unlimited.
	writeErr    error
	zeroWrite   bool
	WriteCalls  int

	closed bool
}

var _ transport.Conn = (*Conn)(nil)

func NewConn(fd int) *Conn {
	return &Conn{
		fd:          fd,
		remote:      &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 40000 + fd},
		writeBudget: -1,
	}
}

func (c *Conn) Fd() int              { return c.fd }
func (c *Conn) RemoteAddr() net.Addr { return c.remote }

// Feed queues chunks to be returned by subsequent reads. Empty chunks are dropped.
func (c *Conn) Feed(chunks ...[]byte) {
	for _, chunk := range chunks {
		if len(chunk) > 0 {
			c.chunks = append(c.chunks, bytes.Clone(chunk))
		}
	}
}

// HangUp makes reads report end of stream once queued chunks are consumed.
func (c *Conn) HangUp() { c.hungUp = true }

// FailRead makes reads fail with err once queued chunks are consumed.
func (c *Conn) FailRead(err error) { c.readErr = err }

// LimitWrites caps the total bytes accepted by writes until the next call.
// Once the budget is spent, writes return [transport.ErrWouldBlock].
// A negative n removes the cap.
func (c *Conn) LimitWrites(n int) { c.writeBudget = n }

// FailWrite makes writes fail with err.
func (c *Conn) FailWrite(err error) { c.writeErr = err }

// ZeroWrite makes writes accept nothing without reporting an error.
func (c *Conn) ZeroWrite() { c.zeroWrite = true }

func (c *Conn) Read(p []byte) (int, error) {
	c.ReadCalls++

	if c.closed {
		return 0, transport.ErrConnClosed
	}

	if len(c.chunks) > 0 {
		n := copy(p, c.chunks[0])
		if n < len(c.chunks[0]) {
			// Keep what did not fit for the next read.
			c.chunks[0] = c.chunks[0][n:]
		} else {
			c.chunks = c.chunks[1:]
		}
		return n, nil
	}

	switch {
	case c.readErr != nil:
		return 0, c.readErr
	case c.hungUp:
		return 0, io.EOF
	}

	return 0, transport.ErrWouldBlock
}

func (c *Conn) Write(p []byte) (int, error) {
	c.WriteCalls++

	switch {
	case c.closed:
		return 0, transport.ErrConnClosed
	case c.writeErr != nil:
		return 0, c.writeErr
	case c.zeroWrite:
		return 0, nil
	}

	n := len(p)
	if c.writeBudget >= 0 {
		if c.writeBudget == 0 {
			return 0, transport.ErrWouldBlock
		}
		n = min(n, c.writeBudget)
		c.writeBudget -= n
	}

	c.written.Write(p[:n])
	return n, nil
}

func (c *Conn) Close() error {
	if c.closed {
		return transport.ErrConnClosed
	}
	c.closed = true
	return nil
}

// Written returns everything accepted by writes so far.
func (c *Conn) Written() []byte { return c.written.Bytes() }

func (c *Conn) Closed() bool { return c.closed }
