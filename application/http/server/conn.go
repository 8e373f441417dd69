package server

import (
	"io"
	"log/slog"
	"slices"
	"time"

	"event-http/application/http"
	"event-http/transport"

	"github.com/pkg/errors"
)

type mode uint8

const (
	modeReading mode = iota
	modeWriting
)

func (m mode) String() string {
	if m == modeWriting {
		return "writing"
	}
	return "reading"
}

var errPeerClosed = errors.New("peer accepted no bytes")

// conn is one accepted socket.
// buf holds the request while reading and the response while writing.
// cursor counts bytes received while reading, and bytes sent while writing.
type conn struct {
	sock   transport.Conn
	buf    []byte
	cursor int
	mode   mode

	acceptedAt time.Time
	logger     *slog.Logger
}

// readAll reads until the socket would block.
// closed reports whether the peer has finished sending.
//
// Readiness is edge-triggered. Stopping before the socket would block
// leaves data behind that no further event will announce.
func (c *conn) readAll(chunkSize uint) (closed bool, err error) {
	for {
		if c.cursor == len(c.buf) {
			c.buf = slices.Grow(c.buf, int(chunkSize))[:len(c.buf)+int(chunkSize)]
		}

		n, err := c.sock.Read(c.buf[c.cursor:])
		if n > 0 {
			c.cursor += n
		}

		switch {
		case errors.Is(err, transport.ErrWouldBlock):
			return false, nil
		case errors.Is(err, io.EOF):
			return true, nil
		case err != nil:
			return false, errors.Wrap(err, "reading from socket")
		case n == 0:
			return true, nil
		}
	}
}

func (c *conn) received() []byte { return c.buf[:c.cursor] }

// respond replaces the buffered request with res and switches to writing.
// The request must not be used afterwards.
func (c *conn) respond(res http.Response) {
	c.buf = res.AppendTo(c.buf[:0])
	c.cursor = 0
	c.mode = modeWriting
}

// writeAll writes the rest of the response until the socket would block.
// done reports whether the connection is finished, either because everything
// was sent or because err makes further writes pointless.
func (c *conn) writeAll() (done bool, err error) {
	for c.cursor < len(c.buf) {
		n, err := c.sock.Write(c.buf[c.cursor:])
		if n > 0 {
			c.cursor += n
		}

		switch {
		case errors.Is(err, transport.ErrWouldBlock):
			return false, nil
		case err != nil:
			return true, errors.Wrap(err, "writing to socket")
		case n == 0:
			return true, errPeerClosed
		}
	}

	return true, nil
}
