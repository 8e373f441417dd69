//go:build linux

package epoll

import (
	"io"
	"net"
	"syscall"

	"event-http/transport"

	"github.com/pkg/errors"
)

// Conn is a non-blocking stream socket.
type Conn struct {
	fd     int
	remote *net.TCPAddr
}

var _ transport.Conn = (*Conn)(nil)

// newConn takes ownership of fd, which must already be non-blocking.
func newConn(fd int, remote *net.TCPAddr) *Conn {
	return &Conn{fd: fd, remote: remote}
}

func (c *Conn) Fd() int              { return c.fd }
func (c *Conn) RemoteAddr() net.Addr { return c.remote }

func (c *Conn) Read(p []byte) (int, error) {
	for {
		n, err := syscall.Read(c.fd, p)
		switch err {
		case nil:
			if n == 0 && len(p) > 0 {
				return 0, io.EOF
			}
			return n, nil
		case syscall.EINTR:
			continue
		case syscall.EAGAIN:
			return 0, transport.ErrWouldBlock
		default:
			return 0, errors.Wrap(err, "read")
		}
	}
}

func (c *Conn) Write(p []byte) (int, error) {
	for {
		n, err := syscall.Write(c.fd, p)
		switch err {
		case nil:
			return n, nil
		case syscall.EINTR:
			continue
		case syscall.EAGAIN:
			return 0, transport.ErrWouldBlock
		default:
			return 0, errors.Wrap(err, "write")
		}
	}
}

func (c *Conn) Close() error {
	if err := syscall.Close(c.fd); err != nil {
		return errors.Wrap(err, "closing socket")
	}
	return nil
}
