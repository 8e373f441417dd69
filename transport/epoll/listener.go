//go:build linux

package epoll

import (
	"net"

	"event-http/transport"

	sockaddrnet "github.com/libp2p/go-sockaddr/net"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

const DefaultBacklog = 1024

// Listener is a non-blocking TCP listener.
type Listener struct {
	fd   int
	addr *net.TCPAddr
}

var _ transport.Listener = (*Listener)(nil)

// Listen binds a non-blocking TCP listener to address ("host:port").
func Listen(address string, backlog int) (*Listener, error) {
	addr, err := net.ResolveTCPAddr("tcp", address)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving %q", address)
	}
	if addr.IP == nil {
		addr.IP = net.IPv4zero
	}

	sa := sockaddrnet.TCPAddrToSockaddr(addr)
	if sa == nil {
		return nil, errors.Errorf("unsupported address: %s", addr)
	}

	fd, err := unix.Socket(
		sockaddrnet.NetAddrAF(addr),
		unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC,
		unix.IPPROTO_TCP,
	)
	if err != nil {
		return nil, errors.Wrap(err, "creating socket")
	}

	if err := listen(fd, sa, backlog); err != nil {
		unix.Close(fd)
		return nil, errors.Wrapf(err, "listening on %s", addr)
	}

	// The port may have been chosen by the kernel.
	local, err := unix.Getsockname(fd)
	if err != nil {
		unix.Close(fd)
		return nil, errors.Wrap(err, "getsockname")
	}

	return &Listener{fd: fd, addr: sockaddrnet.SockaddrToTCPAddr(local)}, nil
}

func listen(fd int, sa unix.Sockaddr, backlog int) error {
	// Allow restarting without waiting for TIME_WAIT to pass.
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return errors.Wrap(err, "setting SO_REUSEADDR")
	}
	if err := unix.Bind(fd, sa); err != nil {
		return errors.Wrap(err, "bind")
	}
	if err := unix.Listen(fd, backlog); err != nil {
		return errors.Wrap(err, "listen")
	}
	return nil
}

func (l *Listener) Fd() int        { return l.fd }
func (l *Listener) Addr() net.Addr { return l.addr }

func (l *Listener) Accept() (transport.Conn, error) {
	for {
		fd, sa, err := unix.Accept4(l.fd, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
		switch err {
		case nil:
			return newConn(fd, sockaddrnet.SockaddrToTCPAddr(sa)), nil
		case unix.EAGAIN:
			return nil, transport.ErrWouldBlock
		case unix.EINTR, unix.ECONNABORTED:
			// The peer gave up while queued, or a signal arrived. Try the next one.
			continue
		default:
			return nil, errors.Wrap(err, "accept4")
		}
	}
}

func (l *Listener) Close() error {
	if err := unix.Close(l.fd); err != nil {
		return errors.Wrap(err, "closing listener")
	}
	return nil
}
