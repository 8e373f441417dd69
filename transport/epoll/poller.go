//go:build linux

// Package epoll implements the transport interfaces on Linux with
// edge-triggered epoll and non-blocking sockets.
package epoll

import (
	"time"

	"event-http/transport"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

type Poller struct {
	fd  int
	raw []unix.EpollEvent
}

var _ transport.Poller = (*Poller)(nil)

func NewPoller() (*Poller, error) {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, errors.Wrap(err, "creating epoll instance")
	}

	return &Poller{fd: fd}, nil
}

// Register adds h in edge-triggered mode.
func (p *Poller) Register(h transport.Handle, token transport.Token, interest transport.Readiness) error {
	ev := unix.EpollEvent{Events: toEpoll(interest) | unix.EPOLLET}
	putToken(&ev, token)

	if err := unix.EpollCtl(p.fd, unix.EPOLL_CTL_ADD, h.Fd(), &ev); err != nil {
		return errors.Wrapf(err, "registering fd %d", h.Fd())
	}

	return nil
}

func (p *Poller) Wait(events []transport.Event, timeout time.Duration) (int, error) {
	if len(p.raw) < len(events) {
		p.raw = make([]unix.EpollEvent, len(events))
	}
	raw := p.raw[:len(events)]

	n, err := unix.EpollWait(p.fd, raw, toMillis(timeout))
	if errors.Is(err, unix.EINTR) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "epoll_wait")
	}

	for i, ev := range raw[:n] {
		events[i] = transport.Event{
			Token:     getToken(ev),
			Readiness: fromEpoll(ev.Events),
		}
	}

	return n, nil
}

func (p *Poller) Close() error {
	if err := unix.Close(p.fd); err != nil {
		return errors.Wrap(err, "closing epoll instance")
	}
	return nil
}

func toMillis(timeout time.Duration) int {
	if timeout < 0 {
		return -1
	}
	// Round up so that a short positive timeout doesn't turn into a busy loop.
	return int((timeout + time.Millisecond - 1) / time.Millisecond)
}

func toEpoll(interest transport.Readiness) uint32 {
	var events uint32
	if interest.IsReadable() {
		events |= unix.EPOLLIN | unix.EPOLLRDHUP
	}
	if interest.IsWritable() {
		events |= unix.EPOLLOUT
	}
	return events
}

// fromEpoll reports hang-ups and errors as both readable and writable,
// so whichever operation comes next observes the failure.
func fromEpoll(events uint32) transport.Readiness {
	var r transport.Readiness
	if events&(unix.EPOLLIN|unix.EPOLLRDHUP|unix.EPOLLHUP|unix.EPOLLERR) != 0 {
		r |= transport.Readable
	}
	if events&(unix.EPOLLOUT|unix.EPOLLHUP|unix.EPOLLERR) != 0 {
		r |= transport.Writable
	}
	return r
}

// The kernel hands epoll_data back untouched. Fd and Pad together span all of it.
func putToken(ev *unix.EpollEvent, token transport.Token) {
	ev.Fd = int32(uint32(token))
	ev.Pad = int32(uint32(token >> 32))
}

func getToken(ev unix.EpollEvent) transport.Token {
	return transport.Token(uint32(ev.Fd)) | transport.Token(uint32(ev.Pad))<<32
}
