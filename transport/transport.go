// Package transport defines the non-blocking socket and readiness primitives
// the event loop is built on, and the allocator for the tokens that tie
// readiness events back to their connections.
package transport

import "time"

// Readiness is a set of I/O readiness conditions.
// It is used both as the interest given on registration and as the
// condition reported by an [Event].
type Readiness uint8

const (
	Readable Readiness = 1 << iota
	Writable
)

func (r Readiness) IsReadable() bool { return r&Readable != 0 }
func (r Readiness) IsWritable() bool { return r&Writable != 0 }

func (r Readiness) String() string {
	switch r {
	case Readable:
		return "readable"
	case Writable:
		return "writable"
	case Readable | Writable:
		return "readable|writable"
	}
	return "none"
}

type Event struct {
	Token     Token
	Readiness Readiness
}

// Poller multiplexes edge-triggered readiness notifications.
// A registered handle is reported once per transition, so consumers
// must drain it until [ErrWouldBlock] before waiting again.
type Poller interface {
	Register(h Handle, token Token, interest Readiness) error

	// Wait fills events and returns how many were filled.
	// A negative timeout blocks until at least one event arrives.
	Wait(events []Event, timeout time.Duration) (int, error)

	Close() error
}
