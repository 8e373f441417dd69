package stub

import (
	"time"

	"event-http/transport"

	"github.com/pkg/errors"
)

type Registration struct {
	Handle   transport.Handle
	Interest transport.Readiness
}

// Poller is a scripted [transport.Poller].
// Each Wait returns the next queued batch of events.
type Poller struct {
	batches [][]transport.Event

	// Registered holds every registration by token.
	Registered map[transport.Token]Registration

	// OnIdle, if set, runs whenever Wait finds no queued batch.
	// Tests use it to push more events or stop the loop.
	OnIdle func()

	registerErr error
	closed      bool
}

var _ transport.Poller = (*Poller)(nil)

func NewPoller() *Poller {
	return &Poller{Registered: make(map[transport.Token]Registration)}
}

// Push queues one batch of events, returned together by a single Wait.
func (p *Poller) Push(events ...transport.Event) {
	p.batches = append(p.batches, events)
}

func (p *Poller) FailRegister(err error) { p.registerErr = err }

func (p *Poller) Register(h transport.Handle, token transport.Token, interest transport.Readiness) error {
	if p.closed {
		return transport.ErrPollerClosed
	}
	if p.registerErr != nil {
		return p.registerErr
	}

	p.Registered[token] = Registration{Handle: h, Interest: interest}
	return nil
}

func (p *Poller) Wait(events []transport.Event, _ time.Duration) (int, error) {
	if p.closed {
		return 0, transport.ErrPollerClosed
	}

	if len(p.batches) == 0 && p.OnIdle != nil {
		p.OnIdle()
	}
	if len(p.batches) == 0 {
		return 0, nil
	}

	batch := p.batches[0]
	if len(batch) > len(events) {
		return 0, errors.Errorf("batch of %d events does not fit in %d", len(batch), len(events))
	}
	p.batches = p.batches[1:]

	return copy(events, batch), nil
}

func (p *Poller) Close() error {
	p.closed = true
	return nil
}

func (p *Poller) Closed() bool { return p.closed }
