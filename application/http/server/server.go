// Package server implements a single-goroutine HTTP/1.x server driven by
// edge-triggered readiness events.
//
// Each connection carries exactly one request and one response.
// There is no keep-alive, no pipelining and no timeout.
package server

import (
	"context"
	"log/slog"
	"net"

	"event-http/transport"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

// Server accepts connections and dispatches readiness events to them.
// All of its state is owned by the goroutine running Serve.
type Server struct {
	listener transport.Listener
	poller   transport.Poller

	tokens   *transport.TokenTable
	registry *Registry

	logger *slog.Logger
	opts   Options
}

func New(
	l transport.Listener,
	p transport.Poller,
	handler Handler,
	logger *slog.Logger,
	clock clock.Clock,
	opts Options,
) *Server {
	opts = opts.withDefaults()

	return &Server{
		listener: l,
		poller:   p,
		tokens:   transport.NewTokenTable(transport.TokenOptions{Limit: opts.TokenLimit}),
		registry: NewRegistry(handler, logger, clock, opts),
		logger:   logger,
		opts:     opts,
	}
}

func (s *Server) Addr() net.Addr { return s.listener.Addr() }

// Serve runs the event loop until ctx is done.
//
// It returns a non-nil error only for failures that leave the server unable
// to go on, such as running out of connection tokens. Those are not retried:
// the process is expected to exit and be restarted by its supervisor.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.poller.Register(s.listener, transport.ListenerToken, transport.Readable); err != nil {
		return errors.Wrap(err, "registering listener")
	}

	s.logger.Info("serving", "addr", s.listener.Addr().String())

	events := make([]transport.Event, s.opts.EventCapacity)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("stopped serving", "open", s.registry.Len())
			return nil
		default:
		}

		n, err := s.poller.Wait(events, s.opts.PollTimeout)
		if err != nil {
			return errors.Wrap(err, "waiting for events")
		}

		for _, event := range events[:n] {
			if event.Token == transport.ListenerToken {
				if err := s.acceptAll(); err != nil {
					return err
				}
				continue
			}

			s.dispatch(event)
		}
	}
}

// acceptAll accepts until the listener would block.
// An accept event is only sent once for however many connections are queued.
func (s *Server) acceptAll() error {
	for {
		conn, err := s.listener.Accept()
		if errors.Is(err, transport.ErrWouldBlock) {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "accepting connection")
		}

		token, err := s.tokens.Allocate()
		if err != nil {
			conn.Close()
			return errors.Wrap(err, "assigning token to connection")
		}

		if err := s.poller.Register(conn, token, transport.Readable|transport.Writable); err != nil {
			conn.Close()
			s.tokens.Release(token)
			return errors.Wrapf(err, "registering connection %d", token)
		}

		s.registry.Register(token, conn)
	}
}

// dispatch hands event to its connection and reclaims the token once the
// connection is gone. Each handler checks the connection mode itself.
func (s *Server) dispatch(event transport.Event) {
	if event.Readiness.IsReadable() {
		s.registry.OnReadable(event.Token)
	}
	if event.Readiness.IsWritable() {
		s.registry.OnWritable(event.Token)
	}

	if !s.registry.IsActive(event.Token) {
		s.tokens.Release(event.Token)
	}
}

// Close closes every open connection, the listener and the poller.
// It must not be called while Serve is running.
func (s *Server) Close() error {
	s.registry.Close()

	var firstErr error
	if err := s.listener.Close(); err != nil {
		firstErr = errors.Wrap(err, "closing listener")
	}
	if err := s.poller.Close(); err != nil && firstErr == nil {
		firstErr = errors.Wrap(err, "closing poller")
	}

	return firstErr
}
