package server

import (
	"log/slog"

	"event-http/application/http"
	"event-http/transport"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

// Registry owns every open connection, keyed by token, and moves each one
// through reading, writing and removal as readiness events arrive.
//
// It is not safe for concurrent use.
type Registry struct {
	conns map[transport.Token]*conn

	handler Handler
	clock   clock.Clock
	logger  *slog.Logger
	opts    Options
}

func NewRegistry(handler Handler, logger *slog.Logger, clock clock.Clock, opts Options) *Registry {
	return &Registry{
		conns:   make(map[transport.Token]*conn),
		handler: handler,
		clock:   clock,
		logger:  logger,
		opts:    opts.withDefaults(),
	}
}

// Register starts tracking sock under token, waiting for its request.
func (r *Registry) Register(token transport.Token, sock transport.Conn) {
	c := &conn{
		sock:       sock,
		mode:       modeReading,
		acceptedAt: r.clock.Now(),
		logger:     r.logger.With("token", uint64(token), "remote", sock.RemoteAddr().String()),
	}
	r.conns[token] = c

	c.logger.Debug("connection accepted")
}

// OnReadable drains the socket and, once a whole request has arrived,
// answers it. It does nothing unless the connection is still reading.
func (r *Registry) OnReadable(token transport.Token) {
	c, ok := r.conns[token]
	if !ok || c.mode != modeReading {
		return
	}

	closed, err := c.readAll(r.opts.ChunkSize)
	if err != nil {
		// The socket can not be trusted anymore. Don't even try to respond.
		r.remove(token, c, err)
		return
	}

	request, err := http.ParseRequest(c.received(), closed, r.opts.Parse)
	switch {
	case err == nil:
		response := r.handler.Serve(&request)
		c.logger.Debug("request handled",
			"method", request.Method.String(),
			"path", request.Path,
			"status", response.Status,
		)
		c.respond(response)
	case errors.Is(err, http.ErrIncomplete):
		return
	default:
		c.logger.Debug("malformed request", "error", err)
		c.respond(badRequest)
	}

	// The socket is usually writable already, so don't wait for another event.
	r.flush(token, c)
}

// OnWritable continues sending the response.
// It does nothing unless the connection is writing.
func (r *Registry) OnWritable(token transport.Token) {
	c, ok := r.conns[token]
	if !ok || c.mode != modeWriting {
		return
	}

	r.flush(token, c)
}

// IsActive reports whether token still has an open connection.
func (r *Registry) IsActive(token transport.Token) bool {
	_, ok := r.conns[token]
	return ok
}

func (r *Registry) Len() int { return len(r.conns) }

// Close closes every connection without responding.
func (r *Registry) Close() {
	for token, c := range r.conns {
		r.remove(token, c, errors.New("registry closed"))
	}
}

func (r *Registry) flush(token transport.Token, c *conn) {
	done, err := c.writeAll()
	if !done {
		return
	}

	r.remove(token, c, err)
}

func (r *Registry) remove(token transport.Token, c *conn, cause error) {
	delete(r.conns, token)

	if err := c.sock.Close(); err != nil {
		c.logger.Warn("error when closing connection", "error", err)
	}

	lifetime := r.clock.Since(c.acceptedAt)
	if cause != nil {
		c.logger.Debug("connection dropped", "mode", c.mode.String(), "lifetime", lifetime, "error", cause)
		return
	}
	c.logger.Debug("connection closed", "lifetime", lifetime)
}
