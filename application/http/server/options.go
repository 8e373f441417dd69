package server

import (
	"time"

	"event-http/application/http"
	"event-http/transport"
)

type Options struct {
	// ChunkSize is how much the connection buffer grows by whenever it fills up.
	ChunkSize uint

	// EventCapacity is the maximum number of events handled per poll.
	EventCapacity uint

	// PollTimeout bounds how long a poll blocks, so that cancellation is noticed.
	PollTimeout time.Duration

	// TokenLimit is the largest connection token. Zero means [transport.DefaultTokenLimit].
	TokenLimit transport.Token

	Parse http.ParseOptions
}

var DefaultOptions = Options{
	ChunkSize:     8192,
	EventCapacity: 1024,
	PollTimeout:   100 * time.Millisecond,
	TokenLimit:    transport.DefaultTokenLimit,
	Parse:         http.DefaultParseOptions,
}

func (o Options) withDefaults() Options {
	if o.ChunkSize == 0 {
		o.ChunkSize = DefaultOptions.ChunkSize
	}
	if o.EventCapacity == 0 {
		o.EventCapacity = DefaultOptions.EventCapacity
	}
	if o.PollTimeout == 0 {
		o.PollTimeout = DefaultOptions.PollTimeout
	}
	if o.TokenLimit == 0 {
		o.TokenLimit = DefaultOptions.TokenLimit
	}
	return o
}
