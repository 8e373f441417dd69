// Package http implements the HTTP/1.x wire format used by the event-driven server:
// an incremental, re-scanning request parser and a response serializer.
//
// Only GET and POST are recognized. Bodies are delimited by Content-Length
// or by the peer closing its side of the connection.
//
// Reference:
//
// - https://datatracker.ietf.org/doc/html/rfc9112
package http
