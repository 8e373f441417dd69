package http

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	SP   byte = ' '
	HTAB byte = '\t'
)

const crlf = "\r\n"

type ParseOptions struct {
	// HeaderCapacity is the initial capacity of the parsed header list.
	// It is a preallocation hint, not a limit.
	HeaderCapacity uint
}

var DefaultParseOptions = ParseOptions{
	HeaderCapacity: 8,
}

var (
	// ErrIncomplete means more input is needed before the request can be parsed.
	ErrIncomplete = errors.New("request is incomplete")
	// ErrMalformed means the input can never become a valid request.
	ErrMalformed = errors.New("request is malformed")
)

type parseState uint8

const (
	readingRequestLine parseState = iota
	readingHeaders
	doneHeaders
)

// ParseRequest parses data received so far on a connection.
// closed reports whether the peer has stopped sending.
//
// It returns an error wrapping [ErrIncomplete] when more data may still complete
// the request, or wrapping [ErrMalformed] when it never will.
//
// The whole input is scanned again on every call.
// This is fine only because a connection carries exactly one request.
func ParseRequest(data []byte, closed bool, opts ParseOptions) (Request, error) {
	var (
		method    = MethodUnknown
		path      string
		version   string
		headers   = make([]Field, 0, opts.HeaderCapacity)
		bodyLen   uint64
		hasLength bool
	)

	// Copy once. Every field below is a substring of this copy.
	rest := string(data)
	state := readingRequestLine

	for state != doneHeaders {
		line, after, found := strings.Cut(rest, crlf)
		if !found {
			// The last line is not terminated yet.
			break
		}
		rest = after

		switch state {
		case readingRequestLine:
			method, path, version = parseRequestLine(line)
			state = readingHeaders
		case readingHeaders:
			if len(line) == 0 {
				state = doneHeaders
				break
			}

			field, ok := parseField(line)
			if !ok {
				continue
			}
			headers = append(headers, field)

			if strings.EqualFold(field.Name, "Content-Length") {
				if l, err := strconv.ParseUint(field.Value, 10, 64); err == nil {
					bodyLen, hasLength = l, true
				}
			}
		}
	}

	if state != doneHeaders {
		if closed {
			return Request{}, errors.Wrap(ErrMalformed, "input closed before headers were terminated")
		}
		return Request{}, ErrIncomplete
	}

	if method == MethodUnknown || path == "" || version == "" {
		return Request{}, errors.Wrap(ErrMalformed, "unparsable request line")
	}

	req := Request{
		Method:  method,
		Path:    path,
		Version: version,
		Headers: headers,
	}

	if method == MethodGet {
		// Anything after the headers is ignored.
		return req, nil
	}

	if closed || (hasLength && uint64(len(rest)) == bodyLen) {
		req.Body = []byte(rest)
		return req, nil
	}

	return Request{}, ErrIncomplete
}

func isBlank(r rune) bool { return r == rune(SP) || r == rune(HTAB) }

// parseRequestLine splits line into method, path and version.
// Tokens beyond the third are ignored.
func parseRequestLine(line string) (method Method, path, version string) {
	parts := strings.FieldsFunc(line, isBlank)
	for idx, part := range parts {
		switch idx {
		case 0:
			method = parseMethod(part)
		case 1:
			path = part
		case 2:
			version = part
		}
	}
	return
}

func parseField(line string) (Field, bool) {
	name, value, found := strings.Cut(line, ":")
	if !found {
		return Field{}, false
	}

	return Field{Name: name, Value: strings.TrimLeft(value, string([]byte{SP, HTAB}))}, true
}
