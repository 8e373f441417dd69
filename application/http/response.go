package http

import "strconv"

// AppendTo appends the wire form of r to dst and returns the extended slice.
//
// Content-Length is always derived from the body and the connection is always closed,
// so neither should be given in r.Headers.
func (r Response) AppendTo(dst []byte) []byte {
	dst = append(dst, r.Version...)
	dst = append(dst, SP)
	dst = strconv.AppendUint(dst, uint64(r.Status), 10)
	dst = append(dst, SP)
	dst = append(dst, r.StatusText()...)
	dst = append(dst, crlf...)

	for _, f := range r.Headers {
		dst = appendField(dst, f.Name, f.Value)
	}

	dst = appendField(dst, "Content-Length", strconv.Itoa(len(r.Body)))
	dst = appendField(dst, "Connection", "Close")
	dst = append(dst, crlf...)

	return append(dst, r.Body...)
}

// Bytes returns the wire form of r.
func (r Response) Bytes() []byte {
	return r.AppendTo(make([]byte, 0, r.size()))
}

func (r Response) size() int {
	// Status line, fixed headers and the blank line.
	n := len(r.Version) + len(r.StatusText()) + 64
	for _, f := range r.Headers {
		n += len(f.Name) + len(f.Value) + 4
	}
	return n + len(r.Body)
}

func appendField(dst []byte, name, value string) []byte {
	dst = append(dst, name...)
	dst = append(dst, ": "...)
	dst = append(dst, value...)
	return append(dst, crlf...)
}
