package http

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseBytes(t *testing.T) {
	testcases := []struct {
		desc     string
		response Response
		expected string
	}{
		{
			desc:     "bad request without body",
			response: NewResponse("HTTP/1.1", 400, nil, ""),
			expected: "HTTP/1.1 400 Bad Request\r\n" +
				"Content-Length: 0\r\n" +
				"Connection: Close\r\n" +
				"\r\n",
		},
		{
			desc: "headers in order",
			response: NewResponse("HTTP/1.0", 200, []Field{
				{"Content-Type", "application/json"},
				{"X-Custom", "yes"},
			}, "[]"),
			expected: "HTTP/1.0 200 OK\r\n" +
				"Content-Type: application/json\r\n" +
				"X-Custom: yes\r\n" +
				"Content-Length: 2\r\n" +
				"Connection: Close\r\n" +
				"\r\n" +
				"[]",
		},
		{
			desc:     "unknown status has empty text",
			response: NewResponse("HTTP/1.1", 299, nil, "hé"),
			expected: "HTTP/1.1 299 \r\n" +
				"Content-Length: 3\r\n" +
				"Connection: Close\r\n" +
				"\r\n" +
				"hé",
		},
	}
	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Equal(t, tc.expected, string(tc.response.Bytes()))
			assert.Equal(t, tc.expected, tc.response.String())
		})
	}
}

func TestResponseShape(t *testing.T) {
	bodies := []string{"", "a", "The route is unknown", strings.Repeat("x", 10000), "line\r\n\r\nbreaks"}

	for _, body := range bodies {
		res := NewResponse("HTTP/1.1", 404, []Field{{"Content-Type", "text/plain"}}, body)
		b := res.Bytes()

		assert.Equal(t, 1, bytes.Count(b, []byte("Content-Length: ")))
		assert.Contains(t, string(b), "Content-Length: "+strconv.Itoa(len(body))+"\r\n")
		assert.True(t, bytes.HasSuffix(b, []byte("Connection: Close\r\n\r\n"+body)))
	}
}

func TestAppendToReusesBuffer(t *testing.T) {
	buf := make([]byte, 0, 256)
	buf = append(buf, "stale request bytes"...)

	out := NewResponse("HTTP/1.1", 200, nil, "ok").AppendTo(buf[:0])
	require.True(t, bytes.HasPrefix(out, []byte("HTTP/1.1 200 OK\r\n")))
	assert.Same(t, &buf[:1][0], &out[0])
}
