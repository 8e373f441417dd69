package stub

import (
	"io"
	"testing"

	"event-http/transport"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type StubConnTestSuite struct {
	suite.Suite

	conn *Conn
}

func TestStubConnTestSuite(t *testing.T) {
	suite.Run(t, new(StubConnTestSuite))
}

func (s *StubConnTestSuite) SetupTest() {
	s.conn = NewConn(5)
}

func (s *StubConnTestSuite) TestRead() {
	s.conn.Feed([]byte("Hello, "), nil, []byte("World!"))
	buf := make([]byte, 4)

	reads := []string{"Hell", "o, ", "Worl", "d!"}
	for _, expected := range reads {
		n, err := s.conn.Read(buf)
		s.Require().NoError(err)
		s.Equal(expected, string(buf[:n]))
	}

	_, err := s.conn.Read(buf)
	s.ErrorIs(err, transport.ErrWouldBlock)

	s.conn.HangUp()
	_, err = s.conn.Read(buf)
	s.ErrorIs(err, io.EOF)
	s.Equal(6, s.conn.ReadCalls)
}

func (s *StubConnTestSuite) TestFailRead() {
	readErr := errors.New("connection reset by peer")
	s.conn.Feed([]byte("queued"))
	s.conn.FailRead(readErr)

	buf := make([]byte, 16)
	n, err := s.conn.Read(buf)
	s.Require().NoError(err)
	s.Equal("queued", string(buf[:n]))

	_, err = s.conn.Read(buf)
	s.ErrorIs(err, readErr)
}

func (s *StubConnTestSuite) TestLimitWrites() {
	s.conn.LimitWrites(3)

	n, err := s.conn.Write([]byte("Hello"))
	s.Require().NoError(err)
	s.Equal(3, n)

	_, err = s.conn.Write([]byte("lo"))
	s.ErrorIs(err, transport.ErrWouldBlock)

	s.conn.LimitWrites(-1)
	n, err = s.conn.Write([]byte("lo"))
	s.Require().NoError(err)
	s.Equal(2, n)

	s.Equal("Hello", string(s.conn.Written()))
	s.Equal(3, s.conn.WriteCalls)
}

func (s *StubConnTestSuite) TestWriteFailures() {
	s.conn.ZeroWrite()
	n, err := s.conn.Write([]byte("x"))
	s.NoError(err)
	s.Zero(n)

	writeErr := errors.New("broken pipe")
	s.conn.FailWrite(writeErr)
	_, err = s.conn.Write([]byte("x"))
	s.ErrorIs(err, writeErr)

	s.Empty(s.conn.Written())
}

func (s *StubConnTestSuite) TestClose() {
	s.conn.Feed([]byte("unread"))
	s.Require().NoError(s.conn.Close())
	s.True(s.conn.Closed())

	_, err := s.conn.Read(make([]byte, 8))
	s.ErrorIs(err, transport.ErrConnClosed)
	_, err = s.conn.Write([]byte("x"))
	s.ErrorIs(err, transport.ErrConnClosed)

	s.ErrorIs(s.conn.Close(), transport.ErrConnClosed)
}

func TestListener(t *testing.T) {
	assert, require := assert.New(t), require.New(t)

	l := NewListener()
	a, b := NewConn(1), NewConn(2)
	l.Enqueue(a, b)
	assert.Equal(2, l.Pending())

	for _, expected := range []*Conn{a, b} {
		c, err := l.Accept()
		require.NoError(err)
		assert.Same(expected, c)
	}

	_, err := l.Accept()
	assert.ErrorIs(err, transport.ErrWouldBlock)

	acceptErr := errors.New("too many open files")
	l.FailAccept(acceptErr)
	_, err = l.Accept()
	assert.ErrorIs(err, acceptErr)

	require.NoError(l.Close())
	assert.True(l.Closed())
	_, err = l.Accept()
	assert.ErrorIs(err, transport.ErrListenerClosed)
}

func TestPoller(t *testing.T) {
	assert, require := assert.New(t), require.New(t)

	p := NewPoller()
	conn := NewConn(3)
	require.NoError(p.Register(conn, 1, transport.Readable|transport.Writable))
	assert.Equal(Registration{Handle: conn, Interest: transport.Readable | transport.Writable}, p.Registered[1])

	events := make([]transport.Event, 2)

	idle := 0
	p.OnIdle = func() { idle++ }
	n, err := p.Wait(events, 0)
	require.NoError(err)
	assert.Zero(n)
	assert.Equal(1, idle)

	p.Push(transport.Event{Token: 1, Readiness: transport.Readable})
	p.Push(
		transport.Event{Token: 1, Readiness: transport.Writable},
		transport.Event{Token: 2, Readiness: transport.Readable},
	)

	n, err = p.Wait(events, 0)
	require.NoError(err)
	assert.Equal([]transport.Event{{Token: 1, Readiness: transport.Readable}}, events[:n])

	n, err = p.Wait(events, 0)
	require.NoError(err)
	assert.Equal(2, n)
	assert.Equal(transport.Token(2), events[1].Token)
	assert.Equal(1, idle)

	p.Push(make([]transport.Event, 3)...)
	_, err = p.Wait(events, 0)
	assert.Error(err)

	registerErr := errors.New("bad file descriptor")
	p.FailRegister(registerErr)
	assert.ErrorIs(p.Register(conn, 2, transport.Readable), registerErr)

	require.NoError(p.Close())
	assert.True(p.Closed())
	_, err = p.Wait(events, 0)
	assert.ErrorIs(err, transport.ErrPollerClosed)
}
