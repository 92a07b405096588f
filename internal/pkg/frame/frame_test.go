package frame

import (
	"bytes"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"robonav/internal/pkg/message"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reader(s string) *Reader {
	return NewReader(strings.NewReader(s))
}

func TestReadSequentialFrames(t *testing.T) {
	r := reader("Mnau!\a\b2\a\bOK 0 0\a\b")
	for _, want := range []string{"Mnau!", "2", "OK 0 0"} {
		got, err := r.Read(100)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := r.Read(100)
	require.ErrorIs(t, err, ErrConnectionClosed)
}

func TestReadKeepsLoneControlBytes(t *testing.T) {
	got, err := reader("a\bb\ac\a\b").Read(100)
	require.NoError(t, err)
	require.Equal(t, "a\bb\ac", got)
}

func TestReadEmptyBody(t *testing.T) {
	got, err := reader("\a\b").Read(5)
	require.NoError(t, err)
	require.Equal(t, "", got)
}

func TestReadLengthBoundary(t *testing.T) {
	tests := []struct {
		name   string
		maxLen int
		body   string
		ok     bool
	}{
		{"username at limit", 20, strings.Repeat("u", 18), true},
		{"username over limit", 20, strings.Repeat("u", 19), false},
		{"key index at limit", 5, "123", true},
		{"key index over limit", 5, "1234", false},
		{"confirmation at limit", 7, "65535", true},
		{"confirmation over limit", 7, "655350", false},
		{"position over limit", 12, "OK -10 -100", false},
		{"position at limit", 12, "OK -10 -10", true},
		{"secret at limit", 100, strings.Repeat("s", 98), true},
		{"secret over limit", 100, strings.Repeat("s", 99), false},
		{"recharging during key index", 5, "RECHARGING", true},
		{"full power during confirmation", 7, "FULL POWER", true},
		{"keyword with suffix", 5, "RECHARGINGX", false},
		{"keyword prefix then garbage", 5, "RECHX", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := reader(tt.body+"\a\b").Read(tt.maxLen)
			if tt.ok {
				require.NoError(t, err)
				require.Equal(t, tt.body, got)
				return
			}
			require.ErrorIs(t, err, ErrMessageTooLong)
			var tooLong *TooLongError
			require.True(t, errors.As(err, &tooLong))
			assert.Equal(t, len(tooLong.Body), tooLong.Len)
			assert.True(t, strings.HasPrefix(tt.body, tooLong.Body))
		})
	}
}

func TestReadFailsBeforeTerminatorArrives(t *testing.T) {
	// The robot never finishes the frame; the reader must not wait for it.
	r := NewReader(io.MultiReader(strings.NewReader("1234"), blockingReader{}))
	_, err := r.Read(5)
	require.ErrorIs(t, err, ErrMessageTooLong)
}

type blockingReader struct{}

func (blockingReader) Read([]byte) (int, error) {
	select {}
}

func TestReadConnectionClosedMidFrame(t *testing.T) {
	_, err := reader("OK 1").Read(12)
	require.ErrorIs(t, err, ErrConnectionClosed)
}

func TestReadTransportError(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()
	defer server.Close()
	require.NoError(t, server.SetReadDeadline(time.Now().Add(10*time.Millisecond)))

	_, err := NewReader(server).Read(12)
	var transport *TransportError
	require.True(t, errors.As(err, &transport))
	assert.Equal(t, "read", transport.Op)
	var netErr net.Error
	require.True(t, errors.As(err, &netErr))
	assert.True(t, netErr.Timeout())
}

func TestServerMessageRoundTrip(t *testing.T) {
	msgs := []message.Server{
		message.NewServer(message.KeyRequest),
		message.NewConfirm(65535),
		message.NewServer(message.OK),
		message.NewServer(message.LoginFailed),
		message.NewServer(message.SyntaxError),
		message.NewServer(message.LogicError),
		message.NewServer(message.KeyOutOfRange),
		message.NewServer(message.Move),
		message.NewServer(message.TurnLeft),
		message.NewServer(message.TurnRight),
		message.NewServer(message.GetMessage),
		message.NewServer(message.Logout),
	}
	var stream bytes.Buffer
	for _, m := range msgs {
		stream.Write(m.Encode())
	}
	r := NewReader(&stream)
	for _, want := range msgs {
		body, err := r.Read(100)
		require.NoError(t, err)
		got, err := message.ParseServer(body)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "OK 1 2"))
	require.Equal(t, "OK 1 2\a\b", buf.String())
}
