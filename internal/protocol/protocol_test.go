package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/sbayu21/Secure-banking-system/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrame_RoundTrip(t *testing.T) {
	var buf bytes.Buffer

	in := LoginRequest{
		TerminalID: "atm1",
		Scheme:     "dsa",
		Ciphertext: []byte{1, 2, 3},
		Signature:  []byte{4, 5, 6},
	}
	require.NoError(t, WriteFrame(&buf, in))

	var out LoginRequest
	require.NoError(t, ReadFrame(&buf, &out))
	assert.Equal(t, in, out)
}

func TestFrame_MultipleSequentialFrames(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, WriteFrame(&buf, CommandRequest{Command: "balance"}))
	require.NoError(t, WriteFrame(&buf, CommandRequest{Command: "quit"}))

	var first, second CommandRequest
	require.NoError(t, ReadFrame(&buf, &first))
	require.NoError(t, ReadFrame(&buf, &second))

	assert.Equal(t, "balance", first.Command)
	assert.Equal(t, "quit", second.Command)
}

func TestReadFrame_CleanEOF(t *testing.T) {
	var out Response
	err := ReadFrame(bytes.NewReader(nil), &out)
	if err != io.EOF {
		t.Fatalf("want io.EOF, got %v", err)
	}
}

func TestReadFrame_TruncatedBody(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, Response{Status: StatusOK, Message: "Authenticated"}))

	truncated := buf.Bytes()[:buf.Len()-3]

	var out Response
	err := ReadFrame(bytes.NewReader(truncated), &out)
	if !errors.Is(err, common.ErrMalformedMessage) {
		t.Fatalf("want ErrMalformedMessage, got %v", err)
	}
}

func TestReadFrame_OversizedPrefix(t *testing.T) {
	var prefix [4]byte
	binary.BigEndian.PutUint32(prefix[:], MaxFrameSize+1)

	var out Response
	err := ReadFrame(bytes.NewReader(prefix[:]), &out)
	if !errors.Is(err, common.ErrMalformedMessage) {
		t.Fatalf("want ErrMalformedMessage, got %v", err)
	}
}

func TestReadFrame_BadJSON(t *testing.T) {
	var buf bytes.Buffer
	body := []byte("{not json")
	var prefix [4]byte
	binary.BigEndian.PutUint32(prefix[:], uint32(len(body)))
	buf.Write(prefix[:])
	buf.Write(body)

	var out Response
	err := ReadFrame(&buf, &out)
	if !errors.Is(err, common.ErrMalformedMessage) {
		t.Fatalf("want ErrMalformedMessage, got %v", err)
	}
}

func TestResponse_OK(t *testing.T) {
	assert.True(t, (&Response{Status: StatusOK}).OK())
	assert.False(t, (&Response{Status: StatusFail}).OK())
}
