// Package protocol defines the wire format between terminals and the bank
// server: length-prefixed JSON frames over a raw TCP connection.
//
// The legacy deployment sent ciphertext, signature and scheme tag as
// three separate socket writes and relied on read boundaries lining up.
// That framing is fragile, so each logical exchange here is one
// self-delimiting frame carrying all fields. Byte-level interop with the
// legacy deployment is not a goal.
package protocol

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"github.com/sbayu21/Secure-banking-system/internal/common"
)

// MaxFrameSize bounds a single frame. Envelopes for a 2048-bit RSA key are
// a few hundred bytes; anything near the limit is a broken or hostile peer.
const MaxFrameSize = 64 * 1024

// LoginRequest opens a session. Ciphertext decrypts to
// "terminalId:accountId:password"; the signature covers that plaintext and
// was produced by the declared terminal under the declared scheme.
type LoginRequest struct {
	TerminalID string `json:"terminal_id"`
	Scheme     string `json:"scheme"`
	Ciphertext []byte `json:"ciphertext"`
	Signature  []byte `json:"signature"`
}

// CommandRequest carries one account command. Command repeats the plaintext
// in clear for routing; the server rejects the message if the decrypted
// plaintext differs (tamper check). Scheme may be empty, in which case the
// scheme bound at login applies.
type CommandRequest struct {
	Command    string `json:"command"`
	Scheme     string `json:"scheme,omitempty"`
	Ciphertext []byte `json:"ciphertext"`
	Signature  []byte `json:"signature"`
}

// Response statuses. The human-readable message is the protocol surface
// the legacy servers defined; the status field is the machine-readable
// addition.
const (
	StatusOK   = "ok"
	StatusFail = "fail"
)

// Response is the server's reply to a login or command frame.
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// OK reports whether the response carries a success status.
func (r *Response) OK() bool {
	return r.Status == StatusOK
}

// WriteFrame marshals v to JSON and writes it with a uint32 big-endian
// length prefix.
func WriteFrame(w io.Writer, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal frame: %w", err)
	}
	if len(body) > MaxFrameSize {
		return fmt.Errorf("%w: frame of %d bytes exceeds limit", common.ErrMalformedMessage, len(body))
	}

	var prefix [4]byte
	binary.BigEndian.PutUint32(prefix[:], uint32(len(body)))

	if _, err := w.Write(prefix[:]); err != nil {
		return err
	}
	_, err = w.Write(body)
	return err
}

// ReadFrame reads one length-prefixed frame and unmarshals it into v.
// io.EOF before the prefix means the peer closed cleanly; any other short
// read or an oversized prefix is a malformed message.
func ReadFrame(r io.Reader, v any) error {
	var prefix [4]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		if err == io.EOF {
			return io.EOF
		}
		return fmt.Errorf("%w: %v", common.ErrMalformedMessage, err)
	}

	size := binary.BigEndian.Uint32(prefix[:])
	if size == 0 || size > MaxFrameSize {
		return fmt.Errorf("%w: frame size %d", common.ErrMalformedMessage, size)
	}

	body := make([]byte, size)
	if _, err := io.ReadFull(r, body); err != nil {
		return fmt.Errorf("%w: %v", common.ErrMalformedMessage, err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %v", common.ErrMalformedMessage, err)
	}
	return nil
}
