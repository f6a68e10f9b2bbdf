package atm

import (
	"fmt"
	"net"

	"github.com/sbayu21/Secure-banking-system/internal/envelope"
	"github.com/sbayu21/Secure-banking-system/internal/keys"
	"github.com/sbayu21/Secure-banking-system/internal/protocol"
)

// Client speaks the terminal protocol over a single connection. Every
// message is encrypted to the bank's public key and signed with this
// terminal's private key for the chosen scheme.
type Client struct {
	conn       net.Conn
	bundle     *keys.Bundle
	terminalID string
	scheme     envelope.Scheme
}

// Dial connects to the bank server and returns a client bound to the
// given terminal identity and signature scheme.
func Dial(addr, terminalID string, bundle *keys.Bundle, scheme envelope.Scheme) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial error: %w", err)
	}
	return NewClient(conn, terminalID, bundle, scheme), nil
}

// NewClient wraps an established connection. Used directly by tests that
// drive the protocol over net.Pipe.
func NewClient(conn net.Conn, terminalID string, bundle *keys.Bundle, scheme envelope.Scheme) *Client {
	return &Client{conn: conn, bundle: bundle, terminalID: terminalID, scheme: scheme}
}

// Login seals "terminal:account:password" to the bank and returns the
// server's verdict. A failed login means the server has already dropped
// the connection.
func (c *Client) Login(accountID, password string) (protocol.Response, error) {
	plaintext := fmt.Sprintf("%s:%s:%s", c.terminalID, accountID, password)

	ct, sig, err := c.seal([]byte(plaintext))
	if err != nil {
		return protocol.Response{}, err
	}

	req := protocol.LoginRequest{
		TerminalID: c.terminalID,
		Scheme:     string(c.scheme),
		Ciphertext: ct,
		Signature:  sig,
	}
	return c.roundTrip(req)
}

// Send seals a command and returns the server's response. The command is
// also carried in clear so the server can detect tampering.
func (c *Client) Send(command string) (protocol.Response, error) {
	ct, sig, err := c.seal([]byte(command))
	if err != nil {
		return protocol.Response{}, err
	}

	req := protocol.CommandRequest{
		Command:    command,
		Scheme:     string(c.scheme),
		Ciphertext: ct,
		Signature:  sig,
	}
	return c.roundTrip(req)
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) seal(plaintext []byte) ([]byte, []byte, error) {
	priv, err := c.bundle.SigningKey(c.scheme)
	if err != nil {
		return nil, nil, err
	}
	return envelope.Seal(plaintext, c.bundle.BankPublic, priv, c.scheme)
}

func (c *Client) roundTrip(req any) (protocol.Response, error) {
	if err := protocol.WriteFrame(c.conn, req); err != nil {
		return protocol.Response{}, fmt.Errorf("write error: %w", err)
	}

	var resp protocol.Response
	if err := protocol.ReadFrame(c.conn, &resp); err != nil {
		return protocol.Response{}, fmt.Errorf("read error: %w", err)
	}
	return resp, nil
}
