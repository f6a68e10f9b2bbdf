// Package common defines shared constants and sentinel errors used across
// the client and server layers of the banking system. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Envelope errors. The two kinds stay distinguishable so callers can
	// decide what (if anything) to reveal to an untrusted peer.
	ErrDecryptionFailed = errors.New("decryption failed")
	ErrSignatureInvalid = errors.New("signature invalid")

	// Protocol errors.
	ErrMalformedMessage = errors.New("malformed message")
	ErrTamperedCommand  = errors.New("tampered command")
	ErrUnknownTerminal  = errors.New("unknown terminal")

	// Authentication failure deliberately covers both unknown account and
	// wrong password so the peer cannot enumerate accounts.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// Account store errors.
	ErrAccountNotFound   = errors.New("account not found")
	ErrAccountExists     = errors.New("account already exists")
	ErrInsufficientFunds = errors.New("insufficient funds")

	// Command loop errors.
	ErrUnknownCommand = errors.New("unknown command")
	ErrInvalidAmount  = errors.New("invalid amount")
)
