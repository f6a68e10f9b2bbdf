package keys

import (
	"crypto"
	"crypto/rsa"
	"fmt"
	"path/filepath"

	"github.com/sbayu21/Secure-banking-system/internal/common"
	"github.com/sbayu21/Secure-banking-system/internal/envelope"
)

// Certs directory layout, as produced by cmd/keygen:
//
//	bank_private.pem        bank RSA private key (server only)
//	bank_public.pem         bank RSA public key (terminals)
//	<id>_private.pem        terminal RSA signing key (terminal only)
//	<id>_public.pem         terminal RSA verification key (server)
//	<id>_dsa_private.pem    terminal DSA-analog signing key (terminal only)
//	<id>_dsa_public.pem     terminal DSA-analog verification key (server)

// Ring is the server's view of the key material: the bank's decryption key
// plus one verification key per terminal per scheme. A Ring is built once
// at startup and read-only afterwards, so it is safe to share across
// connection goroutines without locking.
type Ring struct {
	BankPrivate *rsa.PrivateKey

	terminals map[string]map[envelope.Scheme]crypto.PublicKey
}

// LoadServerRing reads the bank private key and the public keys of every
// listed terminal from dir. A terminal missing either scheme's key is a
// startup error: both schemes must validate independently.
func LoadServerRing(dir string, terminalIDs []string) (*Ring, error) {
	bankPriv, err := LoadRSAPrivateKey(filepath.Join(dir, "bank_private.pem"))
	if err != nil {
		return nil, fmt.Errorf("bank key: %w", err)
	}

	ring := &Ring{
		BankPrivate: bankPriv,
		terminals:   make(map[string]map[envelope.Scheme]crypto.PublicKey, len(terminalIDs)),
	}

	for _, id := range terminalIDs {
		rsaPub, err := LoadRSAPublicKey(filepath.Join(dir, id+"_public.pem"))
		if err != nil {
			return nil, fmt.Errorf("terminal %s: %w", id, err)
		}
		dsaPub, err := LoadECDSAPublicKey(filepath.Join(dir, id+"_dsa_public.pem"))
		if err != nil {
			return nil, fmt.Errorf("terminal %s: %w", id, err)
		}
		ring.terminals[id] = map[envelope.Scheme]crypto.PublicKey{
			envelope.SchemeRSA: rsaPub,
			envelope.SchemeDSA: dsaPub,
		}
	}

	return ring, nil
}

// TerminalKey returns the verification key registered for the terminal
// under the given scheme.
func (r *Ring) TerminalKey(terminalID string, scheme envelope.Scheme) (crypto.PublicKey, error) {
	schemes, ok := r.terminals[terminalID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", common.ErrUnknownTerminal, terminalID)
	}
	key, ok := schemes[scheme]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no %s key", common.ErrUnknownTerminal, terminalID, scheme)
	}
	return key, nil
}

// Terminals lists the terminal IDs present in the ring.
func (r *Ring) Terminals() []string {
	ids := make([]string, 0, len(r.terminals))
	for id := range r.terminals {
		ids = append(ids, id)
	}
	return ids
}

// Bundle is a terminal's view of the key material: the bank's encryption
// key plus the terminal's own signing key per scheme.
type Bundle struct {
	BankPublic *rsa.PublicKey

	private map[envelope.Scheme]crypto.PrivateKey
}

// LoadTerminalBundle reads the bank public key and the terminal's private
// keys from dir.
func LoadTerminalBundle(dir, terminalID string) (*Bundle, error) {
	bankPub, err := LoadRSAPublicKey(filepath.Join(dir, "bank_public.pem"))
	if err != nil {
		return nil, fmt.Errorf("bank key: %w", err)
	}

	rsaPriv, err := LoadPrivateKey(filepath.Join(dir, terminalID+"_private.pem"))
	if err != nil {
		return nil, fmt.Errorf("terminal %s: %w", terminalID, err)
	}
	dsaPriv, err := LoadPrivateKey(filepath.Join(dir, terminalID+"_dsa_private.pem"))
	if err != nil {
		return nil, fmt.Errorf("terminal %s: %w", terminalID, err)
	}

	return &Bundle{
		BankPublic: bankPub,
		private: map[envelope.Scheme]crypto.PrivateKey{
			envelope.SchemeRSA: rsaPriv,
			envelope.SchemeDSA: dsaPriv,
		},
	}, nil
}

// SigningKey returns the terminal's private key for the given scheme.
func (b *Bundle) SigningKey(scheme envelope.Scheme) (crypto.PrivateKey, error) {
	key, ok := b.private[scheme]
	if !ok {
		return nil, fmt.Errorf("no signing key for scheme %s", scheme)
	}
	return key, nil
}
