package keys

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"path/filepath"

	"github.com/sbayu21/Secure-banking-system/internal/filex"
)

// DefaultRSABits is the modulus size used for generated RSA keys.
const DefaultRSABits = 2048

// GenerateAll creates the complete certs directory: an RSA pair and a
// DSA-analog (ECDSA P-256) pair for the bank and for every terminal.
// Existing files are overwritten.
func GenerateAll(dir string, terminalIDs []string, rsaBits int) error {
	if rsaBits == 0 {
		rsaBits = DefaultRSABits
	}

	abs, err := filex.EnsureDir(dir)
	if err != nil {
		return err
	}

	names := append([]string{"bank"}, terminalIDs...)
	for _, name := range names {
		if err := generatePair(abs, name, rsaBits); err != nil {
			return fmt.Errorf("generate %s: %w", name, err)
		}
	}
	return nil
}

func generatePair(dir, name string, rsaBits int) error {
	rsaKey, err := rsa.GenerateKey(rand.Reader, rsaBits)
	if err != nil {
		return err
	}
	if err := SavePrivateKey(filepath.Join(dir, name+"_private.pem"), rsaKey); err != nil {
		return err
	}
	if err := SavePublicKey(filepath.Join(dir, name+"_public.pem"), &rsaKey.PublicKey); err != nil {
		return err
	}

	dsaKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return err
	}
	if err := SavePrivateKey(filepath.Join(dir, name+"_dsa_private.pem"), dsaKey); err != nil {
		return err
	}
	if err := SavePublicKey(filepath.Join(dir, name+"_dsa_public.pem"), &dsaKey.PublicKey); err != nil {
		return err
	}

	return nil
}
