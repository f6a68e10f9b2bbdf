// Package envelope implements the cryptographic wrapper around every
// protocol message: RSA-OAEP encryption for confidentiality plus a
// signature over the plaintext for origin authenticity. The signature
// scheme (RSA-PSS or the ECDSA DSA-analog) is chosen per message.
package envelope

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"fmt"

	"github.com/sbayu21/Secure-banking-system/internal/common"
)

// Seal encrypts plaintext for the recipient with RSA-OAEP (SHA-256) and
// signs the plaintext with the sender's private key under the given scheme.
// Both return values are opaque byte strings safe to put on the wire.
func Seal(plaintext []byte, recipient *rsa.PublicKey, sender crypto.PrivateKey, scheme Scheme) (ciphertext, signature []byte, err error) {
	ciphertext, err = rsa.EncryptOAEP(sha256.New(), rand.Reader, recipient, plaintext, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("seal: %w", err)
	}

	signature, err = schemeFor(scheme).Sign(plaintext, sender)
	if err != nil {
		return nil, nil, fmt.Errorf("seal: %w", err)
	}

	return ciphertext, signature, nil
}

// Open reverses Seal: it decrypts the ciphertext with the recipient's
// private key and then verifies the signature over the recovered plaintext
// with the sender's public key.
//
// Decryption always precedes verification: the signature covers plaintext,
// so there is nothing to verify until decryption succeeds. Failures are
// common.ErrDecryptionFailed and common.ErrSignatureInvalid respectively;
// they stay distinguishable so the caller decides what the peer learns.
func Open(ciphertext, signature []byte, recipient *rsa.PrivateKey, sender crypto.PublicKey, scheme Scheme) ([]byte, error) {
	plaintext, err := rsa.DecryptOAEP(sha256.New(), nil, recipient, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDecryptionFailed, err)
	}

	if err := schemeFor(scheme).Verify(plaintext, signature, sender); err != nil {
		return nil, err
	}

	return plaintext, nil
}
