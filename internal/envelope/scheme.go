package envelope

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/sbayu21/Secure-banking-system/internal/common"
)

// Scheme identifies one of the two interchangeable signature algorithms a
// terminal may use. The scheme is declared by the sender per message; the
// receiver resolves it to that sender's public key for the scheme, so an
// attacker choosing the tag cannot bypass verification.
type Scheme string

const (
	// SchemeRSA is RSA-PSS over SHA-256 with maximal salt.
	SchemeRSA Scheme = "rsa"
	// SchemeDSA is the DSA-analog scheme: ECDSA over SHA-256 with ASN.1
	// encoded signatures.
	SchemeDSA Scheme = "dsa"
)

// FromTag maps a sender-declared scheme indicator to a Scheme. Presence of
// the substring "dsa" (case-insensitive) selects the DSA-analog scheme,
// anything else selects RSA. This matching rule is part of the wire
// contract.
func FromTag(tag string) Scheme {
	if strings.Contains(strings.ToLower(tag), "dsa") {
		return SchemeDSA
	}
	return SchemeRSA
}

// signatureScheme is the capability interface behind the per-message scheme
// tag: one implementation per algorithm, looked up by tag and never by
// inspecting key contents.
type signatureScheme interface {
	Sign(msg []byte, key crypto.PrivateKey) ([]byte, error)
	Verify(msg, sig []byte, key crypto.PublicKey) error
}

func schemeFor(s Scheme) signatureScheme {
	if s == SchemeDSA {
		return ecdsaScheme{}
	}
	return pssScheme{}
}

type pssScheme struct{}

func (pssScheme) Sign(msg []byte, key crypto.PrivateKey) ([]byte, error) {
	priv, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("rsa scheme: unexpected private key type %T", key)
	}
	digest := sha256.Sum256(msg)
	return rsa.SignPSS(rand.Reader, priv, crypto.SHA256, digest[:], &rsa.PSSOptions{
		SaltLength: rsa.PSSSaltLengthAuto,
	})
}

func (pssScheme) Verify(msg, sig []byte, key crypto.PublicKey) error {
	pub, ok := key.(*rsa.PublicKey)
	if !ok {
		return fmt.Errorf("%w: unexpected public key type %T", common.ErrSignatureInvalid, key)
	}
	digest := sha256.Sum256(msg)
	err := rsa.VerifyPSS(pub, crypto.SHA256, digest[:], sig, &rsa.PSSOptions{
		SaltLength: rsa.PSSSaltLengthAuto,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrSignatureInvalid, err)
	}
	return nil
}

type ecdsaScheme struct{}

func (ecdsaScheme) Sign(msg []byte, key crypto.PrivateKey) ([]byte, error) {
	priv, ok := key.(*ecdsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("dsa scheme: unexpected private key type %T", key)
	}
	digest := sha256.Sum256(msg)
	return ecdsa.SignASN1(rand.Reader, priv, digest[:])
}

func (ecdsaScheme) Verify(msg, sig []byte, key crypto.PublicKey) error {
	pub, ok := key.(*ecdsa.PublicKey)
	if !ok {
		return fmt.Errorf("%w: unexpected public key type %T", common.ErrSignatureInvalid, key)
	}
	digest := sha256.Sum256(msg)
	if !ecdsa.VerifyASN1(pub, digest[:], sig) {
		return common.ErrSignatureInvalid
	}
	return nil
}
