// Package keys loads and stores the asymmetric key material of the banking
// system: the bank's RSA encryption key pair and, per terminal, one signing
// key pair per supported scheme. Keys are read once at process start and
// treated as immutable afterwards.
package keys

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
)

// SavePrivateKey writes key to path as a PKCS#8 PEM block with 0600
// permissions.
func SavePrivateKey(path string, key crypto.PrivateKey) error {
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return fmt.Errorf("marshal private key: %w", err)
	}

	block := &pem.Block{Type: "PRIVATE KEY", Bytes: der}
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// SavePublicKey writes key to path as a PKIX (SubjectPublicKeyInfo) PEM
// block.
func SavePublicKey(path string, key crypto.PublicKey) error {
	der, err := x509.MarshalPKIXPublicKey(key)
	if err != nil {
		return fmt.Errorf("marshal public key: %w", err)
	}

	block := &pem.Block{Type: "PUBLIC KEY", Bytes: der}
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// LoadPrivateKey reads a PEM-encoded private key. PKCS#8 is the native
// format; PKCS#1 (RSA) and SEC1 (EC) blocks are accepted for keys produced
// by other tools.
func LoadPrivateKey(path string) (crypto.PrivateKey, error) {
	block, err := readPEM(path)
	if err != nil {
		return nil, err
	}

	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	if key, err := x509.ParseECPrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	return nil, fmt.Errorf("%s: unsupported private key format", path)
}

// LoadPublicKey reads a PEM-encoded public key (PKIX, with a PKCS#1
// fallback for RSA).
func LoadPublicKey(path string) (crypto.PublicKey, error) {
	block, err := readPEM(path)
	if err != nil {
		return nil, err
	}

	if key, err := x509.ParsePKIXPublicKey(block.Bytes); err == nil {
		return key, nil
	}
	if key, err := x509.ParsePKCS1PublicKey(block.Bytes); err == nil {
		return key, nil
	}
	return nil, fmt.Errorf("%s: unsupported public key format", path)
}

// LoadRSAPrivateKey reads a private key and requires it to be RSA.
func LoadRSAPrivateKey(path string) (*rsa.PrivateKey, error) {
	key, err := LoadPrivateKey(path)
	if err != nil {
		return nil, err
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%s: expected RSA private key, got %T", path, key)
	}
	return rsaKey, nil
}

// LoadRSAPublicKey reads a public key and requires it to be RSA.
func LoadRSAPublicKey(path string) (*rsa.PublicKey, error) {
	key, err := LoadPublicKey(path)
	if err != nil {
		return nil, err
	}
	rsaKey, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%s: expected RSA public key, got %T", path, key)
	}
	return rsaKey, nil
}

// LoadECDSAPublicKey reads a public key and requires it to be ECDSA.
func LoadECDSAPublicKey(path string) (*ecdsa.PublicKey, error) {
	key, err := LoadPublicKey(path)
	if err != nil {
		return nil, err
	}
	ecKey, ok := key.(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%s: expected ECDSA public key, got %T", path, key)
	}
	return ecKey, nil
}

func readPEM(path string) (*pem.Block, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, fmt.Errorf("%s: no PEM block found", path)
	}
	return block, nil
}
