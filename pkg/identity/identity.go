// Package identity holds the credentials a company principal uses to
// participate in the envelope protocol: an Ed25519 signing key pair and an
// X25519 encryption key pair, both carried as PKCS8/SPKI PEM. It is the Go
// analogue of the Python prototype's keymanager module, minus any file I/O
// — persistence is an external collaborator's job.
package identity

import (
	"crypto/ecdh"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"fmt"
)

const (
	pemTypePrivate = "PRIVATE KEY"
	pemTypePublic  = "PUBLIC KEY"
)

// CompanyIdentity is the credential bundle for one principal: a stable name
// used as a map key inside envelopes, plus signing and encryption key
// material in PEM form. Private key PEMs never leave the owner; public key
// PEMs are meant to be published.
type CompanyIdentity struct {
	Name string

	SigningPrivatePEM    []byte
	SigningPublicPEM     []byte
	EncryptionPrivatePEM []byte
	EncryptionPublicPEM  []byte
}

// Generate creates a fresh Ed25519 signing key pair and X25519 encryption
// key pair for name, PEM-encoded as PKCS8 (private) / SPKI (public).
func Generate(name string) (*CompanyIdentity, error) {
	signPub, signPriv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("identity: generate signing key: %w", err)
	}
	encPriv, err := ecdh.X25519().GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("identity: generate encryption key: %w", err)
	}

	signPrivPEM, err := encodeEd25519Private(signPriv)
	if err != nil {
		return nil, err
	}
	signPubPEM, err := encodeEd25519Public(signPub)
	if err != nil {
		return nil, err
	}
	encPrivPEM, err := encodeX25519Private(encPriv)
	if err != nil {
		return nil, err
	}
	encPubPEM, err := encodeX25519Public(encPriv.PublicKey())
	if err != nil {
		return nil, err
	}

	return &CompanyIdentity{
		Name:                 name,
		SigningPrivatePEM:    signPrivPEM,
		SigningPublicPEM:     signPubPEM,
		EncryptionPrivatePEM: encPrivPEM,
		EncryptionPublicPEM:  encPubPEM,
	}, nil
}

// SigningPrivateKey decodes the Ed25519 signing private key.
func (c *CompanyIdentity) SigningPrivateKey() (ed25519.PrivateKey, error) {
	block, err := decodePEM(c.SigningPrivatePEM, pemTypePrivate)
	if err != nil {
		return nil, err
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("identity: parse signing private key: %w", err)
	}
	priv, ok := key.(ed25519.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("identity: signing private key is not Ed25519")
	}
	return priv, nil
}

// SigningPublicKey decodes the Ed25519 signing public key.
func (c *CompanyIdentity) SigningPublicKey() (ed25519.PublicKey, error) {
	return DecodeSigningPublicKey(c.SigningPublicPEM)
}

// DecodeSigningPublicKey decodes a standalone Ed25519 public key PEM, for
// use when only a counterparty's published key is on hand.
func DecodeSigningPublicKey(pemBytes []byte) (ed25519.PublicKey, error) {
	block, err := decodePEM(pemBytes, pemTypePublic)
	if err != nil {
		return nil, err
	}
	key, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("identity: parse signing public key: %w", err)
	}
	pub, ok := key.(ed25519.PublicKey)
	if !ok {
		return nil, fmt.Errorf("identity: signing public key is not Ed25519")
	}
	return pub, nil
}

// EncryptionPrivateKey decodes the X25519 encryption private key.
func (c *CompanyIdentity) EncryptionPrivateKey() (*ecdh.PrivateKey, error) {
	block, err := decodePEM(c.EncryptionPrivatePEM, pemTypePrivate)
	if err != nil {
		return nil, err
	}
	raw, err := parseX25519PKCS8(block.Bytes)
	if err != nil {
		return nil, err
	}
	priv, err := ecdh.X25519().NewPrivateKey(raw)
	if err != nil {
		return nil, fmt.Errorf("identity: parse encryption private key: %w", err)
	}
	return priv, nil
}

// EncryptionPublicKey decodes the X25519 encryption public key.
func (c *CompanyIdentity) EncryptionPublicKey() (*ecdh.PublicKey, error) {
	return DecodeEncryptionPublicKey(c.EncryptionPublicPEM)
}

// DecodeEncryptionPublicKey decodes a standalone X25519 public key PEM.
func DecodeEncryptionPublicKey(pemBytes []byte) (*ecdh.PublicKey, error) {
	block, err := decodePEM(pemBytes, pemTypePublic)
	if err != nil {
		return nil, err
	}
	raw, err := parseX25519SPKI(block.Bytes)
	if err != nil {
		return nil, err
	}
	pub, err := ecdh.X25519().NewPublicKey(raw)
	if err != nil {
		return nil, fmt.Errorf("identity: parse encryption public key: %w", err)
	}
	return pub, nil
}

func encodeEd25519Private(priv ed25519.PrivateKey) ([]byte, error) {
	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, fmt.Errorf("identity: marshal signing private key: %w", err)
	}
	return encodePEM(pemTypePrivate, der), nil
}

func encodeEd25519Public(pub ed25519.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("identity: marshal signing public key: %w", err)
	}
	return encodePEM(pemTypePublic, der), nil
}

func encodeX25519Private(priv *ecdh.PrivateKey) ([]byte, error) {
	der, err := marshalX25519PKCS8(priv.Bytes())
	if err != nil {
		return nil, err
	}
	return encodePEM(pemTypePrivate, der), nil
}

func encodeX25519Public(pub *ecdh.PublicKey) ([]byte, error) {
	der, err := marshalX25519SPKI(pub.Bytes())
	if err != nil {
		return nil, err
	}
	return encodePEM(pemTypePublic, der), nil
}

func encodePEM(blockType string, der []byte) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: der})
}

func decodePEM(data []byte, wantType string) (*pem.Block, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("identity: no PEM block found")
	}
	if block.Type != wantType {
		return nil, fmt.Errorf("identity: expected PEM type %q, got %q", wantType, block.Type)
	}
	return block, nil
}
