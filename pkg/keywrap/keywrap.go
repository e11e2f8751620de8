// Package keywrap implements the ephemeral-static X25519 + AES-GCM hybrid
// wrap used to protect a 32-byte symmetric key for one named recipient. A
// WrappedKey is self-describing: it carries the ephemeral public key the
// recipient needs to recompute the shared secret, so unwrap needs nothing
// beyond the recipient's own private key.
package keywrap

import (
	"crypto/ecdh"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/luxfi/dvpguard/pkg/canon"
	"github.com/luxfi/dvpguard/pkg/primitives"
)

// ErrUnwrap covers every way recovering the symmetric key can fail: a
// malformed blob or an AEAD tag mismatch. The two are not distinguished
// further, matching the "Unwrap" error class in the protocol's taxonomy.
var ErrUnwrap = errors.New("keywrap: unwrap failed")

// WrappedKey is the wire form of a wrapped symmetric key: an ephemeral
// X25519 public key, the AES-GCM nonce, and the ciphertext+tag.
type WrappedKey struct {
	EphemeralPublic string `json:"ephemeral_public"`
	Nonce           string `json:"nonce"`
	Ciphertext      string `json:"ciphertext"`
}

// Wrap encrypts symKey for recipientPublic using an ephemeral X25519 key
// agreement followed by HKDF-SHA256 key derivation and AES-256-GCM sealing.
func Wrap(recipientPublic *ecdh.PublicKey, symKey []byte) (*WrappedKey, error) {
	ephemeral, err := primitives.GenerateAgreementKey()
	if err != nil {
		return nil, err
	}
	shared, err := ephemeral.ECDH(recipientPublic)
	if err != nil {
		return nil, fmt.Errorf("keywrap: key agreement: %w", err)
	}
	kw, err := primitives.DeriveWrapKey(shared)
	if err != nil {
		return nil, err
	}
	ciphertext, tag, nonce, err := primitives.SealAESGCM(kw, symKey, nil)
	if err != nil {
		return nil, err
	}
	return &WrappedKey{
		EphemeralPublic: primitives.B64Encode(ephemeral.PublicKey().Bytes()),
		Nonce:           primitives.B64Encode(nonce),
		Ciphertext:      primitives.B64Encode(append(ciphertext, tag...)),
	}, nil
}

// Unwrap recovers the symmetric key from a WrappedKey using the recipient's
// X25519 private key.
func Unwrap(recipientPrivate *ecdh.PrivateKey, wrapped *WrappedKey) ([]byte, error) {
	ephemeralRaw, err := primitives.B64Decode(wrapped.EphemeralPublic)
	if err != nil {
		return nil, ErrUnwrap
	}
	ephemeralPub, err := primitives.ParseAgreementPublicKey(ephemeralRaw)
	if err != nil {
		return nil, ErrUnwrap
	}
	nonce, err := primitives.B64Decode(wrapped.Nonce)
	if err != nil {
		return nil, ErrUnwrap
	}
	sealed, err := primitives.B64Decode(wrapped.Ciphertext)
	if err != nil {
		return nil, ErrUnwrap
	}
	if len(sealed) < 16 {
		return nil, ErrUnwrap
	}
	ciphertext, tag := sealed[:len(sealed)-16], sealed[len(sealed)-16:]

	shared, err := recipientPrivate.ECDH(ephemeralPub)
	if err != nil {
		return nil, ErrUnwrap
	}
	kw, err := primitives.DeriveWrapKey(shared)
	if err != nil {
		return nil, ErrUnwrap
	}
	symKey, err := primitives.OpenAESGCM(kw, ciphertext, tag, nonce, nil)
	if err != nil {
		return nil, ErrUnwrap
	}
	return symKey, nil
}

// Encode renders a WrappedKey as its canonical-JSON blob form, the shape
// stored inside an envelope's ek_map.
func Encode(w *WrappedKey) ([]byte, error) {
	out, err := canon.Bytes(w)
	if err != nil {
		return nil, fmt.Errorf("keywrap: encode: %w", err)
	}
	return out, nil
}

// Decode parses a WrappedKey blob previously produced by Encode.
func Decode(blob []byte) (*WrappedKey, error) {
	var w WrappedKey
	if err := json.Unmarshal(blob, &w); err != nil {
		return nil, ErrUnwrap
	}
	return &w, nil
}
