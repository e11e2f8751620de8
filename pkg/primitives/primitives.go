// Package primitives wraps the fixed cryptographic choices the envelope
// protocol is built on: URL-safe base64, SHA-256, Ed25519, X25519 and
// HKDF-SHA256, and AES-256-GCM. Nothing here is configurable — every
// algorithm and parameter is pinned so two independent implementations
// produce byte-identical envelopes from the same inputs.
package primitives

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdh"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// KeyWrapInfo is the fixed HKDF info string used to derive a per-recipient
// wrapping key from an X25519 shared secret. It must never change without
// breaking cross-implementation wrap/unwrap compatibility.
const KeyWrapInfo = "cop-key-wrap"

const (
	nonceSize = 12
	tagSize   = 16
	// SymKeySize is the length in bytes of every data-encryption key this
	// protocol generates.
	SymKeySize = 32
)

var (
	// ErrAEADOpen signals an AES-GCM authentication failure: bad key, bad
	// nonce, bad AAD, or tampered ciphertext.
	ErrAEADOpen = errors.New("primitives: AEAD authentication failed")
)

// B64Encode renders bytes as URL-safe base64 with padding, the only byte
// encoding used anywhere on the wire.
func B64Encode(b []byte) string {
	return base64.URLEncoding.EncodeToString(b)
}

// B64Decode parses URL-safe, padded base64.
func B64Decode(s string) ([]byte, error) {
	b, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("primitives: base64 decode: %w", err)
	}
	return b, nil
}

// Sum256 returns the SHA-256 digest of data.
func Sum256(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

// RandomBytes returns n cryptographically secure random bytes.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("primitives: random bytes: %w", err)
	}
	return b, nil
}

// GenerateSigningKey returns a fresh Ed25519 key pair.
func GenerateSigningKey() (priv ed25519.PrivateKey, pub ed25519.PublicKey, err error) {
	pub, priv, err = ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("primitives: generate signing key: %w", err)
	}
	return priv, pub, nil
}

// Sign produces a 64-byte Ed25519 signature over message.
func Sign(priv ed25519.PrivateKey, message []byte) []byte {
	return ed25519.Sign(priv, message)
}

// Verify reports whether sig is a valid Ed25519 signature by pub over
// message. It never panics on malformed input; it returns false instead.
func Verify(pub ed25519.PublicKey, message, sig []byte) bool {
	if len(pub) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(pub, message, sig)
}

// GenerateAgreementKey returns a fresh X25519 key pair.
func GenerateAgreementKey() (*ecdh.PrivateKey, error) {
	priv, err := ecdh.X25519().GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("primitives: generate agreement key: %w", err)
	}
	return priv, nil
}

// ParseAgreementPublicKey decodes a raw 32-byte X25519 public key.
func ParseAgreementPublicKey(raw []byte) (*ecdh.PublicKey, error) {
	pub, err := ecdh.X25519().NewPublicKey(raw)
	if err != nil {
		return nil, fmt.Errorf("primitives: parse X25519 public key: %w", err)
	}
	return pub, nil
}

// ParseAgreementPrivateKey decodes a raw 32-byte X25519 private scalar.
func ParseAgreementPrivateKey(raw []byte) (*ecdh.PrivateKey, error) {
	priv, err := ecdh.X25519().NewPrivateKey(raw)
	if err != nil {
		return nil, fmt.Errorf("primitives: parse X25519 private key: %w", err)
	}
	return priv, nil
}

// DeriveWrapKey runs HKDF-SHA256 over an X25519 shared secret with an empty
// salt and the fixed KeyWrapInfo string, producing a 32-byte AES-256 key.
func DeriveWrapKey(shared []byte) ([]byte, error) {
	out := make([]byte, SymKeySize)
	r := hkdf.New(sha256.New, shared, nil, []byte(KeyWrapInfo))
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, fmt.Errorf("primitives: hkdf derive: %w", err)
	}
	return out, nil
}

// SealAESGCM encrypts plaintext under key with a fresh random 12-byte nonce
// and the supplied AAD. It returns the ciphertext, the 16-byte tag split out
// separately, and the nonce used.
func SealAESGCM(key, plaintext, aad []byte) (ciphertext, tag, nonce []byte, err error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, nil, nil, err
	}
	nonce, err = RandomBytes(nonceSize)
	if err != nil {
		return nil, nil, nil, err
	}
	sealed := gcm.Seal(nil, nonce, plaintext, aad)
	ct := sealed[:len(sealed)-tagSize]
	tg := sealed[len(sealed)-tagSize:]
	return ct, tg, nonce, nil
}

// OpenAESGCM decrypts ciphertext+tag under key, nonce and aad. Any
// authentication failure is reported as ErrAEADOpen.
func OpenAESGCM(key, ciphertext, tag, nonce, aad []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	sealed := append(append([]byte{}, ciphertext...), tag...)
	plaintext, err := gcm.Open(nil, nonce, sealed, aad)
	if err != nil {
		return nil, ErrAEADOpen
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("primitives: aes cipher: %w", err)
	}
	gcm, err := cipher.NewGCMWithTagSize(block, tagSize)
	if err != nil {
		return nil, fmt.Errorf("primitives: gcm init: %w", err)
	}
	return gcm, nil
}
