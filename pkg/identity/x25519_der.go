package identity

import (
	"encoding/asn1"
	"fmt"
)

// crypto/x509 does not expose PKCS8/SPKI marshaling for crypto/ecdh's X25519
// keys, so the protocol speaks RFC 8410 DER directly: a minimal
// OneAsymmetricKey / SubjectPublicKeyInfo pair carrying the X25519 OID
// (1.3.101.110) and the raw 32-byte key material.

var oidX25519 = asn1.ObjectIdentifier{1, 3, 101, 110}

type algorithmIdentifier struct {
	Algorithm asn1.ObjectIdentifier
}

type pkcs8X25519 struct {
	Version    int
	Algorithm  algorithmIdentifier
	PrivateKey []byte // DER-encoded OCTET STRING wrapping the raw scalar
}

type spkiX25519 struct {
	Algorithm algorithmIdentifier
	PublicKey asn1.BitString
}

func marshalX25519PKCS8(raw []byte) ([]byte, error) {
	inner, err := asn1.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("identity: marshal x25519 private octet string: %w", err)
	}
	der, err := asn1.Marshal(pkcs8X25519{
		Version:    0,
		Algorithm:  algorithmIdentifier{Algorithm: oidX25519},
		PrivateKey: inner,
	})
	if err != nil {
		return nil, fmt.Errorf("identity: marshal x25519 pkcs8: %w", err)
	}
	return der, nil
}

func parseX25519PKCS8(der []byte) ([]byte, error) {
	var key pkcs8X25519
	if _, err := asn1.Unmarshal(der, &key); err != nil {
		return nil, fmt.Errorf("identity: parse x25519 pkcs8: %w", err)
	}
	if !key.Algorithm.Algorithm.Equal(oidX25519) {
		return nil, fmt.Errorf("identity: unexpected private key algorithm %v", key.Algorithm.Algorithm)
	}
	var raw []byte
	if _, err := asn1.Unmarshal(key.PrivateKey, &raw); err != nil {
		return nil, fmt.Errorf("identity: parse x25519 private octet string: %w", err)
	}
	return raw, nil
}

func marshalX25519SPKI(raw []byte) ([]byte, error) {
	der, err := asn1.Marshal(spkiX25519{
		Algorithm: algorithmIdentifier{Algorithm: oidX25519},
		PublicKey: asn1.BitString{Bytes: raw, BitLength: len(raw) * 8},
	})
	if err != nil {
		return nil, fmt.Errorf("identity: marshal x25519 spki: %w", err)
	}
	return der, nil
}

func parseX25519SPKI(der []byte) ([]byte, error) {
	var key spkiX25519
	if _, err := asn1.Unmarshal(der, &key); err != nil {
		return nil, fmt.Errorf("identity: parse x25519 spki: %w", err)
	}
	if !key.Algorithm.Algorithm.Equal(oidX25519) {
		return nil, fmt.Errorf("identity: unexpected public key algorithm %v", key.Algorithm.Algorithm)
	}
	return key.PublicKey.RightAlign(), nil
}
